package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/account"
	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
	"github.com/riskibarqy/prediction-league/internal/domain/team"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

type fakeLeagueGateway struct {
	leagues     []league.League
	teamsFn     func(ctx context.Context, leagueID int64) ([]team.Team, error)
	checkFn     func(ctx context.Context, leagueID int64) (prediction.CheckResult, error)
	submitFn    func(ctx context.Context, leagueID, teamID int64) (prediction.Prediction, error)
	historyFn   func(ctx context.Context) ([]prediction.Prediction, error)
	boardFn     func(ctx context.Context, leagueID int64) ([]leaderboard.Row, error)
	submitCalls atomic.Int32
}

func (f *fakeLeagueGateway) FetchLeagues(context.Context) ([]league.League, error) {
	return f.leagues, nil
}

func (f *fakeLeagueGateway) FetchLeagueTeams(ctx context.Context, leagueID int64) ([]team.Team, error) {
	if f.teamsFn != nil {
		return f.teamsFn(ctx, leagueID)
	}
	return nil, nil
}

func (f *fakeLeagueGateway) CheckPrediction(ctx context.Context, leagueID int64) (prediction.CheckResult, error) {
	if f.checkFn != nil {
		return f.checkFn(ctx, leagueID)
	}
	return prediction.CheckResult{}, nil
}

func (f *fakeLeagueGateway) SubmitPrediction(ctx context.Context, leagueID, teamID int64) (prediction.Prediction, error) {
	f.submitCalls.Add(1)
	if f.submitFn != nil {
		return f.submitFn(ctx, leagueID, teamID)
	}
	return prediction.Prediction{LeagueID: leagueID, PredictedTeamID: teamID}, nil
}

func (f *fakeLeagueGateway) FetchPredictions(ctx context.Context) ([]prediction.Prediction, error) {
	if f.historyFn != nil {
		return f.historyFn(ctx)
	}
	return nil, nil
}

func (f *fakeLeagueGateway) FetchLeaderboard(ctx context.Context, leagueID int64) ([]leaderboard.Row, error) {
	if f.boardFn != nil {
		return f.boardFn(ctx, leagueID)
	}
	return nil, nil
}

func twoLeagues() []league.League {
	return []league.League{
		{ID: 1, Name: "Premier League", Teams: []team.Team{{ID: 10, LeagueID: 1, Name: "Arsenal"}, {ID: 11, LeagueID: 1, Name: "Chelsea"}}},
		{ID: 2, Name: "La Liga", Teams: []team.Team{{ID: 20, LeagueID: 2, Name: "Barcelona"}}},
	}
}

func teamsOf(leagues []league.League, leagueID int64) []team.Team {
	for _, l := range leagues {
		if l.ID == leagueID {
			return l.Teams
		}
	}
	return nil
}

func newTestWorkflow(t *testing.T, gateway *fakeLeagueGateway, opts ...func(*WorkflowConfig)) *WorkflowService {
	t.Helper()

	cfg := WorkflowConfig{
		Gateway:           gateway,
		Logger:            logging.NewNop(),
		SuccessResetDelay: 30 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	svc, err := NewWorkflowService(cfg)
	require.NoError(t, err)

	_, err = svc.LoadLeagues(context.Background())
	require.NoError(t, err)
	return svc
}

func TestWorkflow_SelectLeague_LoadsTeamsAndExistingPrediction(t *testing.T) {
	t.Parallel()

	leagues := twoLeagues()
	existing := prediction.Prediction{ID: 5, LeagueID: 1, PredictedTeamID: 10, PredictedTeamName: "Arsenal"}
	gateway := &fakeLeagueGateway{
		leagues: leagues,
		teamsFn: func(_ context.Context, leagueID int64) ([]team.Team, error) {
			return teamsOf(leagues, leagueID), nil
		},
		checkFn: func(context.Context, int64) (prediction.CheckResult, error) {
			return prediction.CheckResult{HasPredicted: true, Prediction: &existing}, nil
		},
	}

	svc := newTestWorkflow(t, gateway)
	require.NoError(t, svc.SelectLeague(context.Background(), 1))

	state := svc.State()
	require.NotNil(t, state.SelectedLeague)
	require.Equal(t, int64(1), state.SelectedLeague.ID)
	require.Len(t, state.Teams, 2)
	require.True(t, state.HasPredicted)
	require.NotNil(t, state.ExistingPrediction)
	require.Equal(t, "Arsenal", state.ExistingPrediction.PredictedTeamName)
	require.False(t, state.LoadingTeams)

	err := svc.SelectTeam(11)
	require.ErrorIs(t, err, ErrAlreadyPredicted)
}

func TestWorkflow_SelectLeague_DiscardsStaleResponses(t *testing.T) {
	t.Parallel()

	leagues := twoLeagues()
	slowStarted := make(chan struct{})
	release := make(chan struct{})

	gateway := &fakeLeagueGateway{
		leagues: leagues,
		teamsFn: func(_ context.Context, leagueID int64) ([]team.Team, error) {
			if leagueID == 1 {
				close(slowStarted)
				<-release
			}
			return teamsOf(leagues, leagueID), nil
		},
	}

	svc := newTestWorkflow(t, gateway)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = svc.SelectLeague(context.Background(), 1)
	}()

	<-slowStarted
	require.NoError(t, svc.SelectLeague(context.Background(), 2))
	close(release)
	wg.Wait()

	state := svc.State()
	require.Equal(t, int64(2), state.SelectedLeague.ID)
	require.Len(t, state.Teams, 1)
	require.Equal(t, "Barcelona", state.Teams[0].Name, "late response for league 1 must not overwrite league 2")
}

func TestWorkflow_SelectLeague_SurvivesFailedAdvisoryCheck(t *testing.T) {
	t.Parallel()

	leagues := twoLeagues()
	gateway := &fakeLeagueGateway{
		leagues: leagues,
		teamsFn: func(_ context.Context, leagueID int64) ([]team.Team, error) {
			return teamsOf(leagues, leagueID), nil
		},
		checkFn: func(context.Context, int64) (prediction.CheckResult, error) {
			return prediction.CheckResult{}, fmt.Errorf("%w: check route down", ErrDependencyUnavailable)
		},
	}

	svc := newTestWorkflow(t, gateway)
	require.NoError(t, svc.SelectLeague(context.Background(), 1))

	state := svc.State()
	require.Len(t, state.Teams, 2)
	require.False(t, state.HasPredicted)
	require.NoError(t, svc.SelectTeam(10))
}

func TestWorkflow_Submit_GuardsAgainstDoubleSubmit(t *testing.T) {
	t.Parallel()

	leagues := twoLeagues()
	inFlight := make(chan struct{})
	release := make(chan struct{})

	gateway := &fakeLeagueGateway{
		leagues: leagues,
		teamsFn: func(_ context.Context, leagueID int64) ([]team.Team, error) {
			return teamsOf(leagues, leagueID), nil
		},
		submitFn: func(_ context.Context, leagueID, teamID int64) (prediction.Prediction, error) {
			close(inFlight)
			<-release
			return prediction.Prediction{LeagueID: leagueID, PredictedTeamID: teamID, PredictedTeamName: "Arsenal"}, nil
		},
	}

	svc := newTestWorkflow(t, gateway)
	require.NoError(t, svc.SelectLeague(context.Background(), 1))
	require.NoError(t, svc.SelectTeam(10))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = svc.Submit(context.Background())
	}()

	<-inFlight
	err := svc.Submit(context.Background())
	require.ErrorIs(t, err, ErrSubmissionInFlight)

	close(release)
	wg.Wait()

	require.Equal(t, int32(1), gateway.submitCalls.Load(), "exactly one POST per confirmed submit")
	require.Equal(t, SubmissionSucceeded, svc.State().Status)
}

func TestWorkflow_Submit_SuccessReturnsToUnselectedView(t *testing.T) {
	t.Parallel()

	leagues := twoLeagues()
	gateway := &fakeLeagueGateway{
		leagues: leagues,
		teamsFn: func(_ context.Context, leagueID int64) ([]team.Team, error) {
			return teamsOf(leagues, leagueID), nil
		},
		submitFn: func(_ context.Context, leagueID, teamID int64) (prediction.Prediction, error) {
			return prediction.Prediction{LeagueID: leagueID, PredictedTeamID: teamID, PredictedTeamName: "Arsenal"}, nil
		},
	}

	svc := newTestWorkflow(t, gateway)
	require.NoError(t, svc.SelectLeague(context.Background(), 1))
	require.NoError(t, svc.SelectTeam(10))
	require.NoError(t, svc.Submit(context.Background()))

	state := svc.State()
	require.Equal(t, SubmissionSucceeded, state.Status)
	require.True(t, state.HasPredicted)
	require.NotNil(t, state.ExistingPrediction)
	require.Equal(t, "Prediction saved: Arsenal", state.StatusMessage)

	require.Eventually(t, func() bool {
		return svc.State().Status == SubmissionIdle
	}, time.Second, 5*time.Millisecond)

	state = svc.State()
	require.Nil(t, state.SelectedLeague, "confirmation window over, back to the league list")
	require.Empty(t, state.Teams)
	require.Nil(t, state.ExistingPrediction)
	require.Empty(t, state.StatusMessage)
	require.ErrorIs(t, svc.Submit(context.Background()), ErrNoSelection)
}

func TestWorkflow_Submit_ConflictFlipsLeagueReadOnly(t *testing.T) {
	t.Parallel()

	leagues := twoLeagues()
	gateway := &fakeLeagueGateway{
		leagues: leagues,
		teamsFn: func(_ context.Context, leagueID int64) ([]team.Team, error) {
			return teamsOf(leagues, leagueID), nil
		},
		submitFn: func(context.Context, int64, int64) (prediction.Prediction, error) {
			return prediction.Prediction{}, fmt.Errorf("%w: predicted_team", ErrAlreadyPredicted)
		},
	}

	svc := newTestWorkflow(t, gateway)
	require.NoError(t, svc.SelectLeague(context.Background(), 1))
	require.NoError(t, svc.SelectTeam(10))

	err := svc.Submit(context.Background())
	require.ErrorIs(t, err, ErrAlreadyPredicted)

	state := svc.State()
	require.Equal(t, SubmissionFailed, state.Status)
	require.True(t, state.HasPredicted)
	require.ErrorIs(t, svc.SelectTeam(11), ErrAlreadyPredicted)
	require.ErrorIs(t, svc.Submit(context.Background()), ErrNoSelection)
}

func TestWorkflow_Submit_FailureKeepsSelectionForRetry(t *testing.T) {
	t.Parallel()

	leagues := twoLeagues()
	var fail atomic.Bool
	fail.Store(true)

	gateway := &fakeLeagueGateway{
		leagues: leagues,
		teamsFn: func(_ context.Context, leagueID int64) ([]team.Team, error) {
			return teamsOf(leagues, leagueID), nil
		},
		submitFn: func(_ context.Context, leagueID, teamID int64) (prediction.Prediction, error) {
			if fail.Load() {
				return prediction.Prediction{}, fmt.Errorf("%w: backend 502", ErrDependencyUnavailable)
			}
			return prediction.Prediction{LeagueID: leagueID, PredictedTeamID: teamID}, nil
		},
	}

	svc := newTestWorkflow(t, gateway)
	require.NoError(t, svc.SelectLeague(context.Background(), 1))
	require.NoError(t, svc.SelectTeam(10))

	err := svc.Submit(context.Background())
	require.ErrorIs(t, err, ErrDependencyUnavailable)

	state := svc.State()
	require.Equal(t, SubmissionFailed, state.Status)
	require.False(t, state.HasPredicted)
	require.Equal(t, int64(10), state.SelectedTeamID, "failed submit keeps the staged team")

	fail.Store(false)
	require.NoError(t, svc.Submit(context.Background()))
	require.Equal(t, SubmissionSucceeded, svc.State().Status)
}

func TestWorkflow_SelectTeam_RejectsTeamOutsideLeague(t *testing.T) {
	t.Parallel()

	leagues := twoLeagues()
	gateway := &fakeLeagueGateway{
		leagues: leagues,
		teamsFn: func(_ context.Context, leagueID int64) ([]team.Team, error) {
			return teamsOf(leagues, leagueID), nil
		},
	}

	svc := newTestWorkflow(t, gateway)
	require.NoError(t, svc.SelectLeague(context.Background(), 1))
	require.ErrorIs(t, svc.SelectTeam(20), ErrInvalidInput)
}

func TestWorkflow_SelectTeam_UsesFetchedRosterWhenListHasNone(t *testing.T) {
	t.Parallel()

	// The league list endpoint is free to omit nested rosters; the teams
	// endpoint is the authority once SelectLeague has loaded it.
	gateway := &fakeLeagueGateway{
		leagues: []league.League{{ID: 1, Name: "Premier League"}, {ID: 2, Name: "La Liga"}},
		teamsFn: func(_ context.Context, leagueID int64) ([]team.Team, error) {
			return []team.Team{
				{ID: 10, LeagueID: leagueID, Name: "Arsenal"},
				{ID: 11, LeagueID: leagueID, Name: "Chelsea"},
			}, nil
		},
	}

	svc := newTestWorkflow(t, gateway)
	require.NoError(t, svc.SelectLeague(context.Background(), 1))
	require.Len(t, svc.State().Teams, 2)

	require.NoError(t, svc.SelectTeam(11))
	require.Equal(t, int64(11), svc.State().SelectedTeamID)
	require.ErrorIs(t, svc.SelectTeam(99), ErrInvalidInput)
}

var _ AccountGateway = (*stubAccountGateway)(nil)

// stubAccountGateway keeps the AccountGateway contract honest at compile time
// for the auth service tests in this package.
type stubAccountGateway struct {
	loginFn    func(ctx context.Context, email, password string) (account.TokenPair, error)
	logoutFn   func(ctx context.Context) error
	profileFn  func(ctx context.Context) (account.Profile, error)
	updateFn   func(ctx context.Context, update account.ProfileUpdate) (account.Profile, error)
	registerFn func(ctx context.Context, email, password, password1 string) error
}

func (s *stubAccountGateway) Register(ctx context.Context, email, password, password1 string) error {
	if s.registerFn != nil {
		return s.registerFn(ctx, email, password, password1)
	}
	return nil
}

func (s *stubAccountGateway) Login(ctx context.Context, email, password string) (account.TokenPair, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, email, password)
	}
	return account.TokenPair{Access: "access", Refresh: "refresh"}, nil
}

func (s *stubAccountGateway) Logout(ctx context.Context) error {
	if s.logoutFn != nil {
		return s.logoutFn(ctx)
	}
	return nil
}

func (s *stubAccountGateway) ActivateAccount(context.Context, string) error      { return nil }
func (s *stubAccountGateway) ResendActivation(context.Context, string) error     { return nil }
func (s *stubAccountGateway) RequestPasswordReset(context.Context, string) error { return nil }

func (s *stubAccountGateway) ConfirmPasswordReset(context.Context, string, string, string) error {
	return nil
}

func (s *stubAccountGateway) ChangePassword(context.Context, string, string, string) error {
	return nil
}

func (s *stubAccountGateway) FetchProfile(ctx context.Context) (account.Profile, error) {
	if s.profileFn != nil {
		return s.profileFn(ctx)
	}
	return account.Profile{Email: "user@example.com"}, nil
}

func (s *stubAccountGateway) UpdateProfile(ctx context.Context, update account.ProfileUpdate) (account.Profile, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, update)
	}
	return account.Profile{}, nil
}

var _ AdminGateway = (*stubAdminGateway)(nil)

type stubAdminGateway struct {
	results  []result.Result
	createFn func(ctx context.Context, input result.Input) (result.Result, error)
	updateFn func(ctx context.Context, resultID int64, input result.Input) (result.Result, error)
	deleteFn func(ctx context.Context, resultID int64) error
}

func (s *stubAdminGateway) FetchResults(context.Context) ([]result.Result, error) {
	return s.results, nil
}

func (s *stubAdminGateway) CreateResult(ctx context.Context, input result.Input) (result.Result, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return result.Result{ID: 1, LeagueID: input.LeagueID}, nil
}

func (s *stubAdminGateway) UpdateResult(ctx context.Context, resultID int64, input result.Input) (result.Result, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, resultID, input)
	}
	return result.Result{ID: resultID, LeagueID: input.LeagueID}, nil
}

func (s *stubAdminGateway) DeleteResult(ctx context.Context, resultID int64) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, resultID)
	}
	return nil
}
