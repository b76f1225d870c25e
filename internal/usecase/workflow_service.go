package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/team"
	"github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

// SubmissionStatus is the lifecycle of one submit attempt.
type SubmissionStatus string

const (
	SubmissionIdle       SubmissionStatus = "idle"
	SubmissionSubmitting SubmissionStatus = "submitting"
	SubmissionSucceeded  SubmissionStatus = "succeeded"
	SubmissionFailed     SubmissionStatus = "failed"
)

const (
	defaultSuccessResetDelay = 3 * time.Second
	cacheKeyLeagues          = "leagues"
)

// ErrSubmissionInFlight rejects a second submit while one is outstanding.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// ErrNoSelection rejects a submit before both a league and a team are chosen.
var ErrNoSelection = errors.New("select a league and a team first")

// WorkflowState is an immutable snapshot of the prediction workflow.
type WorkflowState struct {
	Leagues            []league.League
	SelectedLeague     *league.League
	Teams              []team.Team
	SelectedTeamID     int64
	Status             SubmissionStatus
	StatusMessage      string
	HasPredicted       bool
	ExistingPrediction *prediction.Prediction
	LoadingTeams       bool
}

// WorkflowService drives the select-league, select-team, submit flow.
//
// Predictions are immutable: once the backend holds one for a league, the
// flow for that league is read-only. Every write goes through exactly one
// POST, and responses for a league the user has already navigated away from
// are discarded via a per-selection generation counter.
type WorkflowService struct {
	gateway           LeagueGateway
	store             *cache.Store
	logger            *logging.Logger
	successResetDelay time.Duration

	mu         sync.Mutex
	generation uint64
	state      WorkflowState
	resetTimer *time.Timer
}

type WorkflowConfig struct {
	Gateway           LeagueGateway
	Cache             *cache.Store
	Logger            *logging.Logger
	SuccessResetDelay time.Duration
}

func NewWorkflowService(cfg WorkflowConfig) (*WorkflowService, error) {
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("league gateway is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	delay := cfg.SuccessResetDelay
	if delay <= 0 {
		delay = defaultSuccessResetDelay
	}

	return &WorkflowService{
		gateway:           cfg.Gateway,
		store:             cfg.Cache,
		logger:            logger,
		successResetDelay: delay,
		state:             WorkflowState{Status: SubmissionIdle},
	}, nil
}

// LoadLeagues populates the league list. Results are cached so switching
// between pages does not refetch a near-static list.
func (s *WorkflowService) LoadLeagues(ctx context.Context) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "workflow.load_leagues")
	defer span.End()

	leagues, err := s.fetchLeagues(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.state.Leagues = leagues
	s.mu.Unlock()
	return leagues, nil
}

func (s *WorkflowService) fetchLeagues(ctx context.Context) ([]league.League, error) {
	if s.store == nil {
		return s.gateway.FetchLeagues(ctx)
	}

	out, err := s.store.GetOrLoad(ctx, cacheKeyLeagues, func(ctx context.Context) (any, error) {
		return s.gateway.FetchLeagues(ctx)
	})
	if err != nil {
		return nil, err
	}
	leagues, ok := out.([]league.League)
	if !ok {
		return nil, fmt.Errorf("unexpected cached league payload type %T", out)
	}
	return leagues, nil
}

// SelectLeague switches the flow to leagueID: it clears the previous team
// list and selection, then loads the league's teams and the user's existing
// prediction in parallel. Responses that arrive after the user has switched
// again are dropped.
func (s *WorkflowService) SelectLeague(ctx context.Context, leagueID int64) error {
	ctx, span := startUsecaseSpan(ctx, "workflow.select_league")
	defer span.End()

	s.mu.Lock()
	selected := findLeague(s.state.Leagues, leagueID)
	if selected == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: unknown league id %d", ErrInvalidInput, leagueID)
	}

	s.generation++
	gen := s.generation
	s.cancelPendingResetLocked()
	s.state.SelectedLeague = selected
	s.state.Teams = nil
	s.state.SelectedTeamID = 0
	s.state.Status = SubmissionIdle
	s.state.StatusMessage = ""
	s.state.HasPredicted = false
	s.state.ExistingPrediction = nil
	s.state.LoadingTeams = true
	s.mu.Unlock()

	var teams []team.Team
	var check prediction.CheckResult

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		loaded, err := s.gateway.FetchLeagueTeams(ctx, leagueID)
		if err != nil {
			return err
		}
		teams = loaded
		return nil
	})
	p.Go(func(ctx context.Context) error {
		loaded, err := s.gateway.CheckPrediction(ctx, leagueID)
		if err != nil {
			// The check is advisory. A failed check must not block the flow;
			// the submit endpoint stays the authority on duplicates.
			s.logger.WarnContext(ctx, "prediction check failed, continuing without it",
				"league_id", leagueID,
				"error", err,
			)
			return nil
		}
		check = loaded
		return nil
	})
	err := p.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.DebugContext(ctx, "discarding stale league load", "league_id", leagueID)
		return nil
	}
	s.state.LoadingTeams = false

	if err != nil {
		s.state.Teams = nil
		return fmt.Errorf("load league %d: %w", leagueID, err)
	}

	s.state.Teams = teams
	s.state.HasPredicted = check.HasPredicted
	s.state.ExistingPrediction = check.Prediction
	return nil
}

// SelectTeam stages teamID for submission. Rejected when the league already
// holds a prediction or a submit is in flight.
func (s *WorkflowService) SelectTeam(teamID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.SelectedLeague == nil {
		return fmt.Errorf("%w: no league selected", ErrInvalidInput)
	}
	if s.state.HasPredicted {
		return fmt.Errorf("%w: league %d", ErrAlreadyPredicted, s.state.SelectedLeague.ID)
	}
	if s.state.Status == SubmissionSubmitting {
		return ErrSubmissionInFlight
	}
	if !s.teamSelectableLocked(teamID) {
		return fmt.Errorf("%w: team %d is not in league %d", ErrInvalidInput, teamID, s.state.SelectedLeague.ID)
	}

	s.state.SelectedTeamID = teamID
	if s.state.Status == SubmissionFailed {
		s.state.Status = SubmissionIdle
		s.state.StatusMessage = ""
	}
	return nil
}

// Submit posts the staged prediction. At most one POST is ever in flight;
// callers pressing submit again while one is outstanding get
// ErrSubmissionInFlight and no second request.
func (s *WorkflowService) Submit(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "workflow.submit")
	defer span.End()

	s.mu.Lock()
	if s.state.Status == SubmissionSubmitting {
		s.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if s.state.SelectedLeague == nil || s.state.SelectedTeamID <= 0 {
		s.mu.Unlock()
		return ErrNoSelection
	}
	if s.state.HasPredicted {
		leagueID := s.state.SelectedLeague.ID
		s.mu.Unlock()
		return fmt.Errorf("%w: league %d", ErrAlreadyPredicted, leagueID)
	}

	gen := s.generation
	leagueID := s.state.SelectedLeague.ID
	teamID := s.state.SelectedTeamID
	s.cancelPendingResetLocked()
	s.state.Status = SubmissionSubmitting
	s.state.StatusMessage = ""
	s.mu.Unlock()

	created, err := s.gateway.SubmitPrediction(ctx, leagueID, teamID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		// The user switched leagues mid-flight. The backend outcome stands
		// server-side; the new selection's own check will pick it up.
		s.logger.DebugContext(ctx, "discarding stale submit outcome", "league_id", leagueID)
		return nil
	}

	if err != nil {
		s.state.Status = SubmissionFailed
		s.state.StatusMessage = submitFailureMessage(err)
		if errors.Is(err, ErrAlreadyPredicted) {
			// Another device or tab won the race; flip this league read-only.
			s.state.HasPredicted = true
			s.state.SelectedTeamID = 0
		}
		return err
	}

	s.state.Status = SubmissionSucceeded
	s.state.StatusMessage = fmt.Sprintf("Prediction saved: %s", created.PredictedTeamName)
	s.state.HasPredicted = true
	s.state.ExistingPrediction = &created
	s.state.SelectedTeamID = 0
	s.scheduleStatusResetLocked(gen)
	return nil
}

// State returns a copy of the current workflow snapshot.
func (s *WorkflowService) State() WorkflowState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.state
	out.Teams = append([]team.Team(nil), s.state.Teams...)
	out.Leagues = append([]league.League(nil), s.state.Leagues...)
	if s.state.ExistingPrediction != nil {
		copied := *s.state.ExistingPrediction
		out.ExistingPrediction = &copied
	}
	if s.state.SelectedLeague != nil {
		copied := *s.state.SelectedLeague
		out.SelectedLeague = &copied
	}
	return out
}

// teamSelectableLocked checks teamID against the roster fetched for the
// selected league; the league list's nested roster is only a fallback while
// that fetch is still in flight.
func (s *WorkflowService) teamSelectableLocked(teamID int64) bool {
	if len(s.state.Teams) > 0 {
		for _, t := range s.state.Teams {
			if t.ID == teamID {
				return true
			}
		}
		return false
	}
	return s.state.SelectedLeague.HasTeam(teamID)
}

// scheduleStatusResetLocked returns the flow to the unselected view a few
// seconds after a success: banner, league, and teams all clear, ending the
// brief confirmation window. The backend still holds the prediction; the
// next selection's check rediscovers it.
func (s *WorkflowService) scheduleStatusResetLocked(gen uint64) {
	s.resetTimer = time.AfterFunc(s.successResetDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.generation || s.state.Status != SubmissionSucceeded {
			return
		}
		s.state.Status = SubmissionIdle
		s.state.StatusMessage = ""
		s.state.SelectedLeague = nil
		s.state.Teams = nil
		s.state.SelectedTeamID = 0
		s.state.HasPredicted = false
		s.state.ExistingPrediction = nil
	})
}

func (s *WorkflowService) cancelPendingResetLocked() {
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
}

func submitFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyPredicted):
		return "You have already predicted for this league."
	case errors.Is(err, ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, ErrDependencyUnavailable):
		return "The prediction service is temporarily unavailable. Please try again."
	default:
		message := strings.TrimSpace(err.Error())
		if message == "" {
			return "Failed to submit prediction. Please try again."
		}
		return message
	}
}

func findLeague(leagues []league.League, leagueID int64) *league.League {
	for i := range leagues {
		if leagues[i].ID == leagueID {
			return &leagues[i]
		}
	}
	return nil
}
