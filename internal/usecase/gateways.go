package usecase

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/domain/account"
	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
	"github.com/riskibarqy/prediction-league/internal/domain/team"
)

// LeagueGateway is the backend surface the prediction flows depend on.
type LeagueGateway interface {
	FetchLeagues(ctx context.Context) ([]league.League, error)
	FetchLeagueTeams(ctx context.Context, leagueID int64) ([]team.Team, error)
	CheckPrediction(ctx context.Context, leagueID int64) (prediction.CheckResult, error)
	SubmitPrediction(ctx context.Context, leagueID, teamID int64) (prediction.Prediction, error)
	FetchPredictions(ctx context.Context) ([]prediction.Prediction, error)
	FetchLeaderboard(ctx context.Context, leagueID int64) ([]leaderboard.Row, error)
}

// AccountGateway covers registration, authentication, and profile management.
type AccountGateway interface {
	Register(ctx context.Context, email, password, password1 string) error
	Login(ctx context.Context, email, password string) (account.TokenPair, error)
	Logout(ctx context.Context) error
	ActivateAccount(ctx context.Context, token string) error
	ResendActivation(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword, newPassword1 string) error
	ChangePassword(ctx context.Context, oldPassword, newPassword, newPassword1 string) error
	FetchProfile(ctx context.Context) (account.Profile, error)
	UpdateProfile(ctx context.Context, update account.ProfileUpdate) (account.Profile, error)
}

// AdminGateway manages official league results.
type AdminGateway interface {
	FetchResults(ctx context.Context) ([]result.Result, error)
	CreateResult(ctx context.Context, input result.Input) (result.Result, error)
	UpdateResult(ctx context.Context, resultID int64, input result.Input) (result.Result, error)
	DeleteResult(ctx context.Context, resultID int64) error
}
