package leagueapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/team"
)

type leagueItem struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	ImageURL string     `json:"image"`
	Teams    []teamItem `json:"teams"`
}

type teamItem struct {
	ID       int64  `json:"id"`
	LeagueID int64  `json:"league"`
	Name     string `json:"name"`
	ImageURL string `json:"image"`
}

type predictionItem struct {
	ID                int64  `json:"id"`
	LeagueID          int64  `json:"league"`
	LeagueName        string `json:"league_name"`
	PredictedTeamID   int64  `json:"predicted_team"`
	PredictedTeamName string `json:"predicted_team_name"`
	Points            int    `json:"points"`
	CreatedAt         string `json:"created_at"`
}

type predictionCheckEnvelope struct {
	HasPredicted bool            `json:"has_predicted"`
	Prediction   *predictionItem `json:"prediction"`
}

type createPredictionRequest struct {
	League        int64 `json:"league"`
	PredictedTeam int64 `json:"predicted_team"`
}

// FetchLeagues returns every league available for prediction.
func (c *Client) FetchLeagues(ctx context.Context) ([]league.League, error) {
	var items []leagueItem
	if err := c.doGET(ctx, "/league/leagues/", nil, &items); err != nil {
		return nil, fmt.Errorf("fetch leagues: %w", err)
	}

	out := make([]league.League, 0, len(items))
	for _, item := range items {
		if item.ID <= 0 {
			continue
		}
		out = append(out, mapLeague(item))
	}
	return out, nil
}

// FetchLeagueTeams returns the candidate teams of one league.
func (c *Client) FetchLeagueTeams(ctx context.Context, leagueID int64) ([]team.Team, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("league id must be greater than zero")
	}

	var items []teamItem
	path := fmt.Sprintf("/league/leagues/%d/teams/", leagueID)
	if err := c.doGET(ctx, path, nil, &items); err != nil {
		return nil, fmt.Errorf("fetch league teams league_id=%d: %w", leagueID, err)
	}

	out := make([]team.Team, 0, len(items))
	for _, item := range items {
		if item.ID <= 0 {
			continue
		}
		out = append(out, mapTeam(item, leagueID))
	}
	return out, nil
}

// CheckPrediction asks whether the current user already predicted in the
// league. The answer is advisory; the submit endpoint remains the authority.
func (c *Client) CheckPrediction(ctx context.Context, leagueID int64) (prediction.CheckResult, error) {
	if leagueID <= 0 {
		return prediction.CheckResult{}, fmt.Errorf("league id must be greater than zero")
	}

	var envelope predictionCheckEnvelope
	path := fmt.Sprintf("/league/predictions/check/%d/", leagueID)
	if err := c.doGET(ctx, path, nil, &envelope); err != nil {
		return prediction.CheckResult{}, fmt.Errorf("check prediction league_id=%d: %w", leagueID, err)
	}

	out := prediction.CheckResult{HasPredicted: envelope.HasPredicted}
	if envelope.Prediction != nil {
		mapped := mapPrediction(*envelope.Prediction)
		out.Prediction = &mapped
	}
	return out, nil
}

// SubmitPrediction creates the user's one immutable prediction for a league.
func (c *Client) SubmitPrediction(ctx context.Context, leagueID, teamID int64) (prediction.Prediction, error) {
	if leagueID <= 0 || teamID <= 0 {
		return prediction.Prediction{}, fmt.Errorf("league id and team id must be greater than zero")
	}

	payload := createPredictionRequest{League: leagueID, PredictedTeam: teamID}
	var item predictionItem
	if err := c.doSend(ctx, "POST", "/league/prediction/", payload, &item); err != nil {
		return prediction.Prediction{}, fmt.Errorf("submit prediction league_id=%d team_id=%d: %w", leagueID, teamID, err)
	}
	return mapPrediction(item), nil
}

// FetchPredictions returns the user's full prediction history.
func (c *Client) FetchPredictions(ctx context.Context) ([]prediction.Prediction, error) {
	var items []predictionItem
	if err := c.doGET(ctx, "/league/predictions/", nil, &items); err != nil {
		return nil, fmt.Errorf("fetch predictions: %w", err)
	}

	out := make([]prediction.Prediction, 0, len(items))
	for _, item := range items {
		out = append(out, mapPrediction(item))
	}
	return out, nil
}

// FetchLeaderboard returns the raw global standings rows. leagueID <= 0 means
// the global board; otherwise the per-league board.
func (c *Client) FetchLeaderboard(ctx context.Context, leagueID int64) ([]leaderboard.Row, error) {
	path := "/league/leaderboard/"
	if leagueID > 0 {
		path = fmt.Sprintf("/league/leaderboard/%d/", leagueID)
	}

	var rows []leaderboard.Row
	if err := c.doGET(ctx, path, nil, &rows); err != nil {
		return nil, fmt.Errorf("fetch leaderboard league_id=%d: %w", leagueID, err)
	}
	return rows, nil
}

func mapLeague(item leagueItem) league.League {
	teams := make([]team.Team, 0, len(item.Teams))
	for _, raw := range item.Teams {
		if raw.ID <= 0 {
			continue
		}
		teams = append(teams, mapTeam(raw, item.ID))
	}
	return league.League{
		ID:       item.ID,
		Name:     strings.TrimSpace(item.Name),
		ImageURL: strings.TrimSpace(item.ImageURL),
		Teams:    teams,
	}
}

func mapTeam(item teamItem, leagueID int64) team.Team {
	if item.LeagueID > 0 {
		leagueID = item.LeagueID
	}
	return team.Team{
		ID:       item.ID,
		LeagueID: leagueID,
		Name:     strings.TrimSpace(item.Name),
		ImageURL: strings.TrimSpace(item.ImageURL),
	}
}

func mapPrediction(item predictionItem) prediction.Prediction {
	return prediction.Prediction{
		ID:                item.ID,
		LeagueID:          item.LeagueID,
		LeagueName:        strings.TrimSpace(item.LeagueName),
		PredictedTeamID:   item.PredictedTeamID,
		PredictedTeamName: strings.TrimSpace(item.PredictedTeamName),
		Points:            item.Points,
		CreatedAt:         parseBackendDateTime(item.CreatedAt),
	}
}

func parseBackendDateTime(raw string) time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}
	}

	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
