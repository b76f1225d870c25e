package leagueapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/prediction-league/internal/domain/result"
)

type resultItem struct {
	ID              int64  `json:"id"`
	LeagueID        int64  `json:"league"`
	LeagueName      string `json:"league_name"`
	FirstPlace      int64  `json:"first_place"`
	SecondPlace     int64  `json:"second_place"`
	ThirdPlace      int64  `json:"third_place"`
	FourthPlace     int64  `json:"fourth_place"`
	FifthPlace      int64  `json:"fifth_place"`
	SixthPlace      int64  `json:"sixth_place"`
	FirstPlaceName  string `json:"first_place_name"`
	SecondPlaceName string `json:"second_place_name"`
	ThirdPlaceName  string `json:"third_place_name"`
	FourthPlaceName string `json:"fourth_place_name"`
	FifthPlaceName  string `json:"fifth_place_name"`
	SixthPlaceName  string `json:"sixth_place_name"`
}

type resultRequest struct {
	League      int64 `json:"league"`
	FirstPlace  int64 `json:"first_place"`
	SecondPlace int64 `json:"second_place"`
	ThirdPlace  int64 `json:"third_place"`
	FourthPlace int64 `json:"fourth_place"`
	FifthPlace  int64 `json:"fifth_place"`
	SixthPlace  int64 `json:"sixth_place"`
}

// FetchResults lists every saved league result. Admin-only on the backend.
func (c *Client) FetchResults(ctx context.Context) ([]result.Result, error) {
	var items []resultItem
	if err := c.doGET(ctx, "/league/admin/results/", nil, &items); err != nil {
		return nil, fmt.Errorf("fetch results: %w", err)
	}

	out := make([]result.Result, 0, len(items))
	for _, item := range items {
		out = append(out, mapResult(item))
	}
	return out, nil
}

// CreateResult saves a new finishing order and triggers point calculation.
func (c *Client) CreateResult(ctx context.Context, input result.Input) (result.Result, error) {
	var item resultItem
	if err := c.doSend(ctx, "POST", "/league/admin/result/create/", buildResultRequest(input), &item); err != nil {
		return result.Result{}, fmt.Errorf("create result league_id=%d: %w", input.LeagueID, err)
	}
	return mapResult(item), nil
}

// UpdateResult replaces an existing finishing order and recalculates points.
func (c *Client) UpdateResult(ctx context.Context, resultID int64, input result.Input) (result.Result, error) {
	if resultID <= 0 {
		return result.Result{}, fmt.Errorf("result id must be greater than zero")
	}

	var item resultItem
	path := fmt.Sprintf("/league/admin/result/%d/", resultID)
	if err := c.doSend(ctx, "PUT", path, buildResultRequest(input), &item); err != nil {
		return result.Result{}, fmt.Errorf("update result id=%d: %w", resultID, err)
	}
	return mapResult(item), nil
}

// DeleteResult removes a finishing order and resets the affected points.
func (c *Client) DeleteResult(ctx context.Context, resultID int64) error {
	if resultID <= 0 {
		return fmt.Errorf("result id must be greater than zero")
	}

	path := fmt.Sprintf("/league/admin/result/%d/", resultID)
	if err := c.doSend(ctx, "DELETE", path, nil, nil); err != nil {
		return fmt.Errorf("delete result id=%d: %w", resultID, err)
	}
	return nil
}

func buildResultRequest(input result.Input) resultRequest {
	out := resultRequest{League: input.LeagueID}
	assign := []*int64{
		&out.FirstPlace, &out.SecondPlace, &out.ThirdPlace,
		&out.FourthPlace, &out.FifthPlace, &out.SixthPlace,
	}
	for i, teamID := range input.TeamIDs {
		if i >= len(assign) {
			break
		}
		*assign[i] = teamID
	}
	return out
}

func mapResult(item resultItem) result.Result {
	placed := []struct {
		teamID int64
		name   string
	}{
		{item.FirstPlace, item.FirstPlaceName},
		{item.SecondPlace, item.SecondPlaceName},
		{item.ThirdPlace, item.ThirdPlaceName},
		{item.FourthPlace, item.FourthPlaceName},
		{item.FifthPlace, item.FifthPlaceName},
		{item.SixthPlace, item.SixthPlaceName},
	}

	placements := make([]result.Placement, 0, len(placed))
	for i, entry := range placed {
		if entry.teamID <= 0 {
			continue
		}
		placements = append(placements, result.Placement{
			Position: i + 1,
			TeamID:   entry.teamID,
			TeamName: strings.TrimSpace(entry.name),
		})
	}

	return result.Result{
		ID:         item.ID,
		LeagueID:   item.LeagueID,
		LeagueName: strings.TrimSpace(item.LeagueName),
		Placements: placements,
	}
}
