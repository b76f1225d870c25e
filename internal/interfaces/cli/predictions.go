package cli

import (
	"context"
	"errors"
	"time"

	"github.com/riskibarqy/prediction-league/internal/usecase"
)

// predictionsPage walks the pick-league, pick-team, confirm, submit flow.
func (u *UI) predictionsPage(ctx context.Context) error {
	leagues, err := u.workflow.LoadLeagues(ctx)
	if err != nil {
		return err
	}
	if len(leagues) == 0 {
		u.printf("No leagues are open for predictions yet.\n")
		return nil
	}

	u.printf("\nLeagues:\n")
	for _, item := range leagues {
		u.printf("  %d) %s\n", item.ID, item.Name)
	}

	leagueID, ok := u.promptInt64("League id (empty to go back): ")
	if !ok || leagueID == 0 {
		return nil
	}
	if err := u.workflow.SelectLeague(ctx, leagueID); err != nil {
		return err
	}

	state := u.workflow.State()
	if state.HasPredicted {
		u.printf("You already predicted in %s", state.SelectedLeague.Name)
		if state.ExistingPrediction != nil {
			u.printf(": %s (%d pts)", state.ExistingPrediction.PredictedTeamName, state.ExistingPrediction.Points)
		}
		u.printf(". Predictions are final.\n")
		return nil
	}
	if len(state.Teams) == 0 {
		u.printf("This league has no teams yet.\n")
		return nil
	}

	u.printf("\nTeams in %s:\n", state.SelectedLeague.Name)
	for _, item := range state.Teams {
		u.printf("  %d) %s\n", item.ID, item.Name)
	}

	teamID, ok := u.promptInt64("Team id (empty to go back): ")
	if !ok || teamID == 0 {
		return nil
	}
	if err := u.workflow.SelectTeam(teamID); err != nil {
		return err
	}

	confirm, ok := u.prompt("Submit this prediction? It cannot be changed. [y/N]: ")
	if !ok || confirm != "y" {
		u.printf("Canceled.\n")
		return nil
	}

	err = u.workflow.Submit(ctx)
	if err != nil {
		if errors.Is(err, usecase.ErrAlreadyPredicted) {
			u.printf("Someone beat you to it: this league already holds your prediction.\n")
			return nil
		}
		return err
	}

	u.printf("%s\n", u.workflow.State().StatusMessage)
	u.waitForBannerReset(ctx)
	return nil
}

// waitForBannerReset keeps the success banner visible for its display window.
func (u *UI) waitForBannerReset(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if u.workflow.State().Status != usecase.SubmissionSucceeded {
				return
			}
		}
	}
}

// historyPage lists past predictions newest first with the running total.
func (u *UI) historyPage(ctx context.Context) error {
	items, err := u.history.LoadHistory(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		u.printf("You have not made any predictions yet.\n")
		return nil
	}

	u.printf("\nYour predictions:\n")
	u.renderHistory(items)
	u.printf("Total points: %d\n", usecase.TotalPoints(items))
	return nil
}
