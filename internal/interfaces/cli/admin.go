package cli

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/domain/result"
)

// adminPage manages official results. The backend enforces the admin role;
// a non-admin simply gets an authorization error back.
func (u *UI) adminPage(ctx context.Context) error {
	for {
		results, err := u.admin.ListResults(ctx)
		if err != nil {
			return err
		}

		u.printf("\nLeague results:\n")
		if len(results) == 0 {
			u.printf("No results created yet.\n")
		} else {
			u.renderResults(results)
		}

		choice, ok := u.prompt("s) Save result  d) Delete result  empty to go back: ")
		if !ok || choice == "" {
			return nil
		}
		switch choice {
		case "s":
			if err := u.saveResult(ctx); err != nil {
				u.printf("Error: %s\n", userFacingMessage(err))
			}
		case "d":
			resultID, ok := u.promptInt64("Result id: ")
			if !ok || resultID == 0 {
				continue
			}
			if err := u.admin.DeleteResult(ctx, resultID); err != nil {
				u.printf("Error: %s\n", userFacingMessage(err))
				continue
			}
			u.printf("Result deleted and points reset.\n")
		default:
			u.printf("Unknown choice %q.\n", choice)
		}
	}
}

func (u *UI) saveResult(ctx context.Context) error {
	leagueID, ok := u.promptInt64("League id: ")
	if !ok || leagueID == 0 {
		return nil
	}

	labels := []string{"1st", "2nd", "3rd", "4th", "5th", "6th"}
	teamIDs := make([]int64, 0, result.PlacementCount)
	for _, label := range labels {
		teamID, ok := u.promptInt64(label + " place team id: ")
		if !ok || teamID == 0 {
			u.printf("Canceled: all six places are required.\n")
			return nil
		}
		teamIDs = append(teamIDs, teamID)
	}

	saved, err := u.admin.SaveResult(ctx, result.Input{LeagueID: leagueID, TeamIDs: teamIDs})
	if err != nil {
		return err
	}
	u.printf("Result saved for %s. Points recalculated.\n", saved.LeagueName)
	return nil
}
