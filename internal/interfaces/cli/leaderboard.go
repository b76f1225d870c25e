package cli

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/usecase"
)

// leaderboardPage shows the global board and lets the user drill into a
// league. Viewing standings needs no login.
func (u *UI) leaderboardPage(ctx context.Context) error {
	if err := u.board.Load(ctx); err != nil {
		return err
	}

	for {
		state := u.board.State()
		if state.View == usecase.ViewGlobal {
			u.printf("\nGlobal leaderboard:\n")
		} else {
			u.printf("\nLeague leaderboard:\n")
		}

		if len(state.Entries) == 0 {
			u.printf("%s\n", state.EmptyMessage)
		} else {
			u.renderLeaderboard(state.Entries)
		}

		if len(state.Leagues) > 0 {
			u.printf("Leagues: ")
			for _, item := range state.Leagues {
				u.printf("%d) %s  ", item.ID, item.Name)
			}
			u.printf("\n")
		}

		choice, ok := u.prompt("League id, 'g' for global, empty to go back: ")
		if !ok || choice == "" {
			return nil
		}
		if choice == "g" {
			if err := u.board.SetView(ctx, usecase.ViewGlobal); err != nil {
				return err
			}
			continue
		}

		leagueID, ok := parseID(choice)
		if !ok {
			u.printf("Please enter a league id or 'g'.\n")
			continue
		}
		if err := u.board.SetLeague(ctx, leagueID); err != nil {
			u.printf("Error: %s\n", userFacingMessage(err))
		}
	}
}
