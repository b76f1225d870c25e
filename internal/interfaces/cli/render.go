package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
)

func parseID(raw string) (int64, bool) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

func (u *UI) renderLeaderboard(entries []leaderboard.Entry) {
	w := tabwriter.NewWriter(u.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Rank\tPlayer\tPoints")
	for _, entry := range entries {
		name := entry.DisplayName()
		if name == "" {
			name = entry.Email
		}
		fmt.Fprintf(w, "%d\t%s\t%d\n", entry.Rank, name, entry.Points)
	}
	w.Flush()
}

func (u *UI) renderHistory(items []prediction.Prediction) {
	w := tabwriter.NewWriter(u.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "League\tTeam\tPoints\tMade")
	for _, item := range items {
		made := ""
		if !item.CreatedAt.IsZero() {
			made = item.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", item.LeagueName, item.PredictedTeamName, item.Points, made)
	}
	w.Flush()
}

func (u *UI) renderResults(results []result.Result) {
	w := tabwriter.NewWriter(u.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Id\tLeague\tStandings")
	for _, item := range results {
		names := make([]string, 0, len(item.Placements))
		for _, placement := range item.Placements {
			names = append(names, fmt.Sprintf("%d. %s", placement.Position, placement.TeamName))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", item.ID, item.LeagueName, strings.Join(names, "  "))
	}
	w.Flush()
}
