package league

import (
	"fmt"

	"github.com/riskibarqy/prediction-league/internal/domain/team"
)

// League is a competition grouping a fixed set of teams. Leagues are
// reference data owned by the backend; the client never mutates them.
type League struct {
	ID       int64
	Name     string
	ImageURL string
	Teams    []team.Team
}

func (l League) Validate() error {
	if l.ID <= 0 {
		return fmt.Errorf("league id must be greater than zero")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}

	return nil
}

// HasTeam reports whether the team belongs to this league's roster.
// Used as the client-side precondition for team selection.
func (l League) HasTeam(teamID int64) bool {
	for _, t := range l.Teams {
		if t.ID == teamID {
			return true
		}
	}

	return false
}
