package result

import "fmt"

// Placement is one finishing position in a concluded league, 1-based.
type Placement struct {
	Position int
	TeamID   int64
	TeamName string
}

// Result is the official top-six finishing order of a league. Saving one
// triggers point recalculation for every prediction in that league.
type Result struct {
	ID         int64
	LeagueID   int64
	LeagueName string
	Placements []Placement
}

const PlacementCount = 6

// Input is the payload for creating or replacing a result. TeamIDs is the
// finishing order, first place at index 0.
type Input struct {
	LeagueID int64   `validate:"required,gt=0"`
	TeamIDs  []int64 `validate:"required,len=6,unique,dive,gt=0"`
}

func (in Input) Validate() error {
	if in.LeagueID <= 0 {
		return fmt.Errorf("league id must be greater than zero")
	}
	if len(in.TeamIDs) != PlacementCount {
		return fmt.Errorf("exactly %d placed teams are required", PlacementCount)
	}
	seen := make(map[int64]struct{}, PlacementCount)
	for _, teamID := range in.TeamIDs {
		if teamID <= 0 {
			return fmt.Errorf("placed team ids must be greater than zero")
		}
		if _, dup := seen[teamID]; dup {
			return fmt.Errorf("placed teams must be distinct")
		}
		seen[teamID] = struct{}{}
	}
	return nil
}
