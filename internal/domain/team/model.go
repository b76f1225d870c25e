package team

import "fmt"

// Team is an entity a user may predict as a league's winner.
type Team struct {
	ID       int64
	LeagueID int64
	Name     string
	ImageURL string
}

func (t Team) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("team id must be greater than zero")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
