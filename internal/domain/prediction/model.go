package prediction

import "time"

// Prediction is a user's one-time choice of winning team for a league.
// The backend enforces at most one prediction per (user, league) pair and
// never lets a prediction be edited; the client mirrors that by treating any
// confirmed prediction as read-only.
type Prediction struct {
	ID                int64
	LeagueID          int64
	LeagueName        string
	PredictedTeamID   int64
	PredictedTeamName string
	Points            int
	CreatedAt         time.Time
}

// CheckResult is the backend's advisory answer to "has this user already
// predicted for this league". Advisory only: the uniqueness constraint lives
// server-side, so a stale false here still ends in a conflict on submit.
type CheckResult struct {
	HasPredicted bool
	Prediction   *Prediction
}
