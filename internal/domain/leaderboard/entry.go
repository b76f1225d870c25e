package leaderboard

import "strings"

// Entry is one canonical ranking row, global or league-scoped. Ordering and
// tie-breaking belong to the backend; the client renders rows in the order
// they were received.
type Entry struct {
	Rank              int
	FirstName         string
	LastName          string
	Email             string
	ImageURL          string
	Points            int
	PredictedTeamName string
}

// Row is the wire shape of a ranking row. The backend emits user fields under
// either a flattened alias or a nested-profile alias depending on which
// aggregate produced the row, so both sets of keys are modeled here and
// reconciled once, in Normalize, instead of at render time.
type Row struct {
	ID                int64  `json:"id"`
	Rank              int    `json:"rank"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	UserEmail         string `json:"user__email"`
	ProfileFirstName  string `json:"profile__first_name"`
	ProfileLastName   string `json:"profile__last_name"`
	ProfileUserEmail  string `json:"profile__user__email"`
	ImageURL          string `json:"image"`
	Points            *int   `json:"points"`
	TotalPoints       *int   `json:"total_points"`
	PredictedTeamName string `json:"predicted_team__name"`
}

// Normalize converts wire rows into canonical entries. The nested-profile
// aliases win when present, the flat aliases are the fallback, and a row with
// neither simply yields empty name fields. A missing rank defaults to the
// 1-based position within the received sequence.
func Normalize(rows []Row) []Entry {
	out := make([]Entry, 0, len(rows))
	for i, row := range rows {
		out = append(out, normalizeRow(row, i+1))
	}

	return out
}

func normalizeRow(row Row, position int) Entry {
	entry := Entry{
		Rank:              row.Rank,
		FirstName:         firstNonEmpty(row.ProfileFirstName, row.FirstName),
		LastName:          firstNonEmpty(row.ProfileLastName, row.LastName),
		Email:             firstNonEmpty(row.ProfileUserEmail, row.UserEmail),
		ImageURL:          strings.TrimSpace(row.ImageURL),
		PredictedTeamName: strings.TrimSpace(row.PredictedTeamName),
	}
	if entry.Rank <= 0 {
		entry.Rank = position
	}

	switch {
	case row.Points != nil:
		entry.Points = *row.Points
	case row.TotalPoints != nil:
		entry.Points = *row.TotalPoints
	}

	return entry
}

// DisplayName joins the resolved name parts, tolerating rows where only one
// part, or neither, is present.
func (e Entry) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(e.FirstName) + " " + strings.TrimSpace(e.LastName))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}

	return ""
}
