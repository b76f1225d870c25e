package account

import "strings"

// Profile is the authenticated user's account profile.
type Profile struct {
	Email       string
	FirstName   string
	LastName    string
	Description string
	ImageURL    string
}

func (p Profile) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if name == "" {
		return p.Email
	}

	return name
}

// TokenPair is the JWT pair issued at login. Refresh mechanics beyond
// storing the pair are owned by the backend.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// ProfileUpdate carries the mutable profile fields. Zero-valued fields are
// omitted from the update request.
type ProfileUpdate struct {
	FirstName   string
	LastName    string
	Description string
	ImagePath   string
}
