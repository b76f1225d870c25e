package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/domain/account"
)

// Session is the process-wide authenticated state: the JWT pair issued at
// login plus the profile snapshot shown in headers and prompts. It is the Go
// analog of the browser client's local storage triplet.
type Session struct {
	Tokens  account.TokenPair `json:"tokens"`
	Profile account.Profile   `json:"profile"`
}

// Store owns the session lifecycle: load-on-start, set-on-login,
// clear-on-logout. It persists to a single JSON file so consecutive CLI
// invocations share one login.
type Store struct {
	mu      sync.RWMutex
	path    string
	current *Session
}

func NewStore(path string) *Store {
	return &Store{path: strings.TrimSpace(path)}
}

// Load hydrates the store from the session file. A missing file is a clean
// logged-out state, not an error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return fmt.Errorf("session file path is required")
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.current = nil
			return nil
		}
		return fmt.Errorf("read session file: %w", err)
	}

	var loaded Session
	if err := sonic.Unmarshal(raw, &loaded); err != nil {
		// A corrupt session file should not brick the client; treat it as
		// logged out and let the next login rewrite it.
		s.current = nil
		return nil
	}
	if strings.TrimSpace(loaded.Tokens.Access) == "" {
		s.current = nil
		return nil
	}

	s.current = &loaded
	return nil
}

// Set replaces the session and persists it.
func (s *Store) Set(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(sess.Tokens.Access) == "" {
		return fmt.Errorf("access token is required")
	}

	raw, err := sonic.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	copied := sess
	s.current = &copied
	return nil
}

// Clear drops the in-memory session and removes the session file. Removal
// failures are reported, but the in-memory state is cleared regardless so a
// logout always takes effect locally.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}

	return nil
}

func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

func (s *Store) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

// AccessToken implements the API gateway's token source. Empty means
// unauthenticated; the gateway then sends no Authorization header.
func (s *Store) AccessToken() string {
	sess, ok := s.Current()
	if !ok {
		return ""
	}
	return sess.Tokens.Access
}

// UpdateProfile refreshes the cached profile snapshot after a profile edit
// without touching the token pair.
func (s *Store) UpdateProfile(profile account.Profile) error {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()

	if current == nil {
		return fmt.Errorf("no active session")
	}

	next := *current
	next.Profile = profile
	return s.Set(next)
}
