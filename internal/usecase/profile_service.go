package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/riskibarqy/prediction-league/internal/domain/account"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// ProfileService loads and edits the logged-in user's profile, keeping the
// session's cached snapshot in step with the backend.
type ProfileService struct {
	gateway  AccountGateway
	sessions SessionStore
	logger   *logging.Logger
}

func NewProfileService(gateway AccountGateway, sessions SessionStore, logger *logging.Logger) (*ProfileService, error) {
	if gateway == nil {
		return nil, fmt.Errorf("account gateway is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ProfileService{gateway: gateway, sessions: sessions, logger: logger}, nil
}

// Load fetches the profile from the backend and refreshes the session copy.
func (s *ProfileService) Load(ctx context.Context) (account.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "profile.load")
	defer span.End()

	profile, err := s.gateway.FetchProfile(ctx)
	if err != nil {
		return account.Profile{}, err
	}
	if err := s.sessions.UpdateProfile(profile); err != nil {
		s.logger.WarnContext(ctx, "persist refreshed profile failed", "error", err)
	}
	return profile, nil
}

// Update sends the changed fields and persists the returned snapshot.
func (s *ProfileService) Update(ctx context.Context, update account.ProfileUpdate) (account.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "profile.update")
	defer span.End()

	if isEmptyUpdate(update) {
		return account.Profile{}, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if imagePath := strings.TrimSpace(update.ImagePath); imagePath != "" {
		info, err := os.Stat(imagePath)
		if err != nil {
			return account.Profile{}, fmt.Errorf("%w: avatar file not readable: %v", ErrInvalidInput, err)
		}
		if info.IsDir() {
			return account.Profile{}, fmt.Errorf("%w: avatar path is a directory", ErrInvalidInput)
		}
	}

	profile, err := s.gateway.UpdateProfile(ctx, update)
	if err != nil {
		return account.Profile{}, err
	}
	if err := s.sessions.UpdateProfile(profile); err != nil {
		s.logger.WarnContext(ctx, "persist updated profile failed", "error", err)
	}
	return profile, nil
}

func isEmptyUpdate(update account.ProfileUpdate) bool {
	return strings.TrimSpace(update.FirstName) == "" &&
		strings.TrimSpace(update.LastName) == "" &&
		strings.TrimSpace(update.Description) == "" &&
		strings.TrimSpace(update.ImagePath) == ""
}
