package usecase

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
	"github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// AdminService manages official league results. Saving or deleting a result
// recalculates points server-side, so every mutation invalidates the cached
// leaderboards.
type AdminService struct {
	gateway  AdminGateway
	store    *cache.Store
	validate *validator.Validate
	logger   *logging.Logger
}

func NewAdminService(gateway AdminGateway, store *cache.Store, logger *logging.Logger) (*AdminService, error) {
	if gateway == nil {
		return nil, fmt.Errorf("admin gateway is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminService{
		gateway:  gateway,
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}, nil
}

// ListResults returns every saved finishing order.
func (s *AdminService) ListResults(ctx context.Context) ([]result.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "admin.list_results")
	defer span.End()
	return s.gateway.FetchResults(ctx)
}

// SaveResult creates the league's result, or replaces it when one already
// exists, mirroring the edit-in-place behavior of the dashboard form.
func (s *AdminService) SaveResult(ctx context.Context, input result.Input) (result.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "admin.save_result")
	defer span.End()

	if err := s.validate.Struct(input); err != nil {
		return result.Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := input.Validate(); err != nil {
		return result.Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, err := s.gateway.FetchResults(ctx)
	if err != nil {
		return result.Result{}, fmt.Errorf("look up existing results: %w", err)
	}

	var saved result.Result
	if current := findResultByLeague(existing, input.LeagueID); current != nil {
		saved, err = s.gateway.UpdateResult(ctx, current.ID, input)
	} else {
		saved, err = s.gateway.CreateResult(ctx, input)
	}
	if err != nil {
		return result.Result{}, err
	}

	s.invalidateLeaderboards(ctx)
	s.logger.InfoContext(ctx, "league result saved", "league_id", input.LeagueID, "result_id", saved.ID)
	return saved, nil
}

// DeleteResult removes a result and resets the affected points.
func (s *AdminService) DeleteResult(ctx context.Context, resultID int64) error {
	ctx, span := startUsecaseSpan(ctx, "admin.delete_result")
	defer span.End()

	if resultID <= 0 {
		return fmt.Errorf("%w: result id must be greater than zero", ErrInvalidInput)
	}
	if err := s.gateway.DeleteResult(ctx, resultID); err != nil {
		return err
	}

	s.invalidateLeaderboards(ctx)
	s.logger.InfoContext(ctx, "league result deleted", "result_id", resultID)
	return nil
}

func (s *AdminService) invalidateLeaderboards(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.store.DeletePrefix(ctx, cacheKeyLeaderboardPrefix)
}

func findResultByLeague(items []result.Result, leagueID int64) *result.Result {
	for i := range items {
		if items[i].LeagueID == leagueID {
			return &items[i]
		}
	}
	return nil
}
