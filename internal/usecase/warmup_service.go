package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const defaultWarmupWorkers = 4

// WarmupService primes the cache on startup so the first page render does
// not wait on the backend: the league list and the global board load in
// parallel, then the per-league boards are prefetched on a bounded worker
// pool.
type WarmupService struct {
	gateway LeagueGateway
	store   *cache.Store
	logger  *logging.Logger
	workers int
}

type WarmupConfig struct {
	Gateway LeagueGateway
	Cache   *cache.Store
	Logger  *logging.Logger
	Workers int
}

func NewWarmupService(cfg WarmupConfig) (*WarmupService, error) {
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("league gateway is required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWarmupWorkers
	}

	return &WarmupService{
		gateway: cfg.Gateway,
		store:   cfg.Cache,
		logger:  logger,
		workers: workers,
	}, nil
}

// Warm fills the cache. A cold backend fails the warmup but never the
// process; callers treat the returned error as advisory.
func (s *WarmupService) Warm(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "warmup.warm")
	defer span.End()

	var leagues []league.League

	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		out, err := s.store.GetOrLoad(ctx, cacheKeyLeagues, func(ctx context.Context) (any, error) {
			return s.gateway.FetchLeagues(ctx)
		})
		if err != nil {
			return fmt.Errorf("warm leagues: %w", err)
		}
		if loaded, ok := out.([]league.League); ok {
			leagues = loaded
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		_, err := s.store.GetOrLoad(ctx, boardCacheKey(0), func(ctx context.Context) (any, error) {
			return s.gateway.FetchLeaderboard(ctx, 0)
		})
		if err != nil {
			return fmt.Errorf("warm global leaderboard: %w", err)
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		return err
	}

	if len(leagues) == 0 {
		return nil
	}

	workerPool, err := ants.NewPool(s.workers)
	if err != nil {
		return fmt.Errorf("start warmup worker pool: %w", err)
	}
	defer workerPool.Release()

	var wg sync.WaitGroup
	for _, item := range leagues {
		leagueID := item.ID
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if _, err := s.store.GetOrLoad(ctx, boardCacheKey(leagueID), func(ctx context.Context) (any, error) {
				return s.gateway.FetchLeaderboard(ctx, leagueID)
			}); err != nil {
				s.logger.WarnContext(ctx, "warm league leaderboard failed", "league_id", leagueID, "error", err)
			}
		}
		if err := workerPool.Submit(task); err != nil {
			wg.Done()
			s.logger.WarnContext(ctx, "submit warmup task failed", "league_id", leagueID, "error", err)
		}
	}
	wg.Wait()
	return nil
}
