package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// LeaderboardView selects which standings board is shown.
type LeaderboardView string

const (
	ViewGlobal LeaderboardView = "global"
	ViewLeague LeaderboardView = "league"
)

const (
	cacheKeyLeaderboardPrefix = "leaderboard:"

	emptyNoLeagues        = "No leagues available yet."
	emptyGlobalBoard      = "No predictions have been made yet."
	emptyLeagueBoard      = "No predictions for this league yet."
	emptyPickLeaguePrompt = "Select a league to see its standings."
)

// LeaderboardState is a snapshot of the standings view. Entries is always
// fully normalized; rows never reach the presentation layer raw.
type LeaderboardState struct {
	View             LeaderboardView
	Leagues          []league.League
	SelectedLeagueID int64
	Entries          []leaderboard.Entry
	Loading          bool
	EmptyMessage     string
}

// LeaderboardService drives the global and per-league standings views. The
// previous board is cleared before each fetch so a stale board is never shown
// under a new heading, and responses for a superseded selection are dropped.
type LeaderboardService struct {
	gateway LeagueGateway
	store   *cache.Store
	logger  *logging.Logger

	mu         sync.Mutex
	generation uint64
	state      LeaderboardState
}

type LeaderboardConfig struct {
	Gateway LeagueGateway
	Cache   *cache.Store
	Logger  *logging.Logger
}

func NewLeaderboardService(cfg LeaderboardConfig) (*LeaderboardService, error) {
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("league gateway is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &LeaderboardService{
		gateway: cfg.Gateway,
		store:   cfg.Cache,
		logger:  logger,
		state:   LeaderboardState{View: ViewGlobal},
	}, nil
}

// Load fetches the league list and the global board.
func (s *LeaderboardService) Load(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "leaderboard.load")
	defer span.End()

	leagues, err := s.gateway.FetchLeagues(ctx)
	if err != nil {
		return fmt.Errorf("load leaderboard leagues: %w", err)
	}

	s.mu.Lock()
	s.state.Leagues = leagues
	s.mu.Unlock()

	return s.refresh(ctx, true)
}

// SetView switches between the global and per-league boards. An explicit
// switch fetches live so the user never lands on rows a TTL old.
func (s *LeaderboardService) SetView(ctx context.Context, view LeaderboardView) error {
	ctx, span := startUsecaseSpan(ctx, "leaderboard.set_view")
	defer span.End()

	if view != ViewGlobal && view != ViewLeague {
		return fmt.Errorf("%w: unknown leaderboard view %q", ErrInvalidInput, view)
	}

	s.mu.Lock()
	if s.state.View == view {
		s.mu.Unlock()
		return nil
	}
	s.state.View = view
	if view == ViewGlobal {
		s.state.SelectedLeagueID = 0
	}
	s.mu.Unlock()

	return s.refresh(ctx, false)
}

// SetLeague selects the league whose board is shown and implies the league
// view. League boards read through the cache; warmup primes them so hopping
// between leagues stays cheap.
func (s *LeaderboardService) SetLeague(ctx context.Context, leagueID int64) error {
	ctx, span := startUsecaseSpan(ctx, "leaderboard.set_league")
	defer span.End()

	s.mu.Lock()
	if findLeague(s.state.Leagues, leagueID) == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: unknown league id %d", ErrInvalidInput, leagueID)
	}
	s.state.View = ViewLeague
	s.state.SelectedLeagueID = leagueID
	s.mu.Unlock()

	return s.refresh(ctx, true)
}

// Refresh refetches the currently selected board live, bypassing cached rows.
func (s *LeaderboardService) Refresh(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "leaderboard.refresh")
	defer span.End()
	return s.refresh(ctx, false)
}

func (s *LeaderboardService) refresh(ctx context.Context, fromCache bool) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	view := s.state.View
	leagueID := s.state.SelectedLeagueID
	leagueCount := len(s.state.Leagues)
	s.state.Entries = nil
	s.state.Loading = true
	s.state.EmptyMessage = ""
	s.mu.Unlock()

	if view == ViewLeague && leagueID <= 0 {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.generation {
			return nil
		}
		s.state.Loading = false
		if leagueCount == 0 {
			s.state.EmptyMessage = emptyNoLeagues
		} else {
			s.state.EmptyMessage = emptyPickLeaguePrompt
		}
		return nil
	}

	fetchID := int64(0)
	if view == ViewLeague {
		fetchID = leagueID
	}

	rows, err := s.fetchRows(ctx, fetchID, fromCache)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.DebugContext(ctx, "discarding stale leaderboard rows", "league_id", fetchID)
		return nil
	}
	s.state.Loading = false

	if err != nil {
		return fmt.Errorf("fetch leaderboard league_id=%d: %w", fetchID, err)
	}

	s.state.Entries = leaderboard.Normalize(rows)
	if len(s.state.Entries) == 0 {
		if view == ViewLeague {
			s.state.EmptyMessage = emptyLeagueBoard
		} else {
			s.state.EmptyMessage = emptyGlobalBoard
		}
	}
	return nil
}

func (s *LeaderboardService) fetchRows(ctx context.Context, leagueID int64, fromCache bool) ([]leaderboard.Row, error) {
	if s.store == nil {
		return s.gateway.FetchLeaderboard(ctx, leagueID)
	}
	key := boardCacheKey(leagueID)

	// A live fetch still repopulates the cache so the next read-through
	// serves the fresh board.
	if !fromCache {
		rows, err := s.gateway.FetchLeaderboard(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		s.store.Set(ctx, key, rows)
		return rows, nil
	}

	out, err := s.store.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.gateway.FetchLeaderboard(ctx, leagueID)
	})
	if err != nil {
		return nil, err
	}
	rows, ok := out.([]leaderboard.Row)
	if !ok {
		return nil, fmt.Errorf("unexpected cached leaderboard payload type %T", out)
	}
	return rows, nil
}

func boardCacheKey(leagueID int64) string {
	if leagueID > 0 {
		return fmt.Sprintf("%sleague:%d", cacheKeyLeaderboardPrefix, leagueID)
	}
	return cacheKeyLeaderboardPrefix + "global"
}

// State returns a copy of the current leaderboard snapshot.
func (s *LeaderboardService) State() LeaderboardState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.state
	out.Leagues = append([]league.League(nil), s.state.Leagues...)
	out.Entries = append([]leaderboard.Entry(nil), s.state.Entries...)
	return out
}
