package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func newTestLeaderboard(t *testing.T, gateway *fakeLeagueGateway, store *cache.Store) *LeaderboardService {
	t.Helper()

	svc, err := NewLeaderboardService(LeaderboardConfig{
		Gateway: gateway,
		Cache:   store,
		Logger:  logging.NewNop(),
	})
	require.NoError(t, err)
	return svc
}

func TestLeaderboard_Load_NormalizesGlobalRows(t *testing.T) {
	t.Parallel()

	gateway := &fakeLeagueGateway{
		leagues: twoLeagues(),
		boardFn: func(_ context.Context, leagueID int64) ([]leaderboard.Row, error) {
			require.Equal(t, int64(0), leagueID)
			return []leaderboard.Row{
				{ProfileFirstName: "Ada", ProfileLastName: "Lovelace", TotalPoints: intPtr(12)},
				{FirstName: "Alan", UserEmail: "alan@example.com", Points: intPtr(9)},
			}, nil
		},
	}

	svc := newTestLeaderboard(t, gateway, nil)
	require.NoError(t, svc.Load(context.Background()))

	state := svc.State()
	require.Equal(t, ViewGlobal, state.View)
	require.Len(t, state.Entries, 2)
	require.Equal(t, 1, state.Entries[0].Rank)
	require.Equal(t, "Ada Lovelace", state.Entries[0].DisplayName())
	require.Equal(t, 12, state.Entries[0].Points)
	require.Equal(t, 2, state.Entries[1].Rank)
	require.Empty(t, state.EmptyMessage)
}

func TestLeaderboard_EmptyStatesAreDistinct(t *testing.T) {
	t.Parallel()

	gateway := &fakeLeagueGateway{
		leagues: twoLeagues(),
		boardFn: func(context.Context, int64) ([]leaderboard.Row, error) {
			return nil, nil
		},
	}

	svc := newTestLeaderboard(t, gateway, nil)
	require.NoError(t, svc.Load(context.Background()))
	require.Equal(t, emptyGlobalBoard, svc.State().EmptyMessage)

	require.NoError(t, svc.SetView(context.Background(), ViewLeague))
	require.Equal(t, emptyPickLeaguePrompt, svc.State().EmptyMessage)

	require.NoError(t, svc.SetLeague(context.Background(), 1))
	require.Equal(t, emptyLeagueBoard, svc.State().EmptyMessage)
}

func TestLeaderboard_NoLeaguesEmptyState(t *testing.T) {
	t.Parallel()

	gateway := &fakeLeagueGateway{
		boardFn: func(context.Context, int64) ([]leaderboard.Row, error) {
			return nil, nil
		},
	}

	svc := newTestLeaderboard(t, gateway, nil)
	require.NoError(t, svc.Load(context.Background()))
	require.NoError(t, svc.SetView(context.Background(), ViewLeague))
	require.Equal(t, emptyNoLeagues, svc.State().EmptyMessage)
}

func TestLeaderboard_SetLeague_ClearsRowsOnError(t *testing.T) {
	t.Parallel()

	gateway := &fakeLeagueGateway{
		leagues: twoLeagues(),
		boardFn: func(_ context.Context, leagueID int64) ([]leaderboard.Row, error) {
			if leagueID == 2 {
				return nil, fmt.Errorf("%w: backend 503", ErrDependencyUnavailable)
			}
			return []leaderboard.Row{{ProfileFirstName: "Ada", TotalPoints: intPtr(3)}}, nil
		},
	}

	svc := newTestLeaderboard(t, gateway, nil)
	require.NoError(t, svc.Load(context.Background()))
	require.NoError(t, svc.SetLeague(context.Background(), 1))
	require.Len(t, svc.State().Entries, 1)

	err := svc.SetLeague(context.Background(), 2)
	require.ErrorIs(t, err, ErrDependencyUnavailable)
	require.Empty(t, svc.State().Entries, "a failed switch must not keep showing the old board")
}

func TestLeaderboard_SetLeague_RejectsUnknownLeague(t *testing.T) {
	t.Parallel()

	gateway := &fakeLeagueGateway{leagues: twoLeagues()}
	svc := newTestLeaderboard(t, gateway, nil)
	require.NoError(t, svc.Load(context.Background()))
	require.ErrorIs(t, svc.SetLeague(context.Background(), 99), ErrInvalidInput)
}

func TestLeaderboard_FirstMountServesFromCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	gateway := &fakeLeagueGateway{
		leagues: twoLeagues(),
		boardFn: func(context.Context, int64) ([]leaderboard.Row, error) {
			calls.Add(1)
			return []leaderboard.Row{{ProfileFirstName: "Ada", TotalPoints: intPtr(1)}}, nil
		},
	}

	store := cache.NewStore(time.Minute)
	svc := newTestLeaderboard(t, gateway, store)
	require.NoError(t, svc.Load(context.Background()))
	require.Equal(t, int32(1), calls.Load())

	second := newTestLeaderboard(t, gateway, store)
	require.NoError(t, second.Load(context.Background()))
	require.Equal(t, int32(1), calls.Load(), "a warmed cache serves the first mount")
}

func TestLeaderboard_ExplicitRefreshBypassesCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	gateway := &fakeLeagueGateway{
		leagues: twoLeagues(),
		boardFn: func(context.Context, int64) ([]leaderboard.Row, error) {
			calls.Add(1)
			return []leaderboard.Row{{ProfileFirstName: "Ada", TotalPoints: intPtr(1)}}, nil
		},
	}

	store := cache.NewStore(time.Minute)
	svc := newTestLeaderboard(t, gateway, store)
	require.NoError(t, svc.Load(context.Background()))
	require.Equal(t, int32(1), calls.Load())

	require.NoError(t, svc.Refresh(context.Background()))
	require.Equal(t, int32(2), calls.Load(), "an explicit refresh must hit the backend")

	// The live fetch repopulates the cache for the next read-through.
	second := newTestLeaderboard(t, gateway, store)
	require.NoError(t, second.Load(context.Background()))
	require.Equal(t, int32(2), calls.Load())
}

func TestLeaderboard_SwitchingToGlobalRefetches(t *testing.T) {
	t.Parallel()

	var globalCalls atomic.Int32
	gateway := &fakeLeagueGateway{
		leagues: twoLeagues(),
		boardFn: func(_ context.Context, leagueID int64) ([]leaderboard.Row, error) {
			if leagueID == 0 {
				globalCalls.Add(1)
			}
			return []leaderboard.Row{{ProfileFirstName: "Ada", TotalPoints: intPtr(1)}}, nil
		},
	}

	store := cache.NewStore(time.Minute)
	svc := newTestLeaderboard(t, gateway, store)
	require.NoError(t, svc.Load(context.Background()))
	require.Equal(t, int32(1), globalCalls.Load())

	require.NoError(t, svc.SetLeague(context.Background(), 1))
	require.NoError(t, svc.SetView(context.Background(), ViewGlobal))
	require.Equal(t, int32(2), globalCalls.Load(), "switching back to global must not show cached rows")
}
