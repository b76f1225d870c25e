package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

func TestWarmup_PrimesLeaguesAndLeaderboards(t *testing.T) {
	t.Parallel()

	var boardCalls atomic.Int32
	gateway := &fakeLeagueGateway{
		leagues: twoLeagues(),
		boardFn: func(_ context.Context, leagueID int64) ([]leaderboard.Row, error) {
			boardCalls.Add(1)
			return []leaderboard.Row{{ProfileFirstName: "Ada", TotalPoints: intPtr(int(leagueID))}}, nil
		},
	}

	store := cache.NewStore(time.Minute)
	svc, err := NewWarmupService(WarmupConfig{
		Gateway: gateway,
		Cache:   store,
		Logger:  logging.NewNop(),
		Workers: 2,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Warm(context.Background()))

	// Global board plus one per league.
	require.Equal(t, int32(3), boardCalls.Load())

	ctx := context.Background()
	_, ok := store.Get(ctx, "leagues")
	require.True(t, ok)
	_, ok = store.Get(ctx, "leaderboard:global")
	require.True(t, ok)
	_, ok = store.Get(ctx, "leaderboard:league:1")
	require.True(t, ok)
	_, ok = store.Get(ctx, "leaderboard:league:2")
	require.True(t, ok)

	// A service reading through the same keys must not refetch.
	board := newTestLeaderboard(t, gateway, store)
	require.NoError(t, board.Load(context.Background()))
	require.Equal(t, int32(3), boardCalls.Load(), "warmed cache should serve the view")
}

func TestWarmup_FailedLeagueBoardIsNonFatal(t *testing.T) {
	t.Parallel()

	gateway := &fakeLeagueGateway{
		leagues: twoLeagues(),
		boardFn: func(_ context.Context, leagueID int64) ([]leaderboard.Row, error) {
			if leagueID == 2 {
				return nil, ErrDependencyUnavailable
			}
			return nil, nil
		},
	}

	store := cache.NewStore(time.Minute)
	svc, err := NewWarmupService(WarmupConfig{Gateway: gateway, Cache: store, Logger: logging.NewNop()})
	require.NoError(t, err)
	require.NoError(t, svc.Warm(context.Background()), "per-league warm failures are advisory")

	_, ok := store.Get(context.Background(), "leaderboard:league:1")
	require.True(t, ok)
	_, ok = store.Get(context.Background(), "leaderboard:league:2")
	require.False(t, ok)
}
