package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/prediction-league/external/leagueapi"
	"github.com/riskibarqy/prediction-league/internal/config"
	"github.com/riskibarqy/prediction-league/internal/observability"
	"github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
	"github.com/riskibarqy/prediction-league/internal/session"
	"github.com/riskibarqy/prediction-league/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// App wires configuration, the API gateway, and the services together and
// owns the observability lifecycles.
type App struct {
	Config      config.Config
	Logger      *logging.Logger
	Sessions    *session.Store
	Client      *leagueapi.Client
	Workflow    *usecase.WorkflowService
	Leaderboard *usecase.LeaderboardService
	History     *usecase.HistoryService
	Auth        *usecase.AuthService
	Profile     *usecase.ProfileService
	Admin       *usecase.AdminService
	Warmup      *usecase.WarmupService

	store           *cache.Store
	pprofSrv        *http.Server
	uptraceShutdown func(context.Context) error
	pyroscopeStop   func() error
}

func New(cfg config.Config) (*App, error) {
	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)

	uptraceShutdown, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	pyroscopeStop, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}
	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("start pprof server: %w", err)
	}

	sessions := session.NewStore(cfg.SessionFilePath)
	if err := sessions.Load(); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}

	client := leagueapi.NewClient(leagueapi.ClientConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.APITimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.APITimeout,
		MaxRetries: cfg.APIMaxRetries,
		Tokens:     sessions,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.APICircuitEnabled,
			FailureThreshold: cfg.APICircuitFailureCount,
			OpenTimeout:      cfg.APICircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.APICircuitHalfOpenMaxReq,
		},
	})

	workflow, err := usecase.NewWorkflowService(usecase.WorkflowConfig{
		Gateway:           client,
		Cache:             store,
		Logger:            logger,
		SuccessResetDelay: cfg.SubmitSuccessDisplayDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("build workflow service: %w", err)
	}

	board, err := usecase.NewLeaderboardService(usecase.LeaderboardConfig{
		Gateway: client,
		Cache:   store,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build leaderboard service: %w", err)
	}

	history, err := usecase.NewHistoryService(client, logger)
	if err != nil {
		return nil, fmt.Errorf("build history service: %w", err)
	}

	auth, err := usecase.NewAuthService(client, sessions, logger)
	if err != nil {
		return nil, fmt.Errorf("build auth service: %w", err)
	}

	profile, err := usecase.NewProfileService(client, sessions, logger)
	if err != nil {
		return nil, fmt.Errorf("build profile service: %w", err)
	}

	admin, err := usecase.NewAdminService(client, store, logger)
	if err != nil {
		return nil, fmt.Errorf("build admin service: %w", err)
	}

	var warmup *usecase.WarmupService
	if cfg.WarmupEnabled && store != nil {
		warmup, err = usecase.NewWarmupService(usecase.WarmupConfig{
			Gateway: client,
			Cache:   store,
			Logger:  logger,
			Workers: cfg.WarmupWorkers,
		})
		if err != nil {
			return nil, fmt.Errorf("build warmup service: %w", err)
		}
	}

	return &App{
		Config:          cfg,
		Logger:          logger,
		Sessions:        sessions,
		Client:          client,
		Workflow:        workflow,
		Leaderboard:     board,
		History:         history,
		Auth:            auth,
		Profile:         profile,
		Admin:           admin,
		Warmup:          warmup,
		store:           store,
		pprofSrv:        pprofSrv,
		uptraceShutdown: uptraceShutdown,
		pyroscopeStop:   pyroscopeStop,
	}, nil
}

// Start runs the cache warmup. A cold backend is logged, not fatal; the user
// can still browse and every view falls back to a live fetch.
func (a *App) Start(ctx context.Context) {
	if a.Warmup == nil {
		return
	}
	if err := a.Warmup.Warm(ctx); err != nil {
		a.Logger.WarnContext(ctx, "cache warmup failed", "error", err)
	}
}

// Shutdown stops observability in reverse start order.
func (a *App) Shutdown(ctx context.Context) {
	if err := observability.StopPprofServer(a.pprofSrv, a.Logger, 5*time.Second); err != nil {
		a.Logger.WarnContext(ctx, "stop pprof server failed", "error", err)
	}
	if a.pyroscopeStop != nil {
		if err := a.pyroscopeStop(); err != nil {
			a.Logger.WarnContext(ctx, "stop pyroscope failed", "error", err)
		}
	}
	if a.uptraceShutdown != nil {
		if err := a.uptraceShutdown(ctx); err != nil {
			a.Logger.WarnContext(ctx, "shutdown uptrace failed", "error", err)
		}
	}
}
