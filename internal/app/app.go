package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/riskibarqy/bolao-sca/internal/config"
	"github.com/riskibarqy/bolao-sca/internal/domain/championship"
	"github.com/riskibarqy/bolao-sca/internal/domain/match"
	"github.com/riskibarqy/bolao-sca/internal/domain/participant"
	"github.com/riskibarqy/bolao-sca/internal/domain/pool"
	"github.com/riskibarqy/bolao-sca/internal/domain/prediction"
	"github.com/riskibarqy/bolao-sca/internal/domain/ranking"
	"github.com/riskibarqy/bolao-sca/internal/domain/round"
	authjwt "github.com/riskibarqy/bolao-sca/internal/infrastructure/auth/jwt"
	cacherepo "github.com/riskibarqy/bolao-sca/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/bolao-sca/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/bolao-sca/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/bolao-sca/internal/interfaces/httpapi"
	"github.com/riskibarqy/bolao-sca/internal/observability"
	basecache "github.com/riskibarqy/bolao-sca/internal/platform/cache"
	"github.com/riskibarqy/bolao-sca/internal/platform/clock"
	"github.com/riskibarqy/bolao-sca/internal/platform/logging"
	"github.com/riskibarqy/bolao-sca/internal/usecase"
)

// repositories is one storage backend, memory or postgres.
type repositories struct {
	pools         pool.Repository
	championships championship.Repository
	rounds        round.Repository
	matches       match.Repository
	predictions   prediction.Repository
	participants  participant.Repository
	rankings      ranking.Repository
	tx            usecase.TxManager
}

// cleanup collects shutdown hooks and runs them in reverse order.
type cleanup []func(context.Context) error

func (c cleanup) run(ctx context.Context) error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewHTTPServer wires storage, cache, services and the router. The returned
// function releases the database and cache connections.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	var closers cleanup
	fail := func(err error) (*http.Server, func(context.Context) error, error) {
		_ = closers.run(context.Background())
		return nil, nil, err
	}

	clk := clock.NewSystem(cfg.BettingLocation)
	window := cfg.LockWindow()
	rule := cfg.ScoringRule()

	seed, err := loadSeed(cfg, clk)
	if err != nil {
		return fail(err)
	}

	var repos repositories
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func(context.Context) error { return db.Close() })

		if cfg.DBBootstrapSeed {
			if err := postgres.BootstrapSeed(ctx, db, seed, rule, clk.Now()); err != nil {
				return fail(fmt.Errorf("bootstrap seed: %w", err))
			}
		}
		repos = repositories{
			pools:         postgres.NewPoolRepository(db),
			championships: postgres.NewChampionshipRepository(db),
			rounds:        postgres.NewRoundRepository(db),
			matches:       postgres.NewMatchRepository(db),
			predictions:   postgres.NewPredictionRepository(db),
			participants:  postgres.NewParticipantRepository(db),
			rankings:      postgres.NewRankingRepository(db),
			tx:            postgres.NewTxManager(db),
		}
	default:
		store := memory.NewStore()
		if err := store.Load(seed, rule, clk.Now()); err != nil {
			return fail(fmt.Errorf("load seed: %w", err))
		}
		repos = repositories{
			pools:         memory.NewPoolRepository(store),
			championships: memory.NewChampionshipRepository(store),
			rounds:        memory.NewRoundRepository(store),
			matches:       memory.NewMatchRepository(store),
			predictions:   memory.NewPredictionRepository(store),
			participants:  memory.NewParticipantRepository(store),
			rankings:      memory.NewRankingRepository(store),
			tx:            store,
		}
	}
	logger.Info("storage ready", "driver", cfg.StoreDriver, "seed_file", cfg.SeedFile)

	var boards usecase.BoardCache
	if cfg.CacheEnabled {
		repos.participants = cacherepo.NewParticipantRepository(repos.participants, basecache.NewStore(cfg.CacheTTL))

		switch cfg.CacheBackend {
		case config.CacheBackendRedis:
			opts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				return fail(fmt.Errorf("parse REDIS_URL: %w", err))
			}
			client := redis.NewClient(opts)
			closers = append(closers, func(context.Context) error { return client.Close() })
			boards = cacherepo.NewRedisBoardCache(client, cfg.ServiceName, cfg.CacheTTL, cfg.RedisCircuitBreaker(), logger)
		default:
			boards = cacherepo.NewMemoryBoardCache(basecache.NewStore(cfg.CacheTTL))
		}
	}
	logger.Info("ranking cache configured", "enabled", cfg.CacheEnabled, "backend", cfg.CacheBackend, "ttl", cfg.CacheTTL.String())

	var (
		recorder       usecase.MetricsRecorder
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		m := observability.NewMetrics()
		recorder = m
		metricsHandler = m.Handler()
	}

	rankingSvc := usecase.NewRankingService(repos.rounds, repos.rankings, repos.participants, boards, recorder, logger)
	handler := httpapi.NewHandler(
		usecase.NewScheduleService(repos.pools, repos.championships, repos.rounds, repos.matches, window, clk),
		usecase.NewPredictionService(repos.participants, repos.rounds, repos.matches, repos.predictions, repos.tx, window, rule, clk, recorder, logger),
		usecase.NewResultService(repos.rounds, repos.matches, repos.predictions, repos.tx, rule, rankingSvc, clk, recorder, logger, cfg.RescoreWorkers),
		rankingSvc,
		usecase.NewParticipantService(repos.participants, rankingSvc, clk),
		logger,
	)

	if cfg.AuthJWTSecret == "" {
		logger.Warn("AUTH_JWT_SECRET is empty, authenticated routes will answer 503")
	}
	verifier := authjwt.NewVerifier(cfg.AuthJWTSecret, cfg.AuthJWTIssuer, cfg.AuthAdminRole)

	router := httpapi.NewRouter(handler, verifier, logger, httpapi.RouterConfig{
		ServiceName:        cfg.ServiceName,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PredictionLimiter:  predictionLimiter(cfg),
		MetricsHandler:     metricsHandler,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return server, closers.run, nil
}

func loadSeed(cfg config.Config, clk clock.Clock) (memory.SeedData, error) {
	if cfg.SeedFile != "" {
		data, err := memory.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return memory.SeedData{}, err
		}
		return data, nil
	}
	if cfg.AppEnv == config.EnvDev {
		return memory.DemoSeed(clk.Now(), clk.Location()), nil
	}
	return memory.SeedData{}, nil
}

// predictionLimiter returns nil, which disables limiting, when the rate is zero.
func predictionLimiter(cfg config.Config) *httpapi.UserRateLimiter {
	if cfg.PredictionRateLimitRPS <= 0 {
		return nil
	}
	return httpapi.NewUserRateLimiter(cfg.PredictionRateLimitRPS, cfg.PredictionRateLimitBurst)
}
