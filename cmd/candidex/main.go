package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/candidex/internal/config"
	dbRedis "github.com/kailas-cloud/candidex/internal/db/redis"
	"github.com/kailas-cloud/candidex/internal/domain"
	logpkg "github.com/kailas-cloud/candidex/internal/logger"
	"github.com/kailas-cloud/candidex/internal/metrics"
	budgetrepo "github.com/kailas-cloud/candidex/internal/repository/budget"
	candidaterepo "github.com/kailas-cloud/candidex/internal/repository/candidate"
	"github.com/kailas-cloud/candidex/internal/repository/embcache"
	jobrepo "github.com/kailas-cloud/candidex/internal/repository/job"
	shortlistrepo "github.com/kailas-cloud/candidex/internal/repository/shortlist"
	weightsrepo "github.com/kailas-cloud/candidex/internal/repository/weights"
	chiTransport "github.com/kailas-cloud/candidex/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/candidex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/candidex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/candidex/internal/usecase/health"
	matchuc "github.com/kailas-cloud/candidex/internal/usecase/match"
	"github.com/kailas-cloud/candidex/internal/usecase/scoring"
	shortlistuc "github.com/kailas-cloud/candidex/internal/usecase/shortlist"
	usageuc "github.com/kailas-cloud/candidex/internal/usecase/usage"
	"github.com/kailas-cloud/candidex/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting candidex API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Bool("postgres", cfg.Postgres.DSN != ""),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server exited", zap.Error(err))
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	// Valkey and Redis share the rueidis client.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database")

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterMatchingMetrics()
	metrics.RegisterHTTPMetrics()

	// Shortlist transition log: Postgres when configured, otherwise in memory.
	var (
		transitions shortlistuc.TransitionStore
		pgPinger    healthuc.Pinger
	)
	if cfg.Postgres.DSN != "" {
		pool, err := shortlistrepo.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		pg := shortlistrepo.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
		transitions, pgPinger = pg, pg
		logger.Info("Shortlist log in postgres")
	} else {
		transitions = shortlistrepo.NewMemoryStore()
		logger.Warn("POSTGRES_DSN not set, shortlist log is in memory")
	}

	emb := buildEmbedders(ctx, cfg, store, logger)

	prefix := cfg.Storage.KeyPrefix
	jobs := jobrepo.New(store, prefix)
	candidates := candidaterepo.New(store, prefix)
	weights := weightsrepo.New(store, prefix)

	pool := embeddinguc.NewPool(emb.candidate, cfg.Matching.PoolSize, logger)
	matchSvc := matchuc.New(
		jobs, candidates, pool, emb.job, emb.candidate, scoring.NewScorer(time.Now),
		matchuc.Options{
			DefaultDeadline: time.Duration(cfg.Matching.DefaultDeadlineMs) * time.Millisecond,
		},
		logger,
	)
	shortlistSvc := shortlistuc.New(jobs, weights, matchSvc, transitions, logger)
	healthSvc := healthuc.New(store, pgPinger, emb.health)

	// Pass a nil interface, not a typed nil pointer, when no budget is configured.
	var budgetReader usageuc.BudgetReader
	if emb.budget != nil {
		budgetReader = emb.budget
	}
	usageSvc := usageuc.New(budgetReader, cfg.Embedding.Vectorizer.Provider)

	server := chiTransport.NewServer(matchSvc, weights, shortlistSvc, usageSvc, healthSvc, logger).
		WithMaxCandidates(cfg.Matching.MaxCandidates)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.RequestLogger(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter:  r,
		Middlewares: []func(http.Handler) http.Handler{chiTransport.RateLimitByIP(cfg.RateLimit.RequestsPerMinute)},
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

type embedders struct {
	job       domain.Embedder
	candidate domain.Embedder
	health    healthuc.EmbeddingChecker
	budget    *embeddinguc.BudgetTracker
}

// buildEmbedders assembles the decorator chain:
// OpenAI -> Retrying -> Cached -> Instrumented -> Instruction.
func buildEmbedders(ctx context.Context, cfg config.Config, store *dbRedis.Store, logger *zap.Logger) embedders {
	vecCfg := cfg.Embedding.Vectorizer
	provName := vecCfg.Provider
	provCfg := cfg.Embedding.Providers[provName]

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     provCfg.APIKey,
		BaseURL:    provCfg.BaseURL,
		Model:      vecCfg.Model,
		Dimensions: vecCfg.Dimensions,
		Provider:   provName,
		Logger:     logger,
	})

	rc := cfg.Embedding.Retry
	var embedder domain.Embedder = embeddinguc.NewRetryingEmbedder(base, embeddinguc.RetryPolicy{
		MaxRetries:     rc.MaxRetries,
		BaseDelay:      time.Duration(rc.BaseDelayMs) * time.Millisecond,
		Factor:         rc.Factor,
		Jitter:         rc.Jitter,
		AttemptTimeout: time.Duration(rc.AttemptTimeoutMs) * time.Millisecond,
	}, logger).WithRateLimit(provCfg.RequestsPerSec, cfg.Matching.PoolSize)

	cachePrefix := fmt.Sprintf("%semb:%s:", cfg.Storage.KeyPrefix, vecCfg.Model)
	if cfg.Embedding.Cache.Backend == "memory" {
		embedder = embcache.New(embedder, embcache.NewMemoryStore(), cachePrefix, metrics.EmbeddingCacheTotal, logger)
	} else {
		embedder = embcache.New(embedder, store, cachePrefix, metrics.EmbeddingCacheTotal, logger).
			WithTTL(time.Duration(cfg.Embedding.Cache.TTLSec) * time.Second)
	}

	var (
		budgetChecker embeddinguc.BudgetChecker
		tracker       *embeddinguc.BudgetTracker
	)
	if b := provCfg.Budget; b.DailyTokenLimit > 0 || b.MonthlyTokenLimit > 0 {
		action := embeddinguc.BudgetActionWarn
		if b.Action == "reject" {
			action = embeddinguc.BudgetActionReject
		}
		tracker = embeddinguc.NewBudgetTracker(
			provName, cfg.Storage.KeyPrefix, b.DailyTokenLimit, b.MonthlyTokenLimit, action, logger,
		)
		tracker.WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
		budgetChecker = tracker
	}
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, provName, vecCfg.Model, budgetChecker, logger)

	out := embedders{job: embedder, candidate: embedder, health: base, budget: tracker}
	if vecCfg.JobInstruct != "" {
		out.job = domain.NewInstructionEmbedder(embedder, vecCfg.JobInstruct)
	}
	if vecCfg.CandidateInstruct != "" {
		out.candidate = domain.NewInstructionEmbedder(embedder, vecCfg.CandidateInstruct)
	}
	logger.Info("Embedders created",
		zap.String("provider", provName),
		zap.String("model", vecCfg.Model),
		zap.Int("dimensions", vecCfg.Dimensions),
		zap.String("cache", cfg.Embedding.Cache.Backend),
	)
	return out
}
