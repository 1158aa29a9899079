package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelf-inventory/shelf/cmd/shelf/cli"
	"github.com/shelf-inventory/shelf/internal/app"
	"github.com/shelf-inventory/shelf/internal/auth"
	dashboardhttp "github.com/shelf-inventory/shelf/internal/dashboard/http"
	"github.com/shelf-inventory/shelf/internal/observability"
	"github.com/shelf-inventory/shelf/internal/platform/cache"
	"github.com/shelf-inventory/shelf/internal/platform/db"
	"github.com/shelf-inventory/shelf/internal/profile"
	"github.com/shelf-inventory/shelf/internal/provider"
	"github.com/shelf-inventory/shelf/internal/query"
	"github.com/shelf-inventory/shelf/internal/shared"
	"github.com/shelf-inventory/shelf/internal/view"
	"github.com/shelf-inventory/shelf/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
		code := jobsCLI.Run(ctx, os.Args[2:], os.Stdout, os.Stderr)
		_ = jobsCLI.Close()
		os.Exit(code)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var dbpool *pgxpool.Pool
	if cfg.UsesPostgres() {
		dbpool, err = db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer dbpool.Close()
	}

	metrics := observability.NewMetrics()
	sessionManager := shared.NewSessionManager(redisClient, "shelf_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	tokens := auth.NewTokens(cfg.JWTSecret)
	var (
		source        provider.Provider
		writer        profile.Writer
		authenticator auth.Authenticator
	)
	if cfg.UsesPostgres() {
		pgSource := provider.NewPGSource(dbpool)
		source, writer = pgSource, pgSource
		authenticator = auth.NewLocalAuthenticator(auth.NewPGUserStore(dbpool), tokens, cfg.TokenTTL)
	} else {
		upstream := provider.NewHTTPClient(cfg.UpstreamURL, cfg.UpstreamTimeout)
		source, writer = upstream, upstream
		authenticator = auth.NewRemoteAuthenticator(upstream, tokens)
	}
	if !tokens.Verifying() {
		logger.Warn("JWT_SECRET not set, upstream tokens are decoded without verification")
	}

	providerCache := provider.NewCache(source, redisClient, cfg.CacheTTL, provider.NewMetrics(metrics.Registerer()), logger)
	store := query.NewStore()
	err = providerCache.ListenForInvalidation(ctx, "", func(version int64) {
		expired := store.Expire()
		logger.Info("provider cache bumped", slog.Int64("version", version), slog.Int("expired_states", expired))
	})
	if err != nil {
		logger.Warn("provider cache invalidation listener", slog.Any("error", err))
	}

	fetcher := provider.NewFetcher(providerCache, store, cfg.FetchConcurrency, cfg.StaleAfter, logger)
	go pruneScopes(ctx, store, cfg.ScopeIdleTTL, logger)

	dashboardHandler := dashboardhttp.NewHandler(logger, fetcher, templates, csrfManager, cfg.AppRequestTimeout)
	profileHandler := profile.NewHandler(logger, fetcher, writer, templates, csrfManager)
	authHandler := auth.NewHandler(logger, auth.NewService(authenticator), templates, sessionManager, csrfManager, dashboardHandler.ReleaseScope)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		DashboardHandler: dashboardHandler,
		ProfileHandler:   profileHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("provider", cfg.Provider))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// pruneScopes forgets query states of sessions that went idle without
// logging out.
func pruneScopes(ctx context.Context, store *query.Store, idle time.Duration, logger *slog.Logger) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Prune(idle); n > 0 {
				logger.Debug("pruned idle query scopes", slog.Int("scopes", n))
			}
		}
	}
}
