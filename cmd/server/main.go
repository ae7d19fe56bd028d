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

	"github.com/gin-gonic/gin"
	"github.com/ramsesyok/billiards/internal/api"
	"github.com/ramsesyok/billiards/internal/auth"
	"github.com/ramsesyok/billiards/internal/config"
	"github.com/ramsesyok/billiards/internal/database"
	"github.com/ramsesyok/billiards/internal/migrations"
	"github.com/ramsesyok/billiards/internal/observability"
	"github.com/ramsesyok/billiards/internal/redis"
	"github.com/ramsesyok/billiards/internal/session"
	"github.com/ramsesyok/billiards/internal/store"
	"github.com/ramsesyok/billiards/internal/ws"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration (.env, environment, optional config file)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	observability.InitializeLogger(cfg.Logger)
	defer observability.Sync()
	logger := observability.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := api.Dependencies{
		Config: cfg,
		Issuer: auth.NewIssuer(cfg.JWTSecret, auth.DefaultTokenTTL),
		Hub:    ws.NewHub(),
	}

	// Run log (Postgres), optional
	var recorder session.RunRecorder
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			logger.Info("Running DB migrations on startup")
			if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		runs := store.NewRunStore(db)
		recorder = runs
		deps.Runs = runs
	} else {
		logger.Info("DATABASE_URL not set; run log disabled")
	}

	// Frame cache and fan-out (Redis), optional
	var frames *store.FrameStore
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()

		frames = store.NewFrameStore(rdb, time.Duration(cfg.SnapshotTTLSeconds)*time.Second)
		deps.Publisher = frames
		deps.Frames = frames
	} else {
		logger.Info("REDIS_URL not set; frames go straight to local WebSocket clients")
		deps.Publisher = deps.Hub
	}

	deps.Sessions = session.NewManager(cfg, recorder)
	runner := session.NewRunner(deps.Sessions, deps.Publisher, cfg.FrameRate)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return deps.Hub.Run(gctx) })
	g.Go(func() error { return runner.Run(gctx) })
	g.Go(func() error {
		return session.RunReaper(gctx, deps.Sessions,
			time.Duration(cfg.ReaperIntervalSeconds)*time.Second,
			time.Duration(cfg.SessionIdleMinutes)*time.Minute)
	})
	if frames != nil {
		g.Go(func() error { return ws.RunFrameSubscriber(gctx, deps.Hub, frames) })
	}
	g.Go(func() error {
		logger.Info("Starting billiards server", zap.String("addr", srv.Addr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("Server stopped")
	return nil
}
