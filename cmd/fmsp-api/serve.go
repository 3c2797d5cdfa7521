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

	"github.com/mitchsteamy/crome-lab-fmsp/internal/api"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/auth"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/builder"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/config"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/flow"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/jobs"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/pubsub"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/question"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/schema"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/service"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/transfer"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/ws"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply Postgres migrations before serving")
	return cmd
}

func runServe(ctx context.Context, migrate bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if migrate && cfg.StoreDriver == config.StorePostgres {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
		logger.Info("Migrations applied")
	}

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	// Redis is optional; without it events stay in process and the
	// sweep only runs at startup and on demand.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}

	bus := pubsub.New(rdb, logger)
	hub := ws.NewHub(logger)
	go hub.Run()
	bus.SetWSHub(hub)

	schemas := schema.NewCompilerWithCache(16, time.Hour)
	meds := service.NewMedicationService(st, bus, transfer.NewParser(schemas, nil), logger)

	archive, err := openArchive(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open export archive: %w", err)
	}
	meds.SetArchive(archive)

	if cfg.RedisAddr != "" {
		jobServer, jobClient := jobs.NewJobServer(cfg.RedisAddr, meds, cfg.SweepCron, logger)
		if err := jobServer.Start(); err != nil {
			return err
		}
		defer jobServer.Stop()
		meds.SetJobClient(service.NewAsynqJobClient(jobClient))
	}

	jobs.RunStartupSweep(ctx, meds, logger)

	sessions := service.NewSessionService(
		flow.NewEngine(question.Household()),
		builder.New(),
		meds,
		bus,
		service.SessionConfig{TTL: cfg.SessionTTL, Size: cfg.SessionCacheSize},
		logger,
	)
	hub.SetCommandHandler(ws.NewCommandHandler(sessions, logger))
	hub.SetAuthorizer(ws.SessionAuthorizer(sessions))

	jwtConfig := auth.NewJWTConfig(cfg.JWTSecret)
	jwtConfig.RequireToken = cfg.RequireToken
	jwtConfig.AllowDevHeader = cfg.AllowDevHeader
	if cfg.Env == "production" && cfg.AllowDevHeader {
		logger.Warn("Development household header is enabled in production", zap.String("header", auth.DevHeader))
	}

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: api.Routes(api.Dependencies{
			Meds:        meds,
			Sessions:    sessions,
			Hub:         hub,
			JWT:         jwtConfig,
			Log:         logger,
			CORSOrigins: cfg.CORSOrigins,
			RateLimit:   cfg.RateLimitPerSecond,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	logger.Info("Starting server", zap.String("addr", cfg.Addr), zap.String("store", cfg.StoreDriver))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
	return nil
}
