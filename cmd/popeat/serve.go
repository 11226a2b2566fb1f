package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/popeat/popeat/internal/api"
	"github.com/popeat/popeat/internal/async"
	"github.com/popeat/popeat/internal/auth/token"
	"github.com/popeat/popeat/internal/bootstrap"
	"github.com/popeat/popeat/internal/cache"
	"github.com/popeat/popeat/internal/config"
	"github.com/popeat/popeat/internal/job"
	"github.com/popeat/popeat/internal/migrations"
	"github.com/popeat/popeat/internal/repository/sqlite"
	"github.com/popeat/popeat/internal/security"
	"github.com/popeat/popeat/internal/service"
	"github.com/popeat/popeat/internal/support/hash"
	"github.com/popeat/popeat/internal/support/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the PopEat API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		Level:     cfg.Log.SlogLevel(),
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})

	db, err := bootstrap.OpenSQLite(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Up(db); err != nil {
		return err
	}

	store := sqlite.NewStore(db)

	cacheStore := cache.NewStore(cache.Options{})
	limiter, err := security.NewRateLimiter(cacheStore)
	if err != nil {
		return err
	}

	hasher, err := hash.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	tokenMgr, err := token.NewManager(token.Options{
		SigningKey: []byte(cfg.Auth.SigningKey),
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		TTL:        cfg.Auth.TokenTTL,
		Leeway:     cfg.Auth.Leeway,
	})
	if err != nil {
		return err
	}

	// Audit events persist asynchronously so recording never holds up a
	// request; a logger copy keeps them visible in the stream as well.
	storeRecorder := security.NewStoreRecorder(store.AuditLogs(), logger)
	auditQueue := async.NewAuditQueue(storeRecorder, logger)
	auditQueue.Start(ctx)
	defer auditQueue.Close()
	recorder := security.MultiRecorder{auditQueue, security.NewLoggerRecorder(logger)}

	services := api.Services{
		Auth:       service.NewAuthService(store.Users(), hasher, tokenMgr, limiter, recorder),
		Order:      service.NewOrderService(store.Orders(), store.Restaurants(), store.Articles(), store.Users(), recorder),
		Restaurant: service.NewRestaurantService(store.Restaurants(), store.Articles()),
		User:       service.NewUserService(store.Users()),
		Stats:      service.NewStatsService(store.Orders(), store.Users()),
		System:     service.NewSystemService(),
		Audit:      recorder,
		Limiter:    limiter,
	}

	router := api.NewRouter(logger, services, cfg)
	server := bootstrap.NewHTTPServer(cfg, router)

	scheduler := job.NewScheduler(logger)
	if cfg.Audit.CleanupSchedule != "" {
		cleanup := job.NewAuditCleanupJob(store.AuditLogs(), cfg.Audit.Retention, logger)
		if _, err := scheduler.Register(cfg.Audit.CleanupSchedule, cleanup); err != nil {
			return err
		}
	}
	scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	<-scheduler.Stop().Done()
	return nil
}
