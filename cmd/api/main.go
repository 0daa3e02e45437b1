package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vinnesia/domainform-backend/config"
	"github.com/vinnesia/domainform-backend/internal/auth"
	"github.com/vinnesia/domainform-backend/internal/bootstrap"
	"github.com/vinnesia/domainform-backend/internal/logging"
	"github.com/vinnesia/domainform-backend/internal/submissions/dashboard"
)

const serviceName = "domainform-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Setup(cfg.App.LogLevel, cfg.App.LogFormat)
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	authClient, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
	if err != nil {
		return err
	}

	stores, err := bootstrap.OpenStores(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer stores.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	scheduler := dashboard.NewScheduler(cfg.Dashboard.RefreshInterval)
	scheduler.Start()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Config:      cfg,
		Pool:        stores.DB.Pool,
		SQL:         stores.SQL,
		Redis:       rdb,
		Auth:        authClient,
		Scheduler:   scheduler,
	})

	// Request contexts derive from baseCtx so open SSE streams end on shutdown
	baseCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelStreams)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr, "env", cfg.App.Environment, "relay_configured", cfg.Relay.Configured())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown incomplete", "error", err)
	}
	scheduler.Stop(shutdownCtx)
	return nil
}
