package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/bugtrackr/bug-tracker/internal/api/http"
	"github.com/bugtrackr/bug-tracker/internal/api/http/handlers"
	"github.com/bugtrackr/bug-tracker/internal/events"
	"github.com/bugtrackr/bug-tracker/internal/observability"
	"github.com/bugtrackr/bug-tracker/internal/persistence"
	"github.com/bugtrackr/bug-tracker/internal/service"
	"github.com/bugtrackr/bug-tracker/internal/worker"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		d, err := loadDeps(ctx, true)
		if err != nil {
			return err
		}
		defer d.Close()
		logger := d.logger

		var (
			counter     httptransport.WindowCounter = httptransport.NewMemoryWindowCounter()
			redisPinger handlers.Pinger
		)
		if d.cfg.Redis.Enabled() {
			redis := persistence.NewRedis(ctx, d.cfg.Redis, logger)
			defer redis.Close()
			counter = redis
			redisPinger = redis
		}

		metrics := observability.NewMetrics()
		dispatcher := events.NewInMemoryDispatcher()
		worker.StartNotificationWorker(dispatcher, service.NewNotificationService(dispatcher, logger), metrics)
		bugService := d.bugService(dispatcher)

		app := httptransport.NewApp(d.cfg.App)
		httptransport.RegisterMiddlewares(app, logger, metrics, d.cfg.App)
		httptransport.RegisterRoutes(app, httptransport.RouteConfig{
			Health:    handlers.NewHealthHandler(d.cfg.App.Name, d.cfg.App.Version, bugService, redisPinger),
			Bugs:      handlers.NewBugsHandler(bugService),
			Metrics:   handlers.NewMetricsHandler(metrics),
			RateLimit: httptransport.RateLimitMiddleware(counter, d.cfg.RateLimit, logger),
		})

		listenErr := make(chan error, 1)
		go func() {
			logger.Info("http server listening", zap.String("addr", d.cfg.App.Addr()), zap.String("env", d.cfg.App.Env))
			listenErr <- app.Listen(d.cfg.App.Addr())
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logger.Info("shutting down", zap.String("signal", sig.String()))
		case err := <-listenErr:
			if err != nil {
				return err
			}
			return nil
		}

		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Warn("graceful shutdown incomplete", zap.Error(err))
		}
		logger.Info("http server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
