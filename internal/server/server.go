// Package server boots the storefront: configuration, the Mongo store, the
// Redis cache and queue, the image disk, the scheduler, the admin order
// feed, and finally the HTTP listener with graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumenera/backend/app/jobs"
	"github.com/lumenera/backend/app/models"
	"github.com/lumenera/backend/app/notifications"
	"github.com/lumenera/backend/app/repositories"
	"github.com/lumenera/backend/app/routes"
	"github.com/lumenera/backend/app/services"
	"github.com/lumenera/backend/config"
	"github.com/lumenera/backend/pkg/cache"
	"github.com/lumenera/backend/pkg/database"
	"github.com/lumenera/backend/pkg/event"
	"github.com/lumenera/backend/pkg/logger"
	"github.com/lumenera/backend/pkg/metrics"
	"github.com/lumenera/backend/pkg/middleware"
	"github.com/lumenera/backend/pkg/notification"
	"github.com/lumenera/backend/pkg/queue"
	"github.com/lumenera/backend/pkg/reqid"
	"github.com/lumenera/backend/pkg/router"
	"github.com/lumenera/backend/pkg/schedule"
	"github.com/lumenera/backend/pkg/storage"
	"github.com/lumenera/backend/pkg/ws"
)

const (
	queueWorkers    = 4
	shutdownTimeout = 10 * time.Second
)

// Start boots every subsystem and blocks until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	if err := database.Connect(); err != nil {
		return err
	}

	if config.Get("LOG_TO_MONGO", "false") == "true" {
		closeLogs, err := logger.AttachMongo(config.MongoURI(), config.MongoDatabase(), "logs")
		if err != nil {
			logger.Warn("mongo log sink unavailable", "error", err)
		} else {
			defer closeLogs()
		}
	}

	// Redis is optional: cache misses and the in-memory queue driver cover
	// its absence.
	if err := cache.Connect(); err != nil {
		logger.Warn("redis unavailable, continuing without cache", "error", err)
	}
	storage.Connect()

	jobs.Register()
	if cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}
	queue.UseCollection(database.Collection("failed_jobs"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue.StartWorkers(ctx, queueWorkers)

	hub := ws.NewHub()
	go hub.Run()
	wireOrderEvents(hub)

	reconciler := services.NewReconciler(repositories.NewOrderRepository())
	schedule.Hourly().Name("orders.sweep_abandoned").WithoutOverlapping().Run(func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := reconciler.Sweep(sweepCtx); err != nil {
			logger.Error("abandoned order sweep failed", "error", err)
		}
	})
	go schedule.Start(ctx)

	r := router.New()
	r.Use(
		reqid.Middleware(),
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(middleware.DefaultCORSOptions()),
		metrics.Middleware(),
	)
	routes.RegisterAPI(r, hub)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("lumenera backend listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Error("store disconnect failed", "error", err)
	}
	return nil
}

// wireOrderEvents forwards order lifecycle events to the admin feed and, on
// settlement, to the admin notification channels.
func wireOrderEvents(hub *ws.Hub) {
	event.Listen(services.EventOrderPlaced, func(payload interface{}) {
		order, ok := payload.(models.Order)
		if !ok {
			return
		}
		hub.BroadcastJSON(map[string]interface{}{"event": services.EventOrderPlaced, "order": order})
	})
	event.Listen(services.EventOrderPaid, func(payload interface{}) {
		order, ok := payload.(models.Order)
		if !ok {
			return
		}
		hub.BroadcastJSON(map[string]interface{}{"event": services.EventOrderPaid, "order": order})
		if admin := config.AdminEmail(); admin != "" {
			notification.SendAsync(admin, notifications.OrderPaid{Order: order})
		}
	})
}
