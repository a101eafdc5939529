package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/devevents/internal/auth"
	"github.com/geocoder89/devevents/internal/config"
	"github.com/geocoder89/devevents/internal/db"
	httpx "github.com/geocoder89/devevents/internal/http"
	"github.com/geocoder89/devevents/internal/http/middlewares"
	"github.com/geocoder89/devevents/internal/notifications"
	"github.com/geocoder89/devevents/internal/observability"
	"github.com/geocoder89/devevents/internal/redisclient"
	"github.com/geocoder89/devevents/internal/repo"
	"github.com/geocoder89/devevents/internal/store"
	"github.com/geocoder89/devevents/internal/store/memory"
	"github.com/geocoder89/devevents/internal/store/mongodb"
	"github.com/geocoder89/devevents/internal/store/postgres"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	shutdownTracer, err := observability.InitTracer(context.Background(), "devevents-api", cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	// the store connects lazily on first use
	gw, err := openStore(cfg)
	if err != nil {
		log.Error("store config invalid", "err", err)
		os.Exit(1)
	}

	// warm the connection and make sure the indexes exist; a store that is
	// down now is retried on first use
	idxCtx, idxCancel := config.WithTimeout(15 * time.Second)
	if err := repo.Schema().Apply(idxCtx, gw); err != nil {
		log.Warn("store not ready at startup", "store", cfg.StoreDriver, "err", err)
	}
	idxCancel()

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	eventsRepo := repo.NewEventsRepo(gw, prom)
	bookingsRepo := repo.NewBookingsRepo(gw, eventsRepo, prom)

	if cfg.SeedEvents {
		ctx, cancel := config.WithTimeout(30 * time.Second)
		n, err := db.SeedEvents(ctx, eventsRepo, db.SampleEvents)
		cancel()

		if err != nil {
			log.Error("seeding events failed", "err", err)
		} else {
			log.Info("seeded events", "created", n)
		}
	}

	var limiter middlewares.Limiter = middlewares.NewMemoryLimiter(cfg.WriteRateLimit, cfg.WriteRateWindow)

	var rdb *redisclient.Client
	if cfg.RedisAddr != "" {
		rdb = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		limiter = middlewares.NewRedisLimiter(rdb, cfg.WriteRateLimit, cfg.WriteRateWindow)
	}

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(log),
		notifications.ProtectedNotifierConfig{Timeout: 2 * time.Second},
	)

	router := httpx.NewRouter(httpx.Deps{
		Env:            cfg.Env,
		Log:            log,
		Events:         eventsRepo,
		Bookings:       bookingsRepo,
		Ping:           gw.Ping,
		Tokens:         auth.NewManager(cfg.JWTSecret, cfg.JWTAccessTTL),
		Notifier:       notifier,
		WriteLimiter:   limiter,
		AllowedOrigins: cfg.AllowedOrigins,
		Prom:           prom,
		Gatherer:       prometheus.DefaultGatherer,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := gw.Close(ctx); err != nil {
			log.Error("store close failed", "err", err)
		}

		if rdb != nil {
			_ = rdb.Close()
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

func openStore(cfg config.Config) (store.Gateway, error) {
	schema := repo.Schema()

	switch cfg.StoreDriver {
	case "mongo", "mongodb":
		return mongodb.New(mongodb.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase}, schema), nil
	case "postgres":
		return postgres.New(postgres.Config{DBURL: cfg.DBURL}, schema), nil
	case "memory":
		return memory.New(schema), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
