package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/brandlink/engine/internal/api"
	"github.com/brandlink/engine/internal/audit"
	"github.com/brandlink/engine/internal/lease"
	"github.com/brandlink/engine/internal/repository"
	"github.com/brandlink/engine/internal/services"
	"github.com/brandlink/engine/internal/storage"
	"github.com/brandlink/engine/pkg/config"
	"github.com/brandlink/engine/pkg/logger"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting brandlink engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("backend", cfg.StoreBackend),
	)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.AppEnv}); err != nil {
			log.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()

	// Only one process may hold the document in memory and write it back.
	var (
		rdb    *redis.Client
		writer *lease.Lease
	)
	errCh := make(chan error, 1)
	leaseErrCh := make(chan error, 1)
	leaseCtx, stopLease := context.WithCancel(ctx)
	defer stopLease()
	if cfg.LeaseEnabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		writer, err = lease.Acquire(ctx, rdb, lease.Key(cfg.SnapshotName), cfg.WriterLeaseTTL)
		if err != nil {
			log.Fatal("another writer holds the store", zap.Error(err))
		}
		go func() {
			if err := writer.Keep(leaseCtx); err != nil {
				leaseErrCh <- err
			}
		}()
	} else {
		log.Warn("REDIS_ADDR not set, running without a writer lease")
	}

	backend, err := storage.OpenBackend(ctx, cfg)
	if err != nil {
		log.Fatal("failed to open store backend", zap.Error(err))
	}
	store, err := storage.Open(ctx, backend)
	if err != nil {
		log.Fatal("failed to load document", zap.Error(err))
	}

	rec := audit.NewRecorder(store)
	router := api.NewRouter(api.Dependencies{
		Store:          store,
		Audit:          rec,
		Users:          repository.NewUserRepository(store, rec),
		Campaigns:      repository.NewCampaignRepository(store, rec),
		Collaborators:  repository.NewCollaboratorRepository(store, rec),
		Attachments:    repository.NewAttachmentRepository(store, rec),
		Ratings:        repository.NewRatingRepository(store, rec),
		Conversations:  services.NewConversationService(store, rec),
		Aggregates:     services.NewAggregationService(store),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		CORSOrigins:    cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	leaseLost := false
	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	case err := <-leaseErrCh:
		// A failed refresh leaves ownership unknown, so it counts as lost.
		log.Error("writer lease error", zap.Error(err), zap.Bool("lost", errors.Is(err, lease.ErrLost)))
		leaseLost = true
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Another process may already be writing the document; stop persisting
	// before in-flight requests drain.
	if leaseLost {
		log.Warn("writer lease lost, shutting down without a final flush")
		if err := store.Abandon(); err != nil {
			log.Error("store abandon error", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	if !leaseLost {
		if err := store.Close(shutdownCtx); err != nil {
			log.Error("store close error", zap.Error(err))
		}
	}
	stopLease()
	if writer != nil && !leaseLost {
		if err := writer.Release(shutdownCtx); err != nil {
			log.Error("lease release error", zap.Error(err))
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info("server exited gracefully")
}
