package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	migrate "github.com/rubenv/sql-migrate"

	"github.com/Clark-Hu/movie-lookup/db"
	"github.com/Clark-Hu/movie-lookup/internal/config"
	httpserver "github.com/Clark-Hu/movie-lookup/internal/http"
	"github.com/Clark-Hu/movie-lookup/internal/logger"
	"github.com/Clark-Hu/movie-lookup/internal/lookup"
	"github.com/Clark-Hu/movie-lookup/internal/omdb"
	"github.com/Clark-Hu/movie-lookup/internal/repository"
	"github.com/Clark-Hu/movie-lookup/internal/store"
	"github.com/Clark-Hu/movie-lookup/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	sugar, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = sugar.Sync() }()

	if err := telemetry.Init(cfg.SentryDSN, cfg.AppEnv); err != nil {
		sugar.Fatalw("init sentry", "error", err)
	}
	defer sentrygo.Flush(telemetry.FlushTime)

	observers := []lookup.Observer{telemetry.NewSentryReporter(nil)}

	var (
		st   *store.Store
		repo *repository.Repository
	)
	if cfg.JournalEnabled() {
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		st, err = store.New(dbCtx, cfg.DBURL, store.Options{
			MaxConns:               int32(cfg.DBMaxConns),
			MinConns:               int32(cfg.DBMinConns),
			MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
			MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
			ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
			StatementCacheCapacity: cfg.DBStatementCache,
			Logger:                 sugar,
		})
		if err != nil {
			cancel()
			sugar.Fatalw("connect database", "error", err)
		}
		defer st.Close()

		cancel()
		if _, err := st.Migrate(db.Source(), db.Dialect, migrate.Up); err != nil {
			sugar.Fatalw("apply migrations", "error", err)
		}

		repo = repository.New(st)
		observers = append(observers, repository.NewJournal(repo.Lookups, sugar))
	} else {
		sugar.Infow("journal disabled, DB_URL not set")
	}

	client, err := omdb.NewHTTPClient(cfg.OMDbURL, cfg.OMDbAPIKey, cfg.LookupTimeout, sugar)
	if err != nil {
		sugar.Fatalw("init omdb client", "error", err)
	}

	controller := lookup.New(client, lookup.Options{
		Timeout:     cfg.LookupTimeout,
		SettleDelay: cfg.LookupSettleDelay,
		Observers:   observers,
		Logger:      sugar,
	})
	defer controller.Close()

	server := httpserver.New(cfg, st, repo, controller, sugar)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Errorw("server error", "error", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Warnw("graceful shutdown error", "error", err)
	}
}
