package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/punchamoorthee/ninjabank/internal/api"
	"github.com/punchamoorthee/ninjabank/internal/config"
	"github.com/punchamoorthee/ninjabank/internal/logging"
	"github.com/punchamoorthee/ninjabank/internal/service"
	"github.com/punchamoorthee/ninjabank/internal/session"
	"github.com/punchamoorthee/ninjabank/internal/store"
	"golang.org/x/sync/errgroup"
)

const (
	sweepInterval   = 10 * time.Minute
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		logging.StdoutLogger.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	mainCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.StdoutLogger

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	sessions, closeSessions, err := openSessionStore(mainCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	// Initialize Layers
	client := store.NewClient(store.ClientConfig{
		APIURL:  cfg.AirtableAPIURL,
		BaseID:  cfg.AirtableBaseID,
		APIKey:  cfg.AirtableAPIKey,
		Timeout: cfg.StoreTimeout,
	})
	ledger := service.NewLedgerService(store.NewLedgerStore(client))
	manager := session.NewManager(sessions, cfg.Production(), logger)
	handler := api.NewHandler(ledger, manager, logger)

	router := api.NewRouter(handler, manager, api.RouterConfig{
		CSRFKey: []byte(cfg.CSRFKey),
		Secure:  cfg.Production(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env, "sessions", cfg.SessionBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		sweepSessions(ctx, sessions, logger)
		return nil
	})

	return g.Wait()
}

func openSessionStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (session.Store, func(), error) {
	if cfg.SessionBackend != config.BackendPostgres {
		return session.NewMemoryStore(cfg.SessionTTL), func() {}, nil
	}

	if err := session.Migrate(cfg.DBSource); err != nil {
		return nil, nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.DBSource)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info("session store connected", "backend", config.BackendPostgres)

	return session.NewPostgresStore(pool, cfg.SessionTTL), pool.Close, nil
}

func sweepSessions(ctx context.Context, sessions session.Store, logger logging.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.Sweep(ctx)
			if err != nil {
				logger.Warn("session sweep failed", "error", err.Error())
				continue
			}
			if n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
		}
	}
}
