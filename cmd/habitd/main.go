package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/habitflow/project/internal/app/api"
	"github.com/habitflow/project/internal/identity"
	"github.com/habitflow/project/internal/persist"
	"github.com/habitflow/project/internal/platform/dbpool"
	"github.com/habitflow/project/internal/platform/env"
	"github.com/habitflow/project/internal/platform/logging"
	"github.com/habitflow/project/internal/platform/natsutil"
	"github.com/habitflow/project/internal/store"
	"github.com/habitflow/project/internal/tracker"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := logging.New(env.String("LOG_MODE", "dev"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	httpAddr := env.String("HTTP_ADDR", env.DefaultHTTPAddr)
	dataDir := env.String("DATA_DIR", env.DefaultDataDir)
	shutdownTimeout := env.Duration("SHUTDOWN_TIMEOUT", 10*time.Second)

	kv, err := persist.OpenFileKV(dataDir)
	if err != nil {
		log.Fatalw("open local store", "data_dir", dataDir, "error", err)
	}
	local := persist.NewLocal(kv)

	// The remote side is best-effort: any bootstrap failure means the
	// session runs fully offline against the local store.
	remote, pool, natsClient := connectRemote(runCtx, kv, log)
	if pool != nil {
		defer pool.Close()
	}
	if natsClient != nil {
		defer natsClient.Close()
	}

	backend := persist.NewFallback(remote, local, log)
	recordStore := store.New(backend, log)
	if err := recordStore.Load(runCtx); err != nil {
		log.Fatalw("load habit collection", "error", err)
	}

	cancelSub, err := recordStore.StartSubscription(runCtx)
	if err != nil {
		log.Warnw("live subscription unavailable", "error", err)
	} else {
		defer cancelSub()
	}

	handler := api.NewHandler(recordStore, tracker.NewWeightService(kv), tracker.NewLedgerService(kv), log)
	handler.AllowedOrigin = env.String("ALLOWED_ORIGIN", "*")
	handler.Ready = func(ctx context.Context) error {
		if pool == nil {
			return nil // local-only mode is a valid steady state
		}
		return pool.Ping(ctx)
	}

	server := &http.Server{
		Addr:              httpAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Infow("habitd listening", "addr", httpAddr, "remote", remote != nil)
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Fatalw("http server failed", "error", err)
	case <-runCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnw("graceful shutdown failed", "error", err)
	}
}

// connectRemote assembles the remote persistence strategy: Postgres for
// documents, NATS for change events, and an anonymous owner identity. A
// nil return on any failure selects local-only mode.
func connectRemote(ctx context.Context, kv persist.KV, log *zap.SugaredLogger) (persist.Adapter, *pgxpool.Pool, *natsutil.Client) {
	pgURL := env.String("DATABASE_URL", env.DefaultDatabaseURL)
	natsURL := env.String("NATS_URL", env.DefaultNATSURL)
	connectTimeout := env.Duration("REMOTE_CONNECT_TIMEOUT", 15*time.Second)

	pool, err := dbpool.New(ctx, pgURL)
	if err != nil {
		log.Warnw("remote database unavailable, running local-only", "error", err)
		return nil, nil, nil
	}
	if err := waitForSchema(ctx, pool, connectTimeout); err != nil {
		log.Warnw("remote schema not ready, running local-only", "error", err)
		pool.Close()
		return nil, nil, nil
	}

	identitySvc := identity.NewService(identity.NewOwnerRepository(pool), kv)
	session, err := identitySvc.SignInAnonymously(ctx)
	if err != nil {
		log.Warnw("anonymous sign-in failed, running local-only", "error", err)
		pool.Close()
		return nil, nil, nil
	}

	natsClient, err := natsutil.ConnectJetStreamWithRetry(natsURL, connectTimeout)
	if err != nil {
		log.Warnw("nats unavailable, running local-only", "error", err)
		pool.Close()
		return nil, nil, nil
	}

	remote := persist.NewRemote(persist.NewHabitRepository(pool), natsClient.JS, session.OwnerID, log)
	remote.SnapshotDebounce = env.Duration("SNAPSHOT_DEBOUNCE", persist.DefaultSnapshotDebounce)
	log.Infow("remote persistence ready", "owner_id", session.OwnerID)
	return remote, pool, natsClient
}

func waitForSchema(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	habits := persist.NewHabitRepository(pool)
	owners := identity.NewOwnerRepository(pool)

	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		attemptCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		lastErr = pool.Ping(attemptCtx)
		if lastErr == nil {
			lastErr = habits.EnsureSchema(attemptCtx)
		}
		if lastErr == nil {
			lastErr = owners.EnsureSchema(attemptCtx)
		}
		cancel()

		if lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return lastErr
}
