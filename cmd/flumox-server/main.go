// Package main is the entry point for the Flumox game server. It only
// handles dependency injection and process lifecycle; no business logic
// belongs here.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flumox/flumox-server/internal/action"
	"github.com/flumox/flumox-server/internal/api"
	"github.com/flumox/flumox-server/internal/listen"
	"github.com/flumox/flumox-server/internal/platform/config"
	"github.com/flumox/flumox-server/internal/platform/logger"
	"github.com/flumox/flumox-server/internal/platform/optimization"
	"github.com/flumox/flumox-server/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	flags, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	cfg, err := config.Load(flags)
	if err != nil {
		os.Exit(2)
	}

	log := logger.New(logger.Options{Color: cfg.LogColor})
	log.Info("starting flumox-server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opt := optimization.DefaultConfig()

	poolConfig, err := pgxpool.ParseConfig(cfg.DB)
	if err != nil {
		log.Error("invalid database configuration: " + err.Error())
		os.Exit(1)
	}
	poolConfig.MaxConns = opt.DBMaxConns
	poolConfig.MinConns = opt.DBMinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Error("failed to connect to database: " + err.Error())
		os.Exit(1)
	}
	defer pool.Close()

	if err := storage.EnsureSchema(ctx, pool); err != nil {
		log.Error("failed to apply schema: " + err.Error())
		os.Exit(1)
	}

	store := storage.NewStore(pool)
	channels := listen.NewChannels(opt.BroadcastBuffer)
	limiter := action.NewRateLimiter(0) // unthrottled, matching the upstream contract

	server := api.NewServer(ctx, store, channels, limiter, log)
	httpServer := &http.Server{
		Addr:    cfg.Address,
		Handler: withStaticServing(server.Handler(), cfg),
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		listen.Run(groupCtx, pool, channels, log)
		return nil
	})
	group.Go(func() error {
		log.Info("listening on " + cfg.Address)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info("shutting down")
	case <-groupCtx.Done():
		log.Error("a background task exited unexpectedly")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)

	cancel()
	if err := group.Wait(); err != nil {
		log.Error("background task error: " + err.Error())
	}
}

// withStaticServing wraps handler to fall back to serving static files
// from cfg.Serve (the built client, if deployed alongside the server),
// optionally behind HTTP Basic auth when cfg.AuthUser/AuthPass are set.
func withStaticServing(handler http.Handler, cfg config.Config) http.Handler {
	if cfg.Serve == "" {
		return handler
	}

	fileServer := http.FileServer(http.Dir(cfg.Serve))
	static := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=300")
		fileServer.ServeHTTP(w, r)
	})
	if cfg.AuthUser != "" || cfg.AuthPass != "" {
		static = basicAuth(static, cfg.AuthUser, cfg.AuthPass)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", handler)
	mux.Handle("/", static)
	return mux
}

func basicAuth(next http.HandlerFunc, user, pass string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="flumox"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	}
}
