package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/villagelink/village-backend/internal/api"
	"github.com/villagelink/village-backend/internal/auth"
	"github.com/villagelink/village-backend/internal/cache"
	"github.com/villagelink/village-backend/internal/config"
	"github.com/villagelink/village-backend/internal/log"
	"github.com/villagelink/village-backend/internal/metrics"
	"github.com/villagelink/village-backend/internal/village"
	"github.com/villagelink/village-backend/internal/ws"
	"github.com/villagelink/village-backend/pkg/kv"
	_ "github.com/villagelink/village-backend/pkg/kv/memory"
	_ "github.com/villagelink/village-backend/pkg/kv/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := log.NewSugar(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Infow("Starting village backend", "env", cfg.Env, "addr", cfg.HTTPAddr)

	m, metricsHandler, err := metrics.Setup("village-backend")
	if err != nil {
		logger.Fatalw("Failed to set up metrics", "error", err)
	}

	store := village.NewStore(logger)
	store.Seed()

	sessionKV, err := kv.New(kv.Config{
		Backend:  kv.Backend(cfg.Cache.KVBackend),
		RedisURL: cfg.Cache.KVRedisURL,
	})
	if err != nil {
		logger.Fatalw("Failed to open session store", "backend", cfg.Cache.KVBackend, "error", err)
	}
	defer sessionKV.Close()
	sessions := auth.NewSessions(sessionKV, cfg.Session.TTL)

	c, err := cache.NewCache(cfg.Cache.RedisAddr, logger, m)
	if err != nil {
		logger.Fatalw("Failed to initialize cache", "error", err)
	}
	defer c.Close()
	if c.IsInMemoryMode() {
		logger.Infow("Cache running in in-memory mode")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub(c, logger, m, cfg.Security.CORSAllowedOrigins)
	go hub.Run(ctx)
	sse := ws.NewSSEHandler(c, logger, m, cfg.Security.CORSAllowedOrigins)

	handler := api.NewHandler(store, sessions, c, hub, sse, cfg, logger, m)
	middleware := api.NewMiddleware(logger, m)

	router := chi.NewRouter()
	router.Mount("/", handler.Routes(middleware))
	router.Handle("/metrics", metricsHandler)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // streaming endpoints manage their own lifetimes
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatalw("HTTP server failed", "error", err)
	case sig := <-stop:
		logger.Infow("Shutting down", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Graceful shutdown failed", "error", err)
	}
	cancel()

	logger.Infow("Server stopped")
}
