package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"todo-gateway/adapters/auth"
	"todo-gateway/adapters/backend"
	"todo-gateway/adapters/rest/handlers"
	"todo-gateway/config"
	"todo-gateway/core"
	"todo-gateway/gate"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "gateway configuration file")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.MustLoad(configPath)
	log := mustMakeLogger(cfg.LogLevel)

	authClient := auth.NewClient(log, cfg.AuthURL, cfg.HTTP.Timeout)
	relay := handlers.NewRelay(log, authClient, cfg.BackendURL, cfg.HTTP.Timeout, cfg.DevMode)

	deps := core.Deps{
		Auth:    authClient,
		Backend: backend.NewPinger(log, cfg.BackendURL, cfg.HTTP.Timeout),
	}

	mux := http.NewServeMux()
	handlers.Register(mux, log, relay, deps, cfg.HTTP.Timeout)

	// the gate runs before everything; only configured page prefixes are
	// affected, API routes pass straight through
	pageGate := gate.New(log, cfg.Gate.ProtectedPaths, cfg.Gate.LoginPath, cfg.Gate.SessionCookie)

	server := http.Server{
		Addr:              cfg.HTTP.Address,
		ReadHeaderTimeout: cfg.HTTP.Timeout,
		Handler:           pageGate.Middleware(mux),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("gateway http server", "address", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

func mustMakeLogger(logLevel string) *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
