package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/alexiscpa/legal-consultant/internal/config"
	"github.com/alexiscpa/legal-consultant/internal/handler"
	"github.com/alexiscpa/legal-consultant/internal/middleware"
	aiservice "github.com/alexiscpa/legal-consultant/internal/service/ai"
	authservice "github.com/alexiscpa/legal-consultant/internal/service/auth"
	"github.com/alexiscpa/legal-consultant/internal/storage/sqlite"
	"github.com/alexiscpa/legal-consultant/internal/token"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		log.Warn("failed to load .env file, continuing with system environment", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(ctx, cfg.Database.Path)
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	codec := token.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authSvc := authservice.NewService(log, store, codec, cfg.Auth.BcryptCost)

	if cfg.Auth.AdminEmail != "" {
		if err := authSvc.SeedAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, cfg.Auth.AdminName); err != nil {
			log.Error("failed to seed admin account", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("ADMIN_EMAIL not set, skipping admin seeding")
	}

	var gateway *aiservice.Gateway
	if cfg.AI.Enabled() {
		upstream, err := aiservice.NewModelUpstream(ctx, cfg.AI)
		if err != nil {
			log.Warn("failed to initialize AI upstream, continuing without AI functionality", "error", err)
		} else {
			cache := aiservice.NewCache(cfg.AI.CacheTTL, cfg.AI.CacheKeyPrefix)
			gateway = aiservice.NewGateway(log, upstream, cache)
			log.Info("AI gateway initialized")
		}
	} else {
		log.Warn("AI credentials not configured, AI routes will answer 503")
	}

	gate := middleware.NewGate(log, codec, store)
	router := handler.NewRouter(log, gate, authSvc, gateway, store)

	startServer(ctx, log, cfg.Server, router)
}

func startServer(ctx context.Context, log *slog.Logger, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info("legal consultant backend listening", "addr", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
