package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"promptforge/internal/app"
	"promptforge/internal/config"
	"promptforge/internal/history"
	"promptforge/internal/provider"
	"promptforge/internal/server"
	"promptforge/internal/session"
	"promptforge/internal/sessiontoken"
	"promptforge/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}
	util.InitLogger(cfg.LogLevel)

	var sessions session.Store
	if cfg.RedisAddr != "" {
		sessions = session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.ParsedSessionTTL())
		slog.Info("using redis session store", "addr", cfg.RedisAddr)
	} else {
		sessions = session.NewMemoryStore()
		slog.Info("using in-memory session store")
	}

	var completions history.Store
	if cfg.DatabaseURL != "" {
		completions, err = history.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			util.Fatal("failed to init completion history store", "err", err)
		}
		slog.Info("completion history enabled")
	}

	core, err := app.New(app.Config{
		Credentials: map[provider.ID]string{
			provider.GoogleGemini: cfg.GoogleAPIKey,
			provider.Groq:         cfg.GroqAPIKey,
			provider.OpenRouter:   cfg.OpenRouterAPIKey,
		},
		History: completions,
	})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}
	for _, info := range provider.All() {
		if !core.Available(info.ID) {
			slog.Warn("provider unavailable until its key is set", "provider", info.Label, "env", info.CredentialEnv)
		}
	}

	tokens, err := sessiontoken.NewCodec(cfg.SessionSecret, cfg.ParsedSessionTTL())
	if err != nil {
		util.Fatal("failed to init session tokens", "err", err)
	}

	httpServer, err := server.New(server.Config{
		App:      core,
		Sessions: sessions,
		Tokens:   tokens,
	})
	if err != nil {
		util.Fatal("failed to init server", "err", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: httpServer.Router(),
		// Completion calls block until the upstream answers, so the write
		// timeout has to cover a full round trip.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("promptforge listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		util.Fatal("server error", "err", err)
	}
}
