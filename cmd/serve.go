package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shiraji/assistant/internal/api"
	"github.com/shiraji/assistant/internal/chat"
	"github.com/shiraji/assistant/internal/config"
	"github.com/shiraji/assistant/internal/conversation"
	"github.com/shiraji/assistant/internal/log"
	"github.com/shiraji/assistant/internal/ollama"
)

// Server timeout configuration.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 2 * time.Minute // SSE streaming needs a long write window
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 30 * time.Second
)

// runServe wires the service together and runs the HTTP server until
// SIGINT/SIGTERM.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel), JSON: cfg.LogJSON})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting shiraji-assistant",
		"version", AppVersion,
		"model", cfg.ModelName,
		"ollama_host", cfg.OllamaHost,
	)

	store := conversation.NewStore(cfg.HistoryLimit, logger)

	client := ollama.New(ollama.Config{
		BaseURL: cfg.OllamaHost,
		Model:   cfg.ModelName,
		Options: ollama.Options{
			Temperature:      cfg.Temperature,
			MaxTokens:        cfg.MaxTokens,
			TopP:             cfg.TopP,
			FrequencyPenalty: cfg.FrequencyPenalty,
			PresencePenalty:  cfg.PresencePenalty,
		},
		GenerateTimeout: cfg.GenerateTimeout,
		StreamTimeout:   cfg.StreamTimeout,
		ProbeTimeout:    cfg.ProbeTimeout,
		Logger:          logger,
	})

	gateway := chat.NewGateway(store, client, logger)

	apiServer, err := api.NewServer(api.ServerConfig{
		Logger:      logger,
		Gateway:     gateway,
		Store:       store,
		Prober:      client,
		CORSOrigins: cfg.CORSOrigins,
		TrustProxy:  cfg.TrustProxy,
		RateBurst:   cfg.RateBurst,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	logger.Info("HTTP server ready",
		"addr", cfg.ListenAddr,
		"endpoints", "/chat, /chat/stream, /conversations/{id}, /health",
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down HTTP server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server: %w", err)
	}
}
