package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/V10L1/modulo-assinatura/config"
	"github.com/V10L1/modulo-assinatura/handler"
	"github.com/V10L1/modulo-assinatura/pkg/logger"
	"github.com/V10L1/modulo-assinatura/service"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	path := os.Getenv("SIGN_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully", "path", path)

	// Initialize store
	store := service.NewRequestStore()
	store.Subscribe(service.NewActivityNotifier(log))

	if cfg.Store.SeedDemo {
		if err := service.SeedDemo(store); err != nil {
			slog.Error("failed to seed demo requests", "error", err)
			os.Exit(1)
		}
		slog.Info("demo requests seeded", "count", store.Count())
	}

	documents, err := newDocumentSource(cfg)
	if err != nil {
		slog.Error("failed to initialize document storage", "backend", cfg.Documents.Backend, "error", err)
		os.Exit(1)
	}

	suggestionSvc := service.NewSuggestionService(&cfg.Suggestion)
	if cfg.Suggestion.APIKey == "" {
		slog.Warn("no suggestion api key configured, default message will be used")
	}

	// Initialize handlers
	requestHandler := handler.NewRequestHandler(store, documents, cfg.Documents.MaxUploadBytes())
	suggestionHandler := handler.NewSuggestionHandler(suggestionSvc)

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(requestHandler, suggestionHandler, cfg.RateLimit)

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "documents", cfg.Documents.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

func newDocumentSource(cfg *config.Config) (service.DocumentSource, error) {
	maxBytes := cfg.Documents.MaxUploadBytes()
	if cfg.Documents.Backend != config.BackendMinio {
		return service.NewDataURLSource(maxBytes), nil
	}

	minioSvc, err := service.NewMinioService(&cfg.Documents.Minio, maxBytes)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := minioSvc.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return minioSvc, nil
}
