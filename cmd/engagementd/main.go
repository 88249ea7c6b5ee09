package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/apphelix/engagement-tracker/internal/common"
	"github.com/apphelix/engagement-tracker/internal/extract"
	"github.com/apphelix/engagement-tracker/internal/llm"
	"github.com/apphelix/engagement-tracker/internal/llm/openai"
	"github.com/apphelix/engagement-tracker/internal/pipeline"
	"github.com/apphelix/engagement-tracker/internal/repository"
	"github.com/apphelix/engagement-tracker/internal/risk"
	"github.com/apphelix/engagement-tracker/internal/server"
	"github.com/apphelix/engagement-tracker/internal/validate"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config.invalid", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Server.UploadDir, 0o755); err != nil {
		logger.Error("uploads.dir_failed", "dir", cfg.Server.UploadDir, "error", err)
		os.Exit(1)
	}

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("db.open_failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := repository.NewStore(db, cfg.Database.Driver, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("db.schema_failed", "error", err)
		os.Exit(1)
	}

	client := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	insights := llm.NewExtractor(client, logger)
	validator := validate.NewValidator(cfg.Pipeline.MaxFileBytes, logger)
	registry := extract.NewRegistry(logger)
	assessor := risk.NewAssessor(insights, cfg.Risk.SentimentFallback, logger)
	processor := pipeline.NewProcessor(validator, registry, insights, assessor, store, logger)

	srv := server.NewServer(store, processor, cfg.Server.UploadDir, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("http.serving", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http.serve_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown.start")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown.failed", "error", err)
	}
	logger.Info("shutdown.done")
}
