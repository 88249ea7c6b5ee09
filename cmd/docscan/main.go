// docscan runs one file through validate -> extract -> insights and prints the
// structured result as JSON. Useful for smoke-testing a document without a
// database or a running server.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/apphelix/engagement-tracker/internal/common"
	"github.com/apphelix/engagement-tracker/internal/extract"
	"github.com/apphelix/engagement-tracker/internal/llm"
	"github.com/apphelix/engagement-tracker/internal/llm/openai"
	"github.com/apphelix/engagement-tracker/internal/pipeline"
	"github.com/apphelix/engagement-tracker/internal/risk"
	"github.com/apphelix/engagement-tracker/internal/validate"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: docscan <file>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()
	if cfg.LLM.APIKey == "" {
		logger.Error("OPENAI_API_KEY env var is required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

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
	processor := pipeline.NewProcessor(validator, registry, insights, assessor, nil, logger)

	result := processor.ProcessFile(ctx, path)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}

	if !result.Validation.Valid {
		os.Exit(1)
	}
}
