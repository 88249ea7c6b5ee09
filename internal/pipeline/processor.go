// Package pipeline sequences validation, extraction, insight calls, and risk
// aggregation per document/engagement. Each invocation is a single sequential
// chain with no shared mutable state; concurrent invocations are fully isolated.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/apphelix/engagement-tracker/constants"
	"github.com/apphelix/engagement-tracker/internal/entity"
	"github.com/apphelix/engagement-tracker/internal/extract"
	"github.com/apphelix/engagement-tracker/internal/llm"
	"github.com/apphelix/engagement-tracker/internal/risk"
	"github.com/apphelix/engagement-tracker/internal/validate"
)

// EngagementStore is the external-store contract the orchestrator consumes.
// The core holds no persistent state of its own.
type EngagementStore interface {
	FindDocumentsForEngagement(ctx context.Context, engagementID uuid.UUID) ([]entity.Document, error)
	ListEmailsForEngagement(ctx context.Context, engagementID uuid.UUID) ([]entity.Email, error)
	WriteActionItems(ctx context.Context, engagementID uuid.UUID, items []llm.ActionItem) error
	WriteRiskStatus(ctx context.Context, engagementID uuid.UUID, status constants.RiskStatus, a risk.Assessment) error
}

// DocumentResult is the structured outcome of processing one file. Stage
// failures are recorded, never thrown: validation and extraction errors are
// terminal for the document, insight errors only for the specific insight.
type DocumentResult struct {
	Validation validate.Result `json:"validation"`

	Extraction    *extract.ExtractedText `json:"extraction,omitempty"`
	ExtractionErr error                  `json:"-"`

	Sentiment    *llm.SentimentResult `json:"sentiment,omitempty"`
	SentimentErr error                `json:"-"`

	ActionItems    []llm.ActionItem `json:"action_items,omitempty"`
	ActionItemsErr error            `json:"-"`
}

// Processor coordinates the stages for one document or one engagement.
type Processor struct {
	validator *validate.Validator
	registry  *extract.Registry
	insights  llm.InsightExtractor
	assessor  *risk.Assessor
	store     EngagementStore
	logger    *slog.Logger
}

func NewProcessor(
	validator *validate.Validator,
	registry *extract.Registry,
	insights llm.InsightExtractor,
	assessor *risk.Assessor,
	store EngagementStore,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		validator: validator,
		registry:  registry,
		insights:  insights,
		assessor:  assessor,
		store:     store,
		logger:    logger,
	}
}

// ProcessFile runs validate -> extract -> sentiment + action items for one
// file. A validation or extraction failure short-circuits the insight calls;
// a failed sentiment call does not block action-item extraction or vice versa.
func (p *Processor) ProcessFile(ctx context.Context, path string) DocumentResult {
	start := time.Now()
	result := DocumentResult{Validation: p.validator.Validate(path)}
	if !result.Validation.Valid {
		p.logger.Warn("pipeline.validate.rejected",
			"path", path, "error", result.Validation.Err)
		return result
	}

	extracted, err := p.registry.Extract(ctx, result.Validation)
	if err != nil {
		result.ExtractionErr = err
		p.logger.Error("pipeline.extract.failed", "path", path, "error", err)
		return result
	}
	result.Extraction = &extracted

	if sentiment, err := p.insights.AnalyzeSentiment(ctx, extracted.Text); err != nil {
		result.SentimentErr = err
	} else {
		result.Sentiment = &sentiment
	}

	if items, err := p.insights.ExtractActionItems(ctx, extracted.Text); err != nil {
		result.ActionItemsErr = err
	} else {
		result.ActionItems = items
	}

	p.logger.Info("pipeline.process_file.done",
		"path", path,
		"mime_class", result.Validation.Mime,
		"text_bytes", len(extracted.Text),
		"sentiment_ok", result.SentimentErr == nil,
		"action_items_ok", result.ActionItemsErr == nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result
}

// AssessEngagement recomputes the engagement's risk status from everything the
// store has for it and writes the outcome back. Last writer wins on the status;
// callers needing stronger consistency must serialize per engagement.
func (p *Processor) AssessEngagement(ctx context.Context, engagementID uuid.UUID) (risk.Assessment, error) {
	docs, err := p.store.FindDocumentsForEngagement(ctx, engagementID)
	if err != nil {
		return risk.Assessment{}, fmt.Errorf("load documents: %w", err)
	}
	emails, err := p.store.ListEmailsForEngagement(ctx, engagementID)
	if err != nil {
		return risk.Assessment{}, fmt.Errorf("load emails: %w", err)
	}

	docTexts := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.TextContent != "" {
			docTexts = append(docTexts, d.TextContent)
		}
	}
	emailTexts := make([]string, 0, len(emails))
	for _, e := range emails {
		emailTexts = append(emailTexts, e.Content)
	}

	text := risk.AggregateEngagementText(docTexts, emailTexts)
	assessment := p.assessor.ComputeStatus(ctx, text)

	if err := p.store.WriteActionItems(ctx, engagementID, assessment.ActionItems); err != nil {
		return assessment, fmt.Errorf("write action items: %w", err)
	}
	if err := p.store.WriteRiskStatus(ctx, engagementID, assessment.Status, assessment); err != nil {
		return assessment, fmt.Errorf("write risk status: %w", err)
	}

	p.logger.Info("pipeline.assess_engagement.done",
		"engagement_id", engagementID,
		"status", assessment.Status,
		"documents", len(docTexts),
		"emails", len(emailTexts),
	)
	return assessment, nil
}
