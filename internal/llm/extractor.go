package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/apphelix/engagement-tracker/internal/common"
)

// Extractor derives structured insights from free text through a
// CompletionService. It performs no retries; retry policy belongs to the
// caller or the transport.
type Extractor struct {
	svc CompletionService
	log *slog.Logger
}

func NewExtractor(svc CompletionService, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{svc: svc, log: logger}
}

var _ InsightExtractor = (*Extractor)(nil)

// AnalyzeSentiment classifies the overall sentiment of the text.
func (e *Extractor) AnalyzeSentiment(ctx context.Context, text string) (SentimentResult, error) {
	rid := uuid.New().String()
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		return SentimentResult{}, common.NewAppError("EMPTY_INPUT",
			"no text to analyze", common.ErrEmptyInput)
	}

	e.log.Info("llm.sentiment.start", "req_id", rid, "text_len", len(text))

	schema := BuildSentimentJSONSchema()
	content, err := e.svc.Complete(ctx, BuildSentimentSystemPrompt(), BuildUserPrompt(text, schema))
	if err != nil {
		e.log.Error("llm.sentiment.service_error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return SentimentResult{}, common.NewAppError("SERVICE_UNAVAILABLE",
			"sentiment completion call failed", joinCause(common.ErrServiceUnavailable, err))
	}

	out, err := parseSentiment(content)
	if err != nil {
		e.log.Error("llm.sentiment.parse_error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return SentimentResult{}, common.NewAppError("MALFORMED_RESPONSE",
			"sentiment response did not match the expected shape", joinCause(common.ErrMalformedResponse, err))
	}

	e.log.Info("llm.sentiment.ok",
		"req_id", rid,
		"classification", out.Classification,
		"score", out.Score,
		"topics", len(out.KeyTopics),
		"risk_factors", len(out.RiskFactors),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// ExtractActionItems pulls trackable commitments out of the text.
func (e *Extractor) ExtractActionItems(ctx context.Context, text string) ([]ActionItem, error) {
	rid := uuid.New().String()
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		return nil, common.NewAppError("EMPTY_INPUT",
			"no text to analyze", common.ErrEmptyInput)
	}

	e.log.Info("llm.action_items.start", "req_id", rid, "text_len", len(text))

	schema := BuildActionItemsJSONSchema()
	content, err := e.svc.Complete(ctx, BuildActionItemsSystemPrompt(), BuildUserPrompt(text, schema))
	if err != nil {
		e.log.Error("llm.action_items.service_error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.NewAppError("SERVICE_UNAVAILABLE",
			"action-item completion call failed", joinCause(common.ErrServiceUnavailable, err))
	}

	items, err := parseActionItems(content)
	if err != nil {
		e.log.Error("llm.action_items.parse_error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.NewAppError("MALFORMED_RESPONSE",
			"action-item response did not match the expected shape", joinCause(common.ErrMalformedResponse, err))
	}

	e.log.Info("llm.action_items.ok",
		"req_id", rid, "items", len(items), "elapsed_ms", time.Since(start).Milliseconds())
	return items, nil
}

// joinCause keeps both the taxonomy sentinel and the underlying failure
// reachable through errors.Is.
func joinCause(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return errors.Join(sentinel, cause)
}
