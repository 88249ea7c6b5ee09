// Package llm owns the protocol with the external completion service:
// prompt construction, response-shape validation, and failure classification.
// The service itself is external and non-deterministic; tests stub the
// CompletionService boundary.
package llm

import (
	"context"
	"time"

	"github.com/apphelix/engagement-tracker/constants"
)

// SentimentResult is the normalized sentiment shape we want from the model.
type SentimentResult struct {
	Classification string   `json:"sentiment"` // positive | neutral | negative
	Score          float64  `json:"score"`     // [-1, 1]
	KeyTopics      []string `json:"key_topics"`
	RiskFactors    []string `json:"risk_factors"`
	BusinessImpact string   `json:"business_impact"`
}

// ActionItem is a commitment extracted from engagement text, normalized to
// the canonical enums. DueDate is nil when the text names no date.
type ActionItem struct {
	Description      string               `json:"description"`
	Priority         constants.Priority   `json:"priority"`
	ResponsibleParty string               `json:"responsible_party,omitempty"`
	DueDate          *time.Time           `json:"due_date,omitempty"`
	Status           constants.ItemStatus `json:"status"`
	Dependencies     []string             `json:"dependencies"`
	RiskLevel        constants.RiskLevel  `json:"risk_level"`
}

// CompletionService is a single request/response exchange with the external
// model endpoint. Implementations must honor ctx cancellation and timeouts.
type CompletionService interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// InsightExtractor is the behavior downstream stages depend on. The two
// operations are independent: one failing never blocks the other.
type InsightExtractor interface {
	AnalyzeSentiment(ctx context.Context, text string) (SentimentResult, error)
	ExtractActionItems(ctx context.Context, text string) ([]ActionItem, error)
}
