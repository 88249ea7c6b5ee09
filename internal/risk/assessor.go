// Package risk turns sentiment and action-item signals into the traffic-light
// engagement status. The decision rule is pessimistic: a negative or at-risk
// signal always dominates a positive one.
package risk

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/apphelix/engagement-tracker/constants"
	"github.com/apphelix/engagement-tracker/internal/llm"
)

// ActionItemHealth summarizes due-date bookkeeping over a set of action items.
type ActionItemHealth struct {
	Total   int                    `json:"total"`
	Overdue int                    `json:"overdue"`
	Status  constants.HealthStatus `json:"status"`
}

// Assessment is the auditable output of one status computation: the status
// plus the signals that produced it. Sentiment is nil when that call failed.
type Assessment struct {
	Status      constants.RiskStatus `json:"status"`
	Health      ActionItemHealth     `json:"action_item_health"`
	Sentiment   *llm.SentimentResult `json:"sentiment,omitempty"`
	ActionItems []llm.ActionItem     `json:"action_items"`
}

// AssessActionItemHealth is pure: deterministic for a fixed item set and today.
// An item is overdue when its due date is before today and it is not completed.
func AssessActionItemHealth(items []llm.ActionItem, today time.Time) ActionItemHealth {
	day := today.Truncate(24 * time.Hour)
	overdue := 0
	for _, item := range items {
		if item.DueDate == nil || item.Status == constants.ItemCompleted {
			continue
		}
		if item.DueDate.Truncate(24 * time.Hour).Before(day) {
			overdue++
		}
	}
	status := constants.HealthHealthy
	if overdue > 0 {
		status = constants.HealthAtRisk
	}
	return ActionItemHealth{Total: len(items), Overdue: overdue, Status: status}
}

// AggregateEngagementText joins all engagement texts with newline separators,
// documents first in supplied order, then emails in supplied order.
func AggregateEngagementText(documentTexts, emailTexts []string) string {
	parts := make([]string, 0, len(documentTexts)+len(emailTexts))
	parts = append(parts, documentTexts...)
	parts = append(parts, emailTexts...)
	return strings.Join(parts, "\n")
}

// Assessor computes engagement status from text. Best-effort by design: a
// failed insight call degrades the signal instead of failing the computation.
type Assessor struct {
	insights llm.InsightExtractor
	now      func() time.Time
	fallback constants.RiskStatus
	logger   *slog.Logger
}

// NewAssessor wires an assessor. fallback is the bucket used when sentiment is
// unavailable and action items are healthy; zero value means Green.
func NewAssessor(insights llm.InsightExtractor, fallback constants.RiskStatus, logger *slog.Logger) *Assessor {
	if fallback != constants.StatusYellow {
		fallback = constants.StatusGreen
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assessor{
		insights: insights,
		now:      time.Now,
		fallback: fallback,
		logger:   logger,
	}
}

// WithClock overrides the time source. Test hook.
func (a *Assessor) WithClock(now func() time.Time) *Assessor {
	a.now = now
	return a
}

// ComputeStatus derives the engagement status for the supplied text.
// Decision rule, first match wins:
//  1. sentiment contains "negative" OR action-item health is at risk -> Red
//  2. sentiment contains "neutral" -> Yellow
//  3. otherwise (positive, or sentiment unavailable) -> Green
//
// When sentiment is unavailable the configured fallback bucket applies, so an
// unreachable completion service still yields a status.
func (a *Assessor) ComputeStatus(ctx context.Context, text string) Assessment {
	sentiment, sentErr := a.insights.AnalyzeSentiment(ctx, text)
	if sentErr != nil {
		a.logger.Warn("risk.sentiment_unavailable", "error", sentErr)
	}

	items, itemsErr := a.insights.ExtractActionItems(ctx, text)
	if itemsErr != nil {
		a.logger.Warn("risk.action_items_unavailable", "error", itemsErr)
		items = nil
	}

	health := AssessActionItemHealth(items, a.now().UTC())

	assessment := Assessment{
		Health:      health,
		ActionItems: items,
	}
	if sentErr == nil {
		assessment.Sentiment = &sentiment
	}
	assessment.Status = a.decide(assessment.Sentiment, health)

	a.logger.Info("risk.status_computed",
		"status", assessment.Status,
		"sentiment_available", sentErr == nil,
		"items_total", health.Total,
		"items_overdue", health.Overdue,
	)
	return assessment
}

func (a *Assessor) decide(sentiment *llm.SentimentResult, health ActionItemHealth) constants.RiskStatus {
	classification := ""
	if sentiment != nil {
		classification = strings.ToLower(sentiment.Classification)
	}

	if strings.Contains(classification, "negative") || health.Status == constants.HealthAtRisk {
		return constants.StatusRed
	}
	if strings.Contains(classification, "neutral") {
		return constants.StatusYellow
	}
	if sentiment == nil {
		return a.fallback
	}
	return constants.StatusGreen
}

// AnalyzeEmails runs sentiment over the concatenation of email bodies.
func (a *Assessor) AnalyzeEmails(ctx context.Context, bodies []string) (llm.SentimentResult, error) {
	return a.insights.AnalyzeSentiment(ctx, strings.Join(bodies, "\n"))
}
