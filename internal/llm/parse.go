package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/apphelix/engagement-tracker/constants"
)

// Parsing is defensive: the response is trusted for content but not for
// completeness. Absent optional fields default; payloads of the wrong shape
// are rejected before any field is read.

type sentimentPayload struct {
	Sentiment      *string  `json:"sentiment"`
	Score          *float64 `json:"score"`
	KeyTopics      []string `json:"key_topics"`
	RiskFactors    []string `json:"risk_factors"`
	BusinessImpact *string  `json:"business_impact"`
}

type actionItemPayload struct {
	Description      string   `json:"description"`
	Priority         *string  `json:"priority"`
	ResponsibleParty *string  `json:"responsible_party"`
	DueDate          *string  `json:"due_date"`
	Status           *string  `json:"status"`
	Dependencies     []string `json:"dependencies"`
	RiskLevel        *string  `json:"risk_level"`
}

func parseSentiment(content string) (SentimentResult, error) {
	raw := []byte(stripJSONFences(content))
	if err := validatePayload(sentimentSchema, raw); err != nil {
		return SentimentResult{}, err
	}
	var p sentimentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return SentimentResult{}, fmt.Errorf("decode sentiment payload: %w", err)
	}

	out := SentimentResult{
		Classification: "neutral",
		KeyTopics:      emptyIfNil(p.KeyTopics),
		RiskFactors:    emptyIfNil(p.RiskFactors),
	}
	if p.Sentiment != nil && strings.TrimSpace(*p.Sentiment) != "" {
		out.Classification = strings.ToLower(strings.TrimSpace(*p.Sentiment))
	}
	if p.Score != nil {
		out.Score = clamp(*p.Score, -1, 1)
	}
	if p.BusinessImpact != nil {
		out.BusinessImpact = strings.TrimSpace(*p.BusinessImpact)
	}
	out.Score = reconcileScore(out.Classification, out.Score)
	return out, nil
}

func parseActionItems(content string) ([]ActionItem, error) {
	raw := []byte(stripJSONFences(content))

	// Some models wrap the array in {"action_items": [...]}; unwrap before
	// validating against the array schema.
	var wrapper struct {
		ActionItems json.RawMessage `json:"action_items"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.ActionItems) > 0 {
		raw = wrapper.ActionItems
	}

	if err := validatePayload(actionItemsSchema, raw); err != nil {
		return nil, err
	}
	var payloads []actionItemPayload
	if err := json.Unmarshal(raw, &payloads); err != nil {
		return nil, fmt.Errorf("decode action items payload: %w", err)
	}

	items := make([]ActionItem, 0, len(payloads))
	for _, p := range payloads {
		desc := strings.TrimSpace(p.Description)
		if desc == "" {
			continue
		}
		item := ActionItem{
			Description:  desc,
			Priority:     normalizePriority(deref(p.Priority)),
			Status:       normalizeStatus(deref(p.Status)),
			RiskLevel:    normalizeRiskLevel(deref(p.RiskLevel)),
			Dependencies: emptyIfNil(p.Dependencies),
		}
		if p.ResponsibleParty != nil {
			item.ResponsibleParty = strings.TrimSpace(*p.ResponsibleParty)
		}
		if p.DueDate != nil {
			if d, ok := parseDueDate(*p.DueDate); ok {
				item.DueDate = &d
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// stripJSONFences removes a surrounding ```json ... ``` block if present.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// reconcileScore aligns the score sign with the classification. The model is
// not guaranteed to keep them consistent, so the sign is corrected here.
func reconcileScore(classification string, score float64) float64 {
	switch {
	case strings.Contains(classification, "negative"):
		return -math.Abs(score)
	case strings.Contains(classification, "positive"):
		return math.Abs(score)
	default:
		return score
	}
}

func normalizePriority(v string) constants.Priority {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "high":
		return constants.PriorityHigh
	case "low":
		return constants.PriorityLow
	default:
		return constants.PriorityMedium
	}
}

func normalizeStatus(v string) constants.ItemStatus {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "in_progress", "in progress":
		return constants.ItemInProgress
	case "completed", "done":
		return constants.ItemCompleted
	default:
		return constants.ItemPending
	}
}

func normalizeRiskLevel(v string) constants.RiskLevel {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "high":
		return constants.RiskHigh
	case "low":
		return constants.RiskLow
	default:
		return constants.RiskMedium
	}
}

func parseDueDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if d, err := time.Parse(layout, v); err == nil {
			return d.UTC(), true
		}
	}
	return time.Time{}, false
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
