package llm

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/apphelix/engagement-tracker/constants"
)

func TestStripJSONFences(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding space", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := stripJSONFences(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseSentimentFull(t *testing.T) {
	t.Parallel()

	content := `{
		"sentiment": "Negative",
		"score": 0.8,
		"key_topics": ["timeline", "budget"],
		"risk_factors": ["missed milestone"],
		"business_impact": "renewal at risk"
	}`

	got, err := parseSentiment(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := SentimentResult{
		Classification: "negative",
		Score:          -0.8, // sign reconciled with the classification
		KeyTopics:      []string{"timeline", "budget"},
		RiskFactors:    []string{"missed milestone"},
		BusinessImpact: "renewal at risk",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSentimentDefaults(t *testing.T) {
	t.Parallel()

	got, err := parseSentiment(`{}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Classification != "neutral" {
		t.Fatalf("expected neutral default, got %q", got.Classification)
	}
	if got.Score != 0 {
		t.Fatalf("expected zero score, got %v", got.Score)
	}
	if got.KeyTopics == nil || got.RiskFactors == nil {
		t.Fatal("expected empty slices, got nil")
	}
}

func TestParseSentimentClampsScore(t *testing.T) {
	t.Parallel()

	got, err := parseSentiment(`{"sentiment":"positive","score":3.5}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Score != 1 {
		t.Fatalf("expected score clamped to 1, got %v", got.Score)
	}
}

func TestParseSentimentRejectsWrongShape(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
	}{
		{"array", `[1,2,3]`},
		{"score as string", `{"score":"very"}`},
		{"topics as object", `{"key_topics":{"a":1}}`},
		{"not json", `the model had an opinion instead`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := parseSentiment(tc.in); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseActionItems(t *testing.T) {
	t.Parallel()

	content := `[
		{"description": "Send revised SOW", "priority": "high", "status": "in_progress",
		 "responsible_party": "AM", "due_date": "2026-09-15",
		 "dependencies": ["legal review"], "risk_level": "high"},
		{"description": "   ", "priority": "low"},
		{"description": "Schedule QBR"}
	]`

	items, err := parseActionItems(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected blank description skipped, got %d items", len(items))
	}

	first := items[0]
	if first.Priority != constants.PriorityHigh {
		t.Fatalf("unexpected priority: %q", first.Priority)
	}
	if first.Status != constants.ItemInProgress {
		t.Fatalf("unexpected status: %q", first.Status)
	}
	if first.RiskLevel != constants.RiskHigh {
		t.Fatalf("unexpected risk level: %q", first.RiskLevel)
	}
	if first.DueDate == nil || !first.DueDate.Equal(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected due date: %v", first.DueDate)
	}

	second := items[1]
	if second.Priority != constants.PriorityMedium {
		t.Fatalf("expected medium default, got %q", second.Priority)
	}
	if second.Status != constants.ItemPending {
		t.Fatalf("expected pending default, got %q", second.Status)
	}
	if second.DueDate != nil {
		t.Fatalf("expected nil due date, got %v", second.DueDate)
	}
	if second.Dependencies == nil {
		t.Fatal("expected empty dependencies, got nil")
	}
}

func TestParseActionItemsUnwrapsObject(t *testing.T) {
	t.Parallel()

	content := `{"action_items":[{"description":"Confirm renewal terms"}]}`
	items, err := parseActionItems(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 1 || items[0].Description != "Confirm renewal terms" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestParseActionItemsRejectsWrongShape(t *testing.T) {
	t.Parallel()

	if _, err := parseActionItems(`{"description":"not a list"}`); err == nil {
		t.Fatal("expected error for non-array payload")
	}
	if _, err := parseActionItems(`[{"description": 42}]`); err == nil {
		t.Fatal("expected error for numeric description")
	}
}

func TestParseDueDateLayouts(t *testing.T) {
	t.Parallel()

	if d, ok := parseDueDate("2026-01-31"); !ok || d.Month() != time.January {
		t.Fatalf("date-only layout: ok=%v d=%v", ok, d)
	}
	if d, ok := parseDueDate("2026-01-31T12:00:00Z"); !ok || d.Day() != 31 {
		t.Fatalf("rfc3339 layout: ok=%v d=%v", ok, d)
	}
	if _, ok := parseDueDate("next Tuesday"); ok {
		t.Fatal("expected prose date to be dropped")
	}
}
