package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/apphelix/engagement-tracker/constants"
)

// Engagement represents a customer engagement whose health the pipeline tracks.
type Engagement struct {
	ID         uuid.UUID            `json:"id"`
	CustomerID uuid.UUID            `json:"customer_id"`
	Name       string               `json:"name"`
	Status     string               `json:"status"` // active | closed
	RYGStatus  constants.RiskStatus `json:"ryg_status"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`

	// Snapshot of the last AI analysis, for auditability.
	LastAnalyzedAt *time.Time `json:"last_analyzed_at,omitempty"`
	SentimentClass string     `json:"sentiment_class,omitempty"`
	SentimentScore *float64   `json:"sentiment_score,omitempty"`
	RiskFactors    []string   `json:"risk_factors,omitempty"`
}
