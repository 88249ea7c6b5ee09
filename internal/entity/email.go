package entity

import (
	"time"

	"github.com/google/uuid"
)

// Email represents a customer communication attached to an engagement.
type Email struct {
	ID           uuid.UUID `json:"id"`
	EngagementID uuid.UUID `json:"engagement_id"`
	Subject      string    `json:"subject"`
	Sender       string    `json:"sender"`
	Content      string    `json:"content"`
	ReceivedAt   time.Time `json:"received_at"`

	// Per-email sentiment snapshot, filled when the engagement is analyzed.
	SentimentClass string   `json:"sentiment_class,omitempty"`
	SentimentScore *float64 `json:"sentiment_score,omitempty"`
}
