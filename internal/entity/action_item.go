package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/apphelix/engagement-tracker/constants"
)

// ActionItem is the persisted form of a commitment extracted from engagement text.
type ActionItem struct {
	ID               uuid.UUID            `json:"id"`
	EngagementID     uuid.UUID            `json:"engagement_id"`
	Description      string               `json:"description"`
	Priority         constants.Priority   `json:"priority"`
	ResponsibleParty string               `json:"responsible_party,omitempty"`
	DueDate          *time.Time           `json:"due_date,omitempty"`
	Status           constants.ItemStatus `json:"status"`
	Dependencies     []string             `json:"dependencies,omitempty"`
	RiskLevel        constants.RiskLevel  `json:"risk_level"`
	Source           string               `json:"source"` // ai | manual
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}
