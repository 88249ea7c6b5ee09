package entity

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents an account whose engagements the pipeline tracks.
type Customer struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Industry     string    `json:"industry,omitempty"`
	Status       string    `json:"status"` // active | inactive
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
