package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/apphelix/engagement-tracker/constants"
)

// Document represents an uploaded engagement document for data transfer between layers.
type Document struct {
	ID           uuid.UUID           `json:"id"`
	EngagementID uuid.UUID           `json:"engagement_id"`
	Filename     string              `json:"filename"`
	OriginalName string              `json:"original_name"`
	FileType     string              `json:"file_type"` // msa | sow | other
	MimeClass    constants.MimeClass `json:"mime_class"`
	SizeBytes    int64               `json:"size_bytes"`
	FilePath     string              `json:"file_path"`
	UploadedBy   string              `json:"uploaded_by"`
	UploadedAt   time.Time           `json:"uploaded_at"`
	ProcessedAt  *time.Time          `json:"processed_at,omitempty"`

	// AI-extracted payload, filled once the pipeline has run.
	TextContent string `json:"text_content,omitempty"`
	Sentiment   string `json:"sentiment,omitempty"`
}
