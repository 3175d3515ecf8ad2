package models

import (
	"time"

	"github.com/google/uuid"
)

type ReportStatus string

const (
	StatusQueued     ReportStatus = "queued"
	StatusProcessing ReportStatus = "processing"
	StatusCompleted  ReportStatus = "completed"
	StatusFailed     ReportStatus = "failed"
)

// Report is one archived report job. Payload carries the parsed SessionRecord
// as JSON so workers can re-run the pipeline without the original upload.
type Report struct {
	ID               uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PersonName       string       `gorm:"type:text" json:"person_name"`
	SessionName      string       `gorm:"type:text" json:"session_name"`
	Kind             int          `gorm:"not null;default:0" json:"kind"`
	Status           ReportStatus `gorm:"not null;default:'queued'" json:"status"`
	Payload          string       `gorm:"type:jsonb" json:"-"`
	SuitabilityScore *float64     `gorm:"type:decimal(5,2)" json:"suitability_score,omitempty"`
	PDFPath          *string      `gorm:"type:text" json:"pdf_path,omitempty"`
	ErrorMessage     *string      `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Report) TableName() string {
	return "reports"
}
