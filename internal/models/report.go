package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report is an anonymous community incident report. The fingerprint is an
// opaque client identity used to let the submitter delete their own report.
type Report struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Body        string         `gorm:"type:text;not null" json:"body"`
	Category    ReportCategory `gorm:"size:30;not null;index" json:"category"`
	Status      ReportStatus   `gorm:"size:20;not null;default:'pendente';index" json:"status"`
	Fingerprint string         `gorm:"size:128;not null;index" json:"-"`
	AdminNote   string         `gorm:"size:1000" json:"admin_note,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
