package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ShowcasePost is a time-boxed marketplace listing. Ownership is proven by the
// contact phone, stored normalized to digits.
type ShowcasePost struct {
	ID              uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string                      `gorm:"size:80;not null" json:"title"`
	Description     string                      `gorm:"size:300" json:"description,omitempty"`
	Category        PostCategory                `gorm:"size:20;not null;index" json:"category"`
	ContactName     string                      `gorm:"size:80;not null" json:"contact_name"`
	ContactPhone    string                      `gorm:"size:20;not null;index" json:"contact_phone"`
	ImageURLs       datatypes.JSONSlice[string] `json:"image_urls"`
	VideoURL        string                      `gorm:"size:500" json:"video_url,omitempty"`
	PriceCents      *int64                      `json:"price_cents"`
	Status          PostStatus                  `gorm:"size:20;not null;default:'pendente';index" json:"status"`
	ApprovedAt      *time.Time                  `json:"approved_at"`
	ExpiresAt       *time.Time                  `gorm:"index" json:"expires_at"`
	RepostCount     int                         `gorm:"not null;default:0" json:"repost_count"`
	RepostLimit     int                         `gorm:"not null" json:"repost_limit"`
	Paid            bool                        `gorm:"not null;default:false" json:"paid"`
	PaymentIntentID *uuid.UUID                  `gorm:"type:uuid" json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

func (p *ShowcasePost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
