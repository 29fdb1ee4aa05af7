package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentIntent holds a paid showcase submission until the processor confirms
// the checkout session. PostID is set exactly once, when the post is created.
type PaymentIntent struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID        string         `gorm:"size:255;not null;uniqueIndex" json:"session_id"`
	ContactPhone     string         `gorm:"size:20;not null;index" json:"contact_phone"`
	Payload          datatypes.JSON `gorm:"not null" json:"payload"`
	AmountCents      int64          `gorm:"not null" json:"amount_cents"`
	Currency         string         `gorm:"size:3;not null" json:"currency"`
	Status           PaymentStatus  `gorm:"size:20;not null;default:'created';index" json:"status"`
	PaymentReference string         `gorm:"size:255" json:"payment_reference,omitempty"`
	PostID           *uuid.UUID     `gorm:"type:uuid" json:"post_id,omitempty"`
	LastError        string         `gorm:"type:text" json:"last_error,omitempty"`
	PaidAt           *time.Time     `json:"paid_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (p *PaymentIntent) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// FreeListingClaim records that a phone has used its one free listing. The
// primary key makes the claim an atomic insert.
type FreeListingClaim struct {
	Phone     string     `gorm:"size:20;primaryKey" json:"phone"`
	PostID    *uuid.UUID `gorm:"type:uuid" json:"post_id"`
	CreatedAt time.Time  `json:"created_at"`
}
