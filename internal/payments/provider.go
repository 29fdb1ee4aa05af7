// Package payments adapts the external payment processor to the showcase
// payment gate.
package payments

import (
	"context"
	"errors"
)

// EventType is the processor-neutral kind of a payment notification.
type EventType string

const (
	EventCompleted EventType = "completed"
	EventExpired   EventType = "expired"
	EventFailed    EventType = "failed"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrIgnoredEvent     = errors.New("event type not handled")
	ErrNotConfigured    = errors.New("payment processor not configured")
	// ErrMalformedEvent marks a correctly signed event whose body cannot be
	// read. Retrying will not fix it.
	ErrMalformedEvent = errors.New("malformed webhook event")
)

type CheckoutRequest struct {
	AmountCents int64
	Currency    string
	Description string
	Metadata    map[string]string
}

type CheckoutSession struct {
	ID           string
	ClientSecret string
}

// Event is a verified notification about one checkout session.
type Event struct {
	Type             EventType `json:"type"`
	SessionID        string    `json:"session_id"`
	PaymentReference string    `json:"payment_reference"`
}

// CheckoutProvider opens checkout sessions for paid submissions.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// WebhookVerifier authenticates a raw webhook delivery and translates it.
// Events this platform does not act on return ErrIgnoredEvent.
type WebhookVerifier interface {
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
