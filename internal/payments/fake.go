package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// FakeProvider is an in-memory processor for tests and local development.
// Its webhook format is plain JSON Event with the signature equal to the
// configured secret.
type FakeProvider struct {
	mu       sync.Mutex
	secret   string
	next     int
	Err      error
	Sessions []CheckoutRequest
}

func NewFakeProvider(secret string) *FakeProvider {
	return &FakeProvider{secret: secret}
}

func (f *FakeProvider) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.next++
	f.Sessions = append(f.Sessions, req)
	id := fmt.Sprintf("cs_test_%d", f.next)
	return &CheckoutSession{ID: id, ClientSecret: id + "_secret"}, nil
}

func (f *FakeProvider) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if signature != f.secret {
		return nil, ErrInvalidSignature
	}
	var evt Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	switch evt.Type {
	case EventCompleted, EventExpired, EventFailed:
		return &evt, nil
	}
	return nil, ErrIgnoredEvent
}
