package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/observability"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/payments"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// Outcome describes what a payment notification did.
type Outcome string

const (
	OutcomeMaterialized   Outcome = "materialized"
	OutcomeDuplicate      Outcome = "duplicate"
	OutcomeUnknown        Outcome = "unknown_session"
	OutcomeClosed         Outcome = "closed"
	OutcomePayloadInvalid Outcome = "payload_invalid"
)

type PaymentService struct {
	db      *gorm.DB
	clock   clockwork.Clock
	metrics observability.MetricsRegistry
}

func NewPaymentService(db *gorm.DB, clock clockwork.Clock, metrics observability.MetricsRegistry) *PaymentService {
	return &PaymentService{db: db, clock: clock, metrics: metrics}
}

// HandleEvent applies a verified processor notification. Deliveries are
// at-least-once and may arrive concurrently; a session yields at most one
// post no matter how often it is delivered.
func (s *PaymentService) HandleEvent(ctx context.Context, event *payments.Event) (Outcome, error) {
	if event == nil || event.SessionID == "" {
		return "", NewValidationError("event session is required")
	}

	var (
		outcome Outcome
		err     error
	)
	switch event.Type {
	case payments.EventCompleted:
		outcome, err = s.complete(ctx, event)
	case payments.EventExpired:
		outcome, err = s.close(ctx, event, models.PaymentExpired)
	case payments.EventFailed:
		outcome, err = s.close(ctx, event, models.PaymentFailed)
	default:
		return "", payments.ErrIgnoredEvent
	}

	if err != nil {
		s.metrics.IncrementPaymentEvent(string(event.Type), "error")
		return "", err
	}
	s.metrics.IncrementPaymentEvent(string(event.Type), string(outcome))
	slog.Info("payment event handled",
		"component", "payments",
		"session_id", event.SessionID,
		"type", string(event.Type),
		"outcome", string(outcome),
	)
	return outcome, nil
}

// complete marks the intent paid and creates the post in one transaction.
// The compare-and-set on status and post_id picks exactly one winner among
// concurrent deliveries; every other delivery sees zero affected rows.
func (s *PaymentService) complete(ctx context.Context, event *payments.Event) (Outcome, error) {
	now := s.clock.Now().UTC()
	outcome := OutcomeMaterialized

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PaymentIntent{}).
			Where("session_id = ? AND status <> ? AND post_id IS NULL", event.SessionID, models.PaymentPaid).
			Updates(map[string]interface{}{
				"status":            models.PaymentPaid,
				"payment_reference": event.PaymentReference,
				"paid_at":           now,
				"updated_at":        now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			known, err := sessionKnown(tx, event.SessionID)
			if err != nil {
				return err
			}
			outcome = OutcomeDuplicate
			if !known {
				outcome = OutcomeUnknown
			}
			return nil
		}

		var intent models.PaymentIntent
		if err := tx.Where("session_id = ?", event.SessionID).First(&intent).Error; err != nil {
			return err
		}

		var sub dto.ShowcaseSubmission
		if err := json.Unmarshal(intent.Payload, &sub); err != nil {
			outcome = OutcomePayloadInvalid
			return recordIntentError(tx, intent.ID.String(), err, now)
		}
		normalized, err := normalizeSubmission(&sub)
		if err != nil {
			outcome = OutcomePayloadInvalid
			return recordIntentError(tx, intent.ID.String(), err, now)
		}

		post := newPost(normalized, now, true, UnlimitedReposts, &intent.ID)
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return tx.Model(&models.PaymentIntent{}).
			Where("id = ?", intent.ID).
			Update("post_id", post.ID).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to complete payment: %w", err)
	}

	if outcome == OutcomePayloadInvalid {
		slog.Error("paid session payload could not be materialized",
			"component", "payments",
			"session_id", event.SessionID,
		)
	}
	return outcome, nil
}

// close records an expired or failed session. Only unpaid intents move; a
// late expiry never undoes a payment.
func (s *PaymentService) close(ctx context.Context, event *payments.Event, status models.PaymentStatus) (Outcome, error) {
	result := s.db.WithContext(ctx).Model(&models.PaymentIntent{}).
		Where("session_id = ? AND status = ?", event.SessionID, models.PaymentCreated).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": s.clock.Now().UTC(),
		})
	if result.Error != nil {
		return "", fmt.Errorf("failed to close payment intent: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return OutcomeClosed, nil
	}

	known, err := sessionKnown(s.db.WithContext(ctx), event.SessionID)
	if err != nil {
		return "", err
	}
	if !known {
		return OutcomeUnknown, nil
	}
	return OutcomeDuplicate, nil
}

// Intent looks up the payment intent of a checkout session.
func (s *PaymentService) Intent(ctx context.Context, sessionID string) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&intent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIntentNotFound
		}
		return nil, err
	}
	return &intent, nil
}

func sessionKnown(db *gorm.DB, sessionID string) (bool, error) {
	var count int64
	if err := db.Model(&models.PaymentIntent{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func recordIntentError(tx *gorm.DB, id string, cause error, now time.Time) error {
	return tx.Model(&models.PaymentIntent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_error": cause.Error(),
			"updated_at": now,
		}).Error
}
