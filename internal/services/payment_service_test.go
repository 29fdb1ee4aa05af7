package services

import (
	"context"
	"sync"
	"testing"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// pendingCheckout uses the free listing for phone and opens a paid checkout
// for a second submission. It returns the checkout session id.
func (f *showcaseFixture) pendingCheckout(t *testing.T, phone string) string {
	t.Helper()
	f.freePost(t, phone)
	res, err := f.showcase.Submit(context.Background(), submission(phone))
	require.NoError(t, err)
	require.True(t, res.PaymentRequired)
	return res.SessionID
}

func completed(session string) *payments.Event {
	return &payments.Event{Type: payments.EventCompleted, SessionID: session, PaymentReference: "pi_123"}
}

func TestHandleEvent_CompletedMaterializesPaidPost(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()
	session := f.pendingCheckout(t, ownerPhone)

	outcome, err := f.payments.HandleEvent(ctx, completed(session))
	require.NoError(t, err)
	assert.Equal(t, OutcomeMaterialized, outcome)

	intent, err := f.payments.Intent(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, intent.Status)
	assert.Equal(t, "pi_123", intent.PaymentReference)
	require.NotNil(t, intent.PostID)
	require.NotNil(t, intent.PaidAt)

	view, err := f.showcase.Get(ctx, *intent.PostID)
	require.NoError(t, err)
	assert.True(t, view.Paid)
	assert.Equal(t, models.PostPending, view.Status, "paid posts still go through review")
	assert.Equal(t, UnlimitedReposts, view.RepostLimit)
	assert.Equal(t, ownerPhone, view.ContactPhone)
	require.NotNil(t, view.PaymentIntentID)
	assert.Equal(t, intent.ID, *view.PaymentIntentID)
}

func TestHandleEvent_DuplicateDeliveries(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()
	session := f.pendingCheckout(t, ownerPhone)

	outcome, err := f.payments.HandleEvent(ctx, completed(session))
	require.NoError(t, err)
	assert.Equal(t, OutcomeMaterialized, outcome)

	for i := 0; i < 3; i++ {
		outcome, err = f.payments.HandleEvent(ctx, completed(session))
		require.NoError(t, err)
		assert.Equal(t, OutcomeDuplicate, outcome)
	}

	assert.Equal(t, int64(2), countRows(t, f.db, &models.ShowcasePost{}), "free post plus exactly one paid post")
}

func TestHandleEvent_ConcurrentDeliveries(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()
	session := f.pendingCheckout(t, ownerPhone)

	const n = 10
	var wg sync.WaitGroup
	outcomes := make([]Outcome, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = f.payments.HandleEvent(ctx, completed(session))
		}(i)
	}
	wg.Wait()

	materialized := 0
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		if outcomes[i] == OutcomeMaterialized {
			materialized++
		} else {
			assert.Equal(t, OutcomeDuplicate, outcomes[i])
		}
	}
	assert.Equal(t, 1, materialized)

	var paidPosts int64
	require.NoError(t, f.db.Model(&models.ShowcasePost{}).Where("paid = ?", true).Count(&paidPosts).Error)
	assert.Equal(t, int64(1), paidPosts)
}

func TestHandleEvent_UnknownSession(t *testing.T) {
	f := newShowcaseFixture(t)

	outcome, err := f.payments.HandleEvent(context.Background(), completed("cs_test_missing"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknown, outcome)
	assert.Zero(t, countRows(t, f.db, &models.ShowcasePost{}))
}

func TestHandleEvent_ExpiredAndFailed(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()
	session := f.pendingCheckout(t, ownerPhone)

	outcome, err := f.payments.HandleEvent(ctx, &payments.Event{Type: payments.EventExpired, SessionID: session})
	require.NoError(t, err)
	assert.Equal(t, OutcomeClosed, outcome)

	intent, err := f.payments.Intent(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentExpired, intent.Status)

	outcome, err = f.payments.HandleEvent(ctx, &payments.Event{Type: payments.EventFailed, SessionID: session})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome, "a closed intent is not closed twice")
	assert.Equal(t, int64(1), countRows(t, f.db, &models.ShowcasePost{}))
}

func TestHandleEvent_LateExpiryKeepsPayment(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()
	session := f.pendingCheckout(t, ownerPhone)

	_, err := f.payments.HandleEvent(ctx, completed(session))
	require.NoError(t, err)

	outcome, err := f.payments.HandleEvent(ctx, &payments.Event{Type: payments.EventExpired, SessionID: session})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)

	intent, err := f.payments.Intent(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, intent.Status)
}

func TestHandleEvent_InvalidPayloadIsAbsorbed(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()

	intent := models.PaymentIntent{
		SessionID:    "cs_test_broken",
		ContactPhone: ownerPhone,
		Payload:      datatypes.JSON(`{"title":""}`),
		AmountCents:  990,
		Currency:     "brl",
		Status:       models.PaymentCreated,
	}
	require.NoError(t, f.db.Create(&intent).Error)

	outcome, err := f.payments.HandleEvent(ctx, completed("cs_test_broken"))
	require.NoError(t, err)
	assert.Equal(t, OutcomePayloadInvalid, outcome)

	stored, err := f.payments.Intent(ctx, "cs_test_broken")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, stored.Status)
	assert.NotEmpty(t, stored.LastError)
	assert.Nil(t, stored.PostID)
	assert.Zero(t, countRows(t, f.db, &models.ShowcasePost{}))

	outcome, err = f.payments.HandleEvent(ctx, completed("cs_test_broken"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)
}

func TestIntent_UnknownSession(t *testing.T) {
	f := newShowcaseFixture(t)
	_, err := f.payments.Intent(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, ErrIntentNotFound)
}

func TestHandleEvent_Rejects(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()

	_, err := f.payments.HandleEvent(ctx, &payments.Event{Type: payments.EventCompleted})
	assert.True(t, IsValidation(err))

	_, err = f.payments.HandleEvent(ctx, &payments.Event{Type: "refunded", SessionID: "cs"})
	assert.ErrorIs(t, err, payments.ErrIgnoredEvent)
}
