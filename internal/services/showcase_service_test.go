package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownerPhone = "11987654321"

func TestIsFirstSubmission(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()

	first, err := f.showcase.IsFirstSubmission(ctx, "+55 (11) 98765-4321")
	require.NoError(t, err)
	assert.True(t, first)

	post := f.freePost(t, ownerPhone)

	first, err = f.showcase.IsFirstSubmission(ctx, ownerPhone)
	require.NoError(t, err)
	assert.False(t, first)

	// Deleting the free post does not hand out a second one.
	require.NoError(t, f.showcase.DeleteAsOwner(ctx, post.ID, ownerPhone))
	first, err = f.showcase.IsFirstSubmission(ctx, ownerPhone)
	require.NoError(t, err)
	assert.False(t, first)

	_, err = f.showcase.IsFirstSubmission(ctx, "123")
	assert.True(t, IsValidation(err))
}

func TestSubmit_FirstIsFree(t *testing.T) {
	f := newShowcaseFixture(t)

	post := f.freePost(t, "(11) 98765-4321")

	assert.Equal(t, models.PostPending, post.Status)
	assert.False(t, post.Paid)
	assert.Equal(t, 1, post.RepostLimit)
	assert.Equal(t, ownerPhone, post.ContactPhone)
	assert.Nil(t, post.ExpiresAt)
	assert.Empty(t, f.provider.Sessions)

	var claim models.FreeListingClaim
	require.NoError(t, f.db.Where("phone = ?", ownerPhone).First(&claim).Error)
	require.NotNil(t, claim.PostID)
	assert.Equal(t, post.ID, *claim.PostID)
}

func TestSubmit_SecondGoesToCheckout(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()
	f.freePost(t, ownerPhone)

	res, err := f.showcase.Submit(ctx, submission(ownerPhone))
	require.NoError(t, err)
	assert.True(t, res.PaymentRequired)
	assert.Nil(t, res.Post)
	assert.Equal(t, "cs_test_1", res.SessionID)
	assert.NotEmpty(t, res.ClientSecret)
	assert.Equal(t, int64(990), res.AmountCents)

	assert.Equal(t, int64(1), countRows(t, f.db, &models.ShowcasePost{}), "unpaid submissions create no post")

	intent, err := f.payments.Intent(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCreated, intent.Status)
	assert.Equal(t, ownerPhone, intent.ContactPhone)
	assert.Nil(t, intent.PostID)
}

func TestSubmit_ProcessorFailure(t *testing.T) {
	f := newShowcaseFixture(t)
	f.freePost(t, ownerPhone)
	f.provider.Err = errors.New("stripe is down")

	_, err := f.showcase.Submit(context.Background(), submission(ownerPhone))
	assert.ErrorIs(t, err, ErrPaymentUnavailable)
	assert.Zero(t, countRows(t, f.db, &models.PaymentIntent{}))
}

func TestSubmit_Validation(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()

	bad := submission(ownerPhone)
	bad.Title = ""
	_, err := f.showcase.Submit(ctx, bad)
	assert.True(t, IsValidation(err))

	bad = submission("1234")
	_, err = f.showcase.Submit(ctx, bad)
	assert.True(t, IsValidation(err))

	bad = submission(ownerPhone)
	bad.ImageURLs = []string{"ftp://example.com/a.png"}
	_, err = f.showcase.Submit(ctx, bad)
	assert.True(t, IsValidation(err))

	bad = submission(ownerPhone)
	bad.Category = "imovel"
	_, err = f.showcase.Submit(ctx, bad)
	assert.True(t, IsValidation(err))

	assert.Zero(t, countRows(t, f.db, &models.ShowcasePost{}))
	assert.Zero(t, countRows(t, f.db, &models.FreeListingClaim{}))
}

func TestSubmit_ConcurrentFirstSubmissions(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	results := make([]*SubmitResult, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.showcase.Submit(ctx, submission(ownerPhone))
		}(i)
	}
	wg.Wait()

	free := 0
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		if !results[i].PaymentRequired {
			free++
		}
	}
	assert.Equal(t, 1, free)
	assert.Equal(t, int64(1), countRows(t, f.db, &models.ShowcasePost{}))
	assert.Equal(t, int64(n-1), countRows(t, f.db, &models.PaymentIntent{}))
}

func TestApproveOpensWindow(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()
	approvedAt := f.clock.Now().UTC()

	post := f.approvedPost(t, ownerPhone)

	f.clock.Advance(47*time.Hour + 59*time.Minute)
	view, err := f.showcase.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, view.Active)
	assert.False(t, view.Expired)
	assert.Equal(t, models.PostApproved, view.Status)
	require.NotNil(t, view.ExpiresAt)
	assert.True(t, approvedAt.Add(48*time.Hour).Equal(*view.ExpiresAt))

	f.clock.Advance(2 * time.Minute)
	view, err = f.showcase.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, view.Active)
	assert.True(t, view.Expired)
	assert.Equal(t, models.PostApproved, view.Status)
}

func TestSetStatus_Transitions(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()
	post := f.freePost(t, ownerPhone)

	require.NoError(t, f.showcase.SetStatus(ctx, post.ID, models.PostRejected))
	err := f.showcase.SetStatus(ctx, post.ID, models.PostApproved)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "rejeitado to aprovado")

	require.NoError(t, f.showcase.SetStatus(ctx, post.ID, models.PostPending))
	require.NoError(t, f.showcase.SetStatus(ctx, post.ID, models.PostApproved))
	require.NoError(t, f.showcase.SetStatus(ctx, post.ID, models.PostPending))

	view, err := f.showcase.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, view.ExpiresAt, "reverting to pending closes the window")
	assert.Nil(t, view.ApprovedAt)

	assert.ErrorIs(t, f.showcase.SetStatus(ctx, uuid.New(), models.PostApproved), ErrPostNotFound)
	assert.True(t, IsValidation(f.showcase.SetStatus(ctx, post.ID, "expirado")))
}

func TestBulkSetStatus(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()
	a := f.freePost(t, "11911111111")
	b := f.approvedPost(t, "11922222222")

	results := f.showcase.BulkSetStatus(ctx, []uuid.UUID{a.ID, b.ID}, models.PostApproved)
	require.Len(t, results, 2)
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
}

func TestEditAfterRejectionReturnsToReview(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()
	post := f.freePost(t, ownerPhone)
	require.NoError(t, f.showcase.SetStatus(ctx, post.ID, models.PostRejected))

	title := "Bolo caseiro de cenoura"
	view, err := f.showcase.Edit(ctx, post.ID, ownerPhone, &dto.EditPostRequest{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, post.ID, view.ID)
	assert.Equal(t, models.PostPending, view.Status)
	assert.Equal(t, title, view.Title)
	assert.Equal(t, int64(1), countRows(t, f.db, &models.ShowcasePost{}))
}

func TestEditApprovedPostLeavesShowcase(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()
	post := f.approvedPost(t, ownerPhone)

	view, err := f.showcase.Edit(ctx, post.ID, ownerPhone, &dto.EditPostRequest{ClearPrice: true})
	require.NoError(t, err)
	assert.Equal(t, models.PostPending, view.Status)
	assert.False(t, view.Active)
	assert.Nil(t, view.PriceCents)

	active, total, err := f.showcase.ListActive(ctx, "", 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, active)
}

func TestEdit_Ownership(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()
	post := f.freePost(t, ownerPhone)
	title := "Outro título"

	_, err := f.showcase.Edit(ctx, post.ID, "11900000000", &dto.EditPostRequest{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.showcase.Edit(ctx, uuid.New(), ownerPhone, &dto.EditPostRequest{Title: &title})
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = f.showcase.Edit(ctx, post.ID, ownerPhone, &dto.EditPostRequest{})
	assert.True(t, IsValidation(err))
}

func TestRepostGuard_FreePost(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()
	post := f.approvedPost(t, ownerPhone)

	_, err := f.showcase.RepostAsOwner(ctx, post.ID, ownerPhone)
	assert.ErrorIs(t, err, ErrStillActive)

	f.clock.Advance(48 * time.Hour)
	view, err := f.showcase.RepostAsOwner(ctx, post.ID, ownerPhone)
	require.NoError(t, err)
	assert.Equal(t, 1, view.RepostCount)
	assert.True(t, view.Active)

	f.clock.Advance(48 * time.Hour)
	_, err = f.showcase.RepostAsOwner(ctx, post.ID, ownerPhone)
	assert.ErrorIs(t, err, ErrRepostLimit)

	_, err = f.showcase.RepostAsModerator(ctx, post.ID)
	assert.ErrorIs(t, err, ErrRepostLimit)

	view, err = f.showcase.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.RepostCount, "a refused repost changes nothing")
	assert.True(t, view.Expired)
}

func TestRepostGuard_StateAndOwner(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()
	post := f.freePost(t, ownerPhone)

	_, err := f.showcase.RepostAsOwner(ctx, post.ID, ownerPhone)
	assert.ErrorIs(t, err, ErrNotApproved)

	require.NoError(t, f.showcase.SetStatus(ctx, post.ID, models.PostApproved))
	f.clock.Advance(49 * time.Hour)

	_, err = f.showcase.RepostAsOwner(ctx, post.ID, "11900000000")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.showcase.RepostAsOwner(ctx, uuid.New(), ownerPhone)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestListActiveAndMine(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()

	older := f.approvedPost(t, "11911111111")
	f.clock.Advance(time.Hour)
	newer := f.approvedPost(t, "11922222222")
	pending := f.freePost(t, "11933333333")

	active, total, err := f.showcase.ListActive(ctx, "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, active, 2)
	assert.Equal(t, newer.ID, active[0].ID)
	assert.Equal(t, older.ID, active[1].ID)

	f.clock.Advance(47*time.Hour + 30*time.Minute)
	active, _, err = f.showcase.ListActive(ctx, "", 20, 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, newer.ID, active[0].ID)

	mine, err := f.showcase.ListByOwner(ctx, "11 93333-3333")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, pending.ID, mine[0].ID)
	assert.False(t, mine[0].Active)

	queue, total, err := f.showcase.ListForModeration(ctx, models.PostPending, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, pending.ID, queue[0].ID)
}

func TestDeletePost(t *testing.T) {
	f := newShowcaseFixture(t)
	ctx := context.Background()
	post := f.approvedPost(t, ownerPhone)

	assert.ErrorIs(t, f.showcase.DeleteAsOwner(ctx, post.ID, "11900000000"), ErrForbidden)
	require.NoError(t, f.showcase.DeleteAsOwner(ctx, post.ID, ownerPhone))
	assert.ErrorIs(t, f.showcase.DeleteAsModerator(ctx, post.ID), ErrPostNotFound)

	other := f.freePost(t, "11922222222")
	results := f.showcase.BulkDelete(ctx, []uuid.UUID{other.ID, post.ID})
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
}
