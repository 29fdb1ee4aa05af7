package services

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/observability"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/payments"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/testutil"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type showcaseFixture struct {
	db       *gorm.DB
	clock    *clockwork.FakeClock
	provider *payments.FakeProvider
	showcase *ShowcaseService
	payments *PaymentService
}

func newShowcaseFixture(t *testing.T) *showcaseFixture {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock()
	provider := payments.NewFakeProvider("whsec_test")
	metrics := observability.NewNoOpRegistry()

	return &showcaseFixture{
		db:       db,
		clock:    clock,
		provider: provider,
		showcase: NewShowcaseService(db, clock, provider, metrics, DefaultShowcaseOptions()),
		payments: NewPaymentService(db, clock, metrics),
	}
}

func submission(phone string) *dto.ShowcaseSubmission {
	price := int64(2500)
	return &dto.ShowcaseSubmission{
		Title:        "Bolo caseiro",
		Description:  "Bolos por encomenda, entrega no bairro",
		Category:     string(models.PostProduto),
		ContactName:  "Dona Maria",
		ContactPhone: phone,
		ImageURLs:    []string{"https://cdn.example.com/bolo.jpg"},
		PriceCents:   &price,
	}
}

// freePost submits the first listing for phone and returns the created post.
func (f *showcaseFixture) freePost(t *testing.T, phone string) *models.ShowcasePost {
	t.Helper()
	res, err := f.showcase.Submit(context.Background(), submission(phone))
	require.NoError(t, err)
	require.False(t, res.PaymentRequired)
	require.NotNil(t, res.Post)
	return res.Post
}

// approvedPost creates a free post and approves it at the current fake time.
func (f *showcaseFixture) approvedPost(t *testing.T, phone string) *models.ShowcasePost {
	t.Helper()
	post := f.freePost(t, phone)
	require.NoError(t, f.showcase.SetStatus(context.Background(), post.ID, models.PostApproved))
	return post
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
