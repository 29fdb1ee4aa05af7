package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/observability"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/payments"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShowcaseOptions are the lifecycle and pricing knobs of the showcase.
type ShowcaseOptions struct {
	Window          time.Duration
	FreeRepostLimit int
	PriceCents      int64
	Currency        string
}

func DefaultShowcaseOptions() ShowcaseOptions {
	return ShowcaseOptions{
		Window:          48 * time.Hour,
		FreeRepostLimit: 1,
		PriceCents:      990,
		Currency:        "brl",
	}
}

// SubmitResult is either a persisted free post or a pending checkout.
type SubmitResult struct {
	Post            *models.ShowcasePost
	PaymentRequired bool
	SessionID       string
	ClientSecret    string
	AmountCents     int64
	Currency        string
}

// PostView adds the read-time expiry flags to a stored post.
type PostView struct {
	models.ShowcasePost
	Active  bool `json:"active"`
	Expired bool `json:"expired"`
}

func NewPostView(post models.ShowcasePost, now time.Time) PostView {
	return PostView{
		ShowcasePost: post,
		Active:       IsActive(&post, now),
		Expired:      IsExpired(&post, now),
	}
}

type ShowcaseService struct {
	db       *gorm.DB
	clock    clockwork.Clock
	provider payments.CheckoutProvider
	metrics  observability.MetricsRegistry
	opts     ShowcaseOptions
}

func NewShowcaseService(db *gorm.DB, clock clockwork.Clock, provider payments.CheckoutProvider, metrics observability.MetricsRegistry, opts ShowcaseOptions) *ShowcaseService {
	return &ShowcaseService{db: db, clock: clock, provider: provider, metrics: metrics, opts: opts}
}

func (s *ShowcaseService) Options() ShowcaseOptions { return s.opts }

// IsFirstSubmission is the advisory eligibility check shown before payment.
// A phone is eligible only if it has no post in any state and never claimed
// the free listing (a deleted free post does not restore eligibility).
func (s *ShowcaseService) IsFirstSubmission(ctx context.Context, rawPhone string) (bool, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return false, err
	}

	var posts int64
	if err := s.db.WithContext(ctx).Model(&models.ShowcasePost{}).
		Where("contact_phone = ?", phone).Count(&posts).Error; err != nil {
		return false, err
	}
	if posts > 0 {
		return false, nil
	}

	var claims int64
	if err := s.db.WithContext(ctx).Model(&models.FreeListingClaim{}).
		Where("phone = ?", phone).Count(&claims).Error; err != nil {
		return false, err
	}
	return claims == 0, nil
}

// Submit is the payment gate. Eligibility is re-decided here, never taken from
// the client: the free path wins only by inserting the phone's claim row.
func (s *ShowcaseService) Submit(ctx context.Context, req *dto.ShowcaseSubmission) (*SubmitResult, error) {
	sub, err := normalizeSubmission(req)
	if err != nil {
		return nil, err
	}

	post, err := s.claimFreeListing(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("failed to claim free listing: %w", err)
	}
	if post != nil {
		s.metrics.IncrementShowcaseSubmissions("free")
		slog.Info("free showcase post created", "component", "showcase", "entity_id", post.ID.String())
		return &SubmitResult{Post: post}, nil
	}

	return s.startCheckout(ctx, sub)
}

func (s *ShowcaseService) claimFreeListing(ctx context.Context, sub *dto.ShowcaseSubmission) (*models.ShowcasePost, error) {
	now := s.clock.Now().UTC()
	var created *models.ShowcasePost

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.ShowcasePost{}).
			Where("contact_phone = ?", sub.ContactPhone).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		claim := models.FreeListingClaim{Phone: sub.ContactPhone, CreatedAt: now}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&claim)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		post := newPost(sub, now, false, s.opts.FreeRepostLimit, nil)
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.FreeListingClaim{}).
			Where("phone = ?", sub.ContactPhone).
			Update("post_id", post.ID).Error; err != nil {
			return err
		}
		created = &post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// startCheckout opens a checkout session and parks the submission on a
// payment intent. No post exists until the processor confirms payment.
func (s *ShowcaseService) startCheckout(ctx context.Context, sub *dto.ShowcaseSubmission) (*SubmitResult, error) {
	if s.provider == nil {
		return nil, ErrPaymentUnavailable
	}

	payload, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}

	session, err := s.provider.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		AmountCents: s.opts.PriceCents,
		Currency:    s.opts.Currency,
		Description: "Vitrine: " + sub.Title,
		Metadata:    map[string]string{"contact_phone": sub.ContactPhone},
	})
	if err != nil {
		slog.Error("checkout session failed", "component", "payments", "error", err)
		return nil, ErrPaymentUnavailable
	}

	now := s.clock.Now().UTC()
	intent := models.PaymentIntent{
		SessionID:    session.ID,
		ContactPhone: sub.ContactPhone,
		Payload:      datatypes.JSON(payload),
		AmountCents:  s.opts.PriceCents,
		Currency:     s.opts.Currency,
		Status:       models.PaymentCreated,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.db.WithContext(ctx).Create(&intent).Error; err != nil {
		return nil, fmt.Errorf("failed to store payment intent: %w", err)
	}

	s.metrics.IncrementShowcaseSubmissions("paid")
	return &SubmitResult{
		PaymentRequired: true,
		SessionID:       session.ID,
		ClientSecret:    session.ClientSecret,
		AmountCents:     s.opts.PriceCents,
		Currency:        s.opts.Currency,
	}, nil
}

func newPost(sub *dto.ShowcaseSubmission, now time.Time, paid bool, repostLimit int, intentID *uuid.UUID) models.ShowcasePost {
	return models.ShowcasePost{
		ID:              uuid.New(),
		Title:           sub.Title,
		Description:     sub.Description,
		Category:        models.PostCategory(sub.Category),
		ContactName:     sub.ContactName,
		ContactPhone:    sub.ContactPhone,
		ImageURLs:       datatypes.JSONSlice[string](sub.ImageURLs),
		VideoURL:        sub.VideoURL,
		PriceCents:      sub.PriceCents,
		Status:          models.PostPending,
		RepostLimit:     repostLimit,
		Paid:            paid,
		PaymentIntentID: intentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (s *ShowcaseService) Get(ctx context.Context, id uuid.UUID) (*PostView, error) {
	var post models.ShowcasePost
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	view := NewPostView(post, s.clock.Now().UTC())
	return &view, nil
}

// ListActive returns the public showcase: approved posts inside their window,
// most recently (re)published first.
func (s *ShowcaseService) ListActive(ctx context.Context, category models.PostCategory, limit, offset int) ([]PostView, int64, error) {
	now := s.clock.Now().UTC()
	var posts []models.ShowcasePost
	var total int64

	query := s.db.WithContext(ctx).Model(&models.ShowcasePost{}).
		Scopes(activeAt(now), postCategoryIs(category))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("expires_at DESC").Scopes(paginate(limit, offset)).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return toViews(posts, now), total, nil
}

func (s *ShowcaseService) ListByOwner(ctx context.Context, rawPhone string) ([]PostView, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}
	var posts []models.ShowcasePost
	if err := s.db.WithContext(ctx).
		Where("contact_phone = ?", phone).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return toViews(posts, s.clock.Now().UTC()), nil
}

// ListForModeration lists posts for the admin panel, oldest pending first.
func (s *ShowcaseService) ListForModeration(ctx context.Context, status models.PostStatus, limit, offset int) ([]PostView, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, NewValidationError(fmt.Sprintf("invalid status %q", status))
	}
	var posts []models.ShowcasePost
	var total int64

	query := s.db.WithContext(ctx).Model(&models.ShowcasePost{}).Scopes(postStatusIs(status))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order := "created_at DESC"
	if status == models.PostPending {
		order = "created_at ASC"
	}
	if err := query.Order(order).Scopes(paginate(limit, offset)).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return toViews(posts, s.clock.Now().UTC()), total, nil
}

// SetStatus applies a moderator transition. Approval opens a fresh window;
// reverting to pending closes it.
func (s *ShowcaseService) SetStatus(ctx context.Context, id uuid.UUID, status models.PostStatus) error {
	sources, err := postSourceStates(status)
	if err != nil {
		return err
	}

	now := s.clock.Now().UTC()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	switch status {
	case models.PostApproved:
		updates["approved_at"] = now
		updates["expires_at"] = now.Add(s.opts.Window)
	case models.PostPending:
		updates["approved_at"] = nil
		updates["expires_at"] = nil
	case models.PostRejected:
	}

	result := s.db.WithContext(ctx).Model(&models.ShowcasePost{}).
		Where("id = ? AND status IN ?", id, sources).
		Updates(updates)
	if result.Error != nil {
		s.metrics.IncrementModerationAction("post", string(status), "error")
		return fmt.Errorf("failed to update post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		s.metrics.IncrementModerationAction("post", string(status), "refused")
		return s.transitionRefusal(ctx, id, status)
	}
	s.metrics.IncrementModerationAction("post", string(status), "ok")
	return nil
}

func (s *ShowcaseService) BulkSetStatus(ctx context.Context, ids []uuid.UUID, status models.PostStatus) []BulkResult {
	return applyEach(ids, func(id uuid.UUID) error {
		return s.SetStatus(ctx, id, status)
	})
}

// RepostAsOwner republishes an expired post for the phone that owns it.
func (s *ShowcaseService) RepostAsOwner(ctx context.Context, id uuid.UUID, rawPhone string) (*PostView, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return nil, ErrForbidden
	}
	return s.repost(ctx, id, phone)
}

func (s *ShowcaseService) RepostAsModerator(ctx context.Context, id uuid.UUID) (*PostView, error) {
	return s.repost(ctx, id, "")
}

// repost opens a new window on an expired approved post in one conditional
// update; the guard lives in the WHERE clause so concurrent reposts cannot
// overrun the limit.
func (s *ShowcaseService) repost(ctx context.Context, id uuid.UUID, owner string) (*PostView, error) {
	now := s.clock.Now().UTC()

	query := s.db.WithContext(ctx).Model(&models.ShowcasePost{}).
		Where("id = ? AND status = ? AND expires_at <= ?", id, models.PostApproved, now).
		Where("(paid = ? OR repost_count < repost_limit)", true)
	if owner != "" {
		query = query.Where("contact_phone = ?", owner)
	}

	result := query.Updates(map[string]interface{}{
		"expires_at":   now.Add(s.opts.Window),
		"repost_count": gorm.Expr("repost_count + 1"),
		"updated_at":   now,
	})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to repost: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		s.metrics.IncrementModerationAction("post", "repost", "refused")
		return nil, s.repostRefusal(ctx, id, owner, now)
	}

	s.metrics.IncrementModerationAction("post", "repost", "ok")
	return s.Get(ctx, id)
}

func (s *ShowcaseService) repostRefusal(ctx context.Context, id uuid.UUID, owner string, now time.Time) error {
	var post models.ShowcasePost
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if owner != "" && post.ContactPhone != owner {
		return ErrForbidden
	}
	if err := CheckRepost(&post, now); err != nil {
		return err
	}
	return ErrInvalidTransition
}

// Edit changes owner-editable fields and always sends the post back to
// review. The post keeps its id.
func (s *ShowcaseService) Edit(ctx context.Context, id uuid.UUID, rawPhone string, req *dto.EditPostRequest) (*PostView, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return nil, ErrForbidden
	}
	updates, err := editUpdates(req)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.ShowcasePost
		if err := tx.Where("id = ?", id).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		if post.ContactPhone != phone {
			return ErrForbidden
		}

		updates["status"] = StatusAfterEdit(post.Status)
		updates["approved_at"] = nil
		updates["expires_at"] = nil
		updates["updated_at"] = s.clock.Now().UTC()

		return tx.Model(&models.ShowcasePost{}).
			Where("id = ? AND contact_phone = ?", id, phone).
			Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementModerationAction("post", "edit", "ok")
	return s.Get(ctx, id)
}

func editUpdates(req *dto.EditPostRequest) (map[string]interface{}, error) {
	if req == nil {
		return nil, NewValidationError("request body is required")
	}
	updates := map[string]interface{}{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		if err := validateDescription(desc); err != nil {
			return nil, err
		}
		updates["description"] = desc
	}
	if req.Category != nil {
		if !models.PostCategory(*req.Category).Valid() {
			return nil, NewValidationError(fmt.Sprintf("invalid category %q", *req.Category))
		}
		updates["category"] = models.PostCategory(*req.Category)
	}
	if req.ContactName != nil {
		name := strings.TrimSpace(*req.ContactName)
		if err := validateContactName(name); err != nil {
			return nil, err
		}
		updates["contact_name"] = name
	}
	if req.ImageURLs != nil {
		images, err := validateImages(*req.ImageURLs)
		if err != nil {
			return nil, err
		}
		updates["image_urls"] = datatypes.JSONSlice[string](images)
	}
	if req.VideoURL != nil {
		video := strings.TrimSpace(*req.VideoURL)
		if err := validateMediaURL(video); err != nil {
			return nil, err
		}
		updates["video_url"] = video
	}
	if req.ClearPrice {
		updates["price_cents"] = nil
	} else if req.PriceCents != nil {
		if err := validatePrice(req.PriceCents); err != nil {
			return nil, err
		}
		updates["price_cents"] = *req.PriceCents
	}

	if len(updates) == 0 {
		return nil, NewValidationError("no fields to update")
	}
	return updates, nil
}

// DeleteAsOwner removes a post in any state when the phone matches.
func (s *ShowcaseService) DeleteAsOwner(ctx context.Context, id uuid.UUID, rawPhone string) error {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return ErrForbidden
	}
	result := s.db.WithContext(ctx).
		Where("id = ? AND contact_phone = ?", id, phone).
		Delete(&models.ShowcasePost{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return s.missReason(ctx, id, ErrForbidden)
	}
	s.metrics.IncrementModerationAction("post", "owner_delete", "ok")
	return nil
}

func (s *ShowcaseService) DeleteAsModerator(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ShowcasePost{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	s.metrics.IncrementModerationAction("post", "delete", "ok")
	return nil
}

func (s *ShowcaseService) BulkDelete(ctx context.Context, ids []uuid.UUID) []BulkResult {
	return applyEach(ids, func(id uuid.UUID) error {
		return s.DeleteAsModerator(ctx, id)
	})
}

// transitionRefusal explains why a status update matched no row.
func (s *ShowcaseService) transitionRefusal(ctx context.Context, id uuid.UUID, target models.PostStatus) error {
	var post models.ShowcasePost
	if err := s.db.WithContext(ctx).Select("status").Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if CanTransitionPost(post.Status, target) {
		return fmt.Errorf("%w: post changed concurrently", ErrInvalidTransition)
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, post.Status, target)
}

func (s *ShowcaseService) missReason(ctx context.Context, id uuid.UUID, excluded error) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.ShowcasePost{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrPostNotFound
	}
	return excluded
}

func toViews(posts []models.ShowcasePost, now time.Time) []PostView {
	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = NewPostView(p, now)
	}
	return views
}
