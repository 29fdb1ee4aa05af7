package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

const (
	maxReportLength      = 2000
	maxFingerprintLength = 128

	// DefaultQueueWindow caps how many reports are scored in memory per
	// listing. Risk is not stored, so pending reports cannot be paged in SQL.
	DefaultQueueWindow = 500
)

// QueueFilter narrows the moderation queue. Zero values mean "any".
type QueueFilter struct {
	Status      models.ReportStatus
	Category    models.ReportCategory
	MinPriority int
	Limit       int
	Offset      int
}

// BulkResult is the outcome of one item of a bulk operation.
type BulkResult struct {
	ID    uuid.UUID `json:"id"`
	OK    bool      `json:"ok"`
	Error string    `json:"error,omitempty"`
}

type ReportService struct {
	db          *gorm.DB
	clock       clockwork.Clock
	scorer      *RiskScorer
	metrics     observability.MetricsRegistry
	queueWindow int
}

func NewReportService(db *gorm.DB, clock clockwork.Clock, scorer *RiskScorer, metrics observability.MetricsRegistry) *ReportService {
	return &ReportService{
		db:          db,
		clock:       clock,
		scorer:      scorer,
		metrics:     metrics,
		queueWindow: DefaultQueueWindow,
	}
}

// Submit stores a new report. Reports always start pending.
func (s *ReportService) Submit(ctx context.Context, body string, category models.ReportCategory, fingerprint string) (*models.Report, error) {
	body = strings.TrimSpace(body)
	fingerprint = strings.TrimSpace(fingerprint)

	if body == "" {
		return nil, NewValidationError("body is required")
	}
	if utf8.RuneCountInString(body) > maxReportLength {
		return nil, NewValidationError(fmt.Sprintf("body must be at most %d characters", maxReportLength))
	}
	if !category.Valid() {
		return nil, NewValidationError(fmt.Sprintf("invalid category %q", category))
	}
	if fingerprint == "" || len(fingerprint) > maxFingerprintLength {
		return nil, NewValidationError("fingerprint is required")
	}

	now := s.clock.Now().UTC()
	report := models.Report{
		ID:          uuid.New(),
		Body:        body,
		Category:    category,
		Status:      models.ReportPending,
		Fingerprint: fingerprint,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.metrics.IncrementReportsSubmitted(string(category))
	s.metrics.IncrementRiskLevel(string(s.scorer.Assess(report.Body, report.Category).Level))
	return &report, nil
}

// Get returns a report together with its current assessment.
func (s *ReportService) Get(ctx context.Context, id uuid.UUID) (*QueueItem, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &QueueItem{Report: report, Assessment: s.scorer.Assess(report.Body, report.Category)}, nil
}

// ListModerationQueue returns one page of the moderation queue. Pending
// reports are ranked in memory over the newest queueWindow of them. Decided
// reports follow in creation order, so they page in SQL unless a minimum
// priority forces scoring; then they are windowed the same way.
func (s *ReportService) ListModerationQueue(ctx context.Context, filter QueueFilter) ([]QueueItem, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, NewValidationError(fmt.Sprintf("invalid status %q", filter.Status))
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, 0, NewValidationError(fmt.Sprintf("invalid category %q", filter.Category))
	}
	limit, offset := filter.Limit, filter.Offset
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var pending []QueueItem
	if filter.Status == "" || filter.Status == models.ReportPending {
		var err error
		pending, err = s.scoredWindow(ctx, filter, func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", models.ReportPending)
		})
		if err != nil {
			return nil, 0, err
		}
		if filter.Status == models.ReportPending {
			return pageSlice(pending, limit, offset), len(pending), nil
		}
	}

	decided := func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			return db.Where("status = ?", filter.Status)
		}
		return db.Where("status <> ?", models.ReportPending)
	}

	if filter.MinPriority > 1 {
		rest, err := s.scoredWindow(ctx, filter, decided)
		if err != nil {
			return nil, 0, err
		}
		queue := append(pending, rest...)
		return pageSlice(queue, limit, offset), len(queue), nil
	}

	var decidedTotal int64
	if err := s.db.WithContext(ctx).Model(&models.Report{}).
		Scopes(decided, reportCategoryIs(filter.Category)).
		Count(&decidedTotal).Error; err != nil {
		return nil, 0, err
	}

	page := pageSlice(pending, limit, offset)
	decidedOffset := 0
	if offset > len(pending) {
		decidedOffset = offset - len(pending)
	}
	if want := limit - len(page); want > 0 && decidedTotal > 0 {
		var reports []models.Report
		if err := s.db.WithContext(ctx).
			Scopes(decided, reportCategoryIs(filter.Category)).
			Order("created_at DESC, id ASC").
			Offset(decidedOffset).
			Limit(want).
			Find(&reports).Error; err != nil {
			return nil, 0, err
		}
		for _, r := range reports {
			page = append(page, QueueItem{Report: r, Assessment: s.scorer.Assess(r.Body, r.Category)})
		}
	}

	return page, len(pending) + int(decidedTotal), nil
}

// scoredWindow scores the newest queueWindow reports matching scope and the
// filter category, orders them and drops those under the minimum priority.
func (s *ReportService) scoredWindow(ctx context.Context, filter QueueFilter, scope func(*gorm.DB) *gorm.DB) ([]QueueItem, error) {
	var reports []models.Report
	if err := s.db.WithContext(ctx).
		Scopes(scope, reportCategoryIs(filter.Category)).
		Order("created_at DESC, id ASC").
		Limit(s.queueWindow).
		Find(&reports).Error; err != nil {
		return nil, err
	}

	queue := BuildModerationQueue(reports, s.scorer)
	if filter.MinPriority > 1 {
		kept := queue[:0]
		for _, item := range queue {
			if item.Assessment.Priority >= filter.MinPriority {
				kept = append(kept, item)
			}
		}
		queue = kept
	}
	return queue, nil
}

// ListApproved returns the public feed, newest first.
func (s *ReportService) ListApproved(ctx context.Context, category models.ReportCategory, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Report{}).
		Scopes(reportStatusIs(models.ReportApproved), reportCategoryIs(category))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Scopes(paginate(limit, offset)).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// ListBySubmitter returns the reports created from one fingerprint.
func (s *ReportService) ListBySubmitter(ctx context.Context, fingerprint string) ([]models.Report, error) {
	if strings.TrimSpace(fingerprint) == "" {
		return nil, NewValidationError("fingerprint is required")
	}
	var reports []models.Report
	err := s.db.WithContext(ctx).
		Where("fingerprint = ?", fingerprint).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

// SetStatus applies one moderator transition as a single conditional update.
func (s *ReportService) SetStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus, note string) error {
	sources, err := reportSourceStates(status)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"status":     status,
		"updated_at": s.clock.Now().UTC(),
	}
	if note = strings.TrimSpace(note); note != "" {
		updates["admin_note"] = note
	}

	result := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND status IN ?", id, sources).
		Updates(updates)
	if result.Error != nil {
		s.metrics.IncrementModerationAction("report", string(status), "error")
		return fmt.Errorf("failed to update report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		s.metrics.IncrementModerationAction("report", string(status), "refused")
		return s.transitionRefusal(ctx, id, status)
	}

	s.metrics.IncrementModerationAction("report", string(status), "ok")
	return nil
}

// BulkSetStatus applies SetStatus to each id independently.
func (s *ReportService) BulkSetStatus(ctx context.Context, ids []uuid.UUID, status models.ReportStatus, note string) []BulkResult {
	return applyEach(ids, func(id uuid.UUID) error {
		return s.SetStatus(ctx, id, status, note)
	})
}

// DeleteAsModerator removes a report in any state.
func (s *ReportService) DeleteAsModerator(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Report{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReportNotFound
	}
	s.metrics.IncrementModerationAction("report", "delete", "ok")
	return nil
}

// DeleteAsSubmitter removes a report only when the fingerprint matches the
// one it was submitted with.
func (s *ReportService) DeleteAsSubmitter(ctx context.Context, id uuid.UUID, fingerprint string) error {
	if strings.TrimSpace(fingerprint) == "" {
		return ErrForbidden
	}
	result := s.db.WithContext(ctx).
		Where("id = ? AND fingerprint = ?", id, fingerprint).
		Delete(&models.Report{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return s.missReason(ctx, id, ErrForbidden)
	}
	s.metrics.IncrementModerationAction("report", "owner_delete", "ok")
	return nil
}

// BulkDelete deletes each id independently.
func (s *ReportService) BulkDelete(ctx context.Context, ids []uuid.UUID) []BulkResult {
	return applyEach(ids, func(id uuid.UUID) error {
		return s.DeleteAsModerator(ctx, id)
	})
}

// transitionRefusal explains why a status update matched no row.
func (s *ReportService) transitionRefusal(ctx context.Context, id uuid.UUID, target models.ReportStatus) error {
	var report models.Report
	if err := s.db.WithContext(ctx).Select("status").Where("id = ?", id).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReportNotFound
		}
		return err
	}
	if CanTransitionReport(report.Status, target) {
		return fmt.Errorf("%w: report changed concurrently", ErrInvalidTransition)
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, report.Status, target)
}

// missReason tells a missing row apart from a row the condition excluded.
func (s *ReportService) missReason(ctx context.Context, id uuid.UUID, excluded error) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrReportNotFound
	}
	return excluded
}

func applyEach(ids []uuid.UUID, fn func(uuid.UUID) error) []BulkResult {
	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		res := BulkResult{ID: id, OK: true}
		if err := fn(id); err != nil {
			res.OK = false
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

func pageSlice[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
