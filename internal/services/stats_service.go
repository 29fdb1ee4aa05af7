package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// DashboardStats are the counters shown on the moderation panel header.
type DashboardStats struct {
	Reports     map[models.ReportStatus]int64  `json:"reports"`
	PendingRisk map[RiskLevel]int64            `json:"pending_risk"`
	Posts       map[models.PostStatus]int64    `json:"posts"`
	Active      int64                          `json:"active_posts"`
	Expired     int64                          `json:"expired_posts"`
	Paid        int64                          `json:"paid_posts"`
	Payments    map[models.PaymentStatus]int64 `json:"payments"`
}

type StatsService struct {
	db         *gorm.DB
	clock      clockwork.Clock
	scorer     *RiskScorer
	riskWindow int
}

func NewStatsService(db *gorm.DB, clock clockwork.Clock, scorer *RiskScorer) *StatsService {
	return &StatsService{db: db, clock: clock, scorer: scorer, riskWindow: DefaultQueueWindow}
}

type statusCount struct {
	Status string
	Count  int64
}

func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		Reports:     map[models.ReportStatus]int64{},
		PendingRisk: map[RiskLevel]int64{RiskLow: 0, RiskMedium: 0, RiskHigh: 0},
		Posts:       map[models.PostStatus]int64{},
		Payments:    map[models.PaymentStatus]int64{},
	}
	now := s.clock.Now().UTC()

	rows, err := s.countByStatus(ctx, &models.Report{})
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.Reports[models.ReportStatus(r.Status)] = r.Count
	}

	if rows, err = s.countByStatus(ctx, &models.ShowcasePost{}); err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.Posts[models.PostStatus(r.Status)] = r.Count
	}

	if rows, err = s.countByStatus(ctx, &models.PaymentIntent{}); err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.Payments[models.PaymentStatus(r.Status)] = r.Count
	}

	posts := s.db.WithContext(ctx).Model(&models.ShowcasePost{})
	if err := posts.Session(&gorm.Session{}).Scopes(activeAt(now)).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	if err := posts.Session(&gorm.Session{}).
		Where("status = ? AND expires_at <= ?", models.PostApproved, now).
		Count(&stats.Expired).Error; err != nil {
		return nil, err
	}
	if err := posts.Session(&gorm.Session{}).Where("paid = ?", true).Count(&stats.Paid).Error; err != nil {
		return nil, err
	}

	// Risk is never stored, so the newest pending reports are scored on read.
	var pending []models.Report
	if err := s.db.WithContext(ctx).
		Select("body", "category").
		Where("status = ?", models.ReportPending).
		Order("created_at DESC").
		Limit(s.riskWindow).
		Find(&pending).Error; err != nil {
		return nil, err
	}
	for _, r := range pending {
		stats.PendingRisk[s.scorer.Assess(r.Body, r.Category).Level]++
	}
	return stats, nil
}

func (s *StatsService) countByStatus(ctx context.Context, model interface{}) ([]statusCount, error) {
	var rows []statusCount
	err := s.db.WithContext(ctx).Model(model).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}
