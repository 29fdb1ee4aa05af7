package services

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(body string, cat models.ReportCategory, status models.ReportStatus, createdAt time.Time) models.Report {
	return models.Report{
		ID:        uuid.New(),
		Body:      body,
		Category:  cat,
		Status:    status,
		CreatedAt: createdAt,
	}
}

func TestBuildModerationQueue_Order(t *testing.T) {
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	lowOld := report("lâmpada queimada na rua das flores desde semana passada", models.CategoryIluminacao, models.ReportPending, base)
	lowNew := report("lâmpada queimada na rua das palmeiras faz dois dias", models.CategoryIluminacao, models.ReportPending, base.Add(time.Hour))
	high := report("ASSALTO NA RUA AGORA!!!", models.CategorySeguranca, models.ReportPending, base.Add(2*time.Hour))
	approvedOld := report("ASSALTO NA PRAÇA ONTEM!!!", models.CategorySeguranca, models.ReportApproved, base.Add(-time.Hour))
	rejectedNew := report("buraco na calçada em frente à padaria", models.CategoryInfraestrutura, models.ReportRejected, base.Add(3*time.Hour))

	queue := BuildModerationQueue([]models.Report{lowNew, approvedOld, lowOld, rejectedNew, high}, NewRiskScorer())
	require.Len(t, queue, 5)

	ids := make([]uuid.UUID, len(queue))
	for i, item := range queue {
		ids[i] = item.ID
	}
	assert.Equal(t, []uuid.UUID{high.ID, lowOld.ID, lowNew.ID, rejectedNew.ID, approvedOld.ID}, ids)
	assert.Equal(t, 3, queue[0].Assessment.Priority)
}

func TestBuildModerationQueue_StableForEqualKeys(t *testing.T) {
	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	a := report("lâmpada queimada na rua das flores desde semana passada", models.CategoryIluminacao, models.ReportPending, at)
	b := report("lâmpada queimada na rua das flores desde semana passada", models.CategoryIluminacao, models.ReportPending, at)

	first := BuildModerationQueue([]models.Report{a, b}, NewRiskScorer())
	second := BuildModerationQueue([]models.Report{b, a}, NewRiskScorer())

	assert.Equal(t, first[0].ID, second[0].ID, "ties are broken by id, not input order")
}

func TestBuildModerationQueue_Empty(t *testing.T) {
	assert.Empty(t, BuildModerationQueue(nil, NewRiskScorer()))
}
