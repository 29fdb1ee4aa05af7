package services

import (
	"sort"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
)

// QueueItem pairs a report with its freshly computed assessment.
type QueueItem struct {
	models.Report
	Assessment RiskAssessment `json:"assessment"`
}

// BuildModerationQueue orders reports for the moderator panel. Pending
// reports come first, highest priority first and oldest first within a
// priority. Everything else follows, newest first.
func BuildModerationQueue(reports []models.Report, scorer *RiskScorer) []QueueItem {
	items := make([]QueueItem, len(reports))
	for i, r := range reports {
		items[i] = QueueItem{Report: r, Assessment: scorer.Assess(r.Body, r.Category)}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return queueLess(&items[i], &items[j])
	})
	return items
}

func queueLess(a, b *QueueItem) bool {
	aPending := a.Status == models.ReportPending
	bPending := b.Status == models.ReportPending

	switch {
	case aPending && bPending:
		if a.Assessment.Priority != b.Assessment.Priority {
			return a.Assessment.Priority > b.Assessment.Priority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	case aPending != bPending:
		return aPending
	default:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	}
}
