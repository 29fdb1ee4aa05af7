package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// reports submitted, by category
	ReportsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bairro_reports_submitted_total",
			Help: "Total community reports submitted",
		},
		[]string{"category"},
	)

	// risk level assigned at submission time
	ReportRiskLevels = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bairro_report_risk_level_total",
			Help: "Risk level of submitted reports",
		},
		[]string{"level"},
	)

	// showcase submissions by path (free or paid)
	ShowcaseSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bairro_showcase_submissions_total",
			Help: "Showcase submissions by payment path",
		},
		[]string{"path"},
	)

	// moderator and owner actions by entity, action and outcome
	ModerationActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bairro_moderation_actions_total",
			Help: "State-changing actions on reports and posts",
		},
		[]string{"entity", "action", "outcome"},
	)

	// payment webhook events by type and outcome
	PaymentEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bairro_payment_events_total",
			Help: "Payment processor notifications handled",
		},
		[]string{"type", "outcome"},
	)

	// submissions rejected by the throttle
	ThrottleHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bairro_throttle_hits_total",
			Help: "Requests rejected by the submission throttle",
		},
		[]string{"scope"},
	)
)

func init() {
	prometheus.MustRegister(
		ReportsSubmitted,
		ReportRiskLevels,
		ShowcaseSubmissions,
		ModerationActions,
		PaymentEvents,
		ThrottleHits,
	)
}
