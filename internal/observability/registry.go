package observability

// MetricsRegistry is injected into services so tests can run without the
// global Prometheus collectors.
type MetricsRegistry interface {
	IncrementReportsSubmitted(category string)
	IncrementRiskLevel(level string)
	IncrementShowcaseSubmissions(path string)
	IncrementModerationAction(entity, action, outcome string)
	IncrementPaymentEvent(eventType, outcome string)
	IncrementThrottleHits(scope string)
}

// PrometheusRegistry records into the package-level collectors.
type PrometheusRegistry struct{}

func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

func (r *PrometheusRegistry) IncrementReportsSubmitted(category string) {
	ReportsSubmitted.WithLabelValues(category).Inc()
}

func (r *PrometheusRegistry) IncrementRiskLevel(level string) {
	ReportRiskLevels.WithLabelValues(level).Inc()
}

func (r *PrometheusRegistry) IncrementShowcaseSubmissions(path string) {
	ShowcaseSubmissions.WithLabelValues(path).Inc()
}

func (r *PrometheusRegistry) IncrementModerationAction(entity, action, outcome string) {
	ModerationActions.WithLabelValues(entity, action, outcome).Inc()
}

func (r *PrometheusRegistry) IncrementPaymentEvent(eventType, outcome string) {
	PaymentEvents.WithLabelValues(eventType, outcome).Inc()
}

func (r *PrometheusRegistry) IncrementThrottleHits(scope string) {
	ThrottleHits.WithLabelValues(scope).Inc()
}

// NoOpRegistry discards everything.
type NoOpRegistry struct{}

func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementReportsSubmitted(string) {}
func (r *NoOpRegistry) IncrementRiskLevel(string) {}
func (r *NoOpRegistry) IncrementShowcaseSubmissions(string) {}
func (r *NoOpRegistry) IncrementModerationAction(string, string, string) {}
func (r *NoOpRegistry) IncrementPaymentEvent(string, string) {}
func (r *NoOpRegistry) IncrementThrottleHits(string) {}
