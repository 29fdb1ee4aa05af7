package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusRegistry_Increments(t *testing.T) {
	r := NewPrometheusRegistry()

	before := testutil.ToFloat64(PaymentEvents.WithLabelValues("completed", "duplicate"))
	r.IncrementPaymentEvent("completed", "duplicate")
	r.IncrementPaymentEvent("completed", "duplicate")
	assert.Equal(t, before+2, testutil.ToFloat64(PaymentEvents.WithLabelValues("completed", "duplicate")))

	before = testutil.ToFloat64(ThrottleHits.WithLabelValues("reports"))
	r.IncrementThrottleHits("reports")
	assert.Equal(t, before+1, testutil.ToFloat64(ThrottleHits.WithLabelValues("reports")))

	before = testutil.ToFloat64(ModerationActions.WithLabelValues("post", "repost", "ok"))
	r.IncrementModerationAction("post", "repost", "ok")
	assert.Equal(t, before+1, testutil.ToFloat64(ModerationActions.WithLabelValues("post", "repost", "ok")))
}

func TestNoOpRegistry_SatisfiesInterface(t *testing.T) {
	var r MetricsRegistry = NewNoOpRegistry()
	assert.NotPanics(t, func() {
		r.IncrementReportsSubmitted("outros")
		r.IncrementRiskLevel("alto")
		r.IncrementShowcaseSubmissions("free")
	})
}
