package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveAllocation(true, -3)
	m.ObserveAllocation(false, 0)
	m.ObserveAllocation(false, 1)
	m.ObserveExtraction(nil, 4, 200*time.Millisecond)
	m.ObserveExtraction(errors.New("boom"), 0, time.Second)
	m.ObserveEvent("split.saved", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.allocations.WithLabelValues("true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.allocations.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractions.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractions.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("split.saved", "ok")))

	count, err := testutil.GatherAndCount(reg, "receiptsplit_reconcile_cents")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAllocation(true, 1)
		m.ObserveExtraction(nil, 1, time.Millisecond)
		m.ObserveEvent("split.saved", nil)
	})
}
