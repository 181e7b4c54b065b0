package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRunRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("mail:send").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("mail:send").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("mail:send", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("mail:send", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("mail:send")))
	assert.Greater(t, testutil.ToFloat64(m.lastSuccess.WithLabelValues("mail:send")), 0.0)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NoError(t, m.Track("x").End(nil))
	m.AddDeliveries("sent", 3)
}

func TestAddDeliveries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.AddDeliveries("sent", 2)
	m.AddDeliveries("failed", 0)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.deliveries.WithLabelValues("sent")))

	count, err := testutil.GatherAndCount(reg, "odyssey_mail_deliveries_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}
