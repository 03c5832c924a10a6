package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enosefelix/job-finder-sub000/internal/config"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordTransition("PENDING", "APPROVED")
	m.RecordTransition("PENDING", "APPROVED")
	m.RecordDeletion("ok")
	m.RecordBlobDeletions(3, 1)
	m.RecordSuspension()
	m.RecordRequest("/job-listings/:id", "GET", 200, 5*time.Millisecond)
	m.RecordError("/job-listings/:id", "GET", "NOT_FOUND")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("PENDING", "APPROVED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deletions.WithLabelValues("ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.blobDeletions.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.blobDeletions.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.suspensions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/job-listings/:id", "GET", "NOT_FOUND")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordTransition("a", "b")
		m.RecordDeletion("ok")
		m.RecordBlobDeletions(1, 1)
		m.RecordSuspension()
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
	})
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "DEBUG"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	logger, err = NewLogger(config.LoggerConfig{Level: "bogus"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
}
