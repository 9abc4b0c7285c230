package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordOperationResult("transfer", "success")
	c.RecordOperationResult("transfer", "success")
	c.RecordOperationResult("transfer", "replayed")
	c.RecordError("transfer", "INSUFFICIENT_FUNDS")
	c.RecordTransaction("DEBIT", 500)
	c.RecordTransaction("DEBIT", 250)
	c.RecordOperationDuration("transfer", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.results.WithLabelValues("transfer", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errors.WithLabelValues("transfer", "INSUFFICIENT_FUNDS")))
	assert.Equal(t, 750.0, testutil.ToFloat64(c.volume.WithLabelValues("DEBIT")))

	count, err := testutil.GatherAndCount(reg, "kosh_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
