package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestInstruments_RecordCanonicalization(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	in, err := NewInstruments(provider.Meter(InstrumentationName))
	require.NoError(t, err)

	ctx := context.Background()
	in.RecordCanonicalization(ctx, "text", time.Millisecond, nil)
	in.RecordCanonicalization(ctx, "binary", time.Millisecond, nil)
	in.RecordCanonicalization(ctx, "text", time.Millisecond, errors.New("boom"))
	in.RecordMismatch(ctx)

	got := collect(t, reader)
	assert.Equal(t, int64(3), sumOf(t, got["ledger.canonicalizations.total"]))
	assert.Equal(t, int64(1), sumOf(t, got["ledger.errors.total"]))
	assert.Equal(t, int64(1), sumOf(t, got["ledger.id_mismatches.total"]))

	hist, ok := got["ledger.canonicalization.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestInstruments_NilIsSafe(t *testing.T) {
	var in *Instruments
	assert.NotPanics(t, func() {
		in.RecordCanonicalization(context.Background(), "text", time.Second, nil)
		in.RecordMismatch(context.Background())
	})
}

func TestDefault_UsesGlobalMeter(t *testing.T) {
	in := Default()
	require.NotNil(t, in)
	assert.NotPanics(t, func() {
		in.RecordCanonicalization(context.Background(), "text", time.Second, nil)
	})
}
