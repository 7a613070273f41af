package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName is the meter name used by the kernel.
const InstrumentationName = "ledger-kernel"

// Attribute keys.
const (
	AttrEncoding  = "ledger.encoding"
	AttrResult    = "ledger.result"
	AttrErrorType = "error.type"
)

// Instruments holds the RED (Rate, Errors, Duration) metrics for
// canonicalization and digest calls, plus a mismatch counter for identifier
// cross-checks. A nil *Instruments records nothing.
type Instruments struct {
	canonicalizations metric.Int64Counter
	errors            metric.Int64Counter
	duration          metric.Float64Histogram
	mismatches        metric.Int64Counter
}

// NewInstruments creates the kernel instruments on meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	var (
		in  Instruments
		err error
	)

	// Rate
	in.canonicalizations, err = meter.Int64Counter("ledger.canonicalizations.total",
		metric.WithDescription("Total number of entry canonicalizations"),
		metric.WithUnit("{canonicalization}"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: canonicalization counter: %w", err)
	}

	// Errors
	in.errors, err = meter.Int64Counter("ledger.errors.total",
		metric.WithDescription("Total number of failed canonicalizations or digests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: error counter: %w", err)
	}

	// Duration
	in.duration, err = meter.Float64Histogram("ledger.canonicalization.duration",
		metric.WithDescription("Canonicalization and digest duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: duration histogram: %w", err)
	}

	in.mismatches, err = meter.Int64Counter("ledger.id_mismatches.total",
		metric.WithDescription("Claimed identifiers that differ from the computed identifier"),
		metric.WithUnit("{mismatch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: mismatch counter: %w", err)
	}

	return &in, nil
}

// Default returns instruments on the global meter provider. Until a provider
// is installed with otel.SetMeterProvider the global meter is a no-op.
func Default() *Instruments {
	in, err := NewInstruments(otel.Meter(InstrumentationName))
	if err != nil {
		return nil
	}
	return in
}

// RecordCanonicalization records one canonicalization of the given encoding.
func (in *Instruments) RecordCanonicalization(ctx context.Context, encoding string, duration time.Duration, err error) {
	if in == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String(AttrEncoding, encoding),
		attribute.String(AttrResult, result),
	)
	in.canonicalizations.Add(ctx, 1, attrs)
	in.duration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		in.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String(AttrEncoding, encoding),
			attribute.String(AttrErrorType, fmt.Sprintf("%T", err)),
		))
	}
}

// RecordMismatch records a claimed identifier that failed the cross-check.
func (in *Instruments) RecordMismatch(ctx context.Context) {
	if in == nil {
		return
	}
	in.mismatches.Add(ctx, 1)
}
