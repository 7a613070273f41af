// Package observability provides OpenTelemetry metrics for the ledger
// kernel.
//
// Instruments follow the RED pattern (Rate, Errors, Duration) around
// canonicalization and digest calls:
//
//	in, err := observability.NewInstruments(provider.Meter(observability.InstrumentationName))
//	engine := digest.New(digest.WithInstruments(in))
//
// Without an installed meter provider, Default returns instruments bound to
// the global no-op meter, so recording is always safe.
package observability
