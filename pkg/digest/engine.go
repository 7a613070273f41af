package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/flyingrobots/ledger-kernel/pkg/canonical"
	"github.com/flyingrobots/ledger-kernel/pkg/capability"
	"github.com/flyingrobots/ledger-kernel/pkg/entry"
	"github.com/flyingrobots/ledger-kernel/pkg/observability"
)

// Encoding selects the canonical byte form fed to the hash.
type Encoding string

const (
	// EncodingText is canonical JSON, the identifier's reference form.
	EncodingText Encoding = "text"
	// EncodingBinary is canonical CBOR, an auxiliary verification form.
	// Its digests never equal text digests.
	EncodingBinary Encoding = "binary"
)

// ParseEncoding maps a flag or configuration value onto an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "", "text", "json":
		return EncodingText, nil
	case "binary", "cbor":
		return EncodingBinary, nil
	}
	return "", fmt.Errorf("digest: unknown encoding %q (want text or binary)", s)
}

// Engine derives identifiers from entries. An Engine holds only immutable
// configuration and is safe for concurrent use.
type Engine struct {
	hasher      Hasher
	instruments *observability.Instruments
}

// Option configures an Engine.
type Option func(*Engine)

// WithHasher sets the hash capability. The default is Blake3.
func WithHasher(h Hasher) Option {
	return func(e *Engine) {
		if h != nil {
			e.hasher = h
		}
	}
}

// WithInstruments sets the metrics sink.
func WithInstruments(in *observability.Instruments) Option {
	return func(e *Engine) {
		e.instruments = in
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{hasher: Blake3()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Hasher returns the engine's hash capability.
func (e *Engine) Hasher() Hasher {
	return e.hasher
}

// Canonical returns the canonical bytes of the entry's preimage in the
// requested encoding.
func (e *Engine) Canonical(ent entry.Entry, enc Encoding) ([]byte, error) {
	start := time.Now()
	out, err := encode(ent.Preimage(), enc)
	e.instruments.RecordCanonicalization(context.Background(), string(enc), time.Since(start), err)
	return out, err
}

// ComputeID returns the entry's identifier: the BLAKE3 digest of the
// canonical text of its preimage.
func (e *Engine) ComputeID(ent entry.Entry) (string, error) {
	return e.ComputeIDWith(ent, EncodingText)
}

// ComputeIDWith digests the preimage in the given encoding. Only
// EncodingText yields the entry's identifier.
func (e *Engine) ComputeIDWith(ent entry.Entry, enc Encoding) (string, error) {
	start := time.Now()
	id, err := e.computeID(ent, enc)
	e.instruments.RecordCanonicalization(context.Background(), string(enc), time.Since(start), err)
	return id, err
}

func (e *Engine) computeID(ent entry.Entry, enc Encoding) (string, error) {
	// Check the capability first so a missing hash never costs an encode.
	if e.hasher == nil {
		return "", capability.Unavailable(capability.Hash, "no hasher configured")
	}
	if !Available(e.hasher) {
		_, err := e.hasher.Sum(nil)
		return "", err
	}
	data, err := encode(ent.Preimage(), enc)
	if err != nil {
		return "", err
	}
	return Digest(e.hasher, data)
}

func encode(v canonical.Value, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingText, "":
		return canonical.EncodeText(v)
	case EncodingBinary:
		return canonical.EncodeBinary(v)
	default:
		return nil, fmt.Errorf("digest: unknown encoding %q", enc)
	}
}

// MismatchError reports a claimed identifier that differs from the
// computed one. It is a diagnostic, not a failure of the computation.
type MismatchError struct {
	Claimed  string
	Computed string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("entry.id %s != computed id %s", e.Claimed, e.Computed)
}

// CheckResult is the outcome of Check.
type CheckResult struct {
	ComputedID   string
	SigningInput string
	// ClaimedID is empty when the entry carries no id. A non-text id is
	// held in its canonical text form.
	ClaimedID string
	// Mismatch is set when ClaimedID is present and differs from ComputedID.
	Mismatch *MismatchError
}

// Consistent reports whether the entry's claimed id, if any, matches.
func (r *CheckResult) Consistent() bool {
	return r.Mismatch == nil
}

// Check computes the entry's identifier and signing input and compares the
// identifier against the entry's claimed id. A mismatch is reported on the
// result; the error is reserved for failures to compute the id at all.
func (e *Engine) Check(ent entry.Entry) (*CheckResult, error) {
	id, err := e.ComputeID(ent)
	if err != nil {
		return nil, err
	}
	res := &CheckResult{
		ComputedID:   id,
		SigningInput: SigningInput(id),
	}
	if claimed, ok := ent.ClaimedID(); ok {
		res.ClaimedID = claimed
		if claimed != id {
			res.Mismatch = &MismatchError{Claimed: claimed, Computed: id}
			e.instruments.RecordMismatch(context.Background())
		}
	}
	return res, nil
}
