// Package entry models ledger entries and derives their identity preimage.
//
// An entry is a canonical mapping with two reserved fields: "attestations",
// which never contributes to identity, and "id", an optional previously
// computed identifier kept for cross-checks. Preimage is the single place
// where attestations are dropped, so every encoder that feeds a digest sees
// the same content.
package entry

import (
	"github.com/flyingrobots/ledger-kernel/pkg/canonical"
)

// Reserved field names.
const (
	FieldAttestations = "attestations"
	FieldID           = "id"
)

// Entry is a ledger entry. It is never mutated by this package.
type Entry struct {
	fields canonical.Map
}

// Parse reads a JSON document as an entry. The document must be a JSON
// object and must satisfy the canonical value model.
func Parse(data []byte) (Entry, error) {
	v, err := canonical.FromJSON(data)
	if err != nil {
		return Entry{}, err
	}
	return FromValue(v)
}

// FromValue wraps a canonical value as an entry.
func FromValue(v canonical.Value) (Entry, error) {
	m, ok := v.(canonical.Map)
	if !ok {
		kind := "missing value"
		if v != nil {
			kind = v.Kind().String()
		}
		return Entry{}, &canonical.TypeError{
			Code:    canonical.ErrCodeNotMapping,
			Path:    "$",
			Message: "ledger entry must be a mapping, got " + kind,
		}
	}
	return Entry{fields: m.Clone()}, nil
}

// FromAny converts an untyped Go document into an entry.
func FromAny(doc any) (Entry, error) {
	v, err := canonical.FromAny(doc)
	if err != nil {
		return Entry{}, err
	}
	return FromValue(v)
}

// Fields returns the entry's full mapping, attestations included. The
// returned map is a copy.
func (e Entry) Fields() canonical.Map {
	return e.fields.Clone()
}

// Preimage returns the entry's identity content: a new mapping equal to the
// entry minus its attestations. When the entry has no attestations the
// result is an equal copy.
func (e Entry) Preimage() canonical.Map {
	return e.fields.Without(FieldAttestations)
}

// Attestations returns the attestations payload, if any.
func (e Entry) Attestations() (canonical.Value, bool) {
	return e.fields.Get(FieldAttestations)
}

// ClaimedID returns the identifier the entry claims for itself. Any id
// other than null, false, 0, the empty text, an empty sequence or an empty
// mapping is a claim. A claim that is not text is returned in its canonical
// text form, which never equals a hex digest.
func (e Entry) ClaimedID() (string, bool) {
	v, ok := e.fields.Get(FieldID)
	if !ok || isEmptyClaim(v) {
		return "", false
	}
	if id, ok := v.(canonical.Text); ok {
		return string(id), true
	}
	out, err := canonical.EncodeTextString(v)
	if err != nil {
		return v.Kind().String(), true
	}
	return out, true
}

func isEmptyClaim(v canonical.Value) bool {
	switch t := v.(type) {
	case nil, canonical.Null:
		return true
	case canonical.Bool:
		return !bool(t)
	case canonical.Int:
		return t.Big().Sign() == 0
	case canonical.Text:
		return t == ""
	case canonical.Seq:
		return len(t) == 0
	case canonical.Map:
		return len(t) == 0
	}
	return false
}
