// Package canonical defines the restricted value model used for ledger entry
// identity and its two deterministic encodings: canonical JSON text and
// canonical CBOR.
//
// The model admits null, booleans, arbitrary-precision integers, Unicode
// text, sequences and text-keyed mappings. There is no floating-point
// variant. Conversion from untyped documents fails with a *TypeError as soon
// as anything outside the model is found, and never returns a partial value.
package canonical

import (
	"math/big"
	"sort"
	"unicode/utf8"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindText
	KindSeq
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "integer"
	case KindText:
		return "text"
	case KindSeq:
		return "sequence"
	case KindMap:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is a canonical value. The set of implementations is closed: Null,
// Bool, Int, Text, Seq and Map.
type Value interface {
	Kind() Kind
	sealed()
}

// Null is the null value.
type Null struct{}

// Bool is a boolean value.
type Bool bool

// Text is a Unicode string value. It must hold valid UTF-8.
type Text string

// Seq is an ordered sequence of values.
type Seq []Value

// Map is a mapping from text keys to values. Go map keys are unique, so a
// Map can never carry duplicate keys; duplicates in source documents are
// rejected while parsing.
type Map map[string]Value

// Int is an arbitrary-precision integer value. The zero Int is 0.
type Int struct {
	v *big.Int
}

func (Null) Kind() Kind { return KindNull }
func (Bool) Kind() Kind { return KindBool }
func (Int) Kind() Kind  { return KindInt }
func (Text) Kind() Kind { return KindText }
func (Seq) Kind() Kind  { return KindSeq }
func (Map) Kind() Kind  { return KindMap }

func (Null) sealed() {}
func (Bool) sealed() {}
func (Int) sealed()  {}
func (Text) sealed() {}
func (Seq) sealed()  {}
func (Map) sealed()  {}

// NewInt returns an Int holding n.
func NewInt(n int64) Int {
	return Int{v: big.NewInt(n)}
}

// NewBigInt returns an Int holding a copy of n.
func NewBigInt(n *big.Int) Int {
	if n == nil {
		return Int{}
	}
	return Int{v: new(big.Int).Set(n)}
}

// ParseInt parses a base-10 integer literal. It accepts an optional leading
// minus sign and rejects everything else that is not a digit.
func ParseInt(s string) (Int, bool) {
	if s == "" {
		return Int{}, false
	}
	digits := s
	if digits[0] == '-' {
		digits = digits[1:]
	}
	if digits == "" {
		return Int{}, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Int{}, false
		}
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int{}, false
	}
	return Int{v: n}, true
}

// Big returns a copy of the integer.
func (i Int) Big() *big.Int {
	if i.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(i.v)
}

// Int64 returns the integer as an int64 and whether it fits.
func (i Int) Int64() (int64, bool) {
	if i.v == nil {
		return 0, true
	}
	if !i.v.IsInt64() {
		return 0, false
	}
	return i.v.Int64(), true
}

// String returns the canonical decimal form: no leading zeros, no plus sign.
func (i Int) String() string {
	if i.v == nil {
		return "0"
	}
	return i.v.String()
}

// CompareKeys orders two mapping keys by Unicode code point. It decodes
// each string rune by rune so the ordering never depends on collation or on
// the byte layout of the encoding.
func CompareKeys(a, b string) int {
	for a != "" && b != "" {
		ra, na := utf8.DecodeRuneInString(a)
		rb, nb := utf8.DecodeRuneInString(b)
		if ra != rb {
			if ra < rb {
				return -1
			}
			return 1
		}
		a, b = a[na:], b[nb:]
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// SortedKeys returns the keys of m in ascending code-point order.
func (m Map) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func sortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		return CompareKeys(keys[i], keys[j]) < 0
	})
}

// Get returns the value stored under key.
func (m Map) Get(key string) (Value, bool) {
	v, ok := m[key]
	return v, ok
}

// Clone returns a shallow copy of m.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Without returns a shallow copy of m with key removed. m is left untouched.
// Removing an absent key yields an equal copy.
func (m Map) Without(key string) Map {
	out := make(Map, len(m))
	for k, v := range m {
		if k == key {
			continue
		}
		out[k] = v
	}
	return out
}
