package canonical

import (
	"fmt"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"
)

// encMode is canonical CBOR (RFC 7049 §3.9): sorted map keys, shortest
// integer and length encoding, no indefinite-length items. Integers outside
// the 64-bit range become bignums (tags 2 and 3).
//
// Every mapping key in the model is a text string, so the length-first key
// order of this mode coincides with the bytewise order of RFC 8949 core
// deterministic encoding; both yield the same bytes for any Value.
var encMode cbor.EncMode

func init() {
	opts := cbor.CanonicalEncOptions()
	opts.BigIntConvert = cbor.BigIntConvertShortest
	opts.IndefLength = cbor.IndefLengthForbidden

	var err error
	encMode, err = opts.EncMode()
	if err != nil {
		panic("canonical: CBOR encoder initialization failed: " + err.Error())
	}
}

// EncodeBinary renders v as canonical CBOR. The returned slice is freshly
// allocated; on error nothing is returned.
func EncodeBinary(v Value) ([]byte, error) {
	native, err := toNative(v, rootPath)
	if err != nil {
		return nil, err
	}
	out, err := encMode.Marshal(native)
	if err != nil {
		return nil, fmt.Errorf("canonical: CBOR encoding failed: %w", err)
	}
	return out, nil
}

// toNative lowers a Value into the Go types the CBOR encoder understands.
// Each variant maps to exactly one CBOR major type.
func toNative(v Value, path string) (any, error) {
	switch t := v.(type) {
	case Null:
		return nil, nil
	case Bool:
		return bool(t), nil
	case Int:
		return t.Big(), nil
	case Text:
		if !utf8.ValidString(string(t)) {
			return nil, typeErrorf(ErrCodeInvalidUTF8, path, "text is not valid UTF-8")
		}
		return string(t), nil
	case Seq:
		out := make([]any, len(t))
		for i, elem := range t {
			n, err := toNative(elem, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case Map:
		out := make(map[string]any, len(t))
		for _, k := range t.SortedKeys() {
			elem := t[k]
			if !utf8.ValidString(k) {
				return nil, typeErrorf(ErrCodeInvalidUTF8, path, "mapping key is not valid UTF-8")
			}
			n, err := toNative(elem, childPath(path, k))
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case nil:
		return nil, typeErrorf(ErrCodeUnsupported, path, "missing value")
	default:
		return nil, typeErrorf(ErrCodeUnsupported, path, "unsupported value %T", v)
	}
}
