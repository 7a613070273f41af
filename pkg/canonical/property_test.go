package canonical

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestEncodingDeterminism verifies that encoding the same value twice yields
// identical bytes in both encodings.
// Property: Encode(v) == Encode(v) for any v
func TestEncodingDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("text and binary encodings are deterministic", prop.ForAll(
		func(keys []string, ints []int64, texts []string) bool {
			v := buildValue(keys, ints, texts)

			t1, err1 := EncodeText(v)
			t2, err2 := EncodeText(v)
			if err1 != nil || err2 != nil {
				return false
			}
			b1, err1 := EncodeBinary(v)
			b2, err2 := EncodeBinary(v)
			if err1 != nil || err2 != nil {
				return false
			}
			return bytes.Equal(t1, t2) && bytes.Equal(b1, b2)
		},
		gen.SliceOf(gen.AnyString()),
		gen.SliceOf(gen.Int64()),
		gen.SliceOf(gen.UnicodeString(unicode.Latin)),
	))

	properties.TestingRun(t)
}

// TestKeyOrderInvariance verifies that insertion order never leaks into the
// canonical form.
// Property: Encode(build(pairs)) == Encode(build(reverse(pairs)))
func TestKeyOrderInvariance(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("permuted construction canonicalizes identically", prop.ForAll(
		func(keys []string, values []int64) bool {
			n := len(keys)
			if len(values) < n {
				n = len(values)
			}

			// Parse both orders from JSON text so construction truly differs.
			seen := map[string]bool{}
			var forward, backward []string
			for i := 0; i < n; i++ {
				if seen[keys[i]] {
					continue
				}
				seen[keys[i]] = true
				member := fmt.Sprintf("%s:%d", quote(keys[i]), values[i])
				forward = append(forward, member)
				backward = append([]string{member}, backward...)
			}

			a, err := FromJSON([]byte("{" + strings.Join(forward, ",") + "}"))
			if err != nil {
				return false
			}
			b, err := FromJSON([]byte("{" + strings.Join(backward, ",") + "}"))
			if err != nil {
				return false
			}

			ta, _ := EncodeText(a)
			tb, _ := EncodeText(b)
			ba, _ := EncodeBinary(a)
			bb, _ := EncodeBinary(b)
			return bytes.Equal(ta, tb) && bytes.Equal(ba, bb)
		},
		gen.SliceOf(gen.UnicodeString(unicode.Latin)),
		gen.SliceOf(gen.Int64()),
	))

	properties.TestingRun(t)
}

// TestFloatRejection verifies that a float anywhere in a document fails the
// whole conversion.
// Property: FromJSON(doc containing a float) returns a TypeError and no value
func TestFloatRejection(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("floats at any depth are rejected", prop.ForAll(
		func(depth int, whole int64, frac uint16) bool {
			doc := fmt.Sprintf("%d.%d", whole, frac)
			for i := 0; i < depth; i++ {
				if i%2 == 0 {
					doc = fmt.Sprintf(`{"k%d":%s,"ok":1}`, i, doc)
				} else {
					doc = fmt.Sprintf(`["x",%s]`, doc)
				}
			}
			v, err := FromJSON([]byte(doc))
			te, ok := err.(*TypeError)
			return v == nil && ok && te.Code == ErrCodeFloat
		},
		gen.IntRange(0, 12),
		gen.Int64(),
		gen.UInt16(),
	))

	properties.TestingRun(t)
}

// TestTextOutputIsValidJSON verifies the text form parses back to the same
// canonical form.
// Property: EncodeText(FromJSON(EncodeText(v))) == EncodeText(v)
func TestTextOutputIsValidJSON(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("canonical text is a fixed point", prop.ForAll(
		func(keys []string, ints []int64, texts []string) bool {
			first, err := EncodeText(buildValue(keys, ints, texts))
			if err != nil {
				return false
			}
			reparsed, err := FromJSON(first)
			if err != nil {
				return false
			}
			second, err := EncodeText(reparsed)
			return err == nil && bytes.Equal(first, second)
		},
		gen.SliceOf(gen.UnicodeString(unicode.Latin)),
		gen.SliceOf(gen.Int64()),
		gen.SliceOf(gen.AnyString()),
	))

	properties.TestingRun(t)
}

// buildValue assembles a nested value from generated parts: a top-level
// mapping of keys to alternating ints, texts and a nested sequence.
func buildValue(keys []string, ints []int64, texts []string) Value {
	m := Map{}
	var seq Seq
	for i, k := range keys {
		if !validText(k) {
			continue
		}
		switch i % 3 {
		case 0:
			if i < len(ints) {
				m[k] = NewInt(ints[i])
				continue
			}
			m[k] = Null{}
		case 1:
			if i < len(texts) && validText(texts[i]) {
				m[k] = Text(texts[i])
				continue
			}
			m[k] = Bool(i%2 == 0)
		default:
			m[k] = Map{"inner": Seq{NewInt(int64(i)), Text(k)}}
		}
	}
	for _, n := range ints {
		seq = append(seq, NewInt(n))
	}
	m["\x00seq"] = seq
	return m
}

func validText(s string) bool {
	_, err := textValue(s, rootPath)
	return err == nil
}

func quote(s string) string {
	var buf bytes.Buffer
	writeString(&buf, s)
	return buf.String()
}
