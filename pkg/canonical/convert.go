package canonical

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

const rootPath = "$"

// FromJSON parses a single JSON document directly into a Value.
//
// Unlike encoding/json into interface{}, it keeps integers exact, rejects
// any number written with a fraction or exponent (1.0 included), rejects
// duplicate object keys and rejects trailing data after the document.
func FromJSON(data []byte) (Value, error) {
	if !utf8.Valid(data) {
		return nil, typeErrorf(ErrCodeInvalidUTF8, "", "document is not valid UTF-8")
	}
	// encoding/json maps a lone surrogate escape to U+FFFD, which would
	// give two distinct documents the same canonical form.
	if hasUnpairedSurrogate(data) {
		return nil, typeErrorf(ErrCodeInvalidUTF8, "", "document contains an unpaired surrogate escape")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, syntaxError(rootPath, err)
	}
	v, err := parseValue(dec, tok, rootPath)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, typeErrorf(ErrCodeTrailingData, "", "unexpected data after top-level value")
	}
	return v, nil
}

func parseValue(dec *json.Decoder, tok json.Token, path string) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return Text(t), nil
	case json.Number:
		return parseNumber(string(t), path)
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec, path)
		case '[':
			return parseArray(dec, path)
		}
		return nil, typeErrorf(ErrCodeSyntax, path, "unexpected delimiter %q", t)
	default:
		return nil, typeErrorf(ErrCodeUnsupported, path, "unsupported token %T", tok)
	}
}

func parseObject(dec *json.Decoder, path string) (Value, error) {
	m := Map{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, syntaxError(path, err)
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return m, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, typeErrorf(ErrCodeNonStringKey, path, "object key must be a string, got %T", tok)
		}
		if _, dup := m[key]; dup {
			return nil, typeErrorf(ErrCodeDuplicateKey, path, "duplicate key %q", key)
		}
		vtok, err := dec.Token()
		if err != nil {
			return nil, syntaxError(childPath(path, key), err)
		}
		v, err := parseValue(dec, vtok, childPath(path, key))
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
}

func parseArray(dec *json.Decoder, path string) (Value, error) {
	seq := Seq{}
	for i := 0; ; i++ {
		tok, err := dec.Token()
		if err != nil {
			return nil, syntaxError(indexPath(path, i), err)
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			return seq, nil
		}
		v, err := parseValue(dec, tok, indexPath(path, i))
		if err != nil {
			return nil, err
		}
		seq = append(seq, v)
	}
}

func parseNumber(lit, path string) (Value, error) {
	if strings.ContainsAny(lit, ".eE") {
		return nil, typeErrorf(ErrCodeFloat, path,
			"floats are forbidden in canonical positions; encode %s as a string", lit)
	}
	n, ok := ParseInt(lit)
	if !ok {
		return nil, typeErrorf(ErrCodeInvalidInteger, path, "invalid integer literal %q", lit)
	}
	return n, nil
}

// hasUnpairedSurrogate reports whether data holds a \u escape in the
// surrogate range that is not a high surrogate followed by a low one.
// Backslashes only occur inside strings in well-formed JSON.
func hasUnpairedSurrogate(data []byte) bool {
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' {
			continue
		}
		r, ok := unicodeEscape(data, i)
		if !ok {
			i++
			continue
		}
		i += 5
		switch {
		case r >= 0xDC00 && r <= 0xDFFF:
			return true
		case r >= 0xD800 && r <= 0xDBFF:
			lo, ok := unicodeEscape(data, i+1)
			if !ok || lo < 0xDC00 || lo > 0xDFFF {
				return true
			}
			i += 6
		}
	}
	return false
}

// unicodeEscape decodes a \uXXXX escape starting at data[at].
func unicodeEscape(data []byte, at int) (rune, bool) {
	if at+6 > len(data) || data[at] != '\\' || data[at+1] != 'u' {
		return 0, false
	}
	n, err := strconv.ParseUint(string(data[at+2:at+6]), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}

func syntaxError(path string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &TypeError{Code: ErrCodeSyntax, Path: path, Message: "malformed JSON: " + err.Error(), Err: err}
}

// FromAny converts an untyped Go document into a Value.
//
// Accepted inputs are nil, bool, string, json.Number, the Go integer kinds,
// big.Int, maps with string keys, slices and arrays of accepted inputs, and
// Values themselves. float32 and float64 are always rejected, even when
// integral, since their origin cannot tell 1 from 1.0.
func FromAny(v any) (Value, error) {
	return fromAny(v, rootPath)
}

func fromAny(v any, path string) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case Null:
		return t, nil
	case Bool:
		return t, nil
	case Int:
		return t, nil
	case Text:
		return textValue(string(t), path)
	case Seq:
		return seqFrom(len(t), func(i int) any { return t[i] }, path)
	case Map:
		return mapFrom(map[string]Value(t), path)
	case bool:
		return Bool(t), nil
	case string:
		return textValue(t, path)
	case json.Number:
		return parseNumber(string(t), path)
	case int:
		return NewInt(int64(t)), nil
	case int8:
		return NewInt(int64(t)), nil
	case int16:
		return NewInt(int64(t)), nil
	case int32:
		return NewInt(int64(t)), nil
	case int64:
		return NewInt(t), nil
	case uint:
		return Int{v: new(big.Int).SetUint64(uint64(t))}, nil
	case uint8:
		return NewInt(int64(t)), nil
	case uint16:
		return NewInt(int64(t)), nil
	case uint32:
		return NewInt(int64(t)), nil
	case uint64:
		return Int{v: new(big.Int).SetUint64(t)}, nil
	case *big.Int:
		if t == nil {
			return Null{}, nil
		}
		return NewBigInt(t), nil
	case big.Int:
		return NewBigInt(&t), nil
	case float32, float64:
		return nil, typeErrorf(ErrCodeFloat, path,
			"floats are forbidden in canonical positions; encode %v as a string", t)
	case []byte:
		return nil, typeErrorf(ErrCodeUnsupported, path, "byte strings are not canonical values; encode as text")
	case map[string]any:
		return mapFrom(t, path)
	case []any:
		return seqFrom(len(t), func(i int) any { return t[i] }, path)
	}
	return fromReflect(reflect.ValueOf(v), path)
}

func fromReflect(rv reflect.Value, path string) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}, nil
		}
		return fromAny(rv.Elem().Interface(), path)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, typeErrorf(ErrCodeNonStringKey, path, "mapping keys must be text, got %s", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sortKeys(keys)
		out := make(Map, len(keys))
		for _, key := range keys {
			if !utf8.ValidString(key) {
				return nil, typeErrorf(ErrCodeInvalidUTF8, path, "mapping key is not valid UTF-8")
			}
			mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
			child, err := fromAny(mv.Interface(), childPath(path, key))
			if err != nil {
				return nil, err
			}
			out[key] = child
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		return seqFrom(rv.Len(), func(i int) any { return rv.Index(i).Interface() }, path)
	case reflect.String:
		return textValue(rv.String(), path)
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Int{v: new(big.Int).SetUint64(rv.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return nil, typeErrorf(ErrCodeFloat, path,
			"floats are forbidden in canonical positions; encode %v as a string", rv.Float())
	}
	return nil, typeErrorf(ErrCodeUnsupported, path, "unsupported type %s", describeType(rv))
}

func describeType(rv reflect.Value) string {
	if !rv.IsValid() {
		return "invalid"
	}
	return fmt.Sprint(rv.Type())
}

func textValue(s, path string) (Value, error) {
	if !utf8.ValidString(s) {
		return nil, typeErrorf(ErrCodeInvalidUTF8, path, "text is not valid UTF-8")
	}
	return Text(s), nil
}

func seqFrom(n int, at func(int) any, path string) (Value, error) {
	out := make(Seq, n)
	for i := 0; i < n; i++ {
		child, err := fromAny(at(i), indexPath(path, i))
		if err != nil {
			return nil, err
		}
		out[i] = child
	}
	return out, nil
}

func mapFrom[V any](m map[string]V, path string) (Value, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortKeys(keys)
	out := make(Map, len(m))
	for _, k := range keys {
		if !utf8.ValidString(k) {
			return nil, typeErrorf(ErrCodeInvalidUTF8, path, "mapping key is not valid UTF-8")
		}
		child, err := fromAny(m[k], childPath(path, k))
		if err != nil {
			return nil, err
		}
		out[k] = child
	}
	return out, nil
}
