package canonical

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// EncodeText renders v as canonical JSON.
//
// Rules:
//  1. Mapping entries are sorted by Unicode code point of the key.
//  2. No whitespace is emitted anywhere.
//  3. Strings use minimal escaping; non-ASCII is written literally.
//  4. Integers are plain decimal with no leading zeros or plus sign.
//
// The returned slice is freshly allocated; on error nothing is returned.
func EncodeText(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeText(&buf, v, rootPath); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTextString is EncodeText returning a string.
func EncodeTextString(v Value) (string, error) {
	b, err := EncodeText(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeText(buf *bytes.Buffer, v Value, path string) error {
	switch t := v.(type) {
	case Null:
		buf.WriteString("null")
	case Bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Int:
		buf.WriteString(t.String())
	case Text:
		if !utf8.ValidString(string(t)) {
			return typeErrorf(ErrCodeInvalidUTF8, path, "text is not valid UTF-8")
		}
		writeString(buf, string(t))
	case Seq:
		buf.WriteByte('[')
		for i, elem := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeText(buf, elem, indexPath(path, i)); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Map:
		buf.WriteByte('{')
		for i, k := range t.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if !utf8.ValidString(k) {
				return typeErrorf(ErrCodeInvalidUTF8, path, "mapping key is not valid UTF-8")
			}
			writeString(buf, k)
			buf.WriteByte(':')
			if err := writeText(buf, t[k], childPath(path, k)); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case nil:
		return typeErrorf(ErrCodeUnsupported, path, "missing value")
	default:
		return typeErrorf(ErrCodeUnsupported, path, "unsupported value %s", fmt.Sprintf("%T", v))
	}
	return nil
}

// writeString writes s as a JSON string literal. Only the quote, the
// backslash and C0 control characters are escaped.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		buf.WriteString(s[start:i])
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexDigits[c>>4])
			buf.WriteByte(hexDigits[c&0xf])
		}
		start = i + 1
	}
	buf.WriteString(s[start:])
	buf.WriteByte('"')
}
