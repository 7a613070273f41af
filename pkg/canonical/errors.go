package canonical

import (
	"fmt"
	"strconv"
)

// Deterministic error codes for values outside the canonical model.
const (
	ErrCodeFloat          = "ERR_CANON_FLOAT"
	ErrCodeDuplicateKey   = "ERR_CANON_DUPLICATE_KEY"
	ErrCodeNonStringKey   = "ERR_CANON_NON_STRING_KEY"
	ErrCodeInvalidUTF8    = "ERR_CANON_INVALID_UTF8"
	ErrCodeUnsupported    = "ERR_CANON_UNSUPPORTED_TYPE"
	ErrCodeSyntax         = "ERR_CANON_SYNTAX"
	ErrCodeNotMapping     = "ERR_CANON_NOT_MAPPING"
	ErrCodeTrailingData   = "ERR_CANON_TRAILING_DATA"
	ErrCodeInvalidInteger = "ERR_CANON_INVALID_INTEGER"
)

// TypeError reports a value that cannot be represented canonically.
// Path locates the offending construct, e.g. "$.payload[2].amount".
type TypeError struct {
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *TypeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *TypeError) Unwrap() error { return e.Err }

func typeErrorf(code, path, format string, args ...any) *TypeError {
	return &TypeError{Code: code, Path: path, Message: fmt.Sprintf(format, args...)}
}

func childPath(parent, key string) string {
	if isPlainKey(key) {
		return parent + "." + key
	}
	return parent + "[" + strconv.Quote(key) + "]"
}

func isPlainKey(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}

func indexPath(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}
