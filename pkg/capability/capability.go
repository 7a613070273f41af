// Package capability describes optional runtime capabilities (the hash
// primitive, the schema validator) and the error reported when one is
// absent.
//
// Each capability has a present implementation backed by the real library
// and an absent one that always reports UnavailableError. Which one is used
// is decided once at startup from configuration; see pkg/config.
package capability

import (
	"errors"
	"fmt"
)

// Well-known capability names.
const (
	Hash             = "blake3"
	SchemaValidation = "jsonschema"
)

// ErrUnavailable matches every UnavailableError via errors.Is.
var ErrUnavailable = errors.New("capability unavailable")

// UnavailableError reports that a required capability is missing from the
// runtime.
type UnavailableError struct {
	Capability string
	Reason     string
}

func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("module required: %s (%s)", e.Capability, e.Reason)
	}
	return fmt.Sprintf("module required: %s", e.Capability)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// Unavailable returns an UnavailableError for name.
func Unavailable(name, reason string) error {
	return &UnavailableError{Capability: name, Reason: reason}
}
