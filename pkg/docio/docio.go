// Package docio reads the documents the kernel consumes at its boundary:
// entries, compliance reports, schemas and proof case descriptors.
package docio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Document kinds, used in error messages.
const (
	KindEntry  = "entry"
	KindReport = "report"
	KindSchema = "schema"
	KindCase   = "case"
	KindConfig = "config"
)

// IOError reports a document that could not be read.
type IOError struct {
	Kind string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot read %s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the document does not exist.
func (e *IOError) NotFound() bool {
	return errors.Is(e.Err, fs.ErrNotExist)
}

// ReadFile reads the document of the given kind at path.
func ReadFile(kind, path string) ([]byte, error) {
	if path == "" {
		return nil, &IOError{Kind: kind, Path: `""`, Err: errors.New("no path given")}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		var pe *fs.PathError
		if errors.As(err, &pe) {
			err = pe.Err
		}
		return nil, &IOError{Kind: kind, Path: path, Err: err}
	}
	return data, nil
}

// IsDir reports whether path names an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
