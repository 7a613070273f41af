// Package schema validates compliance reports against JSON Schema documents.
//
// Validation is an optional capability. When it is unavailable the
// validator reports StatusSkipped with a warning instead of failing, so a
// missing validator never blocks identifier checks.
package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/flyingrobots/ledger-kernel/pkg/capability"
)

// Status is the outcome of a validation.
type Status string

const (
	StatusOK      Status = "OK"
	StatusFailed  Status = "FAIL"
	StatusSkipped Status = "SKIPPED"
)

// Violation is one schema constraint the report does not satisfy.
type Violation struct {
	// InstanceLocation is a JSON pointer into the report; empty for the root.
	InstanceLocation string `json:"instance_location"`
	// KeywordLocation is a JSON pointer into the schema.
	KeywordLocation string `json:"keyword_location"`
	Message         string `json:"message"`
}

// Instance returns the instance location for display.
func (v Violation) Instance() string {
	if v.InstanceLocation == "" {
		return "/"
	}
	return v.InstanceLocation
}

// Result is the outcome of validating one report.
type Result struct {
	Status     Status      `json:"status"`
	Violations []Violation `json:"violations,omitempty"`
	// Warning explains a skipped validation.
	Warning string `json:"warning,omitempty"`
}

// OK reports whether the report was validated and satisfied the schema.
func (r *Result) OK() bool {
	return r.Status == StatusOK
}

// Validator is the schema validation capability. Errors are reserved for
// documents that cannot be read as JSON or schemas that do not compile;
// constraint violations are reported on the Result.
type Validator interface {
	Validate(ctx context.Context, report, schema []byte) (*Result, error)
}

// resourceURL names the in-memory schema resource. Relative $refs resolve
// against it, so schemas are expected to be self-contained.
const resourceURL = "file:///ledger-kernel/report.schema.json"

// JSONSchema validates with santhosh-tekuri/jsonschema. Schemas without a
// $schema keyword are treated as draft 2020-12.
type JSONSchema struct {
	draft *jsonschema.Draft
}

// NewJSONSchema returns the JSON Schema validator.
func NewJSONSchema() *JSONSchema {
	return &JSONSchema{draft: jsonschema.Draft2020}
}

// Validate checks report against schema.
func (j *JSONSchema) Validate(ctx context.Context, report, schema []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	c.Draft = j.draft
	if err := c.AddResource(resourceURL, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("schema load failed: %w", err)
	}
	compiled, err := c.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("schema compile failed: %w", err)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(report))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("report is not valid JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("report is not valid JSON: unexpected data after top-level value")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := compiled.Validate(doc); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return nil, fmt.Errorf("schema validation failed: %w", err)
		}
		return &Result{Status: StatusFailed, Violations: violations(ve)}, nil
	}
	return &Result{Status: StatusOK}, nil
}

// violations flattens the error tree to its leaves, which carry the
// concrete constraint messages. Output is sorted for stable reporting.
func violations(ve *jsonschema.ValidationError) []Violation {
	var out []Violation
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, Violation{
				InstanceLocation: e.InstanceLocation,
				KeywordLocation:  e.KeywordLocation,
				Message:          e.Message,
			})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)

	sort.SliceStable(out, func(i, k int) bool {
		if out[i].InstanceLocation != out[k].InstanceLocation {
			return out[i].InstanceLocation < out[k].InstanceLocation
		}
		return out[i].KeywordLocation < out[k].KeywordLocation
	})
	return out
}

// Unavailable returns a validator that skips every validation. reason is
// included in the warning.
func Unavailable(reason string) Validator {
	return unavailable{reason: reason}
}

type unavailable struct {
	reason string
}

func (u unavailable) Validate(ctx context.Context, _, _ []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Result{
		Status:  StatusSkipped,
		Warning: capability.Unavailable(capability.SchemaValidation, u.reason).Error(),
	}, nil
}
