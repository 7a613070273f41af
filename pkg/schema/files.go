package schema

import (
	"context"

	"github.com/flyingrobots/ledger-kernel/pkg/docio"
)

// ValidateFiles reads the report and schema documents and validates them
// with v. Unreadable paths fail with *docio.IOError before v is consulted.
func ValidateFiles(ctx context.Context, v Validator, reportPath, schemaPath string) (*Result, error) {
	report, err := docio.ReadFile(docio.KindReport, reportPath)
	if err != nil {
		return nil, err
	}
	schema, err := docio.ReadFile(docio.KindSchema, schemaPath)
	if err != nil {
		return nil, err
	}
	return v.Validate(ctx, report, schema)
}
