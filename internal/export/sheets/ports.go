// Package sheets exports archived budget periods to spreadsheet backends.
package sheets

import (
	"context"
)

// Ports for outbound adapters.
type (
	// RowWriter appends rows to a named sheet tab.
	RowWriter interface {
		AppendRows(ctx context.Context, sheetName string, rows [][]any) (rowRef string, err error)
	}
)
