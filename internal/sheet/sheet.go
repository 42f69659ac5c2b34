// Package sheet abstracts the table-store collaborator that intake rows are
// appended to.
package sheet

import "context"

// RowSource reads individual rows from an append-only table. Row indices are
// 1-based.
type RowSource interface {
	// RowExists reports whether the row holds at least one non-empty cell.
	RowExists(ctx context.Context, row int) (bool, error)

	// ReadRow returns the row's cell values in column order. Trailing empty
	// cells are not included, matching how form backends report rows.
	ReadRow(ctx context.Context, row int) ([]string, error)
}
