package sheet

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/lunalabs/intakeflow/internal/blob"
)

// WorkbookSource reads rows from an xlsx workbook on disk. The workbook is
// reopened on every call so rows appended by the intake form become visible
// between polls.
type WorkbookSource struct {
	path      string
	sheetName string
}

// NewWorkbookSource creates a WorkbookSource for the workbook at path.
// sheetName may be empty to use the first worksheet.
func NewWorkbookSource(path, sheetName string) *WorkbookSource {
	return &WorkbookSource{path: path, sheetName: sheetName}
}

// RowExists reports whether the row holds any non-empty cell.
func (s *WorkbookSource) RowExists(ctx context.Context, row int) (bool, error) {
	cells, err := s.ReadRow(ctx, row)
	if err != nil {
		return false, err
	}
	return len(cells) > 0, nil
}

// ReadRow returns the row's cell values.
func (s *WorkbookSource) ReadRow(_ context.Context, row int) ([]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	return readRow(f, s.sheetName, row)
}

// BlobWorkbookSource reads rows from an xlsx workbook stored as an object in
// the blob store, fetching fresh bytes on every call.
type BlobWorkbookSource struct {
	store     blob.Store
	bucket    string
	key       string
	sheetName string
}

// NewBlobWorkbookSource creates a BlobWorkbookSource for bucket/key.
func NewBlobWorkbookSource(store blob.Store, bucket, key, sheetName string) *BlobWorkbookSource {
	return &BlobWorkbookSource{
		store:     store,
		bucket:    bucket,
		key:       key,
		sheetName: sheetName,
	}
}

// RowExists reports whether the row holds any non-empty cell.
func (s *BlobWorkbookSource) RowExists(ctx context.Context, row int) (bool, error) {
	cells, err := s.ReadRow(ctx, row)
	if err != nil {
		return false, err
	}
	return len(cells) > 0, nil
}

// ReadRow returns the row's cell values.
func (s *BlobWorkbookSource) ReadRow(ctx context.Context, row int) ([]string, error) {
	data, err := s.store.Get(ctx, s.bucket, s.key)
	if err != nil {
		return nil, fmt.Errorf("fetch workbook %s/%s: %w", s.bucket, s.key, err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook %s/%s: %w", s.bucket, s.key, err)
	}
	defer func() { _ = f.Close() }()

	return readRow(f, s.sheetName, row)
}

func readRow(f *excelize.File, sheetName string, row int) ([]string, error) {
	if row < 1 {
		return nil, fmt.Errorf("row index %d out of range", row)
	}
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}

	rows, err := f.Rows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	defer func() { _ = rows.Close() }()

	current := 0
	for rows.Next() {
		current++
		if current < row {
			continue
		}
		cells, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		return trimTrailingEmpty(cells), rows.Error()
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("scan sheet %q: %w", sheetName, err)
	}

	// Past the last stored row: the row simply does not exist yet.
	return nil, nil
}

func trimTrailingEmpty(cells []string) []string {
	end := len(cells)
	for end > 0 && cells[end-1] == "" {
		end--
	}
	return cells[:end]
}
