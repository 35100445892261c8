package sink

import (
	"context"
	"errors"
	"fmt"

	"forum-harvest/logger"
	"forum-harvest/models"
	"forum-harvest/retry"
)

var (
	ErrWorkbookNotFound = errors.New("sink: workbook not found")
	ErrSheetNotFound    = errors.New("sink: sheet not found")
)

// InitialSheetRows is the row count of a freshly created sheet.
const InitialSheetRows = 100

// Store opens workbooks of a spreadsheet-like backend.
type Store interface {
	OpenWorkbook(ctx context.Context, title string) (Workbook, error)
}

// Workbook is a named collection of sheets.
type Workbook interface {
	// Sheet returns ErrSheetNotFound when no sheet has the title.
	Sheet(ctx context.Context, title string) (Sheet, error)
	AddSheet(ctx context.Context, title string, rows, cols int) (Sheet, error)
}

// Sheet is one grid of string cells. Rows are 1-based.
type Sheet interface {
	Title() string
	// Values returns every row up to the last non-empty one.
	Values(ctx context.Context) ([][]string, error)
	// InsertRow shifts rows at index and below down by one and writes values at index.
	InsertRow(ctx context.Context, values []string, index int) error
	// Update writes rows as one block starting at startRow, column A.
	Update(ctx context.Context, startRow int, rows [][]string) error
}

// Sink appends post records to a sheet.
type Sink struct {
	store Store
	retry retry.Policy
}

func New(store Store, policy retry.Policy) *Sink {
	return &Sink{store: store, retry: policy}
}

// ResolveOrCreateSheet returns the named sheet, creating it when absent. Connection
// failures while opening the workbook are retried by the sink's retry policy.
func (s *Sink) ResolveOrCreateSheet(ctx context.Context, workbook, sheet string) (Sheet, error) {
	wb, err := retry.Do(ctx, s.retry, "open workbook "+workbook, func(ctx context.Context) (Workbook, error) {
		return s.store.OpenWorkbook(ctx, workbook)
	})
	if err != nil {
		return nil, err
	}

	sh, err := wb.Sheet(ctx, sheet)
	if err == nil {
		return sh, nil
	}
	if !errors.Is(err, ErrSheetNotFound) {
		return nil, fmt.Errorf("sink: look up sheet %q: %w", sheet, err)
	}

	sh, err = wb.AddSheet(ctx, sheet, InitialSheetRows, len(models.Header))
	if err != nil {
		return nil, fmt.Errorf("sink: create sheet %q: %w", sheet, err)
	}
	logger.Log.Infof("created sheet %q in workbook %q", sheet, workbook)
	return sh, nil
}

// AppendRecords writes records after the last used row in a single range write and
// returns the first row written. The header row is inserted first when the sheet is empty.
// An empty batch writes nothing and returns 0.
func (s *Sink) AppendRecords(ctx context.Context, sh Sheet, records []models.PostRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	existing, err := sh.Values(ctx)
	if err != nil {
		return 0, fmt.Errorf("sink: read %q: %w", sh.Title(), err)
	}

	startRow := len(existing) + 1
	if len(existing) == 0 {
		if err := sh.InsertRow(ctx, models.Header, 1); err != nil {
			return 0, fmt.Errorf("sink: insert header into %q: %w", sh.Title(), err)
		}
		logger.Log.Infof("headers added to sheet %q", sh.Title())
		startRow++
	}

	if err := sh.Update(ctx, startRow, models.Rows(records)); err != nil {
		return 0, fmt.Errorf("sink: write %d rows to %q: %w", len(records), sh.Title(), err)
	}
	logger.Log.Infof("stored %d records to sheet %q starting at row %d", len(records), sh.Title(), startRow)
	return startRow, nil
}

// A1Range formats the block of rows×cols cells starting at startRow, column A.
func A1Range(startRow, rows, cols int) string {
	return fmt.Sprintf("A%d:%s%d", startRow, ColumnName(cols), startRow+rows-1)
}

// ColumnName converts a 1-based column index to its letter name: 1→A, 27→AA.
func ColumnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}

// Width is the widest row in rows.
func Width(rows [][]string) int {
	w := 0
	for _, r := range rows {
		w = max(w, len(r))
	}
	return w
}
