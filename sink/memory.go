package sink

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps workbooks in process memory. It backs dry runs and tests.
type MemoryStore struct {
	mu sync.Mutex
	// AutoCreate opens unknown workbook titles as empty workbooks.
	AutoCreate bool
	workbooks  map[string]*MemoryWorkbook
}

func NewMemoryStore(workbooks ...string) *MemoryStore {
	s := &MemoryStore{workbooks: map[string]*MemoryWorkbook{}}
	for _, title := range workbooks {
		s.workbooks[title] = newMemoryWorkbook(&s.mu)
	}
	return s
}

func (s *MemoryStore) OpenWorkbook(_ context.Context, title string) (Workbook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wb, ok := s.workbooks[title]
	if !ok {
		if !s.AutoCreate {
			return nil, ErrWorkbookNotFound
		}
		wb = newMemoryWorkbook(&s.mu)
		s.workbooks[title] = wb
	}
	return wb, nil
}

// Workbook returns a workbook for inspection, or nil.
func (s *MemoryStore) Workbook(title string) *MemoryWorkbook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workbooks[title]
}

type MemoryWorkbook struct {
	mu     *sync.Mutex
	sheets map[string]*MemorySheet
}

func newMemoryWorkbook(mu *sync.Mutex) *MemoryWorkbook {
	return &MemoryWorkbook{mu: mu, sheets: map[string]*MemorySheet{}}
}

func (w *MemoryWorkbook) Sheet(_ context.Context, title string) (Sheet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sh, ok := w.sheets[title]
	if !ok {
		return nil, ErrSheetNotFound
	}
	return sh, nil
}

func (w *MemoryWorkbook) AddSheet(_ context.Context, title string, rows, cols int) (Sheet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sh := &MemorySheet{mu: w.mu, title: title, rowCount: rows, colCount: cols}
	w.sheets[title] = sh
	return sh, nil
}

// MemorySheet is a grid with declared dimensions. Writes beyond the grid grow it,
// as the Sheets backend does before writing.
type MemorySheet struct {
	mu       *sync.Mutex
	title    string
	rows     [][]string
	rowCount int
	colCount int

	inserts int
	updates int
}

func (s *MemorySheet) Title() string { return s.title }

func (s *MemorySheet) Values(_ context.Context) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

func (s *MemorySheet) InsertRow(_ context.Context, values []string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inserts++
	if index < 1 {
		index = 1
	}
	for len(s.rows) < index-1 {
		s.rows = append(s.rows, nil)
	}
	s.rows = slices.Insert(s.rows, index-1, slices.Clone(values))
	s.rowCount++
	s.colCount = max(s.colCount, len(values))
	return nil
}

func (s *MemorySheet) Update(_ context.Context, startRow int, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updates++
	end := startRow + len(rows) - 1
	for len(s.rows) < end {
		s.rows = append(s.rows, nil)
	}
	for i, r := range rows {
		s.rows[startRow-1+i] = slices.Clone(r)
	}
	s.rowCount = max(s.rowCount, end)
	s.colCount = max(s.colCount, Width(rows))
	return nil
}

// snapshot copies rows up to the last non-empty one.
func (s *MemorySheet) snapshot() [][]string {
	last := len(s.rows)
	for last > 0 && len(s.rows[last-1]) == 0 {
		last--
	}
	out := make([][]string, last)
	for i := range out {
		out[i] = slices.Clone(s.rows[i])
	}
	return out
}

// Rows returns the sheet content.
func (s *MemorySheet) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Dimensions returns the grid size in rows and columns.
func (s *MemorySheet) Dimensions() (rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rowCount, s.colCount
}

// Writes returns how many InsertRow and Update calls the sheet received.
func (s *MemorySheet) Writes() (inserts, updates int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts, s.updates
}

// MemorySheet returns a sheet for inspection, or nil.
func (w *MemoryWorkbook) MemorySheet(title string) *MemorySheet {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sheets[title]
}
