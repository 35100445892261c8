package sink

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"forum-harvest/models"
	"forum-harvest/repositories"
)

// MongoStore emulates workbooks in MongoDB: a workbook is a namespace of sheet documents
// and always exists.
type MongoStore struct {
	sheets *repositories.SheetRepository
	rows   *repositories.SheetRowRepository
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		sheets: repositories.NewSheetRepository(db),
		rows:   repositories.NewSheetRowRepository(db),
	}
}

func (s *MongoStore) OpenWorkbook(_ context.Context, title string) (Workbook, error) {
	return &mongoWorkbook{store: s, title: title}, nil
}

type mongoWorkbook struct {
	store *MongoStore
	title string
}

func (w *mongoWorkbook) Sheet(ctx context.Context, title string) (Sheet, error) {
	meta, err := w.store.sheets.FindByTitle(ctx, w.title, title)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSheetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mongoSheet{store: w.store, meta: meta}, nil
}

func (w *mongoWorkbook) AddSheet(ctx context.Context, title string, rows, cols int) (Sheet, error) {
	meta := &models.SheetMeta{Workbook: w.title, Title: title, RowCount: rows, ColCount: cols}
	if err := w.store.sheets.Insert(ctx, meta); err != nil {
		return nil, err
	}
	return &mongoSheet{store: w.store, meta: meta}, nil
}

type mongoSheet struct {
	store *MongoStore
	meta  *models.SheetMeta
}

func (s *mongoSheet) Title() string { return s.meta.Title }

func (s *mongoSheet) Values(ctx context.Context) ([][]string, error) {
	docs, err := s.store.rows.ListBySheet(ctx, s.meta.ID)
	if err != nil {
		return nil, err
	}
	return denseRows(docs), nil
}

func (s *mongoSheet) InsertRow(ctx context.Context, values []string, index int) error {
	if err := s.store.rows.ShiftDown(ctx, s.meta.ID, index); err != nil {
		return err
	}
	if err := s.store.rows.UpsertRows(ctx, s.meta.ID, index, [][]string{values}); err != nil {
		return err
	}
	s.meta.RowCount++
	s.meta.ColCount = max(s.meta.ColCount, len(values))
	return s.store.sheets.Grow(ctx, s.meta.ID, s.meta.RowCount, s.meta.ColCount)
}

func (s *mongoSheet) Update(ctx context.Context, startRow int, rows [][]string) error {
	if err := s.store.rows.UpsertRows(ctx, s.meta.ID, startRow, rows); err != nil {
		return err
	}
	s.meta.RowCount = max(s.meta.RowCount, startRow+len(rows)-1)
	s.meta.ColCount = max(s.meta.ColCount, Width(rows))
	return s.store.sheets.Grow(ctx, s.meta.ID, s.meta.RowCount, s.meta.ColCount)
}

// denseRows lays row documents out by row number, filling gaps with empty rows and
// trimming trailing empty rows.
func denseRows(docs []models.SheetRow) [][]string {
	var out [][]string
	for _, d := range docs {
		if d.Row < 1 {
			continue
		}
		for len(out) < d.Row {
			out = append(out, nil)
		}
		out[d.Row-1] = d.Values
	}
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out
}
