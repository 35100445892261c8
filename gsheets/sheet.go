package gsheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"

	"forum-harvest/sink"
)

// Sheet is one worksheet. It tracks the grid size so writes past the edge grow it first.
type Sheet struct {
	wb       *Workbook
	id       int64
	title    string
	rowCount int64
	colCount int64
}

func newSheet(wb *Workbook, p *sheets.SheetProperties) *Sheet {
	s := &Sheet{wb: wb, id: p.SheetId, title: p.Title}
	if p.GridProperties != nil {
		s.rowCount = p.GridProperties.RowCount
		s.colCount = p.GridProperties.ColumnCount
	}
	return s
}

func (s *Sheet) Title() string { return s.title }

// a1 qualifies a range with the quoted sheet title.
func (s *Sheet) a1(rng string) string {
	return "'" + strings.ReplaceAll(s.title, "'", "''") + "'!" + rng
}

func (s *Sheet) Values(ctx context.Context) ([][]string, error) {
	res, err := s.wb.svc.Spreadsheets.Values.Get(s.wb.id, s.a1("A:ZZ")).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return toStrings(res.Values), nil
}

func (s *Sheet) InsertRow(ctx context.Context, values []string, index int) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			InsertDimension: &sheets.InsertDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    s.id,
					Dimension:  "ROWS",
					StartIndex: int64(index - 1),
					EndIndex:   int64(index),
				},
				InheritFromBefore: false,
				ForceSendFields:   []string{"InheritFromBefore"},
			},
		}},
	}
	if err := s.ensureColumns(ctx, int64(len(values))); err != nil {
		return err
	}
	if _, err := s.wb.svc.Spreadsheets.BatchUpdate(s.wb.id, req).Context(ctx).Do(); err != nil {
		return err
	}
	s.rowCount++
	return s.write(ctx, index, [][]string{values})
}

func (s *Sheet) Update(ctx context.Context, startRow int, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.ensureGrid(ctx, int64(startRow+len(rows)-1), int64(sink.Width(rows))); err != nil {
		return err
	}
	return s.write(ctx, startRow, rows)
}

func (s *Sheet) write(ctx context.Context, startRow int, rows [][]string) error {
	vr := &sheets.ValueRange{Values: toInterfaces(rows)}
	_, err := s.wb.svc.Spreadsheets.Values.
		Update(s.wb.id, s.a1(sink.A1Range(startRow, len(rows), sink.Width(rows))), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (s *Sheet) ensureColumns(ctx context.Context, cols int64) error {
	return s.ensureGrid(ctx, s.rowCount, cols)
}

// ensureGrid appends rows and columns so the grid covers rows×cols cells.
func (s *Sheet) ensureGrid(ctx context.Context, rows, cols int64) error {
	var reqs []*sheets.Request
	if rows > s.rowCount {
		reqs = append(reqs, &sheets.Request{AppendDimension: &sheets.AppendDimensionRequest{
			SheetId: s.id, Dimension: "ROWS", Length: rows - s.rowCount,
		}})
	}
	if cols > s.colCount {
		reqs = append(reqs, &sheets.Request{AppendDimension: &sheets.AppendDimensionRequest{
			SheetId: s.id, Dimension: "COLUMNS", Length: cols - s.colCount,
		}})
	}
	if len(reqs) == 0 {
		return nil
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}
	if _, err := s.wb.svc.Spreadsheets.BatchUpdate(s.wb.id, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gsheets: grow %q to %dx%d: %w", s.title, rows, cols, err)
	}
	s.rowCount = max(s.rowCount, rows)
	s.colCount = max(s.colCount, cols)
	return nil
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			if cell != nil {
				out[i][j] = fmt.Sprint(cell)
			}
		}
	}
	return out
}

func toInterfaces(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		out[i] = make([]interface{}, len(row))
		for j, cell := range row {
			out[i][j] = cell
		}
	}
	return out
}
