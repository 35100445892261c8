package gsheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"forum-harvest/sink"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// Store is a sink.Store backed by Google Sheets. Workbooks are located by title through Drive.
type Store struct {
	sheets *sheets.Service
	drive  *drive.Service
}

// NewStore authenticates with a service-account key file.
func NewStore(ctx context.Context, credentialsFile string) (*Store, error) {
	creds := option.WithCredentialsFile(credentialsFile)
	return newStore(ctx,
		[]option.ClientOption{creds, option.WithScopes(sheets.SpreadsheetsScope)},
		[]option.ClientOption{creds, option.WithScopes(drive.DriveReadonlyScope)},
	)
}

func newStore(ctx context.Context, sheetsOpts, driveOpts []option.ClientOption) (*Store, error) {
	sheetsSvc, err := sheets.NewService(ctx, sheetsOpts...)
	if err != nil {
		return nil, fmt.Errorf("gsheets: sheets client: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, driveOpts...)
	if err != nil {
		return nil, fmt.Errorf("gsheets: drive client: %w", err)
	}
	return &Store{sheets: sheetsSvc, drive: driveSvc}, nil
}

// titleQuery builds the Drive search for a spreadsheet with an exact title.
func titleQuery(title string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(title)
	return fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escaped, spreadsheetMimeType)
}

func (s *Store) OpenWorkbook(ctx context.Context, title string) (sink.Workbook, error) {
	res, err := s.drive.Files.List().
		Q(titleQuery(title)).
		Fields("files(id, name)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(res.Files) == 0 {
		return nil, fmt.Errorf("%w: %q", sink.ErrWorkbookNotFound, title)
	}
	return &Workbook{svc: s.sheets, id: res.Files[0].Id}, nil
}

type Workbook struct {
	svc *sheets.Service
	id  string
}

func (w *Workbook) Sheet(ctx context.Context, title string) (sink.Sheet, error) {
	ss, err := w.svc.Spreadsheets.Get(w.id).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return newSheet(w, sh.Properties), nil
		}
	}
	return nil, sink.ErrSheetNotFound
}

func (w *Workbook) AddSheet(ctx context.Context, title string, rows, cols int) (sink.Sheet, error) {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: title,
					GridProperties: &sheets.GridProperties{
						RowCount:    int64(rows),
						ColumnCount: int64(cols),
					},
				},
			},
		}},
	}
	res, err := w.svc.Spreadsheets.BatchUpdate(w.id, req).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(res.Replies) == 0 || res.Replies[0].AddSheet == nil {
		return nil, fmt.Errorf("gsheets: add sheet %q: empty reply", title)
	}
	return newSheet(w, res.Replies[0].AddSheet.Properties), nil
}
