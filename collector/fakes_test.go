package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"forum-harvest/renderer"
	"forum-harvest/retry"
	"forum-harvest/sink"
)

const (
	testWorkbook = "Home Buyer Concerns"
	testSheet    = "Reddit AusPropertyChat Data"
)

var (
	testTarget = Target{Workbook: testWorkbook, Sheet: testSheet}
	fastRetry  = retry.Policy{Attempts: 3, Delay: time.Millisecond}
	// testNow puts the cutoff at 2024-01-01.
	testNow = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
)

func fixedNow() time.Time { return testNow }

type fakeRender struct {
	html   string
	height int64
}

// fakePage serves one canned render per scroll; the last render repeats once exhausted.
type fakePage struct {
	initialHeight int64
	renders       []fakeRender
	navErr        error

	scrolls   int
	navigated string
	closed    bool
}

func (p *fakePage) Navigate(_ context.Context, url string, _ time.Duration) error {
	p.navigated = url
	return p.navErr
}

func (p *fakePage) ScrollToBottom(context.Context) error {
	p.scrolls++
	return nil
}

func (p *fakePage) current() fakeRender {
	return p.renders[min(p.scrolls, len(p.renders))-1]
}

func (p *fakePage) ScrollHeight(context.Context) (int64, error) {
	if p.scrolls == 0 {
		return p.initialHeight, nil
	}
	return p.current().height, nil
}

func (p *fakePage) HTML(context.Context) (string, error) {
	return p.current().html, nil
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

type fakeBrowser struct {
	page      *fakePage
	userAgent string
}

func (b *fakeBrowser) NewPage(_ context.Context, userAgent string) (renderer.Page, error) {
	b.userAgent = userAgent
	return b.page, nil
}

// listing renders post articles inside a page body.
func listing(posts ...string) string {
	return "<html><body>" + strings.Join(posts, "\n") + "</body></html>"
}

func post(text, datetime string, hrefs ...string) string {
	var links strings.Builder
	for _, h := range hrefs {
		fmt.Fprintf(&links, ` <a href="%s">link</a>`, h)
	}
	return fmt.Sprintf(`<article class="w-full m-0"><time datetime="%s"></time>`+
		`<div data-post-click-location="text-body"><p>%s</p>%s</div></article>`, datetime, text, links.String())
}

var errSheetWrite = errors.New("quota exceeded")

// failingStore wraps a MemoryStore so every range write fails.
type failingStore struct {
	inner *sink.MemoryStore
}

func (s failingStore) OpenWorkbook(ctx context.Context, title string) (sink.Workbook, error) {
	wb, err := s.inner.OpenWorkbook(ctx, title)
	if err != nil {
		return nil, err
	}
	return failingWorkbook{wb}, nil
}

type failingWorkbook struct{ sink.Workbook }

func (w failingWorkbook) Sheet(ctx context.Context, title string) (sink.Sheet, error) {
	sh, err := w.Workbook.Sheet(ctx, title)
	if err != nil {
		return nil, err
	}
	return failingSheet{sh}, nil
}

func (w failingWorkbook) AddSheet(ctx context.Context, title string, rows, cols int) (sink.Sheet, error) {
	sh, err := w.Workbook.AddSheet(ctx, title, rows, cols)
	if err != nil {
		return nil, err
	}
	return failingSheet{sh}, nil
}

type failingSheet struct{ sink.Sheet }

func (failingSheet) Update(context.Context, int, [][]string) error { return errSheetWrite }

func sheetOf(store *sink.MemoryStore) *sink.MemorySheet {
	return store.Workbook(testWorkbook).MemorySheet(testSheet)
}

func rowsOf(store *sink.MemoryStore) [][]string {
	sh := sheetOf(store)
	if sh == nil {
		return nil
	}
	return sh.Rows()
}
