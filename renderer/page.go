package renderer

import (
	"context"
	"errors"
	"time"
)

// ErrNavigationTimeout is returned when the target page does not load within the timeout.
var ErrNavigationTimeout = errors.New("renderer: navigation timed out")

// Page is one browser tab driven step by step. Every call blocks until the browser
// reports completion; nothing runs concurrently on a page.
type Page interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	ScrollToBottom(ctx context.Context) error
	ScrollHeight(ctx context.Context) (int64, error)
	// HTML returns the outer HTML of the document as currently rendered.
	HTML(ctx context.Context) (string, error)
	Close() error
}

// Browser opens pages presenting the given user agent.
type Browser interface {
	NewPage(ctx context.Context, userAgent string) (Page, error)
}
