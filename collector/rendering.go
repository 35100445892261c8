package collector

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"forum-harvest/logger"
	"forum-harvest/models"
	"forum-harvest/parser"
	"forum-harvest/renderer"
	"forum-harvest/retry"
	"forum-harvest/sink"
)

type RenderingOptions struct {
	Target            Target
	URL               string
	NavigationTimeout time.Duration
	ScrollDelayMin    time.Duration
	ScrollDelayMax    time.Duration
	// MaxScrolls bounds the scroll loop. 0 means until the page stops growing.
	MaxScrolls  int
	LinkRewrite parser.LinkRewriter
	WindowDays  int
	// UserAgents replaces the built-in browser identities when non-empty.
	UserAgents []string
}

// RenderingCollector scrolls a rendered forum listing and extracts posts from each render.
type RenderingCollector struct {
	browser renderer.Browser
	sink    *sink.Sink
	opts    RenderingOptions

	now       func() time.Time
	userAgent func() string
	delay     func(lo, hi time.Duration) time.Duration
}

func NewRenderingCollector(browser renderer.Browser, s *sink.Sink, opts RenderingOptions) *RenderingCollector {
	return &RenderingCollector{
		browser:   browser,
		sink:      s,
		opts:      opts,
		now:       time.Now,
		userAgent: renderer.NewUserAgentPool(opts.UserAgents).Pick,
		delay:     randomDelay,
	}
}

func (c *RenderingCollector) Name() string { return RenderCollectorName }

func (c *RenderingCollector) Run(ctx context.Context) (models.RunResult, error) {
	ctx, res := beginRun(ctx, c.Name(), c.now())
	window := models.NewCollectionWindow(c.now(), c.opts.WindowDays)

	err := func() error {
		records, err := c.Collect(ctx, window)
		if err != nil {
			return err
		}
		// The sheet is resolved only once there is something to show for the run,
		// so a failed render never leaves an empty sheet behind.
		sheet, err := c.sink.ResolveOrCreateSheet(ctx, c.opts.Target.Workbook, c.opts.Target.Sheet)
		if err != nil {
			return err
		}
		writeBatch(ctx, c.sink, sheet, records, &res)
		return nil
	}()

	finishRun(ctx, &res, err, c.now())
	return res, err
}

// Collect loads the listing and scrolls until the window is exhausted or the page stops
// growing, returning unique in-window records in the order first seen.
func (c *RenderingCollector) Collect(ctx context.Context, window models.CollectionWindow) ([]models.PostRecord, error) {
	page, err := c.browser.NewPage(ctx, c.userAgent())
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if err := page.Navigate(ctx, c.opts.URL, c.opts.NavigationTimeout); err != nil {
		return nil, err
	}

	prevHeight, err := page.ScrollHeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("rendering: measure page: %w", err)
	}

	var records []models.PostRecord
	for scrolls := 1; ; scrolls++ {
		if err := page.ScrollToBottom(ctx); err != nil {
			return nil, fmt.Errorf("rendering: scroll: %w", err)
		}
		logger.DebugCtx(ctx, "scrolled towards bottom", logger.Fields{"scroll": scrolls})
		if err := retry.Sleep(ctx, c.delay(c.opts.ScrollDelayMin, c.opts.ScrollDelayMax)); err != nil {
			return nil, err
		}

		htmlStr, err := page.HTML(ctx)
		if err != nil {
			return nil, fmt.Errorf("rendering: snapshot: %w", err)
		}
		posts, err := parser.ExtractPosts(htmlStr, c.opts.LinkRewrite)
		if err != nil {
			return nil, fmt.Errorf("rendering: extract posts: %w", err)
		}

		var windowReached bool
		records, windowReached = accumulate(records, posts, window)
		if windowReached {
			logger.InfoCtx(ctx, "reached posts older than cutoff", logger.Fields{"cutoff": window.Cutoff.String()})
			break
		}

		height, err := page.ScrollHeight(ctx)
		if err != nil {
			return nil, fmt.Errorf("rendering: measure page: %w", err)
		}
		if height == prevHeight {
			logger.InfoCtx(ctx, "reached end of page", logger.Fields{"scroll": scrolls})
			break
		}
		prevHeight = height

		if c.opts.MaxScrolls > 0 && scrolls >= c.opts.MaxScrolls {
			logger.InfoCtx(ctx, "scroll limit reached", logger.Fields{"scroll": scrolls})
			break
		}
	}
	return records, nil
}

// accumulate adds complete, in-window posts that are not already present. It reports the
// window as reached when the bottom-most dated post is older than the cutoff; older pinned
// posts higher up the listing do not end collection.
func accumulate(records []models.PostRecord, posts []parser.RenderedPost, window models.CollectionWindow) ([]models.PostRecord, bool) {
	reached := false
	for _, p := range posts {
		if p.HasDate {
			reached = !window.Contains(p.Date)
		}
		if !p.Complete() || !window.Contains(p.Date) {
			continue
		}
		records, _ = models.AppendUnique(records, models.PostRecord{Text: p.Text, Date: p.Date, Links: p.Links})
	}
	return records, reached
}

// randomDelay picks a duration uniformly in [lo, hi].
func randomDelay(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo+1)
}
