package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	scrollToBottomJS = `window.scrollTo(0, document.body.scrollHeight)`
	scrollHeightJS   = `document.body.scrollHeight`
)

// ChromeOptions configures the Chrome process behind ChromeBrowser.
type ChromeOptions struct {
	ExecPath string
	Headless bool
}

// ChromeBrowser starts one Chrome process per page.
type ChromeBrowser struct {
	opts ChromeOptions
}

func NewChromeBrowser(opts ChromeOptions) *ChromeBrowser {
	return &ChromeBrowser{opts: opts}
}

func (b *ChromeBrowser) allocatorOptions(userAgent string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(userAgent),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-crashpad", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("headless", b.opts.Headless),
		chromedp.WindowSize(1920, 1080),
	)
	if b.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.opts.ExecPath))
	}
	return opts
}

// NewPage launches Chrome and opens a blank tab. The browser lives until Close.
func (b *ChromeBrowser) NewPage(ctx context.Context, userAgent string) (Page, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), b.allocatorOptions(userAgent)...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// The first Run starts the browser; it must use the tab context itself so later
	// per-call timeouts do not tear the browser down.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("renderer: start chrome: %w", err)
	}

	return &ChromePage{
		ctx: tabCtx,
		close: func() {
			cancelTab()
			cancelAlloc()
		},
	}, nil
}

// ChromePage is a Page backed by a chromedp tab.
type ChromePage struct {
	ctx   context.Context
	close func()
}

// run executes actions on the tab, aborting early if ctx ends.
func (p *ChromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(p.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(p.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *ChromePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	err := p.run(ctx, timeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: %s after %s", ErrNavigationTimeout, url, timeout)
	}
	return fmt.Errorf("renderer: navigate %s: %w", url, err)
}

func (p *ChromePage) ScrollToBottom(ctx context.Context) error {
	// window.scrollTo evaluates to undefined, so the result is discarded.
	return p.run(ctx, 0, chromedp.Evaluate(scrollToBottomJS, nil))
}

func (p *ChromePage) ScrollHeight(ctx context.Context) (int64, error) {
	var height int64
	if err := p.run(ctx, 0, chromedp.Evaluate(scrollHeightJS, &height)); err != nil {
		return 0, err
	}
	return height, nil
}

func (p *ChromePage) HTML(ctx context.Context) (string, error) {
	var htmlContent string
	if err := p.run(ctx, 0, chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return htmlContent, nil
}

func (p *ChromePage) Close() error {
	p.close()
	return nil
}
