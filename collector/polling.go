package collector

import (
	"context"
	"slices"
	"time"

	"cloud.google.com/go/civil"

	"forum-harvest/brightdata"
	"forum-harvest/logger"
	"forum-harvest/models"
	"forum-harvest/parser"
	"forum-harvest/sink"
)

// SnapshotSource runs an extraction job and returns its items.
type SnapshotSource interface {
	Trigger(ctx context.Context, inputs []brightdata.TriggerInput) (string, error)
	WaitForSnapshot(ctx context.Context, snapshotID string, policy brightdata.PollPolicy) ([]brightdata.Item, error)
}

type PollingOptions struct {
	Target     Target
	TargetURL  string
	SortBy     string
	Poll       brightdata.PollPolicy
	WindowDays int
}

// PollingCollector triggers a scraping job, waits for its snapshot and stores recent posts.
type PollingCollector struct {
	source SnapshotSource
	sink   *sink.Sink
	opts   PollingOptions
	now    func() time.Time
}

func NewPollingCollector(source SnapshotSource, s *sink.Sink, opts PollingOptions) *PollingCollector {
	return &PollingCollector{source: source, sink: s, opts: opts, now: time.Now}
}

func (c *PollingCollector) Name() string { return PollCollectorName }

func (c *PollingCollector) Run(ctx context.Context) (models.RunResult, error) {
	ctx, res := beginRun(ctx, c.Name(), c.now())
	window := models.NewCollectionWindow(c.now(), c.opts.WindowDays)

	err := func() error {
		sheet, err := c.sink.ResolveOrCreateSheet(ctx, c.opts.Target.Workbook, c.opts.Target.Sheet)
		if err != nil {
			return err
		}

		snapshotID, err := c.source.Trigger(ctx, []brightdata.TriggerInput{{URL: c.opts.TargetURL, SortBy: c.opts.SortBy}})
		if err != nil {
			return err
		}
		logger.InfoCtx(ctx, "snapshot created", logger.Fields{"snapshot_id": snapshotID})

		items, err := c.source.WaitForSnapshot(ctx, snapshotID, c.opts.Poll)
		if err != nil {
			return err
		}
		logger.InfoCtx(ctx, "snapshot returned", logger.Fields{"snapshot_id": snapshotID, "items": len(items)})

		writeBatch(ctx, c.sink, sheet, SelectRecent(items, window), &res)
		return nil
	}()

	finishRun(ctx, &res, err, c.now())
	return res, err
}

type datedItem struct {
	item brightdata.Item
	date civil.Date
}

// SelectRecent keeps items with a parseable post date, orders them newest first and walks
// them until the first one older than the window. Items with an empty description are
// skipped but do not stop the walk.
func SelectRecent(items []brightdata.Item, window models.CollectionWindow) []models.PostRecord {
	dated := make([]datedItem, 0, len(items))
	for _, it := range items {
		if d, ok := parser.ExtractDate(it.DatePosted); ok {
			dated = append(dated, datedItem{item: it, date: d})
		}
	}
	// Ordered by the key the cutoff compares: once one item is out of the window,
	// every later one is too.
	slices.SortStableFunc(dated, func(a, b datedItem) int {
		switch {
		case a.date.After(b.date):
			return -1
		case a.date.Before(b.date):
			return 1
		default:
			return 0
		}
	})

	var records []models.PostRecord
	for _, d := range dated {
		if !window.Contains(d.date) {
			logger.Log.Infof("stopping at post dated %s, before cutoff %s", d.date, window.Cutoff)
			break
		}
		if d.item.Description == "" {
			continue
		}
		records = append(records, models.PostRecord{
			Text:  d.item.Description,
			Date:  d.date,
			Links: parser.ExtractLinks(d.item.Description),
		})
	}
	return records
}
