package app

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"forum-harvest/brightdata"
	"forum-harvest/collector"
	"forum-harvest/config"
	"forum-harvest/db"
	"forum-harvest/gsheets"
	"forum-harvest/httpclient"
	"forum-harvest/logger"
	"forum-harvest/parser"
	"forum-harvest/renderer"
	"forum-harvest/retry"
	"forum-harvest/sink"
)

// App holds the dependencies shared by the entry points, built once from configuration.
type App struct {
	Config *config.AppConfig
	Sink   *sink.Sink
	// Memory is set when the memory backend is selected, for inspecting a dry run.
	Memory *sink.MemoryStore

	mongoClient *mongo.Client
}

// New connects the configured sink backend.
func New(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	a := &App{Config: cfg}

	var store sink.Store
	switch cfg.Sink.Backend {
	case config.BackendSheets:
		s, err := gsheets.NewStore(ctx, cfg.Sink.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("app: google sheets: %w", err)
		}
		store = s
	case config.BackendMongo:
		client, database, err := db.Connect(ctx, cfg.Sink.MongoURI, cfg.Sink.MongoDBName)
		if err != nil {
			return nil, fmt.Errorf("app: mongo: %w", err)
		}
		a.mongoClient = client
		store = sink.NewMongoStore(database)
	case config.BackendMemory:
		a.Memory = sink.NewMemoryStore()
		a.Memory.AutoCreate = true
		store = a.Memory
	default:
		return nil, fmt.Errorf("app: unsupported sink backend %q", cfg.Sink.Backend)
	}
	logger.Log.Infof("using %s sink, workbook %q sheet %q", cfg.Sink.Backend, cfg.Sink.Workbook, cfg.Sink.Sheet)

	a.Sink = sink.New(store, RetryPolicy(cfg))
	return a, nil
}

func (a *App) Close(ctx context.Context) error {
	if a.mongoClient != nil {
		return a.mongoClient.Disconnect(ctx)
	}
	return nil
}

func RetryPolicy(cfg *config.AppConfig) retry.Policy {
	return retry.Policy{Attempts: cfg.Retry.Attempts, Delay: cfg.Retry.Delay}
}

func target(cfg *config.AppConfig) collector.Target {
	return collector.Target{Workbook: cfg.Sink.Workbook, Sheet: cfg.Sink.Sheet}
}

func RenderingOptions(cfg *config.AppConfig) collector.RenderingOptions {
	r := cfg.Rendering
	return collector.RenderingOptions{
		Target:            target(cfg),
		URL:               r.URL,
		NavigationTimeout: r.NavigationTimeout,
		ScrollDelayMin:    r.ScrollDelayMin,
		ScrollDelayMax:    r.ScrollDelayMax,
		MaxScrolls:        r.MaxScrolls,
		LinkRewrite:       parser.LinkRewriter{From: r.LinkRewrite.From, To: r.LinkRewrite.To},
		WindowDays:        cfg.WindowDays,
		UserAgents:        r.UserAgents,
	}
}

func PollingOptions(cfg *config.AppConfig) collector.PollingOptions {
	p := cfg.Polling
	return collector.PollingOptions{
		Target:    target(cfg),
		TargetURL: p.TargetURL,
		SortBy:    p.SortBy,
		Poll: brightdata.PollPolicy{
			Backoff: retry.Backoff{
				Initial:    p.Poll.InitialInterval,
				Max:        p.Poll.MaxInterval,
				Multiplier: p.Poll.Multiplier,
			},
			MaxWait: p.Poll.MaxWait,
		},
		WindowDays: cfg.WindowDays,
	}
}

func (a *App) RenderingCollector() *collector.RenderingCollector {
	browser := renderer.NewChromeBrowser(renderer.ChromeOptions{
		ExecPath: a.Config.Rendering.ChromePath,
		Headless: *a.Config.Rendering.Headless,
	})
	return collector.NewRenderingCollector(browser, a.Sink, RenderingOptions(a.Config))
}

func (a *App) PollingCollector() *collector.PollingCollector {
	client := brightdata.NewClient(
		httpclient.New(httpclient.Config{Timeout: a.Config.Polling.RequestTimeout}),
		brightdata.Config{
			TriggerURL:      a.Config.Polling.TriggerURL,
			SnapshotBaseURL: a.Config.Polling.SnapshotBaseURL,
			APIToken:        a.Config.Polling.APIToken,
		},
	)
	return collector.NewPollingCollector(client, a.Sink, PollingOptions(a.Config))
}

func (a *App) Collectors() []collector.Collector {
	return []collector.Collector{a.RenderingCollector(), a.PollingCollector()}
}

// Schedules maps collector names to their cron specs.
func (a *App) Schedules() map[string]string {
	return map[string]string{
		collector.RenderCollectorName: a.Config.Schedule.Render,
		collector.PollCollectorName:   a.Config.Schedule.Poll,
	}
}

// LogDryRun prints the memory sheet after a run on the memory backend.
func (a *App) LogDryRun() {
	if a.Memory == nil {
		return
	}
	wb := a.Memory.Workbook(a.Config.Sink.Workbook)
	if wb == nil {
		return
	}
	sh := wb.MemorySheet(a.Config.Sink.Sheet)
	if sh == nil {
		return
	}
	for i, row := range sh.Rows() {
		logger.InfoWithFields("dry run row", logger.Fields{"row": i + 1, "values": row})
	}
}
