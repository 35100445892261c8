package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forum-harvest/config"
	"forum-harvest/models"
)

func memoryConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("BRIGHTDATA_API_TOKEN", "")
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	cfg.Sink.Backend = config.BackendMemory
	return cfg
}

func TestNewMemoryBackend(t *testing.T) {
	cfg := memoryConfig(t)
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close(context.Background())

	require.NotNil(t, a.Memory)
	sh, err := a.Sink.ResolveOrCreateSheet(context.Background(), cfg.Sink.Workbook, cfg.Sink.Sheet)
	require.NoError(t, err)

	_, err = a.Sink.AppendRecords(context.Background(), sh, []models.PostRecord{{Text: "q"}})
	require.NoError(t, err)
	assert.NotPanics(t, a.LogDryRun)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Sink.Backend = "csv"
	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "csv")
}

func TestCollectorsAndSchedules(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Schedule.Poll = "@daily"
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)

	var names []string
	for _, c := range a.Collectors() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"render", "poll"}, names)
	assert.Equal(t, map[string]string{"render": "", "poll": "@daily"}, a.Schedules())
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Rendering.MaxScrolls = 7
	cfg.Rendering.UserAgents = []string{"Mozilla/5.0 test-agent"}

	r := RenderingOptions(cfg)
	assert.Equal(t, "Home Buyer Concerns", r.Target.Workbook)
	assert.Equal(t, "Reddit AusPropertyChat Data", r.Target.Sheet)
	assert.Equal(t, 30*time.Second, r.NavigationTimeout)
	assert.Equal(t, 7, r.MaxScrolls)
	assert.Equal(t, "/r/ausproperty/", r.LinkRewrite.From)
	assert.Equal(t, 14, r.WindowDays)
	assert.Equal(t, []string{"Mozilla/5.0 test-agent"}, r.UserAgents)

	p := PollingOptions(cfg)
	assert.Equal(t, "New", p.SortBy)
	assert.Equal(t, 30*time.Second, p.Poll.Backoff.Initial)
	assert.Equal(t, 10*time.Minute, p.Poll.Backoff.Max)
	assert.Equal(t, 2*time.Hour, p.Poll.MaxWait)

	assert.Equal(t, 3, RetryPolicy(cfg).Attempts)
}
