package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAgentPool(t *testing.T) {
	custom := "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/150.0.0.0 Safari/537.36"

	tests := []struct {
		name   string
		agents []string
		want   []string
	}{
		{name: "nil falls back", agents: nil, want: defaultUserAgents},
		{name: "blanks fall back", agents: []string{"", "  "}, want: defaultUserAgents},
		{name: "configured list replaces defaults", agents: []string{" " + custom + " ", ""}, want: []string{custom}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pool := NewUserAgentPool(tc.agents)
			for i := 0; i < 20; i++ {
				assert.Contains(t, tc.want, pool.Pick())
			}
		})
	}
}

func TestAllocatorOptionsAppendExecPath(t *testing.T) {
	withPath := NewChromeBrowser(ChromeOptions{ExecPath: "/usr/bin/chromium", Headless: true})
	withoutPath := NewChromeBrowser(ChromeOptions{Headless: true})

	assert.Len(t, withPath.allocatorOptions("ua"), len(withoutPath.allocatorOptions("ua"))+1)
}
