package renderer

import (
	"math/rand/v2"
	"strings"
)

// defaultUserAgents is the fallback pool, current as of Chrome 141, Edge 141,
// Safari 26 and Firefox 144. Deployments override it with rendering.user_agents
// so a stale release does not require a rebuild.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36 Edg/141.0.0.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/26.0 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:144.0) Gecko/20100101 Firefox/144.0",
	"Mozilla/5.0 (X11; Linux x86_64; rv:144.0) Gecko/20100101 Firefox/144.0",
}

// UserAgentPool hands out a random browser identity per page.
type UserAgentPool struct {
	agents []string
}

// NewUserAgentPool uses agents, ignoring blank entries, or the built-in pool
// when nothing usable is given.
func NewUserAgentPool(agents []string) *UserAgentPool {
	var cleaned []string
	for _, a := range agents {
		if a = strings.TrimSpace(a); a != "" {
			cleaned = append(cleaned, a)
		}
	}
	if len(cleaned) == 0 {
		cleaned = defaultUserAgents
	}
	return &UserAgentPool{agents: cleaned}
}

// Pick returns one identity from the pool.
func (p *UserAgentPool) Pick() string {
	return p.agents[rand.IntN(len(p.agents))]
}
