package reelserver

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_reels/internal/discovery"
	"github.com/anatolykoptev/go_reels/internal/engine"
	"github.com/anatolykoptev/go_reels/internal/store"
)

// Runner executes one discovery run. *discovery.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, keyword string, opts discovery.RunOptions) (*discovery.Result, error)
}

// Deps are the collaborators of the MCP tools. Store and Cache are optional.
type Deps struct {
	Runner Runner
	Store  store.Backend
	Cache  *engine.Cache
	Now    func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// RegisterTools registers creator_discovery and discovery_history on the server.
func RegisterTools(server *mcp.Server, deps Deps) {
	registerCreatorDiscovery(server, deps)
	registerDiscoveryHistory(server, deps)
}
