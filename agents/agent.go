package agents

import (
	"context"

	"github.com/poiesic/intake/core"
)

// Agent maps raw input plus its classification into a normalized extraction
// record using static field rules. Implementations must be thread-safe for
// concurrent use.
type Agent interface {
	// Name identifies the agent in logs, stats, and agent history.
	Name() string

	// Process extracts a normalized record from the document.
	// Recoverable problems (unreachable model, thin content) degrade the
	// record rather than failing; an error is returned only when the agent
	// cannot produce a record at all (e.g. unparseable JSON).
	Process(ctx context.Context, doc *core.Document, classification core.Classification) (*core.Extraction, error)
}

// Registry routes document formats to their extraction agents.
// Formats without a registered agent fall back to the text agent.
type Registry struct {
	agents   map[core.DocFormat]Agent
	fallback Agent
}

// NewRegistry creates a registry with the given fallback agent.
func NewRegistry(fallback Agent) (*Registry, error) {
	if fallback == nil {
		return nil, ErrFallbackAgentRequired
	}
	return &Registry{
		agents:   make(map[core.DocFormat]Agent),
		fallback: fallback,
	}, nil
}

// Register associates an agent with a document format.
// Registering a second agent for the same format replaces the first.
func (r *Registry) Register(format core.DocFormat, agent Agent) {
	r.agents[format] = agent
}

// Select returns the agent responsible for the given format,
// or the fallback agent when none is registered.
func (r *Registry) Select(format core.DocFormat) Agent {
	if agent, ok := r.agents[format]; ok {
		return agent
	}
	return r.fallback
}
