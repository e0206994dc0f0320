// Package toolregistry holds the tools exposed to the model and dispatches
// calls to them. Read-only tools get an LRU result cache so repeated searches
// within a conversation do not hammer the restaurant API.
package toolregistry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"bitebot/internal/agent/ports"
	"bitebot/internal/utils"
)

// Registry implements ports.ToolRegistry.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]ports.ToolExecutor
	logger *utils.Logger
}

// New builds a registry over the given tools. Read-only tools are wrapped
// with the default result cache; duplicate names are an error.
func New(toolList []ports.ToolExecutor) (*Registry, error) {
	r := &Registry{
		tools:  make(map[string]ports.ToolExecutor, len(toolList)),
		logger: utils.NewComponentLogger("ToolRegistry"),
	}
	for _, tool := range toolList {
		if err := r.Register(tool); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool, wrapping read-only tools with the result cache.
func (r *Registry) Register(tool ports.ToolExecutor) error {
	meta := tool.Metadata()
	if meta.Name == "" {
		return fmt.Errorf("tool has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[meta.Name]; exists {
		return fmt.Errorf("tool already registered: %s", meta.Name)
	}
	if meta.ReadOnly {
		tool = NewCacheExecutor(tool, DefaultCacheConfig())
	}
	r.tools[meta.Name] = tool
	r.logger.Debug("Registered tool: %s (read-only: %v)", meta.Name, meta.ReadOnly)
	return nil
}

func (r *Registry) Get(name string) (ports.ToolExecutor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if tool, ok := r.tools[name]; ok {
		return tool, nil
	}
	return nil, fmt.Errorf("tool not found: %s", name)
}

// List returns definitions in a stable order for prompt construction.
func (r *Registry) List() []ports.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]ports.ToolDefinition, 0, len(names))
	for _, name := range names {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Execute dispatches a call to the named tool.
func (r *Registry) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	tool, err := r.Get(call.Name)
	if err != nil {
		return nil, err
	}
	return tool.Execute(ctx, call)
}

var _ ports.ToolRegistry = (*Registry)(nil)
