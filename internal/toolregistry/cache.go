package toolregistry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"bitebot/internal/agent/ports"
)

const (
	defaultCacheMaxSize = 128
	defaultCacheTTL     = 2 * time.Minute
)

// CacheConfig configures the read-only tool result cache.
type CacheConfig struct {
	// MaxSize is the maximum number of entries in the LRU cache.
	MaxSize int
	// TTL is how long a cached result remains valid. Restaurant listings
	// change rarely; two minutes keeps a conversation snappy without
	// serving stale data across sessions.
	TTL time.Duration
}

// DefaultCacheConfig returns the cache defaults.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{MaxSize: defaultCacheMaxSize, TTL: defaultCacheTTL}
}

type cacheEntry struct {
	content  string
	metadata map[string]any
	storedAt time.Time
}

// cacheExecutor wraps a read-only tool with an LRU result cache keyed by
// tool name plus normalized arguments.
type cacheExecutor struct {
	delegate ports.ToolExecutor
	cache    *lru.Cache[string, cacheEntry]
	ttl      time.Duration
}

// NewCacheExecutor wraps delegate with an LRU result cache. Zero config
// values fall back to defaults.
func NewCacheExecutor(delegate ports.ToolExecutor, config CacheConfig) ports.ToolExecutor {
	if delegate == nil {
		return nil
	}
	if config.MaxSize <= 0 {
		config.MaxSize = defaultCacheMaxSize
	}
	if config.TTL <= 0 {
		config.TTL = defaultCacheTTL
	}
	cache, err := lru.New[string, cacheEntry](config.MaxSize)
	if err != nil {
		// lru.New only errors on non-positive size, guarded above.
		return delegate
	}
	return &cacheExecutor{delegate: delegate, cache: cache, ttl: config.TTL}
}

func (c *cacheExecutor) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	key := c.cacheKey(call)

	if entry, ok := c.cache.Get(key); ok {
		if time.Since(entry.storedAt) < c.ttl {
			return &ports.ToolResult{
				CallID:   call.ID,
				Content:  entry.content,
				Metadata: cloneMetadata(entry.metadata),
			}, nil
		}
		c.cache.Remove(key)
	}

	result, err := c.delegate.Execute(ctx, call)
	if err != nil {
		return result, err
	}
	// Error results are never cached.
	if result != nil && result.Error == nil {
		c.cache.Add(key, cacheEntry{
			content:  result.Content,
			metadata: cloneMetadata(result.Metadata),
			storedAt: time.Now(),
		})
	}
	return result, nil
}

func (c *cacheExecutor) Definition() ports.ToolDefinition {
	return c.delegate.Definition()
}

func (c *cacheExecutor) Metadata() ports.ToolMetadata {
	return c.delegate.Metadata()
}

func (c *cacheExecutor) cacheKey(call ports.ToolCall) string {
	name := call.Name
	if name == "" {
		name = c.delegate.Metadata().Name
	}
	return fmt.Sprintf("%s:%s", name, normalizeArgs(call.Arguments))
}

// normalizeArgs serializes arguments deterministically. json.Marshal sorts
// map keys, so nested maps only need converting to the same concrete type.
func normalizeArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(sortedMap(args))
	if err != nil {
		return "{}"
	}
	return string(data)
}

func sortedMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := m[k]
		if nested, ok := v.(map[string]any); ok {
			v = sortedMap(nested)
		}
		out[k] = v
	}
	return out
}

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

var _ ports.ToolExecutor = (*cacheExecutor)(nil)
