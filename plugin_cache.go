package endpointfetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// CacheConfig configures CachePlugin.
type CacheConfig struct {
	// TTL is how long a cached output stays valid. Default 5 minutes.
	TTL time.Duration
	// KeyFunc derives the cache key for a call. An empty key skips caching
	// for that call. Default: DefaultCacheKeyFunc.
	KeyFunc func(call *CallContext) string
	// Condition decides whether a call participates in caching at all.
	// Default: DefaultCacheCondition (GET only).
	Condition func(call *CallContext) bool
}

// DefaultCacheKeyFunc keys a call by method, full URL and JSON-encoded
// input. An unencodable input disables caching for that call.
func DefaultCacheKeyFunc(call *CallContext) string {
	input, err := json.Marshal(call.Input)
	if err != nil {
		return ""
	}
	return call.Method + " " + buildURL(call.Path, call.BaseURL) + " " + string(input)
}

// DefaultCacheCondition caches GET calls only.
func DefaultCacheCondition(call *CallContext) bool {
	return call.Method == http.MethodGet
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

type callCache struct {
	mu    sync.RWMutex
	store map[string]*cacheEntry
}

func newCallCache() *callCache {
	return &callCache{store: make(map[string]*cacheEntry)}
}

func (c *callCache) get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		if e, still := c.store[key]; still && e == entry {
			delete(c.store, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

func (c *callCache) set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.store[key] = &cacheEntry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *callCache) delete(key string) {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
}

func (c *callCache) clear() {
	c.mu.Lock()
	c.store = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

func (c *callCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// CachePlugin returns a plugin whose handler wrapper serves repeated calls
// from an in-memory TTL cache. Only successful outputs are stored. The
// plugin exposes three methods on the built client under identity "cache":
//
//	"invalidate": drop one key (first argument, string)
//	"clear":      drop everything
//	"size":       current entry count
func CachePlugin(cfg CacheConfig) *Plugin {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = DefaultCacheKeyFunc
	}
	if cfg.Condition == nil {
		cfg.Condition = DefaultCacheCondition
	}

	cache := newCallCache()

	return &Plugin{
		Identity: "cache",
		HandlerWrapper: func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, call *CallContext) (any, error) {
				if !cfg.Condition(call) {
					return next(ctx, call)
				}
				key := cfg.KeyFunc(call)
				if key == "" {
					return next(ctx, call)
				}
				if value, ok := cache.get(key); ok {
					return value, nil
				}
				out, err := next(ctx, call)
				if err != nil {
					return nil, err
				}
				cache.set(key, out, cfg.TTL)
				return out, nil
			}
		},
		Methods: MethodMap{
			"invalidate": func(ctx context.Context, args ...any) (any, error) {
				if len(args) != 1 {
					return nil, fmt.Errorf("endpointfetcher: cache invalidate wants 1 argument, got %d", len(args))
				}
				key, ok := args[0].(string)
				if !ok {
					return nil, fmt.Errorf("endpointfetcher: cache invalidate wants a string key, got %T", args[0])
				}
				cache.delete(key)
				return nil, nil
			},
			"clear": func(ctx context.Context, args ...any) (any, error) {
				cache.clear()
				return nil, nil
			},
			"size": func(ctx context.Context, args ...any) (any, error) {
				return cache.size(), nil
			},
		},
	}
}
