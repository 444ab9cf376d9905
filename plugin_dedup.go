package endpointfetcher

import (
	"context"
	"net/http"
	"sync"
)

// inflightCall carries the shared result of one deduplicated execution.
type inflightCall struct {
	wg  sync.WaitGroup
	out any
	err error
}

// dedupGroup merges concurrent identical calls: the first caller for a key
// runs the work, later callers wait for and share its result. Once the
// owner finishes the key is released, so sequential calls each run.
type dedupGroup struct {
	mu       sync.Mutex
	inflight map[string]*inflightCall
}

func newDedupGroup() *dedupGroup {
	return &dedupGroup{inflight: make(map[string]*inflightCall)}
}

func (g *dedupGroup) do(key string, fn func() (any, error)) (any, error) {
	g.mu.Lock()
	if c, ok := g.inflight[key]; ok {
		g.mu.Unlock()
		c.wg.Wait()
		return c.out, c.err
	}
	c := &inflightCall{}
	c.wg.Add(1)
	g.inflight[key] = c
	g.mu.Unlock()

	c.out, c.err = fn()

	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()
	c.wg.Done()

	return c.out, c.err
}

// DedupConfig configures DedupPlugin.
type DedupConfig struct {
	// KeyFunc derives the deduplication key. An empty key opts the call
	// out. Default: DefaultCacheKeyFunc.
	KeyFunc func(call *CallContext) string
	// Condition decides which calls participate. Default: GET only.
	Condition func(call *CallContext) bool
}

// DedupPlugin returns a plugin whose handler wrapper merges concurrent
// identical in-flight calls so the transport runs once and every caller
// shares the same output and error.
func DedupPlugin(cfg DedupConfig) *Plugin {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = DefaultCacheKeyFunc
	}
	if cfg.Condition == nil {
		cfg.Condition = func(call *CallContext) bool { return call.Method == http.MethodGet }
	}

	group := newDedupGroup()

	return &Plugin{
		Identity: "dedup",
		HandlerWrapper: func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, call *CallContext) (any, error) {
				if !cfg.Condition(call) {
					return next(ctx, call)
				}
				key := cfg.KeyFunc(call)
				if key == "" {
					return next(ctx, call)
				}
				return group.do(key, func() (any, error) {
					return next(ctx, call)
				})
			}
		},
	}
}
