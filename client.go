package endpointfetcher

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Client is a callable surface built from a declarative tree of endpoint
// and group descriptors. Construction happens once, synchronously, in New;
// the built tree, the merged hook sets and the plugin registrations are
// immutable afterward, so concurrent in-flight calls need no
// synchronization.
type Client struct {
	*Namespace

	baseURL       string
	transport     Transport
	httpClient    *http.Client
	headers       http.Header
	hooks         *Hooks
	plugins       []*Plugin
	pluginMethods map[string]MethodMap
	logger        Logger
	debug         *DebugConfig
	metrics       *MetricsCollector
}

// Namespace is one level of the built client, mirroring the definitions
// tree: groups become nested namespaces, endpoints become CallFuncs.
type Namespace struct {
	groups    map[string]*Namespace
	endpoints map[string]CallFunc
}

// New builds a client from the definitions tree using the provided
// functional options. It returns a BuildError (or ErrDuplicateIdentity) for
// invalid configuration, an invalid tree, or colliding plugin identities.
func New(defs Definitions, options ...Option) (*Client, error) {
	c := &Client{
		headers: make(http.Header),
		debug:   DefaultDebugConfig(),
	}
	for _, option := range options {
		option(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(c.httpClient)
	}

	if err := c.validateConfiguration(); err != nil {
		return nil, err
	}

	set, err := composePlugins(c.plugins)
	if err != nil {
		return nil, err
	}
	c.pluginMethods = set.methods

	root, err := c.buildNamespace("", defs, set, nil)
	if err != nil {
		return nil, err
	}
	c.Namespace = root
	return c, nil
}

// Plugins returns the methods exposed by registered plugins, keyed by
// plugin identity. It is nil when no plugin defines any methods.
func (c *Client) Plugins() map[string]MethodMap {
	return c.pluginMethods
}

// BaseURL returns the configured base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) buildNamespace(prefix string, defs Definitions, set *pluginSet, ancestors []*Hooks) (*Namespace, error) {
	ns := &Namespace{
		groups:    make(map[string]*Namespace),
		endpoints: make(map[string]CallFunc),
	}
	for name, def := range defs {
		key := joinKey(prefix, name)
		switch d := def.(type) {
		case *Endpoint:
			fn, err := c.buildCall(key, d, set, ancestors)
			if err != nil {
				return nil, err
			}
			ns.endpoints[name] = fn
		case *Group:
			sub, err := c.buildGroup(key, d, set, ancestors)
			if err != nil {
				return nil, err
			}
			ns.groups[name] = sub
		case nil:
			return nil, &BuildError{Message: fmt.Sprintf("definition %q is nil", key)}
		default:
			return nil, &BuildError{Message: fmt.Sprintf("definition %q has unknown type %T", key, def)}
		}
	}
	return ns, nil
}

func (c *Client) buildGroup(key string, g *Group, set *pluginSet, ancestors []*Hooks) (*Namespace, error) {
	if g == nil {
		return nil, &BuildError{Message: fmt.Sprintf("group %q is nil", key)}
	}

	// Extend the ancestor chain without aliasing the slice shared with
	// sibling groups.
	chain := ancestors
	if g.Hooks != nil {
		chain = append(append([]*Hooks(nil), ancestors...), g.Hooks)
	}

	ns := &Namespace{
		groups:    make(map[string]*Namespace),
		endpoints: make(map[string]CallFunc),
	}
	for name, ep := range g.Endpoints {
		fn, err := c.buildCall(joinKey(key, name), ep, set, chain)
		if err != nil {
			return nil, err
		}
		ns.endpoints[name] = fn
	}
	for name, sub := range g.Groups {
		if _, taken := ns.endpoints[name]; taken {
			return nil, &BuildError{Message: fmt.Sprintf("group %q collides with endpoint of the same name under %q", name, key)}
		}
		built, err := c.buildGroup(joinKey(key, name), sub, set, chain)
		if err != nil {
			return nil, err
		}
		ns.groups[name] = built
	}
	return ns, nil
}

// buildCall assembles one endpoint leaf: merge the hook chain, enhance the
// transport once, pick the base executor, fold the plugin wrappers over it,
// and close over it all in a CallFunc.
func (c *Client) buildCall(key string, ep *Endpoint, set *pluginSet, ancestors []*Hooks) (CallFunc, error) {
	if ep == nil {
		return nil, &BuildError{Message: fmt.Sprintf("endpoint %q is nil", key)}
	}
	method := strings.ToUpper(ep.Method)
	if method == "" {
		return nil, &BuildError{Message: fmt.Sprintf("endpoint %q has no method", key)}
	}
	if ep.Path == "" && ep.PathFunc == nil {
		return nil, &BuildError{Message: fmt.Sprintf("endpoint %q has neither path nor path function", key)}
	}
	if ep.Path != "" && ep.PathFunc != nil {
		return nil, &BuildError{Message: fmt.Sprintf("endpoint %q has both path and path function", key)}
	}

	// Merge order: plugin hooks outermost, then the global set, then the
	// ancestor group sets outer to inner, then the endpoint's own set.
	sources := make([]*Hooks, 0, len(set.hooks)+len(ancestors)+2)
	sources = append(sources, set.hooks...)
	sources = append(sources, c.hooks)
	sources = append(sources, ancestors...)
	sources = append(sources, ep.Hooks)
	merged := MergeHooks(sources...)

	enhanced := EnhanceTransport(c.transport, merged)

	var base HandlerFunc
	if ep.Handler != nil {
		base = ep.Handler
	} else {
		base = func(ctx context.Context, call *CallContext) (any, error) {
			return c.executeDefault(ctx, call, merged)
		}
	}
	handler := applyHandlerWrappers(base, set.wrappers)

	return func(ctx context.Context, input any) (any, error) {
		call := &CallContext{
			Input:     input,
			Transport: enhanced,
			Method:    method,
			Path:      ep.resolvePath(input),
			BaseURL:   c.baseURL,
		}

		start := time.Now()
		var requestID string
		if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen != nil {
			requestID = c.debug.RequestIDGen()
		}
		if c.debug != nil && c.debug.Enabled && c.debug.LogCalls && c.logger != nil {
			c.logger.Debug("starting call", "requestID", requestID, "endpoint", key, "method", method, "path", call.Path)
		}
		if c.metrics != nil {
			c.metrics.RecordCallStart(key, method)
		}

		out, err := handler(ctx, call)

		if c.metrics != nil {
			c.metrics.RecordCallEnd(key, method)
			c.metrics.RecordCall(key, method, err, time.Since(start))
		}
		if err != nil {
			if c.debug != nil && c.debug.Enabled && c.debug.LogFailures && c.logger != nil {
				c.logger.Warn("call failed", "requestID", requestID, "endpoint", key, "error", err.Error())
			}
			return nil, err
		}
		if c.debug != nil && c.debug.Enabled && c.debug.LogCalls && c.logger != nil {
			c.logger.Debug("call finished", "requestID", requestID, "endpoint", key, "duration", time.Since(start))
		}
		return out, nil
	}, nil
}

func joinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// Group returns the nested namespace registered under name, or nil if
// absent. Namespace methods tolerate a nil receiver, so lookups chain:
//
//	client.Group("admin").Group("users").Call(ctx, "create", input)
func (n *Namespace) Group(name string) *Namespace {
	if n == nil {
		return nil
	}
	return n.groups[name]
}

// Endpoint returns the CallFunc registered under name. For an unknown name
// (or a nil namespace from a failed Group lookup) it returns a CallFunc
// that fails with ErrUnknownEndpoint, keeping chained access panic-free.
func (n *Namespace) Endpoint(name string) CallFunc {
	if n != nil {
		if fn, ok := n.endpoints[name]; ok {
			return fn
		}
	}
	return func(context.Context, any) (any, error) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEndpoint, name)
	}
}

// Call invokes the named endpoint in this namespace.
func (n *Namespace) Call(ctx context.Context, name string, input any) (any, error) {
	return n.Endpoint(name)(ctx, input)
}

// Endpoints lists the endpoint names in this namespace, sorted.
func (n *Namespace) Endpoints() []string {
	if n == nil {
		return nil
	}
	names := make([]string, 0, len(n.endpoints))
	for name := range n.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Groups lists the sub-group names in this namespace, sorted.
func (n *Namespace) Groups() []string {
	if n == nil {
		return nil
	}
	names := make([]string, 0, len(n.groups))
	for name := range n.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
