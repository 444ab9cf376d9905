package endpointfetcher

import (
	"context"
	"net/http"
)

// Transport issues a single HTTP exchange. The default implementation is
// backed by *http.Client (see NewHTTPTransport); tests and callers may
// substitute any function with this shape via WithTransport.
type Transport func(ctx context.Context, url string, opts *RequestOptions) (*http.Response, error)

// RequestOptions carries everything a Transport needs besides the URL.
// Hooks receive and may replace it before the transport runs.
type RequestOptions struct {
	Method string
	Header http.Header
	Body   []byte
}

// Clone returns a deep copy so a hook can modify options without mutating
// what sibling layers observe.
func (o *RequestOptions) Clone() *RequestOptions {
	if o == nil {
		return nil
	}
	c := &RequestOptions{Method: o.Method}
	if o.Header != nil {
		c.Header = o.Header.Clone()
	}
	if o.Body != nil {
		c.Body = append([]byte(nil), o.Body...)
	}
	return c
}

// PreCallHook runs before the transport. It receives the outgoing URL and
// options and returns the (possibly replaced) pair the next layer uses.
type PreCallHook func(ctx context.Context, url string, opts *RequestOptions) (string, *RequestOptions, error)

// PostCallHook runs after a successful transport call and may replace the
// response the caller sees.
type PostCallHook func(ctx context.Context, resp *http.Response, url string, opts *RequestOptions) (*http.Response, error)

// ErrorHook observes a transport or pre-call failure. It has no return
// value: an observer cannot replace or suppress the original error, and any
// failure handling belongs inside the hook itself.
type ErrorHook func(ctx context.Context, err error)

// Hooks bundles the three optional interceptor callbacks of the request
// pipeline. A nil field means "nothing to do" for that kind.
type Hooks struct {
	PreCall  PreCallHook
	PostCall PostCallHook
	OnError  ErrorHook
}

// CallFunc is a built endpoint: input in, decoded output out.
type CallFunc func(ctx context.Context, input any) (any, error)

// CallContext is handed to custom handlers and handler wrappers. Transport
// is already enhanced with the endpoint's merged hook set.
type CallContext struct {
	Input     any
	Transport Transport
	Method    string
	Path      string
	BaseURL   string
}

// HandlerFunc executes one call given its assembled context.
type HandlerFunc func(ctx context.Context, call *CallContext) (any, error)

// HandlerWrapper transforms one call executor into another. Plugins use it
// for cross-cutting behavior around the whole call (retries, caching, ...).
type HandlerWrapper func(next HandlerFunc) HandlerFunc

// PluginMethod is an operation a plugin exposes on the built client under
// its identity, e.g. a cache plugin's "invalidate".
type PluginMethod func(ctx context.Context, args ...any) (any, error)

// MethodMap holds a plugin's exposed methods keyed by name.
type MethodMap map[string]PluginMethod

// Option represents a configuration option.
type Option func(*Client)
