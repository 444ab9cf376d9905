package endpointfetcher

import (
	"fmt"
	"net/http"
	"net/url"
)

// WithBaseURL sets the base address joined with endpoint paths by the
// default executor.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithTransport sets a custom transport function. It replaces the default
// net/http backed transport entirely.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithHTTPClient sets the *http.Client backing the default transport. It is
// ignored when WithTransport is also given.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithHeader adds a default header sent on every default-executed request.
func WithHeader(name, value string) Option {
	return func(c *Client) {
		c.headers.Add(name, value)
	}
}

// WithHeaders merges a header set into the default headers.
func WithHeaders(headers http.Header) Option {
	return func(c *Client) {
		for name, values := range headers {
			for _, v := range values {
				c.headers.Add(name, v)
			}
		}
	}
}

// WithHooks sets the global hook set, merged after plugin hooks and before
// group and endpoint hooks on every endpoint.
func WithHooks(hooks *Hooks) Option {
	return func(c *Client) {
		c.hooks = hooks
	}
}

// WithPlugins registers plugins in order. Registration order decides hook
// merge order and wrapper nesting.
func WithPlugins(plugins ...*Plugin) Option {
	return func(c *Client) {
		c.plugins = append(c.plugins, plugins...)
	}
}

// WithLogger sets a custom logger for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSimpleLogger enables debug logging with a console logger.
func WithSimpleLogger() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewSimpleLogger()
	}
}

// WithDebug enables debug logging with the default configuration.
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets a custom debug configuration.
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs.
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.RequestIDGen = gen
	}
}

// WithMetrics enables Prometheus metrics collection on the default
// registerer.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// validateConfiguration aggregates per-section validation. Definitions are
// validated separately during the tree walk.
func (c *Client) validateConfiguration() error {
	var problems []string
	problems = append(problems, c.validateBaseURLConfig()...)
	problems = append(problems, c.validateTransportConfig()...)
	problems = append(problems, c.validateDebugConfig()...)

	if len(problems) > 0 {
		return &BuildError{
			Message: "configuration validation failed",
			Cause:   fmt.Errorf("validation errors: %v", problems),
		}
	}
	return nil
}

func (c *Client) validateBaseURLConfig() []string {
	var problems []string

	// An empty base is allowed: custom handlers and custom transports may
	// not need one. A non-empty base must parse.
	if c.baseURL != "" {
		if _, err := url.Parse(c.baseURL); err != nil {
			problems = append(problems, fmt.Sprintf("baseURL is not a valid URL: %v", err))
		}
	}
	return problems
}

func (c *Client) validateTransportConfig() []string {
	var problems []string

	if c.transport == nil {
		problems = append(problems, "transport cannot be nil")
	}
	return problems
}

func (c *Client) validateDebugConfig() []string {
	var problems []string

	if c.debug != nil && c.debug.Enabled {
		if c.debug.RequestIDGen == nil {
			problems = append(problems, "debug RequestIDGen must be set when debug is enabled")
		}
		if c.logger == nil {
			problems = append(problems, "logger must be set when debug is enabled")
		}
	}
	return problems
}
