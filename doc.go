// Package endpointfetcher builds a typed, callable client from a
// declarative tree of endpoint and group descriptors, letting cross-cutting
// behavior (auth, logging, retries, caching) be layered on via ordered hook
// chains and plugins without touching endpoint definitions.
//
//   - Declarative endpoint/group tree walked once at build time
//   - Hook sets (pre-call, post-call, on-error) merged with deterministic
//     directional ordering: plugins, global, ancestor groups, endpoint
//   - Enhanced transport applying one hook set around a single transport call
//   - Plugins contributing hook sets, handler wrappers and namespaced methods
//   - Built-in plugins: bearer/API-key auth, logging, retry with backoff,
//     TTL caching, token-bucket rate limiting, circuit breaking, in-flight
//     de-duplication
//   - Prometheus metrics and lightweight structured debug logging
//
// Typical usage:
//
//	client, err := endpointfetcher.New(endpointfetcher.Definitions{
//	    "users": &endpointfetcher.Group{
//	        Endpoints: map[string]*endpointfetcher.Endpoint{
//	            "list": {Method: "GET", Path: "/users"},
//	            "create": {Method: "POST", Path: "/users"},
//	        },
//	    },
//	},
//	    endpointfetcher.WithBaseURL("https://api.example.com"),
//	    endpointfetcher.WithPlugins(
//	        endpointfetcher.BearerAuthPlugin(token),
//	        endpointfetcher.RetryPlugin(endpointfetcher.RetryConfig{}),
//	    ),
//	)
//	out, err := client.Group("users").Call(ctx, "list", nil)
//
// The request pipeline itself never retries, caches or pools: those are
// plugin responsibilities. The only built-in branching is one status check
// in the default executor, raising a *RequestError for non-2xx responses.
//
// Note on hook counts: an endpoint without a custom handler runs every
// merged hook twice per call, once on the context-level enhanced transport
// and once inside the default executor. A custom handler that only uses the
// transport it is handed runs each hook once. This is a deliberate,
// relied-upon contract of the pipeline.
package endpointfetcher
