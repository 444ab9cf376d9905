package endpointfetcher

import (
	"context"
	"time"
)

// MetricsPlugin returns a plugin whose handler wrapper records call
// outcomes and durations on the given collector, labelled by method and
// path. Unlike WithMetrics, which observes the whole call including every
// other wrapper, this plugin measures exactly the layers registered after
// it.
func MetricsPlugin(collector *MetricsCollector) *Plugin {
	return &Plugin{
		Identity: "metrics",
		HandlerWrapper: func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, call *CallContext) (any, error) {
				endpoint := call.Method + " " + call.Path
				collector.RecordCallStart(endpoint, call.Method)
				start := time.Now()
				out, err := next(ctx, call)
				collector.RecordCallEnd(endpoint, call.Method)
				collector.RecordCall(endpoint, call.Method, err, time.Since(start))
				return out, err
			}
		},
	}
}
