package endpointfetcher

import (
	"context"
	"net/http"
)

// LoggingPlugin returns a plugin that logs the request lifecycle through
// the given logger: one debug line before the transport, one after, and a
// warn line on failure. Remember that hooks fire twice per default-executed
// call, so expect doubled lines on those endpoints.
func LoggingPlugin(logger Logger) *Plugin {
	return &Plugin{
		Identity: "logging",
		Hooks: &Hooks{
			PreCall: func(ctx context.Context, url string, opts *RequestOptions) (string, *RequestOptions, error) {
				method := ""
				if opts != nil {
					method = opts.Method
				}
				logger.Debug("request", "method", method, "url", url)
				return url, opts, nil
			},
			PostCall: func(ctx context.Context, resp *http.Response, url string, opts *RequestOptions) (*http.Response, error) {
				logger.Debug("response", "url", url, "status", resp.StatusCode)
				return resp, nil
			},
			OnError: func(ctx context.Context, err error) {
				logger.Warn("request error", "error", err.Error())
			},
		},
	}
}
