package endpointfetcher

import (
	"context"
	"net/http"
)

// BearerAuthPlugin returns a plugin that sets an Authorization bearer
// header on every request through a pre-call hook.
func BearerAuthPlugin(token string) *Plugin {
	return headerPlugin("auth", "Authorization", "Bearer "+token)
}

// APIKeyAuthPlugin returns a plugin that sets a static API key header on
// every request.
func APIKeyAuthPlugin(header, key string) *Plugin {
	return headerPlugin("apikey", header, key)
}

func headerPlugin(identity, name, value string) *Plugin {
	return &Plugin{
		Identity: identity,
		Hooks: &Hooks{
			PreCall: func(ctx context.Context, url string, opts *RequestOptions) (string, *RequestOptions, error) {
				if opts == nil {
					opts = &RequestOptions{Method: http.MethodGet}
				}
				if opts.Header == nil {
					opts.Header = make(http.Header)
				}
				opts.Header.Set(name, value)
				return url, opts, nil
			},
		},
	}
}
