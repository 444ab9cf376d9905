package endpointfetcher

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

// NewHTTPTransport returns a Transport backed by the given *http.Client.
// A nil client gets a 30 second timeout default.
func NewHTTPTransport(client *http.Client) Transport {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return func(ctx context.Context, url string, opts *RequestOptions) (*http.Response, error) {
		if opts == nil {
			opts = &RequestOptions{Method: http.MethodGet}
		}
		var body io.Reader
		if len(opts.Body) > 0 {
			body = bytes.NewReader(opts.Body)
		}
		req, err := http.NewRequestWithContext(ctx, opts.Method, url, body)
		if err != nil {
			return nil, err
		}
		if opts.Header != nil {
			req.Header = opts.Header.Clone()
		}
		return client.Do(req)
	}
}

// EnhanceTransport wraps a transport with one hook set. Per call:
//
//  1. PreCall, if present, replaces the url/options pair.
//  2. The underlying transport runs at most once; no retry at this layer.
//  3. PostCall, if present, replaces the response on success.
//  4. A pre-call or transport failure runs OnError, then the original error
//     is returned unchanged. A PostCall failure propagates as-is without
//     invoking OnError.
//
// A nil hook set returns the transport untouched.
func EnhanceTransport(transport Transport, hooks *Hooks) Transport {
	if hooks == nil {
		return transport
	}
	return func(ctx context.Context, url string, opts *RequestOptions) (*http.Response, error) {
		if hooks.PreCall != nil {
			var err error
			url, opts, err = hooks.PreCall(ctx, url, opts)
			if err != nil {
				if hooks.OnError != nil {
					hooks.OnError(ctx, err)
				}
				return nil, err
			}
		}

		resp, err := transport(ctx, url, opts)
		if err != nil {
			if hooks.OnError != nil {
				hooks.OnError(ctx, err)
			}
			return nil, err
		}

		if hooks.PostCall != nil {
			resp, err = hooks.PostCall(ctx, resp, url, opts)
			if err != nil {
				return nil, err
			}
		}
		return resp, nil
	}
}
