package endpointfetcher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const contentTypeJSON = "application/json"

// buildURL joins the base address and a path, stripping at most one
// trailing slash from the base and ensuring exactly one leading slash on
// the path.
func buildURL(path, base string) string {
	base = strings.TrimSuffix(base, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// executeDefault is the built-in request issuer used when an endpoint has
// no custom handler: build the URL, encode the body, issue the request,
// check the status, decode the body.
//
// call.Transport is already enhanced with the merged hook set; the executor
// wraps it with the same set again, so every hook fires twice per
// default-executed call. That double application is a deliberate contract
// of the pipeline, relied on by callers that count hook invocations.
func (c *Client) executeDefault(ctx context.Context, call *CallContext, merged *Hooks) (any, error) {
	url := buildURL(call.Path, call.BaseURL)

	opts := &RequestOptions{
		Method: call.Method,
		Header: make(http.Header),
	}
	for name, values := range c.headers {
		for _, v := range values {
			opts.Header.Add(name, v)
		}
	}
	opts.Header.Set("Content-Type", contentTypeJSON)

	if call.Input != nil && call.Method != http.MethodGet && call.Method != http.MethodDelete {
		body, err := json.Marshal(call.Input)
		if err != nil {
			return nil, err
		}
		opts.Body = body
	}

	transport := EnhanceTransport(call.Transport, merged)
	resp, err := transport(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var decoded any = map[string]any{}
		if len(body) > 0 {
			var v any
			if json.Unmarshal(body, &v) == nil {
				decoded = v
			}
		}
		return nil, &RequestError{
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			Err:        decoded,
		}
	}

	if len(body) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func statusText(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// As re-decodes the dynamic output of a call into a typed value.
//
//	out, err := client.Call(ctx, "getUser", nil)
//	user, err := endpointfetcher.As[User](out)
func As[T any](v any) (T, error) {
	var out T
	if v == nil {
		return out, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, err
	}
	return out, nil
}
