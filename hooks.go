package endpointfetcher

import (
	"context"
	"net/http"
)

// MergeHooks folds an ordered list of optional hook sets into one.
//
// Ordering rules per kind:
//   - PreCall threads (url, opts) through defining sources in the given
//     order; each consumes the previous result.
//   - PostCall threads the response through defining sources in the reverse
//     order, so the most specific layer unwinds first.
//   - OnError invokes every defining source sequentially in the given
//     order; a sibling's behavior never skips the rest.
//
// A kind defined by no source stays nil in the result. If no source defines
// any hook, MergeHooks returns nil.
func MergeHooks(sources ...*Hooks) *Hooks {
	var pres []PreCallHook
	var posts []PostCallHook
	var errHooks []ErrorHook

	for _, s := range sources {
		if s == nil {
			continue
		}
		if s.PreCall != nil {
			pres = append(pres, s.PreCall)
		}
		if s.PostCall != nil {
			posts = append(posts, s.PostCall)
		}
		if s.OnError != nil {
			errHooks = append(errHooks, s.OnError)
		}
	}

	if len(pres) == 0 && len(posts) == 0 && len(errHooks) == 0 {
		return nil
	}

	merged := &Hooks{}
	if len(pres) > 0 {
		merged.PreCall = chainPreCall(pres)
	}
	if len(posts) > 0 {
		merged.PostCall = chainPostCall(posts)
	}
	if len(errHooks) > 0 {
		merged.OnError = chainOnError(errHooks)
	}
	return merged
}

func chainPreCall(hooks []PreCallHook) PreCallHook {
	if len(hooks) == 1 {
		return hooks[0]
	}
	return func(ctx context.Context, url string, opts *RequestOptions) (string, *RequestOptions, error) {
		var err error
		for _, h := range hooks {
			url, opts, err = h(ctx, url, opts)
			if err != nil {
				return "", nil, err
			}
		}
		return url, opts, nil
	}
}

func chainPostCall(hooks []PostCallHook) PostCallHook {
	if len(hooks) == 1 {
		return hooks[0]
	}
	return func(ctx context.Context, resp *http.Response, url string, opts *RequestOptions) (*http.Response, error) {
		var err error
		for i := len(hooks) - 1; i >= 0; i-- {
			resp, err = hooks[i](ctx, resp, url, opts)
			if err != nil {
				return nil, err
			}
		}
		return resp, nil
	}
}

func chainOnError(hooks []ErrorHook) ErrorHook {
	if len(hooks) == 1 {
		return hooks[0]
	}
	return func(ctx context.Context, err error) {
		for _, h := range hooks {
			h(ctx, err)
		}
	}
}
