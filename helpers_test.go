package endpointfetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Shared test doubles for the pipeline tests. No network involved; tests
// that want a real server use httptest directly.

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:     http.Header{"Content-Type": []string{contentTypeJSON}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func stubTransport(status int, body string) Transport {
	return func(ctx context.Context, url string, opts *RequestOptions) (*http.Response, error) {
		return jsonResponse(status, body), nil
	}
}

// countingTransport records every call and replays a fixed script of
// responses (the last entry repeats once the script runs out).
type countingTransport struct {
	mu       sync.Mutex
	calls    int
	lastURL  string
	lastOpts *RequestOptions

	statuses []int
	bodies   []string
	errs     []error
}

func newCountingTransport(status int, body string) *countingTransport {
	return &countingTransport{statuses: []int{status}, bodies: []string{body}}
}

func (t *countingTransport) transport(ctx context.Context, url string, opts *RequestOptions) (*http.Response, error) {
	t.mu.Lock()
	i := t.calls
	t.calls++
	t.lastURL = url
	t.lastOpts = opts
	t.mu.Unlock()

	if i >= len(t.statuses) {
		i = len(t.statuses) - 1
	}
	if i < len(t.errs) && t.errs[i] != nil {
		return nil, t.errs[i]
	}
	return jsonResponse(t.statuses[i], t.bodies[i]), nil
}

func (t *countingTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// recordLogger captures log lines for assertions.
type recordLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordLogger) log(level, msg string) {
	l.mu.Lock()
	l.lines = append(l.lines, level+" "+msg)
	l.mu.Unlock()
}

func (l *recordLogger) Debug(msg string, keysAndValues ...any) { l.log("DEBUG", msg) }
func (l *recordLogger) Info(msg string, keysAndValues ...any)  { l.log("INFO", msg) }
func (l *recordLogger) Warn(msg string, keysAndValues ...any)  { l.log("WARN", msg) }
func (l *recordLogger) Error(msg string, keysAndValues ...any) { l.log("ERROR", msg) }

func (l *recordLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}
