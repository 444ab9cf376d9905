package endpointfetcher

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestWithBaseURLAndHeaders(t *testing.T) {
	ct := newCountingTransport(200, "{}")
	client, err := New(Definitions{
		"get": &Endpoint{Method: "GET", Path: "/x"},
	},
		WithBaseURL("https://api.example.com/"),
		WithTransport(ct.transport),
		WithHeader("X-One", "1"),
		WithHeaders(http.Header{"X-Two": []string{"2"}}),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if client.BaseURL() != "https://api.example.com/" {
		t.Errorf("Unexpected base URL %q", client.BaseURL())
	}

	if _, err := client.Call(context.Background(), "get", nil); err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if got := ct.lastOpts.Header.Get("X-One"); got != "1" {
		t.Errorf("Expected X-One header, got %q", got)
	}
	if got := ct.lastOpts.Header.Get("X-Two"); got != "2" {
		t.Errorf("Expected X-Two header, got %q", got)
	}
}

func TestInvalidBaseURLFailsBuild(t *testing.T) {
	_, err := New(Definitions{
		"get": &Endpoint{Method: "GET", Path: "/x"},
	},
		WithBaseURL("://missing-scheme"),
		WithTransport(stubTransport(200, "{}")),
	)
	var be *BuildError
	if !errors.As(err, &be) {
		t.Fatalf("Expected BuildError, got %v", err)
	}
}

func TestDebugWithoutLoggerFailsBuild(t *testing.T) {
	_, err := New(Definitions{
		"get": &Endpoint{Method: "GET", Path: "/x"},
	},
		WithTransport(stubTransport(200, "{}")),
		WithDebug(),
	)
	var be *BuildError
	if !errors.As(err, &be) {
		t.Fatalf("Expected BuildError without a logger, got %v", err)
	}
}

func TestDebugConfigWithoutRequestIDGenFailsBuild(t *testing.T) {
	_, err := New(Definitions{
		"get": &Endpoint{Method: "GET", Path: "/x"},
	},
		WithTransport(stubTransport(200, "{}")),
		WithLogger(&recordLogger{}),
		WithDebugConfig(&DebugConfig{Enabled: true, LogCalls: true}),
	)
	var be *BuildError
	if !errors.As(err, &be) {
		t.Fatalf("Expected BuildError without a request ID generator, got %v", err)
	}
}

func TestWithRequestIDGenerator(t *testing.T) {
	logger := &recordLogger{}
	client, err := New(Definitions{
		"get": &Endpoint{Method: "GET", Path: "/x"},
	},
		WithTransport(stubTransport(200, "{}")),
		WithLogger(logger),
		WithDebug(),
		WithRequestIDGenerator(func() string { return "fixed-id" }),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.Call(context.Background(), "get", nil); err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if logger.count() == 0 {
		t.Error("Expected debug lines with the custom request ID generator")
	}
}

func TestWithHTTPClientIgnoredWhenTransportSet(t *testing.T) {
	ct := newCountingTransport(200, "{}")
	client, err := New(Definitions{
		"get": &Endpoint{Method: "GET", Path: "/x"},
	},
		WithHTTPClient(&http.Client{}),
		WithTransport(ct.transport),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.Call(context.Background(), "get", nil); err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if ct.count() != 1 {
		t.Errorf("Expected the custom transport to serve the call, got %d calls", ct.count())
	}
}
