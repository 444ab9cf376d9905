package endpointfetcher

import (
	"context"
	"testing"
	"time"
)

func cachedTestClient(t *testing.T, ct *countingTransport, cfg CacheConfig) *Client {
	t.Helper()
	client, err := New(Definitions{
		"list":   &Endpoint{Method: "GET", Path: "/items"},
		"create": &Endpoint{Method: "POST", Path: "/items"},
	},
		WithBaseURL("https://api.example.com"),
		WithTransport(ct.transport),
		WithPlugins(CachePlugin(cfg)),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestCachePluginServesRepeatedGets(t *testing.T) {
	ct := newCountingTransport(200, `{"items":[1,2]}`)
	client := cachedTestClient(t, ct, CacheConfig{TTL: time.Minute})

	first, err := client.Call(context.Background(), "list", nil)
	if err != nil {
		t.Fatalf("first call returned error: %v", err)
	}
	second, err := client.Call(context.Background(), "list", nil)
	if err != nil {
		t.Fatalf("second call returned error: %v", err)
	}
	if ct.count() != 1 {
		t.Errorf("Expected the second call to be served from cache, got %d transport calls", ct.count())
	}
	if first == nil || second == nil {
		t.Error("Expected both calls to return output")
	}
}

func TestCachePluginSkipsNonGet(t *testing.T) {
	ct := newCountingTransport(201, `{"id":1}`)
	client := cachedTestClient(t, ct, CacheConfig{TTL: time.Minute})

	for i := 0; i < 2; i++ {
		if _, err := client.Call(context.Background(), "create", map[string]any{"n": i}); err != nil {
			t.Fatalf("create returned error: %v", err)
		}
	}
	if ct.count() != 2 {
		t.Errorf("Expected POSTs not to be cached, got %d transport calls", ct.count())
	}
}

func TestCachePluginExpiry(t *testing.T) {
	ct := newCountingTransport(200, `{"v":1}`)
	client := cachedTestClient(t, ct, CacheConfig{TTL: 5 * time.Millisecond})

	if _, err := client.Call(context.Background(), "list", nil); err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := client.Call(context.Background(), "list", nil); err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if ct.count() != 2 {
		t.Errorf("Expected an expired entry to be refetched, got %d transport calls", ct.count())
	}
}

func TestCachePluginDoesNotCacheFailures(t *testing.T) {
	ct := &countingTransport{
		statuses: []int{500, 200},
		bodies:   []string{`{"error":"oops"}`, `{"v":1}`},
	}
	client := cachedTestClient(t, ct, CacheConfig{TTL: time.Minute})

	if _, err := client.Call(context.Background(), "list", nil); err == nil {
		t.Fatal("Expected the first call to fail")
	}
	if _, err := client.Call(context.Background(), "list", nil); err != nil {
		t.Fatalf("Expected the second call to succeed, got %v", err)
	}
	if ct.count() != 2 {
		t.Errorf("Expected the failure not to be cached, got %d transport calls", ct.count())
	}
}

func TestCachePluginMethods(t *testing.T) {
	ct := newCountingTransport(200, `{"v":1}`)
	client := cachedTestClient(t, ct, CacheConfig{TTL: time.Minute})
	ctx := context.Background()

	if _, err := client.Call(ctx, "list", nil); err != nil {
		t.Fatalf("Call returned error: %v", err)
	}

	methods := client.Plugins()["cache"]
	size, err := methods["size"](ctx)
	if err != nil {
		t.Fatalf("size returned error: %v", err)
	}
	if size != 1 {
		t.Errorf("Expected 1 cached entry, got %v", size)
	}

	if _, err := methods["clear"](ctx); err != nil {
		t.Fatalf("clear returned error: %v", err)
	}
	if _, err := client.Call(ctx, "list", nil); err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if ct.count() != 2 {
		t.Errorf("Expected a refetch after clear, got %d transport calls", ct.count())
	}

	if _, err := methods["invalidate"](ctx); err == nil {
		t.Error("Expected invalidate to reject a missing key argument")
	}
	if _, err := methods["invalidate"](ctx, 42); err == nil {
		t.Error("Expected invalidate to reject a non-string key")
	}
	key := DefaultCacheKeyFunc(&CallContext{Method: "GET", Path: "/items", BaseURL: "https://api.example.com"})
	if _, err := methods["invalidate"](ctx, key); err != nil {
		t.Errorf("invalidate returned error: %v", err)
	}
	if _, err := client.Call(ctx, "list", nil); err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if ct.count() != 3 {
		t.Errorf("Expected a refetch after invalidate, got %d transport calls", ct.count())
	}
}
