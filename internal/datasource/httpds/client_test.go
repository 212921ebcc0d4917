// These tests exercise the retrying HTTP client used against the position
// API, focusing on:
//   - Default configuration.
//   - Retry and backoff behavior on transient failures.
//   - Retry-After handling on 429 responses.
//   - Handling of non-retryable statuses.
//   - Context-aware sleep behavior.
package httpds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// newTestClient returns a client with instant, recorded sleeps.
func newTestClient(cfg Config, slept *[]time.Duration) *Client {
	c := NewClient(cfg)
	c.sleep = func(d time.Duration) {
		if slept != nil {
			*slept = append(*slept, d)
		}
	}
	return c
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{})

	if c.httpClient.Timeout <= 0 {
		t.Fatalf("expected non-zero timeout, got %v", c.httpClient.Timeout)
	}
	if c.maxRetries != 0 {
		t.Fatalf("expected default maxRetries=0, got %d", c.maxRetries)
	}
	if c.initialBackoff <= 0 {
		t.Fatalf("expected default initialBackoff > 0, got %v", c.initialBackoff)
	}
	if c.maxBackoff <= 0 {
		t.Fatalf("expected default maxBackoff > 0, got %v", c.maxBackoff)
	}
}

func TestDo_Success_NoRetry(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(Config{MaxRetries: 3, Timeout: 2 * time.Second}, nil)

	resp, err := c.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected 1 request, got %d", got)
	}
}

func TestDo_RetriesOn500(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var slept []time.Duration
	c := newTestClient(Config{
		MaxRetries:     3,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     time.Second,
	}, &slept)

	resp, err := c.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("expected 3 requests, got %d", got)
	}
	if len(slept) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %v", slept)
	}
	// Exponential: 10ms then 20ms.
	if slept[0] != 10*time.Millisecond || slept[1] != 20*time.Millisecond {
		t.Fatalf("unexpected backoff schedule: %v", slept)
	}
}

func TestDo_RetryAfterOn429(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var slept []time.Duration
	c := newTestClient(Config{
		MaxRetries:     2,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     time.Minute,
	}, &slept)

	resp, err := c.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	// The server's Retry-After figure wins over the exponential schedule.
	if len(slept) != 1 || slept[0] != 2*time.Second {
		t.Fatalf("expected a single 2s Retry-After sleep, got %v", slept)
	}
}

func TestDo_NonRetryableStatusReturnsResponse(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(Config{MaxRetries: 3}, nil)

	resp, err := c.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 passed through, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("404 must not be retried; got %d requests", got)
	}
}

func TestDo_ExhaustedRetriesReturnsLastError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(Config{MaxRetries: 2, InitialBackoff: time.Millisecond}, nil)

	_, err := c.Get(context.Background(), srv.URL, nil)
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(Config{}, nil)
	if _, err := c.Get(ctx, "http://127.0.0.1:0/never", nil); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}

func TestBaseHeadersApplied(t *testing.T) {
	t.Parallel()

	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	base := http.Header{}
	base.Set("Authorization", "Bearer token123")
	base.Set("Accept", "application/json")

	c := newTestClient(Config{BaseHeaders: base}, nil)
	resp, err := c.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer token123" || gotAccept != "application/json" {
		t.Fatalf("base headers not applied: auth=%q accept=%q", gotAuth, gotAccept)
	}
}
