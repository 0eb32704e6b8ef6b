package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHostOf(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "npm registry",
			url:      "https://registry.npmjs.org/left-pad",
			expected: "registry.npmjs.org",
		},
		{
			name:     "github packages",
			url:      "https://npm.pkg.github.com/@octo/pkg",
			expected: "npm.pkg.github.com",
		},
		{
			name:     "invalid URL",
			url:      "not-a-valid-url",
			expected: "not-a-valid-url",
		},
		{
			name:     "with port",
			url:      "http://localhost:4873/left-pad",
			expected: "localhost:4873",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hostOf(tt.url)
			if got != tt.expected {
				t.Errorf("hostOf(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestBreakerStates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := DefaultClient()

	// Initially empty
	if states := c.BreakerStates(); len(states) != 0 {
		t.Errorf("expected no breakers, got %v", states)
	}

	if _, err := c.GetBody(context.Background(), server.URL); err != nil {
		t.Fatalf("GetBody failed: %v", err)
	}

	states := c.BreakerStates()
	if got := states[hostOf(server.URL)]; got != "closed" {
		t.Errorf("breaker state = %q, want closed", got)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(WithMaxRetries(0), WithBreakerThreshold(3), WithBaseDelay(time.Millisecond))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.GetBody(ctx, server.URL); err == nil {
			t.Fatalf("request %d: expected error", i)
		}
	}

	_, err := c.GetBody(ctx, server.URL)
	if !errors.Is(err, ErrUpstreamDown) {
		t.Errorf("GetBody = %v, want ErrUpstreamDown", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3 (open circuit must not reach the server)", got)
	}
	if state := c.BreakerStates()[hostOf(server.URL)]; state != "open" {
		t.Errorf("breaker state = %q, want open", state)
	}
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(WithBreakerThreshold(2))
	for i := 0; i < 5; i++ {
		if _, err := c.GetBody(context.Background(), server.URL); !errors.Is(err, ErrNotFound) {
			t.Fatalf("request %d: got %v, want ErrNotFound", i, err)
		}
	}
	if got := atomic.LoadInt32(&attempts); got != 5 {
		t.Errorf("attempts = %d, want 5", got)
	}
}
