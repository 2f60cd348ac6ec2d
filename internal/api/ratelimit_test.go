package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenBucketExhaustion(t *testing.T) {
	tb := newTokenBucket(3, 0.0001)

	for i := 0; i < 3; i++ {
		if !tb.allow() {
			t.Fatalf("request %d denied within burst", i+1)
		}
	}
	if tb.allow() {
		t.Error("request allowed after burst exhausted")
	}
}

func TestTokenBucketRefill(t *testing.T) {
	tb := newTokenBucket(1, 10) // 10 tokens/second

	if !tb.allow() {
		t.Fatal("first request denied")
	}
	if tb.allow() {
		t.Fatal("second immediate request allowed")
	}

	// Backdate the last refill instead of sleeping.
	tb.mu.Lock()
	tb.lastRefillTime = time.Now().Add(-1 * time.Second)
	tb.mu.Unlock()

	if !tb.allow() {
		t.Error("request denied after refill window")
	}
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 60, BurstSize: 1})

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request from first IP denied")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("second request from first IP allowed")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other IP shares the first IP's bucket")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 1, BurstSize: 2})
	handler := rl.Middleware(okHandler())

	request := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "192.0.2.7:4242"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := request(); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := request()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
	if msg := decodeMessage(t, rec); msg == "" {
		t.Error("rate limit error message empty")
	}
	if rec.Header().Get("X-RateLimit-Limit") != "1" {
		t.Errorf("limit header = %q", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		realIP     string
		want       string
	}{
		{"remote addr with port", "203.0.113.9:1234", "", "", "203.0.113.9"},
		{"remote addr without port", "203.0.113.9", "", "", "203.0.113.9"},
		{"forwarded single", "10.0.0.1:80", "198.51.100.4", "", "198.51.100.4"},
		{"forwarded chain takes leftmost", "10.0.0.1:80", "198.51.100.4, 10.0.0.2, 10.0.0.3", "", "198.51.100.4"},
		{"forwarded invalid falls through", "203.0.113.9:80", "not-an-ip", "", "203.0.113.9"},
		{"real ip", "10.0.0.1:80", "", "198.51.100.7", "198.51.100.7"},
		{"ipv6 remote", "[2001:db8::1]:443", "", "", "2001:db8::1"},
		{"garbage everywhere", "garbage", "nope", "also nope", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRemaining(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 60, BurstSize: 5})

	if got := rl.Remaining("10.0.0.5"); got != 5 {
		t.Errorf("fresh bucket remaining = %d, want 5", got)
	}
	rl.Allow("10.0.0.5")
	if got := rl.Remaining("10.0.0.5"); got > 4 {
		t.Errorf("remaining after one request = %d, want <= 4", got)
	}
}
