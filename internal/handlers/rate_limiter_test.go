package handlers

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestWindowLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := newWindowLimiter(2, time.Minute, func() time.Time { return now })

	for i := 0; i < 2; i++ {
		if ok, _ := limiter.Allow("10.0.0.1"); !ok {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	ok, retry := limiter.Allow("10.0.0.1")
	if ok {
		t.Fatalf("third request should be rejected")
	}
	if retry != time.Minute {
		t.Fatalf("expected retry after 1m, got %v", retry)
	}
	if ok, _ := limiter.Allow("10.0.0.2"); !ok {
		t.Fatalf("other clients keep their own window")
	}

	now = now.Add(time.Minute)
	if ok, _ := limiter.Allow("10.0.0.1"); !ok {
		t.Fatalf("window should reset")
	}
}

func TestWindowLimiterDisabled(t *testing.T) {
	if limiter := newWindowLimiter(0, time.Minute, nil); limiter != nil {
		t.Fatalf("expected nil limiter when disabled")
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.9:51234"
	if got := clientKey(req); got != "203.0.113.9" {
		t.Fatalf("expected host only, got %q", got)
	}
	req.RemoteAddr = "203.0.113.9"
	if got := clientKey(req); got != "203.0.113.9" {
		t.Fatalf("expected bare address, got %q", got)
	}
}
