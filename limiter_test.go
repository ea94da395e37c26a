package sni

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRequestLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewRequestLimiter(2, 200*time.Millisecond)
	defer limiter.Close()
	ip := "203.0.113.10"

	if !limiter.Allow(ip) {
		t.Fatalf("expected first request to be allowed")
	}
	if !limiter.Allow(ip) {
		t.Fatalf("expected second request to be allowed")
	}
	if limiter.Allow(ip) {
		t.Fatalf("expected third request to be blocked")
	}
}

func TestRequestLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewRequestLimiter(1, 150*time.Millisecond)
	defer limiter.Close()
	ip := "203.0.113.20"

	if !limiter.Allow(ip) {
		t.Fatalf("expected first request to be allowed")
	}
	if limiter.Allow(ip) {
		t.Fatalf("expected second request to be blocked")
	}

	time.Sleep(200 * time.Millisecond)
	if !limiter.Allow(ip) {
		t.Fatalf("expected request after window to be allowed")
	}
}

func TestRequestLimiterIsPerIP(t *testing.T) {
	limiter := NewRequestLimiter(1, 200*time.Millisecond)
	defer limiter.Close()

	if !limiter.Allow("203.0.113.30") {
		t.Fatalf("expected first ip to be allowed")
	}
	if !limiter.Allow("203.0.113.31") {
		t.Fatalf("expected second ip to be allowed independently")
	}
	if limiter.Allow("203.0.113.30") {
		t.Fatalf("expected first ip to be blocked after max")
	}
}

func TestRequestLimiterCloseIsIdempotent(t *testing.T) {
	limiter := NewRequestLimiter(1, time.Second)
	limiter.Close()
	limiter.Close()
}

func TestRequestLimiterCleanupDropsIdleIPs(t *testing.T) {
	limiter := NewRequestLimiter(1, 20*time.Millisecond)
	defer limiter.Close()
	limiter.Allow("203.0.113.40")

	deadline := time.Now().Add(time.Second)
	for {
		limiter.mu.Lock()
		n := len(limiter.hits)
		limiter.mu.Unlock()
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected idle ip to be pruned, %d entries left", n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRequestLimiterCloseStopsCleanup(t *testing.T) {
	limiter := NewRequestLimiter(1, 20*time.Millisecond)
	limiter.Close()

	limiter.mu.Lock()
	limiter.hits["203.0.113.50"] = []time.Time{time.Now().Add(-time.Hour)}
	limiter.mu.Unlock()
	time.Sleep(100 * time.Millisecond)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if _, ok := limiter.hits["203.0.113.50"]; !ok {
		t.Fatalf("expected no cleanup after Close")
	}
}

func TestRequestLimiterMiddleware(t *testing.T) {
	limiter := NewRequestLimiter(1, 90*time.Second)
	defer limiter.Close()
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, limiter.Middleware)

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":4321"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	if rec := do("203.0.113.60"); rec.Code != http.StatusOK {
		t.Fatalf("first request: got %d, want 200", rec.Code)
	}
	rec := do("203.0.113.60")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "90" {
		t.Errorf("Retry-After = %q, want %q", got, "90")
	}
	if rec := do("203.0.113.61"); rec.Code != http.StatusOK {
		t.Fatalf("other ip: got %d, want 200", rec.Code)
	}
}
