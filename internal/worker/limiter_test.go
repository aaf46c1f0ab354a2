package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_AllowWithinBurst(t *testing.T) {
	limiter := NewLimiter(1, 2)

	if !limiter.Allow("https://example.com/a") {
		t.Error("first request should be allowed")
	}
	if !limiter.Allow("https://example.com/b") {
		t.Error("second request should be within burst")
	}
	if limiter.Allow("https://example.com/c") {
		t.Error("third request should exceed burst")
	}
}

func TestLimiter_PerHostIsolation(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("https://a.example.com/") {
		t.Error("first host should be allowed")
	}
	if !limiter.Allow("https://b.example.com/") {
		t.Error("second host has its own budget")
	}
	if limiter.Allow("https://a.example.com/again") {
		t.Error("first host budget should be spent")
	}
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	limiter := NewLimiter(0.001, 1) // effectively one request, then a very long wait

	if err := limiter.Wait(context.Background(), "https://example.com/"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "https://example.com/"); err == nil {
		t.Error("expected context deadline error, got nil")
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(1000, 10)

	start := time.Now()
	if err := limiter.WaitWithDelay(context.Background(), "https://example.com/", 30*time.Millisecond); err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("crawl delay not honored, elapsed %v", elapsed)
	}
}
