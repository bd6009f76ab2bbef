package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"telegram_booking_bot/pkg/logger"
)

func TestTokenBucket_ExhaustsAndRefills(t *testing.T) {
	bucket := NewTokenBucket(2, 1)

	if !bucket.Allow() || !bucket.Allow() {
		t.Fatal("bucket must allow up to its capacity")
	}
	if bucket.Allow() {
		t.Error("exhausted bucket must reject")
	}

	// Имитируем прошедшую секунду, чтобы не спать в тесте
	bucket.mu.Lock()
	bucket.lastRefill = bucket.lastRefill.Add(-time.Second)
	bucket.mu.Unlock()

	if !bucket.Allow() {
		t.Error("bucket must refill over time")
	}
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, logger.New(logger.LevelFatal))
	defer rl.Close()

	if !rl.Allow("a") {
		t.Error("first request for key a must pass")
	}
	if rl.Allow("a") {
		t.Error("second request for key a must be limited")
	}
	if !rl.Allow("b") {
		t.Error("key b must have its own bucket")
	}
}

func TestHTTPRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, logger.New(logger.LevelFatal))
	defer rl.Close()

	handler := HTTPRateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/webhook", nil))
	if first.Code != http.StatusOK {
		t.Errorf("first request status = %d, want 200", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/webhook", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", second.Code)
	}
}

func TestGetRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")

	if ip := getRealIP(r); ip != "1.2.3.4" {
		t.Errorf("getRealIP = %q, want first forwarded address", ip)
	}

	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	if ip := getRealIP(plain); ip != plain.RemoteAddr {
		t.Errorf("getRealIP without headers = %q, want RemoteAddr %q", ip, plain.RemoteAddr)
	}
}
