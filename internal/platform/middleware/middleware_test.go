package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	e := echo.New()
	mw := RequestID()
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler(c); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rid, _ := c.Get("request_id").(string)
	if rid == "" {
		t.Fatal("expected request_id to be set on context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != rid {
		t.Errorf("expected response header %q, got %q", rid, got)
	}
}

func TestRequestID_ReusesClientHeader(t *testing.T) {
	e := echo.New()
	mw := RequestID()
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler(c); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if rid, _ := c.Get("request_id").(string); rid != "client-supplied-id" {
		t.Errorf("expected client-supplied-id, got %q", rid)
	}
}

func TestRecovery_ConvertsPanicToError(t *testing.T) {
	e := echo.New()
	mw := Recovery(zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler(c)
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Code)
	}
}

func TestRateLimit_RequestsWithinLimit(t *testing.T) {
	cfg := RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         5,
	}

	e := echo.New()
	mw := RateLimit(cfg)
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(c); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
			t.Errorf("request %d: expected X-RateLimit-Limit '10', got %q", i+1, got)
		}
	}
}

func TestRateLimit_ExceedsLimit(t *testing.T) {
	cfg := RateLimitConfig{
		RequestsPerSecond: 1,
		BurstSize:         2,
	}

	e := echo.New()
	mw := RateLimit(cfg)
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := handler(c); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := handler(c)

	if err == nil {
		t.Fatal("expected error for rate-limited request")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", httpErr.Code)
	}

	retryAfter := rec.Header().Get("Retry-After")
	if retryAfter == "" {
		t.Error("expected Retry-After header to be set")
	}
	if retryVal, parseErr := strconv.Atoi(retryAfter); parseErr != nil || retryVal < 1 {
		t.Errorf("expected Retry-After >= 1, got %q", retryAfter)
	}
	if remaining := rec.Header().Get("X-RateLimit-Remaining"); remaining != "0" {
		t.Errorf("expected X-RateLimit-Remaining '0', got %q", remaining)
	}
}

func TestRateLimit_PerWalletIsolation(t *testing.T) {
	cfg := RateLimitConfig{
		RequestsPerSecond: 1,
		BurstSize:         1,
	}

	e := echo.New()
	mw := RateLimit(cfg)
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req1 := httptest.NewRequest(http.MethodGet, "/", nil)
	c1 := e.NewContext(req1, httptest.NewRecorder())
	c1.Set("wallet_address", "0xaaa")
	if err := handler(c1); err != nil {
		t.Fatalf("wallet a first request: expected no error, got %v", err)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	c2 := e.NewContext(req2, httptest.NewRecorder())
	c2.Set("wallet_address", "0xaaa")
	if err := handler(c2); err == nil {
		t.Fatal("wallet a second request: expected rate limit error")
	}

	req3 := httptest.NewRequest(http.MethodGet, "/", nil)
	c3 := e.NewContext(req3, httptest.NewRecorder())
	c3.Set("wallet_address", "0xbbb")
	if err := handler(c3); err != nil {
		t.Fatalf("wallet b first request: expected no error, got %v", err)
	}
}

func TestTokenBucket_RetryAfterWithZeroRate(t *testing.T) {
	b := newTokenBucket(0, 1)
	b.allow()
	if ra := b.retryAfter(); ra != 1 {
		t.Errorf("expected retryAfter 1 for zero rate, got %d", ra)
	}
}

func TestRateLimiterStore_SameKeySameBucket(t *testing.T) {
	store := newRateLimiterStore(DefaultRateLimitConfig())

	b1 := store.getBucket("key1")
	if b1 == nil {
		t.Fatal("expected non-nil bucket")
	}
	if b2 := store.getBucket("key1"); b1 != b2 {
		t.Error("expected same bucket instance for same key")
	}
	if b3 := store.getBucket("key2"); b1 == b3 {
		t.Error("expected different bucket for different key")
	}
}
