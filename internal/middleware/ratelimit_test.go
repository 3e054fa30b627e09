package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/yitocode/members-api/internal/config"
)

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cfg := config.RateLimitConfig{Enabled: true, Limit: 3, Window: time.Minute, Prefix: "rl"}
	mw := RateLimit(cfg, rdb)

	e := echo.New()
	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/signin", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/auth/signin")
		if err := mw(okHandler)(c); err != nil {
			t.Fatalf("middleware error: %v", err)
		}
		return rec.Code
	}

	for i := 0; i < 3; i++ {
		if code := do(); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, code)
		}
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Fatalf("over-limit status = %d, want 429", code)
	}
}

func TestRateLimitPassThroughWithoutRedis(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Limit: 1, Window: time.Minute, Prefix: "rl"}
	mw := RateLimit(cfg, nil)

	e := echo.New()
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/signin", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := mw(okHandler)(c); err != nil {
			t.Fatalf("middleware error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}
}
