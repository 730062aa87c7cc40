package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-booking-wizard/internal/auth"
    "github.com/iliyamo/event-booking-wizard/internal/config"
)

func TestJWTAuth(t *testing.T) {
    t.Parallel()
    good, err := auth.NewAccessToken("secret", 11, time.Hour, time.Now())
    if err != nil {
        t.Fatal(err)
    }
    tests := []struct {
        name   string
        header string
        want   int
    }{
        {"no header", "", http.StatusUnauthorized},
        {"not bearer", "Basic abc", http.StatusUnauthorized},
        {"bad token", "Bearer nope", http.StatusUnauthorized},
        {"valid", "Bearer " + good.Token, http.StatusOK},
    }
    for _, tt := range tests {
        tt := tt
        t.Run(tt.name, func(t *testing.T) {
            t.Parallel()
            e := echo.New()
            req := httptest.NewRequest(http.MethodGet, "/", nil)
            if tt.header != "" {
                req.Header.Set("Authorization", tt.header)
            }
            rec := httptest.NewRecorder()
            c := e.NewContext(req, rec)
            var seen uint64
            h := JWTAuth("secret")(func(c echo.Context) error {
                seen, _ = c.Get(UserIDKey).(uint64)
                return c.NoContent(http.StatusOK)
            })
            if err := h(c); err != nil {
                t.Fatal(err)
            }
            if rec.Code != tt.want {
                t.Fatalf("status = %d, want %d", rec.Code, tt.want)
            }
            if tt.want == http.StatusOK && seen != 11 {
                t.Fatalf("user id = %d, want 11", seen)
            }
        })
    }
}

func TestRateKey(t *testing.T) {
    t.Parallel()
    e := echo.New()
    cfg := config.RateLimitConfig{Prefix: "rl"}

    req := httptest.NewRequest(http.MethodPost, "/v1/wizards/abc/continue", nil)
    req.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/v1/wizards/:id/continue")
    if got := rateKey(cfg, c); got != "rl:ip:10.0.0.9:POST:/v1/wizards/:id/continue" {
        t.Fatalf("anonymous key = %q", got)
    }
    c.Set(UserIDKey, uint64(5))
    if got := rateKey(cfg, c); got != "rl:user:5:POST:/v1/wizards/:id/continue" {
        t.Fatalf("user key = %q", got)
    }
}

func TestDisabledMiddlewarePassThrough(t *testing.T) {
    t.Parallel()
    e := echo.New()
    called := 0
    next := func(c echo.Context) error { called++; return nil }
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
    _ = NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil)(next)(c)
    _ = NewRedisCache(config.CacheConfig{Enabled: true}, nil)(next)(c)
    if called != 2 {
        t.Fatalf("next called %d times, want 2", called)
    }
}

func TestCaptureWriter_Overflow(t *testing.T) {
    t.Parallel()
    rec := httptest.NewRecorder()
    cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
    _, _ = cw.Write([]byte("abc"))
    if cw.overflow || cw.buf.String() != "abc" {
        t.Fatalf("unexpected capture state %q overflow=%v", cw.buf.String(), cw.overflow)
    }
    _, _ = cw.Write([]byte("de"))
    if !cw.overflow {
        t.Fatal("expected overflow")
    }
    if rec.Body.String() != "abcde" {
        t.Fatalf("client body = %q", rec.Body.String())
    }
}
