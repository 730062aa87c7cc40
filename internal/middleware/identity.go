package middleware

// identity.go holds helpers shared across middleware files.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// userKey identifies the caller for rate limiting.  Anonymous requests are
// keyed by client IP.
func userKey(c echo.Context) string {
    if uid, ok := c.Get(UserIDKey).(uint64); ok && uid != 0 {
        return "user:" + strconv.FormatUint(uid, 10)
    }
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    return "ip:" + ip
}
