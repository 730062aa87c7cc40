package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-booking-wizard/internal/auth"
)

// UserIDKey is the context key under which JWTAuth stores the caller's
// user id as a uint64.
const UserIDKey = "user_id"

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject into the request context.  The provided
// secret must match the one used when issuing tokens.  Handlers read the
// caller via c.Get(UserIDKey).
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            h := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(h, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token", "code": "unauthorized"})
            }
            raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
            uid, err := auth.ParseAccessToken(secret, raw)
            if err != nil {
                c.Logger().Debugf("jwt: %v", err)
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token", "code": "unauthorized"})
            }
            c.Set(UserIDKey, uid)
            return next(c)
        }
    }
}
