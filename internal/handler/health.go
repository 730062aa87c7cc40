package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and database reachability.
type HealthHandler struct {
    DB Pinger
}

// NewHealthHandler returns a handler checking db.
func NewHealthHandler(db Pinger) *HealthHandler { return &HealthHandler{DB: db} }

// Health is the health-check endpoint used by load balancers and
// monitoring systems.  It answers 200 "ok" while the database responds
// and 503 otherwise.
func (h *HealthHandler) Health(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
    defer cancel()
    if err := h.DB.PingContext(ctx); err != nil {
        c.Logger().Errorf("health: db ping: %v", err)
        return c.String(http.StatusServiceUnavailable, "db unavailable")
    }
    return c.String(http.StatusOK, "ok")
}
