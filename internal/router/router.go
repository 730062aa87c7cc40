package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-booking-wizard/internal/handler"
)

// RegisterRoutes registers the health check.  It can be used by load
// balancers or monitoring systems to verify that the service is up.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
    e.GET("/healthz", h.Health)
}

// RegisterPublic registers the unauthenticated catalogue endpoints.  The
// tier list changes rarely and is served through the response cache; the
// vendor bookings list is only rate limited because clients poll it while
// picking dates.
func RegisterPublic(e *echo.Echo, h *handler.CatalogHandler, cache, limit echo.MiddlewareFunc) {
    g := e.Group("/v1", limit)
    g.GET("/events/:id/tiers", h.Tiers, cache)
    g.GET("/vendors/:id/bookings", h.VendorBookings)
}
