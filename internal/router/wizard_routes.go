package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-booking-wizard/internal/handler"
    "github.com/iliyamo/event-booking-wizard/internal/middleware"
)

// RegisterWizard registers the booking wizard under /v1/wizards.  All
// routes require a valid JWT; the rate limiter runs after authentication
// so buckets are keyed by user.
func RegisterWizard(e *echo.Echo, h *handler.WizardHandler, jwtSecret string, limit echo.MiddlewareFunc) {
    g := e.Group("/v1/wizards", middleware.JWTAuth(jwtSecret), limit)
    g.POST("", h.Start)
    g.GET("/:id", h.Get)
    g.DELETE("/:id", h.Abandon)
    g.PUT("/:id/tickets", h.SetTickets)
    g.GET("/:id/seats", h.Seats)
    g.POST("/:id/seats/:seat", h.ToggleSeat)
    g.POST("/:id/continue", h.Continue)
    g.POST("/:id/back", h.Back)
    g.POST("/:id/checkout", h.Checkout)
    g.POST("/:id/payment/confirm", h.ConfirmPayment)
    g.POST("/:id/payment/cancel", h.CancelPayment)
    g.GET("/:id/confirmation", h.Confirmation)
}
