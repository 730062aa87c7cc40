package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-booking-wizard/internal/handler"
    "github.com/iliyamo/event-booking-wizard/internal/middleware"
)

// RegisterReschedule registers the reschedule dialog.  A dialog is opened
// on a booking and then addressed by its own id.
func RegisterReschedule(e *echo.Echo, h *handler.RescheduleHandler, jwtSecret string, limit echo.MiddlewareFunc) {
    auth := middleware.JWTAuth(jwtSecret)
    e.POST("/v1/bookings/:id/reschedule", h.Open, auth, limit)

    g := e.Group("/v1/reschedules", auth, limit)
    g.GET("/:id", h.Get)
    g.PATCH("/:id", h.Edit)
    g.DELETE("/:id", h.Close)
    g.POST("/:id/submit", h.Submit)
    g.POST("/:id/payment/confirm", h.ConfirmPayment)
    g.POST("/:id/payment/cancel", h.CancelPayment)
}
