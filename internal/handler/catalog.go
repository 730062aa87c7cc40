package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-booking-wizard/internal/availability"
    "github.com/iliyamo/event-booking-wizard/internal/model"
)

// EventCatalog reads events and their ticket tiers.
type EventCatalog interface {
    GetByID(ctx context.Context, id uint64) (model.Event, error)
    TiersByEvent(ctx context.Context, eventID uint64) ([]model.TicketTier, error)
}

// CatalogHandler serves the public read-only endpoints.
type CatalogHandler struct {
    Events   EventCatalog
    Bookings availability.Source
}

// NewCatalogHandler constructs a CatalogHandler.  Both dependencies must be
// non-nil.
func NewCatalogHandler(events EventCatalog, bookings availability.Source) *CatalogHandler {
    if events == nil || bookings == nil {
        panic("nil dependency passed to NewCatalogHandler")
    }
    return &CatalogHandler{Events: events, Bookings: bookings}
}

// Tiers handles GET /v1/events/:id/tiers.  It returns the event and its
// tiers with prices in cents.
func (h *CatalogHandler) Tiers(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "invalid event id")
    }
    ctx := c.Request().Context()
    ev, err := h.Events.GetByID(ctx, id)
    if err != nil {
        return respondErr(c, err, "", nil)
    }
    tiers, err := h.Events.TiersByEvent(ctx, id)
    if err != nil {
        return respondErr(c, err, "", nil)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "event": echo.Map{
            "id":         ev.ID,
            "vendor_id":  ev.VendorID,
            "title":      ev.Title,
            "starts_at":  ev.StartsAt,
            "seat_count": ev.SeatCount,
        },
        "tiers": tiers,
    })
}

// VendorBookings handles GET /v1/vendors/:id/bookings.  Cancelled
// bookings are omitted so clients can grey out the remaining dates
// directly.
func (h *CatalogHandler) VendorBookings(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "invalid vendor id")
    }
    list, err := h.Bookings.ListByVendor(c.Request().Context(), id)
    if err != nil {
        return respondErr(c, err, "", nil)
    }
    active := make([]model.VendorBooking, 0, len(list))
    for _, b := range list {
        if b.Status != model.BookingCancelled {
            active = append(active, b)
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"data": active})
}
