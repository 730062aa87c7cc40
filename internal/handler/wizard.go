package handler

import (
    "context"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-booking-wizard/internal/wizard"
)

// WizardService is the booking wizard as the handlers use it.
type WizardService interface {
    Start(ctx context.Context, userID, eventID uint64) (*wizard.Wizard, error)
    Get(ctx context.Context, userID uint64, id string) (*wizard.Wizard, error)
    Abandon(ctx context.Context, userID uint64, id string) error
    SetQuantity(ctx context.Context, userID uint64, id string, tierID uint64, qty int) (*wizard.Wizard, error)
    ToggleSeat(ctx context.Context, userID uint64, id string, seat int) (*wizard.Wizard, bool, error)
    Continue(ctx context.Context, userID uint64, id string) (*wizard.Wizard, error)
    Back(ctx context.Context, userID uint64, id string) (*wizard.Wizard, error)
    Checkout(ctx context.Context, userID uint64, id string, buyer wizard.Buyer, useLoyalty bool) (*wizard.Wizard, error)
    ConfirmPayment(ctx context.Context, userID uint64, id, method string) (*wizard.Wizard, error)
    CancelPayment(ctx context.Context, userID uint64, id string) (*wizard.Wizard, error)
    Confirmation(ctx context.Context, userID uint64, id string) (wizard.Confirmation, error)
}

// WizardHandler exposes the booking wizard under /v1/wizards.  All
// methods assume JWTAuth ran and answer 404 for wizards of other users.
type WizardHandler struct {
    Svc WizardService
}

// NewWizardHandler constructs a WizardHandler.
func NewWizardHandler(svc WizardService) *WizardHandler {
    if svc == nil {
        panic("nil service passed to NewWizardHandler")
    }
    return &WizardHandler{Svc: svc}
}

// wizardView adds the derived totals to the stored wizard state.
type wizardView struct {
    *wizard.Wizard
    Totals       wizard.Totals `json:"totals"`
    TotalDisplay string        `json:"total_display"`
    TotalTickets int           `json:"total_tickets"`
}

func newWizardView(w *wizard.Wizard) wizardView {
    t := w.Totals()
    return wizardView{
        Wizard:       w,
        Totals:       t,
        TotalDisplay: wizard.FormatCents(t.TotalCents),
        TotalTickets: w.Tickets.TotalTickets(),
    }
}

// result writes w, or err with w attached when the call moved the wizard.
func result(c echo.Context, status int, w *wizard.Wizard, err error) error {
    if err != nil {
        if w != nil {
            return respondErr(c, err, "wizard", newWizardView(w))
        }
        return respondErr(c, err, "", nil)
    }
    return c.JSON(status, newWizardView(w))
}

// Start handles POST /v1/wizards with {"event_id": n}.
func (h *WizardHandler) Start(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var body struct {
        EventID uint64 `json:"event_id"`
    }
    if err := c.Bind(&body); err != nil || body.EventID == 0 {
        return badRequest(c, "event_id is required")
    }
    w, err := h.Svc.Start(c.Request().Context(), uid, body.EventID)
    return result(c, http.StatusCreated, w, err)
}

// Get handles GET /v1/wizards/:id.
func (h *WizardHandler) Get(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    w, err := h.Svc.Get(c.Request().Context(), uid, c.Param("id"))
    return result(c, http.StatusOK, w, err)
}

// Abandon handles DELETE /v1/wizards/:id.
func (h *WizardHandler) Abandon(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    if err := h.Svc.Abandon(c.Request().Context(), uid, c.Param("id")); err != nil {
        return respondErr(c, err, "", nil)
    }
    return c.NoContent(http.StatusNoContent)
}

// SetTickets handles PUT /v1/wizards/:id/tickets with
// {"tier_id": n, "quantity": q}.  Quantities are clamped to [0, 10].
func (h *WizardHandler) SetTickets(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var body struct {
        TierID   uint64 `json:"tier_id"`
        Quantity *int   `json:"quantity"`
    }
    if err := c.Bind(&body); err != nil || body.TierID == 0 || body.Quantity == nil {
        return badRequest(c, "tier_id and quantity are required")
    }
    w, err := h.Svc.SetQuantity(c.Request().Context(), uid, c.Param("id"), body.TierID, *body.Quantity)
    return result(c, http.StatusOK, w, err)
}

// Seats handles GET /v1/wizards/:id/seats.
func (h *WizardHandler) Seats(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    w, err := h.Svc.Get(c.Request().Context(), uid, c.Param("id"))
    if err != nil {
        return respondErr(c, err, "", nil)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "limit":    w.Tickets.TotalTickets(),
        "selected": w.Seats.SelectedSorted(),
        "seats":    w.Seats.View(),
    })
}

// ToggleSeat handles POST /v1/wizards/:id/seats/:seat.
func (h *WizardHandler) ToggleSeat(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    seat, err := strconv.Atoi(c.Param("seat"))
    if err != nil {
        return badRequest(c, "invalid seat id")
    }
    w, selected, err := h.Svc.ToggleSeat(c.Request().Context(), uid, c.Param("id"), seat)
    if err != nil {
        return respondErr(c, err, "", nil)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "seat":     seat,
        "label":    wizard.SeatLabel(seat),
        "selected": selected,
        "wizard":   newWizardView(w),
    })
}

// Continue handles POST /v1/wizards/:id/continue.
func (h *WizardHandler) Continue(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    w, err := h.Svc.Continue(c.Request().Context(), uid, c.Param("id"))
    return result(c, http.StatusOK, w, err)
}

// Back handles POST /v1/wizards/:id/back.
func (h *WizardHandler) Back(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    w, err := h.Svc.Back(c.Request().Context(), uid, c.Param("id"))
    return result(c, http.StatusOK, w, err)
}

// Checkout handles POST /v1/wizards/:id/checkout with the buyer form and
// the loyalty toggle.
func (h *WizardHandler) Checkout(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var body struct {
        wizard.Buyer
        UseLoyalty bool `json:"use_loyalty"`
    }
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    w, err := h.Svc.Checkout(c.Request().Context(), uid, c.Param("id"), body.Buyer, body.UseLoyalty)
    return result(c, http.StatusOK, w, err)
}

// ConfirmPayment handles POST /v1/wizards/:id/payment/confirm with
// {"payment_method": "card"}.
func (h *WizardHandler) ConfirmPayment(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var body struct {
        PaymentMethod string `json:"payment_method"`
    }
    if err := c.Bind(&body); err != nil || body.PaymentMethod == "" {
        return badRequest(c, "payment_method is required")
    }
    w, err := h.Svc.ConfirmPayment(c.Request().Context(), uid, c.Param("id"), body.PaymentMethod)
    return result(c, http.StatusOK, w, err)
}

// CancelPayment handles POST /v1/wizards/:id/payment/cancel.
func (h *WizardHandler) CancelPayment(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    w, err := h.Svc.CancelPayment(c.Request().Context(), uid, c.Param("id"))
    return result(c, http.StatusOK, w, err)
}

// Confirmation handles GET /v1/wizards/:id/confirmation.
func (h *WizardHandler) Confirmation(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    conf, err := h.Svc.Confirmation(c.Request().Context(), uid, c.Param("id"))
    if err != nil {
        return respondErr(c, err, "", nil)
    }
    return c.JSON(http.StatusOK, conf)
}
