package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-booking-wizard/internal/model"
    "github.com/iliyamo/event-booking-wizard/internal/reschedule"
    "github.com/iliyamo/event-booking-wizard/internal/service"
)

// RescheduleService is the reschedule dialog as the handlers use it.
type RescheduleService interface {
    Open(ctx context.Context, userID, bookingID uint64) (service.DialogView, error)
    Get(ctx context.Context, userID uint64, id string) (service.DialogView, error)
    Edit(ctx context.Context, userID uint64, id string, draft model.BookingDraft) (service.DialogView, error)
    Submit(ctx context.Context, userID uint64, id string) (service.DialogView, error)
    ConfirmPayment(ctx context.Context, userID uint64, id, method string) (service.DialogView, error)
    CancelPayment(ctx context.Context, userID uint64, id string) (service.DialogView, error)
    Close(ctx context.Context, userID uint64, id string) error
}

// RescheduleHandler exposes reschedule dialogs.
type RescheduleHandler struct {
    Svc RescheduleService
}

// NewRescheduleHandler constructs a RescheduleHandler.
func NewRescheduleHandler(svc RescheduleService) *RescheduleHandler {
    if svc == nil {
        panic("nil service passed to NewRescheduleHandler")
    }
    return &RescheduleHandler{Svc: svc}
}

func dialogResult(c echo.Context, status int, v service.DialogView, err error) error {
    if err != nil {
        return respondErr(c, err, "", nil)
    }
    return c.JSON(status, v)
}

// Open handles POST /v1/bookings/:id/reschedule.
func (h *RescheduleHandler) Open(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    bookingID, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "invalid booking id")
    }
    v, err := h.Svc.Open(c.Request().Context(), uid, bookingID)
    return dialogResult(c, http.StatusCreated, v, err)
}

// Get handles GET /v1/reschedules/:id.  The response carries the resolved
// window and whether it conflicts with existing bookings.
func (h *RescheduleHandler) Get(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    v, err := h.Svc.Get(c.Request().Context(), uid, c.Param("id"))
    return dialogResult(c, http.StatusOK, v, err)
}

// Edit handles PATCH /v1/reschedules/:id with a booking draft.
func (h *RescheduleHandler) Edit(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var draft model.BookingDraft
    if err := c.Bind(&draft); err != nil {
        return badRequest(c, "invalid request body")
    }
    v, err := h.Svc.Edit(c.Request().Context(), uid, c.Param("id"), draft)
    return dialogResult(c, http.StatusOK, v, err)
}

// Submit handles POST /v1/reschedules/:id/submit.  It answers 202 when the
// change waits for fee payment.
func (h *RescheduleHandler) Submit(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    v, err := h.Svc.Submit(c.Request().Context(), uid, c.Param("id"))
    status := http.StatusOK
    if v.Outcome == reschedule.OutcomeAwaitingPayment {
        status = http.StatusAccepted
    }
    return dialogResult(c, status, v, err)
}

// ConfirmPayment handles POST /v1/reschedules/:id/payment/confirm.
func (h *RescheduleHandler) ConfirmPayment(c echo.Context) error {
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
    v, err := h.Svc.ConfirmPayment(c.Request().Context(), uid, c.Param("id"), body.PaymentMethod)
    return dialogResult(c, http.StatusOK, v, err)
}

// CancelPayment handles POST /v1/reschedules/:id/payment/cancel.
func (h *RescheduleHandler) CancelPayment(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    v, err := h.Svc.CancelPayment(c.Request().Context(), uid, c.Param("id"))
    return dialogResult(c, http.StatusOK, v, err)
}

// Close handles DELETE /v1/reschedules/:id.
func (h *RescheduleHandler) Close(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    if err := h.Svc.Close(c.Request().Context(), uid, c.Param("id")); err != nil {
        return respondErr(c, err, "", nil)
    }
    return c.NoContent(http.StatusNoContent)
}
