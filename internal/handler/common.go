package handler // handler defines http handlers

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-booking-wizard/internal/availability"
    "github.com/iliyamo/event-booking-wizard/internal/middleware"
    "github.com/iliyamo/event-booking-wizard/internal/payment"
    "github.com/iliyamo/event-booking-wizard/internal/repository"
    "github.com/iliyamo/event-booking-wizard/internal/reschedule"
    "github.com/iliyamo/event-booking-wizard/internal/service"
    "github.com/iliyamo/event-booking-wizard/internal/wizard"
)

// getUserID extracts the authenticated user id stored by JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
    if id, ok := c.Get(middleware.UserIDKey).(uint64); ok && id != 0 {
        return id, nil
    }
    return 0, errors.New("invalid user_id in context")
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id != 0
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "code": "unauthorized"})
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "code": "bad_request"})
}

type errorMapping struct {
    err    error
    status int
    code   string
}

// errorTable is checked in order; wrapped errors match through errors.Is.
var errorTable = []errorMapping{
    {service.ErrNotFound, http.StatusNotFound, "not_found"},
    {repository.ErrEventNotFound, http.StatusNotFound, "event_not_found"},
    {repository.ErrBookingNotFound, http.StatusNotFound, "booking_not_found"},
    {service.ErrBusy, http.StatusConflict, "submit_in_progress"},
    {service.ErrBookingCancelled, http.StatusConflict, "booking_cancelled"},

    {wizard.ErrUnknownTier, http.StatusBadRequest, "unknown_tier"},
    {wizard.ErrOrderTooLarge, http.StatusUnprocessableEntity, "order_too_large"},
    {wizard.ErrSeatOutOfRange, http.StatusBadRequest, "seat_out_of_range"},
    {wizard.ErrSeatOccupied, http.StatusConflict, "seat_occupied"},
    {wizard.ErrSelectionFull, http.StatusConflict, "selection_full"},
    {wizard.ErrNoTickets, http.StatusUnprocessableEntity, "no_tickets"},
    {wizard.ErrSeatCountMismatch, http.StatusUnprocessableEntity, "seat_count_mismatch"},
    {wizard.ErrInvalidStep, http.StatusConflict, "invalid_step"},
    {wizard.ErrPaymentPending, http.StatusConflict, "payment_pending"},
    {wizard.ErrBuyerName, http.StatusUnprocessableEntity, "buyer_name_required"},
    {wizard.ErrBuyerEmail, http.StatusUnprocessableEntity, "buyer_email_invalid"},

    {payment.ErrUnsupportedMethod, http.StatusBadRequest, "unsupported_payment_method"},
    {payment.ErrGateway, http.StatusBadGateway, "payment_failed"},
    {payment.ErrPaymentPending, http.StatusConflict, "payment_pending"},
    {payment.ErrNotAwaitingPayment, http.StatusConflict, "no_payment_pending"},
    {payment.ErrFinished, http.StatusConflict, "finished"},
    {payment.ErrZeroAmount, http.StatusUnprocessableEntity, "zero_amount"},

    {repository.ErrSeatTaken, http.StatusConflict, "seats_taken"},
    {repository.ErrInsufficientPoints, http.StatusConflict, "loyalty_changed"},

    {reschedule.ErrConflict, http.StatusConflict, "conflict"},
    {reschedule.ErrSameWindow, http.StatusUnprocessableEntity, "same_window"},
    {reschedule.ErrNotEditing, http.StatusConflict, "not_editing"},
    {reschedule.ErrDialogClosed, http.StatusConflict, "dialog_closed"},
    {reschedule.ErrNoPayment, http.StatusConflict, "no_payment_pending"},
    {reschedule.ErrUnknownMode, http.StatusUnprocessableEntity, "unknown_timing_mode"},
    {reschedule.ErrStartDateRequired, http.StatusUnprocessableEntity, "start_date_required"},
    {reschedule.ErrInvalidDate, http.StatusUnprocessableEntity, "invalid_date"},
    {reschedule.ErrEndBeforeStart, http.StatusUnprocessableEntity, "end_before_start"},

    {availability.ErrUpstream, http.StatusBadGateway, "availability_unavailable"},
    {availability.ErrMalformed, http.StatusBadGateway, "availability_unavailable"},
}

// classify maps a domain error to an HTTP status and a stable code.
func classify(err error) (int, string) {
    for _, m := range errorTable {
        if errors.Is(err, m.err) {
            return m.status, m.code
        }
    }
    return http.StatusInternalServerError, "internal"
}

// respondErr writes err as {"error", "code"}.  When state is non-nil it is
// attached so the client can render the step it was moved to.
func respondErr(c echo.Context, err error, stateKey string, state any) error {
    status, code := classify(err)
    msg := err.Error()
    if status == http.StatusInternalServerError {
        c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
        msg = "internal error"
    }
    body := echo.Map{"error": msg, "code": code}
    if stateKey != "" && state != nil {
        body[stateKey] = state
    }
    return c.JSON(status, body)
}
