package handler

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-booking-wizard/internal/availability"
    "github.com/iliyamo/event-booking-wizard/internal/middleware"
    "github.com/iliyamo/event-booking-wizard/internal/model"
    "github.com/iliyamo/event-booking-wizard/internal/payment"
    "github.com/iliyamo/event-booking-wizard/internal/repository"
    "github.com/iliyamo/event-booking-wizard/internal/reschedule"
    "github.com/iliyamo/event-booking-wizard/internal/service"
    "github.com/iliyamo/event-booking-wizard/internal/wizard"
)

// stubWizards returns the same wizard and error from every call.
type stubWizards struct {
    w      *wizard.Wizard
    err    error
    buyer  wizard.Buyer
    method string
}

func (s *stubWizards) Start(context.Context, uint64, uint64) (*wizard.Wizard, error) { return s.w, s.err }
func (s *stubWizards) Get(context.Context, uint64, string) (*wizard.Wizard, error)   { return s.w, s.err }
func (s *stubWizards) Abandon(context.Context, uint64, string) error                 { return s.err }
func (s *stubWizards) SetQuantity(context.Context, uint64, string, uint64, int) (*wizard.Wizard, error) {
    return s.w, s.err
}
func (s *stubWizards) ToggleSeat(context.Context, uint64, string, int) (*wizard.Wizard, bool, error) {
    return s.w, true, s.err
}
func (s *stubWizards) Continue(context.Context, uint64, string) (*wizard.Wizard, error) { return s.w, s.err }
func (s *stubWizards) Back(context.Context, uint64, string) (*wizard.Wizard, error)     { return s.w, s.err }
func (s *stubWizards) Checkout(_ context.Context, _ uint64, _ string, b wizard.Buyer, _ bool) (*wizard.Wizard, error) {
    s.buyer = b
    return s.w, s.err
}
func (s *stubWizards) ConfirmPayment(_ context.Context, _ uint64, _ string, method string) (*wizard.Wizard, error) {
    s.method = method
    return s.w, s.err
}
func (s *stubWizards) CancelPayment(context.Context, uint64, string) (*wizard.Wizard, error) {
    return s.w, s.err
}
func (s *stubWizards) Confirmation(context.Context, uint64, string) (wizard.Confirmation, error) {
    if s.w != nil && s.w.Confirmation != nil {
        return *s.w.Confirmation, s.err
    }
    return wizard.Confirmation{}, s.err
}

type stubDialogs struct {
    v   service.DialogView
    err error
}

func (s *stubDialogs) Open(context.Context, uint64, uint64) (service.DialogView, error) { return s.v, s.err }
func (s *stubDialogs) Get(context.Context, uint64, string) (service.DialogView, error)  { return s.v, s.err }
func (s *stubDialogs) Edit(context.Context, uint64, string, model.BookingDraft) (service.DialogView, error) {
    return s.v, s.err
}
func (s *stubDialogs) Submit(context.Context, uint64, string) (service.DialogView, error) { return s.v, s.err }
func (s *stubDialogs) ConfirmPayment(context.Context, uint64, string, string) (service.DialogView, error) {
    return s.v, s.err
}
func (s *stubDialogs) CancelPayment(context.Context, uint64, string) (service.DialogView, error) {
    return s.v, s.err
}
func (s *stubDialogs) Close(context.Context, uint64, string) error { return s.err }

func sampleWizard(t *testing.T) *wizard.Wizard {
    t.Helper()
    w := wizard.New("w-1", 7, model.Event{ID: 1}, []model.TicketTier{{ID: 10, EventID: 1, Name: "Tasting Pass", PriceCents: 7500}}, []int{1}, 0)
    if err := w.SetQuantity(10, 2); err != nil {
        t.Fatal(err)
    }
    return w
}

// call runs h with an optional JSON body, path params and user id.
func call(t *testing.T, h echo.HandlerFunc, method, body string, user uint64, params ...string) (*httptest.ResponseRecorder, map[string]any) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(method, "/", strings.NewReader(body))
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    if len(params) > 0 {
        var names, values []string
        for i := 0; i+1 < len(params); i += 2 {
            names = append(names, params[i])
            values = append(values, params[i+1])
        }
        c.SetParamNames(names...)
        c.SetParamValues(values...)
    }
    if user != 0 {
        c.Set(middleware.UserIDKey, user)
    }
    if err := h(c); err != nil {
        t.Fatalf("handler returned error: %v", err)
    }
    var out map[string]any
    if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
        if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
            t.Fatalf("decode body %q: %v", rec.Body.String(), err)
        }
    }
    return rec, out
}

func TestClassify(t *testing.T) {
    t.Parallel()
    tests := []struct {
        err    error
        status int
        code   string
    }{
        {service.ErrNotFound, http.StatusNotFound, "not_found"},
        {service.ErrBusy, http.StatusConflict, "submit_in_progress"},
        {fmt.Errorf("wrapped: %w", wizard.ErrSelectionFull), http.StatusConflict, "selection_full"},
        {wizard.ErrBuyerEmail, http.StatusUnprocessableEntity, "buyer_email_invalid"},
        {fmt.Errorf("%w: %w", payment.ErrGateway, payment.ErrUnsupportedMethod), http.StatusBadRequest, "unsupported_payment_method"},
        {fmt.Errorf("%w: %w", payment.ErrGateway, errors.New("down")), http.StatusBadGateway, "payment_failed"},
        {repository.ErrSeatTaken, http.StatusConflict, "seats_taken"},
        {reschedule.ErrConflict, http.StatusConflict, "conflict"},
        {reschedule.ErrEndBeforeStart, http.StatusUnprocessableEntity, "end_before_start"},
        {wizard.ErrOrderTooLarge, http.StatusUnprocessableEntity, "order_too_large"},
        {fmt.Errorf("list bookings: %w", availability.ErrMalformed), http.StatusBadGateway, "availability_unavailable"},
        {errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
    }
    for _, tt := range tests {
        tt := tt
        t.Run(tt.code, func(t *testing.T) {
            t.Parallel()
            status, code := classify(tt.err)
            if status != tt.status || code != tt.code {
                t.Fatalf("classify(%v) = %d %s, want %d %s", tt.err, status, code, tt.status, tt.code)
            }
        })
    }
}

func TestWizardHandler_Start(t *testing.T) {
    t.Parallel()
    h := NewWizardHandler(&stubWizards{w: sampleWizard(t)})

    rec, _ := call(t, h.Start, http.MethodPost, `{"event_id": 1}`, 0)
    if rec.Code != http.StatusUnauthorized {
        t.Fatalf("anonymous: status %d", rec.Code)
    }
    rec, _ = call(t, h.Start, http.MethodPost, `{}`, 7)
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("missing event: status %d", rec.Code)
    }
    rec, body := call(t, h.Start, http.MethodPost, `{"event_id": 1}`, 7)
    if rec.Code != http.StatusCreated {
        t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
    }
    if body["id"] != "w-1" || body["total_display"] != "$160.50" || body["total_tickets"] != float64(2) {
        t.Fatalf("body = %v", body)
    }
}

func TestWizardHandler_ErrorsCarryState(t *testing.T) {
    t.Parallel()
    w := sampleWizard(t)
    w.Step = wizard.StepSeats
    stub := &stubWizards{w: w, err: repository.ErrSeatTaken}
    h := NewWizardHandler(stub)

    rec, body := call(t, h.ConfirmPayment, http.MethodPost, `{"payment_method":"card"}`, 7, "id", "w-1")
    if rec.Code != http.StatusConflict || body["code"] != "seats_taken" {
        t.Fatalf("status %d body %v", rec.Code, body)
    }
    state, ok := body["wizard"].(map[string]any)
    if !ok || state["step"] != "seats" {
        t.Fatalf("wizard state missing: %v", body)
    }
    if stub.method != "card" {
        t.Fatalf("method = %q", stub.method)
    }

    rec, _ = call(t, h.ConfirmPayment, http.MethodPost, `{}`, 7, "id", "w-1")
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("missing method: status %d", rec.Code)
    }
}

func TestWizardHandler_NotFound(t *testing.T) {
    t.Parallel()
    h := NewWizardHandler(&stubWizards{err: service.ErrNotFound})
    for name, fn := range map[string]echo.HandlerFunc{"get": h.Get, "continue": h.Continue, "seats": h.Seats, "confirmation": h.Confirmation} {
        rec, body := call(t, fn, http.MethodGet, "", 7, "id", "nope")
        if rec.Code != http.StatusNotFound || body["code"] != "not_found" {
            t.Errorf("%s: status %d body %v", name, rec.Code, body)
        }
    }
    rec, _ := call(t, h.Abandon, http.MethodDelete, "", 7, "id", "nope")
    if rec.Code != http.StatusNotFound {
        t.Fatalf("abandon: status %d", rec.Code)
    }
}

func TestWizardHandler_CheckoutBindsBuyer(t *testing.T) {
    t.Parallel()
    w := sampleWizard(t)
    stub := &stubWizards{w: w}
    h := NewWizardHandler(stub)
    rec, _ := call(t, h.Checkout, http.MethodPost, `{"name":"Ada","email":"ada@example.com","use_loyalty":true}`, 7, "id", "w-1")
    if rec.Code != http.StatusOK {
        t.Fatalf("status %d", rec.Code)
    }
    if stub.buyer.Name != "Ada" || stub.buyer.Email != "ada@example.com" {
        t.Fatalf("buyer = %+v", stub.buyer)
    }
}

func TestWizardHandler_ToggleSeat(t *testing.T) {
    t.Parallel()
    h := NewWizardHandler(&stubWizards{w: sampleWizard(t)})
    rec, body := call(t, h.ToggleSeat, http.MethodPost, "", 7, "id", "w-1", "seat", "14")
    if rec.Code != http.StatusOK || body["label"] != "B4" || body["selected"] != true {
        t.Fatalf("status %d body %v", rec.Code, body)
    }
    rec, _ = call(t, h.ToggleSeat, http.MethodPost, "", 7, "id", "w-1", "seat", "x")
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("bad seat: status %d", rec.Code)
    }
}

type stubCatalog struct{}

func (stubCatalog) GetByID(_ context.Context, id uint64) (model.Event, error) {
    if id != 1 {
        return model.Event{}, repository.ErrEventNotFound
    }
    return model.Event{ID: 1, Title: "Harvest Tasting", SeatCount: 100}, nil
}

func (stubCatalog) TiersByEvent(context.Context, uint64) ([]model.TicketTier, error) {
    return []model.TicketTier{{ID: 10, EventID: 1, Name: "Tasting Pass", PriceCents: 7500}}, nil
}

func (stubCatalog) ListByVendor(context.Context, uint64) ([]model.VendorBooking, error) {
    return []model.VendorBooking{
        {ID: 1, Status: model.BookingConfirmed},
        {ID: 2, Status: model.BookingCancelled},
    }, nil
}

func TestCatalogHandler(t *testing.T) {
    t.Parallel()
    h := NewCatalogHandler(stubCatalog{}, stubCatalog{})

    rec, body := call(t, h.Tiers, http.MethodGet, "", 0, "id", "1")
    if rec.Code != http.StatusOK {
        t.Fatalf("tiers: status %d", rec.Code)
    }
    if tiers, _ := body["tiers"].([]any); len(tiers) != 1 {
        t.Fatalf("tiers body = %v", body)
    }
    rec, body = call(t, h.Tiers, http.MethodGet, "", 0, "id", "2")
    if rec.Code != http.StatusNotFound || body["code"] != "event_not_found" {
        t.Fatalf("unknown event: status %d body %v", rec.Code, body)
    }
    rec, _ = call(t, h.Tiers, http.MethodGet, "", 0, "id", "abc")
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("bad id: status %d", rec.Code)
    }

    rec, body = call(t, h.VendorBookings, http.MethodGet, "", 0, "id", "3")
    if rec.Code != http.StatusOK {
        t.Fatalf("bookings: status %d", rec.Code)
    }
    if data, _ := body["data"].([]any); len(data) != 1 {
        t.Fatalf("cancelled booking not filtered: %v", body)
    }
}

func TestRescheduleHandler_Submit(t *testing.T) {
    t.Parallel()
    d := &reschedule.Dialog{ID: "r-1", State: reschedule.StateAwaitingPayment}
    h := NewRescheduleHandler(&stubDialogs{v: service.DialogView{Dialog: d, Outcome: reschedule.OutcomeAwaitingPayment}})
    rec, body := call(t, h.Submit, http.MethodPost, "", 7, "id", "r-1")
    if rec.Code != http.StatusAccepted || body["outcome"] != "awaiting_payment" {
        t.Fatalf("status %d body %v", rec.Code, body)
    }

    h = NewRescheduleHandler(&stubDialogs{err: reschedule.ErrConflict})
    rec, body = call(t, h.Submit, http.MethodPost, "", 7, "id", "r-1")
    if rec.Code != http.StatusConflict || body["code"] != "conflict" {
        t.Fatalf("status %d body %v", rec.Code, body)
    }
}

func TestRescheduleHandler_Open(t *testing.T) {
    t.Parallel()
    h := NewRescheduleHandler(&stubDialogs{v: service.DialogView{Dialog: &reschedule.Dialog{ID: "r-2"}}})
    rec, _ := call(t, h.Open, http.MethodPost, "", 7, "id", "0")
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("zero id: status %d", rec.Code)
    }
    rec, body := call(t, h.Open, http.MethodPost, "", 7, "id", "100")
    if rec.Code != http.StatusCreated {
        t.Fatalf("status %d", rec.Code)
    }
    if dialog, _ := body["dialog"].(map[string]any); dialog["id"] != "r-2" {
        t.Fatalf("body = %v", body)
    }
    rec, _ = call(t, h.Close, http.MethodDelete, "", 7, "id", "r-2")
    if rec.Code != http.StatusNoContent {
        t.Fatalf("close: status %d", rec.Code)
    }
}
