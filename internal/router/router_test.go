package router

import (
    "context"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-booking-wizard/internal/handler"
    "github.com/iliyamo/event-booking-wizard/internal/model"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

type emptyCatalog struct{}

func (emptyCatalog) GetByID(context.Context, uint64) (model.Event, error) { return model.Event{}, nil }
func (emptyCatalog) TiersByEvent(context.Context, uint64) ([]model.TicketTier, error) {
    return nil, nil
}
func (emptyCatalog) ListByVendor(context.Context, uint64) ([]model.VendorBooking, error) {
    return nil, nil
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func TestRoutesRegistered(t *testing.T) {
    t.Parallel()
    e := echo.New()
    RegisterRoutes(e, handler.NewHealthHandler(okPinger{}))
    RegisterPublic(e, handler.NewCatalogHandler(emptyCatalog{}, emptyCatalog{}), passThrough, passThrough)
    RegisterWizard(e, &handler.WizardHandler{}, "secret", passThrough)
    RegisterReschedule(e, &handler.RescheduleHandler{}, "secret", passThrough)

    got := map[string]bool{}
    for _, r := range e.Routes() {
        got[r.Method+" "+r.Path] = true
    }
    want := []string{
        "GET /healthz",
        "GET /v1/events/:id/tiers",
        "GET /v1/vendors/:id/bookings",
        "POST /v1/wizards",
        "GET /v1/wizards/:id",
        "DELETE /v1/wizards/:id",
        "PUT /v1/wizards/:id/tickets",
        "GET /v1/wizards/:id/seats",
        "POST /v1/wizards/:id/seats/:seat",
        "POST /v1/wizards/:id/continue",
        "POST /v1/wizards/:id/back",
        "POST /v1/wizards/:id/checkout",
        "POST /v1/wizards/:id/payment/confirm",
        "POST /v1/wizards/:id/payment/cancel",
        "GET /v1/wizards/:id/confirmation",
        "POST /v1/bookings/:id/reschedule",
        "GET /v1/reschedules/:id",
        "PATCH /v1/reschedules/:id",
        "DELETE /v1/reschedules/:id",
        "POST /v1/reschedules/:id/submit",
        "POST /v1/reschedules/:id/payment/confirm",
        "POST /v1/reschedules/:id/payment/cancel",
    }
    for _, w := range want {
        if !got[w] {
            t.Errorf("route %s not registered", w)
        }
    }
}

func TestProtectedRoutesRequireToken(t *testing.T) {
    t.Parallel()
    e := echo.New()
    RegisterRoutes(e, handler.NewHealthHandler(okPinger{}))
    RegisterWizard(e, &handler.WizardHandler{}, "secret", passThrough)
    RegisterReschedule(e, &handler.RescheduleHandler{}, "secret", passThrough)

    for _, tc := range []struct{ method, path string }{
        {http.MethodPost, "/v1/wizards"},
        {http.MethodGet, "/v1/reschedules/abc"},
        {http.MethodPost, "/v1/bookings/5/reschedule"},
    } {
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
        if rec.Code != http.StatusUnauthorized {
            t.Errorf("%s %s: status %d, want 401", tc.method, tc.path, rec.Code)
        }
    }

    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
    if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
        t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
    }
}
