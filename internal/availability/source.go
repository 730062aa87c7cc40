// Package availability lists the existing bookings of a vendor.  The
// reschedule dialog checks a proposed window against this list.
package availability

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strconv"
    "time"

    "github.com/labstack/gommon/log"

    "github.com/iliyamo/event-booking-wizard/internal/model"
)

// Source lists bookings held with a vendor.  The MySQL
// repository.VendorBookingRepo satisfies it.
type Source interface {
    ListByVendor(ctx context.Context, vendorID uint64) ([]model.VendorBooking, error)
}

// ErrUpstream is returned when the upstream bookings API answers with a
// non-2xx status.
var ErrUpstream = errors.New("availability upstream error")

// ErrMalformed is returned when any upstream booking cannot be normalized.
// Dropping it would hide a booking from the conflict check.
var ErrMalformed = errors.New("availability upstream returned unreadable bookings")

// maxBody caps how much of an upstream response is read.
const maxBody = 4 << 20

// HTTPSource fetches bookings from an upstream API that wraps its list in
// {"data": [...]} and uses loose field names.  A list with any entry that
// cannot be normalized is rejected as a whole.
type HTTPSource struct {
    base   *url.URL
    client *http.Client
}

// NewHTTPSource returns a source rooted at baseURL.  A nil client selects
// one with a 5 second timeout.
func NewHTTPSource(baseURL string, client *http.Client) (*HTTPSource, error) {
    u, err := url.Parse(baseURL)
    if err != nil {
        return nil, fmt.Errorf("availability url: %w", err)
    }
    if u.Scheme == "" || u.Host == "" {
        return nil, fmt.Errorf("availability url %q: scheme and host required", baseURL)
    }
    if client == nil {
        client = &http.Client{Timeout: 5 * time.Second}
    }
    return &HTTPSource{base: u, client: client}, nil
}

type listEnvelope struct {
    Data json.RawMessage `json:"data"`
}

// ListByVendor performs GET {base}/vendors/{id}/bookings.
func (s *HTTPSource) ListByVendor(ctx context.Context, vendorID uint64) ([]model.VendorBooking, error) {
    u := s.base.JoinPath("vendors", strconv.FormatUint(vendorID, 10), "bookings")
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
    if err != nil {
        return nil, err
    }
    req.Header.Set("Accept", "application/json")
    resp, err := s.client.Do(req)
    if err != nil {
        return nil, err
    }
    defer resp.Body.Close()
    body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
    if err != nil {
        return nil, err
    }
    if resp.StatusCode < 200 || resp.StatusCode > 299 {
        return nil, fmt.Errorf("%w: %s", ErrUpstream, resp.Status)
    }

    var env listEnvelope
    if err := json.Unmarshal(body, &env); err != nil {
        return nil, fmt.Errorf("decode bookings: %w", err)
    }
    if len(env.Data) == 0 || string(env.Data) == "null" {
        return []model.VendorBooking{}, nil
    }
    bookings, err := model.DecodeBookings(env.Data)
    if bookings == nil && err != nil {
        return nil, fmt.Errorf("decode bookings: %w", err)
    }
    if err != nil {
        log.Warnf("availability: vendor %d: unreadable bookings: %v", vendorID, err)
        return nil, fmt.Errorf("%w: vendor %d", ErrMalformed, vendorID)
    }
    return bookings, nil
}
