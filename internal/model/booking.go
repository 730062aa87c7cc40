package model

import (
    "encoding/json"
    "errors"
    "fmt"
    "strconv"
    "strings"
    "time"
)

// DateLayout is the calendar-date format used for booking dates.
const DateLayout = "2006-01-02"

// Booking statuses.
const (
    BookingConfirmed = "CONFIRMED"
    BookingCancelled = "CANCELLED"
)

// TimingMode selects how a booking window is derived.
type TimingMode string

const (
    TimingHourly   TimingMode = "hourly"
    TimingFullDay  TimingMode = "fullday"
    TimingMultiDay TimingMode = "multiday"
)

// Valid reports whether m is one of the three known modes.
func (m TimingMode) Valid() bool {
    switch m {
    case TimingHourly, TimingFullDay, TimingMultiDay:
        return true
    }
    return false
}

// VendorBooking is the canonical shape of an existing booking held with a
// vendor.  Dates are UTC midnights; times are "HH:MM" strings.
//
// Fields:
//  ID                 – primary key identifier.
//  VendorID           – vendor the booking is with.
//  UserID             – customer who owns the booking.
//  TimingMode         – how the window was chosen.
//  DateStart          – first day of the booking.
//  DateEnd            – last day of the booking (inclusive).
//  StartTime          – start of the daily window.
//  EndTime            – end of the daily window.
//  Status             – CONFIRMED or CANCELLED.
//  Reason             – free text attached to the last reschedule.
//  RescheduleFeeCents – fee charged to move this booking.
//  PaymentRef         – payment intent of the last paid change.
type VendorBooking struct {
    ID                 uint64     `json:"id"`
    VendorID           uint64     `json:"vendor_id"`
    UserID             uint64     `json:"user_id"`
    TimingMode         TimingMode `json:"timing_mode"`
    DateStart          time.Time  `json:"date_start"`
    DateEnd            time.Time  `json:"date_end"`
    StartTime          string     `json:"start_time"`
    EndTime            string     `json:"end_time"`
    Status             string     `json:"status"`
    Reason             string     `json:"reason,omitempty"`
    RescheduleFeeCents uint32     `json:"reschedule_fee_cents"`
    PaymentRef         *string    `json:"payment_ref,omitempty"`
}

// ErrBookingShape is returned when a raw booking lacks a usable start date.
var ErrBookingShape = errors.New("booking payload has no start date")

// ErrBookingTime is returned when a raw booking carries a date or time that
// does not parse.
var ErrBookingTime = errors.New("booking payload has an unreadable date or time")

// ClockLayout is the canonical time-of-day format.
const ClockLayout = "15:04"

var clockLayouts = []string{ClockLayout, "15:04:05", "3:04PM", "3:04 PM", "3:04:05PM"}

// ParseClock reads a time of day such as "9:00", "09:00:00" or "2:30 pm"
// and returns it as "HH:MM".
func ParseClock(s string) (string, bool) {
    s = strings.ToUpper(strings.TrimSpace(s))
    if s == "" {
        return "", false
    }
    for _, layout := range clockLayouts {
        if t, err := time.Parse(layout, s); err == nil {
            return t.Format(ClockLayout), true
        }
    }
    return "", false
}

// ClockMinutes returns the minutes since midnight of a time of day.
func ClockMinutes(s string) (int, bool) {
    c, ok := ParseClock(s)
    if !ok {
        return 0, false
    }
    t, _ := time.Parse(ClockLayout, c)
    return t.Hour()*60 + t.Minute(), true
}

// Alternate spellings seen in upstream payloads, in order of preference.
var (
    idKeys        = []string{"id", "booking_id", "bookingId", "_id"}
    vendorKeys    = []string{"vendor_id", "vendorId", "VendorID"}
    userKeys      = []string{"user_id", "userId", "UserID"}
    modeKeys      = []string{"timing_mode", "timingMode", "bookingType"}
    startDateKeys = []string{"date_start", "dateFrom", "Date_start", "date", "startDate"}
    endDateKeys   = []string{"date_end", "dateTo", "End_date", "end_date", "endDate"}
    startTimeKeys = []string{"start_time", "startTime", "Start_time"}
    endTimeKeys   = []string{"end_time", "endTime", "End_time"}
    statusKeys    = []string{"status", "Status"}
    reasonKeys    = []string{"reason", "Reason"}
    feeKeys       = []string{"reschedule_fee_cents", "rescheduleFeeCents", "feeCents", "fee_cents"}
)

// NormalizeBooking maps a loosely typed booking object onto VendorBooking.
// Missing end dates fall back to the start date and missing times to the
// full-day window.  Times are rewritten as "HH:MM"; a date or time that is
// present but unreadable yields ErrBookingTime.
func NormalizeBooking(raw map[string]any) (VendorBooking, error) {
    var b VendorBooking
    b.ID = firstUint(raw, idKeys)
    b.VendorID = firstUint(raw, vendorKeys)
    b.UserID = firstUint(raw, userKeys)
    b.TimingMode = TimingMode(strings.ToLower(firstString(raw, modeKeys)))

    start, ok := parseDate(firstString(raw, startDateKeys))
    if !ok {
        return VendorBooking{}, ErrBookingShape
    }
    b.DateStart = start
    b.DateEnd = start
    if rawEnd := firstString(raw, endDateKeys); rawEnd != "" {
        end, ok := parseDate(rawEnd)
        if !ok {
            return VendorBooking{}, fmt.Errorf("booking %d: end date %q: %w", b.ID, rawEnd, ErrBookingTime)
        }
        if end.Before(start) {
            return VendorBooking{}, fmt.Errorf("booking %d: end date before start date", b.ID)
        }
        b.DateEnd = end
    }

    var err error
    if b.StartTime, err = clockOr(firstString(raw, startTimeKeys), "00:00"); err != nil {
        return VendorBooking{}, fmt.Errorf("booking %d: start time: %w", b.ID, err)
    }
    if b.EndTime, err = clockOr(firstString(raw, endTimeKeys), "23:59"); err != nil {
        return VendorBooking{}, fmt.Errorf("booking %d: end time: %w", b.ID, err)
    }
    b.Status = strings.ToUpper(firstString(raw, statusKeys))
    if b.Status == "" {
        b.Status = BookingConfirmed
    }
    b.Reason = firstString(raw, reasonKeys)
    b.RescheduleFeeCents = uint32(firstUint(raw, feeKeys))
    return b, nil
}

// DecodeBookings parses a JSON array of loosely typed bookings.  Entries
// that cannot be normalized are reported in the returned error; the
// successfully mapped bookings are still returned.
func DecodeBookings(data []byte) ([]VendorBooking, error) {
    var raws []map[string]any
    if err := json.Unmarshal(data, &raws); err != nil {
        return nil, err
    }
    out := make([]VendorBooking, 0, len(raws))
    var errs []error
    for i, raw := range raws {
        b, err := NormalizeBooking(raw)
        if err != nil {
            errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
            continue
        }
        out = append(out, b)
    }
    return out, errors.Join(errs...)
}

func clockOr(s, def string) (string, error) {
    if s == "" {
        return def, nil
    }
    c, ok := ParseClock(s)
    if !ok {
        return "", fmt.Errorf("%q: %w", s, ErrBookingTime)
    }
    return c, nil
}

func firstString(raw map[string]any, keys []string) string {
    for _, k := range keys {
        v, ok := raw[k]
        if !ok || v == nil {
            continue
        }
        switch t := v.(type) {
        case string:
            if s := strings.TrimSpace(t); s != "" {
                return s
            }
        case float64:
            return strconv.FormatFloat(t, 'f', -1, 64)
        case json.Number:
            return t.String()
        }
    }
    return ""
}

func firstUint(raw map[string]any, keys []string) uint64 {
    for _, k := range keys {
        switch t := raw[k].(type) {
        case float64:
            if t >= 0 {
                return uint64(t)
            }
        case json.Number:
            if n, err := strconv.ParseUint(t.String(), 10, 64); err == nil {
                return n
            }
        case string:
            if n, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64); err == nil {
                return n
            }
        }
    }
    return 0
}

// parseDate accepts a bare date, a DB timestamp or RFC3339 and truncates
// to the UTC calendar day.
func parseDate(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    for _, layout := range []string{DateLayout, "2006-01-02 15:04:05", time.RFC3339} {
        if t, err := time.Parse(layout, s); err == nil {
            t = t.UTC()
            return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
        }
    }
    return time.Time{}, false
}

// ParseDate is the exported form of parseDate for request decoding.
func ParseDate(s string) (time.Time, bool) { return parseDate(strings.TrimSpace(s)) }
