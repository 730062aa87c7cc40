package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/event-booking-wizard/internal/model"
)

// VendorBookingRepo reads and reschedules bookings held with vendors.
// Updates are last-write-wins: no version column is checked.
type VendorBookingRepo struct {
    db *sql.DB
}

// NewVendorBookingRepo returns a new VendorBookingRepo bound to the given database.
func NewVendorBookingRepo(db *sql.DB) *VendorBookingRepo { return &VendorBookingRepo{db: db} }

const bookingColumns = `id, vendor_id, user_id, timing_mode, date_start, date_end, start_time, end_time, status, reason, reschedule_fee_cents, payment_ref`

type rowScanner interface {
    Scan(dest ...any) error
}

func scanBooking(s rowScanner) (model.VendorBooking, error) {
    var (
        b      model.VendorBooking
        mode   string
        reason sql.NullString
        ref    sql.NullString
    )
    err := s.Scan(&b.ID, &b.VendorID, &b.UserID, &mode, &b.DateStart, &b.DateEnd,
        &b.StartTime, &b.EndTime, &b.Status, &reason, &b.RescheduleFeeCents, &ref)
    if err != nil {
        return model.VendorBooking{}, err
    }
    b.TimingMode = model.TimingMode(mode)
    b.DateStart = b.DateStart.UTC()
    b.DateEnd = b.DateEnd.UTC()
    b.Reason = reason.String
    if ref.Valid {
        r := ref.String
        b.PaymentRef = &r
    }
    return b, nil
}

// GetByID fetches a booking.  ErrBookingNotFound is returned when no row
// matches.
func (r *VendorBookingRepo) GetByID(ctx context.Context, id uint64) (model.VendorBooking, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM vendor_bookings WHERE id = ?`, id)
    b, err := scanBooking(row)
    if errors.Is(err, sql.ErrNoRows) {
        return model.VendorBooking{}, ErrBookingNotFound
    }
    return b, err
}

// ListByVendor returns every booking held with the vendor, cancelled ones
// included, ordered by start date.  Callers filter by status.
func (r *VendorBookingRepo) ListByVendor(ctx context.Context, vendorID uint64) ([]model.VendorBooking, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+bookingColumns+` FROM vendor_bookings WHERE vendor_id = ? ORDER BY date_start, start_time, id`, vendorID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.VendorBooking{}
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    return out, rows.Err()
}

// RescheduleUpdate carries the new window of a booking.  PaymentRef is set
// when a fee was paid for the change.
type RescheduleUpdate struct {
    TimingMode model.TimingMode
    DateStart  time.Time
    DateEnd    time.Time
    StartTime  string
    EndTime    string
    Reason     string
    PaymentRef *string
}

// Reschedule overwrites the booking's window.  The previous payment_ref is
// kept when the change was free.
func (r *VendorBookingRepo) Reschedule(ctx context.Context, id uint64, u RescheduleUpdate) error {
    const q = `UPDATE vendor_bookings
               SET timing_mode = ?, date_start = ?, date_end = ?, start_time = ?, end_time = ?,
                   reason = ?, payment_ref = COALESCE(?, payment_ref)
               WHERE id = ?`
    var ref sql.NullString
    if u.PaymentRef != nil {
        ref = sql.NullString{String: *u.PaymentRef, Valid: true}
    }
    var reason sql.NullString
    if u.Reason != "" {
        reason = sql.NullString{String: u.Reason, Valid: true}
    }
    res, err := r.db.ExecContext(ctx, q, string(u.TimingMode),
        u.DateStart.Format(model.DateLayout), u.DateEnd.Format(model.DateLayout),
        u.StartTime, u.EndTime, reason, ref, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // MySQL reports 0 for an unchanged row too, so confirm existence.
        if _, err := r.GetByID(ctx, id); err != nil {
            return err
        }
    }
    return nil
}
