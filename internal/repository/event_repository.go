package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/event-booking-wizard/internal/model"
)

// EventRepo reads events and their ticket tiers.
type EventRepo struct {
    db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// GetByID fetches an event.  ErrEventNotFound is returned when no row
// matches.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
    const q = `SELECT id, vendor_id, title, starts_at, seat_count FROM events WHERE id = ?`
    var e model.Event
    err := r.db.QueryRowContext(ctx, q, id).Scan(&e.ID, &e.VendorID, &e.Title, &e.StartsAt, &e.SeatCount)
    if errors.Is(err, sql.ErrNoRows) {
        return model.Event{}, ErrEventNotFound
    }
    return e, err
}

// TiersByEvent lists the tiers of an event in display order.  An event
// without tiers yields an empty slice.
func (r *EventRepo) TiersByEvent(ctx context.Context, eventID uint64) ([]model.TicketTier, error) {
    const q = `SELECT id, event_id, name, price_cents FROM ticket_tiers WHERE event_id = ? ORDER BY sort_order, id`
    rows, err := r.db.QueryContext(ctx, q, eventID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    tiers := []model.TicketTier{}
    for rows.Next() {
        var t model.TicketTier
        if err := rows.Scan(&t.ID, &t.EventID, &t.Name, &t.PriceCents); err != nil {
            return nil, err
        }
        tiers = append(tiers, t)
    }
    return tiers, rows.Err()
}
