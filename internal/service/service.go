// Package service coordinates the booking wizard and the reschedule dialog
// with persistence, payments and events.  Sessions are loaded from a
// session.Store on every call, changed through the domain packages and
// saved back with a sliding TTL.
package service

import (
    "context"
    "errors"
    "time"

    "github.com/iliyamo/event-booking-wizard/internal/model"
    "github.com/iliyamo/event-booking-wizard/internal/queue"
    "github.com/iliyamo/event-booking-wizard/internal/repository"
    "github.com/iliyamo/event-booking-wizard/internal/session"
)

var (
    // ErrNotFound is returned for a missing, expired or foreign session.
    ErrNotFound = errors.New("session not found")
    // ErrBusy is returned while another change to the same session runs.
    ErrBusy = errors.New("submit already in progress")
    // ErrBookingCancelled is returned when opening a dialog on a cancelled booking.
    ErrBookingCancelled = errors.New("booking is cancelled")
)

// EventReader loads events and their tiers.
type EventReader interface {
    GetByID(ctx context.Context, id uint64) (model.Event, error)
    TiersByEvent(ctx context.Context, eventID uint64) ([]model.TicketTier, error)
}

// SeatReader reports sold and withheld seats.
type SeatReader interface {
    OccupiedSeats(ctx context.Context, eventID uint64) ([]int, error)
}

// LoyaltyReader reads point balances.
type LoyaltyReader interface {
    Balance(ctx context.Context, userID uint64) (uint32, error)
}

// PurchaseWriter stores committed orders.
type PurchaseWriter interface {
    Create(ctx context.Context, p *model.Purchase, loyaltyPoints uint32) error
}

// BookingStore reads and moves vendor bookings.
type BookingStore interface {
    GetByID(ctx context.Context, id uint64) (model.VendorBooking, error)
    Reschedule(ctx context.Context, id uint64, u repository.RescheduleUpdate) error
}

// Publisher emits booking events.  Failures never fail the request.
type Publisher interface {
    PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
    PublishBookingRescheduled(ctx context.Context, ev queue.BookingRescheduledEvent) error
}

// sessions wraps a Store with owner checks and the sliding TTL.
type sessions struct {
    store   session.Store
    kind    string
    ttl     time.Duration
    lockTTL time.Duration
}

// load decodes the session into v.  owner reports the user v belongs to
// once decoded; sessions of other users look missing.
func (s sessions) load(ctx context.Context, userID uint64, id string, v any, owner func() uint64) error {
    err := s.store.Get(ctx, s.kind, id, v)
    if errors.Is(err, session.ErrNotFound) {
        return ErrNotFound
    }
    if err != nil {
        return err
    }
    if owner() != userID {
        return ErrNotFound
    }
    return nil
}

func (s sessions) save(ctx context.Context, id string, v any) error {
    return s.store.Put(ctx, s.kind, id, v, s.ttl)
}

func (s sessions) lock(ctx context.Context, id string) (func(), error) {
    release, err := s.store.Lock(ctx, s.kind, id, s.lockTTL)
    if errors.Is(err, session.ErrLocked) {
        return nil, ErrBusy
    }
    return release, err
}
