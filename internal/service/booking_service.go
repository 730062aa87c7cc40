package service

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/gommon/log"

    "github.com/iliyamo/event-booking-wizard/internal/clock"
    "github.com/iliyamo/event-booking-wizard/internal/model"
    "github.com/iliyamo/event-booking-wizard/internal/payment"
    "github.com/iliyamo/event-booking-wizard/internal/queue"
    "github.com/iliyamo/event-booking-wizard/internal/repository"
    "github.com/iliyamo/event-booking-wizard/internal/session"
    "github.com/iliyamo/event-booking-wizard/internal/wizard"
)

// Notices shown when a commit had to be rolled back.
const (
    noticeSeatsTaken   = "some of your seats were just sold, please pick again"
    noticePointsChange = "your loyalty balance changed, please review the total"
    noticeCommitFailed = "the booking could not be completed, please try again"
)

// BookingDeps are the collaborators of a BookingService.  Publisher may be
// nil.
type BookingDeps struct {
    Events    EventReader
    Seats     SeatReader
    Loyalty   LoyaltyReader
    Purchases PurchaseWriter
    Gateway   payment.Gateway
    Publisher Publisher
    Store     session.Store
    Clock     clock.Clock
    TTL       time.Duration
    LockTTL   time.Duration
}

// BookingService drives ticket wizards.
type BookingService struct {
    d        BookingDeps
    sessions sessions
}

// NewBookingService returns a service using deps.
func NewBookingService(deps BookingDeps) *BookingService {
    return &BookingService{
        d:        deps,
        sessions: sessions{store: deps.Store, kind: session.KindWizard, ttl: deps.TTL, lockTTL: deps.LockTTL},
    }
}

// Start opens a wizard for eventID on the tickets step.
func (s *BookingService) Start(ctx context.Context, userID, eventID uint64) (*wizard.Wizard, error) {
    ev, err := s.d.Events.GetByID(ctx, eventID)
    if err != nil {
        return nil, err
    }
    tiers, err := s.d.Events.TiersByEvent(ctx, eventID)
    if err != nil {
        return nil, err
    }
    occupied, err := s.d.Seats.OccupiedSeats(ctx, eventID)
    if err != nil {
        return nil, err
    }
    balance, err := s.d.Loyalty.Balance(ctx, userID)
    if err != nil {
        return nil, err
    }
    w := wizard.New(uuid.NewString(), userID, ev, tiers, occupied, balance)
    if err := s.sessions.save(ctx, w.ID, w); err != nil {
        return nil, err
    }
    return w, nil
}

// Get returns the caller's wizard.
func (s *BookingService) Get(ctx context.Context, userID uint64, id string) (*wizard.Wizard, error) {
    w := &wizard.Wizard{}
    if err := s.sessions.load(ctx, userID, id, w, func() uint64 { return w.UserID }); err != nil {
        return nil, err
    }
    return w, nil
}

// Abandon discards the wizard.
func (s *BookingService) Abandon(ctx context.Context, userID uint64, id string) error {
    release, err := s.sessions.lock(ctx, id)
    if err != nil {
        return err
    }
    defer release()

    if _, err := s.Get(ctx, userID, id); err != nil {
        return err
    }
    return s.d.Store.Delete(ctx, session.KindWizard, id)
}

// update loads the wizard, applies fn and saves the result under the
// session lock, so it cannot interleave with a running checkout or
// payment.  Nothing is saved when fn fails.
func (s *BookingService) update(ctx context.Context, userID uint64, id string, fn func(*wizard.Wizard) error) (*wizard.Wizard, error) {
    release, err := s.sessions.lock(ctx, id)
    if err != nil {
        return nil, err
    }
    defer release()

    w, err := s.Get(ctx, userID, id)
    if err != nil {
        return nil, err
    }
    if err := fn(w); err != nil {
        return nil, err
    }
    if err := s.sessions.save(ctx, w.ID, w); err != nil {
        return nil, err
    }
    return w, nil
}

// SetQuantity sets a tier quantity on the tickets step.
func (s *BookingService) SetQuantity(ctx context.Context, userID uint64, id string, tierID uint64, qty int) (*wizard.Wizard, error) {
    return s.update(ctx, userID, id, func(w *wizard.Wizard) error {
        return w.SetQuantity(tierID, qty)
    })
}

// ToggleSeat selects or deselects a seat and reports whether it is now
// selected.
func (s *BookingService) ToggleSeat(ctx context.Context, userID uint64, id string, seat int) (*wizard.Wizard, bool, error) {
    var selected bool
    w, err := s.update(ctx, userID, id, func(w *wizard.Wizard) error {
        var err error
        selected, err = w.ToggleSeat(seat)
        return err
    })
    return w, selected, err
}

// Continue advances the wizard.  Entering the seat map refreshes the
// occupied seats so the map reflects sales made since Start.
func (s *BookingService) Continue(ctx context.Context, userID uint64, id string) (*wizard.Wizard, error) {
    return s.update(ctx, userID, id, func(w *wizard.Wizard) error {
        if w.Step == wizard.StepTickets && w.Tickets.TotalTickets() > 0 {
            occ, err := s.d.Seats.OccupiedSeats(ctx, w.EventID)
            if err != nil {
                return err
            }
            w.Seats.SetOccupied(occ)
        }
        return w.Continue()
    })
}

// Back returns to the previous step.
func (s *BookingService) Back(ctx context.Context, userID uint64, id string) (*wizard.Wizard, error) {
    return s.update(ctx, userID, id, func(w *wizard.Wizard) error { return w.Back() })
}

// Checkout submits the buyer form.  A positive total moves to the payment
// step; a free order is committed at once.
func (s *BookingService) Checkout(ctx context.Context, userID uint64, id string, buyer wizard.Buyer, useLoyalty bool) (*wizard.Wizard, error) {
    release, err := s.sessions.lock(ctx, id)
    if err != nil {
        return nil, err
    }
    defer release()

    w, err := s.Get(ctx, userID, id)
    if err != nil {
        return nil, err
    }
    order, err := w.Checkout(buyer, useLoyalty)
    if err != nil {
        return nil, err
    }
    if w.Step == wizard.StepPayment {
        return w, s.sessions.save(ctx, w.ID, w)
    }

    var conf wizard.Confirmation
    commitErr := w.Payment.CommitDirect(ctx, order, s.commitOrder(w.UserID, &conf))
    return s.finish(ctx, w, conf, commitErr)
}

// ConfirmPayment charges the stashed order with method and commits it.
// A gateway failure keeps the payment pending; a failed commit reopens
// the wizard with a notice and keeps the paid intent for the retry.
func (s *BookingService) ConfirmPayment(ctx context.Context, userID uint64, id, method string) (*wizard.Wizard, error) {
    release, err := s.sessions.lock(ctx, id)
    if err != nil {
        return nil, err
    }
    defer release()

    w, err := s.Get(ctx, userID, id)
    if err != nil {
        return nil, err
    }
    if w.Step != wizard.StepPayment {
        return nil, payment.ErrNotAwaitingPayment
    }
    var conf wizard.Confirmation
    _, err = w.Payment.Confirm(ctx, s.d.Gateway, method, "wizard:"+w.ID, s.commitOrder(w.UserID, &conf))
    if err != nil && w.Payment.Pending() {
        return nil, err
    }
    return s.finish(ctx, w, conf, err)
}

// CancelPayment drops the pending payment and returns to checkout.
func (s *BookingService) CancelPayment(ctx context.Context, userID uint64, id string) (*wizard.Wizard, error) {
    return s.update(ctx, userID, id, func(w *wizard.Wizard) error { return w.CancelPayment() })
}

// Confirmation returns the summary of a completed wizard.
func (s *BookingService) Confirmation(ctx context.Context, userID uint64, id string) (wizard.Confirmation, error) {
    w, err := s.Get(ctx, userID, id)
    if err != nil {
        return wizard.Confirmation{}, err
    }
    if w.Step != wizard.StepConfirmed || w.Confirmation == nil {
        return wizard.Confirmation{}, wizard.ErrInvalidStep
    }
    return *w.Confirmation, nil
}

// finish records the outcome of a commit attempt and saves the wizard.
// A commit error is returned after the reopened wizard is saved.
func (s *BookingService) finish(ctx context.Context, w *wizard.Wizard, conf wizard.Confirmation, commitErr error) (*wizard.Wizard, error) {
    if commitErr != nil {
        s.reopen(ctx, w, commitErr)
        if err := s.sessions.save(ctx, w.ID, w); err != nil {
            return nil, err
        }
        return w, commitErr
    }
    w.Complete(conf)
    if err := s.sessions.save(ctx, w.ID, w); err != nil {
        return nil, err
    }
    s.publishConfirmed(ctx, w)
    return w, nil
}

// reopen refreshes whatever made the commit fail and moves the wizard
// back to the step where the user can fix it.
func (s *BookingService) reopen(ctx context.Context, w *wizard.Wizard, cause error) {
    switch {
    case errors.Is(cause, repository.ErrSeatTaken):
        if occ, err := s.d.Seats.OccupiedSeats(ctx, w.EventID); err == nil {
            w.Seats.SetOccupied(occ)
        } else {
            log.Warnf("wizard %s: refresh occupied seats: %v", w.ID, err)
        }
        w.Reopen(noticeSeatsTaken, true)
    case errors.Is(cause, repository.ErrInsufficientPoints):
        if bal, err := s.d.Loyalty.Balance(ctx, w.UserID); err == nil {
            w.LoyaltyBalance = bal
        } else {
            log.Warnf("wizard %s: refresh loyalty balance: %v", w.ID, err)
        }
        w.Reopen(noticePointsChange, false)
    default:
        log.Errorf("wizard %s: commit failed: %v", w.ID, cause)
        w.Reopen(noticeCommitFailed, false)
    }
}

// commitOrder stores the stashed order as a purchase.  The loyalty points
// spent equal the discount in cents.
func (s *BookingService) commitOrder(userID uint64, out *wizard.Confirmation) payment.CommitFunc {
    return func(ctx context.Context, raw json.RawMessage, intentID string) error {
        var o wizard.Order
        if err := json.Unmarshal(raw, &o); err != nil {
            return fmt.Errorf("decode order: %w", err)
        }
        p := &model.Purchase{
            UserID:        userID,
            EventID:       o.EventID,
            BuyerName:     o.Buyer.Name,
            BuyerEmail:    o.Buyer.Email,
            SubtotalCents: o.Totals.SubtotalCents,
            FeeCents:      o.Totals.FeeCents,
            DiscountCents: o.Totals.DiscountCents,
            TotalCents:    o.Totals.TotalCents,
            Lines:         o.Lines,
            Seats:         o.Seats,
        }
        if intentID != "" {
            p.PaymentRef = &intentID
        }
        if err := s.d.Purchases.Create(ctx, p, o.Totals.DiscountCents); err != nil {
            return err
        }
        *out = wizard.NewConfirmation(p.ID, o, intentID)
        return nil
    }
}

func (s *BookingService) publishConfirmed(ctx context.Context, w *wizard.Wizard) {
    if s.d.Publisher == nil || w.Confirmation == nil {
        return
    }
    c := w.Confirmation
    ev := queue.BookingConfirmedEvent{
        PurchaseID:      c.PurchaseID,
        UserID:          w.UserID,
        EventID:         c.EventID,
        SeatLabels:      c.SeatLabels,
        TotalCents:      c.Totals.TotalCents,
        PaymentIntentID: c.PaymentIntentID,
        ConfirmedAt:     s.d.Clock.Now().Format(time.RFC3339),
    }
    if e, err := s.d.Events.GetByID(ctx, c.EventID); err == nil {
        ev.EventTitle = e.Title
        ev.StartsAt = e.StartsAt.UTC().Format(time.RFC3339)
    }
    if err := s.d.Publisher.PublishBookingConfirmed(ctx, ev); err != nil {
        log.Warnf("wizard %s: publish booking.confirmed: %v", w.ID, err)
    }
}
