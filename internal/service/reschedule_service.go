package service

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/gommon/log"

    "github.com/iliyamo/event-booking-wizard/internal/availability"
    "github.com/iliyamo/event-booking-wizard/internal/clock"
    "github.com/iliyamo/event-booking-wizard/internal/model"
    "github.com/iliyamo/event-booking-wizard/internal/payment"
    "github.com/iliyamo/event-booking-wizard/internal/queue"
    "github.com/iliyamo/event-booking-wizard/internal/repository"
    "github.com/iliyamo/event-booking-wizard/internal/reschedule"
    "github.com/iliyamo/event-booking-wizard/internal/session"
)

// warnAvailability is shown when the bookings list could not be fetched.
const warnAvailability = "availability is temporarily unavailable"

// RescheduleDeps are the collaborators of a RescheduleService.  Publisher
// may be nil.
type RescheduleDeps struct {
    Bookings     BookingStore
    Availability availability.Source
    Gateway      payment.Gateway
    Publisher    Publisher
    Store        session.Store
    Clock        clock.Clock
    TTL          time.Duration
    LockTTL      time.Duration
}

// RescheduleService drives reschedule dialogs.
type RescheduleService struct {
    d        RescheduleDeps
    sessions sessions
}

// NewRescheduleService returns a service using deps.
func NewRescheduleService(deps RescheduleDeps) *RescheduleService {
    return &RescheduleService{
        d:        deps,
        sessions: sessions{store: deps.Store, kind: session.KindReschedule, ttl: deps.TTL, lockTTL: deps.LockTTL},
    }
}

// DialogView is a dialog with its draft evaluated against current
// availability.
type DialogView struct {
    Dialog     *reschedule.Dialog    `json:"dialog"`
    Evaluation reschedule.Evaluation `json:"evaluation"`
    Outcome    reschedule.Outcome    `json:"outcome,omitempty"`
}

// Open starts a dialog for one of the caller's bookings.
func (s *RescheduleService) Open(ctx context.Context, userID, bookingID uint64) (DialogView, error) {
    b, err := s.d.Bookings.GetByID(ctx, bookingID)
    if errors.Is(err, repository.ErrBookingNotFound) {
        return DialogView{}, ErrNotFound
    }
    if err != nil {
        return DialogView{}, err
    }
    if b.UserID != userID {
        return DialogView{}, ErrNotFound
    }
    if b.Status == model.BookingCancelled {
        return DialogView{}, ErrBookingCancelled
    }
    d := reschedule.NewDialog(uuid.NewString(), userID, b)
    if err := s.sessions.save(ctx, d.ID, d); err != nil {
        return DialogView{}, err
    }
    return s.view(ctx, d), nil
}

// Get returns the caller's dialog.
func (s *RescheduleService) Get(ctx context.Context, userID uint64, id string) (DialogView, error) {
    d, err := s.load(ctx, userID, id)
    if err != nil {
        return DialogView{}, err
    }
    return s.view(ctx, d), nil
}

// Edit replaces the draft.
func (s *RescheduleService) Edit(ctx context.Context, userID uint64, id string, draft model.BookingDraft) (DialogView, error) {
    release, err := s.sessions.lock(ctx, id)
    if err != nil {
        return DialogView{}, err
    }
    defer release()

    d, err := s.load(ctx, userID, id)
    if err != nil {
        return DialogView{}, err
    }
    if err := d.Edit(draft); err != nil {
        return DialogView{}, err
    }
    if err := s.sessions.save(ctx, d.ID, d); err != nil {
        return DialogView{}, err
    }
    return s.view(ctx, d), nil
}

// Submit checks the draft and either applies it or stashes it for fee
// payment.  Without availability data the submit is refused.
func (s *RescheduleService) Submit(ctx context.Context, userID uint64, id string) (DialogView, error) {
    var applied appliedChange
    v, err := s.submit(ctx, userID, id, &applied)
    if err != nil {
        return DialogView{}, err
    }
    s.publishRescheduled(ctx, v.Dialog, applied)
    return v, nil
}

func (s *RescheduleService) submit(ctx context.Context, userID uint64, id string, applied *appliedChange) (DialogView, error) {
    release, err := s.sessions.lock(ctx, id)
    if err != nil {
        return DialogView{}, err
    }
    defer release()

    d, err := s.load(ctx, userID, id)
    if err != nil {
        return DialogView{}, err
    }
    bookings, err := s.d.Availability.ListByVendor(ctx, d.VendorID)
    if err != nil {
        return DialogView{}, fmt.Errorf("list bookings: %w", err)
    }
    outcome, subErr := d.Submit(ctx, bookings, s.apply(d, applied))
    if err := s.sessions.save(ctx, d.ID, d); err != nil {
        return DialogView{}, err
    }
    if subErr != nil {
        return DialogView{}, subErr
    }
    v := s.evaluated(d, bookings)
    v.Outcome = outcome
    return v, nil
}

// ConfirmPayment pays the reschedule fee with method and applies the
// stashed request.
func (s *RescheduleService) ConfirmPayment(ctx context.Context, userID uint64, id, method string) (DialogView, error) {
    var applied appliedChange
    v, err := s.confirmPayment(ctx, userID, id, method, &applied)
    if err != nil {
        return DialogView{}, err
    }
    s.publishRescheduled(ctx, v.Dialog, applied)
    return v, nil
}

func (s *RescheduleService) confirmPayment(ctx context.Context, userID uint64, id, method string, applied *appliedChange) (DialogView, error) {
    release, err := s.sessions.lock(ctx, id)
    if err != nil {
        return DialogView{}, err
    }
    defer release()

    d, err := s.load(ctx, userID, id)
    if err != nil {
        return DialogView{}, err
    }
    _, confErr := d.ConfirmPayment(ctx, s.d.Gateway, method, s.apply(d, applied))
    if err := s.sessions.save(ctx, d.ID, d); err != nil {
        return DialogView{}, err
    }
    if confErr != nil {
        return DialogView{}, confErr
    }
    v := s.view(ctx, d)
    v.Outcome = reschedule.OutcomeSubmitted
    return v, nil
}

// CancelPayment discards the pending fee payment and resumes editing.
func (s *RescheduleService) CancelPayment(ctx context.Context, userID uint64, id string) (DialogView, error) {
    release, err := s.sessions.lock(ctx, id)
    if err != nil {
        return DialogView{}, err
    }
    defer release()

    d, err := s.load(ctx, userID, id)
    if err != nil {
        return DialogView{}, err
    }
    if err := d.CancelPayment(); err != nil {
        return DialogView{}, err
    }
    if err := s.sessions.save(ctx, d.ID, d); err != nil {
        return DialogView{}, err
    }
    return s.view(ctx, d), nil
}

// Close ends and discards the dialog.
func (s *RescheduleService) Close(ctx context.Context, userID uint64, id string) error {
    release, err := s.sessions.lock(ctx, id)
    if err != nil {
        return err
    }
    defer release()

    d, err := s.load(ctx, userID, id)
    if err != nil {
        return err
    }
    d.Close()
    return s.d.Store.Delete(ctx, session.KindReschedule, id)
}

func (s *RescheduleService) load(ctx context.Context, userID uint64, id string) (*reschedule.Dialog, error) {
    d := &reschedule.Dialog{}
    if err := s.sessions.load(ctx, userID, id, d, func() uint64 { return d.UserID }); err != nil {
        return nil, err
    }
    return d, nil
}

// view evaluates d against a fresh bookings list.  When the list cannot
// be fetched submit is disabled with a warning.
func (s *RescheduleService) view(ctx context.Context, d *reschedule.Dialog) DialogView {
    if d.State == reschedule.StateClosed {
        return DialogView{Dialog: d, Evaluation: reschedule.Evaluation{Window: d.Result}}
    }
    bookings, err := s.d.Availability.ListByVendor(ctx, d.VendorID)
    if err != nil {
        log.Warnf("reschedule %s: list bookings for vendor %d: %v", d.ID, d.VendorID, err)
        ev := d.Evaluate(nil)
        ev.CanSubmit = false
        ev.Warning = warnAvailability
        return DialogView{Dialog: d, Evaluation: ev}
    }
    return s.evaluated(d, bookings)
}

func (s *RescheduleService) evaluated(d *reschedule.Dialog, bookings []model.VendorBooking) DialogView {
    if d.State == reschedule.StateClosed {
        return DialogView{Dialog: d, Evaluation: reschedule.Evaluation{Window: d.Result}}
    }
    return DialogView{Dialog: d, Evaluation: d.Evaluate(bookings)}
}

// appliedChange records a request written to the booking so the event is
// published once the dialog is saved and unlocked.
type appliedChange struct {
    req      reschedule.Request
    intentID string
    done     bool
}

// apply writes a stashed request to the booking.  Availability is checked
// again because a paid request may have waited for payment while another
// booking took the slot.
func (s *RescheduleService) apply(d *reschedule.Dialog, out *appliedChange) payment.CommitFunc {
    return func(ctx context.Context, raw json.RawMessage, intentID string) error {
        req, err := reschedule.DecodeRequest(raw)
        if err != nil {
            return err
        }
        current, err := s.d.Availability.ListByVendor(ctx, d.VendorID)
        if err != nil {
            return fmt.Errorf("list bookings: %w", err)
        }
        if reschedule.Conflicts(req.Window, req.TimingMode, current, req.BookingID) {
            return reschedule.ErrConflict
        }
        start, ok := model.ParseDate(req.Window.DateStart)
        if !ok {
            return reschedule.ErrInvalidDate
        }
        end, ok := model.ParseDate(req.Window.EndDate)
        if !ok {
            return reschedule.ErrInvalidDate
        }
        upd := repository.RescheduleUpdate{
            TimingMode: req.TimingMode,
            DateStart:  start,
            DateEnd:    end,
            StartTime:  req.Window.StartTime,
            EndTime:    req.Window.EndTime,
            Reason:     req.Reason,
        }
        if intentID != "" {
            upd.PaymentRef = &intentID
        }
        if err := s.d.Bookings.Reschedule(ctx, req.BookingID, upd); err != nil {
            return err
        }
        *out = appliedChange{req: req, intentID: intentID, done: true}
        return nil
    }
}

func (s *RescheduleService) publishRescheduled(ctx context.Context, d *reschedule.Dialog, c appliedChange) {
    if s.d.Publisher == nil || !c.done {
        return
    }
    req, intentID := c.req, c.intentID
    var fee uint32
    if intentID != "" {
        fee = d.FeeCents
    }
    ev := queue.BookingRescheduledEvent{
        BookingID:       req.BookingID,
        UserID:          d.UserID,
        VendorID:        d.VendorID,
        TimingMode:      string(req.TimingMode),
        DateStart:       req.Window.DateStart,
        DateEnd:         req.Window.EndDate,
        StartTime:       req.Window.StartTime,
        EndTime:         req.Window.EndTime,
        FeeCents:        fee,
        PaymentIntentID: intentID,
        Reason:          req.Reason,
        RescheduledAt:   s.d.Clock.Now().Format(time.RFC3339),
    }
    if err := s.d.Publisher.PublishBookingRescheduled(ctx, ev); err != nil {
        log.Warnf("reschedule %s: publish booking.rescheduled: %v", d.ID, err)
    }
}
