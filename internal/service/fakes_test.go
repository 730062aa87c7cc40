package service

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "time"

    "github.com/iliyamo/event-booking-wizard/internal/model"
    "github.com/iliyamo/event-booking-wizard/internal/payment"
    "github.com/iliyamo/event-booking-wizard/internal/queue"
    "github.com/iliyamo/event-booking-wizard/internal/repository"
)

var testNow = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

type fakeEvents struct {
    events map[uint64]model.Event
    tiers  map[uint64][]model.TicketTier
}

func (f *fakeEvents) GetByID(_ context.Context, id uint64) (model.Event, error) {
    e, ok := f.events[id]
    if !ok {
        return model.Event{}, repository.ErrEventNotFound
    }
    return e, nil
}

func (f *fakeEvents) TiersByEvent(_ context.Context, id uint64) ([]model.TicketTier, error) {
    return f.tiers[id], nil
}

type fakeSeats struct {
    mu       sync.Mutex
    occupied map[uint64][]int
}

func (f *fakeSeats) OccupiedSeats(_ context.Context, eventID uint64) ([]int, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return append([]int(nil), f.occupied[eventID]...), nil
}

func (f *fakeSeats) occupy(eventID uint64, seats ...int) {
    f.mu.Lock()
    f.occupied[eventID] = append(f.occupied[eventID], seats...)
    f.mu.Unlock()
}

type fakeLoyalty struct{ balance map[uint64]uint32 }

func (f *fakeLoyalty) Balance(_ context.Context, userID uint64) (uint32, error) {
    return f.balance[userID], nil
}

// fakePurchases behaves like PurchaseRepo against fakeSeats and fakeLoyalty.
type fakePurchases struct {
    seats   *fakeSeats
    loyalty *fakeLoyalty
    created []model.Purchase
    nextID  uint64
    fail    error
}

func (f *fakePurchases) Create(ctx context.Context, p *model.Purchase, points uint32) error {
    if f.fail != nil {
        return f.fail
    }
    occ, _ := f.seats.OccupiedSeats(ctx, p.EventID)
    for _, s := range p.Seats {
        for _, o := range occ {
            if s == o {
                return repository.ErrSeatTaken
            }
        }
    }
    if points > f.loyalty.balance[p.UserID] {
        return repository.ErrInsufficientPoints
    }
    f.loyalty.balance[p.UserID] -= points
    f.seats.occupy(p.EventID, p.Seats...)
    f.nextID++
    p.ID = f.nextID
    p.CreatedAt = testNow
    f.created = append(f.created, *p)
    return nil
}

// fakeGateway charges instantly.  When hold is set, CreateIntent signals
// entered and waits for hold to be closed before charging.
type fakeGateway struct {
    calls   int
    fail    error
    entered chan struct{}
    hold    chan struct{}
}

// block makes the next charges wait until the returned func is called.
func (g *fakeGateway) block() (entered <-chan struct{}, proceed func()) {
    g.entered = make(chan struct{}, 1)
    g.hold = make(chan struct{})
    return g.entered, func() { close(g.hold) }
}

func (g *fakeGateway) CreateIntent(_ context.Context, req payment.IntentRequest) (model.PaymentIntent, error) {
    if g.hold != nil {
        g.entered <- struct{}{}
        <-g.hold
    }
    if g.fail != nil {
        return model.PaymentIntent{}, g.fail
    }
    g.calls++
    return model.PaymentIntent{
        ID:          fmt.Sprintf("pi_test_%d", g.calls),
        Reference:   req.Reference,
        AmountCents: req.AmountCents,
        Method:      req.Method,
        Status:      payment.IntentStatusSucceeded,
        CreatedAt:   testNow,
    }, nil
}

type fakePublisher struct {
    confirmed   []queue.BookingConfirmedEvent
    rescheduled []queue.BookingRescheduledEvent
    fail        error
}

func (p *fakePublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
    p.confirmed = append(p.confirmed, ev)
    return p.fail
}

func (p *fakePublisher) PublishBookingRescheduled(_ context.Context, ev queue.BookingRescheduledEvent) error {
    p.rescheduled = append(p.rescheduled, ev)
    return p.fail
}

// fakeBookings is both the BookingStore and the availability source.
type fakeBookings struct {
    mu       sync.Mutex
    bookings map[uint64]model.VendorBooking
    updates  int
    listErr  error
}

func (f *fakeBookings) GetByID(_ context.Context, id uint64) (model.VendorBooking, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    b, ok := f.bookings[id]
    if !ok {
        return model.VendorBooking{}, repository.ErrBookingNotFound
    }
    return b, nil
}

func (f *fakeBookings) ListByVendor(_ context.Context, vendorID uint64) ([]model.VendorBooking, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.listErr != nil {
        return nil, f.listErr
    }
    var out []model.VendorBooking
    for _, b := range f.bookings {
        if b.VendorID == vendorID {
            out = append(out, b)
        }
    }
    return out, nil
}

func (f *fakeBookings) Reschedule(_ context.Context, id uint64, u repository.RescheduleUpdate) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    b, ok := f.bookings[id]
    if !ok {
        return repository.ErrBookingNotFound
    }
    b.TimingMode = u.TimingMode
    b.DateStart, b.DateEnd = u.DateStart, u.DateEnd
    b.StartTime, b.EndTime = u.StartTime, u.EndTime
    b.Reason = u.Reason
    if u.PaymentRef != nil {
        b.PaymentRef = u.PaymentRef
    }
    f.bookings[id] = b
    f.updates++
    return nil
}

func (f *fakeBookings) add(b model.VendorBooking) {
    f.mu.Lock()
    f.bookings[b.ID] = b
    f.mu.Unlock()
}

var errBoom = errors.New("boom")

func day(s string) time.Time {
    t, _ := time.Parse(model.DateLayout, s)
    return t
}
