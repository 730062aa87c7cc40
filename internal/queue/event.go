// Package queue defines the booking events exchanged over RabbitMQ and the
// publisher and consumer that move them.
package queue

// Queue names.  Events are published on the default exchange with the
// queue name as routing key.
const (
    BookingConfirmedQueue   = "booking.confirmed"
    BookingRescheduledQueue = "booking.rescheduled"
)

// BookingConfirmedEvent is published when a ticket purchase is committed.
// It contains enough information for downstream consumers to log, notify or
// trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
    PurchaseID      uint64   `json:"purchase_id"`
    UserID          uint64   `json:"user_id"`
    EventID         uint64   `json:"event_id"`
    EventTitle      string   `json:"event_title"`
    StartsAt        string   `json:"starts_at"`
    SeatLabels      []string `json:"seats"`
    TotalCents      uint32   `json:"total_cents"`
    PaymentIntentID string   `json:"payment_intent_id,omitempty"`
    ConfirmedAt     string   `json:"confirmed_at"`
}

// BookingRescheduledEvent is published when a vendor booking is moved to a
// new window.
type BookingRescheduledEvent struct {
    BookingID       uint64 `json:"booking_id"`
    UserID          uint64 `json:"user_id"`
    VendorID        uint64 `json:"vendor_id"`
    TimingMode      string `json:"timing_mode"`
    DateStart       string `json:"date_start"`
    DateEnd         string `json:"date_end"`
    StartTime       string `json:"start_time"`
    EndTime         string `json:"end_time"`
    FeeCents        uint32 `json:"fee_cents"`
    PaymentIntentID string `json:"payment_intent_id,omitempty"`
    Reason          string `json:"reason,omitempty"`
    RescheduledAt   string `json:"rescheduled_at"`
}
