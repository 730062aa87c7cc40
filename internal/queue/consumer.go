package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/labstack/gommon/log"
    amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer listens on both booking queues and appends one line per event
// to <dir>/booking.log.
type Consumer struct {
    url string
    dir string
}

// NewConsumer returns a consumer for the broker at url writing into dir.
func NewConsumer(url, dir string) *Consumer { return &Consumer{url: url, dir: dir} }

// Run dials the broker and consumes until ctx is cancelled.  Lost
// connections are redialed with exponential backoff capped at 30s.
// Messages that cannot be handled are rejected without requeue so a bad
// payload cannot spin the loop.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.url)
        if err != nil {
            log.Warnf("booking-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warnf("booking-consumer: consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warnf("booking-consumer: set QoS failed: %v", err)
    }

    var streams []<-chan amqp.Delivery
    for _, q := range []string{BookingConfirmedQueue, BookingRescheduledQueue} {
        if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", q, err)
        }
        msgs, err := ch.Consume(q, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", q, err)
        }
        streams = append(streams, msgs)
    }

    confirmed, rescheduled := streams[0], streams[1]
    for {
        var d amqp.Delivery
        var ok bool
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok = <-confirmed:
        case d, ok = <-rescheduled:
        }
        if !ok {
            return errors.New("deliveries channel closed")
        }
        if err := c.Handle(d.RoutingKey, d.Body); err != nil {
            log.Errorf("booking-consumer: handle message failed: %v", err)
            _ = d.Nack(false, false)
            continue
        }
        _ = d.Ack(false)
    }
}

// Handle formats one message from queue and appends it to the log file.
func (c *Consumer) Handle(queue string, body []byte) error {
    var line string
    switch queue {
    case BookingConfirmedQueue:
        var ev BookingConfirmedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal: %w", err)
        }
        line = FormatConfirmed(ev)
    case BookingRescheduledQueue:
        var ev BookingRescheduledEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal: %w", err)
        }
        line = FormatRescheduled(ev)
    default:
        return fmt.Errorf("unexpected queue %q", queue)
    }

    if err := os.MkdirAll(c.dir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(c.dir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatConfirmed renders a purchase event as a single log line.
func FormatConfirmed(ev BookingConfirmedEvent) string {
    return fmt.Sprintf("[%s] Booking confirmed | purchase_id=%d | user_id=%d | event_id=%d | event=%q | total=%d cents | seats=[%s] | payment=%s\n",
        ev.ConfirmedAt, ev.PurchaseID, ev.UserID, ev.EventID, ev.EventTitle, ev.TotalCents,
        strings.Join(ev.SeatLabels, ","), orDash(ev.PaymentIntentID))
}

// FormatRescheduled renders a reschedule event as a single log line.
func FormatRescheduled(ev BookingRescheduledEvent) string {
    return fmt.Sprintf("[%s] Booking rescheduled | booking_id=%d | user_id=%d | vendor_id=%d | mode=%s | window=%s %s..%s %s | fee=%d cents | payment=%s\n",
        ev.RescheduledAt, ev.BookingID, ev.UserID, ev.VendorID, ev.TimingMode,
        ev.DateStart, ev.StartTime, ev.DateEnd, ev.EndTime, ev.FeeCents, orDash(ev.PaymentIntentID))
}

func orDash(s string) string {
    if s == "" {
        return "-"
    }
    return s
}
