package queue

import (
    "context"
    "encoding/json"
    "time"

    "github.com/labstack/gommon/log"
    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends booking events to RabbitMQ.  Errors are logged and
// returned so callers can ignore failures without interrupting the main
// request flow.
type Publisher struct {
    url string
}

// NewPublisher returns a publisher dialing url on each publish.
func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// PublishBookingConfirmed publishes ev to booking.confirmed.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, ev BookingConfirmedEvent) error {
    return p.publish(ctx, BookingConfirmedQueue, ev)
}

// PublishBookingRescheduled publishes ev to booking.rescheduled.
func (p *Publisher) PublishBookingRescheduled(ctx context.Context, ev BookingRescheduledEvent) error {
    return p.publish(ctx, BookingRescheduledQueue, ev)
}

// publish marks messages persistent and declares the queue durable so
// events survive broker restarts.
func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        log.Warnf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Warnf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(
        queue, // name
        true,  // durable
        false, // autoDelete
        false, // exclusive
        false, // noWait
        nil,   // args
    ); err != nil {
        log.Warnf("rabbitmq: queue declare %s failed: %v", queue, err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        log.Warnf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
        log.Warnf("rabbitmq: publish to %s failed: %v", queue, err)
        return err
    }
    return nil
}
