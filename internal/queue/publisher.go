package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "log/slog"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/Enochrwa/wardrobe-system-backend/internal/metrics"
)

// AMQPPublisher publishes persistent JSON messages to a durable queue
// through the default exchange.  The connection is opened lazily and
// reopened after the broker drops it.
type AMQPPublisher struct {
    url     string
    queue   string
    metrics *metrics.Metrics

    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

// NewAMQPPublisher does not dial; the first Publish does.  m may be nil.
func NewAMQPPublisher(url, queue string, m *metrics.Metrics) *AMQPPublisher {
    return &AMQPPublisher{url: url, queue: queue, metrics: m}
}

// channel returns an open channel, dialing when needed.  p.mu must be held.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
        return p.ch, nil
    }
    p.closeLocked()
    conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
    if err != nil {
        return nil, fmt.Errorf("dial broker: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("open channel: %w", err)
    }
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("declare queue %s: %w", p.queue, err)
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

// Publish sends ev.  Errors are returned so the caller can log them; the
// request that triggered the event is never failed because of them.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    p.mu.Lock()
    defer p.mu.Unlock()
    ch, err := p.channel()
    if err != nil {
        p.metrics.ObserveEvent(string(ev.Type), "failed")
        return err
    }
    err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.ID,
        Type:         string(ev.Type),
        Timestamp:    ev.OccurredAt,
        Body:         body,
    })
    if err != nil {
        p.metrics.ObserveEvent(string(ev.Type), "failed")
        p.closeLocked()
        return fmt.Errorf("publish %s: %w", ev.Type, err)
    }
    p.metrics.ObserveEvent(string(ev.Type), "published")
    slog.Debug("event published", "id", ev.ID, "type", ev.Type, "user", ev.UserID)
    return nil
}

// Close releases the connection.
func (p *AMQPPublisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.closeLocked()
    return nil
}

func (p *AMQPPublisher) closeLocked() {
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.conn, p.ch = nil, nil
}
