package queue

import (
    "context"
    "errors"
    "fmt"
    "log/slog"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/Enochrwa/wardrobe-system-backend/internal/metrics"
)

// HandlerFunc reacts to one event.  Returning an error rejects the
// message without requeueing it.
type HandlerFunc func(ctx context.Context, ev Event) error

// Consumer reads events from a durable queue and hands them to Handle.
// Run keeps reconnecting with exponential backoff until ctx is done.
type Consumer struct {
    URL      string
    Queue    string
    Prefetch int
    Handle   HandlerFunc
    Metrics  *metrics.Metrics
    Log      *slog.Logger

    // MaxBackoff caps the reconnect delay (default 30s).
    MaxBackoff time.Duration
}

// Run blocks until ctx is cancelled and then returns nil.
func (c *Consumer) Run(ctx context.Context) error {
    if c.Handle == nil {
        return errors.New("queue consumer: nil handler")
    }
    log := c.Log
    if log == nil {
        log = slog.Default()
    }
    maxBackoff := c.MaxBackoff
    if maxBackoff <= 0 {
        maxBackoff = 30 * time.Second
    }

    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return nil
        }
        err := c.session(ctx, log)
        if ctx.Err() != nil {
            return nil
        }
        log.Warn("event consumer disconnected", "queue", c.Queue, "err", err, "retry_in", backoff)
        select {
        case <-ctx.Done():
            return nil
        case <-time.After(backoff):
        }
        if backoff < maxBackoff {
            backoff = min(2*backoff, maxBackoff)
        }
    }
}

// session consumes on one connection until it breaks or ctx ends.
func (c *Consumer) session(ctx context.Context, log *slog.Logger) error {
    conn, err := amqp.DialConfig(c.URL, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
    if err != nil {
        return fmt.Errorf("dial broker: %w", err)
    }
    defer conn.Close()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("open channel: %w", err)
    }
    defer ch.Close()

    prefetch := c.Prefetch
    if prefetch <= 0 {
        prefetch = 50
    }
    if err := ch.Qos(prefetch, 0, false); err != nil {
        return fmt.Errorf("set qos: %w", err)
    }
    if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("declare queue %s: %w", c.Queue, err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, c.Queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("consume %s: %w", c.Queue, err)
    }
    log.Info("event consumer connected", "queue", c.Queue)

    closed := conn.NotifyClose(make(chan *amqp.Error, 1))
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case amqpErr := <-closed:
            return fmt.Errorf("connection closed: %v", amqpErr)
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.process(ctx, d.Body); err != nil {
                log.Error("event rejected", "message_id", d.MessageId, "err", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// process decodes and handles one message body.
func (c *Consumer) process(ctx context.Context, body []byte) error {
    ev, err := decodeEvent(body)
    if err != nil {
        c.Metrics.ObserveEvent("unknown", "failed")
        return err
    }
    if err := c.Handle(ctx, ev); err != nil {
        c.Metrics.ObserveEvent(string(ev.Type), "failed")
        return fmt.Errorf("handle %s %s: %w", ev.Type, ev.ID, err)
    }
    c.Metrics.ObserveEvent(string(ev.Type), "consumed")
    return nil
}
