// Package queue carries wardrobe events over RabbitMQ.  Writes that change
// what the recommender sees publish an Event; the consumer running next to
// the HTTP server reacts to them (cache invalidation and an activity log).
package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/google/uuid"
)

// EventType names what happened.
type EventType string

const (
    // EventWorn is published when a wear record is appended.
    EventWorn EventType = "wear.recorded"
    // EventWardrobeChanged is published when an item or outfit is created,
    // updated or deleted.
    EventWardrobeChanged EventType = "wardrobe.changed"
    // EventPlanChanged is published when plan entries are written or removed.
    EventPlanChanged EventType = "plan.changed"
    // EventProfileChanged is published when style preferences are saved.
    EventProfileChanged EventType = "profile.changed"
    // EventOccasionChanged is published when an occasion is written or removed.
    EventOccasionChanged EventType = "occasion.changed"
)

// Event is the JSON message body.
type Event struct {
    ID         string    `json:"id"`
    Type       EventType `json:"type"`
    UserID     uint64    `json:"user_id"`
    ItemID     *uint64   `json:"item_id,omitempty"`
    OutfitID   *uint64   `json:"outfit_id,omitempty"`
    OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps a new event with a random id and the current time.
func NewEvent(t EventType, userID uint64) Event {
    return Event{ID: uuid.NewString(), Type: t, UserID: userID, OccurredAt: time.Now().UTC()}
}

// WithItem sets the item reference.
func (e Event) WithItem(id uint64) Event { e.ItemID = &id; return e }

// WithOutfit sets the outfit reference.
func (e Event) WithOutfit(id uint64) Event { e.OutfitID = &id; return e }

func decodeEvent(body []byte) (Event, error) {
    var ev Event
    if err := json.Unmarshal(body, &ev); err != nil {
        return ev, fmt.Errorf("unmarshal event: %w", err)
    }
    if ev.Type == "" || ev.UserID == 0 {
        return ev, fmt.Errorf("event %q: missing type or user", ev.ID)
    }
    return ev, nil
}

// Publisher sends events.  Publishing is best effort: callers log the
// error and carry on.
type Publisher interface {
    Publish(ctx context.Context, ev Event) error
}

// Nop drops every event.  It is used when the queue is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
