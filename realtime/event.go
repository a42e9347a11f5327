package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventReservationCreated   = "reservation_created"
	EventReservationUpdated   = "reservation_updated"
	EventReservationBumped    = "reservation_bumped"
	EventReservationStatus    = "reservation_status"
	EventReservationCancelled = "reservation_cancelled"
)

// Event is one change to a restaurant's bookings, published after commit.
type Event struct {
	ID           string      `json:"id"`
	Event        string      `json:"event"`
	RestaurantID uint        `json:"restaurant_id"`
	Date         string      `json:"date,omitempty"`
	Data         interface{} `json:"data"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

func NewEvent(eventType string, restaurantID uint, date string, data interface{}) Event {
	return Event{
		ID:           uuid.NewString(),
		Event:        eventType,
		RestaurantID: restaurantID,
		Date:         date,
		Data:         data,
		OccurredAt:   time.Now().UTC(),
	}
}

// Notifier delivers events to subscribers. Delivery is best effort: a failed
// publish never undoes a committed booking.
type Notifier interface {
	Publish(ctx context.Context, evt Event)
}

// Fanout publishes every event to each of its notifiers in order.
type Fanout []Notifier

func (f Fanout) Publish(ctx context.Context, evt Event) {
	for _, n := range f {
		if n != nil {
			n.Publish(ctx, evt)
		}
	}
}

// Discard drops events.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
