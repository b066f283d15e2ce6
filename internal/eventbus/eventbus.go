// Package eventbus fans events out to in-process subscribers. Publishing
// never blocks: a subscriber whose buffer is full misses the event and the
// bus counts the drop.
package eventbus

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus implements a simple publish/subscribe event bus.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the untyped bus used between the simulation and its collectors.
type Bus = TypedBus[Event]

// New creates a Bus whose subscribers buffer DefaultBuffer events.
func New() *Bus { return NewTyped[Event]() }

// NewWithBuffer creates a Bus whose subscribers buffer n events.
func NewWithBuffer(n int) *Bus { return NewTypedWithBuffer[Event](n) }
