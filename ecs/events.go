package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

// EventAbilityStarted is pushed when a unit's roster enters JustStarted.
const EventAbilityStarted = "ability_started"

// AbilityStarted is the payload of EventAbilityStarted.
type AbilityStarted struct {
	Unit    Entity
	Ability Entity
	Tick    uint64
}

// EventQueue is a simple FIFO queue cleared at the end of every tick.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Pending returns a copy of the queued events without consuming them, so
// several consumers in the same tick observe the same events.
func (q *EventQueue) Pending() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := make([]Event, len(q.items))
	copy(out, q.items)
	return out
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
