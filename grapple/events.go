package grapple

import "github.com/jakecoffman/cp"

// EventKind identifies grapple notifications.
type EventKind string

const (
	EventStarted  EventKind = "grapple_started"
	EventEnded    EventKind = "grapple_ended"
	EventNoTarget EventKind = "grapple_no_target"
)

// ExitReason says why a session ended.
type ExitReason int

const (
	ExitNone ExitReason = iota
	ExitArrival
	ExitCancel
	ExitObstruction
	ExitAnchorLost
	ExitOutOfRange
)

func (r ExitReason) String() string {
	switch r {
	case ExitArrival:
		return "arrival"
	case ExitCancel:
		return "cancel"
	case ExitObstruction:
		return "obstruction"
	case ExitAnchorLost:
		return "anchor_lost"
	case ExitOutOfRange:
		return "out_of_range"
	default:
		return "none"
	}
}

// Event is a fire-and-forget notification. Reason is only set for
// EventEnded. Speed is the flight speed at the moment the event fired.
type Event struct {
	Kind   EventKind
	Reason ExitReason
	Point  cp.Vector
	Speed  float64
}

// Handler receives grapple events.
type Handler func(evt Event)

// Emitter fans events out to its handlers in subscription order.
type Emitter struct {
	Handlers []Handler
}

func (e *Emitter) Subscribe(h Handler) {
	if e == nil || h == nil {
		return
	}
	e.Handlers = append(e.Handlers, h)
}

// Emit sends an event to all handlers.
func (e *Emitter) Emit(evt Event) {
	if e == nil || len(e.Handlers) == 0 {
		return
	}
	for _, h := range e.Handlers {
		if h != nil {
			h(evt)
		}
	}
}
