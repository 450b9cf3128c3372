package events

import (
	"time"
)

// Payload is the typed body of a quote change. Each payload names its own
// event type, so an event can never carry a body that disagrees with its type.
type Payload interface {
	EventType() string
}

// Event is one recorded change to a quote stream
type Event interface {
	Type() string
	StreamID() string
	Data() Payload
	Timestamp() time.Time
	// Version is the 1-based position within the stream; 0 until appended
	Version() int
}

// EventHandler receives the events it subscribed to. CanHandle lets a handler
// decline a type it was subscribed to under a shared list.
type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// EventStore records editor changes per quote stream
type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

// QuoteEvent is the Event recorded by the editor
type QuoteEvent struct {
	Stream  string
	Payload Payload
	At      time.Time
	Seq     int
}

// Type returns the payload's event type, or "" for an empty event
func (e QuoteEvent) Type() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.EventType()
}

func (e QuoteEvent) StreamID() string {
	return e.Stream
}

func (e QuoteEvent) Data() Payload {
	return e.Payload
}

func (e QuoteEvent) Timestamp() time.Time {
	return e.At
}

func (e QuoteEvent) Version() int {
	return e.Seq
}

// NewEvent builds an unversioned event; the store assigns the version on append
func NewEvent(streamID string, payload Payload, at time.Time) Event {
	return QuoteEvent{
		Stream:  streamID,
		Payload: payload,
		At:      at,
	}
}

// PayloadAs returns the payload of e when it has type T
func PayloadAs[T Payload](e Event) (T, bool) {
	p, ok := e.Data().(T)
	return p, ok
}

// HandlerFunc adapts a function into an EventHandler that accepts every event type
type HandlerFunc func(event Event) error

// Handle calls f(event)
func (f HandlerFunc) Handle(event Event) error {
	return f(event)
}

// CanHandle always reports true
func (f HandlerFunc) CanHandle(string) bool {
	return true
}
