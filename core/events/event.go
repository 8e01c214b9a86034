// Package events carries the structured facts the route and governance
// engines report: committed routes, fee settlements, and governance
// transitions. Engines emit through the Emitter interface so the node can fan
// events out to logs or subscribers without the engines knowing who listens.
package events

// Event is a structured fact with a stable type tag. Concrete events also
// expose an Event() rendering with string attributes for transport.
type Event interface {
	EventType() string
}

// Emitter receives events as engines produce them.
type Emitter interface {
	Emit(Event)
}

// EmitterFunc adapts a plain function to the Emitter interface.
type EmitterFunc func(Event)

// Emit calls f.
func (f EmitterFunc) Emit(evt Event) { f(evt) }

// NoopEmitter discards every event. Engines default to it so emission is
// always safe to call.
type NoopEmitter struct{}

// Emit discards the event.
func (NoopEmitter) Emit(Event) {}
