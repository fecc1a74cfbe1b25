// Package pipelineevents is a small typed pub/sub bus for diagnostics
// the pipeline emits but does not itself need to act on: a packet
// dropped on decode error, a playout stall, an ack advancing. Nothing
// in internal/pipeline requires a subscriber to be registered; this
// exists for callers (a demo binary, a test harness) that want to
// observe pipeline behavior without threading extra return values
// through Tick.
//
// Adapted from this repository's former core/events/events.go: the
// same Register/Trigger shape over a map of event type to handler
// slice, generalized from game events (player connect, vehicle spawn)
// to pipeline events, and carrying typed payload fields instead of an
// untyped Data interface{}.
package pipelineevents

// Type identifies the kind of event carried by an Event.
type Type int

const (
	TypePacketSent Type = iota
	TypePacketReceived
	TypePacketDropped
	TypeAckAdvanced
	TypePlayoutStall
)

// Event is one occurrence. Only the fields relevant to Type are
// meaningful; the rest are zero.
type Event struct {
	Type     Type
	Sequence uint16
	Reason   string
}

// Handler receives a dispatched Event.
type Handler func(Event)

// Bus dispatches Events to every Handler registered for their Type.
type Bus struct {
	handlers map[Type][]Handler
}

// NewBus returns an empty event bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Type][]Handler)}
}

// On registers handler to run whenever an Event of the given type is
// published.
func (b *Bus) On(t Type, handler Handler) {
	b.handlers[t] = append(b.handlers[t], handler)
}

// Publish dispatches event to every handler registered for its Type.
// Handlers run synchronously, in registration order, on the caller's
// goroutine: the pipeline is single-threaded and cooperative, and this
// bus does not introduce concurrency it doesn't have.
func (b *Bus) Publish(event Event) {
	for _, handler := range b.handlers[event.Type] {
		handler(event)
	}
}
