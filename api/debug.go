// Package api
// Author: momentics
//
// Live debug and observability hooks for production workloads.

package api

// Debug exposes runtime introspection and health API.
type Debug interface {
	// DumpState emits a snapshot of system state for diagnostics.
	DumpState() map[string]any

	// RegisterProbe dynamically registers new debug probes.
	RegisterProbe(name string, fn func() any)
}

// Direction tells whether a frame was read or written.
type Direction int

const (
	Inbound Direction = iota
	Outbound
)

func (d Direction) String() string {
	if d == Outbound {
		return "outbound"
	}
	return "inbound"
}

// FrameEvent describes one frame that crossed a Layer8 streamer.
type FrameEvent struct {
	Direction Direction
	Opcode    byte // opcode of the application (inner) frame
	WireBytes int  // bytes of the frame as it appeared on the stream
	Payload   int  // application payload length
	Encrypted bool // frame travelled inside an encrypted envelope
}

// FrameObserver receives a FrameEvent for every frame read or written.
// Observers are invoked synchronously on the connection's goroutine.
type FrameObserver interface {
	ObserveFrame(ev FrameEvent)
}

// FrameObserverFunc adapts a function to FrameObserver.
type FrameObserverFunc func(FrameEvent)

// ObserveFrame calls f(ev).
func (f FrameObserverFunc) ObserveFrame(ev FrameEvent) { f(ev) }
