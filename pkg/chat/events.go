package chat

// EventType classifies a streaming event from the backend.
type EventType int

const (
	EventDelta EventType = iota // Incremental text content
	EventDone                   // Stream finished
	EventError                  // Stream error
)

// Event is a single streaming event delivered on the channel returned by
// Model.Stream. After an EventDone or EventError the channel is closed.
type Event struct {
	// Type indicates what kind of event this is.
	Type EventType

	// Delta contains incremental text for EventDelta events.
	Delta string

	// TaskID is the backend task identifier, when the stream carries one.
	TaskID string

	// Usage is populated on the final event when the backend reports it.
	Usage *Usage

	// Err is populated for EventError events.
	Err error
}
