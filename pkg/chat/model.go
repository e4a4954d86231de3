package chat

import "context"

// Model abstracts a conversational inference backend. Each adapter handles
// its own backend protocol (request shape, authentication, streaming)
// internally.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Model interface {
	// Name returns the adapter identifier (e.g., "glm").
	Name() string

	// Generate performs non-streaming inference. The context cancels the
	// underlying HTTP request.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Stream performs streaming inference. The returned channel receives
	// Event values and is closed by the adapter when the stream completes
	// or errors.
	Stream(ctx context.Context, req *Request) (<-chan Event, error)

	// Close releases adapter resources (HTTP clients, connections).
	Close() error
}
