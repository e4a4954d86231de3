package chat

import "github.com/google/uuid"

// NewRequestID generates a correlation ID for a generation request.
// Adapters call this when the caller did not supply one.
func NewRequestID() string {
	return uuid.NewString()
}
