// Package history defines the conversation transcript store used to replay
// earlier turns into the prompt list for multi-turn sessions. Implementations
// live in the memory and postgres subpackages.
package history

import (
	"context"
	"errors"

	"github.com/glmware/glmbridge/pkg/chat"
)

// ErrNotFound is returned when a session has no stored transcript.
var ErrNotFound = errors.New("session not found")

// Store persists conversation transcripts keyed by session ID.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Store interface {
	// Append adds messages to the end of a session's transcript, creating
	// the session if it does not exist.
	Append(ctx context.Context, sessionID string, messages ...chat.Message) error

	// Messages returns a session's transcript in insertion order.
	// Returns ErrNotFound when the session does not exist.
	Messages(ctx context.Context, sessionID string) ([]chat.Message, error)

	// Clear removes a session's transcript. Clearing an unknown session
	// is not an error.
	Clear(ctx context.Context, sessionID string) error

	// Close releases store resources.
	Close() error
}
