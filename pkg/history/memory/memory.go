// Package memory provides an in-memory implementation of history.Store for
// testing and single-process use. Transcripts are lost when the process
// restarts. Optional LRU eviction limits the number of retained sessions.
package memory

import (
	"container/list"
	"context"
	"sync"

	"github.com/glmware/glmbridge/pkg/chat"
	"github.com/glmware/glmbridge/pkg/history"
)

// entry holds one session's transcript and its LRU position.
type entry struct {
	messages []chat.Message
	lruElem  *list.Element
}

// Store is an in-memory history.Store with optional LRU eviction.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	lruList *list.List // front = most recently used, back = least recently used
	maxSize int        // 0 = unlimited
}

// Ensure Store implements history.Store at compile time.
var _ history.Store = (*Store)(nil)

// New creates a new in-memory store. If maxSize is 0, the store grows
// without limit. If maxSize > 0, the least recently used session is evicted
// when the limit is reached.
func New(maxSize int) *Store {
	return &Store{
		entries: make(map[string]*entry),
		lruList: list.New(),
		maxSize: maxSize,
	}
}

// Append adds messages to a session's transcript, creating the session if
// needed.
func (s *Store) Append(ctx context.Context, sessionID string, messages ...chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		// Evict if at capacity.
		if s.maxSize > 0 && len(s.entries) >= s.maxSize {
			s.evictOldest()
		}
		e = &entry{lruElem: s.lruList.PushFront(sessionID)}
		s.entries[sessionID] = e
	} else {
		s.lruList.MoveToFront(e.lruElem)
	}

	e.messages = append(e.messages, messages...)
	return nil
}

// Messages returns a copy of a session's transcript in insertion order.
func (s *Store) Messages(ctx context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		return nil, history.ErrNotFound
	}

	s.lruList.MoveToFront(e.lruElem)

	out := make([]chat.Message, len(e.messages))
	copy(out, e.messages)
	return out, nil
}

// Clear removes a session's transcript.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		return nil
	}

	s.lruList.Remove(e.lruElem)
	delete(s.entries, sessionID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// evictOldest removes the least recently used session.
// Must be called with the write lock held.
func (s *Store) evictOldest() {
	back := s.lruList.Back()
	if back == nil {
		return
	}
	sessionID := back.Value.(string)
	s.lruList.Remove(back)
	delete(s.entries, sessionID)
}
