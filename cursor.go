// SPDX-License-Identifier: MIT

package publicchat

import (
	"sync"
)

// Cursor tracks the highest server-assigned IDs already processed for
// one (server, channel) pair. Messages and deletions advance
// independently.
type Cursor struct {
	LastMessageID  int64 `json:"lastMessageID"`
	LastDeletionID int64 `json:"lastDeletionID"`
}

// CursorStore persists cursors per (server, channel) pair.
//
// Advances are monotonic compare-and-set updates: an ID at or below the
// stored one leaves the cursor untouched and returns false. Concurrent
// fetches for the same pair may race on advancement; commutative-under-max
// updates make that safe without further coordination.
type CursorStore interface {
	Get(server, channel string) Cursor
	AdvanceMessage(server, channel string, id int64) bool
	AdvanceDeletion(server, channel string, id int64) bool
}

type cursorKey struct {
	server, channel string
}

// MemoryCursorStore keeps cursors in process memory only.
type MemoryCursorStore struct {
	mu      sync.Mutex
	cursors map[cursorKey]Cursor
}

var _ CursorStore = (*MemoryCursorStore)(nil)

func NewMemoryCursorStore() *MemoryCursorStore {
	return &MemoryCursorStore{
		cursors: make(map[cursorKey]Cursor),
	}
}

func (s *MemoryCursorStore) Get(server, channel string) Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors[cursorKey{server, channel}]
}

func (s *MemoryCursorStore) AdvanceMessage(server, channel string, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := cursorKey{server, channel}
	c := s.cursors[k]
	if id <= c.LastMessageID {
		return false
	}
	c.LastMessageID = id
	s.cursors[k] = c
	return true
}

func (s *MemoryCursorStore) AdvanceDeletion(server, channel string, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := cursorKey{server, channel}
	c := s.cursors[k]
	if id <= c.LastDeletionID {
		return false
	}
	c.LastDeletionID = id
	s.cursors[k] = c
	return true
}
