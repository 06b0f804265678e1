// SPDX-License-Identifier: MIT

// Package cursorfile persists sync cursors to a single state file so
// that a restarted client resumes where it left off.
package cursorfile

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/keks/persist"
	"github.com/pkg/errors"
	"go.mindeco.de/log"
	"go.mindeco.de/log/level"

	publicchat "github.com/lokinet/go-publicchat"
)

// Store implements publicchat.CursorStore on top of one state file.
// The file is rewritten after every advance; the open handle is kept
// for the lifetime of the store.
type Store struct {
	mu      sync.Mutex
	f       *os.File
	logger  log.Logger
	cursors map[string]publicchat.Cursor
}

var _ publicchat.CursorStore = (*Store)(nil)

// Open loads (or creates) the state file at path.
func Open(path string, logger log.Logger) (*Store, error) {
	mode := os.O_RDWR | os.O_EXCL
	if _, err := os.Stat(path); os.IsNotExist(err) {
		mode |= os.O_CREATE
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, errors.Wrap(err, "cursorfile: failed to create state directory")
		}
	}

	f, err := os.OpenFile(path, mode, 0600)
	if err != nil {
		return nil, errors.Wrap(err, "cursorfile: error opening state file")
	}

	s := Store{
		f:       f,
		logger:  logger,
		cursors: make(map[string]publicchat.Cursor),
	}
	if err := persist.Load(f, &s.cursors); err != nil {
		if !errors.Is(err, io.EOF) {
			f.Close()
			return nil, errors.Wrap(err, "cursorfile: undecodable state file")
		}
		// fresh file
	}
	return &s, nil
}

func (s *Store) Close() error {
	return s.f.Close()
}

// neither servers nor channel names contain a tab
func storeKey(server, channel string) string {
	return server + "\t" + channel
}

func (s *Store) Get(server, channel string) publicchat.Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors[storeKey(server, channel)]
}

func (s *Store) AdvanceMessage(server, channel string, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := storeKey(server, channel)
	c := s.cursors[k]
	if id <= c.LastMessageID {
		return false
	}
	c.LastMessageID = id
	s.cursors[k] = c
	s.save()
	return true
}

func (s *Store) AdvanceDeletion(server, channel string, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := storeKey(server, channel)
	c := s.cursors[k]
	if id <= c.LastDeletionID {
		return false
	}
	c.LastDeletionID = id
	s.cursors[k] = c
	s.save()
	return true
}

// save must run with the lock held. A failed write only costs
// re-fetching already processed records after a restart, so the
// advance itself still counts.
func (s *Store) save() {
	if err := persist.Save(s.f, s.cursors); err != nil {
		level.Warn(s.logger).Log("event", "cursor state write failed", "err", err)
	}
}
