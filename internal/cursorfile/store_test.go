// SPDX-License-Identifier: MIT

package cursorfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mindeco.de/log"
)

func TestStoreAdvanceAndReload(t *testing.T) {
	r := require.New(t)
	path := filepath.Join(t.TempDir(), "state", "cursors.json")

	s, err := Open(path, log.NewNopLogger())
	r.NoError(err)

	r.True(s.AdvanceMessage("srv", "1", 10))
	r.False(s.AdvanceMessage("srv", "1", 9))
	r.True(s.AdvanceDeletion("srv", "1", 4))
	r.True(s.AdvanceMessage("other", "1", 2))
	r.NoError(s.Close())

	// a fresh store picks up where the old one stopped
	s, err = Open(path, log.NewNopLogger())
	r.NoError(err)
	defer s.Close()

	c := s.Get("srv", "1")
	r.Equal(int64(10), c.LastMessageID)
	r.Equal(int64(4), c.LastDeletionID)
	r.Equal(int64(2), s.Get("other", "1").LastMessageID)
	r.False(s.AdvanceMessage("srv", "1", 10), "monotonic across restarts")
}

func TestStoreFreshFileIsEmpty(t *testing.T) {
	r := require.New(t)

	s, err := Open(filepath.Join(t.TempDir(), "cursors.json"), log.NewNopLogger())
	r.NoError(err)
	defer s.Close()

	r.Zero(s.Get("srv", "1"))
}
