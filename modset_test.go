// SPDX-License-Identifier: MIT

package publicchat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModeratorSetReplace(t *testing.T) {
	r := require.New(t)

	ms := NewModeratorSet(0)
	r.Equal(0, ms.Count())
	r.False(ms.Has("alice"))

	ms.Replace([]string{"alice", "bob"})
	r.Equal(2, ms.Count())
	r.True(ms.Has("alice"))

	// replace drops everyone not in the new list
	ms.Replace([]string{"carol"})
	r.Equal(1, ms.Count())
	r.False(ms.Has("alice"))
	r.True(ms.Has("carol"))
	r.Equal([]string{"carol"}, ms.List())
}

func TestModeratorDirectory(t *testing.T) {
	r := require.New(t)

	d := NewModeratorDirectory()
	r.False(d.Is("alice", "srv", "1"), "empty directory knows no moderators")

	d.Replace("srv", "1", []string{"alice"})
	r.True(d.Is("alice", "srv", "1"))
	r.False(d.Is("alice", "srv", "2"), "scoped to the channel")
	r.False(d.Is("alice", "other", "1"), "scoped to the server")

	d.Replace("srv", "1", []string{"bob"})
	r.False(d.Is("alice", "srv", "1"), "refresh replaces, does not merge")
	r.True(d.Is("bob", "srv", "1"))
}
