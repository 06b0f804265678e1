// SPDX-License-Identifier: MIT

package publicchat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveKeyPair(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "secret")

	keys, err := NewKeyPair(nil)
	require.NoError(t, err)
	err = SaveKeyPair(keys, fname)
	require.NoError(t, err)

	stat, err := os.Stat(fname)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), stat.Mode(), "file permissions")
}

func TestLoadKeyPair(t *testing.T) {
	r := require.New(t)
	fname := filepath.Join(t.TempDir(), "secret")

	keys, err := NewKeyPair(nil)
	r.NoError(err)
	r.NoError(SaveKeyPair(keys, fname))

	loaded, err := LoadKeyPair(fname)
	r.NoError(err)
	r.Equal(keys.ID(), loaded.ID())
	r.Equal(keys.Secret, loaded.Secret)
	r.Len(loaded.ID(), 64, "hex encoded 32 byte key")
}

func TestLoadKeyPairMissing(t *testing.T) {
	_, err := LoadKeyPair(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
