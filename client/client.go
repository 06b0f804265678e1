// SPDX-License-Identifier: MIT

// Package client implements the sync client for federated public-chat
// servers: incremental message and deletion fetches, signed sends and
// deletes with bounded retry, and the moderator directory.
package client

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"go.mindeco.de/log"

	publicchat "github.com/lokinet/go-publicchat"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// DefaultFallbackCount is how many records a fetch asks for when no
	// cursor exists yet. Single-server deployments use 256.
	DefaultFallbackCount = 256

	// LegacyFallbackCount is the batch size legacy multi-group
	// deployments used. Channel-scope tuning, not a protocol constant.
	LegacyFallbackCount = 20

	// DefaultMaxAttempts bounds the retries of one mutating call.
	DefaultMaxAttempts = 8
)

// Client talks to one or more public-chat servers through a Transport.
// Cursors and the moderator directory are shared across concurrent
// calls; both converge under racing updates (max-CAS advancement,
// wholesale set replacement).
type Client struct {
	kp *publicchat.KeyPair
	tr publicchat.Transport

	cursors publicchat.CursorStore
	mods    *publicchat.ModeratorDirectory

	logger log.Logger

	fallbackCount int
	maxAttempts   int
}

func New(kp *publicchat.KeyPair, tr publicchat.Transport, opts ...Option) (*Client, error) {
	if tr == nil {
		return nil, fmt.Errorf("publicchat/client: need a transport")
	}
	c := Client{
		kp:            kp,
		tr:            tr,
		cursors:       publicchat.NewMemoryCursorStore(),
		mods:          publicchat.NewModeratorDirectory(),
		logger:        log.With(log.NewLogfmtLogger(os.Stderr), "unit", "publicChat"),
		fallbackCount: DefaultFallbackCount,
		maxAttempts:   DefaultMaxAttempts,
	}
	for i, o := range opts {
		if err := o(&c); err != nil {
			return nil, fmt.Errorf("publicchat/client: option %d failed: %w", i, err)
		}
	}
	return &c, nil
}

// Cursor exposes the stored cursor for one (server, channel) pair,
// mainly for tests and status display.
func (c *Client) Cursor(server, channel string) publicchat.Cursor {
	return c.cursors.Get(server, channel)
}
