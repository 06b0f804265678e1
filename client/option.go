// SPDX-License-Identifier: MIT

package client

import (
	"fmt"

	"go.mindeco.de/log"

	publicchat "github.com/lokinet/go-publicchat"
)

// Option allows to tune certain aspects of a client
type Option func(*Client) error

// WithLogger sets a different logger.
func WithLogger(l log.Logger) Option {
	return func(c *Client) error {
		c.logger = l
		return nil
	}
}

// WithCursorStore swaps the in-memory cursor store for a persistent
// one.
func WithCursorStore(s publicchat.CursorStore) Option {
	return func(c *Client) error {
		if s == nil {
			return fmt.Errorf("nil cursor store")
		}
		c.cursors = s
		return nil
	}
}

// WithFallbackCount changes the batch size of cursor-less fetches.
func WithFallbackCount(n int) Option {
	return func(c *Client) error {
		if n < 1 {
			return fmt.Errorf("fallback count must be positive, got %d", n)
		}
		c.fallbackCount = n
		return nil
	}
}

// WithMaxAttempts changes the retry bound for mutating calls.
func WithMaxAttempts(n int) Option {
	return func(c *Client) error {
		if n < 1 {
			return fmt.Errorf("attempt bound must be positive, got %d", n)
		}
		c.maxAttempts = n
		return nil
	}
}
