// SPDX-License-Identifier: MIT

package client

import (
	"context"
	"errors"

	"go.mindeco.de/log/level"

	publicchat "github.com/lokinet/go-publicchat"
)

// retry drives one mutating operation up to the configured attempt
// bound, re-running the whole closure on every failure. It stops early
// when the context is done or the server denied the operation outright
// (a retry cannot fix missing privileges).
func (c *Client) retry(ctx context.Context, what string, op func(context.Context) error) error {
	var last error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, publicchat.ErrForbidden) {
			return err
		}

		last = err
		level.Debug(c.logger).Log("event", "retrying", "what", what, "attempt", attempt, "err", err)
	}
	return publicchat.ErrRetriesExhausted{Attempts: c.maxAttempts, Last: last}
}
