// SPDX-License-Identifier: MIT

package client

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.mindeco.de/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/lokinet/go-publicchat/message"
)

// Poller drives the incremental sync loop for a set of channels on one
// server. Message and deletion fetches for all channels run
// concurrently; per-channel failures are collected, they do not stop
// the other channels.
type Poller struct {
	client   *Client
	server   string
	channels []string
	interval time.Duration

	// OnMessages and OnDeletions receive each non-empty batch. Both may
	// be nil.
	OnMessages  func(channel string, msgs []message.Message)
	OnDeletions func(channel string, ids []int64)
}

// NewPoller builds a poller over the client's cursors and directory.
func (c *Client) NewPoller(server string, channels []string, interval time.Duration) *Poller {
	return &Poller{
		client:   c,
		server:   server,
		channels: channels,
		interval: interval,
	}
}

// PollOnce syncs every channel once and returns the combined failures,
// if any.
func (p *Poller) PollOnce(ctx context.Context) error {
	var (
		mu   sync.Mutex
		merr *multierror.Error
	)
	collect := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		merr = multierror.Append(merr, err)
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, channel := range p.channels {
		channel := channel
		g.Go(func() error {
			msgs, err := p.client.FetchMessages(ctx, channel, p.server)
			collect(err)
			if err == nil && len(msgs) > 0 && p.OnMessages != nil {
				p.OnMessages(channel, msgs)
			}
			return nil
		})
		g.Go(func() error {
			ids, err := p.client.FetchDeletions(ctx, channel, p.server)
			collect(err)
			if err == nil && len(ids) > 0 && p.OnDeletions != nil {
				p.OnDeletions(channel, ids)
			}
			return nil
		})
	}
	g.Wait()
	return merr.ErrorOrNil()
}

// DefaultPollInterval paces Run when no interval was given.
const DefaultPollInterval = 4 * time.Second

// Run polls until the context is done. Failed rounds are logged and
// the loop keeps going; only cancellation stops it.
func (p *Poller) Run(ctx context.Context) error {
	interval := p.interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		if err := p.PollOnce(ctx); err != nil {
			level.Warn(p.client.logger).Log("event", "poll round failed", "server", p.server, "err", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}
