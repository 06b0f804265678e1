// SPDX-License-Identifier: MIT

package client

import (
	"context"
	"fmt"
	"time"

	"go.mindeco.de/log/level"

	"github.com/lokinet/go-publicchat/message"
)

// Send signs the message and posts it to the channel. Signing happens
// exactly once, before any network attempt: a signing failure means
// broken key material and is returned straight away, while the POST
// itself runs under the retry bound.
//
// The returned message is the canonical one: server-assigned ID,
// server-echoed text and creation time, with quote, attachments and
// signature carried over from the local copy.
func (c *Client) Send(ctx context.Context, msg message.Message, channel, server string) (*message.Message, error) {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	if err := msg.Sign(c.kp); err != nil {
		return nil, err
	}

	body, err := msg.SendBody()
	if err != nil {
		return nil, fmt.Errorf("publicchat/client: send encoding failed: %w", err)
	}

	var echoed *message.Message
	err = c.retry(ctx, "send", func(ctx context.Context) error {
		resp, err := c.tr.Execute(ctx, "POST", server, "channels/"+channel+"/messages", nil, body)
		if err != nil {
			return err
		}
		m, err := message.FromSendResponse(resp, msg)
		if err != nil {
			return err
		}
		echoed = m
		return nil
	})
	if err != nil {
		level.Error(c.logger).Log("event", "send failed", "channel", channel, "err", err)
		return nil, err
	}

	level.Debug(c.logger).Log("event", "sent", "channel", channel, "id", echoed.ServerID)
	return echoed, nil
}

// Delete removes a message, either through the self-delete endpoint
// for the caller's own messages or through the privileged moderation
// endpoint. Returns the deleted message's server ID.
func (c *Client) Delete(ctx context.Context, id int64, channel, server string, isSentByUser bool) (int64, error) {
	path := fmt.Sprintf("channels/%s/messages/%d", channel, id)
	if !isSentByUser {
		path = fmt.Sprintf("moderation/message/%d", id)
	}

	err := c.retry(ctx, "delete", func(ctx context.Context) error {
		_, err := c.tr.Execute(ctx, "DELETE", server, path, nil, nil)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("publicchat/client: delete of %d failed: %w", id, err)
	}

	level.Debug(c.logger).Log("event", "deleted", "channel", channel, "id", id, "moderation", !isSentByUser)
	return id, nil
}

// SetDisplayName updates the name the server shows for this account.
func (c *Client) SetDisplayName(ctx context.Context, name, server string) error {
	body := struct {
		Name string `json:"name"`
	}{name}

	err := c.retry(ctx, "set display name", func(ctx context.Context) error {
		_, err := c.tr.Execute(ctx, "PATCH", server, "users/me", nil, body)
		return err
	})
	if err != nil {
		return fmt.Errorf("publicchat/client: display name update failed: %w", err)
	}
	return nil
}
