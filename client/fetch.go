// SPDX-License-Identifier: MIT

package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"go.mindeco.de/log/level"

	"github.com/lokinet/go-publicchat/message"
)

// FetchMessages retrieves the channel messages newer than the stored
// cursor (or a fallback batch when there is no cursor yet), verifies
// each one and returns the survivors sorted ascending by timestamp.
//
// The cursor advances for every decodable record BEFORE its signature
// is checked. That is deliberate: a permanently broken record would
// otherwise be re-fetched on every sync. Broken or unverifiable
// records are logged and skipped, only transport or body-level decode
// failures abort the call.
func (c *Client) FetchMessages(ctx context.Context, channel, server string) ([]message.Message, error) {
	params := url.Values{}
	params.Set("include_annotations", "1")
	if since := c.cursors.Get(server, channel).LastMessageID; since > 0 {
		params.Set("since_id", strconv.FormatInt(since, 10))
	} else {
		params.Set("count", strconv.Itoa(c.fallbackCount))
	}

	body, err := c.tr.Execute(ctx, "GET", server, "channels/"+channel+"/messages", params, nil)
	if err != nil {
		return nil, fmt.Errorf("publicchat/client: message fetch for channel %s failed: %w", channel, err)
	}

	raws, err := message.RecordsFromBody(body)
	if err != nil {
		return nil, fmt.Errorf("publicchat/client: bad message feed for channel %s: %w", channel, err)
	}

	msgs := make([]message.Message, 0, len(raws))
	for _, raw := range raws {
		rec, err := message.DecodeRecord(raw)
		if err != nil {
			level.Warn(c.logger).Log("event", "skipping record", "channel", channel, "err", err)
			continue
		}

		c.cursors.AdvanceMessage(server, channel, rec.ID)

		msg, err := rec.Message()
		if err != nil {
			if !errors.Is(err, message.ErrRecordDeleted) && !errors.Is(err, message.ErrNotPublicChat) {
				level.Warn(c.logger).Log("event", "skipping record", "channel", channel, "id", rec.ID, "err", err)
			}
			continue
		}

		if err := msg.Verify(); err != nil {
			level.Warn(c.logger).Log("event", "dropping unverifiable message", "channel", channel, "id", rec.ID, "sender", msg.Sender)
			continue
		}

		msgs = append(msgs, *msg)
	}

	// timestamp order, not server ID order: the two can diverge under
	// clock skew
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp < msgs[j].Timestamp
	})
	return msgs, nil
}

// FetchDeletions retrieves deletion notices newer than the deletion
// cursor and returns the server IDs of the messages to purge locally.
func (c *Client) FetchDeletions(ctx context.Context, channel, server string) ([]int64, error) {
	params := url.Values{}
	if since := c.cursors.Get(server, channel).LastDeletionID; since > 0 {
		params.Set("since_id", strconv.FormatInt(since, 10))
	} else {
		params.Set("count", strconv.Itoa(c.fallbackCount))
	}

	body, err := c.tr.Execute(ctx, "GET", server, "channel/"+channel+"/deletes", params, nil)
	if err != nil {
		return nil, fmt.Errorf("publicchat/client: deletion fetch for channel %s failed: %w", channel, err)
	}

	raws, err := message.RecordsFromBody(body)
	if err != nil {
		return nil, fmt.Errorf("publicchat/client: bad deletion feed for channel %s: %w", channel, err)
	}

	targets := make([]int64, 0, len(raws))
	for _, raw := range raws {
		d, err := message.DecodeDeletion(raw)
		if err != nil {
			level.Warn(c.logger).Log("event", "skipping deletion record", "channel", channel, "err", err)
			continue
		}
		c.cursors.AdvanceDeletion(server, channel, d.ID)
		targets = append(targets, d.MessageID)
	}
	return targets, nil
}

// FetchModerators refreshes the moderator directory entry for the
// channel, replacing the previous set wholesale.
func (c *Client) FetchModerators(ctx context.Context, channel, server string) ([]string, error) {
	body, err := c.tr.Execute(ctx, "GET", server, "channel/"+channel+"/get_moderators", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("publicchat/client: moderator fetch for channel %s failed: %w", channel, err)
	}

	var ids []string
	if err := json.Unmarshal(body, &ids); err != nil {
		var wrapped struct {
			Moderators []string `json:"moderators"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("publicchat/client: bad moderator list for channel %s: %w", channel, err)
		}
		ids = wrapped.Moderators
	}

	c.mods.Replace(server, channel, ids)
	return ids, nil
}

// IsModerator is a pure lookup against the cached directory. It never
// fetches; an unknown channel has no moderators as far as the cache is
// concerned.
func (c *Client) IsModerator(identity, channel, server string) bool {
	return c.mods.Is(identity, server, channel)
}

// ChannelInfo fetches the channel record and decodes its settings
// annotation.
func (c *Client) ChannelInfo(ctx context.Context, channel, server string) (*ChannelInfo, error) {
	params := url.Values{}
	params.Set("include_annotations", "1")

	body, err := c.tr.Execute(ctx, "GET", server, "channels/"+channel, params, nil)
	if err != nil {
		return nil, fmt.Errorf("publicchat/client: channel info fetch for %s failed: %w", channel, err)
	}

	var resp struct {
		Data struct {
			Annotations []struct {
				Type  string `json:"type"`
				Value struct {
					Name string `json:"name"`
				} `json:"value"`
			} `json:"annotations"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("publicchat/client: bad channel info for %s: %w", channel, err)
	}

	var info ChannelInfo
	for _, a := range resp.Data.Annotations {
		if a.Type == channelSettingsType {
			info.Name = a.Value.Name
			break
		}
	}
	if info.Name == "" {
		return nil, fmt.Errorf("publicchat/client: channel %s has no settings annotation", channel)
	}
	return &info, nil
}

// channelSettingsType annotates the channel record with its
// user-facing settings.
const channelSettingsType = "net.patter-app.settings"

// ChannelInfo is the decoded settings annotation of a channel.
type ChannelInfo struct {
	Name string
}
