// SPDX-License-Identifier: MIT

// Package publicchat holds the core types for talking to federated
// public-chat servers: key material, per-channel sync cursors,
// moderator sets and the transport boundary.
package publicchat

import (
	"context"
	"encoding/json"
	"net/url"
)

// Transport executes one HTTP call against a chat server.
// Implementations own connection handling, request authentication and
// TLS; the client only cares about the decoded response body.
//
// body is JSON-encoded by the transport when non-nil.
type Transport interface {
	Execute(ctx context.Context, verb, server, path string, params url.Values, body interface{}) (json.RawMessage, error)
}
