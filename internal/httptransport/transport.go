// SPDX-License-Identifier: MIT

// Package httptransport is the default publicchat.Transport: plain
// HTTPS+JSON against the server's REST surface. Deployments that need
// request authentication wrap or replace it.
package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mindeco.de/log"
	"go.mindeco.de/log/level"

	publicchat "github.com/lokinet/go-publicchat"
)

// Transport issues one HTTP request per Execute call. Safe for
// concurrent use.
type Transport struct {
	h      *http.Client
	logger log.Logger
}

var _ publicchat.Transport = (*Transport)(nil)

func New(logger log.Logger) *Transport {
	return &Transport{
		h:      &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// NewWithClient lets callers bring their own http.Client, for proxies
// or custom TLS configuration.
func NewWithClient(h *http.Client, logger log.Logger) *Transport {
	return &Transport{h: h, logger: logger}
}

func (t *Transport) Execute(ctx context.Context, verb, server, path string, params url.Values, body interface{}) (json.RawMessage, error) {
	u := strings.TrimRight(server, "/") + "/" + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var rdr io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "httptransport: request encoding failed")
		}
		rdr = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, verb, u, rdr)
	if err != nil {
		return nil, errors.Wrapf(err, "httptransport: bad request for %s", u)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.h.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "httptransport: %s %s failed", verb, u)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "httptransport: reading response of %s %s failed", verb, u)
	}

	level.Debug(t.logger).Log("verb", verb, "url", u, "status", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, errors.Wrapf(publicchat.ErrForbidden, "%s %s", verb, u)
	case resp.StatusCode >= 400:
		return nil, errors.Errorf("httptransport: %s %s returned status %d", verb, u, resp.StatusCode)
	}
	return data, nil
}
