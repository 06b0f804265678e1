// SPDX-License-Identifier: MIT

package httptransport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mindeco.de/log"

	publicchat "github.com/lokinet/go-publicchat"
)

func TestExecute(t *testing.T) {
	r := require.New(t)

	var seen *http.Request
	var seenBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		seen = req.Clone(context.Background())
		seenBody, _ = io.ReadAll(req.Body)
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	tr := New(log.NewNopLogger())
	params := url.Values{}
	params.Set("count", "20")

	resp, err := tr.Execute(context.Background(), "GET", srv.URL+"/", "channels/1/messages", params, nil)
	r.NoError(err)
	r.JSONEq(`{"data":[]}`, string(resp))
	r.Equal("/channels/1/messages", seen.URL.Path)
	r.Equal("20", seen.URL.Query().Get("count"))
	r.Empty(seenBody)

	_, err = tr.Execute(context.Background(), "POST", srv.URL, "channels/1/messages", nil, map[string]string{"text": "hi"})
	r.NoError(err)
	r.Equal("POST", seen.Method)
	r.Equal("application/json", seen.Header.Get("Content-Type"))
	r.JSONEq(`{"text":"hi"}`, string(seenBody))
}

func TestExecuteStatusMapping(t *testing.T) {
	r := require.New(t)

	status := http.StatusForbidden
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	tr := New(log.NewNopLogger())

	_, err := tr.Execute(context.Background(), "DELETE", srv.URL, "moderation/message/1", nil, nil)
	r.ErrorIs(err, publicchat.ErrForbidden)

	status = http.StatusInternalServerError
	_, err = tr.Execute(context.Background(), "GET", srv.URL, "channels/1/messages", nil, nil)
	r.Error(err)
	r.NotErrorIs(err, publicchat.ErrForbidden)
}

func TestExecuteConnectionError(t *testing.T) {
	tr := New(log.NewNopLogger())
	_, err := tr.Execute(context.Background(), "GET", "http://127.0.0.1:1", "channels/1/messages", nil, nil)
	require.Error(t, err)
}
