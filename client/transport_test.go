// SPDX-License-Identifier: MIT

package client

import (
	"context"
	stdjson "encoding/json"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mindeco.de/log"

	publicchat "github.com/lokinet/go-publicchat"
	"github.com/lokinet/go-publicchat/message"
)

type call struct {
	Verb   string
	Server string
	Path   string
	Params url.Values
	Body   interface{}
}

// fakeTransport records calls and answers them through a handler func.
type fakeTransport struct {
	mu      sync.Mutex
	calls   []call
	handler func(c call) (stdjson.RawMessage, error)
}

var _ publicchat.Transport = (*fakeTransport)(nil)

func (ft *fakeTransport) Execute(_ context.Context, verb, server, path string, params url.Values, body interface{}) (stdjson.RawMessage, error) {
	ft.mu.Lock()
	c := call{verb, server, path, params, body}
	ft.calls = append(ft.calls, c)
	ft.mu.Unlock()
	return ft.handler(c)
}

func (ft *fakeTransport) callCount() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.calls)
}

func (ft *fakeTransport) lastCall(t *testing.T) call {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	require.NotEmpty(t, ft.calls)
	return ft.calls[len(ft.calls)-1]
}

func newTestClient(t *testing.T, ft *fakeTransport, opts ...Option) (*Client, *publicchat.KeyPair) {
	kp, err := publicchat.NewKeyPair(nil)
	require.NoError(t, err)

	opts = append([]Option{WithLogger(log.NewNopLogger())}, opts...)
	c, err := New(kp, ft, opts...)
	require.NoError(t, err)
	return c, kp
}

func messageSignedBy(t *testing.T, kp *publicchat.KeyPair, body string, ts int64) message.Message {
	msg := message.Message{Body: body, Timestamp: ts}
	require.NoError(t, msg.Sign(kp))
	return msg
}

// signedRecord builds the raw channel record a server would hand out
// for a message signed with kp.
func signedRecord(t *testing.T, kp *publicchat.KeyPair, id int64, body string, ts int64) stdjson.RawMessage {
	return recordFor(t, messageSignedBy(t, kp, body, ts), id)
}

func recordFor(t *testing.T, msg message.Message, id int64) stdjson.RawMessage {
	sendBody, err := msg.SendBody()
	require.NoError(t, err)
	enc, err := stdjson.Marshal(sendBody)
	require.NoError(t, err)

	var env struct {
		Text        string               `json:"text"`
		Annotations []stdjson.RawMessage `json:"annotations"`
	}
	require.NoError(t, stdjson.Unmarshal(enc, &env))

	rec, err := stdjson.Marshal(map[string]interface{}{
		"id":          id,
		"text":        env.Text,
		"user":        map[string]string{"username": msg.Sender, "name": "tester"},
		"annotations": env.Annotations,
	})
	require.NoError(t, err)
	return rec
}

func feedOf(t *testing.T, records ...stdjson.RawMessage) stdjson.RawMessage {
	body, err := stdjson.Marshal(map[string]interface{}{"data": records})
	require.NoError(t, err)
	return body
}
