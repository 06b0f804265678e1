// SPDX-License-Identifier: MIT

package message

import (
	"testing"

	"github.com/stretchr/testify/require"

	publicchat "github.com/lokinet/go-publicchat"
)

func TestSignThenVerify(t *testing.T) {
	r := require.New(t)

	kp, err := publicchat.NewKeyPair(nil)
	r.NoError(err)

	msg := Message{
		Body:      "hello channel",
		Timestamp: 1693400000000,
	}
	r.NoError(msg.Sign(kp))
	r.Equal(kp.ID(), msg.Sender)
	r.Equal(SignatureVersion, msg.Signature.Version)
	r.NoError(msg.Verify())
}

func TestVerifyWrongKey(t *testing.T) {
	r := require.New(t)

	kp, err := publicchat.NewKeyPair(nil)
	r.NoError(err)
	other, err := publicchat.NewKeyPair(nil)
	r.NoError(err)

	msg := Message{Body: "hi", Timestamp: 1}
	r.NoError(msg.Sign(kp))

	msg.Sender = other.ID()
	err = msg.Verify()
	r.Error(err)
	r.ErrorIs(err, publicchat.ErrSignatureInvalid)
}

func TestVerifyTamperedBody(t *testing.T) {
	r := require.New(t)

	kp, err := publicchat.NewKeyPair(nil)
	r.NoError(err)

	msg := Message{Body: "original", Timestamp: 1}
	r.NoError(msg.Sign(kp))

	msg.Body = "changed"
	r.ErrorIs(msg.Verify(), publicchat.ErrSignatureInvalid)
}

func TestVerifyUnknownVersion(t *testing.T) {
	r := require.New(t)

	kp, err := publicchat.NewKeyPair(nil)
	r.NoError(err)

	msg := Message{Body: "hi", Timestamp: 1}
	r.NoError(msg.Sign(kp))

	msg.Signature.Version = 99
	r.ErrorIs(msg.Verify(), publicchat.ErrSignatureInvalid)
}

func TestSignWithoutKeyMaterial(t *testing.T) {
	r := require.New(t)

	msg := Message{Body: "hi", Timestamp: 1}
	r.ErrorIs(msg.Sign(nil), publicchat.ErrSigningFailed)
	r.ErrorIs(msg.Sign(&publicchat.KeyPair{}), publicchat.ErrSigningFailed)
}

func TestSignatureCoversQuote(t *testing.T) {
	r := require.New(t)

	kp, err := publicchat.NewKeyPair(nil)
	r.NoError(err)

	msg := Message{
		Body:      "reply",
		Timestamp: 2,
		Quote:     &Quote{QuotedTimestamp: 1, Author: "aa", Text: "earlier"},
	}
	r.NoError(msg.Sign(kp))
	r.NoError(msg.Verify())

	msg.Quote.Text = "rewritten history"
	r.ErrorIs(msg.Verify(), publicchat.ErrSignatureInvalid)
}
