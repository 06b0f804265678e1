// SPDX-License-Identifier: MIT

package message

import (
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"

	publicchat "github.com/lokinet/go-publicchat"
)

// signableData is the canonical byte representation covered by the
// message signature: body, timestamp and the wire fields of the quote,
// nothing else. The server-assigned ID, the display name and the
// locally resolved quote target are mutable or local-only and so stay
// outside the signed surface.
func (m *Message) signableData() ([]byte, error) {
	var p = struct {
		Body      string    `json:"body"`
		Timestamp int64     `json:"timestamp"`
		Quote     *rawQuote `json:"quote,omitempty"`
	}{Body: m.Body, Timestamp: m.Timestamp}
	if m.Quote.Valid() {
		p.Quote = &rawQuote{
			ID:     m.Quote.QuotedTimestamp,
			Author: m.Quote.Author,
			Text:   m.Quote.Text,
		}
	}
	return json.Marshal(p)
}

// Sign signs the message with the local key and stamps the current
// signature version. The sender identity is set from the key pair when
// the message does not carry one yet.
func (m *Message) Sign(kp *publicchat.KeyPair) error {
	if kp == nil || len(kp.Secret) != ed25519.PrivateKeySize {
		return publicchat.ErrSigningFailed
	}
	if m.Sender == "" {
		m.Sender = kp.ID()
	}

	data, err := m.signableData()
	if err != nil {
		return errors.Wrap(publicchat.ErrSigningFailed, err.Error())
	}
	m.Signature = Signature{
		Bytes:   ed25519.Sign(kp.Secret, data),
		Version: SignatureVersion,
	}
	return nil
}

// Verify checks the signature against the claimed sender key.
// Any mismatch, a malformed sender key or an unknown signature version
// yields publicchat.ErrSignatureInvalid.
func (m *Message) Verify() error {
	if m.Signature.Version != SignatureVersion {
		return errors.Wrapf(publicchat.ErrSignatureInvalid, "unknown version %d", m.Signature.Version)
	}

	pub, err := hex.DecodeString(m.Sender)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return errors.Wrap(publicchat.ErrSignatureInvalid, "bad sender key")
	}

	data, err := m.signableData()
	if err != nil {
		return errors.Wrap(publicchat.ErrSignatureInvalid, err.Error())
	}

	if !ed25519.Verify(ed25519.PublicKey(pub), data, m.Signature.Bytes) {
		return publicchat.ErrSignatureInvalid
	}
	return nil
}
