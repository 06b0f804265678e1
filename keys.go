// SPDX-License-Identifier: MIT

package publicchat

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"
)

// KeyPair is the local ed25519 identity used to sign outgoing messages.
// The hex encoded public key doubles as the account name on the wire.
type KeyPair struct {
	Public ed25519.PublicKey
	Secret ed25519.PrivateKey
}

// ID returns the hex encoded public key, the identity other clients
// verify signatures against.
func (kp KeyPair) ID() string {
	return hex.EncodeToString(kp.Public)
}

// the secret file format, base64 keys with an algo suffix
type chatSecret struct {
	Curve   string `json:"curve"`
	ID      string `json:"id"`
	Private string `json:"private"`
	Public  string `json:"public"`
}

// NewKeyPair generates a fresh identity. Pass nil to use crypto/rand.
func NewKeyPair(r io.Reader) (*KeyPair, error) {
	if r == nil {
		r = rand.Reader
	}
	pub, sec, err := ed25519.GenerateKey(r)
	if err != nil {
		return nil, errors.Wrap(err, "publicchat: error building key pair")
	}
	return &KeyPair{Public: pub, Secret: sec}, nil
}

func SaveKeyPair(kp *KeyPair, path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrap(err, "publicchat.SaveKeyPair: failed to create file")
	}
	var sec = chatSecret{
		Curve:   "ed25519",
		ID:      kp.ID(),
		Private: base64.StdEncoding.EncodeToString(kp.Secret) + ".ed25519",
		Public:  base64.StdEncoding.EncodeToString(kp.Public) + ".ed25519",
	}
	if err := json.NewEncoder(f).Encode(sec); err != nil {
		f.Close()
		return errors.Wrap(err, "publicchat.SaveKeyPair: json encoding failed")
	}
	return errors.Wrap(f.Close(), "publicchat.SaveKeyPair: failed to close file")
}

func LoadKeyPair(fname string) (*KeyPair, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrapf(err, "publicchat.LoadKeyPair: could not open key file %s", fname)
	}
	defer f.Close()

	return ParseKeyPair(f)
}

// ParseKeyPair json decodes an identity from the reader.
// It expects std base64 encoded data under the `private` and `public` fields.
func ParseKeyPair(r io.Reader) (*KeyPair, error) {
	var s chatSecret
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "publicchat.ParseKeyPair: JSON decoding failed")
	}
	if s.Curve != "ed25519" {
		return nil, errors.Errorf("publicchat.ParseKeyPair: unsupported key curve: %s", s.Curve)
	}

	public, err := base64.StdEncoding.DecodeString(strings.TrimSuffix(s.Public, ".ed25519"))
	if err != nil {
		return nil, errors.Wrap(err, "publicchat.ParseKeyPair: base64 decode of public part failed")
	}
	if n := len(public); n != ed25519.PublicKeySize {
		return nil, errors.Errorf("publicchat.ParseKeyPair: wrong public key size: %d", n)
	}

	private, err := base64.StdEncoding.DecodeString(strings.TrimSuffix(s.Private, ".ed25519"))
	if err != nil {
		return nil, errors.Wrap(err, "publicchat.ParseKeyPair: base64 decode of private part failed")
	}
	if n := len(private); n != ed25519.PrivateKeySize {
		return nil, errors.Errorf("publicchat.ParseKeyPair: wrong private key size: %d", n)
	}

	return &KeyPair{
		Public: ed25519.PublicKey(public),
		Secret: ed25519.PrivateKey(private),
	}, nil
}
