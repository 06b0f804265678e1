// SPDX-License-Identifier: MIT

// Package message implements the public-chat wire schema: the typed
// Message with its quote and attachment sub-structures, the annotation
// codec for raw channel records and the ed25519 signature scheme.
package message

// PublicChatType is the annotation type carrying the signed chat
// payload inside a generic channel record.
const PublicChatType = "network.loki.messenger.publicChat"

// attachment descriptors ride along as their own annotations
const (
	attachmentType = "net.app.core.attachments"
	oembedType     = "net.app.core.oembed"
)

// SignatureVersion is the only signature scheme this client produces
// and accepts.
const SignatureVersion = 1

// Message is one verified (or to-be-signed) channel message.
// ServerID stays zero until the server assigned one.
type Message struct {
	ServerID    int64
	Sender      string // hex encoded ed25519 public key
	DisplayName string
	Body        string
	Timestamp   int64 // unix millis
	Type        string
	Quote       *Quote
	Attachments []Attachment
	Signature   Signature
}

// Quote references an earlier message by its sender-declared timestamp.
type Quote struct {
	QuotedTimestamp int64
	Author          string
	Text            string
	ReplyTo         int64 // server ID of the quoted message, if known
}

// Valid reports whether the quote carries enough to be displayed.
// Anything else is treated as no quote at all.
func (q *Quote) Valid() bool {
	return q != nil && q.QuotedTimestamp > 0 && q.Author != "" && q.Text != ""
}

type Attachment struct {
	Server      string
	ID          int64
	ContentType string
	Size        int
	FileName    string
	Flags       int
	Width       int
	Height      int
	Caption     string
	URL         string
}

// Signature holds the raw ed25519 signature plus the scheme version
// declared alongside it on the wire.
type Signature struct {
	Bytes   []byte
	Version int
}
