// SPDX-License-Identifier: MIT

package message

import (
	"encoding/hex"
	stdjson "encoding/json"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// skip reasons for single records, the batch keeps going on these
var (
	ErrRecordDeleted = errors.New("message: record is deleted")
	ErrNotPublicChat = errors.New("message: record carries no public chat annotation")
)

// serverTimeFormat is the fixed creation-timestamp format servers echo
// on successful sends (ISO-8601 with milliseconds, always UTC).
const serverTimeFormat = "2006-01-02T15:04:05.000Z"

// Record is the generic channel-record envelope. Everything protocol
// specific hides in the annotations.
type Record struct {
	ID          int64        `json:"id"`
	IsDeleted   bool         `json:"is_deleted"`
	Text        string       `json:"text"`
	User        RecordUser   `json:"user"`
	Annotations []Annotation `json:"annotations"`
}

type RecordUser struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

type Annotation struct {
	Type  string             `json:"type"`
	Value stdjson.RawMessage `json:"value,omitempty"`
}

// payload of the public chat annotation
type chatPayload struct {
	Timestamp int64     `json:"timestamp"`
	Sig       string    `json:"sig"`
	SigVer    int       `json:"sigver"`
	Quote     *rawQuote `json:"quote,omitempty"`
}

type rawQuote struct {
	ID     int64  `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text"`
}

type rawAttachment struct {
	ID          int64  `json:"id"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	FileName    string `json:"fileName"`
	Flags       int    `json:"flags"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Caption     string `json:"caption,omitempty"`
	URL         string `json:"url"`
}

// Deletion is one entry of the moderation deletes feed.
type Deletion struct {
	ID        int64 `json:"id"`
	MessageID int64 `json:"message_id"`
}

// RecordsFromBody splits a fetch response into its raw records.
// Servers answer either with a plain array or with it wrapped under
// "data"; both are accepted. A failure here aborts the whole fetch.
func RecordsFromBody(body []byte) ([]stdjson.RawMessage, error) {
	var raws []stdjson.RawMessage
	if err := json.Unmarshal(body, &raws); err == nil {
		return raws, nil
	}
	var wrapped struct {
		Data []stdjson.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, errors.Wrap(err, "message: undecodable response body")
	}
	return wrapped.Data, nil
}

// DecodeRecord parses the envelope of one raw record. The envelope is
// enough to learn the server ID, even for records that later turn out
// deleted or unverifiable.
func DecodeRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(err, "message: undecodable record")
	}
	if r.ID == 0 {
		return nil, errors.New("message: record without server ID")
	}
	return &r, nil
}

// Message extracts the typed chat message out of a decoded record.
// The signature is parsed but NOT verified here; callers decide what
// to do with unverifiable messages.
func (r *Record) Message() (*Message, error) {
	if r.IsDeleted {
		return nil, ErrRecordDeleted
	}
	if len(r.Annotations) == 0 {
		return nil, ErrNotPublicChat
	}

	var payload *chatPayload
	for _, a := range r.Annotations {
		if a.Type != PublicChatType || len(a.Value) == 0 {
			continue
		}
		var p chatPayload
		if err := json.Unmarshal(a.Value, &p); err != nil {
			return nil, errors.Wrap(err, "message: undecodable chat annotation")
		}
		payload = &p
		break
	}
	if payload == nil {
		return nil, ErrNotPublicChat
	}

	if r.User.Username == "" {
		return nil, errors.New("message: record without sender key")
	}

	sig, err := hex.DecodeString(payload.Sig)
	if err != nil {
		return nil, errors.Wrap(err, "message: undecodable signature")
	}

	displayName := r.User.Name
	if displayName == "" {
		displayName = "Anonymous"
	}

	msg := Message{
		ServerID:    r.ID,
		Sender:      r.User.Username,
		DisplayName: displayName,
		Body:        r.Text,
		Timestamp:   payload.Timestamp,
		Type:        PublicChatType,
		Signature:   Signature{Bytes: sig, Version: payload.SigVer},
	}

	if q := payload.Quote; q != nil {
		quote := &Quote{
			QuotedTimestamp: q.ID,
			Author:          q.Author,
			Text:            q.Text,
		}
		if quote.Valid() {
			msg.Quote = quote
		}
	}

	for _, a := range r.Annotations {
		if a.Type != attachmentType && a.Type != oembedType {
			continue
		}
		if len(a.Value) == 0 {
			continue
		}
		var ra rawAttachment
		if err := json.Unmarshal(a.Value, &ra); err != nil {
			return nil, errors.Wrap(err, "message: undecodable attachment annotation")
		}
		msg.Attachments = append(msg.Attachments, Attachment{
			ID:          ra.ID,
			ContentType: ra.ContentType,
			Size:        ra.Size,
			FileName:    ra.FileName,
			Flags:       ra.Flags,
			Width:       ra.Width,
			Height:      ra.Height,
			Caption:     ra.Caption,
			URL:         ra.URL,
		})
	}

	return &msg, nil
}

// SendBody builds the POST body for a signed message: the plain text
// plus the chat payload and attachment annotations.
func (m *Message) SendBody() (interface{}, error) {
	if len(m.Signature.Bytes) == 0 {
		return nil, errors.New("message: refusing to build send body for unsigned message")
	}

	payload := chatPayload{
		Timestamp: m.Timestamp,
		Sig:       hex.EncodeToString(m.Signature.Bytes),
		SigVer:    m.Signature.Version,
	}
	if m.Quote.Valid() {
		payload.Quote = &rawQuote{
			ID:     m.Quote.QuotedTimestamp,
			Author: m.Quote.Author,
			Text:   m.Quote.Text,
		}
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "message: failed to encode chat annotation")
	}

	annotations := []Annotation{{Type: PublicChatType, Value: value}}
	for _, at := range m.Attachments {
		value, err := json.Marshal(rawAttachment{
			ID:          at.ID,
			ContentType: at.ContentType,
			Size:        at.Size,
			FileName:    at.FileName,
			Flags:       at.Flags,
			Width:       at.Width,
			Height:      at.Height,
			Caption:     at.Caption,
			URL:         at.URL,
		})
		if err != nil {
			return nil, errors.Wrap(err, "message: failed to encode attachment annotation")
		}
		annotations = append(annotations, Annotation{Type: attachmentType, Value: value})
	}

	return struct {
		Text        string       `json:"text"`
		Annotations []Annotation `json:"annotations"`
	}{m.Body, annotations}, nil
}

// FromSendResponse rebuilds the canonical message after a successful
// send. The server echoes ID, text and creation time; quote,
// attachments, display name and signature carry over from the local
// message because the server does not echo them.
func FromSendResponse(body []byte, local Message) (*Message, error) {
	var resp struct {
		Data struct {
			ID        int64  `json:"id"`
			Text      string `json:"text"`
			CreatedAt string `json:"created_at"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "message: undecodable send response")
	}
	if resp.Data.ID == 0 {
		return nil, errors.New("message: send response without server ID")
	}

	created, err := time.ParseInLocation(serverTimeFormat, resp.Data.CreatedAt, time.UTC)
	if err != nil {
		return nil, errors.Wrap(err, "message: bad creation timestamp in send response")
	}

	msg := local
	msg.ServerID = resp.Data.ID
	msg.Body = resp.Data.Text
	msg.Timestamp = created.UnixMilli()
	return &msg, nil
}

// DecodeDeletion parses one entry of the deletes feed.
func DecodeDeletion(data []byte) (*Deletion, error) {
	var d Deletion
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(err, "message: undecodable deletion record")
	}
	if d.ID == 0 || d.MessageID == 0 {
		return nil, errors.New("message: incomplete deletion record")
	}
	return &d, nil
}
