// Package gateway is the boundary to the chat platform. The bot core
// never talks to the platform client directly, it reads and writes
// rendered messages through this interface.
package gateway

import (
	"context"
	"errors"
)

// ErrMessageGone marks a reference whose message no longer exists.
var ErrMessageGone = errors.New("message is gone")

type MessageRef struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

func (r MessageRef) IsZero() bool {
	return r.MessageID == ""
}

// Field is one structured entry of a rendered message. Key carries the
// identity of the data, Label is display only.
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type Button struct {
	CustomID string `json:"custom_id"`
	Label    string `json:"label"`
}

type Message struct {
	Ref      MessageRef `json:"ref"`
	AuthorID string     `json:"author_id"`
	Title    string     `json:"title"`
	Body     string     `json:"body"`
	Fields   []Field    `json:"fields,omitempty"`
	Mentions []string   `json:"mentions,omitempty"`
	Buttons  []Button   `json:"buttons,omitempty"`
}

func (m *Message) Field(key string) (string, bool) {
	if m == nil {
		return "", false
	}

	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}

	return "", false
}

// Gateway is implemented by the platform client. Delete of an already
// deleted message must succeed.
type Gateway interface {
	Send(ctx context.Context, channelID string, msg *Message) (MessageRef, error)
	Fetch(ctx context.Context, ref MessageRef) (*Message, error)
	Edit(ctx context.Context, ref MessageRef, msg *Message) error
	Delete(ctx context.Context, ref MessageRef) error
	Reply(ctx context.Context, ref MessageRef, userID, text string) error
}
