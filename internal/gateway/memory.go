package gateway

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryGateway keeps messages in memory. Used by tests and by the
// local dry-run mode.
type MemoryGateway struct {
	msgs    sync.Map
	mx      sync.Mutex
	replies []string
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{}
}

func (g *MemoryGateway) Send(_ context.Context, channelID string, msg *Message) (MessageRef, error) {
	ref := MessageRef{ChannelID: channelID, MessageID: uuid.NewString()}

	m := *msg
	m.Ref = ref
	g.msgs.Store(ref.MessageID, &m)

	return ref, nil
}

func (g *MemoryGateway) Fetch(_ context.Context, ref MessageRef) (*Message, error) {
	if v, ok := g.msgs.Load(ref.MessageID); ok {
		m := *v.(*Message)

		return &m, nil
	}

	return nil, ErrMessageGone
}

func (g *MemoryGateway) Edit(_ context.Context, ref MessageRef, msg *Message) error {
	if _, ok := g.msgs.Load(ref.MessageID); !ok {
		return ErrMessageGone
	}

	m := *msg
	m.Ref = ref
	g.msgs.Store(ref.MessageID, &m)

	return nil
}

func (g *MemoryGateway) Delete(_ context.Context, ref MessageRef) error {
	g.msgs.Delete(ref.MessageID)

	return nil
}

func (g *MemoryGateway) Reply(_ context.Context, _ MessageRef, userID, text string) error {
	g.mx.Lock()
	defer g.mx.Unlock()

	g.replies = append(g.replies, userID+": "+text)

	return nil
}

func (g *MemoryGateway) Replies() []string {
	g.mx.Lock()
	defer g.mx.Unlock()

	return append([]string(nil), g.replies...)
}

func (g *MemoryGateway) Refs() []MessageRef {
	res := make([]MessageRef, 0)

	g.msgs.Range(func(_, v any) bool {
		res = append(res, v.(*Message).Ref)

		return true
	})

	return res
}

func (g *MemoryGateway) Count() int {
	n := 0

	g.msgs.Range(func(_, _ any) bool {
		n++

		return true
	})

	return n
}
