package callbacks

import (
	"sync"
)

// Callback fans a message out to named subscribers. A subscriber
// returning false is dropped.
type Callback[V any] struct {
	subscribers sync.Map
}

func New[V any]() *Callback[V] {
	return &Callback[V]{
		subscribers: sync.Map{},
	}
}

func (p *Callback[V]) Notify(msg V) {
	p.subscribers.Range(func(key, value any) bool {
		if fn, ok := value.(func(msg V) bool); ok {
			go func() {
				if !fn(msg) {
					p.subscribers.Delete(key)
				}
			}()
		}

		return true
	})
}

func (p *Callback[V]) Subscribe(name string, fn func(msg V) bool) {
	p.subscribers.Store(name, fn)
}

func (p *Callback[V]) Unsubscribe(name string) bool {
	_, found := p.subscribers.LoadAndDelete(name)

	return found
}
