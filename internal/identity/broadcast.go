package identity

import "sync"

// broadcaster fans session-change events out to subscribers. The lock
// is held while callbacks run, which makes cancellation synchronous:
// once cancel returns, the callback will never fire again. Callbacks
// must not call cancel from inside themselves.
type broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func (b *broadcaster) subscribe(fn func(Event)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[int]func(Event))
	}
	id := b.next
	b.next++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *broadcaster) emit(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, fn := range b.subs {
		fn(ev)
	}
}
