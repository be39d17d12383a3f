// Package syncstate fans the per-family isSynced flag out to any number of
// observers. The local store supports a single physical change listener per
// family; the publisher is that listener and handles the fan-out.
package syncstate

import "sync"

// Publisher broadcasts a boolean sync state to subscribers. Safe for
// concurrent use.
type Publisher struct {
	mu      sync.Mutex
	current bool
	subs    map[int]chan bool
	nextID  int
}

// NewPublisher starts from the given state, typically the store's
// persisted isSynced value at startup.
func NewPublisher(initial bool) *Publisher {
	return &Publisher{current: initial, subs: make(map[int]chan bool)}
}

// Publish records the new state and notifies every subscriber. Intended to
// be wired directly into the store's sync-state change hook. Slow
// subscribers never block the store: each channel holds only the latest
// value.
func (p *Publisher) Publish(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = v
	for _, ch := range p.subs {
		// Drop the stale value if the subscriber hasn't consumed it.
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// Current returns the last published state.
func (p *Publisher) Current() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Subscribe returns the state at subscription time, a channel of subsequent
// changes, and a detach function. Detaching never affects other
// subscribers.
func (p *Publisher) Subscribe() (bool, <-chan bool, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	ch := make(chan bool, 1)
	p.subs[id] = ch

	unsubscribe := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if _, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(ch)
		}
	}

	return p.current, ch, unsubscribe
}
