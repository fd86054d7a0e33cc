// Package events tells interested views that the candidate data changed, so
// a dashboard can refresh without polling the store.
package events

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

type Hub struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan string]struct{})}
}

func (h *Hub) Subscribe() chan string {
	ch := make(chan string, subscriberBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe closes ch. Calling it twice is harmless.
func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; !ok {
		return
	}
	delete(h.clients, ch)
	close(ch)
}

// Publish never blocks: a subscriber whose buffer is full misses evt.
func (h *Hub) Publish(evt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Forward hands every event published from now on to fn, decoded, until
// ctx is done. Events still buffered when ctx ends are delivered too, and
// envelopes that do not decode are skipped. The returned channel closes
// after the last call to fn.
func (h *Hub) Forward(ctx context.Context, fn func(Event)) <-chan struct{} {
	ch := h.Subscribe()
	done := make(chan struct{})

	deliver := func(raw string) {
		if e, err := Parse(raw); err == nil {
			fn(e)
		}
	}

	go func() {
		defer close(done)
		defer h.Unsubscribe(ch)
		for {
			select {
			case raw := <-ch:
				deliver(raw)
			case <-ctx.Done():
				for {
					select {
					case raw := <-ch:
						deliver(raw)
					default:
						return
					}
				}
			}
		}
	}()
	return done
}
