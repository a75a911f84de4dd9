package api

import (
	"sync"
)

type SSEEvent struct {
	Type string
	Data map[string]any
}

// Broker fans solve events out to in-process subscribers, keyed by
// solution ID.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan SSEEvent]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan SSEEvent]struct{}{}}
}

func (b *Broker) Subscribe(solutionID string) chan SSEEvent {
	ch := make(chan SSEEvent, 8)
	b.mu.Lock()
	if b.subs[solutionID] == nil {
		b.subs[solutionID] = map[chan SSEEvent]struct{}{}
	}
	b.subs[solutionID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(solutionID string, ch chan SSEEvent) {
	b.mu.Lock()
	if m := b.subs[solutionID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, solutionID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

// Publish drops events for slow subscribers rather than blocking the
// solve loop.
func (b *Broker) Publish(solutionID string, evt SSEEvent) {
	b.mu.Lock()
	for ch := range b.subs[solutionID] {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
