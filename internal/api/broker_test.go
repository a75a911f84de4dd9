package api

import (
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	id := "s1"
	ch := b.Subscribe(id)

	evt := SSEEvent{Type: "solve.progress", Data: map[string]any{"generation": 10}}
	b.Publish(id, evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type {
			t.Fatalf("got type %s, want %s", got.Type, evt.Type)
		}
		if got.Data["generation"].(int) != 10 {
			t.Fatalf("bad payload: %+v", got.Data)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	b.Unsubscribe(id, ch)
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
}

func TestBrokerDropsWhenSubscriberFull(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("s1")
	for i := 0; i < 20; i++ {
		b.Publish("s1", SSEEvent{Type: "solve.progress", Data: map[string]any{"generation": i}})
	}
	// channel buffer is 8; extra publishes must not block or panic
	if len(ch) != 8 {
		t.Fatalf("expected full buffer of 8, got %d", len(ch))
	}
	b.Unsubscribe("s1", ch)
}

func TestBrokerIsolatesSolutions(t *testing.T) {
	b := NewBroker()
	a := b.Subscribe("a")
	c := b.Subscribe("c")
	b.Publish("a", SSEEvent{Type: "solve.started"})
	if len(a) != 1 || len(c) != 0 {
		t.Fatalf("events leaked across keys: a=%d c=%d", len(a), len(c))
	}
	b.Unsubscribe("a", a)
	b.Unsubscribe("c", c)
}
