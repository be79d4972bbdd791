package event

import (
	"log/slog"
	"sync"
)

type HandlerFunc func(raw any)

// Subscription identifies one handler registration for Unsubscribe.
type Subscription struct {
	name string
	id   uint64
}

type subscriber struct {
	id      uint64
	handler HandlerFunc
}

// Bus fans events out to handlers by name. Handlers run on their own
// goroutine; a panicking handler is logged and does not affect the others.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[string][]subscriber
	inflight sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]subscriber),
	}
}

func (b *Bus) Subscribe(eventName string, handler HandlerFunc) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers[eventName] = append(b.handlers[eventName], subscriber{id: b.nextID, handler: handler})
	return Subscription{name: eventName, id: b.nextID}
}

func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[sub.name]
	for i, s := range subs {
		if s.id != sub.id {
			continue
		}
		b.handlers[sub.name] = append(subs[:i:i], subs[i+1:]...)
		if len(b.handlers[sub.name]) == 0 {
			delete(b.handlers, sub.name)
		}
		return
	}
}

func (b *Bus) Publish(eventName string, evt any) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.handlers[eventName]))
	copy(subs, b.handlers[eventName])
	b.mu.RUnlock()

	for _, s := range subs {
		b.inflight.Add(1)
		go func(h HandlerFunc) {
			defer b.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Event handler panicked", "event", eventName, "panic", r)
				}
			}()
			h(evt)
		}(s.handler)
	}
}

// Wait blocks until every handler started so far has returned. It must not
// be called concurrently with Publish.
func (b *Bus) Wait() {
	b.inflight.Wait()
}
