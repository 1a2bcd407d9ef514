package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted in tick N are readable
// in tick N+1. SwapBuffers() is called at tick start by EventDispatchSystem,
// so every event is delivered exactly once and then discarded.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]any
	order    []reflect.Type // dispatch order: first Subscribe or Emit
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (b *Bus) track(t reflect.Type) {
	if _, seen := b.handlers[t]; seen {
		return
	}
	b.handlers[t] = nil
	b.order = append(b.order, t)
}

// Emit queues an event into the back buffer (will be readable next tick).
func Emit[T any](b *Bus, event T) {
	t := typeKey[T]()
	b.mu.Lock()
	b.track(t)
	b.mu.Unlock()
	b.back[t] = append(b.back[t], event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeKey[T]()
	b.track(t)
	b.handlers[t] = append(b.handlers[t], fn)
}

// Pending returns the events of type T waiting in the back buffer.
func Pending[T any](b *Bus) []T {
	raw := b.back[typeKey[T]()]
	out := make([]T, 0, len(raw))
	for _, ev := range raw {
		out = append(out, ev.(T))
	}
	return out
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once at tick start.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed handlers,
// one event type at a time in the order the types were first seen.
// Returns the number of events delivered.
func (b *Bus) DispatchAll() int {
	n := 0
	for _, t := range b.order {
		events := b.front[t]
		handlers := b.handlers[t]
		for _, ev := range events {
			for _, h := range handlers {
				callHandler(h, ev)
			}
			n++
		}
	}
	return n
}

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}
