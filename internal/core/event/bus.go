package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted in frame N are readable
// in frame N+1. SwapBuffers() is called at frame start by EventSystem.
//
// Event types are dispatched in the order they were first seen (subscribed
// or emitted), so delivery order is reproducible from run to run.
type Bus struct {
	mu       sync.Mutex
	order    []reflect.Type
	known    map[reflect.Type]struct{}
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		known:    make(map[reflect.Type]struct{}),
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

// track must be called with mu held.
func (b *Bus) track(t reflect.Type) {
	if _, ok := b.known[t]; ok {
		return
	}
	b.known[t] = struct{}{}
	b.order = append(b.order, t)
}

// Emit queues an event into the back buffer (will be readable next frame).
// Safe to call from concurrently running systems.
func Emit[T any](b *Bus, event T) {
	t := reflect.TypeFor[T]()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.track(t)
	b.back[t] = append(b.back[t], event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := reflect.TypeFor[T]()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.track(t)
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once at frame start.
func (b *Bus) SwapBuffers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed handlers
// and returns the number of events delivered. Handlers may Emit; those
// events land in the back buffer.
func (b *Bus) DispatchAll() int {
	b.mu.Lock()
	order := append([]reflect.Type(nil), b.order...)
	b.mu.Unlock()

	n := 0
	for _, t := range order {
		b.mu.Lock()
		events := b.front[t]
		handlers := b.handlers[t]
		b.mu.Unlock()
		for _, ev := range events {
			for _, h := range handlers {
				h(ev)
			}
		}
		n += len(events)
	}
	return n
}

// Pending returns the front-buffer events of type T, for systems that poll
// instead of subscribing.
func Pending[T any](b *Bus) []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.front[reflect.TypeFor[T]()]
	out := make([]T, len(events))
	for i, ev := range events {
		out[i] = ev.(T)
	}
	return out
}

// Reset drops every queued event. Subscriptions are kept.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.front)
	clear(b.back)
}
