// Package event is the in-process pub/sub behind the order lifecycle
// fan-out: placement and settlement fire here, the admin feed and the
// notification channels listen.
package event

import "sync"

// Handler receives the payload an event was fired with.
type Handler func(payload interface{})

type bus struct {
	mu        sync.RWMutex
	listeners map[string][]Handler
}

var std = &bus{listeners: map[string][]Handler{}}

// Listen subscribes handler to the named event.
func Listen(name string, handler Handler) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.listeners[name] = append(std.listeners[name], handler)
}

// Fire invokes every listener for name in registration order, on the
// caller's goroutine.
func Fire(name string, payload interface{}) {
	for _, h := range std.snapshot(name) {
		h(payload)
	}
}

// FireAsync invokes each listener on its own goroutine and returns
// immediately. Used on the checkout path so a slow feed consumer cannot
// hold up a settlement response.
func FireAsync(name string, payload interface{}) {
	for _, h := range std.snapshot(name) {
		go h(payload)
	}
}

// Reset drops every listener. Tests use it to isolate subscriptions.
func Reset() {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.listeners = map[string][]Handler{}
}

func (b *bus) snapshot(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Handler(nil), b.listeners[name]...)
}
