package events

import "sync"

// Listener is a subscription handle for a Source. Sources compare listeners by
// pointer, so the same *Listener passed to On must be passed to Off.
type Listener[T any] struct {
	fn func(T)
}

// NewListener wraps fn in a Listener.
func NewListener[T any](fn func(T)) *Listener[T] {
	return &Listener[T]{fn: fn}
}

// Handle invokes the wrapped function.
func (l *Listener[T]) Handle(payload T) {
	if l.fn != nil {
		l.fn(payload)
	}
}

// Source is anything that can attach and detach listeners by event name.
type Source[T any] interface {
	On(name string, l *Listener[T])
	Off(name string, l *Listener[T])
}

// Emitter is a concurrency-safe Source. The zero value is ready to use.
type Emitter[T any] struct {
	mu        sync.RWMutex
	listeners map[string][]*Listener[T]
}

// NewEmitter creates an empty Emitter.
func NewEmitter[T any]() *Emitter[T] {
	return &Emitter[T]{listeners: make(map[string][]*Listener[T])}
}

// On attaches l to the named event. Attaching the same listener twice makes
// it fire twice per event.
func (e *Emitter[T]) On(name string, l *Listener[T]) {
	if l == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[string][]*Listener[T])
	}
	e.listeners[name] = append(e.listeners[name], l)
}

// Off detaches one registration of l from the named event.
// Detaching a listener that is not attached is a no-op.
func (e *Emitter[T]) Off(name string, l *Listener[T]) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ls := e.listeners[name]
	for i, cur := range ls {
		if cur != l {
			continue
		}
		rest := make([]*Listener[T], 0, len(ls)-1)
		rest = append(rest, ls[:i]...)
		rest = append(rest, ls[i+1:]...)
		if len(rest) == 0 {
			delete(e.listeners, name)
		} else {
			e.listeners[name] = rest
		}
		return
	}
}

// Emit delivers payload to every listener of the named event, synchronously
// and in registration order. Listeners may call On or Off while being
// notified; changes apply from the next Emit.
// Returns true if at least one listener was notified.
func (e *Emitter[T]) Emit(name string, payload T) bool {
	e.mu.RLock()
	snapshot := e.listeners[name]
	e.mu.RUnlock()

	for _, l := range snapshot {
		l.Handle(payload)
	}
	return len(snapshot) > 0
}

// ListenerCount returns the number of listeners attached to the named event.
func (e *Emitter[T]) ListenerCount(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[name])
}

// RemoveAll detaches every listener from every event.
func (e *Emitter[T]) RemoveAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = make(map[string][]*Listener[T])
}
