package auth

import "sync"

// Listener receives session change events.
type Listener func(Event)

// Hub is the process-wide session change feed. Listeners are invoked
// synchronously, in no particular order, from the publishing goroutine.
type Hub struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[uint64]Listener
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[uint64]Listener)}
}

// Subscribe registers fn and returns a function that removes it.
// The returned function may be called any number of times.
func (h *Hub) Subscribe(fn Listener) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// Publish delivers e to every registered listener.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	snapshot := make([]Listener, 0, len(h.listeners))
	for _, fn := range h.listeners {
		snapshot = append(snapshot, fn)
	}
	h.mu.RUnlock()

	for _, fn := range snapshot {
		fn(e)
	}
}

// Len returns the number of registered listeners.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
