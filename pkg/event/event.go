// Package event provides a small in-process event dispatcher.
//
// The checkout pipeline fires "order.created" after a successful commit;
// listeners registered at boot fan the order out to the websocket feed and
// the confirmation-email queue.
package event

import (
	"sync"

	"github.com/allinbuy/api/pkg/logger"
)

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
)

// Listen registers a handler for the given event name.
func Listen(event string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], handler)
}

// snapshot copies the handler list so listeners registered mid-dispatch
// don't race with the loop.
func snapshot(event string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	return hs
}

// Fire dispatches an event synchronously to all registered listeners.
func Fire(event string, payload interface{}) {
	for _, h := range snapshot(event) {
		h(payload)
	}
}

// FireAsync dispatches the event to each listener on its own goroutine and
// returns immediately. A panicking listener is logged, not fatal; the
// checkout response must not depend on its side effects.
func FireAsync(event string, payload interface{}) {
	for _, h := range snapshot(event) {
		h := h
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event listener panicked", "event", event, "panic", r)
				}
			}()
			h(payload)
		}()
	}
}

// Flush removes all listeners. Tests use it to isolate dispatch state.
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
