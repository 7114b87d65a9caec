/*
Package dispatch delivers named signals with typed arguments to registered
observers. Delivery is synchronous and in registration order, and a failing
observer never stops the others.
*/
package dispatch

import (
	"fmt"
	"runtime/debug"
	"sync"

	"gopkg.in/inconshreveable/log15.v2"
)

// Handler is the interface for observers of signals.
type Handler interface {
	HandleSignal(signal string, args []Arg) error
}

// HandlerFunc implements the Handler interface
type HandlerFunc func(signal string, args []Arg) error

// HandleSignal implements Handler interface
func (h HandlerFunc) HandleSignal(signal string, args []Arg) error {
	return h(signal, args)
}

type registration struct {
	id      uint64
	signal  string
	handler Handler
}

// Dispatcher keeps the registry of signal name to observers.
type Dispatcher struct {
	logger log15.Logger

	mut      sync.RWMutex
	nextID   uint64
	handlers []registration
}

// NewDispatcher initializes an empty dispatcher ready to register handlers.
func NewDispatcher(logger log15.Logger) *Dispatcher {
	return &Dispatcher{
		logger: logger,
		nextID: 1,
	}
}

// Register registers a handler to a signal. In return a unique identifer is
// given to later pass into Unregister. An empty signal name receives every
// signal.
func (d *Dispatcher) Register(signal string, handler Handler) uint64 {
	d.mut.Lock()
	defer d.mut.Unlock()

	id := d.nextID
	d.nextID++
	d.handlers = append(d.handlers, registration{
		id:      id,
		signal:  signal,
		handler: handler,
	})
	return id
}

// Unregister uses the identifier returned by Register to unregister a
// handler. If the handler was removed it returns true, false if it could
// not be found.
func (d *Dispatcher) Unregister(id uint64) bool {
	d.mut.Lock()
	defer d.mut.Unlock()

	for i, r := range d.handlers {
		if r.id == id {
			d.handlers = append(d.handlers[:i:i], d.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// NHandlers returns how many handlers would receive the signal.
func (d *Dispatcher) NHandlers(signal string) int {
	d.mut.RLock()
	defer d.mut.RUnlock()

	n := 0
	for _, r := range d.handlers {
		if r.signal == "" || r.signal == signal {
			n++
		}
	}
	return n
}

// Dispatch delivers a signal to every interested handler in registration
// order. Errors and panics from handlers are logged and do not stop
// delivery. Handlers registered or unregistered during a dispatch take
// effect from the next one. Returns the number of handlers that succeeded.
func (d *Dispatcher) Dispatch(signal string, args ...Arg) int {
	d.mut.RLock()
	var targets []registration
	for _, r := range d.handlers {
		if r.signal == "" || r.signal == signal {
			targets = append(targets, r)
		}
	}
	d.mut.RUnlock()

	ok := 0
	for _, r := range targets {
		if d.call(r, signal, args) {
			ok++
		}
	}
	return ok
}

// call runs one handler with its own copy of the arguments.
func (d *Dispatcher) call(r registration, signal string, args []Arg) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("Signal handler panic", "signal", signal,
				"handler", r.id, "err", fmt.Sprint(p),
				"stack", string(debug.Stack()))
			ok = false
		}
	}()

	cp := make([]Arg, len(args))
	copy(cp, args)

	if err := r.handler.HandleSignal(signal, cp); err != nil {
		d.logger.Error("Signal handler failed", "signal", signal,
			"handler", r.id, "err", err)
		return false
	}
	return true
}
