package registrar

import (
	"sort"

	"github.com/lunairc/luna/dispatch"
)

// holder is one owner's view of the underlying registrar. It remembers the
// signal each of its registrations was for.
type holder struct {
	registrar Interface

	signals map[uint64]string
}

func newHolder(registrar Interface) *holder {
	return &holder{
		registrar: registrar,
		signals:   make(map[uint64]string),
	}
}

// Register passes the handler on and keeps the id.
func (h *holder) Register(signal string, handler dispatch.Handler) uint64 {
	id := h.registrar.Register(signal, handler)
	h.signals[id] = signal
	return id
}

// Unregister removes one of our own registrations. Ids belonging to
// someone else are refused without touching the registrar.
func (h *holder) Unregister(id uint64) bool {
	if _, mine := h.signals[id]; !mine {
		return false
	}

	ok := h.registrar.Unregister(id)
	if ok {
		delete(h.signals, id)
	}
	return ok
}

// Signals lists the signal of every live registration, sorted. A catch-all
// registration shows up as the empty string.
func (h *holder) Signals() []string {
	list := make([]string, 0, len(h.signals))
	for _, signal := range h.signals {
		list = append(list, signal)
	}
	sort.Strings(list)
	return list
}

// release drops every registration.
func (h *holder) release() {
	for id := range h.signals {
		h.registrar.Unregister(id)
	}
	h.signals = make(map[uint64]string)
}
