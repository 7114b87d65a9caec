package registrar

import "sync"

// Proxy hands each extension its own registrar so that everything an
// extension registered can be dropped at once when it unloads.
type Proxy struct {
	registrar Interface

	protect sync.Mutex
	holders map[string]*holder
}

// NewProxy creates a proxy in front of registrar.
func NewProxy(registrar Interface) *Proxy {
	return &Proxy{
		registrar: registrar,
		holders:   make(map[string]*holder),
	}
}

// Get returns the registrar belonging to name, creating it on first use.
func (p *Proxy) Get(name string) Interface {
	p.protect.Lock()
	defer p.protect.Unlock()

	h, ok := p.holders[name]
	if ok {
		return h
	}

	h = newHolder(p.registrar)
	p.holders[name] = h
	return h
}

// Count returns how many registrations name currently holds.
func (p *Proxy) Count(name string) int {
	p.protect.Lock()
	defer p.protect.Unlock()

	if h, ok := p.holders[name]; ok {
		return len(h.signals)
	}
	return 0
}

// Signals lists what name is registered for, see Count.
func (p *Proxy) Signals(name string) []string {
	p.protect.Lock()
	defer p.protect.Unlock()

	if h, ok := p.holders[name]; ok {
		return h.Signals()
	}
	return nil
}

// Unregister drops everything name registered and forgets name.
func (p *Proxy) Unregister(name string) {
	p.protect.Lock()
	h, ok := p.holders[name]
	if ok {
		delete(p.holders, name)
	}
	p.protect.Unlock()

	if ok {
		h.release()
	}
}
