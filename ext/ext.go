/*
Package ext hosts extensions: named, versioned bundles of signal handlers
that can be loaded and unloaded while the bot runs. Manager is what the
admin commands load, reload and unload through.

Extensions register their handlers through the registrar they are given in
Init, unloading removes every one of them whether or not Deinit remembers
to.
*/
package ext

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/lunairc/luna/bot"
	"github.com/lunairc/luna/registrar"
)

var (
	// ErrUnknownExtension is returned when no factory has the name.
	ErrUnknownExtension = errors.New("ext: unknown extension")
	// ErrAlreadyLoaded is returned when loading a loaded extension.
	ErrAlreadyLoaded = errors.New("ext: extension already loaded")
	// ErrNotLoaded is returned when unloading an extension that isn't.
	ErrNotLoaded = errors.New("ext: extension not loaded")
)

// Extension is a unit of bot behaviour.
type Extension interface {
	Name() string
	Version() string
	// Init registers the extension's handlers. The session outlives
	// connections, its Writer and State change on every reconnect.
	Init(s *bot.Session, reg registrar.Interface) error
	// Deinit releases anything that isn't a handler registration.
	Deinit() error
}

// Factory creates a fresh instance of an extension.
type Factory func() Extension

// Manager loads extensions into a session.
type Manager struct {
	session *bot.Session
	proxy   *registrar.Proxy
	log     log15.Logger

	protect   sync.Mutex
	factories map[string]Factory
	loaded    map[string]Extension
}

// NewManager creates a manager whose extensions register with the
// session's dispatcher.
func NewManager(s *bot.Session, logger log15.Logger) *Manager {
	return &Manager{
		session:   s,
		proxy:     registrar.NewProxy(s.Dispatcher),
		log:       logger,
		factories: make(map[string]Factory),
		loaded:    make(map[string]Extension),
	}
}

// Add makes an extension available under a name, replacing any factory
// already using it.
func (m *Manager) Add(name string, factory Factory) {
	m.protect.Lock()
	defer m.protect.Unlock()

	m.factories[name] = factory
}

// Available lists the names that can be loaded, sorted.
func (m *Manager) Available() []string {
	m.protect.Lock()
	defer m.protect.Unlock()

	names := make([]string, 0, len(m.factories))
	for name := range m.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Loaded returns the version of a loaded extension.
func (m *Manager) Loaded(name string) (version string, ok bool) {
	m.protect.Lock()
	defer m.protect.Unlock()

	e, ok := m.loaded[name]
	if !ok {
		return "", false
	}
	return e.Version(), true
}

// Load creates and initializes an extension. If Init fails whatever it
// registered is removed again.
func (m *Manager) Load(name string) (version string, err error) {
	m.protect.Lock()
	defer m.protect.Unlock()

	return m.load(name)
}

func (m *Manager) load(name string) (string, error) {
	if _, ok := m.loaded[name]; ok {
		return "", ErrAlreadyLoaded
	}
	factory, ok := m.factories[name]
	if !ok {
		return "", ErrUnknownExtension
	}

	e := factory()
	if err := e.Init(m.session, m.proxy.Get(name)); err != nil {
		m.proxy.Unregister(name)
		return "", errors.Wrapf(err, "ext: initializing %s", name)
	}

	m.loaded[name] = e
	m.log.Info("Loaded extension", "ext", name, "version", e.Version(),
		"handlers", m.proxy.Count(name))
	m.log.Debug("Extension signals", "ext", name,
		"signals", strings.Join(m.proxy.Signals(name), ","))
	return e.Version(), nil
}

// Reload unloads then loads an extension, picking up a replaced factory.
func (m *Manager) Reload(name string) (version string, err error) {
	m.protect.Lock()
	defer m.protect.Unlock()

	if err = m.unload(name); err != nil {
		return "", err
	}
	return m.load(name)
}

// Unload deinitializes an extension and removes its handlers. The handlers
// are removed even if Deinit fails.
func (m *Manager) Unload(name string) error {
	m.protect.Lock()
	defer m.protect.Unlock()

	return m.unload(name)
}

func (m *Manager) unload(name string) error {
	e, ok := m.loaded[name]
	if !ok {
		return ErrNotLoaded
	}

	delete(m.loaded, name)
	m.proxy.Unregister(name)

	if err := e.Deinit(); err != nil {
		return errors.Wrapf(err, "ext: deinitializing %s", name)
	}

	m.log.Info("Unloaded extension", "ext", name)
	return nil
}

// LoadAll loads each named extension, logging the ones that fail. It
// returns how many loaded.
func (m *Manager) LoadAll(names []string) int {
	n := 0
	for _, name := range names {
		if _, err := m.Load(name); err != nil {
			m.log.Error("Failed to load extension", "ext", name, "err", err)
			continue
		}
		n++
	}
	return n
}

// UnloadAll unloads every extension.
func (m *Manager) UnloadAll() {
	m.protect.Lock()
	defer m.protect.Unlock()

	for name := range m.loaded {
		if err := m.unload(name); err != nil {
			m.log.Error("Failed to unload extension", "ext", name, "err", err)
		}
	}
}

var _ bot.ScriptHost = &Manager{}
