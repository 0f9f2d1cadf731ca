package config

import (
	"sync"

	"github.com/dshills/vscreen/internal/config/notify"
	"github.com/dshills/vscreen/internal/config/watcher"
)

// Manager holds the live configuration, reloads it when the file changes,
// and notifies subscribers of each setting that changed.
type Manager struct {
	mu      sync.RWMutex
	opts    LoadOptions
	current Config

	notifier *notify.Notifier
	watcher  *watcher.Watcher
	onError  func(error)
}

// NewManager loads the configuration described by opts.
func NewManager(opts LoadOptions) (*Manager, error) {
	cfg, err := Load(opts)
	if err != nil {
		return nil, err
	}
	return &Manager{
		opts:     opts,
		current:  cfg,
		notifier: notify.New(),
	}, nil
}

// Current returns a copy of the active configuration.
func (m *Manager) Current() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Path returns the configuration file path, which may be empty.
func (m *Manager) Path() string {
	return m.opts.Path
}

// Subscribe registers an observer for all changes.
func (m *Manager) Subscribe(observer notify.Observer) *notify.Subscription {
	return m.notifier.Subscribe(observer)
}

// SubscribePath registers an observer for changes at or below path.
func (m *Manager) SubscribePath(path string, observer notify.Observer) *notify.Subscription {
	return m.notifier.SubscribePath(path, observer)
}

// OnError sets the callback for reload failures seen while watching.
func (m *Manager) OnError(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = fn
}

// Reload reads every source again. An invalid result leaves the active
// configuration untouched and is returned as the error. On success each
// changed setting is delivered as a set change.
func (m *Manager) Reload() error {
	next, err := Load(m.opts)
	if err != nil {
		return err
	}

	m.mu.Lock()
	prev := m.current
	m.current = next
	m.mu.Unlock()

	batch := m.notifier.NewBatch()
	for _, s := range Diff(prev, next) {
		batch.Set(s.Path, s.OldValue, s.NewValue, m.opts.Path)
	}
	batch.Commit()
	return nil
}

// Watch starts reloading whenever the configuration file changes. It does
// nothing when no file was given.
func (m *Manager) Watch(opts ...watcher.Option) error {
	if m.opts.Path == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watcher != nil {
		return nil
	}

	opts = append(opts, watcher.WithErrorHandler(m.reportError))
	w, err := watcher.New(opts...)
	if err != nil {
		return err
	}
	if err := w.Watch(m.opts.Path); err != nil {
		w.Stop()
		return err
	}
	w.OnChange(m.handleFileChange)
	w.Start()
	m.watcher = w
	return nil
}

// Close stops watching and drops all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	w := m.watcher
	m.watcher = nil
	m.mu.Unlock()

	if w != nil {
		w.Stop()
	}
	m.notifier.Close()
}

// handleFileChange reloads on writes and creations. A removed file keeps the
// last good configuration until it reappears.
func (m *Manager) handleFileChange(event watcher.Event) {
	if event.Op == watcher.OpRemove || event.Op == watcher.OpRename {
		return
	}
	if err := m.Reload(); err != nil {
		m.reportError(err)
	}
}

func (m *Manager) reportError(err error) {
	m.mu.RLock()
	fn := m.onError
	m.mu.RUnlock()
	if fn != nil {
		fn(err)
	}
}
