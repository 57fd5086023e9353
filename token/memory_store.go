package token

import (
	"context"
	"sync"
)

// MemoryOrigin is an in-process token slot shared by several MemoryStore
// "tabs". A write through one tab notifies the subscribers of every other tab.
type MemoryOrigin struct {
	mu      sync.RWMutex
	token   string
	present bool
	tabs    map[*MemoryStore]struct{}
}

func NewMemoryOrigin() *MemoryOrigin {
	return &MemoryOrigin{
		tabs: make(map[*MemoryStore]struct{}),
	}
}

// Tab opens a new context on the origin
func (o *MemoryOrigin) Tab() *MemoryStore {
	tab := &MemoryStore{origin: o}
	o.mu.Lock()
	o.tabs[tab] = struct{}{}
	o.mu.Unlock()
	return tab
}

// NewMemoryStore returns a single tab on a private origin
func NewMemoryStore() *MemoryStore {
	return NewMemoryOrigin().Tab()
}

// MemoryStore is one tab of a MemoryOrigin
type MemoryStore struct {
	origin *MemoryOrigin
	subs   subscribers
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Get(_ context.Context) (string, bool, error) {
	m.origin.mu.RLock()
	defer m.origin.mu.RUnlock()
	return m.origin.token, m.origin.present, nil
}

func (m *MemoryStore) Set(_ context.Context, token string) error {
	m.write(token, true)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.write("", false)
	return nil
}

func (m *MemoryStore) Subscribe(fn func()) func() {
	remove, _ := m.subs.add(fn)
	return func() { remove() }
}

// Close detaches the tab from its origin; it no longer receives notifications
func (m *MemoryStore) Close() {
	m.origin.mu.Lock()
	delete(m.origin.tabs, m)
	m.origin.mu.Unlock()
}

func (m *MemoryStore) write(token string, present bool) {
	m.origin.mu.Lock()
	changed := m.origin.present != present || m.origin.token != token
	m.origin.token, m.origin.present = token, present
	var others []*MemoryStore
	if changed {
		for tab := range m.origin.tabs {
			if tab != m {
				others = append(others, tab)
			}
		}
	}
	m.origin.mu.Unlock()

	for _, tab := range others {
		tab.subs.notify()
	}
}
