// Package state holds the process-wide table of loaded server configurations.
package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/EasterCompany/dex-welcome-service/guild"
	"github.com/EasterCompany/dex-welcome-service/interfaces"
)

// ErrPersistence wraps store failures. The in-memory config is left as it was
// before the failed mutation.
var ErrPersistence = errors.New("failed to save server config")

// entry serializes mutations for one server. current is replaced, never
// modified, so a loaded snapshot stays consistent after the lock is released.
type entry struct {
	mu      sync.Mutex
	current atomic.Pointer[guild.ServerConfig]
}

// Manager maps server ids to their published configuration. Mutations on one
// server never block another.
type Manager struct {
	store   interfaces.ConfigStore
	entries sync.Map // int64 -> *entry
}

// NewManager creates a manager that persists through store.
func NewManager(store interfaces.ConfigStore) *Manager {
	return &Manager{store: store}
}

func (m *Manager) entry(serverID int64) *entry {
	value, _ := m.entries.LoadOrStore(serverID, &entry{})
	return value.(*entry)
}

// Snapshot returns the current configuration for a server. Callers must treat
// it as read-only.
func (m *Manager) Snapshot(serverID int64) (*guild.ServerConfig, bool) {
	value, ok := m.entries.Load(serverID)
	if !ok {
		return nil, false
	}
	cfg := value.(*entry).current.Load()
	return cfg, cfg != nil
}

// Put publishes cfg without persisting it. Used when loading from the store.
func (m *Manager) Put(cfg *guild.ServerConfig) {
	e := m.entry(cfg.ServerID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current.Store(cfg)
}

// Load reads one document from the store and publishes it.
func (m *Manager) Load(ctx context.Context, serverID int64) (*guild.ServerConfig, error) {
	cfg, err := m.store.Load(ctx, serverID)
	if err != nil {
		return nil, err
	}
	m.Put(cfg)
	return cfg, nil
}

// Init creates and persists an empty configuration for a server. It refuses
// when a configuration is loaded or already stored.
func (m *Manager) Init(ctx context.Context, serverID int64) (*guild.ServerConfig, error) {
	e := m.entry(serverID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current.Load() != nil {
		return nil, guild.ErrAlreadyInitialized
	}
	// A stored document that failed to load at startup must not be
	// overwritten with an empty one.
	if _, err := m.store.Load(ctx, serverID); err == nil {
		return nil, guild.ErrAlreadyInitialized
	} else if !errors.Is(err, guild.ErrServerNotConfigured) {
		return nil, fmt.Errorf("%w: could not check for an existing config: %w", ErrPersistence, err)
	}
	cfg := guild.NewServerConfig(serverID)
	if err := m.store.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	e.current.Store(cfg)
	return cfg, nil
}

// Update applies fn to a private copy of the server's configuration, saves
// the copy and publishes it. If fn returns an error nothing is saved and the
// error is returned as is. Save failures are wrapped with ErrPersistence and
// leave the previous configuration published.
func (m *Manager) Update(ctx context.Context, serverID int64, fn func(*guild.ServerConfig) error) (*guild.ServerConfig, error) {
	value, ok := m.entries.Load(serverID)
	if !ok {
		return nil, guild.ErrServerNotConfigured
	}
	e := value.(*entry)
	e.mu.Lock()
	defer e.mu.Unlock()

	current := e.current.Load()
	if current == nil {
		return nil, guild.ErrServerNotConfigured
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	e.current.Store(next)
	return next, nil
}

// ServerIDs lists every server with a published configuration, ascending.
func (m *Manager) ServerIDs() []int64 {
	var ids []int64
	m.entries.Range(func(key, value any) bool {
		if value.(*entry).current.Load() != nil {
			ids = append(ids, key.(int64))
		}
		return true
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of loaded servers.
func (m *Manager) Len() int {
	return len(m.ServerIDs())
}
