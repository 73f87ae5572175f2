package cache

import (
	"context"
	"sync"
	"time"

	"github.com/openpatrol/openpatrol/pkg/config"
	"github.com/openpatrol/openpatrol/pkg/engine"
)

// Cache stores resource sets between evaluation passes, keyed by an
// opaque caller-chosen string (typically provider/region/type).
type Cache interface {
	// Load prepares the cache for use. Factory does not touch storage;
	// callers invoke Load before the first Get or Put.
	Load(ctx context.Context) error

	// Get returns the cached resource set for a key. The second return
	// is false when the key is absent or expired.
	Get(ctx context.Context, key string) ([]engine.Resource, bool, error)

	// Put stores a resource set under a key.
	Put(ctx context.Context, key string, resources []engine.Resource) error

	// Close releases any underlying storage.
	Close() error
}

// Factory builds the cache configured by the evaluation options. It
// performs no I/O; storage is touched on Load.
func Factory(cfg *config.Config) Cache {
	if cfg == nil || !cfg.Cache.Enabled || cfg.Cache.Period <= 0 {
		return NewNop()
	}
	if cfg.Cache.Path == "" || cfg.Cache.Path == ":memory:" {
		return NewMemory(cfg.Cache.Period)
	}
	return NewSQLite(cfg.Cache.Path, cfg.Cache.Period)
}

// Nop is the disabled cache: never hits, swallows writes.
type Nop struct{}

// NewNop creates a no-op cache.
func NewNop() *Nop { return &Nop{} }

// Load implements Cache.
func (*Nop) Load(context.Context) error { return nil }

// Get implements Cache; it never hits.
func (*Nop) Get(context.Context, string) ([]engine.Resource, bool, error) {
	return nil, false, nil
}

// Put implements Cache; it discards the write.
func (*Nop) Put(context.Context, string, []engine.Resource) error { return nil }

// Close implements Cache.
func (*Nop) Close() error { return nil }

// Memory is an in-process cache with TTL expiry.
type Memory struct {
	mu      sync.RWMutex
	period  time.Duration
	entries map[string]memoryEntry

	// now is swappable for tests.
	now func() time.Time
}

type memoryEntry struct {
	resources []engine.Resource
	storedAt  time.Time
}

// NewMemory creates an in-process cache whose entries expire after the
// given period.
func NewMemory(period time.Duration) *Memory {
	return &Memory{
		period:  period,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Load implements Cache.
func (m *Memory) Load(context.Context) error { return nil }

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) ([]engine.Resource, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || m.now().Sub(e.storedAt) > m.period {
		return nil, false, nil
	}
	return e.resources, true, nil
}

// Put implements Cache.
func (m *Memory) Put(_ context.Context, key string, resources []engine.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{resources: resources, storedAt: m.now()}
	return nil
}

// Close implements Cache.
func (m *Memory) Close() error { return nil }
