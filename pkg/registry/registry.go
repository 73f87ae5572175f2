package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/openpatrol/openpatrol/pkg/engine"
)

// Table is a provider plugin registry: per-provider resource-type entries
// and the loader hooks that populate them lazily. The package-level
// functions operate on a shared default table; tests build their own.
type Table struct {
	// mu protects all maps.
	mu sync.RWMutex

	// types maps provider name to resource-type name to entry.
	types map[string]map[string]*engine.ResourceType

	// loaders maps provider name to its registration hook.
	loaders map[string]func() error

	// loadMu serializes hook execution so a hook runs at most once
	// successfully even under concurrent EnsureLoaded calls.
	loadMu sync.Mutex

	// loaded records providers whose hook ran successfully. A failed
	// hook is retried on the next EnsureLoaded.
	loaded map[string]bool
}

// NewTable creates an empty registry table.
func NewTable() *Table {
	return &Table{
		types:   make(map[string]map[string]*engine.ResourceType),
		loaders: make(map[string]func() error),
		loaded:  make(map[string]bool),
	}
}

// Register adds a resource type to the table. Registering the same
// (provider, name) twice replaces the entry; provider packages only do
// this deliberately, to shadow a type.
func (t *Table) Register(rt *engine.ResourceType) {
	t.mu.Lock()
	defer t.mu.Unlock()

	byName, ok := t.types[rt.Provider]
	if !ok {
		byName = make(map[string]*engine.ResourceType)
		t.types[rt.Provider] = byName
	}
	byName[rt.Name] = rt
}

// OnLoad registers the lazy registration hook for a provider. The hook
// runs at most once successfully, on the first EnsureLoaded naming the
// provider.
func (t *Table) OnLoad(provider string, fn func() error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loaders[provider] = fn
}

// EnsureLoaded runs the registration hooks for the providers named by the
// qualified types ("provider.resource" or bare "provider"). Hooks that
// already ran successfully are skipped. Unknown providers are not an
// error here; the subsequent Lookup reports the miss.
func (t *Table) EnsureLoaded(qualified ...string) error {
	for _, q := range qualified {
		provider := q
		if i := strings.Index(q, "."); i >= 0 {
			provider = q[:i]
		}
		if err := t.loadProvider(provider); err != nil {
			return fmt.Errorf("loading provider %s: %w", provider, err)
		}
	}
	return nil
}

func (t *Table) loadProvider(provider string) error {
	t.loadMu.Lock()
	defer t.loadMu.Unlock()

	t.mu.RLock()
	done := t.loaded[provider]
	fn, ok := t.loaders[provider]
	t.mu.RUnlock()
	if done || !ok {
		return nil
	}

	// Hooks call Register, which takes mu; run them outside it.
	if err := fn(); err != nil {
		return err
	}

	t.mu.Lock()
	t.loaded[provider] = true
	t.mu.Unlock()
	return nil
}

// Lookup finds a registered resource type. It does not trigger loading;
// callers run EnsureLoaded first.
func (t *Table) Lookup(provider, name string) (*engine.ResourceType, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	byName, ok := t.types[provider]
	if !ok {
		return nil, false
	}
	rt, ok := byName[name]
	return rt, ok
}

// Loaders returns the sorted names of providers with pending or applied
// registration hooks. Used to load everything for introspection.
func (t *Table) Loaders() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.loaders))
	for name := range t.loaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Providers returns the sorted names of providers with registered types.
func (t *Table) Providers() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.types))
	for name := range t.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Types returns the sorted resource-type names registered for a provider.
func (t *Table) Types(provider string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	byName := t.types[provider]
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default is the process-wide registry table provider packages register
// into from init.
var Default = NewTable()

// Register adds a resource type to the default table.
func Register(rt *engine.ResourceType) { Default.Register(rt) }

// OnLoad registers a lazy registration hook on the default table.
func OnLoad(provider string, fn func() error) { Default.OnLoad(provider, fn) }

// EnsureLoaded runs pending registration hooks on the default table.
func EnsureLoaded(qualified ...string) error { return Default.EnsureLoaded(qualified...) }

// Lookup finds a resource type in the default table.
func Lookup(provider, name string) (*engine.ResourceType, bool) {
	return Default.Lookup(provider, name)
}

// Providers lists providers registered in the default table.
func Providers() []string { return Default.Providers() }

// Types lists a provider's resource types in the default table.
func Types(provider string) []string { return Default.Types(provider) }
