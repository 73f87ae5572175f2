package filters

import (
	"context"
	"fmt"
	"sync"

	"github.com/openpatrol/openpatrol/pkg/engine"
)

// Filter is one node of a filter pipeline. Process returns the surviving
// subset of resources; it must never add resources and must not mutate
// the input slice.
type Filter interface {
	// Type is the filter's discriminator, as written in the policy.
	Type() string

	// Process applies the filter to a resource set.
	Process(ctx context.Context, resources []engine.Resource, event engine.Event) ([]engine.Resource, error)
}

// Combinator is a boolean filter node (and, or, not) holding nested
// children. The tree is finite and acyclic by construction.
type Combinator interface {
	Filter

	// Children returns the nested filters in declaration order.
	Children() []Filter
}

// Owner is the resource handler a pipeline belongs to. Filters use it for
// resource identity; factories may capture it for provider access.
type Owner interface {
	GetModel() engine.Model
}

// Factory constructs a leaf filter from its definition.
type Factory func(def map[string]interface{}, owner Owner) (Filter, error)

// Registry maps filter type names to factories and parses definition
// lists into pipelines. A resource type without filtering support simply
// has no registry.
type Registry struct {
	mu        sync.RWMutex
	name      string
	factories map[string]Factory
}

// NewRegistry creates an empty filter registry.
func NewRegistry(name string) *Registry {
	return &Registry{
		name:      name,
		factories: make(map[string]Factory),
	}
}

// Register adds a leaf filter factory under a type name.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Factory returns the factory registered under a type name.
func (r *Registry) Factory(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Parse builds an ordered filter pipeline from a definition list. Each
// entry is either a bare type name, a mapping with a "type" key, or a
// single-key mapping naming a boolean combinator over a nested list.
func (r *Registry) Parse(defs []interface{}, owner Owner) ([]Filter, error) {
	results := make([]Filter, 0, len(defs))
	for i, def := range defs {
		f, err := r.parseOne(def, owner)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", r.name, i, err)
		}
		results = append(results, f)
	}
	return results, nil
}

func (r *Registry) parseOne(def interface{}, owner Owner) (Filter, error) {
	switch d := def.(type) {
	case string:
		return r.instantiate(d, map[string]interface{}{"type": d}, owner)
	case map[string]interface{}:
		if kind, ok := booleanKind(d); ok {
			children, ok := d[kind].([]interface{})
			if !ok {
				return nil, fmt.Errorf("%s block requires a list of definitions", kind)
			}
			parsed, err := r.Parse(children, owner)
			if err != nil {
				return nil, err
			}
			return newBoolean(kind, parsed, owner), nil
		}
		name, _ := d["type"].(string)
		if name == "" {
			return nil, fmt.Errorf("definition missing type: %v", d)
		}
		return r.instantiate(name, d, owner)
	default:
		return nil, fmt.Errorf("invalid definition: %v", def)
	}
}

func (r *Registry) instantiate(name string, def map[string]interface{}, owner Owner) (Filter, error) {
	factory, ok := r.Factory(name)
	if !ok {
		return nil, fmt.Errorf("unknown type: %s", name)
	}
	return factory(def, owner)
}

// booleanKind recognizes a single-key mapping whose key is a boolean
// combinator kind.
func booleanKind(d map[string]interface{}) (string, bool) {
	if len(d) != 1 {
		return "", false
	}
	for k := range d {
		switch k {
		case KindAnd, KindOr, KindNot:
			return k, true
		}
	}
	return "", false
}
