// Package actions defines the action pipeline construction contract: the
// Action interface and the registry that parses action definition lists
// from policy fragments. Construction mirrors the filter registry; action
// execution itself belongs to the surrounding policy machinery.
package actions

import (
	"context"
	"fmt"
	"sync"

	"github.com/openpatrol/openpatrol/pkg/engine"
)

// Action is one node of an action pipeline, applied to the resources that
// survived filtering.
type Action interface {
	// Type is the action's discriminator, as written in the policy.
	Type() string

	// Process applies the action to the surviving resource set.
	Process(ctx context.Context, resources []engine.Resource) error
}

// Owner is the resource handler an action pipeline belongs to.
type Owner interface {
	GetModel() engine.Model
}

// Factory constructs an action from its definition.
type Factory func(def map[string]interface{}, owner Owner) (Action, error)

// Registry maps action type names to factories. A resource type without
// action support simply has no registry.
type Registry struct {
	mu        sync.RWMutex
	name      string
	factories map[string]Factory
}

// NewRegistry creates an empty action registry.
func NewRegistry(name string) *Registry {
	return &Registry{
		name:      name,
		factories: make(map[string]Factory),
	}
}

// Register adds an action factory under a type name.
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

// Parse builds an ordered action pipeline from a definition list. Each
// entry is either a bare type name or a mapping with a "type" key.
func (r *Registry) Parse(defs []interface{}, owner Owner) ([]Action, error) {
	results := make([]Action, 0, len(defs))
	for i, def := range defs {
		a, err := r.parseOne(def, owner)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", r.name, i, err)
		}
		results = append(results, a)
	}
	return results, nil
}

func (r *Registry) parseOne(def interface{}, owner Owner) (Action, error) {
	switch d := def.(type) {
	case string:
		return r.instantiate(d, map[string]interface{}{"type": d}, owner)
	case map[string]interface{}:
		name, _ := d["type"].(string)
		if name == "" {
			return nil, fmt.Errorf("definition missing type: %v", d)
		}
		return r.instantiate(name, d, owner)
	default:
		return nil, fmt.Errorf("invalid definition: %v", def)
	}
}

func (r *Registry) instantiate(name string, def map[string]interface{}, owner Owner) (Action, error) {
	factory, ok := r.Factory(name)
	if !ok {
		return nil, fmt.Errorf("unknown type: %s", name)
	}
	return factory(def, owner)
}
