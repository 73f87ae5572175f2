package filters

import (
	"context"
	"reflect"

	"github.com/openpatrol/openpatrol/pkg/engine"
)

// Boolean combinator kinds. These type names are reserved; leaf filters
// cannot register under them.
const (
	KindAnd = "and"
	KindOr  = "or"
	KindNot = "not"
)

// boolean is the combinator node for all three kinds. All combinators are
// narrowing transforms over their children's results.
type boolean struct {
	kind     string
	children []Filter
	owner    Owner
}

func newBoolean(kind string, children []Filter, owner Owner) Combinator {
	return &boolean{kind: kind, children: children, owner: owner}
}

// Type returns the combinator kind.
func (b *boolean) Type() string { return b.kind }

// Children returns the nested filters in declaration order.
func (b *boolean) Children() []Filter { return b.children }

// Process evaluates the combinator over the resource set.
func (b *boolean) Process(ctx context.Context, resources []engine.Resource, event engine.Event) ([]engine.Resource, error) {
	switch b.kind {
	case KindAnd:
		return b.processAnd(ctx, resources, event)
	case KindOr:
		return b.processOr(ctx, resources, event)
	default:
		return b.processNot(ctx, resources, event)
	}
}

// processAnd narrows the set through each child in order.
func (b *boolean) processAnd(ctx context.Context, resources []engine.Resource, event engine.Event) ([]engine.Resource, error) {
	var err error
	for _, child := range b.children {
		if len(resources) == 0 {
			break
		}
		resources, err = child.Process(ctx, resources, event)
		if err != nil {
			return nil, err
		}
	}
	return resources, nil
}

// processOr keeps every resource matched by at least one child,
// preserving the original order and deduplicating by resource identity.
func (b *boolean) processOr(ctx context.Context, resources []engine.Resource, event engine.Event) ([]engine.Resource, error) {
	matched := make(map[interface{}]struct{})
	for _, child := range b.children {
		survivors, err := child.Process(ctx, resources, event)
		if err != nil {
			return nil, err
		}
		for _, r := range survivors {
			matched[b.identity(r)] = struct{}{}
		}
	}

	results := make([]engine.Resource, 0, len(matched))
	for _, r := range resources {
		if _, ok := matched[b.identity(r)]; ok {
			results = append(results, r)
		}
	}
	return results, nil
}

// processNot keeps the complement of its children evaluated conjunctively.
func (b *boolean) processNot(ctx context.Context, resources []engine.Resource, event engine.Event) ([]engine.Resource, error) {
	survivors, err := b.processAnd(ctx, resources, event)
	if err != nil {
		return nil, err
	}

	excluded := make(map[interface{}]struct{}, len(survivors))
	for _, r := range survivors {
		excluded[b.identity(r)] = struct{}{}
	}

	results := make([]engine.Resource, 0, len(resources)-len(excluded))
	for _, r := range resources {
		if _, ok := excluded[b.identity(r)]; !ok {
			results = append(results, r)
		}
	}
	return results, nil
}

// identity keys a resource for set membership: the model's id field when
// present, otherwise the map's own identity.
func (b *boolean) identity(r engine.Resource) interface{} {
	if b.owner != nil {
		if idKey := b.owner.GetModel().ID; idKey != "" {
			if id, ok := r[idKey].(string); ok {
				return id
			}
		}
	}
	return reflect.ValueOf(r).Pointer()
}
