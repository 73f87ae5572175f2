package filters

import (
	"context"

	"github.com/openpatrol/openpatrol/pkg/engine"
)

// BlockEnd is the sentinel yielded by Iterate after the last child of a
// combinator block, when block ends are requested. It is distinct from
// every real filter; consumers compare against it directly.
var BlockEnd Filter = blockEnd{}

type blockEnd struct{}

// Type identifies the sentinel in rendered output.
func (blockEnd) Type() string { return "block-end" }

// Process is a no-op; the sentinel never executes in a pipeline.
func (blockEnd) Process(_ context.Context, resources []engine.Resource, _ engine.Event) ([]engine.Resource, error) {
	return resources, nil
}

// Iterate flattens a nested filter tree into a single ordered sequence
// for display and structural introspection.
//
// The traversal is a deque expansion: pop the front element and yield it;
// when the element is a combinator, push the BlockEnd sentinel to the
// front (only when emitBlockEnd is set), then push each child to the
// front in declaration order. The per-child front insertion leaves the
// children at the head of the queue in reverse declaration order,
// followed by the sentinel, followed by whatever was already queued.
// Downstream consumers match on relative position, so this exact ordering
// is part of the contract.
func Iterate(fs []Filter, emitBlockEnd bool) []Filter {
	queue := make([]Filter, len(fs))
	copy(queue, fs)

	var out []Filter
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		out = append(out, f)

		if c, ok := f.(Combinator); ok {
			if emitBlockEnd {
				queue = append([]Filter{BlockEnd}, queue...)
			}
			for _, child := range c.Children() {
				queue = append([]Filter{child}, queue...)
			}
		}
	}
	return out
}
