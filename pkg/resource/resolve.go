package resource

import (
	"fmt"
	"strings"

	"github.com/openpatrol/openpatrol/pkg/engine"
)

// GetResourceManager resolves and constructs a handler for a related
// resource type. The specifier is either "<provider>.<resource>" or a
// bare "<resource>", in which case the provider defaults to that of the
// currently executing policy.
//
// When no definition is supplied, the calling handler reads from the
// config source, and the target type has a config model, the target is
// constructed with a synthetic config-source definition so related
// lookups stay on the same data source. The target shares the caller's
// context.
func (m *Manager) GetResourceManager(typeSpec string, data engine.Fragment) (engine.Handler, error) {
	provider := m.ctx.Policy().Provider
	name := typeSpec
	if i := strings.Index(typeSpec, "."); i >= 0 {
		provider, name = typeSpec[:i], typeSpec[i+1:]
	}

	// Give the provider module a chance to register the type before the
	// lookup.
	if err := m.table.EnsureLoaded(provider + "." + name); err != nil {
		return nil, fmt.Errorf("resolving %s: %w", typeSpec, err)
	}

	rt, ok := m.table.Lookup(provider, name)
	if !ok {
		return nil, &engine.UnknownResourceTypeError{Name: typeSpec}
	}

	// A caller already querying via config carries it forward when the
	// target can serve it.
	if data == nil && m.sourceType == engine.SourceConfig && rt.Model.ConfigType != "" {
		return rt.New(m.ctx, engine.Fragment{"source": engine.SourceConfig})
	}
	if data == nil {
		data = engine.Fragment{}
	}
	return rt.New(m.ctx, data)
}
