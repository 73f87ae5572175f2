package resource

import (
	"context"
	"time"

	"github.com/openpatrol/openpatrol/pkg/actions"
	"github.com/openpatrol/openpatrol/pkg/cache"
	"github.com/openpatrol/openpatrol/pkg/engine"
	"github.com/openpatrol/openpatrol/pkg/executor"
	"github.com/openpatrol/openpatrol/pkg/filters"
	"github.com/openpatrol/openpatrol/pkg/registry"
	"github.com/openpatrol/openpatrol/pkg/retry"
	"github.com/openpatrol/openpatrol/pkg/telemetry"
)

// Manager is a constructed resource handler. Its pipelines are built once
// at construction and never mutated; only the resource set flowing
// through them changes.
type Manager struct {
	ctx        engine.Context
	rt         *engine.ResourceType
	data       engine.Fragment
	sourceType string

	filterRegistry *filters.Registry
	actionRegistry *actions.Registry

	filters []filters.Filter
	actions []actions.Action

	cache cache.Cache
	log   *telemetry.Logger

	metrics         *telemetry.Metrics
	retry           retry.Strategy
	executorFactory executor.Factory
	table           *registry.Table
}

// Option injects a capability into a Manager under construction.
type Option func(*Manager)

// WithFilterRegistry enables filter parsing. Without it the resource
// type does not support filtering and the pipeline is skipped entirely.
func WithFilterRegistry(r *filters.Registry) Option {
	return func(m *Manager) { m.filterRegistry = r }
}

// WithActionRegistry enables action parsing. Without it the resource
// type does not support actions.
func WithActionRegistry(r *actions.Registry) Option {
	return func(m *Manager) { m.actionRegistry = r }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithRetry attaches a retry strategy for callers to apply around
// guarded calls. The call guard itself never retries.
func WithRetry(s retry.Strategy) Option {
	return func(m *Manager) { m.retry = s }
}

// WithExecutorFactory replaces the default bounded worker-pool factory.
func WithExecutorFactory(f executor.Factory) Option {
	return func(m *Manager) { m.executorFactory = f }
}

// WithTable replaces the default plugin registry table, for tests and
// embedded use.
func WithTable(t *registry.Table) Option {
	return func(m *Manager) { m.table = t }
}

// New constructs a Manager for a resource type from a policy fragment.
// Filters and actions are parsed here; besides pipeline construction and
// the cache-factory call there are no side effects.
func New(ctx engine.Context, rt *engine.ResourceType, data engine.Fragment, opts ...Option) (*Manager, error) {
	m := &Manager{
		ctx:             ctx,
		rt:              rt,
		data:            data,
		sourceType:      engine.SourceDescribe,
		executorFactory: executor.DefaultFactory,
		table:           registry.Default,
	}
	if s := data.Source(); s != "" {
		m.sourceType = s
	}

	for _, opt := range opts {
		opt(m)
	}

	m.cache = cache.Factory(ctx.Options())
	m.log = ctx.Logger().NewResourceLogger(rt.Provider, rt.Name)

	if m.filterRegistry != nil {
		parsed, err := m.filterRegistry.Parse(data.FilterDefs(), m)
		if err != nil {
			return nil, err
		}
		m.filters = parsed
	}
	if m.actionRegistry != nil {
		parsed, err := m.actionRegistry.Parse(data.ActionDefs(), m)
		if err != nil {
			return nil, err
		}
		m.actions = parsed
	}
	return m, nil
}

// FilterResources drives a resource set through the filter pipeline,
// applying top-level filters sequentially in declaration order. The
// working set is replaced by each filter's result; iteration stops as
// soon as it is empty, since filters only narrow. The input slice is
// never mutated. Filter errors propagate unmodified.
func (m *Manager) FilterResources(ctx context.Context, resources []engine.Resource, event engine.Event) ([]engine.Resource, error) {
	original := len(resources)
	if event.Debug() {
		m.log.Infof("filtering %d resources with %d filters", original, len(m.filters))
	}

	for _, f := range m.filters {
		if len(resources) == 0 {
			break
		}
		rcount := len(resources)

		fctx, span := m.ctx.Tracer().StartFilterSpan(ctx, f.Type())
		start := time.Now()
		filtered, err := f.Process(fctx, resources, event)
		m.metrics.RecordFilter(m.rt.Name, f.Type(), time.Since(start))
		if err != nil {
			telemetry.RecordError(span, err)
			span.End()
			return nil, err
		}
		span.End()
		resources = filtered

		if event.Debug() {
			m.log.Debugf("applied filter %s %d->%d", f.Type(), rcount, len(resources))
		}
	}

	m.log.Debugf("filtered from %d to %d %s", original, len(resources), m.rt.Name)
	m.metrics.RecordPipeline(m.rt.Name, original, len(resources))
	return resources, nil
}

// IterFilters linearizes the handler's filter tree, optionally emitting
// block-end sentinels.
func (m *Manager) IterFilters(blockEnd bool) []filters.Filter {
	return filters.Iterate(m.filters, blockEnd)
}

// Filters returns the handler's top-level filters.
func (m *Manager) Filters() []filters.Filter { return m.filters }

// Actions returns the handler's actions.
func (m *Manager) Actions() []actions.Action { return m.actions }

// MatchIDs returns the ids that match this resource type's id format.
// The default is the identity; resource types with a recognizable id
// syntax override it to drop foreign ids. It never fails.
func (m *Manager) MatchIDs(ids []string) []string { return ids }

// GetResources retrieves a set of resources by id. The default is a
// capability stub returning an empty set, not an error.
func (m *Manager) GetResources(_ context.Context, _ []string) ([]engine.Resource, error) {
	return []engine.Resource{}, nil
}

// Resources retrieves the full candidate resource set. Concrete handlers
// must override it; the base implementation fails.
func (m *Manager) Resources(context.Context) ([]engine.Resource, error) {
	return nil, engine.ErrNotImplemented
}

// GetModel returns the resource type's meta-model.
func (m *Manager) GetModel() engine.Model { return m.rt.Model }

// SourceType reports how this handler's resources are normally obtained.
func (m *Manager) SourceType() string { return m.sourceType }

// Definition returns the policy fragment the handler was built from.
func (m *Manager) Definition() engine.Fragment { return m.data }

// Permissions lists provider permissions the handler requires. The base
// handler requires none.
func (m *Manager) Permissions() []string { return nil }

// Validate checks the resource definition beyond filters and actions. A
// hook point; the default accepts everything.
func (m *Manager) Validate() error { return nil }

// Cache returns the handle obtained from the cache factory at
// construction.
func (m *Manager) Cache() cache.Cache { return m.cache }

// Retry returns the handler's retry strategy, nil when none is attached.
func (m *Manager) Retry() retry.Strategy { return m.retry }

// ExecutorFactory returns the execution-pool factory surrounding code
// may use to parallelize independent retrievals.
func (m *Manager) ExecutorFactory() executor.Factory { return m.executorFactory }

// Log returns the handler's structured logger.
func (m *Manager) Log() *telemetry.Logger { return m.log }
