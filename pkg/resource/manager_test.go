package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/openpatrol/openpatrol/pkg/actions"
	"github.com/openpatrol/openpatrol/pkg/cache"
	"github.com/openpatrol/openpatrol/pkg/config"
	"github.com/openpatrol/openpatrol/pkg/engine"
	"github.com/openpatrol/openpatrol/pkg/filters"
	"github.com/openpatrol/openpatrol/pkg/telemetry"
)

// testContext is a minimal execution context for handler tests.
type testContext struct {
	cfg    *config.Config
	tracer *telemetry.Tracer
	logger *telemetry.Logger
	policy engine.PolicyInfo
}

func newTestContext(t *testing.T, provider string) *testContext {
	t.Helper()

	tracer, err := telemetry.NewTracer(telemetry.TracingConfig{Enabled: false}, "test", "dev", "test")
	if err != nil {
		t.Fatalf("failed to create tracer: %v", err)
	}
	return &testContext{
		cfg:    config.Default(),
		tracer: tracer,
		logger: telemetry.Nop(),
		policy: engine.PolicyInfo{Name: "test-policy", Provider: provider},
	}
}

func (c *testContext) SessionFactory() engine.SessionFactory { return nil }
func (c *testContext) Options() *config.Config               { return c.cfg }
func (c *testContext) Tracer() *telemetry.Tracer             { return c.tracer }
func (c *testContext) Logger() *telemetry.Logger             { return c.logger }
func (c *testContext) Policy() engine.PolicyInfo             { return c.policy }

func ec2Type() *engine.ResourceType {
	return &engine.ResourceType{
		Provider: "aws",
		Name:     "ec2",
		Model: engine.Model{
			Service:       "ec2",
			Type:          "instance",
			ID:            "InstanceId",
			ConfigType:    "AWS::EC2::Instance",
			NotFoundCodes: []string{"InvalidInstanceID.NotFound"},
		},
	}
}

// spyFilter keeps resources whose id is listed and counts invocations.
type spyFilter struct {
	name  string
	keep  map[string]bool
	calls int
	fail  error
}

func (f *spyFilter) Type() string { return f.name }

func (f *spyFilter) Process(_ context.Context, resources []engine.Resource, _ engine.Event) ([]engine.Resource, error) {
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	var out []engine.Resource
	for _, r := range resources {
		if id, ok := r["InstanceId"].(string); ok && f.keep[id] {
			out = append(out, r)
		}
	}
	return out, nil
}

func spy(name string, ids ...string) *spyFilter {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return &spyFilter{name: name, keep: m}
}

func filterRegistryFor(fs ...*spyFilter) *filters.Registry {
	r := filters.NewRegistry("filters")
	for _, f := range fs {
		f := f
		r.Register(f.name, func(def map[string]interface{}, owner filters.Owner) (filters.Filter, error) {
			return f, nil
		})
	}
	return r
}

func instances(ids ...string) []engine.Resource {
	out := make([]engine.Resource, 0, len(ids))
	for _, id := range ids {
		out = append(out, engine.Resource{"InstanceId": id})
	}
	return out
}

func TestConstructionBuildsPipelines(t *testing.T) {
	ctx := newTestContext(t, "aws")
	running := spy("running", "i-1")

	ar := actions.NewRegistry("actions")
	ar.Register("stop", func(def map[string]interface{}, _ actions.Owner) (actions.Action, error) {
		return stubAction{}, nil
	})

	m, err := New(ctx, ec2Type(), engine.Fragment{
		"filters": []interface{}{"running"},
		"actions": []interface{}{"stop"},
	}, WithFilterRegistry(filterRegistryFor(running)), WithActionRegistry(ar))
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	if len(m.Filters()) != 1 || m.Filters()[0].Type() != "running" {
		t.Errorf("unexpected filters: %v", m.Filters())
	}
	if len(m.Actions()) != 1 {
		t.Errorf("unexpected actions: %v", m.Actions())
	}
	if m.SourceType() != engine.SourceDescribe {
		t.Errorf("unexpected source type: %s", m.SourceType())
	}
}

type stubAction struct{}

func (stubAction) Type() string                                     { return "stop" }
func (stubAction) Process(context.Context, []engine.Resource) error { return nil }

func TestConstructionWithoutRegistriesSkipsPipelines(t *testing.T) {
	ctx := newTestContext(t, "aws")

	// A fragment with filter definitions but no registry: the resource
	// type does not support filtering, so nothing is parsed.
	m, err := New(ctx, ec2Type(), engine.Fragment{
		"filters": []interface{}{"running"},
	})
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}
	if m.Filters() != nil || m.Actions() != nil {
		t.Error("pipelines must be skipped without registries")
	}
}

func TestConstructionParseErrorPropagates(t *testing.T) {
	ctx := newTestContext(t, "aws")

	_, err := New(ctx, ec2Type(), engine.Fragment{
		"filters": []interface{}{"unregistered"},
	}, WithFilterRegistry(filters.NewRegistry("filters")))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSourceTypeFromFragment(t *testing.T) {
	ctx := newTestContext(t, "aws")

	m, err := New(ctx, ec2Type(), engine.Fragment{"source": engine.SourceConfig})
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}
	if m.SourceType() != engine.SourceConfig {
		t.Errorf("unexpected source type: %s", m.SourceType())
	}
}

func TestFilterResourcesIdentityWithEmptyChain(t *testing.T) {
	ctx := newTestContext(t, "aws")
	m, err := New(ctx, ec2Type(), engine.Fragment{})
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	in := instances("i-1", "i-2")
	out, err := m.FilterResources(context.Background(), in, nil)
	if err != nil {
		t.Fatalf("filtering failed: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("empty chain must return the set unchanged, got %d", len(out))
	}
}

func TestFilterResourcesNarrows(t *testing.T) {
	ctx := newTestContext(t, "aws")
	first := spy("first", "i-1", "i-2")
	second := spy("second", "i-2", "i-3")

	m, err := New(ctx, ec2Type(), engine.Fragment{
		"filters": []interface{}{"first", "second"},
	}, WithFilterRegistry(filterRegistryFor(first, second)))
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	in := instances("i-1", "i-2", "i-3")
	out, err := m.FilterResources(context.Background(), in, engine.Event{"debug": true})
	if err != nil {
		t.Fatalf("filtering failed: %v", err)
	}

	if len(out) != 1 || out[0]["InstanceId"] != "i-2" {
		t.Errorf("unexpected survivors: %v", out)
	}
	// Result is a subset of the input; input is untouched.
	if len(in) != 3 || in[0]["InstanceId"] != "i-1" {
		t.Error("input slice was mutated")
	}
}

func TestFilterResourcesShortCircuits(t *testing.T) {
	ctx := newTestContext(t, "aws")
	exhaust := spy("exhaust")
	after := spy("after", "i-1")

	m, err := New(ctx, ec2Type(), engine.Fragment{
		"filters": []interface{}{"exhaust", "after"},
	}, WithFilterRegistry(filterRegistryFor(exhaust, after)))
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	out, err := m.FilterResources(context.Background(), instances("i-1"), nil)
	if err != nil {
		t.Fatalf("filtering failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty result, got %v", out)
	}
	if after.calls != 0 {
		t.Error("filters after exhaustion must not be invoked")
	}
}

func TestFilterResourcesErrorPropagates(t *testing.T) {
	ctx := newTestContext(t, "aws")
	boom := errors.New("filter exploded")
	failing := &spyFilter{name: "failing", fail: boom}

	m, err := New(ctx, ec2Type(), engine.Fragment{
		"filters": []interface{}{"failing"},
	}, WithFilterRegistry(filterRegistryFor(failing)))
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	if _, err := m.FilterResources(context.Background(), instances("i-1"), nil); !errors.Is(err, boom) {
		t.Errorf("expected filter error unmodified, got %v", err)
	}
}

func TestIterFilters(t *testing.T) {
	ctx := newTestContext(t, "aws")
	a := spy("f1", "i-1")
	b := spy("f2", "i-1")

	m, err := New(ctx, ec2Type(), engine.Fragment{
		"filters": []interface{}{
			map[string]interface{}{"and": []interface{}{"f1", "f2"}},
		},
	}, WithFilterRegistry(filterRegistryFor(a, b)))
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	flat := m.IterFilters(true)
	types := make([]string, 0, len(flat))
	for _, f := range flat {
		types = append(types, f.Type())
	}
	want := []string{"and", "f2", "f1", "block-end"}
	for i := range want {
		if i >= len(types) || types[i] != want[i] {
			t.Fatalf("unexpected traversal: %v, want %v", types, want)
		}
	}
	if flat[3] != filters.BlockEnd {
		t.Error("expected the BlockEnd sentinel value")
	}
}

func TestDefaultAccessors(t *testing.T) {
	ctx := newTestContext(t, "aws")
	m, err := New(ctx, ec2Type(), engine.Fragment{})
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	ids := []string{"i-1", "not-an-id", ""}
	got := m.MatchIDs(ids)
	if len(got) != 3 || got[0] != "i-1" || got[1] != "not-an-id" {
		t.Errorf("MatchIDs default must be the identity, got %v", got)
	}

	rs, err := m.GetResources(context.Background(), ids)
	if err != nil || len(rs) != 0 {
		t.Errorf("GetResources default must return an empty set, got %v err=%v", rs, err)
	}

	if _, err := m.Resources(context.Background()); !errors.Is(err, engine.ErrNotImplemented) {
		t.Errorf("base Resources must fail with ErrNotImplemented, got %v", err)
	}

	if err := m.Validate(); err != nil {
		t.Errorf("Validate default must accept, got %v", err)
	}
	if m.Permissions() != nil {
		t.Errorf("Permissions default must be empty, got %v", m.Permissions())
	}

	if m.GetModel().ID != "InstanceId" {
		t.Errorf("unexpected model: %+v", m.GetModel())
	}
	if _, ok := m.Cache().(*cache.Nop); !ok {
		t.Errorf("default options must yield the nop cache, got %T", m.Cache())
	}
	if m.ExecutorFactory() == nil {
		t.Error("expected a default executor factory")
	}
	if m.Retry() != nil {
		t.Error("no retry strategy should be attached by default")
	}
}

var _ engine.Handler = (*Manager)(nil)
