package engine

import (
	"context"
	"encoding/json"
	"io"
)

// Resource is one cloud resource as returned by a provider: a loosely
// typed document keyed by the provider's field names.
type Resource map[string]interface{}

// Fragment is the raw policy fragment a resource handler is built from.
// It is immutable after handler construction.
type Fragment map[string]interface{}

// FilterDefs returns the filter definition list of the fragment, or an
// empty list when none is declared.
func (f Fragment) FilterDefs() []interface{} {
	return f.defs("filters")
}

// ActionDefs returns the action definition list of the fragment, or an
// empty list when none is declared.
func (f Fragment) ActionDefs() []interface{} {
	return f.defs("actions")
}

func (f Fragment) defs(key string) []interface{} {
	if f == nil {
		return nil
	}
	v, ok := f[key].([]interface{})
	if !ok {
		return nil
	}
	return v
}

// Source returns the fragment's source override, if any.
func (f Fragment) Source() string {
	if f == nil {
		return ""
	}
	s, _ := f["source"].(string)
	return s
}

// Event carries the trigger payload of an evaluation. Filters receive it
// untouched; the pipeline itself only inspects the debug flag.
type Event map[string]interface{}

// Debug reports whether the event requests per-filter diagnostics.
func (e Event) Debug() bool {
	if e == nil {
		return false
	}
	d, _ := e["debug"].(bool)
	return d
}

// Source types for resource retrieval.
const (
	// SourceDescribe retrieves resources with live provider describe calls.
	SourceDescribe = "describe"

	// SourceConfig retrieves resources from the provider's configuration
	// inventory service instead of live calls.
	SourceConfig = "config"
)

// Model is the meta-model of a resource type: the provider-level metadata
// the generic machinery needs without understanding the type itself.
type Model struct {
	// Service is the provider service the type belongs to (e.g. "ec2").
	Service string

	// Type is the resource type name within its provider.
	Type string

	// ID is the resource field holding the unique identifier.
	ID string

	// Name is the resource field holding the display name.
	Name string

	// Date is the resource field holding the creation timestamp.
	Date string

	// ConfigType is the type name in the provider's configuration
	// inventory, empty when the type has no config source.
	ConfigType string

	// NotFoundCodes are the provider error codes that mean "the targeted
	// object does not exist" for this type.
	NotFoundCodes []string

	// GlobalResource marks types that are not region-scoped.
	GlobalResource bool
}

// Handler is a constructed resource handler: one per (provider, type,
// fragment) triple. Concrete handlers embed resource.Manager, which
// provides the defaults for everything except Resources.
type Handler interface {
	// Resources retrieves the full candidate resource set.
	Resources(ctx context.Context) ([]Resource, error)

	// GetResources retrieves resources by id.
	GetResources(ctx context.Context, ids []string) ([]Resource, error)

	// MatchIDs narrows ids to those matching the type's id syntax.
	MatchIDs(ids []string) []string

	// FilterResources runs resources through the handler's filter pipeline.
	FilterResources(ctx context.Context, resources []Resource, event Event) ([]Resource, error)

	// GetModel returns the resource type's meta-model.
	GetModel() Model

	// SourceType reports how this handler obtains resources.
	SourceType() string

	// Definition returns the fragment the handler was built from.
	Definition() Fragment

	// Permissions lists the provider permissions the handler requires.
	Permissions() []string

	// Validate checks the handler's definition beyond filters/actions.
	Validate() error
}

// HandlerFactory constructs a handler for one resource type.
type HandlerFactory func(ctx Context, data Fragment) (Handler, error)

// ResourceType is a provider plugin registry entry: the meta-model plus
// the constructor for a resource type.
type ResourceType struct {
	// Provider is the cloud provider name (e.g. "aws").
	Provider string

	// Name is the resource type name within the provider (e.g. "ec2").
	Name string

	// Model is the type's meta-model.
	Model Model

	// New constructs a handler for this type.
	New HandlerFactory
}

// WriteJSON writes a resource set as indented JSON.
func WriteJSON(w io.Writer, resources []Resource) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resources)
}
