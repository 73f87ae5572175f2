package engine

import (
	"context"

	"github.com/openpatrol/openpatrol/pkg/config"
	"github.com/openpatrol/openpatrol/pkg/telemetry"
)

// Session is an opaque authenticated provider SDK session. The engine
// never calls into it; it only hands it to handlers and their filters.
type Session interface{}

// SessionFactory mints provider sessions, optionally scoped to a region.
type SessionFactory func(ctx context.Context, region string) (Session, error)

// PolicyInfo identifies the policy a handler is evaluating on behalf of.
type PolicyInfo struct {
	// Name is the policy name.
	Name string

	// Provider is the cloud provider the policy targets.
	Provider string

	// SourceType is the data source of the policy's own resource type
	// (describe or config).
	SourceType string
}

// Context is the execution context a resource handler runs inside. It is
// owned by the surrounding policy machinery; handlers hold a non-owning
// reference and never mutate it.
type Context interface {
	// SessionFactory returns the provider session factory.
	SessionFactory() SessionFactory

	// Options returns the evaluation's runtime options.
	Options() *config.Config

	// Tracer returns the span instrumentation handle.
	Tracer() *telemetry.Tracer

	// Logger returns the base structured logger.
	Logger() *telemetry.Logger

	// Policy identifies the currently executing policy.
	Policy() PolicyInfo
}
