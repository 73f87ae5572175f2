package resource

import (
	"context"

	"github.com/openpatrol/openpatrol/pkg/engine"
	"github.com/openpatrol/openpatrol/pkg/telemetry"
)

// APIFunc is a provider SDK invocation wrapped by CallAPI.
type APIFunc func(ctx context.Context) (interface{}, error)

type callOptions struct {
	suppressNotFound bool
	notFoundCodes    []string
}

// CallOption adjusts the error handling of one guarded call.
type CallOption func(*callOptions)

// WithoutNotFoundSuppression makes every provider error propagate,
// including not-found.
func WithoutNotFoundSuppression() CallOption {
	return func(o *callOptions) { o.suppressNotFound = false }
}

// WithNotFoundCodes overrides the resource type's registered not-found
// codes for one call.
func WithNotFoundCodes(codes ...string) CallOption {
	return func(o *callOptions) { o.notFoundCodes = codes }
}

// CallAPI invokes a provider SDK call with standard error handling: a
// provider error whose code is one of the not-found codes is swallowed
// and an absent result returned, signaling that the targeted object does
// not exist. Callers treat that as a normal outcome, not a failure.
//
// Every other error, provider or otherwise, propagates unmodified.
// CallAPI never retries; a caller wanting retry applies the handler's
// retry strategy around it.
func (m *Manager) CallAPI(ctx context.Context, operation string, fn APIFunc, opts ...CallOption) (interface{}, error) {
	o := callOptions{
		suppressNotFound: true,
		notFoundCodes:    m.rt.Model.NotFoundCodes,
	}
	for _, opt := range opts {
		opt(&o)
	}

	m.metrics.RecordProviderCall(m.rt.Provider)
	cctx, span := m.ctx.Tracer().StartProviderSpan(ctx, m.rt.Provider, operation)
	defer span.End()

	result, err := fn(cctx)
	if err == nil {
		return result, nil
	}

	code, ok := engine.ErrorCode(err)
	if ok && o.suppressNotFound && contains(o.notFoundCodes, code) {
		m.metrics.RecordNotFoundSuppressed(m.rt.Provider, code)
		m.log.Debugf("suppressed not-found %s on %s", code, operation)
		return nil, nil
	}

	if ok {
		m.metrics.RecordProviderError(m.rt.Provider, code)
	}
	telemetry.RecordError(span, err)
	return nil, err
}

func contains(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
