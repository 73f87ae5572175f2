// Package engine defines the shared types and contracts of the OpenPatrol
// resource-management core: the resource and policy-fragment shapes, the
// resource meta-model, the execution context contract handed to resource
// handlers, and the engine's error taxonomy.
//
// The package is a leaf; everything else in the engine depends on it. It
// deliberately contains no behavior beyond type helpers so that provider
// plugins, filters and actions can share vocabulary without dragging in
// machinery.
package engine
