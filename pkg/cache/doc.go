// Package cache provides the resource cache capability behind the
// engine's factory contract. Handlers obtain a cache handle at
// construction via Factory and consult it during a single evaluation
// pass; the engine core itself never writes to it.
//
// Three implementations back the factory: a no-op cache when caching is
// disabled, an in-process cache for ":memory:" paths, and a persistent
// SQLite cache with schema migrations for file paths. Cached resource
// sets expire after the configured period.
package cache
