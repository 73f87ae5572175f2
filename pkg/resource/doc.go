// Package resource implements the resource handler at the center of the
// engine: one Manager per (provider, resource type, policy fragment)
// triple. The Manager builds its filter and action pipelines from the
// fragment at construction, drives resource sets through the filter
// pipeline, resolves related resource types across providers, and guards
// provider API calls with not-found suppression.
//
// Concrete resource types embed Manager and override Resources (and
// whatever defaults they need); the Manager supplies everything else.
package resource
