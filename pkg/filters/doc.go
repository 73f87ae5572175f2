// Package filters defines the filter pipeline machinery of the engine:
// the Filter contract, the boolean combinators (and, or, not), the filter
// registry that parses pipeline definitions from policy fragments, and
// the queue-based linearization of nested filter trees.
//
// Concrete filters live with their provider packages; this package only
// knows that a filter narrows a resource set and never expands it.
package filters
