// Package rewrite implements a confluent term-rewriting engine for
// generic-signature reasoning.
//
// Terms are finite sequences of atoms (names, protocols, associated
// types, generic parameters, layout constraints). Rules are oriented
// pairs LHS => RHS with LHS strictly greater under the shortlex term
// order. The System owns the rule vector and drives Knuth-Bendix
// completion: overlapping left-hand sides produce critical pairs, each
// critical pair produces a new rule, and rules subsumed by stronger ones
// are retired with a tombstone.
//
// ARCHITECTURE:
//
// Single-Threaded Completion Loop:
// All mutation happens in the caller's goroutine. Completion is a
// synchronous CPU-bound drain of a FIFO worklist of rule-index pairs.
// There is no asynchronous cancellation; the iteration and depth budgets
// are the only stops, surfaced as explicit CompletionResult values.
//
// CRITICAL PATTERNS:
//
// Stable Rule Indices:
// Rules are append-only. Retirement is logical (a tombstone flag),
// never removal, because the worklist holds indices into the rule
// vector. The single exception is the cosmetic sort at the end of a
// successful Complete, which runs only once the worklist is empty and
// invalidates all previously observed indices.
//
// Deterministic Ordering:
// Initialize sorts input rules by LHS before adding them; the worklist
// is strictly FIFO; protocol comparison is delegated to a graph whose
// order is fixed per instance. Equal inputs produce byte-identical dumps.
//
// The protocol graph is consumed read-only and must not mutate while any
// operation on a System built over it is in progress.
package rewrite
