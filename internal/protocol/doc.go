// Package protocol defines the read-only protocol graph consumed by the
// rewrite engine.
//
// The graph supplies exactly two facts about protocols:
//
//  1. A total order, deterministic per graph instance (CompareProtocols).
//  2. A strict inheritance relation (InheritsFrom). The relation is
//     reflexive-closure-free: a protocol never inherits from itself.
//     Callers that need reflexivity add it explicitly.
//
// The engine never mutates the graph. Table is the concrete in-memory
// implementation used by the compiler, CLI, harness, and tests: protocols
// compare by declaration order, and inheritance is the transitive closure
// of the declared direct edges.
//
// INVARIANTS:
//   - Declaration order NEVER changes after a protocol is declared, so
//     CompareProtocols is stable for the lifetime of the Table.
//   - A Table must not be mutated while a rewrite-system operation built
//     on it is in progress.
package protocol
