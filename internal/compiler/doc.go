// Package compiler turns CUE signature files into rewrite-engine inputs.
//
// A signature file declares protocols (with optional inheritance) and
// the initial rewrite rules, both in declaration order:
//
//	protocols: [
//		{name: "Sequence"},
//		{name: "Collection", inherits: ["Sequence"]},
//	]
//
//	rules: [
//		{lhs: "τ_0_0.[Collection]", rhs: "τ_0_0"},
//	]
//
// Declaration order matters: the protocol graph's total order is the
// order protocols appear in the file.
//
// Terms use the engine's dump syntax, atoms joined by dots:
//
//	name            bare identifier
//	[P]             protocol P
//	[P1&P2:N]       associated type N qualified by P1 and P2
//	τ_d_i           generic parameter at depth d, index i
//	[layout: C]     layout constraint C
//
// Identifiers must not contain '.', '[', ']', '&' or ':'.
package compiler
