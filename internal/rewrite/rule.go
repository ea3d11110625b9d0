package rewrite

import "strings"

// Rule is an oriented rewrite rule LHS => RHS with LHS strictly greater
// than RHS under the term order.
//
// Rules are appended to a System and never removed; retirement sets the
// deleted tombstone, which is monotonic. Depth records how many levels
// of critical-pair derivation produced the rule: 0 for initial and
// merge-synthesised rules, 1 + max(parent depths) for completion rules.
type Rule struct {
	lhs     Term
	rhs     Term
	deleted bool
	depth   uint32
}

func newRule(lhs, rhs Term, depth uint32) Rule {
	if lhs.Len() == 0 || rhs.Len() == 0 {
		panic("rewrite: rule sides must be non-empty")
	}
	return Rule{lhs: lhs, rhs: rhs, depth: depth}
}

// LHS returns the left-hand side.
func (r *Rule) LHS() Term { return r.lhs }

// RHS returns the right-hand side.
func (r *Rule) RHS() Term { return r.rhs }

// Deleted reports whether the rule has been retired.
func (r *Rule) Deleted() bool { return r.deleted }

// Depth returns the derivation depth.
func (r *Rule) Depth() uint32 { return r.depth }

// markDeleted sets the tombstone. The transition is one-way.
func (r *Rule) markDeleted() { r.deleted = true }

// Apply rewrites the leftmost occurrence of the rule's LHS inside term
// to its RHS. Returns false when the LHS does not occur.
//
// Callers must not apply deleted rules; Apply does not check the
// tombstone.
func (r *Rule) Apply(term *Term) bool {
	return term.RewriteSubterm(r.lhs, r.rhs)
}

// CanReduceLeftHandSide reports whether other's LHS occurs as a subterm
// of r's LHS, with other being a different rule. Used to retire rules
// subsumed by a newer, stronger rule.
func (r *Rule) CanReduceLeftHandSide(other *Rule) bool {
	if r == other {
		return false
	}
	_, ok := r.lhs.FindSubterm(other.lhs)
	return ok
}

// String renders "LHS => RHS", with a trailing marker for deleted rules.
func (r *Rule) String() string {
	var sb strings.Builder
	r.appendTo(&sb)
	return sb.String()
}

func (r *Rule) appendTo(sb *strings.Builder) {
	r.lhs.appendTo(sb)
	sb.WriteString(" => ")
	r.rhs.appendTo(sb)
	if r.deleted {
		sb.WriteString(" [deleted]")
	}
}
