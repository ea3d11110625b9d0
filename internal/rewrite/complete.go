package rewrite

import "slices"

// CompletionResult reports how a Complete call ended.
type CompletionResult int

const (
	// Success: the worklist drained; the system is confluent.
	Success CompletionResult = iota
	// MaxIterations: the iteration budget ran out. The rule set is valid
	// but possibly non-confluent.
	MaxIterations
	// MaxDepth: a derived rule exceeded the depth budget. The rule set
	// is valid but possibly non-confluent.
	MaxDepth
)

// String renders the result for diagnostics and CLI output.
func (r CompletionResult) String() string {
	switch r {
	case Success:
		return "success"
	case MaxIterations:
		return "max_iterations"
	case MaxDepth:
		return "max_depth"
	}
	return "unknown"
}

// Complete runs Knuth-Bendix completion: it drains the worklist of rule
// pairs, turns every overlap into a critical pair, adds the oriented
// rule joining the pair, retires rules subsumed by the new one, and
// processes associated-type merge candidates after each addition.
//
// Completion may add maxIterations rules; the next rule it adds stops
// it with MaxIterations, and that rule is kept. The first added rule
// whose derivation depth exceeds maxDepth stops it with MaxDepth. Either
// stop leaves the rule set valid but possibly non-confluent.
//
// On success two finalisation passes run: every live rule's RHS is
// simplified against the final rule set, and the rule vector is sorted
// by LHS for dump stability. The sort invalidates any rule indices
// observed before the call; callers must not retain indices across a
// successful Complete.
func (s *System) Complete(maxIterations, maxDepth uint32) CompletionResult {
	for len(s.worklist) > 0 {
		pair := s.worklist[0]
		s.worklist = s.worklist[1:]

		lhs := &s.rules[pair.i]
		rhs := &s.rules[pair.j]

		if lhs.Deleted() || rhs.Deleted() {
			continue
		}

		var first Term
		if !lhs.LHS().CheckForOverlap(rhs.LHS(), &first) {
			continue
		}

		if first.Len() == 0 {
			panic("rewrite: overlap produced an empty term")
		}

		second := first.Clone()

		// Both applications succeed by construction of the overlap; the
		// two results form the critical pair.
		lhs.Apply(&first)
		rhs.Apply(&second)

		depth := 1 + max(lhs.Depth(), rhs.Depth())

		k := len(s.rules)
		if !s.addRule(first, second, depth) {
			continue
		}

		if maxIterations == 0 {
			return MaxIterations
		}
		maxIterations--

		newRule := &s.rules[k]
		if newRule.Depth() > maxDepth {
			return MaxDepth
		}

		for j := range s.rules {
			if j == k {
				continue
			}
			rule := &s.rules[j]
			if rule.Deleted() {
				continue
			}
			if rule.CanReduceLeftHandSide(newRule) {
				rule.markDeleted()
			}
		}

		s.processMergedAssociatedTypes()
	}

	// Not needed for correctness: canonicalising right-hand sides just
	// lets Simplify reach normal forms in fewer passes.
	for idx := range s.rules {
		rule := &s.rules[idx]
		if rule.Deleted() {
			continue
		}
		rhs := rule.RHS().Clone()
		s.Simplify(&rhs)
		rule.rhs = rhs
	}

	// Aesthetics for Dump only. Safe because the worklist is empty, so
	// no rule indices remain in flight.
	slices.SortStableFunc(s.rules, func(a, b Rule) int {
		return a.LHS().Compare(b.LHS(), s.protos)
	})

	return Success
}
