package rewrite

import (
	"fmt"

	"github.com/confluo/confluo/internal/protocol"
)

// mergeAssociatedTypes unifies two AssociatedType atoms with the same
// name into one whose protocol list is the smallest set covering the
// union under inheritance: a protocol is kept iff no other protocol in
// the union inherits from it.
//
// Preconditions: both atoms are AssociatedType, share a name, and
// lhs > rhs under the atom order (hence lhs carries no more protocols
// than rhs).
func (s *System) mergeAssociatedTypes(lhs, rhs Atom) Atom {
	if lhs.Kind() != KindAssociatedType || rhs.Kind() != KindAssociatedType {
		panic("rewrite: mergeAssociatedTypes requires associated type atoms")
	}
	if lhs.Name() != rhs.Name() {
		panic("rewrite: mergeAssociatedTypes requires matching names")
	}
	if lhs.Compare(rhs, s.protos) <= 0 {
		panic("rewrite: mergeAssociatedTypes requires lhs > rhs")
	}

	protos := lhs.Protocols()
	otherProtos := rhs.Protocols()

	// Stable merge of the two sorted lists; duplicates are dropped later
	// by the atom constructor.
	merged := make([]protocol.Ref, 0, len(protos)+len(otherProtos))
	i, j := 0, 0
	for i < len(protos) && j < len(otherProtos) {
		if s.protos.CompareProtocols(otherProtos[j], protos[i]) < 0 {
			merged = append(merged, otherProtos[j])
			j++
		} else {
			merged = append(merged, protos[i])
			i++
		}
	}
	merged = append(merged, protos[i:]...)
	merged = append(merged, otherProtos[j:]...)

	// Keep a protocol iff no other protocol in the union inherits from
	// it; the survivors' upward closure equals the union's.
	minimal := make([]protocol.Ref, 0, len(merged))
	for _, candidate := range merged {
		redundant := false
		for _, other := range merged {
			if other != candidate && s.protos.InheritsFrom(other, candidate) {
				redundant = true
				break
			}
		}
		if !redundant {
			minimal = append(minimal, candidate)
		}
	}

	return NewAssociatedTypeAtom(minimal, lhs.Name(), s.protos)
}

// processMergedAssociatedTypes drains the merge-candidate queue in FIFO
// order, including candidates enqueued while processing.
//
// For a candidate ...[P1:T] => ...[P2:T] it adds the pair of rules
//
//	...[P1:T] => ...[P1&P2:T]
//	...[P2:T] => ...[P1&P2:T]
//
// and lifts conformance rules: any rule [X].[Q] => [X] whose X is one of
// the two merged atoms yields a new rule [P1&P2:T].[Q] => [P1&P2:T].
func (s *System) processMergedAssociatedTypes() {
	if len(s.merged) == 0 {
		return
	}

	i := 0
	for i < len(s.merged) {
		pair := s.merged[i]
		i++
		lhs := pair.First
		rhs := pair.Second

		if s.DebugMerge {
			fmt.Fprintf(s.DebugWriter, "## Associated type merge candidate %s => %s\n", lhs, rhs)
		}

		mergedAtom := s.mergeAssociatedTypes(lhs.Back(), rhs.Back())
		if s.DebugMerge {
			fmt.Fprintf(s.DebugWriter, "### Merged atom %s\n", mergedAtom)
		}

		mergedTerm := lhs.Clone()
		mergedTerm.atoms[mergedTerm.Len()-1] = mergedAtom

		s.addRule(lhs, mergedTerm, 0)
		s.addRule(rhs, mergedTerm, 0)

		// Lift conformance rules over a snapshot of the rule vector;
		// rules appended by the lifting itself are not re-inspected here
		// (their overlaps go through the worklist as usual).
		limit := len(s.rules)
		for j := 0; j < limit; j++ {
			otherLHS := s.rules[j].LHS()
			if otherLHS.Len() != 2 || otherLHS.At(1).Kind() != KindProtocol {
				continue
			}
			if !otherLHS.At(0).Equal(lhs.Back()) && !otherLHS.At(0).Equal(rhs.Back()) {
				continue
			}

			if s.DebugMerge {
				rule := s.rules[j]
				fmt.Fprintf(s.DebugWriter, "### Lifting conformance rule %s\n", &rule)
			}

			otherRHS := s.rules[j].RHS()
			if otherRHS.Len() != 1 || !otherRHS.At(0).Equal(otherLHS.At(0)) {
				panic("rewrite: conformance rule must have the shape X.[Q] => X")
			}

			newRHS := NewTerm(mergedAtom)
			newLHS := NewTerm(mergedAtom, otherLHS.At(1))

			s.addRule(newLHS, newRHS, 0)
		}
	}

	s.merged = s.merged[:0]
}
