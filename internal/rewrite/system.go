package rewrite

import (
	"fmt"
	"io"
	"slices"

	"github.com/confluo/confluo/internal/protocol"
)

// TermPair is an unoriented input rule.
type TermPair struct {
	First  Term
	Second Term
}

// rulePair is a worklist entry: indices of two rules to check for
// overlap, in order.
type rulePair struct {
	i, j int
}

// System owns a set of rewrite rules over a read-only protocol graph and
// drives simplification and Knuth-Bendix completion.
//
// All operations are single-threaded. Rule indices are stable for the
// lifetime of the System, except across the cosmetic sort at the end of
// a successful Complete.
type System struct {
	rules    []Rule
	worklist []rulePair // FIFO of index pairs to check for overlap
	merged   []TermPair // FIFO of associated-type merge candidates
	protos   protocol.Graph

	// Debug switches route diagnostic text to DebugWriter. The output
	// has no semantic role.
	DebugAdd      bool
	DebugSimplify bool
	DebugMerge    bool
	DebugWriter   io.Writer
}

// New creates an empty System over the given protocol graph. The graph
// must not mutate while the System is in use.
func New(g protocol.Graph) *System {
	return &System{
		protos:      g,
		DebugWriter: io.Discard,
	}
}

// Initialize adds the given input rules. Inputs are first sorted by
// their first term ascending; the pre-sort is not required for
// correctness but keeps the build deterministic for equal inputs
// supplied in different orders.
func (s *System) Initialize(pairs []TermPair) {
	sorted := make([]TermPair, len(pairs))
	copy(sorted, pairs)
	slices.SortStableFunc(sorted, func(a, b TermPair) int {
		return a.First.Compare(b.First, s.protos)
	})
	for _, pair := range sorted {
		s.AddRule(pair.First, pair.Second)
	}
}

// AddRule simplifies both sides, orients them so the greater side is the
// LHS, and appends the resulting rule. Returns false when the two sides
// simplify to the same term; such rules are silently absorbed.
//
// Every appended rule enqueues overlap checks against every existing
// rule in both orders, and is inspected as an associated-type merge
// candidate.
func (s *System) AddRule(lhs, rhs Term) bool {
	return s.addRule(lhs, rhs, 0)
}

func (s *System) addRule(lhs, rhs Term, depth uint32) bool {
	lhs = lhs.Clone()
	rhs = rhs.Clone()

	s.Simplify(&lhs)
	s.Simplify(&rhs)

	result := lhs.Compare(rhs, s.protos)
	if result == 0 {
		return false
	}
	if result < 0 {
		lhs, rhs = rhs, lhs
	}

	if lhs.Compare(rhs, s.protos) <= 0 {
		panic("rewrite: rule orientation violated")
	}

	if s.DebugAdd {
		fmt.Fprintf(s.DebugWriter, "# Adding rule %s => %s\n", lhs, rhs)
	}

	i := len(s.rules)
	s.rules = append(s.rules, newRule(lhs, rhs, depth))

	// A rule of the shape X.[P1:T] => X.[P2:T] means the two associated
	// types must merge into one; record it for processMergedAssociatedTypes.
	if lhs.Len() == rhs.Len() &&
		atomsEqual(lhs.atoms[:lhs.Len()-1], rhs.atoms[:rhs.Len()-1]) &&
		lhs.Back().Kind() == KindAssociatedType &&
		rhs.Back().Kind() == KindAssociatedType &&
		lhs.Back().Name() == rhs.Back().Name() {
		s.merged = append(s.merged, TermPair{First: lhs.Clone(), Second: rhs.Clone()})
	}

	for j := range s.rules {
		if i == j {
			continue
		}
		s.worklist = append(s.worklist, rulePair{i, j})
		s.worklist = append(s.worklist, rulePair{j, i})
	}

	return true
}

// Simplify reduces term to a normal form against the current rule set:
// full passes over the rule vector in order, applying each live rule
// once per pass, until a pass applies no rule. Returns whether any
// change occurred.
//
// Termination follows from orientation: every application strictly
// decreases the term under the shortlex order.
func (s *System) Simplify(term *Term) bool {
	changed := false

	if s.DebugSimplify {
		fmt.Fprintf(s.DebugWriter, "= Term %s\n", term)
	}

	for {
		tryAgain := false
		for idx := range s.rules {
			rule := &s.rules[idx]
			if rule.Deleted() {
				continue
			}

			if s.DebugSimplify {
				fmt.Fprintf(s.DebugWriter, "== Rule %s\n", rule)
			}

			if rule.Apply(term) {
				if s.DebugSimplify {
					fmt.Fprintf(s.DebugWriter, "=== Result %s\n", term)
				}

				changed = true
				tryAgain = true
			}
		}

		if !tryAgain {
			break
		}
	}

	return changed
}

// Rules returns a snapshot of the rule vector. Mutating the snapshot
// does not affect the System.
func (s *System) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Dump writes the whole rule set, one rule per line, deleted rules
// marked. Output is deterministic for a given rule vector.
func (s *System) Dump(w io.Writer) error {
	if _, err := io.WriteString(w, "Rewrite system: {\n"); err != nil {
		return err
	}
	for idx := range s.rules {
		if _, err := fmt.Fprintf(w, "- %s\n", &s.rules[idx]); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "}\n"); err != nil {
		return err
	}
	return nil
}
