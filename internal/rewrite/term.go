package rewrite

import (
	"strings"

	"github.com/confluo/confluo/internal/protocol"
)

// Term is a finite ordered sequence of atoms. A term may be empty as an
// intermediate result; rules forbid empty sides.
//
// Terms that participate in rules are owned by their rule. Callers that
// hand a term to the System and keep using it should pass a Clone.
type Term struct {
	atoms []Atom
}

// NewTerm builds a term from the given atoms.
func NewTerm(atoms ...Atom) Term {
	return Term{atoms: atoms}
}

// Len returns the number of atoms.
func (t Term) Len() int { return len(t.atoms) }

// At returns the atom at position i.
func (t Term) At(i int) Atom { return t.atoms[i] }

// Back returns the last atom. Panics on an empty term.
func (t Term) Back() Atom {
	if len(t.atoms) == 0 {
		panic("rewrite: Back() on empty term")
	}
	return t.atoms[len(t.atoms)-1]
}

// Clone returns a deep copy sharing no storage with the receiver.
func (t Term) Clone() Term {
	atoms := make([]Atom, len(t.atoms))
	copy(atoms, t.atoms)
	return Term{atoms: atoms}
}

// Equal reports structural equality of the two terms.
func (t Term) Equal(other Term) bool {
	return atomsEqual(t.atoms, other.atoms)
}

func atomsEqual(a, b []Atom) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Compare totally orders terms by shortlex: shorter terms are smaller,
// equal-length terms compare atom-wise left to right.
func (t Term) Compare(other Term, g protocol.Graph) int {
	if len(t.atoms) != len(other.atoms) {
		if len(t.atoms) < len(other.atoms) {
			return -1
		}
		return 1
	}

	for i := range t.atoms {
		if result := t.atoms[i].Compare(other.atoms[i], g); result != 0 {
			return result
		}
	}

	return 0
}

// FindSubterm returns the leftmost position where other occurs
// contiguously inside t, or false if other is longer than t or absent.
func (t Term) FindSubterm(other Term) (int, bool) {
	if len(other.atoms) > len(t.atoms) {
		return 0, false
	}
	for i := 0; i+len(other.atoms) <= len(t.atoms); i++ {
		if atomsEqual(t.atoms[i:i+len(other.atoms)], other.atoms) {
			return i, true
		}
	}
	return 0, false
}

// RewriteSubterm replaces the leftmost occurrence of lhs with rhs in
// place, shortening the term when rhs is shorter. Returns false when lhs
// does not occur. Precondition: len(rhs) <= len(lhs).
func (t *Term) RewriteSubterm(lhs, rhs Term) bool {
	if len(rhs.atoms) > len(lhs.atoms) {
		panic("rewrite: RewriteSubterm requires |rhs| <= |lhs|")
	}

	pos, ok := t.FindSubterm(lhs)
	if !ok {
		return false
	}

	oldLen := len(t.atoms)
	copy(t.atoms[pos:], rhs.atoms)
	if len(rhs.atoms) < len(lhs.atoms) {
		n := copy(t.atoms[pos+len(rhs.atoms):], t.atoms[pos+len(lhs.atoms):])
		t.atoms = t.atoms[:pos+len(rhs.atoms)+n]
	}

	if len(t.atoms) != oldLen-len(lhs.atoms)+len(rhs.atoms) {
		panic("rewrite: RewriteSubterm length invariant violated")
	}
	return true
}

// CheckForOverlap detects whether t and other share an overlap that
// would yield a critical pair. Two cases return true:
//
//  1. Containment: other occurs as a contiguous subterm of t.
//     result is set to t.
//  2. Suffix/prefix overlap: a non-empty proper suffix of t equals the
//     corresponding prefix of other. result is set to t followed by the
//     non-overlapping tail of other.
//
// The containment scan runs left to right first; then the suffix/prefix
// scan shrinks other from the right, so the longest overlap wins.
// result must be empty on entry.
func (t Term) CheckForOverlap(other Term, result *Term) bool {
	if len(result.atoms) != 0 {
		panic("rewrite: CheckForOverlap requires an empty result term")
	}

	n, m := len(t.atoms), len(other.atoms)

	for i := 0; i+m <= n; i++ {
		if atomsEqual(t.atoms[i:i+m], other.atoms) {
			*result = t.Clone()
			return true
		}
	}

	for i := max(1, n-m+1); i < n; i++ {
		if atomsEqual(t.atoms[i:], other.atoms[:n-i]) {
			atoms := make([]Atom, 0, i+m)
			atoms = append(atoms, t.atoms[:i]...)
			atoms = append(atoms, other.atoms...)
			result.atoms = atoms
			return true
		}
	}

	return false
}

// String renders the term with atoms joined by dots.
func (t Term) String() string {
	var sb strings.Builder
	t.appendTo(&sb)
	return sb.String()
}

func (t Term) appendTo(sb *strings.Builder) {
	for i, atom := range t.atoms {
		if i > 0 {
			sb.WriteByte('.')
		}
		atom.appendTo(sb)
	}
}
