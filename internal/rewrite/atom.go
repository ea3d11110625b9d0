package rewrite

import (
	"fmt"
	"hash/fnv"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/confluo/confluo/internal/protocol"
)

// Kind discriminates the five atom variants.
type Kind int

const (
	// KindName is an opaque interned identifier.
	KindName Kind = iota + 1
	// KindProtocol is a handle into the protocol graph.
	KindProtocol
	// KindAssociatedType is a name qualified by one or more protocols.
	KindAssociatedType
	// KindGenericParam is a positional binder (depth, index).
	KindGenericParam
	// KindLayout is an opaque layout constraint with its own total order.
	KindLayout
)

// The kind order above (Name < Protocol < AssociatedType < GenericParam
// < Layout) is arbitrary but load-bearing: it is the first key of the
// atom order and must never change between runs.

// LayoutConstraint is an opaque layout class. The string comparison is
// its total order.
type LayoutConstraint string

// Compare orders layout constraints.
func (l LayoutConstraint) Compare(other LayoutConstraint) int {
	return strings.Compare(string(l), string(other))
}

// Atom is an alphabet element of the rewrite system. Atoms are immutable
// once constructed; equality and hashing are structural.
type Atom struct {
	kind   Kind
	name   string         // Name, AssociatedType
	proto  protocol.Ref   // Protocol
	protos []protocol.Ref // AssociatedType: sorted by graph order, deduplicated
	depth  uint16         // GenericParam
	index  uint16         // GenericParam
	layout LayoutConstraint
}

// NewNameAtom creates a Name atom. The identifier is NFC-normalized so
// structurally equal names compare equal regardless of source encoding.
func NewNameAtom(name string) Atom {
	if name == "" {
		panic("rewrite: name atom requires a non-empty identifier")
	}
	return Atom{kind: KindName, name: norm.NFC.String(name)}
}

// NewProtocolAtom creates a Protocol atom.
func NewProtocolAtom(p protocol.Ref) Atom {
	if p == "" {
		panic("rewrite: protocol atom requires a non-empty ref")
	}
	return Atom{kind: KindProtocol, proto: p}
}

// NewAssociatedTypeAtom creates an AssociatedType atom. The protocol
// list must be non-empty; it is sorted by the graph's protocol order and
// deduplicated. The input slice is not retained.
func NewAssociatedTypeAtom(protos []protocol.Ref, name string, g protocol.Graph) Atom {
	if len(protos) == 0 {
		panic("rewrite: associated type atom requires at least one protocol")
	}
	if name == "" {
		panic("rewrite: associated type atom requires a non-empty name")
	}
	sorted := make([]protocol.Ref, len(protos))
	copy(sorted, protos)
	slices.SortStableFunc(sorted, func(p, q protocol.Ref) int {
		return g.CompareProtocols(p, q)
	})
	sorted = slices.Compact(sorted)
	return Atom{kind: KindAssociatedType, name: norm.NFC.String(name), protos: sorted}
}

// NewGenericParamAtom creates a GenericParam atom.
func NewGenericParamAtom(depth, index uint16) Atom {
	return Atom{kind: KindGenericParam, depth: depth, index: index}
}

// NewLayoutAtom creates a Layout atom.
func NewLayoutAtom(l LayoutConstraint) Atom {
	if l == "" {
		panic("rewrite: layout atom requires a non-empty constraint")
	}
	return Atom{kind: KindLayout, layout: l}
}

// Kind returns the variant tag.
func (a Atom) Kind() Kind { return a.kind }

// Name returns the identifier of a Name or AssociatedType atom.
func (a Atom) Name() string {
	if a.kind != KindName && a.kind != KindAssociatedType {
		panic("rewrite: Name() on atom without a name payload")
	}
	return a.name
}

// Protocol returns the ref of a Protocol atom.
func (a Atom) Protocol() protocol.Ref {
	if a.kind != KindProtocol {
		panic("rewrite: Protocol() on non-protocol atom")
	}
	return a.proto
}

// Protocols returns the protocol list of an AssociatedType atom.
// The returned slice must not be mutated.
func (a Atom) Protocols() []protocol.Ref {
	if a.kind != KindAssociatedType {
		panic("rewrite: Protocols() on non-associated-type atom")
	}
	return a.protos
}

// GenericParam returns the (depth, index) of a GenericParam atom.
func (a Atom) GenericParam() (depth, index uint16) {
	if a.kind != KindGenericParam {
		panic("rewrite: GenericParam() on non-generic-param atom")
	}
	return a.depth, a.index
}

// Layout returns the constraint of a Layout atom.
func (a Atom) Layout() LayoutConstraint {
	if a.kind != KindLayout {
		panic("rewrite: Layout() on non-layout atom")
	}
	return a.layout
}

// Equal reports structural equality.
func (a Atom) Equal(b Atom) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindName:
		return a.name == b.name
	case KindProtocol:
		return a.proto == b.proto
	case KindAssociatedType:
		return a.name == b.name && slices.Equal(a.protos, b.protos)
	case KindGenericParam:
		return a.depth == b.depth && a.index == b.index
	case KindLayout:
		return a.layout == b.layout
	}
	panic("rewrite: bad atom kind")
}

// Hash returns a structural hash over the variant tag and payload.
// Equal atoms hash equal.
func (a Atom) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|", a.kind)
	switch a.kind {
	case KindName:
		h.Write([]byte(a.name))
	case KindProtocol:
		h.Write([]byte(a.proto))
	case KindAssociatedType:
		for _, p := range a.protos {
			h.Write([]byte(p))
			h.Write([]byte{'&'})
		}
		h.Write([]byte{':'})
		h.Write([]byte(a.name))
	case KindGenericParam:
		fmt.Fprintf(h, "%d_%d", a.depth, a.index)
	case KindLayout:
		h.Write([]byte(a.layout))
	default:
		panic("rewrite: bad atom kind")
	}
	return h.Sum64()
}

// Compare totally orders atoms: first by kind, then by payload.
//
// AssociatedType payloads compare with the "more protocols are smaller"
// convention, then elementwise by protocol order, then by name.
func (a Atom) Compare(b Atom, g protocol.Graph) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}

	switch a.kind {
	case KindName:
		return strings.Compare(a.name, b.name)

	case KindProtocol:
		return g.CompareProtocols(a.proto, b.proto)

	case KindAssociatedType:
		// Atoms with more protocols are 'smaller' than those with fewer.
		if len(a.protos) != len(b.protos) {
			if len(a.protos) > len(b.protos) {
				return -1
			}
			return 1
		}
		for i := range a.protos {
			if result := g.CompareProtocols(a.protos[i], b.protos[i]); result != 0 {
				return result
			}
		}
		return strings.Compare(a.name, b.name)

	case KindGenericParam:
		if a.depth != b.depth {
			if a.depth < b.depth {
				return -1
			}
			return 1
		}
		if a.index != b.index {
			if a.index < b.index {
				return -1
			}
			return 1
		}
		return 0

	case KindLayout:
		return a.layout.Compare(b.layout)
	}

	panic("rewrite: bad atom kind")
}

// String renders the atom for dumps and diagnostics. The output has no
// semantic role.
func (a Atom) String() string {
	var sb strings.Builder
	a.appendTo(&sb)
	return sb.String()
}

func (a Atom) appendTo(sb *strings.Builder) {
	switch a.kind {
	case KindName:
		sb.WriteString(a.name)

	case KindProtocol:
		sb.WriteByte('[')
		sb.WriteString(string(a.proto))
		sb.WriteByte(']')

	case KindAssociatedType:
		sb.WriteByte('[')
		for i, p := range a.protos {
			if i > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(string(p))
		}
		sb.WriteByte(':')
		sb.WriteString(a.name)
		sb.WriteByte(']')

	case KindGenericParam:
		fmt.Fprintf(sb, "τ_%d_%d", a.depth, a.index)

	case KindLayout:
		sb.WriteString("[layout: ")
		sb.WriteString(string(a.layout))
		sb.WriteByte(']')

	default:
		panic("rewrite: bad atom kind")
	}
}
