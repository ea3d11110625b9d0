package rewrite

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/confluo/confluo/internal/protocol"
)

// testGraph declares the given protocols in order; later names compare
// greater than earlier ones.
func testGraph(t *testing.T, names ...protocol.Ref) *protocol.Table {
	t.Helper()
	tbl := protocol.NewTable()
	for _, n := range names {
		require.NoError(t, tbl.Declare(n))
	}
	return tbl
}

func atomName(s string) Atom { return NewNameAtom(s) }

func atomProto(p protocol.Ref) Atom { return NewProtocolAtom(p) }

func assocType(g protocol.Graph, name string, protos ...protocol.Ref) Atom {
	return NewAssociatedTypeAtom(protos, name, g)
}

func param(depth, index uint16) Atom { return NewGenericParamAtom(depth, index) }

func term(atoms ...Atom) Term { return NewTerm(atoms...) }

// nameTerm builds a term of Name atoms from single-letter identifiers.
func nameTerm(names ...string) Term {
	atoms := make([]Atom, len(names))
	for i, n := range names {
		atoms[i] = NewNameAtom(n)
	}
	return NewTerm(atoms...)
}
