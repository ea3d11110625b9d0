package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/confluo/confluo/internal/protocol"
	"github.com/confluo/confluo/internal/rewrite"
)

// ParseTerm parses the dot-joined term syntax used by dumps and
// signature files. Protocol references are validated against the table.
func ParseTerm(src string, table *protocol.Table) (rewrite.Term, error) {
	if strings.TrimSpace(src) == "" {
		return rewrite.Term{}, fmt.Errorf("term must be non-empty")
	}

	var atoms []rewrite.Atom
	for _, tok := range strings.Split(src, ".") {
		atom, err := parseAtom(strings.TrimSpace(tok), table)
		if err != nil {
			return rewrite.Term{}, fmt.Errorf("term %q: %w", src, err)
		}
		atoms = append(atoms, atom)
	}
	return rewrite.NewTerm(atoms...), nil
}

func parseAtom(tok string, table *protocol.Table) (rewrite.Atom, error) {
	switch {
	case tok == "":
		return rewrite.Atom{}, fmt.Errorf("empty atom")

	case strings.HasPrefix(tok, "τ_"):
		return parseGenericParam(tok)

	case strings.HasPrefix(tok, "[layout: ") && strings.HasSuffix(tok, "]"):
		inner := strings.TrimSuffix(strings.TrimPrefix(tok, "[layout: "), "]")
		if inner == "" {
			return rewrite.Atom{}, fmt.Errorf("empty layout constraint in %q", tok)
		}
		return rewrite.NewLayoutAtom(rewrite.LayoutConstraint(inner)), nil

	case strings.HasPrefix(tok, "[") && strings.HasSuffix(tok, "]"):
		return parseBracketAtom(tok, table)

	default:
		if strings.ContainsAny(tok, "[]&:") {
			return rewrite.Atom{}, fmt.Errorf("malformed atom %q", tok)
		}
		return rewrite.NewNameAtom(tok), nil
	}
}

func parseGenericParam(tok string) (rewrite.Atom, error) {
	parts := strings.Split(strings.TrimPrefix(tok, "τ_"), "_")
	if len(parts) != 2 {
		return rewrite.Atom{}, fmt.Errorf("generic parameter %q: want τ_<depth>_<index>", tok)
	}
	depth, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return rewrite.Atom{}, fmt.Errorf("generic parameter %q: bad depth: %w", tok, err)
	}
	index, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return rewrite.Atom{}, fmt.Errorf("generic parameter %q: bad index: %w", tok, err)
	}
	return rewrite.NewGenericParamAtom(uint16(depth), uint16(index)), nil
}

func parseBracketAtom(tok string, table *protocol.Table) (rewrite.Atom, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(tok, "["), "]")
	if inner == "" {
		return rewrite.Atom{}, fmt.Errorf("empty atom %q", tok)
	}

	// [P1&P2:N] is an associated type; [P] is a bare protocol.
	if protosPart, name, found := strings.Cut(inner, ":"); found {
		if name == "" {
			return rewrite.Atom{}, fmt.Errorf("associated type %q: missing name", tok)
		}
		var refs []protocol.Ref
		for _, p := range strings.Split(protosPart, "&") {
			ref := protocol.Ref(p)
			if !table.Has(ref) {
				return rewrite.Atom{}, fmt.Errorf("associated type %q: undeclared protocol %q", tok, p)
			}
			refs = append(refs, ref)
		}
		return rewrite.NewAssociatedTypeAtom(refs, name, table), nil
	}

	ref := protocol.Ref(inner)
	if !table.Has(ref) {
		return rewrite.Atom{}, fmt.Errorf("undeclared protocol %q", inner)
	}
	return rewrite.NewProtocolAtom(ref), nil
}
