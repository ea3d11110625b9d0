package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/confluo/confluo/internal/protocol"
	"github.com/confluo/confluo/internal/rewrite"
)

// Input is a compiled signature file set: the protocol graph and the
// initial rewrite rules, ready for System.Initialize.
type Input struct {
	Graph *protocol.Table
	Rules []rewrite.TermPair
}

// CompileError is a compile failure with an optional CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadDir loads every CUE file in dir into one value and compiles it.
func LoadDir(dir string) (*Input, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("signature directory not found: %s", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("accessing signature directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir, Package: "_"})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	return Compile(value)
}

// CompileString compiles CUE source text. Used by tests and tooling that
// hold the source in memory.
func CompileString(src string) (*Input, error) {
	value := cuecontext.New().CompileString(src)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(value)
}

// Compile parses a CUE value holding protocols and rules into an Input.
//
// Protocols are declared in list order, which fixes the graph's total
// order; all declarations happen before inheritance edges so a protocol
// may inherit from one declared later in the file.
func Compile(v cue.Value) (*Input, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	table := protocol.NewTable()

	protosVal := v.LookupPath(cue.ParsePath("protocols"))
	if protosVal.Exists() {
		decls, err := parseProtocolDecls(protosVal)
		if err != nil {
			return nil, err
		}
		for _, d := range decls {
			if err := table.Declare(d.name); err != nil {
				return nil, &CompileError{Field: "protocols", Message: err.Error(), Pos: protosVal.Pos()}
			}
		}
		for _, d := range decls {
			for _, parent := range d.inherits {
				if err := table.AddInheritance(d.name, parent); err != nil {
					return nil, &CompileError{Field: "protocols", Message: err.Error(), Pos: protosVal.Pos()}
				}
			}
		}
	}

	input := &Input{Graph: table}

	rulesVal := v.LookupPath(cue.ParsePath("rules"))
	if !rulesVal.Exists() {
		return nil, &CompileError{Field: "rules", Message: "rules list is required", Pos: v.Pos()}
	}
	iter, err := rulesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		pair, err := parseRule(iter.Value(), i, table)
		if err != nil {
			return nil, err
		}
		input.Rules = append(input.Rules, pair)
	}

	return input, nil
}

type protocolDecl struct {
	name     protocol.Ref
	inherits []protocol.Ref
}

func parseProtocolDecls(v cue.Value) ([]protocolDecl, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var decls []protocolDecl
	for i := 0; iter.Next(); i++ {
		elem := iter.Value()

		nameVal := elem.LookupPath(cue.ParsePath("name"))
		if !nameVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("protocols[%d].name", i),
				Message: "name is required",
				Pos:     elem.Pos(),
			}
		}
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}

		decl := protocolDecl{name: protocol.Ref(name)}

		inheritsVal := elem.LookupPath(cue.ParsePath("inherits"))
		if inheritsVal.Exists() {
			inhIter, err := inheritsVal.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for inhIter.Next() {
				parent, err := inhIter.Value().String()
				if err != nil {
					return nil, formatCUEError(err)
				}
				decl.inherits = append(decl.inherits, protocol.Ref(parent))
			}
		}

		decls = append(decls, decl)
	}
	return decls, nil
}

func parseRule(v cue.Value, i int, table *protocol.Table) (rewrite.TermPair, error) {
	parseSide := func(field string) (rewrite.Term, error) {
		val := v.LookupPath(cue.ParsePath(field))
		if !val.Exists() {
			return rewrite.Term{}, &CompileError{
				Field:   fmt.Sprintf("rules[%d].%s", i, field),
				Message: field + " is required",
				Pos:     v.Pos(),
			}
		}
		src, err := val.String()
		if err != nil {
			return rewrite.Term{}, formatCUEError(err)
		}
		term, err := ParseTerm(src, table)
		if err != nil {
			return rewrite.Term{}, &CompileError{
				Field:   fmt.Sprintf("rules[%d].%s", i, field),
				Message: err.Error(),
				Pos:     val.Pos(),
			}
		}
		return term, nil
	}

	lhs, err := parseSide("lhs")
	if err != nil {
		return rewrite.TermPair{}, err
	}
	rhs, err := parseSide("rhs")
	if err != nil {
		return rewrite.TermPair{}, err
	}
	return rewrite.TermPair{First: lhs, Second: rhs}, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return firstErr
}
