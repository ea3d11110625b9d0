package harness

import (
	"fmt"
	"strings"

	"github.com/confluo/confluo/internal/compiler"
	"github.com/confluo/confluo/internal/protocol"
	"github.com/confluo/confluo/internal/rewrite"
)

// Default completion budget for scenarios that do not set one.
const (
	DefaultMaxIterations = 100
	DefaultMaxDepth      = 10
)

// Result captures a scenario execution.
type Result struct {
	RunToken string
	Result   rewrite.CompletionResult
	Dump     string
	// Simplified holds the achieved normal form for each SimplifyCheck,
	// in scenario order.
	Simplified []string
}

// Runner executes scenarios. The zero value is not usable; use NewRunner.
type Runner struct {
	tokens RunTokenGenerator
}

// NewRunner creates a Runner. A nil generator defaults to UUIDv7 tokens.
func NewRunner(tokens RunTokenGenerator) *Runner {
	if tokens == nil {
		tokens = UUIDv7Generator{}
	}
	return &Runner{tokens: tokens}
}

// Run builds the protocol graph and rule set, completes the system, and
// checks the scenario's expectations. Expectation failures are returned
// as errors; the Result carries the evidence either way.
func (r *Runner) Run(s *Scenario) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	table := protocol.NewTable()
	for _, decl := range s.Protocols {
		if err := table.Declare(protocol.Ref(decl.Name)); err != nil {
			return nil, fmt.Errorf("protocols: %w", err)
		}
	}
	for _, decl := range s.Protocols {
		for _, parent := range decl.Inherits {
			if err := table.AddInheritance(protocol.Ref(decl.Name), protocol.Ref(parent)); err != nil {
				return nil, fmt.Errorf("protocols: %w", err)
			}
		}
	}

	pairs := make([]rewrite.TermPair, 0, len(s.Rules))
	for i, decl := range s.Rules {
		lhs, err := compiler.ParseTerm(decl.LHS, table)
		if err != nil {
			return nil, fmt.Errorf("rules[%d].lhs: %w", i, err)
		}
		rhs, err := compiler.ParseTerm(decl.RHS, table)
		if err != nil {
			return nil, fmt.Errorf("rules[%d].rhs: %w", i, err)
		}
		pairs = append(pairs, rewrite.TermPair{First: lhs, Second: rhs})
	}

	maxIter := s.MaxIterations
	if maxIter == 0 {
		maxIter = DefaultMaxIterations
	}
	maxDepth := s.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}

	system := rewrite.New(table)
	system.Initialize(pairs)
	completion := system.Complete(maxIter, maxDepth)

	token := s.RunToken
	if token == "" {
		token = r.tokens.Generate()
	}

	var dump strings.Builder
	if err := system.Dump(&dump); err != nil {
		return nil, fmt.Errorf("dump: %w", err)
	}

	result := &Result{
		RunToken: token,
		Result:   completion,
		Dump:     dump.String(),
	}

	expect := s.ExpectResult
	if expect == "" {
		expect = "success"
	}
	if completion.String() != expect {
		return result, fmt.Errorf("completion result %s, want %s", completion, expect)
	}

	for i, check := range s.Simplify {
		term, err := compiler.ParseTerm(check.Term, table)
		if err != nil {
			return result, fmt.Errorf("simplify[%d].term: %w", i, err)
		}
		system.Simplify(&term)
		got := term.String()
		result.Simplified = append(result.Simplified, got)
		if got != check.Want {
			return result, fmt.Errorf("simplify[%d]: %s reduced to %s, want %s",
				i, check.Term, got, check.Want)
		}
	}

	return result, nil
}
