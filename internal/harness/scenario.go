package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines an end-to-end completion test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden
	// file when golden comparison is used.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Protocols declares the protocol graph, in order. Declaration
	// order fixes the graph's total order.
	Protocols []ProtocolDecl `yaml:"protocols,omitempty"`

	// Rules lists the initial rewrite rules in dump syntax.
	Rules []RuleDecl `yaml:"rules"`

	// MaxIterations bounds completion; 0 means the default of 100.
	MaxIterations uint32 `yaml:"max_iterations,omitempty"`

	// MaxDepth bounds rule derivation depth; 0 means the default of 10.
	MaxDepth uint32 `yaml:"max_depth,omitempty"`

	// ExpectResult is the expected completion result:
	// "success", "max_iterations" or "max_depth". Empty means "success".
	ExpectResult string `yaml:"expect_result,omitempty"`

	// Simplify lists term => normal-form expectations checked after
	// completion.
	Simplify []SimplifyCheck `yaml:"simplify,omitempty"`

	// RunToken is an optional fixed run token for deterministic tests.
	// If empty, the runner's generator supplies one.
	RunToken string `yaml:"run_token,omitempty"`
}

// ProtocolDecl declares one protocol and its direct parents.
type ProtocolDecl struct {
	Name     string   `yaml:"name"`
	Inherits []string `yaml:"inherits,omitempty"`
}

// RuleDecl is one initial rule in dump syntax.
type RuleDecl struct {
	LHS string `yaml:"lhs"`
	RHS string `yaml:"rhs"`
}

// SimplifyCheck asserts that Term reduces to Want after completion.
type SimplifyCheck struct {
	Term string `yaml:"term"`
	Want string `yaml:"want"`
}

// LoadScenario reads and validates a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks the scenario's structural requirements.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Rules) == 0 {
		return fmt.Errorf("at least one rule is required")
	}
	for i, r := range s.Rules {
		if r.LHS == "" || r.RHS == "" {
			return fmt.Errorf("rules[%d]: lhs and rhs are required", i)
		}
	}
	switch s.ExpectResult {
	case "", "success", "max_iterations", "max_depth":
	default:
		return fmt.Errorf("expect_result %q: want success, max_iterations or max_depth", s.ExpectResult)
	}
	for i, p := range s.Protocols {
		if p.Name == "" {
			return fmt.Errorf("protocols[%d]: name is required", i)
		}
	}
	return nil
}
