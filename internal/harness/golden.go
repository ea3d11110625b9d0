package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares the final dump against
// a golden file at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// The golden file holds only the dump; the run token is not part of it.
func RunWithGolden(t *testing.T, r *Runner, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := r.Run(scenario)
	if err != nil {
		return result, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, []byte(result.Dump))

	return result, nil
}
