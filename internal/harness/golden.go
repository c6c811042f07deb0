package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/specbench/internal/ir"
)

// Snapshot renders the rows each filter selected as canonical JSON.
//
// Timings and fingerprints are left out: timings vary per run, and
// fingerprints are covered by their own tests. What remains is exactly what
// a scenario's data and catalog determine.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	filters := make(ir.IRArray, len(result.Filters))
	for i, f := range result.Filters {
		ids := make(ir.IRArray, len(f.IDs))
		for j, id := range f.IDs {
			ids[j] = ir.IRString(id)
		}
		filters[i] = ir.IRObject{
			"name":   ir.IRString(f.Name),
			"entity": ir.IRString(f.Entity),
			"ids":    ids,
			"match":  ir.IRBool(f.Match),
		}
	}
	return ir.MarshalCanonical(ir.IRObject{
		"scenario": ir.IRString(scenarioName),
		"filters":  filters,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	// Compare with golden file using goldie
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, snapshot)

	return nil
}
