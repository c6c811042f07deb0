package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/specbench/internal/bench"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Filter   string   // Filter the assertion is about, if any
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Selected []string // Rows the filter selected, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with assertion type
	if e.Filter != "" {
		fmt.Fprintf(&buf, "Assertion failed: %s(%s)\n", e.Type, e.Filter)
	} else {
		fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	}

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Selected != nil {
		fmt.Fprintf(&buf, "  Selected: %v\n", e.Selected)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns one
// message per failure, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %s", i, err.Error()))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	if a.Type == AssertParity {
		return assertParity(result, a)
	}

	f, ok := result.Filter(a.Filter)
	if !ok {
		return &AssertionError{
			Type:     a.Type,
			Filter:   a.Filter,
			Expected: "filter in catalog",
			Actual:   "no such filter",
		}
	}
	if !f.Match {
		return pathsDisagree(a.Type, f)
	}

	switch a.Type {
	case AssertMatches:
		return assertMatches(f, a)
	case AssertContains:
		return assertContains(f, a)
	case AssertExcludes:
		return assertExcludes(f, a)
	case AssertCount:
		return assertCount(f, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

// assertMatches checks the selected rows equal the expected ids as a set.
func assertMatches(f bench.Result, a Assertion) error {
	want := slices.Sorted(slices.Values(a.IDs))
	got := slices.Sorted(slices.Values(f.IDs))
	if slices.Equal(want, got) {
		return nil
	}
	return &AssertionError{
		Type:     AssertMatches,
		Filter:   f.Name,
		Expected: fmt.Sprintf("exactly %v", want),
		Actual:   fmt.Sprintf("%v", got),
	}
}

// assertContains checks every expected id was selected.
func assertContains(f bench.Result, a Assertion) error {
	var missing []string
	for _, id := range a.IDs {
		if !slices.Contains(f.IDs, id) {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertContains,
		Filter:   f.Name,
		Expected: fmt.Sprintf("at least %v", a.IDs),
		Actual:   fmt.Sprintf("missing %v", missing),
		Selected: f.IDs,
	}
}

// assertExcludes checks none of the given ids was selected.
func assertExcludes(f bench.Result, a Assertion) error {
	var present []string
	for _, id := range a.IDs {
		if slices.Contains(f.IDs, id) {
			present = append(present, id)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertExcludes,
		Filter:   f.Name,
		Expected: fmt.Sprintf("none of %v", a.IDs),
		Actual:   fmt.Sprintf("selected %v", present),
		Selected: f.IDs,
	}
}

// assertCount checks the number of selected rows.
func assertCount(f bench.Result, a Assertion) error {
	if f.Matched == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertCount,
		Filter:   f.Name,
		Expected: fmt.Sprintf("%d row(s)", *a.Count),
		Actual:   fmt.Sprintf("%d row(s)", f.Matched),
	}
}

// assertParity checks both paths agreed, for one filter or all of them.
func assertParity(result *Result, a Assertion) error {
	if a.Filter != "" {
		f, ok := result.Filter(a.Filter)
		if !ok {
			return &AssertionError{
				Type:     AssertParity,
				Filter:   a.Filter,
				Expected: "filter in catalog",
				Actual:   "no such filter",
			}
		}
		if !f.Match {
			return pathsDisagree(AssertParity, f)
		}
		return nil
	}

	var disagree []string
	for _, f := range result.Filters {
		if !f.Match {
			disagree = append(disagree, f.Name)
		}
	}
	if len(disagree) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertParity,
		Expected: "every filter selects the same rows in memory and in SQL",
		Actual:   fmt.Sprintf("disagreement in %v", disagree),
	}
}

func pathsDisagree(typ string, f bench.Result) error {
	return &AssertionError{
		Type:     typ,
		Filter:   f.Name,
		Expected: "in-memory and SQL paths agree",
		Actual:   fmt.Sprintf("only in memory %v, only in SQL %v", f.OnlyMemory, f.OnlySQL),
	}
}
