package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specbench/internal/bench"
)

func sampleResult() *Result {
	r := NewResult()
	r.Filters = []bench.Result{
		{Name: "agree", Entity: "order", Matched: 2, Match: true, IDs: []string{"o1", "o4"}},
		{Name: "empty", Entity: "order", Matched: 0, Match: true, IDs: []string{}},
		{
			Name: "split", Entity: "animal", Matched: 1, Match: false, IDs: []string{"a2"},
			OnlyMemory: []string{"a1"}, OnlySQL: []string{"a2"},
		},
	}
	return r
}

func intPtr(n int) *int { return &n }

func TestEvaluateAssertions(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string // empty means the assertion holds
	}{
		{"matches exact", Assertion{Type: AssertMatches, Filter: "agree", IDs: []string{"o1", "o4"}}, ""},
		{"matches ignores order", Assertion{Type: AssertMatches, Filter: "agree", IDs: []string{"o4", "o1"}}, ""},
		{"matches empty", Assertion{Type: AssertMatches, Filter: "empty"}, ""},
		{"matches extra row", Assertion{Type: AssertMatches, Filter: "agree", IDs: []string{"o1"}}, "exactly [o1]"},
		{"contains subset", Assertion{Type: AssertContains, Filter: "agree", IDs: []string{"o4"}}, ""},
		{"contains missing", Assertion{Type: AssertContains, Filter: "agree", IDs: []string{"o2", "o4"}}, "missing [o2]"},
		{"excludes absent", Assertion{Type: AssertExcludes, Filter: "agree", IDs: []string{"o2"}}, ""},
		{"excludes present", Assertion{Type: AssertExcludes, Filter: "agree", IDs: []string{"o1", "o2"}}, "selected [o1]"},
		{"count ok", Assertion{Type: AssertCount, Filter: "agree", Count: intPtr(2)}, ""},
		{"count zero", Assertion{Type: AssertCount, Filter: "empty", Count: intPtr(0)}, ""},
		{"count wrong", Assertion{Type: AssertCount, Filter: "agree", Count: intPtr(1)}, "Expected: 1 row(s)"},
		{"unknown filter", Assertion{Type: AssertCount, Filter: "nope", Count: intPtr(1)}, "no such filter"},
		{"parity one filter", Assertion{Type: AssertParity, Filter: "agree"}, ""},
		{"parity split filter", Assertion{Type: AssertParity, Filter: "split"}, "only in memory [a1], only in SQL [a2]"},
		{"parity all", Assertion{Type: AssertParity}, "disagreement in [split]"},
		{"disagreeing filter fails row checks", Assertion{Type: AssertMatches, Filter: "split", IDs: []string{"a2"}}, "paths agree"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], "assertions[0]")
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestEvaluateAssertions_IndexesFailures(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertParity, Filter: "agree"},
		{Type: AssertCount, Filter: "agree", Count: intPtr(5)},
		{Type: AssertMatches, Filter: "empty"},
		{Type: AssertExcludes, Filter: "agree", IDs: []string{"o4"}},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "assertions[1]")
	assert.Contains(t, errs[1], "assertions[3]")
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertContains,
		Filter:   "huskies",
		Expected: "at least [a1]",
		Actual:   "missing [a1]",
		Selected: []string{"a3"},
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: contains(huskies)")
	assert.Contains(t, msg, "  Expected: at least [a1]")
	assert.Contains(t, msg, "  Actual: missing [a1]")
	assert.Contains(t, msg, "  Selected: [a3]")

	bare := (&AssertionError{Type: AssertParity, Expected: "x", Actual: "y"}).Error()
	assert.Contains(t, bare, "Assertion failed: parity\n")
	assert.NotContains(t, bare, "Selected")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
