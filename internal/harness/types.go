package harness

import "github.com/roach88/specbench/internal/bench"

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion held.
	Pass bool `json:"pass"`

	// Filters holds the per-filter outcome, sorted by filter name.
	Filters []bench.Result `json:"filters"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Filters: []bench.Result{},
		Errors:  []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Filter returns the outcome of the named filter.
func (r *Result) Filter(name string) (bench.Result, bool) {
	for _, f := range r.Filters {
		if f.Name == name {
			return f, true
		}
	}
	return bench.Result{}, false
}
