package spec

import (
	"iter"
	"slices"

	"github.com/roach88/specbench/internal/queryir"
)

// Narrower is a translatable query object that can be narrowed by a
// structural predicate. Narrowing by A then B must be equivalent to
// narrowing by And(A, B).
type Narrower[Q any] interface {
	Where(p queryir.Predicate) Q
}

// Filter lazily yields the elements of seq that satisfy every filter.
//
// Filters are compiled when iteration starts and checked in order; the first
// rejecting filter stops evaluation for that element. No filters accepts
// everything. The result restarts only if seq does.
func Filter[T any](seq iter.Seq[T], filters ...Spec[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		preds := make([]func(T) bool, len(filters))
		for i, f := range filters {
			preds[i] = f.Compile()
		}
	next:
		for e := range seq {
			for _, p := range preds {
				if !p(e) {
					continue next
				}
			}
			if !yield(e) {
				return
			}
		}
	}
}

// FilterSlice collects Filter over a slice.
func FilterSlice[T any](items []T, filters ...Spec[T]) []T {
	return slices.Collect(Filter(slices.Values(items), filters...))
}

// ApplyQuery narrows q once per filter with the filter's structural form.
// Nothing is evaluated; the narrowed query is returned unexecuted.
func ApplyQuery[Q Narrower[Q], T any](q Q, filters ...Spec[T]) Q {
	for _, f := range filters {
		q = q.Where(f.Describe())
	}
	return q
}
