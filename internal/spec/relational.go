package spec

import (
	"iter"
	"slices"

	"github.com/roach88/specbench/internal/queryir"
)

type composedSpec[P, C any] struct {
	compiled[P]
	child    Spec[C]
	path     string
	selector func(P) (C, bool)
}

// Compose lifts a spec over a related entity C to its parent P.
//
// selector reports the related entity and whether it is present. The result
// is false when the entity is absent: selector returned false, or returned a
// nil pointer or nil interface. child is never consulted in that case.
//
// path names the relation in the structural form (queryir.Composed).
func Compose[P, C any](child Spec[C], path string, selector func(P) (C, bool)) Spec[P] {
	mustNotBeNil("Compose", child, selector)
	return &composedSpec[P, C]{child: child, path: path, selector: selector}
}

// ComposePtr is Compose for relations held as a pointer. A nil pointer is absent.
func ComposePtr[P, C any](child Spec[C], path string, selector func(P) *C) Spec[P] {
	mustNotBeNil("ComposePtr", child, selector)
	return Compose(child, path, func(p P) (C, bool) {
		if c := selector(p); c != nil {
			return *c, true
		}
		var zero C
		return zero, false
	})
}

func (s *composedSpec[P, C]) Describe() queryir.Predicate {
	return queryir.Composed{Path: s.path, Predicate: s.child.Describe()}
}

func (s *composedSpec[P, C]) Compile() func(P) bool {
	return s.load(func() func(P) bool {
		child := s.child.Compile()
		return func(p P) bool {
			c, ok := s.selector(p)
			if !ok || absent(c) {
				return false
			}
			return child(c)
		}
	})
}

func (s *composedSpec[P, C]) IsSatisfiedBy(entity P) bool { return s.Compile()(entity) }

type anySpec[P, C any] struct {
	compiled[P]
	child    Spec[C]
	path     string
	selector func(P) iter.Seq[C]
}

// Any lifts a spec over collection elements C to their parent P.
// The result is true iff at least one element of selector(parent) satisfies
// child. An empty or nil collection is false.
func Any[P, C any](child Spec[C], path string, selector func(P) []C) Spec[P] {
	mustNotBeNil("Any", child, selector)
	return AnySeq(child, path, func(p P) iter.Seq[C] {
		return slices.Values(selector(p))
	})
}

// AnySeq is Any for collections exposed as an iterator. The sequence is
// consumed at most once per evaluation and abandoned at the first match.
func AnySeq[P, C any](child Spec[C], path string, selector func(P) iter.Seq[C]) Spec[P] {
	mustNotBeNil("AnySeq", child, selector)
	return &anySpec[P, C]{child: child, path: path, selector: selector}
}

func (s *anySpec[P, C]) Describe() queryir.Predicate {
	return queryir.Any{Path: s.path, Predicate: s.child.Describe()}
}

func (s *anySpec[P, C]) Compile() func(P) bool {
	return s.load(func() func(P) bool {
		child := s.child.Compile()
		return func(p P) bool {
			seq := s.selector(p)
			if seq == nil {
				return false
			}
			for c := range seq {
				if child(c) {
					return true
				}
			}
			return false
		}
	})
}

func (s *anySpec[P, C]) IsSatisfiedBy(entity P) bool { return s.Compile()(entity) }
