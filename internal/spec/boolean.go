package spec

import "github.com/roach88/specbench/internal/queryir"

type andSpec[T any] struct {
	compiled[T]
	left, right Spec[T]
}

// And returns a spec satisfied when both left and right are satisfied.
// Evaluation short-circuits on the left operand.
func And[T any](left, right Spec[T]) Spec[T] {
	mustNotBeNil("And", left, right)
	return &andSpec[T]{left: left, right: right}
}

func (s *andSpec[T]) Describe() queryir.Predicate {
	return queryir.And{Predicates: []queryir.Predicate{s.left.Describe(), s.right.Describe()}}
}

func (s *andSpec[T]) Compile() func(T) bool {
	return s.load(func() func(T) bool {
		l, r := s.left.Compile(), s.right.Compile()
		return func(e T) bool { return l(e) && r(e) }
	})
}

func (s *andSpec[T]) IsSatisfiedBy(entity T) bool { return s.Compile()(entity) }

type orSpec[T any] struct {
	compiled[T]
	left, right Spec[T]
}

// Or returns a spec satisfied when left or right is satisfied.
func Or[T any](left, right Spec[T]) Spec[T] {
	mustNotBeNil("Or", left, right)
	return &orSpec[T]{left: left, right: right}
}

func (s *orSpec[T]) Describe() queryir.Predicate {
	return queryir.Or{Predicates: []queryir.Predicate{s.left.Describe(), s.right.Describe()}}
}

func (s *orSpec[T]) Compile() func(T) bool {
	return s.load(func() func(T) bool {
		l, r := s.left.Compile(), s.right.Compile()
		return func(e T) bool { return l(e) || r(e) }
	})
}

func (s *orSpec[T]) IsSatisfiedBy(entity T) bool { return s.Compile()(entity) }

type notSpec[T any] struct {
	compiled[T]
	inner Spec[T]
}

// Not returns a spec satisfied exactly when inner is not.
// Double negation is not collapsed structurally.
func Not[T any](inner Spec[T]) Spec[T] {
	mustNotBeNil("Not", inner)
	return &notSpec[T]{inner: inner}
}

func (s *notSpec[T]) Describe() queryir.Predicate {
	return queryir.Not{Predicate: s.inner.Describe()}
}

func (s *notSpec[T]) Compile() func(T) bool {
	return s.load(func() func(T) bool {
		in := s.inner.Compile()
		return func(e T) bool { return !in(e) }
	})
}

func (s *notSpec[T]) IsSatisfiedBy(entity T) bool { return s.Compile()(entity) }

// AllOf folds specs with And from the left.
// No specs gives AlwaysTrue; a single spec is returned unchanged.
func AllOf[T any](specs ...Spec[T]) Spec[T] {
	if len(specs) == 0 {
		return AlwaysTrue[T]()
	}
	acc := specs[0]
	for _, s := range specs[1:] {
		acc = And(acc, s)
	}
	return acc
}

// AnyOf folds specs with Or from the left.
// No specs gives a spec that is never satisfied.
func AnyOf[T any](specs ...Spec[T]) Spec[T] {
	if len(specs) == 0 {
		return Not(AlwaysTrue[T]())
	}
	acc := specs[0]
	for _, s := range specs[1:] {
		acc = Or(acc, s)
	}
	return acc
}
