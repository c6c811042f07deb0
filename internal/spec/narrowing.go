package spec

import (
	"reflect"

	"github.com/roach88/specbench/internal/queryir"
)

type derivedToBase[B, D any] struct {
	compiled[B]
	inner    Spec[D]
	typeName string
}

// AsBase lifts a spec over subtype D to its base type B.
//
// Evaluation type-asserts the base value to D. A value of any other concrete
// type, a nil base value, or a nil pointer D is not a match. The structural
// form carries D's type name (pointer types use the element name) so a
// translator can emit a discriminator check.
func AsBase[B, D any](inner Spec[D]) Spec[B] {
	return AsBaseNamed[B](inner, typeName[D]())
}

// AsBaseNamed is AsBase with an explicit discriminator name for the structural
// form, for schemas whose discriminator values differ from Go type names.
func AsBaseNamed[B, D any](inner Spec[D], name string) Spec[B] {
	mustNotBeNil("AsBase", inner)
	return &derivedToBase[B, D]{inner: inner, typeName: name}
}

func typeName[D any]() string {
	t := reflect.TypeFor[D]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func (s *derivedToBase[B, D]) Describe() queryir.Predicate {
	return queryir.DerivedToBase{Type: s.typeName, Predicate: s.inner.Describe()}
}

func (s *derivedToBase[B, D]) Compile() func(B) bool {
	return s.load(func() func(B) bool {
		inner := s.inner.Compile()
		return func(b B) bool {
			d, ok := any(b).(D)
			if !ok || absent(d) {
				return false
			}
			return inner(d)
		}
	})
}

func (s *derivedToBase[B, D]) IsSatisfiedBy(entity B) bool { return s.Compile()(entity) }
