package spec

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/roach88/specbench/internal/ir"
	"github.com/roach88/specbench/internal/queryir"
)

// Spec is an immutable predicate over entities of type T.
type Spec[T any] interface {
	// Describe returns the structural form of the predicate.
	Describe() queryir.Predicate

	// Compile returns the memoized executable predicate.
	Compile() func(T) bool

	// IsSatisfiedBy evaluates the compiled predicate against entity.
	IsSatisfiedBy(entity T) bool
}

// compiled is the per-node cache slot for the executable predicate.
type compiled[T any] struct {
	fn atomic.Pointer[func(T) bool]
}

// load returns the cached predicate, building it on first use.
// If two callers race, the first successful CompareAndSwap wins and the
// loser's function is dropped.
func (c *compiled[T]) load(build func() func(T) bool) func(T) bool {
	if fn := c.fn.Load(); fn != nil {
		return *fn
	}
	built := build()
	if c.fn.CompareAndSwap(nil, &built) {
		return built
	}
	return *c.fn.Load()
}

// Evaluate is shorthand for s.IsSatisfiedBy(entity).
func Evaluate[T any](s Spec[T], entity T) bool {
	return s.IsSatisfiedBy(entity)
}

// alwaysTrue is satisfied by every entity.
type alwaysTrue[T any] struct {
	compiled[T]
}

// AlwaysTrue returns a spec satisfied by every entity.
func AlwaysTrue[T any]() Spec[T] {
	return &alwaysTrue[T]{}
}

func (s *alwaysTrue[T]) Describe() queryir.Predicate { return queryir.AlwaysTrue{} }

func (s *alwaysTrue[T]) Compile() func(T) bool {
	return s.load(func() func(T) bool {
		return func(T) bool { return true }
	})
}

func (s *alwaysTrue[T]) IsSatisfiedBy(entity T) bool { return s.Compile()(entity) }

// leaf pairs a structural description with the Go function that decides it.
type leaf[T any] struct {
	compiled[T]
	structure queryir.Predicate
	eval      func(T) bool
}

// Leaf returns a base condition supplied by the caller.
//
// structure is what translators see and fn is what in-memory evaluation runs;
// the caller is responsible for keeping them equivalent.
func Leaf[T any](structure queryir.Predicate, fn func(T) bool) Spec[T] {
	if structure == nil || fn == nil {
		panic("spec: Leaf requires a structure and a function")
	}
	return &leaf[T]{structure: structure, eval: fn}
}

// Func returns a leaf with no structural content. It evaluates in memory but
// describes itself as queryir.Opaque and cannot be translated.
func Func[T any](name string, fn func(T) bool) Spec[T] {
	return Leaf(queryir.Opaque{Name: name}, fn)
}

// Compare returns a leaf comparing one field of T against a literal.
//
// get extracts the field as an ir.IRValue. Values of different kinds never
// satisfy any operator. Comparing against ir.IRNull is only meaningful with
// eq (field is null) and ne (field is not null).
func Compare[T any](field string, op queryir.Op, value ir.IRValue, get func(T) ir.IRValue) Spec[T] {
	if get == nil || value == nil {
		panic(fmt.Sprintf("spec: Compare(%q) requires a getter and a value", field))
	}
	structure := queryir.Compare{Field: field, Op: op, Value: value}
	if _, isNull := value.(ir.IRNull); isNull {
		return Leaf(structure, func(e T) bool {
			_, fieldNull := get(e).(ir.IRNull)
			switch op {
			case queryir.OpEq:
				return fieldNull
			case queryir.OpNe:
				return !fieldNull
			default:
				return false
			}
		})
	}
	return Leaf(structure, func(e T) bool {
		c, ok := ir.CompareValues(get(e), value)
		return ok && op.Holds(c)
	})
}

func (s *leaf[T]) Describe() queryir.Predicate { return s.structure }

func (s *leaf[T]) Compile() func(T) bool {
	return s.load(func() func(T) bool { return s.eval })
}

func (s *leaf[T]) IsSatisfiedBy(entity T) bool { return s.Compile()(entity) }

// absent reports whether v is a nil interface or a nil pointer.
func absent[C any](v C) bool {
	a := any(v)
	if a == nil {
		return true
	}
	rv := reflect.ValueOf(a)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func mustNotBeNil(name string, vals ...any) {
	for _, v := range vals {
		if v == nil || (reflect.ValueOf(v).Kind() == reflect.Func && reflect.ValueOf(v).IsNil()) {
			panic("spec: " + name + " called with nil operand")
		}
	}
}
