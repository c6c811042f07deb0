package catalog

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/specbench/internal/ir"
	"github.com/roach88/specbench/internal/queryir"
	"github.com/roach88/specbench/internal/spec"
)

// Entity binds structural predicates over T to executable specs.
//
// It knows T's fields (by getter), its relations to other entities and its
// subtypes. Register relations with One and Many, subtypes with Subtype.
// An Entity is not safe for concurrent registration, but Build may be called
// concurrently once registration is done.
type Entity[T any] struct {
	Name      string
	fields    map[string]func(T) ir.IRValue
	kinds     map[string]string
	relations map[string]relation[T]
	subtypes  map[string]func(p queryir.Predicate, path string) (spec.Spec[T], error)
}

type relationKind string

const (
	toOne  relationKind = "one"
	toMany relationKind = "many"
)

type relation[T any] struct {
	kind  relationKind
	build func(p queryir.Predicate, path string) (spec.Spec[T], error)
}

// NewEntity creates an entity called name over the given field getters.
// kinds gives each field's ir.Kind; a field missing from kinds accepts
// literals of any kind.
func NewEntity[T any, G ~func(T) ir.IRValue](name string, fields map[string]G, kinds map[string]string) *Entity[T] {
	e := &Entity[T]{
		Name:      name,
		fields:    make(map[string]func(T) ir.IRValue, len(fields)),
		kinds:     kinds,
		relations: make(map[string]relation[T]),
		subtypes:  make(map[string]func(queryir.Predicate, string) (spec.Spec[T], error)),
	}
	for k, g := range fields {
		e.fields[k] = g
	}
	return e
}

// Fields lists the entity's field names, sorted.
func (e *Entity[T]) Fields() []string {
	return slices.Sorted(maps.Keys(e.fields))
}

// Relations lists the entity's relation paths, sorted.
func (e *Entity[T]) Relations() []string {
	return slices.Sorted(maps.Keys(e.relations))
}

// Subtypes lists the entity's subtype names, sorted.
func (e *Entity[T]) Subtypes() []string {
	return slices.Sorted(maps.Keys(e.subtypes))
}

// One registers a to-one relation: Composed predicates at path are applied
// to the entity sel returns. A nil result never matches.
func One[P, C any](parent *Entity[P], path string, child *Entity[C], sel func(P) *C) {
	parent.relations[path] = relation[P]{
		kind: toOne,
		build: func(p queryir.Predicate, at string) (spec.Spec[P], error) {
			inner, err := child.build(p, at)
			if err != nil {
				return nil, err
			}
			return spec.ComposePtr(inner, path, sel), nil
		},
	}
}

// Many registers a to-many relation: Any predicates at path hold when at
// least one element sel returns matches.
func Many[P, C any](parent *Entity[P], path string, child *Entity[C], sel func(P) []C) {
	parent.relations[path] = relation[P]{
		kind: toMany,
		build: func(p queryir.Predicate, at string) (spec.Spec[P], error) {
			inner, err := child.build(p, at)
			if err != nil {
				return nil, err
			}
			return spec.Any(inner, path, sel), nil
		},
	}
}

// Subtype registers D as a subtype of B under sub.Name, which must equal the
// discriminator value stored for D.
func Subtype[B, D any](base *Entity[B], sub *Entity[D]) {
	name := sub.Name
	base.subtypes[name] = func(p queryir.Predicate, at string) (spec.Spec[B], error) {
		inner, err := sub.build(p, at)
		if err != nil {
			return nil, err
		}
		return spec.AsBaseNamed[B](inner, name), nil
	}
}

// Build converts a structural predicate into a spec over T.
// Errors are *DefinitionError values locating the node that failed.
func (e *Entity[T]) Build(p queryir.Predicate) (spec.Spec[T], error) {
	return e.build(p, "$")
}

func (e *Entity[T]) build(p queryir.Predicate, path string) (spec.Spec[T], error) {
	switch pred := queryir.Deref(p).(type) {
	case nil:
		return nil, defErr(ErrCodeInvalidExpr, path, noPos, "nil predicate")
	case queryir.AlwaysTrue:
		return spec.AlwaysTrue[T](), nil
	case queryir.Compare:
		get, ok := e.fields[pred.Field]
		if !ok {
			return nil, defErr(ErrCodeUnknownField, path, noPos,
				"%s has no field %q (fields: %v)", e.Name, pred.Field, e.Fields())
		}
		if !pred.Op.Valid() {
			return nil, defErr(ErrCodeInvalidOp, path, noPos, "unknown operator %q", pred.Op)
		}
		if pred.Value == nil {
			return nil, defErr(ErrCodeInvalidValue, path, noPos, "nil value")
		}
		if err := e.checkKind(pred, path); err != nil {
			return nil, err
		}
		return spec.Compare(pred.Field, pred.Op, pred.Value, get), nil
	case queryir.Opaque:
		return nil, defErr(ErrCodeInvalidExpr, path, noPos, "opaque predicate %q cannot be rebuilt", pred.Name)
	case queryir.And:
		subs, err := e.buildAll(pred.Predicates, path+".and")
		if err != nil {
			return nil, err
		}
		return spec.AllOf(subs...), nil
	case queryir.Or:
		subs, err := e.buildAll(pred.Predicates, path+".or")
		if err != nil {
			return nil, err
		}
		return spec.AnyOf(subs...), nil
	case queryir.Not:
		inner, err := e.build(pred.Predicate, path+".not")
		if err != nil {
			return nil, err
		}
		return spec.Not(inner), nil
	case queryir.Composed:
		return e.buildRelation(pred.Path, toOne, pred.Predicate, path+".compose("+pred.Path+")")
	case queryir.Any:
		return e.buildRelation(pred.Path, toMany, pred.Predicate, path+".any("+pred.Path+")")
	case queryir.DerivedToBase:
		sub, ok := e.subtypes[pred.Type]
		if !ok {
			return nil, defErr(ErrCodeUnknownSubtype, path, noPos,
				"%s has no subtype %q (subtypes: %v)", e.Name, pred.Type, e.Subtypes())
		}
		return sub(pred.Predicate, path+".as("+pred.Type+")")
	default:
		return nil, defErr(ErrCodeInvalidExpr, path, noPos, "unsupported predicate type %T", p)
	}
}

// checkKind rejects a literal whose kind differs from the field's. Null is
// accepted for eq and ne on any field.
func (e *Entity[T]) checkKind(c queryir.Compare, path string) error {
	want, ok := e.kinds[c.Field]
	if !ok {
		return nil
	}
	got := ir.Kind(c.Value)
	if got == "null" {
		if c.Op == queryir.OpEq || c.Op == queryir.OpNe {
			return nil
		}
		return defErr(ErrCodeValueKind, path, noPos, "%s.%s cannot be ordered against null", e.Name, c.Field)
	}
	if got != want {
		return defErr(ErrCodeValueKind, path, noPos,
			"%s.%s is %s; cannot compare with %s value %s", e.Name, c.Field, want, got, describeLiteral(c.Value))
	}
	return nil
}

func describeLiteral(v ir.IRValue) string {
	b, err := ir.MarshalCanonical(v)
	if err != nil {
		return ir.Kind(v)
	}
	return string(b)
}

func (e *Entity[T]) buildAll(preds []queryir.Predicate, path string) ([]spec.Spec[T], error) {
	subs := make([]spec.Spec[T], len(preds))
	for i, p := range preds {
		s, err := e.build(p, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		subs[i] = s
	}
	return subs, nil
}

func (e *Entity[T]) buildRelation(name string, want relationKind, p queryir.Predicate, path string) (spec.Spec[T], error) {
	rel, ok := e.relations[name]
	if !ok {
		return nil, defErr(ErrCodeUnknownRelation, path, noPos,
			"%s has no relation %q (relations: %v)", e.Name, name, e.Relations())
	}
	if rel.kind != want {
		return nil, defErr(ErrCodeRelationKind, path, noPos,
			"relation %q is to-%s; use %s", name, rel.kind, verbFor(rel.kind))
	}
	return rel.build(p, path)
}

func verbFor(k relationKind) string {
	if k == toOne {
		return "compose"
	}
	return "any"
}
