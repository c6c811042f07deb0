package queryir

import (
	"fmt"

	"github.com/roach88/specbench/internal/ir"
)

// ValidationResult contains translatability analysis of a query or predicate.
//
// A translatable predicate carries enough structure for a backend to emit an
// equivalent native condition. Non-translatable predicates still evaluate in
// memory; they only fail when handed to a backend compiler.
type ValidationResult struct {
	// Translatable indicates the tree contains only structural leaves.
	Translatable bool

	// Warnings lists every problem found, in depth-first order.
	// Empty when Translatable is true.
	Warnings []string
}

// Validate checks that a query can be handed to a backend translator.
//
// Rules:
//  1. Select.From must be non-empty
//  2. No Opaque leaves - they exist only as Go code
//  3. Compare needs a field name and a known operator
//  4. Ordering comparisons (gt/ge/lt/le) against null are meaningless
//  5. Composed and Any need a relation path
//  6. DerivedToBase needs a type name
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{warnings: []string{}}
	v.validateQuery(query)
	return v.result()
}

// ValidatePredicate applies the predicate rules of Validate to a bare predicate.
func ValidatePredicate(p Predicate) ValidationResult {
	v := &validator{warnings: []string{}}
	v.validatePredicate(p, "$")
	return v.result()
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) result() ValidationResult {
	return ValidationResult{
		Translatable: len(v.warnings) == 0,
		Warnings:     v.warnings,
	}
}

// addWarning appends a warning message prefixed with the node path.
func (v *validator) addWarning(path, format string, args ...any) {
	v.warnings = append(v.warnings, path+": "+fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		if query == nil {
			v.addWarning("$", "nil query")
			return
		}
		v.validateSelect(*query)
	case nil:
		v.addWarning("$", "nil query")
	default:
		v.addWarning("$", "unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if sel.From == "" {
		v.addWarning("$", "select has no source")
	}
	if sel.Filter != nil {
		v.validatePredicate(sel.Filter, "$.filter")
	}
}

// validatePredicate recursively validates a predicate node.
func (v *validator) validatePredicate(p Predicate, path string) {
	switch pred := Deref(p).(type) {
	case nil:
		v.addWarning(path, "nil predicate")
	case AlwaysTrue:
		// always translatable
	case Compare:
		v.validateCompare(pred, path)
	case Opaque:
		v.addWarning(path, "opaque predicate %q has no structural form", pred.Name)
	case And:
		for i, sub := range pred.Predicates {
			v.validatePredicate(sub, fmt.Sprintf("%s.and[%d]", path, i))
		}
	case Or:
		for i, sub := range pred.Predicates {
			v.validatePredicate(sub, fmt.Sprintf("%s.or[%d]", path, i))
		}
	case Not:
		v.validatePredicate(pred.Predicate, path+".not")
	case Composed:
		if pred.Path == "" {
			v.addWarning(path, "composed predicate has no relation path")
		}
		v.validatePredicate(pred.Predicate, path+".compose("+pred.Path+")")
	case Any:
		if pred.Path == "" {
			v.addWarning(path, "any predicate has no relation path")
		}
		v.validatePredicate(pred.Predicate, path+".any("+pred.Path+")")
	case DerivedToBase:
		if pred.Type == "" {
			v.addWarning(path, "derived-to-base predicate has no type name")
		}
		v.validatePredicate(pred.Predicate, path+".as("+pred.Type+")")
	default:
		v.addWarning(path, "unknown predicate type: %T", p)
	}
}

func (v *validator) validateCompare(c Compare, path string) {
	if c.Field == "" {
		v.addWarning(path, "comparison has no field")
	}
	if !c.Op.Valid() {
		v.addWarning(path, "unknown operator %q on field %q", c.Op, c.Field)
	}
	if c.Value == nil {
		v.addWarning(path, "field %q compared to nil value (use ir.IRNull)", c.Field)
		return
	}
	if _, isNull := c.Value.(ir.IRNull); isNull && c.Op != OpEq && c.Op != OpNe {
		v.addWarning(path, "field %q ordered against null", c.Field)
	}
	switch c.Value.(type) {
	case ir.IRArray, ir.IRObject:
		v.addWarning(path, "field %q compared to non-scalar %s", c.Field, ir.Kind(c.Value))
	}
}

// Deref returns the value form of a pointer predicate variant.
// Value forms and nil are returned unchanged; a nil pointer becomes nil.
func Deref(p Predicate) Predicate {
	switch pred := p.(type) {
	case *AlwaysTrue:
		if pred == nil {
			return nil
		}
		return *pred
	case *Compare:
		if pred == nil {
			return nil
		}
		return *pred
	case *Opaque:
		if pred == nil {
			return nil
		}
		return *pred
	case *And:
		if pred == nil {
			return nil
		}
		return *pred
	case *Or:
		if pred == nil {
			return nil
		}
		return *pred
	case *Not:
		if pred == nil {
			return nil
		}
		return *pred
	case *Composed:
		if pred == nil {
			return nil
		}
		return *pred
	case *Any:
		if pred == nil {
			return nil
		}
		return *pred
	case *DerivedToBase:
		if pred == nil {
			return nil
		}
		return *pred
	default:
		return p
	}
}
