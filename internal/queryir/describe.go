package queryir

import (
	"fmt"

	"github.com/roach88/specbench/internal/ir"
)

// Describe converts a predicate tree into a tagged ir.IRObject.
//
// Every node carries a "kind" tag plus its operands:
//
//	{"kind":"compare","field":"status","op":"eq","value":"PAID"}
//	{"kind":"and","predicates":[...]}
//	{"kind":"composed","path":"customer","predicate":{...}}
//	{"kind":"derived_to_base","type":"Dog","predicate":{...}}
//
// The result marshals to canonical JSON and is what Fingerprint hashes.
func Describe(p Predicate) (ir.IRObject, error) {
	switch pred := Deref(p).(type) {
	case nil:
		return nil, fmt.Errorf("cannot describe nil predicate")
	case AlwaysTrue:
		return ir.IRObject{"kind": ir.IRString("always_true")}, nil
	case Compare:
		if pred.Value == nil {
			return nil, fmt.Errorf("compare %q: nil value", pred.Field)
		}
		return ir.IRObject{
			"kind":  ir.IRString("compare"),
			"field": ir.IRString(pred.Field),
			"op":    ir.IRString(string(pred.Op)),
			"value": pred.Value,
		}, nil
	case Opaque:
		return ir.IRObject{
			"kind": ir.IRString("opaque"),
			"name": ir.IRString(pred.Name),
		}, nil
	case And:
		subs, err := describeAll(pred.Predicates)
		if err != nil {
			return nil, fmt.Errorf("and: %w", err)
		}
		return ir.IRObject{"kind": ir.IRString("and"), "predicates": subs}, nil
	case Or:
		subs, err := describeAll(pred.Predicates)
		if err != nil {
			return nil, fmt.Errorf("or: %w", err)
		}
		return ir.IRObject{"kind": ir.IRString("or"), "predicates": subs}, nil
	case Not:
		inner, err := Describe(pred.Predicate)
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		return ir.IRObject{"kind": ir.IRString("not"), "predicate": inner}, nil
	case Composed:
		inner, err := Describe(pred.Predicate)
		if err != nil {
			return nil, fmt.Errorf("composed %q: %w", pred.Path, err)
		}
		return ir.IRObject{
			"kind":      ir.IRString("composed"),
			"path":      ir.IRString(pred.Path),
			"predicate": inner,
		}, nil
	case Any:
		inner, err := Describe(pred.Predicate)
		if err != nil {
			return nil, fmt.Errorf("any %q: %w", pred.Path, err)
		}
		return ir.IRObject{
			"kind":      ir.IRString("any"),
			"path":      ir.IRString(pred.Path),
			"predicate": inner,
		}, nil
	case DerivedToBase:
		inner, err := Describe(pred.Predicate)
		if err != nil {
			return nil, fmt.Errorf("derived_to_base %q: %w", pred.Type, err)
		}
		return ir.IRObject{
			"kind":      ir.IRString("derived_to_base"),
			"type":      ir.IRString(pred.Type),
			"predicate": inner,
		}, nil
	default:
		return nil, fmt.Errorf("unknown predicate type: %T", p)
	}
}

func describeAll(preds []Predicate) (ir.IRArray, error) {
	out := make(ir.IRArray, len(preds))
	for i, p := range preds {
		obj, err := Describe(p)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = obj
	}
	return out, nil
}

// Fingerprint returns the content hash of a predicate's structural form.
// Two separately built but structurally identical trees share a fingerprint.
func Fingerprint(p Predicate) (string, error) {
	obj, err := Describe(p)
	if err != nil {
		return "", err
	}
	return ir.Fingerprint(ir.DomainPredicate, obj)
}
