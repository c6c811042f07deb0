package catalog

import (
	"fmt"
	"slices"

	"cuelang.org/go/cue"

	"github.com/roach88/specbench/internal/ir"
	"github.com/roach88/specbench/internal/queryir"
)

// exprForms lists the keys that select an expression form. Exactly one must
// be present on every expression.
var exprForms = []string{"field", "and", "or", "not", "compose", "any", "as", "always"}

// parseExpr converts one CUE expression to its structural form.
//
//	{field: "total", op: "ge", value: 100}
//	{and: [e, ...]}  {or: [e, ...]}  {not: e}
//	{compose: "customer", where: e}
//	{any: "items", where: e}
//	{as: "Dog", where: e}
//	{always: true}
func parseExpr(v cue.Value, path string) (queryir.Predicate, error) {
	if v.IncompleteKind() != cue.StructKind {
		return nil, defErr(ErrCodeInvalidExpr, path, v.Pos(), "expression must be a struct, got %v", v.IncompleteKind())
	}

	var present []string
	for _, key := range exprForms {
		if v.LookupPath(cue.MakePath(cue.Str(key))).Exists() {
			present = append(present, key)
		}
	}
	if len(present) != 1 {
		return nil, defErr(ErrCodeInvalidExpr, path, v.Pos(),
			"expression must have exactly one of %v, found %v", exprForms, present)
	}

	switch form := present[0]; form {
	case "field":
		return parseCompare(v, path)
	case "and", "or":
		subs, err := parseList(lookup(v, form), path+"."+form)
		if err != nil {
			return nil, err
		}
		if form == "and" {
			return queryir.And{Predicates: subs}, nil
		}
		return queryir.Or{Predicates: subs}, nil
	case "not":
		inner, err := parseExpr(lookup(v, "not"), path+".not")
		if err != nil {
			return nil, err
		}
		return queryir.Not{Predicate: inner}, nil
	case "compose", "any", "as":
		target, err := stringAt(v, form, path)
		if err != nil {
			return nil, err
		}
		whereVal := lookup(v, "where")
		if !whereVal.Exists() {
			return nil, defErr(ErrCodeMissingField, path+".where", v.Pos(), "%s requires where", form)
		}
		inner, err := parseExpr(whereVal, path+".where")
		if err != nil {
			return nil, err
		}
		switch form {
		case "compose":
			return queryir.Composed{Path: target, Predicate: inner}, nil
		case "any":
			return queryir.Any{Path: target, Predicate: inner}, nil
		default:
			return queryir.DerivedToBase{Type: target, Predicate: inner}, nil
		}
	default: // always
		b, err := lookup(v, "always").Bool()
		if err != nil {
			return nil, formatCUEError(err, path+".always")
		}
		if b {
			return queryir.AlwaysTrue{}, nil
		}
		return queryir.Not{Predicate: queryir.AlwaysTrue{}}, nil
	}
}

func parseCompare(v cue.Value, path string) (queryir.Predicate, error) {
	field, err := stringAt(v, "field", path)
	if err != nil {
		return nil, err
	}

	op := queryir.OpEq
	if opVal := lookup(v, "op"); opVal.Exists() {
		s, err := opVal.String()
		if err != nil {
			return nil, formatCUEError(err, path+".op")
		}
		op = queryir.Op(s)
		if !op.Valid() {
			return nil, defErr(ErrCodeInvalidOp, path+".op", opVal.Pos(),
				"unknown operator %q (want one of %v)", s, queryir.Ops)
		}
	}

	valueVal := lookup(v, "value")
	if !valueVal.Exists() {
		return nil, defErr(ErrCodeMissingField, path+".value", v.Pos(), "comparison requires value")
	}
	value, err := parseValue(valueVal, path+".value")
	if err != nil {
		return nil, err
	}
	if _, isNull := value.(ir.IRNull); isNull && op != queryir.OpEq && op != queryir.OpNe {
		return nil, defErr(ErrCodeInvalidValue, path+".value", valueVal.Pos(),
			"null can only be compared with eq or ne")
	}

	return queryir.Compare{Field: field, Op: op, Value: value}, nil
}

// parseValue converts a concrete CUE scalar to an IR value.
// Floats are rejected; they have no IR representation.
func parseValue(v cue.Value, path string) (ir.IRValue, error) {
	switch v.Kind() {
	case cue.NullKind:
		return ir.IRNull{}, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err, path)
		}
		return ir.IRString(s), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err, path)
		}
		return ir.IRInt(n), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err, path)
		}
		return ir.IRBool(b), nil
	case cue.FloatKind:
		return nil, defErr(ErrCodeInvalidValue, path, v.Pos(), "floats are not supported, use integer units")
	case cue.BottomKind:
		return nil, formatCUEError(v.Err(), path)
	default:
		if v.IncompleteKind() != v.Kind() || !v.IsConcrete() {
			return nil, defErr(ErrCodeInvalidValue, path, v.Pos(), "value must be concrete")
		}
		return nil, defErr(ErrCodeInvalidValue, path, v.Pos(), "unsupported value kind %v", v.Kind())
	}
}

func parseList(v cue.Value, path string) ([]queryir.Predicate, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err, path)
	}
	subs := []queryir.Predicate{}
	for i := 0; iter.Next(); i++ {
		sub, err := parseExpr(iter.Value(), fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return slices.Clip(subs), nil
}

func lookup(v cue.Value, key string) cue.Value {
	return v.LookupPath(cue.MakePath(cue.Str(key)))
}

func stringAt(v cue.Value, key, path string) (string, error) {
	s, err := lookup(v, key).String()
	if err != nil {
		return "", formatCUEError(err, path+"."+key)
	}
	if s == "" {
		return "", defErr(ErrCodeInvalidExpr, path+"."+key, v.Pos(), "%s must not be empty", key)
	}
	return s, nil
}
