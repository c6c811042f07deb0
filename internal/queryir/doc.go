// Package queryir provides the structural form of predicates: an abstract,
// inspectable representation that backend translators recurse into without
// executing anything.
//
// QueryIR is the abstraction boundary between the specification algebra and
// backend query engines:
//
//	[spec.Spec[T]] --Describe--> [queryir.Predicate] --> [querysql (SQLite)]
//	                                                 --> [Describe (canonical JSON)]
//
// PREDICATE VARIANTS:
//
//   - AlwaysTrue                      - vacuous condition
//   - Compare(field, op, value)       - field <op> literal
//   - Opaque(name)                    - in-memory only leaf, not translatable
//   - And(predicates...)              - conjunction (empty = true)
//   - Or(predicates...)               - disjunction (empty = false)
//   - Not(predicate)                  - negation
//   - Composed(path, predicate)       - navigate to an optional related entity
//   - Any(path, predicate)            - EXISTS over a related collection
//   - DerivedToBase(type, predicate)  - subtype discriminator guard
//
// Absence semantics are fixed by the IR, not by the backend: Composed over an
// absent entity is false and Any over an empty collection is false. Backends
// must not let NULL propagate out of either.
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed interfaces using the marker method pattern.
// Only types in this package can implement them, so backend type switches
// are exhaustive:
//
//	switch p := pred.(type) {
//	case queryir.Compare:
//	    // field comparison
//	case queryir.Any:
//	    // EXISTS sub-condition
//	default:
//	    // unknown variant - report an error, never guess
//	}
//
// Translators accept both value and pointer forms of every variant.
package queryir
