// Package spec implements the specification algebra: immutable, typed boolean
// predicates that can be combined, evaluated in memory, and described as
// structure for a backend translator.
//
// A Spec[T] has two faces:
//
//   - Describe returns a queryir.Predicate tree. Translators (querysql) recurse
//     into it to emit native query fragments without evaluating anything.
//   - Compile returns a plain func(T) bool. It is built lazily on first use,
//     memoized per node instance, and reused by every later evaluation.
//
// Combinators never mutate their operands:
//
//	paid := model.OrderStatusIs("PAID")
//	alice := model.CustomerNameIs("Alice")
//	s := spec.And(paid, spec.Compose(alice, "customer", selectCustomer))
//
// ABSENCE SEMANTICS:
//
// Compose over an absent related entity is false, Any over an empty collection
// is false, and AsBase over a value of another concrete type is false. None of
// these are errors. A panicking selector is not recovered.
//
// CONCURRENCY:
//
// Nodes are safe for concurrent use. The compiled predicate slot is filled with
// compare-and-swap: concurrent first callers may each build a function, exactly
// one is kept, and every caller returns the kept one. No lock is held while a
// composite node compiles its children.
package spec
