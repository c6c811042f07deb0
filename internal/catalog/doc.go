// Package catalog loads named filter definitions written in CUE and binds
// them to executable specifications.
//
// A catalog file declares filters under a top-level "filters" struct:
//
//	filters: paid_by_alice: {
//		entity: "order"
//		where: and: [
//			{field: "status", op: "eq", value: "PAID"},
//			{compose: "customer", where: {field: "name", op: "eq", value: "Alice"}},
//		]
//	}
//
// Loading parses each "where" expression into its queryir structural form.
// Binding walks that form against an Entity[T], which knows the fields,
// relations and subtypes of T, and produces a spec.Spec[T]. The bound spec is
// equivalent to the form it was built from; n-ary and/or lists are folded
// into nested binary nodes.
package catalog
