package queryir

import "github.com/roach88/specbench/internal/ir"

// Query represents an abstract query in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in backend compilers.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a boolean condition over one entity.
//
// This is a sealed interface - only types in this package implement it.
// Every spec.Spec[T] describes itself as a Predicate tree.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Op is a comparison operator used by Compare.
type Op string

// Comparison operators.
const (
	OpEq Op = "eq"
	OpNe Op = "ne"
	OpGt Op = "gt"
	OpGe Op = "ge"
	OpLt Op = "lt"
	OpLe Op = "le"
)

// Ops lists all comparison operators in declaration order.
var Ops = []Op{OpEq, OpNe, OpGt, OpGe, OpLt, OpLe}

// Valid reports whether op is a known comparison operator.
func (op Op) Valid() bool {
	for _, known := range Ops {
		if op == known {
			return true
		}
	}
	return false
}

// Holds reports whether a three-way comparison result satisfies op.
// c is -1, 0 or 1 as returned by ir.CompareValues.
func (op Op) Holds(c int) bool {
	switch op {
	case OpEq:
		return c == 0
	case OpNe:
		return c != 0
	case OpGt:
		return c > 0
	case OpGe:
		return c >= 0
	case OpLt:
		return c < 0
	case OpLe:
		return c <= 0
	default:
		return false
	}
}

// Select represents access to a source filtered by a predicate.
//
// Semantics:
//
//	SELECT <bindings> FROM <from> WHERE <filter>
//
// Example (conceptual SQL translation):
//
//	Select{
//	  From:   "orders",
//	  Filter: And{Predicates: []Predicate{
//	    Compare{Field: "status", Op: OpEq, Value: ir.IRString("PAID")},
//	    Composed{Path: "customer", Predicate: Compare{Field: "name", Op: OpEq, Value: ir.IRString("Alice")}},
//	  }},
//	  Bindings: map[string]string{"id": "id"},
//	}
//
// Translates to SQL:
//
//	SELECT t0.id FROM orders t0
//	WHERE (t0.status = ? AND EXISTS (SELECT 1 FROM customers t1 WHERE t1.id = t0.customer_id AND t1.name = ?))
//
// Bindings map source fields to result names. Empty bindings select the key column only.
type Select struct {
	From     string            // Table/source name (e.g., "orders")
	Filter   Predicate         // WHERE conditions (nil = no filter)
	Bindings map[string]string // source_field → result name
}

func (Select) queryNode() {}

// AlwaysTrue is satisfied by every entity.
//
// Translates to SQL:
//
//	1 = 1
type AlwaysTrue struct{}

func (AlwaysTrue) predicateNode() {}

// Compare represents a field-versus-literal comparison.
//
// Semantics:
//
//	<field> <op> <value>
//
// Example:
//
//	Compare{Field: "price", Op: OpGt, Value: ir.IRInt(100)}
//
// Translates to SQL:
//
//	price > ?
//
// Comparing to IRNull is only meaningful with OpEq/OpNe (IS NULL / IS NOT NULL).
type Compare struct {
	Field string     // Field name on the current entity
	Op    Op         // Comparison operator
	Value ir.IRValue // Literal value (constrained to IRValue types)
}

func (Compare) predicateNode() {}

// Opaque is a leaf whose condition exists only as Go code.
//
// It evaluates in memory but carries no structure a translator could use.
// Validate reports every Opaque leaf, and querysql refuses to compile one.
type Opaque struct {
	Name string // Human-readable label for diagnostics
}

func (Opaque) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
//
// Empty Predicates means "always true" (vacuous truth).
// Binary spec.And nodes describe themselves as an And with two predicates.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or represents a disjunction of predicates (at least one must be true).
//
// Empty Predicates means "always false".
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Not negates a single predicate.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// Composed navigates from the current entity to a single, optional related
// entity named by Path and applies Predicate to it.
//
// Semantics:
//
//	related(Path) is present AND Predicate(related(Path))
//
// An absent related entity makes Composed false, whatever Predicate is.
//
// Translates to SQL (relation metadata comes from the translator's schema):
//
//	EXISTS (SELECT 1 FROM customers t1 WHERE t1.id = t0.customer_id AND <predicate>)
type Composed struct {
	Path      string    // Relation name on the current entity (e.g., "customer")
	Predicate Predicate // Condition over the related entity
}

func (Composed) predicateNode() {}

// Any is an existential quantifier over a related collection named by Path.
//
// Semantics:
//
//	EXISTS c IN related(Path): Predicate(c)
//
// An empty collection makes Any false.
//
// Translates to SQL:
//
//	EXISTS (SELECT 1 FROM items t1 WHERE t1.order_id = t0.id AND <predicate>)
type Any struct {
	Path      string    // Relation name on the current entity (e.g., "items")
	Predicate Predicate // Condition over one element of the collection
}

func (Any) predicateNode() {}

// DerivedToBase guards Predicate with a runtime subtype check.
//
// Semantics:
//
//	typeof(entity) == Type AND Predicate(entity as Type)
//
// Type carries the subtype name so a translator can emit the equivalent
// discriminator check:
//
//	(kind = 'Dog' AND <predicate>)
type DerivedToBase struct {
	Type      string    // Subtype name (e.g., "Dog")
	Predicate Predicate // Condition over the narrowed entity
}

func (DerivedToBase) predicateNode() {}
