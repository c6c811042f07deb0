package querysql

import (
	"fmt"
	"regexp"
	"slices"
)

// Schema describes the tables a compiler may reference, keyed by table name.
type Schema map[string]Table

// Table carries the metadata needed to translate predicates over one table.
type Table struct {
	// Key is the primary key column. Every select orders by it.
	Key string

	// Discriminator names the column holding the subtype name for
	// single-table inheritance. Empty when the table has no subtypes.
	Discriminator string

	// Nullable lists columns that may hold NULL. Comparisons on them are
	// guarded so NOT keeps two-valued semantics.
	Nullable []string

	// Relations maps a relation path (as used by Composed and Any) to the
	// related table.
	Relations map[string]Relation
}

// Relation links a row of the owning table to rows of Table where
// Table.ForeignKey = owner.LocalKey.
//
// A to-one relation (order -> customer) is {customers, customer_id, id}.
// A to-many relation (order -> items) is {items, id, order_id}.
type Relation struct {
	Table      string
	LocalKey   string
	ForeignKey string
}

func (t Table) nullable(column string) bool {
	return slices.Contains(t.Nullable, column)
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validIdentifier reports whether name is safe to splice into SQL text.
func validIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Validate checks that every table, key and relation in the schema is
// well formed and that every relation points at a known table.
func (s Schema) Validate() error {
	for name, table := range s {
		if !validIdentifier(name) {
			return fmt.Errorf("table %q: invalid identifier", name)
		}
		if !validIdentifier(table.Key) {
			return fmt.Errorf("table %q: invalid key %q", name, table.Key)
		}
		if table.Discriminator != "" && !validIdentifier(table.Discriminator) {
			return fmt.Errorf("table %q: invalid discriminator %q", name, table.Discriminator)
		}
		for path, rel := range table.Relations {
			if _, ok := s[rel.Table]; !ok {
				return fmt.Errorf("table %q relation %q: unknown table %q", name, path, rel.Table)
			}
			if !validIdentifier(rel.LocalKey) || !validIdentifier(rel.ForeignKey) {
				return fmt.Errorf("table %q relation %q: invalid key columns", name, path)
			}
		}
	}
	return nil
}
