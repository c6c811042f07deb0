package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/specbench/internal/queryir"
	"github.com/roach88/specbench/internal/querysql"
)

// Schema describes the tables of schema.sql to the SQL translator.
var Schema = querysql.Schema{
	"customers": {Key: "id"},
	"orders": {
		Key:      "id",
		Nullable: []string{"customer_id"},
		Relations: map[string]querysql.Relation{
			"customer": {Table: "customers", LocalKey: "customer_id", ForeignKey: "id"},
			"items":    {Table: "items", LocalKey: "id", ForeignKey: "order_id"},
		},
	},
	"items": {Key: "id"},
	"animals": {
		Key:           "id",
		Discriminator: "kind",
		Nullable:      []string{"breed", "indoor"},
	},
	"blogs": {Key: "id"},
}

// Query is an unexecuted, narrowable selection of one table's keys.
//
// Query is a value: Where returns a new Query and never modifies the
// receiver, so a base query can be narrowed in several directions.
type Query struct {
	table   string
	filters []queryir.Predicate
}

// From starts a query over table.
func From(table string) Query {
	return Query{table: table}
}

// Where narrows q by a structural predicate.
func (q Query) Where(p queryir.Predicate) Query {
	return Query{
		table:   q.table,
		filters: append(slices.Clip(q.filters), p),
	}
}

// Table returns the table the query selects from.
func (q Query) Table() string { return q.table }

// Filters returns the predicates accumulated by Where, in order.
func (q Query) Filters() []queryir.Predicate { return slices.Clone(q.filters) }

// Filter folds the accumulated predicates into one: nil when there are none,
// the predicate itself when there is one, an And otherwise.
func (q Query) Filter() queryir.Predicate {
	switch len(q.filters) {
	case 0:
		return nil
	case 1:
		return q.filters[0]
	default:
		return queryir.And{Predicates: slices.Clone(q.filters)}
	}
}

// Select returns the QueryIR form of q.
func (q Query) Select() queryir.Select {
	return queryir.Select{From: q.table, Filter: q.Filter()}
}

// SQL compiles q against Schema without executing it.
func (q Query) SQL() (string, []any, error) {
	return querysql.NewSQLCompiler(Schema).Compile(q.Select())
}

// FindIDs executes q and returns the matching keys in key order.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) FindIDs(ctx context.Context, q Query) ([]string, error) {
	sqlText, params, err := q.SQL()
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", q.table, err)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", q.table, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", q.table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", q.table, err)
	}
	return ids, nil
}

// Count returns the number of rows matching q.
func (s *Store) Count(ctx context.Context, q Query) (int, error) {
	ids, err := s.FindIDs(ctx, q)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
