package querysql

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specbench/internal/ir"
	"github.com/roach88/specbench/internal/queryir"
)

func testSchema() Schema {
	return Schema{
		"orders": {
			Key:      "id",
			Nullable: []string{"customer_id"},
			Relations: map[string]Relation{
				"customer": {Table: "customers", LocalKey: "customer_id", ForeignKey: "id"},
				"items":    {Table: "items", LocalKey: "id", ForeignKey: "order_id"},
			},
		},
		"customers": {Key: "id"},
		"items":     {Key: "id"},
		"animals": {
			Key:           "id",
			Discriminator: "kind",
			Nullable:      []string{"breed", "indoor"},
		},
	}
}

func eq(field string, v ir.IRValue) queryir.Compare {
	return queryir.Compare{Field: field, Op: queryir.OpEq, Value: v}
}

func TestSchema_Validate(t *testing.T) {
	require.NoError(t, testSchema().Validate())

	broken := testSchema()
	broken["orders"].Relations["ghost"] = Relation{Table: "ghosts", LocalKey: "id", ForeignKey: "order_id"}
	err := broken.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghosts")

	assert.Error(t, Schema{"bad name": {Key: "id"}}.Validate())
	assert.Error(t, Schema{"t": {Key: "id; DROP"}}.Validate())
}

func TestCompile_GoldenSQL(t *testing.T) {
	compiler := NewSQLCompiler(testSchema())

	testCases := []struct {
		name  string
		query queryir.Query
	}{
		{
			name: "scenario_a_paid_orders_of_alice",
			query: queryir.Select{
				From: "orders",
				Filter: queryir.And{Predicates: []queryir.Predicate{
					eq("status", ir.IRString("PAID")),
					queryir.Composed{Path: "customer", Predicate: eq("name", ir.IRString("Alice"))},
				}},
			},
		},
		{
			name: "scenario_b_orders_with_expensive_item",
			query: queryir.Select{
				From: "orders",
				Filter: queryir.Any{Path: "items", Predicate: queryir.Compare{
					Field: "price", Op: queryir.OpGt, Value: ir.IRInt(100),
				}},
			},
		},
		{
			name: "scenario_c_husky_animals",
			query: queryir.Select{
				From:   "animals",
				Filter: queryir.DerivedToBase{Type: "Dog", Predicate: eq("breed", ir.IRString("Husky"))},
			},
		},
		{
			name: "nested_aliases",
			query: queryir.Select{
				From:     "orders",
				Bindings: map[string]string{"total": "amount", "id": "id"},
				Filter: queryir.Or{Predicates: []queryir.Predicate{
					eq("customer_id", ir.IRNull{}),
					queryir.Not{Predicate: queryir.Any{Path: "items", Predicate: queryir.And{Predicates: []queryir.Predicate{
						eq("sku", ir.IRString("A")),
						queryir.Compare{Field: "quantity", Op: queryir.OpGe, Value: ir.IRInt(2)},
					}}}},
					queryir.Any{Path: "items", Predicate: queryir.Compare{
						Field: "price", Op: queryir.OpLt, Value: ir.IRInt(5),
					}},
				}},
			},
		},
		{
			name: "empty_junctions",
			query: queryir.Select{
				From: "orders",
				Filter: queryir.And{Predicates: []queryir.Predicate{
					queryir.Or{},
					queryir.AlwaysTrue{},
				}},
			},
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, params, err := compiler.Compile(tc.query)
			require.NoError(t, err)

			g.Assert(t, tc.name, []byte(renderCompiled(t, sql, params)))
		})
	}
}

func renderCompiled(t *testing.T, sql string, params []any) string {
	t.Helper()
	b, err := json.Marshal(append([]any{}, params...))
	require.NoError(t, err)
	return fmt.Sprintf("%s\n-- params: %s\n", sql, b)
}

func TestCompile_NoStringInterpolation(t *testing.T) {
	compiler := NewSQLCompiler(testSchema())

	malicious := "'; DROP TABLE orders; --"
	sql, params, err := compiler.Compile(queryir.Select{
		From:   "orders",
		Filter: eq("status", ir.IRString(malicious)),
	})
	require.NoError(t, err)

	assert.NotContains(t, sql, "DROP")
	assert.Equal(t, []any{malicious}, params)
}

func TestCompile_OrderByMandatory(t *testing.T) {
	compiler := NewSQLCompiler(testSchema())

	for _, from := range []string{"orders", "customers", "items", "animals"} {
		t.Run(from, func(t *testing.T) {
			sql, _, err := compiler.Compile(queryir.Select{From: from})
			require.NoError(t, err)
			assert.Equal(t, "SELECT t0.id FROM "+from+" t0 ORDER BY t0.id COLLATE BINARY ASC", sql)
		})
	}
}

func TestCompile_SelectPointer(t *testing.T) {
	compiler := NewSQLCompiler(testSchema())

	sql, params, err := compiler.Compile(&queryir.Select{
		From:   "customers",
		Filter: &queryir.Compare{Field: "tier", Op: queryir.OpNe, Value: ir.IRString("gold")},
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT t0.id FROM customers t0 WHERE t0.tier <> ? ORDER BY t0.id COLLATE BINARY ASC", sql)
	assert.Equal(t, []any{"gold"}, params)
}

func TestCompile_Operators(t *testing.T) {
	compiler := NewSQLCompiler(testSchema())

	want := map[queryir.Op]string{
		queryir.OpEq: "t0.total = ?",
		queryir.OpNe: "t0.total <> ?",
		queryir.OpGt: "t0.total > ?",
		queryir.OpGe: "t0.total >= ?",
		queryir.OpLt: "t0.total < ?",
		queryir.OpLe: "t0.total <= ?",
	}
	for _, op := range queryir.Ops {
		t.Run(string(op), func(t *testing.T) {
			sql, params, err := compiler.CompilePredicate("orders",
				queryir.Compare{Field: "total", Op: op, Value: ir.IRInt(10)})
			require.NoError(t, err)
			assert.Equal(t, want[op], sql)
			assert.Equal(t, []any{int64(10)}, params)
		})
	}
}

func TestCompile_NullComparisons(t *testing.T) {
	compiler := NewSQLCompiler(testSchema())

	sql, params, err := compiler.CompilePredicate("orders", eq("customer_id", ir.IRNull{}))
	require.NoError(t, err)
	assert.Equal(t, "t0.customer_id IS NULL", sql)
	assert.Empty(t, params)

	sql, _, err = compiler.CompilePredicate("orders",
		queryir.Compare{Field: "customer_id", Op: queryir.OpNe, Value: ir.IRNull{}})
	require.NoError(t, err)
	assert.Equal(t, "t0.customer_id IS NOT NULL", sql)

	_, _, err = compiler.CompilePredicate("orders",
		queryir.Compare{Field: "customer_id", Op: queryir.OpGt, Value: ir.IRNull{}})
	assert.True(t, IsTranslateError(err, CodeUnsupported))
}

func TestCompile_NullableColumnGuarded(t *testing.T) {
	compiler := NewSQLCompiler(testSchema())

	sql, _, err := compiler.CompilePredicate("orders",
		queryir.Not{Predicate: eq("customer_id", ir.IRString("c1"))})
	require.NoError(t, err)
	assert.Equal(t, "NOT ((t0.customer_id IS NOT NULL AND t0.customer_id = ?))", sql)
}

func TestCompile_Errors(t *testing.T) {
	compiler := NewSQLCompiler(testSchema())

	testCases := []struct {
		name     string
		table    string
		pred     queryir.Predicate
		wantCode string
		wantPath string
	}{
		{
			name:     "opaque leaf",
			table:    "orders",
			pred:     queryir.And{Predicates: []queryir.Predicate{queryir.AlwaysTrue{}, queryir.Opaque{Name: "custom"}}},
			wantCode: CodeOpaque,
			wantPath: "$.and[1]",
		},
		{
			name:     "unknown relation",
			table:    "orders",
			pred:     queryir.Any{Path: "payments", Predicate: queryir.AlwaysTrue{}},
			wantCode: CodeUnknownRelation,
			wantPath: "$.any(payments)",
		},
		{
			name:     "no discriminator",
			table:    "orders",
			pred:     queryir.DerivedToBase{Type: "Dog", Predicate: queryir.AlwaysTrue{}},
			wantCode: CodeNoDiscriminator,
			wantPath: "$",
		},
		{
			name:     "invalid field",
			table:    "orders",
			pred:     eq("status = 1 OR 1", ir.IRString("x")),
			wantCode: CodeInvalidIdentifier,
			wantPath: "$",
		},
		{
			name:     "non-scalar value",
			table:    "orders",
			pred:     eq("status", ir.IRArray{ir.IRString("x")}),
			wantCode: CodeUnsupported,
			wantPath: "$",
		},
		{
			name:     "unknown operator",
			table:    "orders",
			pred:     queryir.Compare{Field: "total", Op: "like", Value: ir.IRInt(1)},
			wantCode: CodeUnsupported,
			wantPath: "$",
		},
		{
			name:     "nested opaque inside relation",
			table:    "orders",
			pred:     queryir.Composed{Path: "customer", Predicate: queryir.Not{Predicate: queryir.Opaque{Name: "vip"}}},
			wantCode: CodeOpaque,
			wantPath: "$.compose(customer).not",
		},
		{
			name:     "nil predicate",
			table:    "orders",
			pred:     queryir.Not{},
			wantCode: CodeUnsupported,
			wantPath: "$.not",
		},
		{
			name:     "unknown table",
			table:    "ghosts",
			pred:     queryir.AlwaysTrue{},
			wantCode: CodeUnknownTable,
			wantPath: "$",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := compiler.CompilePredicate(tc.table, tc.pred)
			require.Error(t, err)

			var te *TranslateError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tc.wantCode, te.Code)
			assert.Equal(t, tc.wantPath, te.Path)
		})
	}
}

func TestCompile_FilterErrorWrapped(t *testing.T) {
	compiler := NewSQLCompiler(testSchema())

	_, _, err := compiler.Compile(queryir.Select{From: "orders", Filter: queryir.Opaque{Name: "custom"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile filter")
	assert.Contains(t, err.Error(), "$.filter")
	assert.True(t, IsTranslateError(err, CodeOpaque))
	assert.True(t, IsTranslateError(err, ""))
}

func TestCompile_NilAndUnknownQuery(t *testing.T) {
	compiler := NewSQLCompiler(testSchema())

	_, _, err := compiler.Compile(nil)
	assert.Error(t, err)

	var nilSelect *queryir.Select
	_, _, err = compiler.Compile(nilSelect)
	assert.Error(t, err)

	_, _, err = compiler.Compile(queryir.Select{From: "ghosts"})
	assert.True(t, IsTranslateError(err, CodeUnknownTable))
}

func TestCompile_BindingsDeterministicOrder(t *testing.T) {
	compiler := NewSQLCompiler(testSchema())

	query := queryir.Select{
		From:     "orders",
		Bindings: map[string]string{"total": "total", "status": "state", "id": "id"},
	}

	first, _, err := compiler.Compile(query)
	require.NoError(t, err)
	for range 10 {
		again, _, err := compiler.Compile(query)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, "SELECT t0.id, t0.status AS state, t0.total FROM orders t0 ORDER BY t0.id COLLATE BINARY ASC", first)

	_, _, err = compiler.Compile(queryir.Select{From: "orders", Bindings: map[string]string{"id": "x y"}})
	assert.True(t, IsTranslateError(err, CodeInvalidIdentifier))
}

func TestCompile_BoolParam(t *testing.T) {
	compiler := NewSQLCompiler(testSchema())

	sql, params, err := compiler.CompilePredicate("animals",
		queryir.DerivedToBase{Type: "Cat", Predicate: eq("indoor", ir.IRBool(true))})
	require.NoError(t, err)
	assert.Equal(t, "(t0.kind = ? AND (t0.indoor IS NOT NULL AND t0.indoor = ?))", sql)
	assert.Equal(t, []any{"Cat", true}, params)
}
