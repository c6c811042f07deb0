package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specbench/internal/ir"
	"github.com/roach88/specbench/internal/queryir"
)

func eq(field string, v ir.IRValue) queryir.Compare {
	return queryir.Compare{Field: field, Op: queryir.OpEq, Value: v}
}

func TestLoad_TestdataFile(t *testing.T) {
	cat, err := Load(filepath.Join("testdata", "filters.cue"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"expensive_item",
		"gold_itemless_or_large",
		"huskies",
		"indoor_cats",
		"no_customer",
		"paid_by_alice",
	}, cat.Names())

	testCases := []struct {
		name   string
		entity string
		want   queryir.Predicate
	}{
		{
			name:   "paid_by_alice",
			entity: EntityOrder,
			want: queryir.And{Predicates: []queryir.Predicate{
				eq("status", ir.IRString("PAID")),
				queryir.Composed{Path: "customer", Predicate: eq("name", ir.IRString("Alice"))},
			}},
		},
		{
			name:   "expensive_item",
			entity: EntityOrder,
			want: queryir.Any{Path: "items", Predicate: queryir.Compare{
				Field: "price", Op: queryir.OpGt, Value: ir.IRInt(100),
			}},
		},
		{
			name:   "huskies",
			entity: EntityAnimal,
			want:   queryir.DerivedToBase{Type: "Dog", Predicate: eq("breed", ir.IRString("Husky"))},
		},
		{
			name:   "no_customer",
			entity: EntityOrder,
			want:   eq("customer_id", ir.IRNull{}),
		},
		{
			name:   "gold_itemless_or_large",
			entity: EntityOrder,
			want: queryir.Or{Predicates: []queryir.Predicate{
				queryir.Composed{Path: "customer", Predicate: eq("tier", ir.IRString("gold"))},
				queryir.Not{Predicate: queryir.Any{Path: "items", Predicate: queryir.AlwaysTrue{}}},
				queryir.Compare{Field: "total", Op: queryir.OpGe, Value: ir.IRInt(1000)},
			}},
		},
		{
			name:   "indoor_cats",
			entity: EntityAnimal,
			want:   queryir.DerivedToBase{Type: "Cat", Predicate: eq("indoor", ir.IRBool(true))},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			def, err := cat.Lookup(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.entity, def.Entity)
			if diff := cmp.Diff(tc.want, def.Where); diff != "" {
				t.Errorf("structural form mismatch (-want +got):\n%s", diff)
			}
		})
	}

	require.NoError(t, Validate(cat))
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	src, err := os.ReadFile(filepath.Join("testdata", "filters.cue"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "filters.cue"), src, 0o644))

	cat, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, cat.Definitions, 6)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.cue"))
	assert.Error(t, err)
}

func TestLookup_UnknownFilter(t *testing.T) {
	cat := &Catalog{}
	_, err := cat.Lookup("ghost")
	assert.True(t, IsDefinitionError(err, ErrCodeUnknownFilter))
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		wantCode string
		wantPath string
	}{
		{
			name:     "syntax error",
			src:      `filters: {`,
			wantCode: ErrCodeCUE,
		},
		{
			name:     "no filters",
			src:      `other: 1`,
			wantCode: ErrCodeNoFilters,
			wantPath: "filters",
		},
		{
			name:     "missing entity",
			src:      `filters: f: where: always: true`,
			wantCode: ErrCodeMissingField,
			wantPath: "filters.f.entity",
		},
		{
			name:     "missing where",
			src:      `filters: f: entity: "order"`,
			wantCode: ErrCodeMissingField,
			wantPath: "filters.f.where",
		},
		{
			name:     "two forms",
			src:      `filters: f: {entity: "order", where: {always: true, not: {always: true}}}`,
			wantCode: ErrCodeInvalidExpr,
			wantPath: "filters.f.where",
		},
		{
			name:     "no form",
			src:      `filters: f: {entity: "order", where: {op: "eq"}}`,
			wantCode: ErrCodeInvalidExpr,
			wantPath: "filters.f.where",
		},
		{
			name:     "not a struct",
			src:      `filters: f: {entity: "order", where: and: [1]}`,
			wantCode: ErrCodeInvalidExpr,
			wantPath: "filters.f.where.and[0]",
		},
		{
			name:     "bad operator",
			src:      `filters: f: {entity: "order", where: {field: "total", op: "like", value: 1}}`,
			wantCode: ErrCodeInvalidOp,
			wantPath: "filters.f.where.op",
		},
		{
			name:     "float value",
			src:      `filters: f: {entity: "order", where: {field: "total", op: "gt", value: 1.5}}`,
			wantCode: ErrCodeInvalidValue,
			wantPath: "filters.f.where.value",
		},
		{
			name:     "ordered null",
			src:      `filters: f: {entity: "order", where: {field: "customer_id", op: "lt", value: null}}`,
			wantCode: ErrCodeInvalidValue,
			wantPath: "filters.f.where.value",
		},
		{
			name:     "missing value",
			src:      `filters: f: {entity: "order", where: {field: "total"}}`,
			wantCode: ErrCodeMissingField,
			wantPath: "filters.f.where.value",
		},
		{
			name:     "compose without where",
			src:      `filters: f: {entity: "order", where: {compose: "customer"}}`,
			wantCode: ErrCodeMissingField,
			wantPath: "filters.f.where.where",
		},
		{
			name:     "empty relation path",
			src:      `filters: f: {entity: "order", where: {any: "", where: {always: true}}}`,
			wantCode: ErrCodeInvalidExpr,
			wantPath: "filters.f.where.any",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse("test.cue", []byte(tc.src))
			require.Error(t, err)

			var de *DefinitionError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tc.wantCode, de.Code, de.Error())
			if tc.wantPath != "" {
				assert.Equal(t, tc.wantPath, de.Path)
			}
		})
	}
}

func TestParse_CollectsAllErrors(t *testing.T) {
	src := `filters: {
	a: {entity: "order"}
	b: {entity: "order", where: {always: true}}
	c: {where: {always: true}}
}`
	_, err := Parse("test.cue", []byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filters.a.where")
	assert.Contains(t, err.Error(), "filters.c.entity")
}

func TestParse_Shapes(t *testing.T) {
	testCases := []struct {
		name  string
		where string
		want  queryir.Predicate
	}{
		{"default op is eq", `{field: "status", value: "PAID"}`, eq("status", ir.IRString("PAID"))},
		{"empty and", `{and: []}`, queryir.And{Predicates: []queryir.Predicate{}}},
		{"empty or", `{or: []}`, queryir.Or{Predicates: []queryir.Predicate{}}},
		{"always false", `{always: false}`, queryir.Not{Predicate: queryir.AlwaysTrue{}}},
		{"not", `{not: {always: true}}`, queryir.Not{Predicate: queryir.AlwaysTrue{}}},
		{"ne null", `{field: "customer_id", op: "ne", value: null}`,
			queryir.Compare{Field: "customer_id", Op: queryir.OpNe, Value: ir.IRNull{}}},
		{"bool", `{field: "indoor", value: false}`, eq("indoor", ir.IRBool(false))},
		{"cue arithmetic", `{field: "total", op: "le", value: 10 * 100}`,
			queryir.Compare{Field: "total", Op: queryir.OpLe, Value: ir.IRInt(1000)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := `filters: f: {entity: "order", where: ` + tc.where + `}`
			cat, err := Parse("test.cue", []byte(src))
			require.NoError(t, err)
			require.Len(t, cat.Definitions, 1)
			if diff := cmp.Diff(tc.want, cat.Definitions[0].Where); diff != "" {
				t.Errorf("structural form mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefinitionError_Position(t *testing.T) {
	_, err := Parse("pos.cue", []byte("filters: f: {\n\tentity: \"order\"\n\twhere: {field: \"total\", op: \"bad\", value: 1}\n}\n"))
	require.Error(t, err)

	var de *DefinitionError
	require.ErrorAs(t, err, &de)
	assert.True(t, de.Pos.IsValid())
	assert.Contains(t, de.Error(), "pos.cue:3:")
}

func TestDefinition_Query(t *testing.T) {
	def := Definition{Name: "x", Entity: EntityAnimal, Where: queryir.AlwaysTrue{}}
	assert.Equal(t, queryir.Select{From: "animals", Filter: queryir.AlwaysTrue{}}, def.Query())
}
