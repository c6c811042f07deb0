package querysql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/specbench/internal/ir"
	"github.com/roach88/specbench/internal/queryir"
)

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// CRITICAL: ALL queries include ORDER BY on the table key for deterministic results.
// CRITICAL: All values are parameterized (never interpolated).
type SQLCompiler struct {
	// Schema resolves table keys, discriminators and relation paths.
	Schema Schema
}

// NewSQLCompiler creates a new SQLCompiler over schema.
func NewSQLCompiler(schema Schema) *SQLCompiler {
	return &SQLCompiler{Schema: schema}
}

// Compile converts a QueryIR query to parameterized SQL.
// Returns (sql, params, error) tuple.
//
// Tables are aliased t0 for the outer select and t1, t2, ... for each
// correlated subquery, numbered in the order they appear in the SQL text.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	switch query := q.(type) {
	case nil:
		return "", nil, fmt.Errorf("cannot compile nil query")
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		if query == nil {
			return "", nil, fmt.Errorf("cannot compile nil query")
		}
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// CompilePredicate translates a bare predicate evaluated against table,
// aliased t0. It is what Compile uses for the WHERE clause.
func (c *SQLCompiler) CompilePredicate(table string, p queryir.Predicate) (string, []any, error) {
	t, ok := c.Schema[table]
	if !ok {
		return "", nil, translateErr(CodeUnknownTable, "$", "unknown table %q", table)
	}
	st := &compileState{}
	sql, err := c.compilePredicate(st, p, t, "t0", "$")
	if err != nil {
		return "", nil, err
	}
	return sql, st.params, nil
}

// compileState threads alias numbering and collected parameters through
// one compilation.
type compileState struct {
	aliases int
	params  []any
}

func (st *compileState) nextAlias() string {
	st.aliases++
	return fmt.Sprintf("t%d", st.aliases)
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	table, ok := c.Schema[q.From]
	if !ok {
		return "", nil, translateErr(CodeUnknownTable, "$", "unknown table %q", q.From)
	}

	selectClause, err := compileBindings(q.Bindings, table)
	if err != nil {
		return "", nil, err
	}

	st := &compileState{}
	var whereClause string
	if q.Filter != nil {
		filterSQL, err := c.compilePredicate(st, q.Filter, table, "t0", "$.filter")
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
	}

	// MANDATORY: Always add ORDER BY
	orderByClause := " ORDER BY " + stableOrderKey(table)

	sql := fmt.Sprintf("SELECT %s FROM %s t0%s%s",
		selectClause,
		q.From,
		whereClause,
		orderByClause)

	return sql, st.params, nil
}

// compileBindings converts bindings map to SELECT column list.
// Example: {"name": "label"} → "t0.name AS label"
// Keys are sorted for deterministic output. Empty bindings select the key.
func compileBindings(bindings map[string]string, table Table) (string, error) {
	if len(bindings) == 0 {
		return "t0." + table.Key, nil
	}

	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, sourceField := range keys {
		alias := bindings[sourceField]
		if !validIdentifier(sourceField) || !validIdentifier(alias) {
			return "", translateErr(CodeInvalidIdentifier, "$.bindings",
				"invalid binding %q -> %q", sourceField, alias)
		}
		if sourceField == alias {
			parts = append(parts, "t0."+sourceField)
		} else {
			parts = append(parts, fmt.Sprintf("t0.%s AS %s", sourceField, alias))
		}
	}
	return strings.Join(parts, ", "), nil
}

// stableOrderKey returns the ORDER BY clause for a select.
// COLLATE BINARY ensures deterministic text ordering across SQLite versions.
func stableOrderKey(table Table) string {
	return "t0." + table.Key + " COLLATE BINARY ASC"
}

// compilePredicate compiles p, evaluated against table under alias, to a SQL
// condition. path locates p for error reporting.
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(st *compileState, p queryir.Predicate, table Table, alias, path string) (string, error) {
	switch pred := queryir.Deref(p).(type) {
	case nil:
		return "", translateErr(CodeUnsupported, path, "nil predicate")
	case queryir.AlwaysTrue:
		return "1 = 1", nil
	case queryir.Compare:
		return compileCompare(st, pred, table, alias, path)
	case queryir.Opaque:
		return "", translateErr(CodeOpaque, path, "opaque predicate %q has no SQL form", pred.Name)
	case queryir.And:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil // vacuous truth
		}
		return c.compileJunction(st, pred.Predicates, " AND ", table, alias, path+".and")
	case queryir.Or:
		if len(pred.Predicates) == 0 {
			return "1 = 0", nil
		}
		return c.compileJunction(st, pred.Predicates, " OR ", table, alias, path+".or")
	case queryir.Not:
		inner, err := c.compilePredicate(st, pred.Predicate, table, alias, path+".not")
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case queryir.Composed:
		return c.compileExists(st, pred.Path, pred.Predicate, table, alias, path+".compose("+pred.Path+")")
	case queryir.Any:
		return c.compileExists(st, pred.Path, pred.Predicate, table, alias, path+".any("+pred.Path+")")
	case queryir.DerivedToBase:
		return c.compileDerivedToBase(st, pred, table, alias, path)
	default:
		return "", translateErr(CodeUnsupported, path, "unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileJunction(st *compileState, preds []queryir.Predicate, sep string, table Table, alias, path string) (string, error) {
	parts := make([]string, 0, len(preds))
	for i, sub := range preds {
		sql, err := c.compilePredicate(st, sub, table, alias, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

var sqlOps = map[queryir.Op]string{
	queryir.OpEq: "=",
	queryir.OpNe: "<>",
	queryir.OpGt: ">",
	queryir.OpGe: ">=",
	queryir.OpLt: "<",
	queryir.OpLe: "<=",
}

// compileCompare compiles a Compare leaf.
//
// Null literals become IS NULL / IS NOT NULL. Comparisons on nullable
// columns are guarded with IS NOT NULL so a NULL column yields false rather
// than unknown, matching in-memory evaluation under NOT.
func compileCompare(st *compileState, cmp queryir.Compare, table Table, alias, path string) (string, error) {
	if !validIdentifier(cmp.Field) {
		return "", translateErr(CodeInvalidIdentifier, path, "invalid field name %q", cmp.Field)
	}
	sqlOp, ok := sqlOps[cmp.Op]
	if !ok {
		return "", translateErr(CodeUnsupported, path, "unknown operator %q", cmp.Op)
	}
	column := alias + "." + cmp.Field

	if _, isNull := cmp.Value.(ir.IRNull); isNull {
		switch cmp.Op {
		case queryir.OpEq:
			return column + " IS NULL", nil
		case queryir.OpNe:
			return column + " IS NOT NULL", nil
		default:
			return "", translateErr(CodeUnsupported, path, "field %q ordered against null", cmp.Field)
		}
	}

	param, err := ir.ToParam(cmp.Value)
	if err != nil {
		return "", translateErr(CodeUnsupported, path, "field %q: %v", cmp.Field, err)
	}
	st.params = append(st.params, param)

	sql := fmt.Sprintf("%s %s ?", column, sqlOp)
	if table.nullable(cmp.Field) {
		sql = fmt.Sprintf("(%s IS NOT NULL AND %s)", column, sql)
	}
	return sql, nil
}

// compileExists compiles a relation traversal to a correlated EXISTS
// subquery. A missing related row, or an empty collection, makes it false.
func (c *SQLCompiler) compileExists(st *compileState, relPath string, child queryir.Predicate, table Table, alias, path string) (string, error) {
	rel, ok := table.Relations[relPath]
	if !ok {
		return "", translateErr(CodeUnknownRelation, path, "unknown relation %q", relPath)
	}
	target, ok := c.Schema[rel.Table]
	if !ok {
		return "", translateErr(CodeUnknownTable, path, "relation %q targets unknown table %q", relPath, rel.Table)
	}

	sub := st.nextAlias()
	inner, err := c.compilePredicate(st, child, target, sub, path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM %s %s WHERE %s.%s = %s.%s AND %s)",
		rel.Table, sub, sub, rel.ForeignKey, alias, rel.LocalKey, inner), nil
}

// compileDerivedToBase compiles a subtype guard to a discriminator check.
func (c *SQLCompiler) compileDerivedToBase(st *compileState, d queryir.DerivedToBase, table Table, alias, path string) (string, error) {
	if table.Discriminator == "" {
		return "", translateErr(CodeNoDiscriminator, path, "table has no discriminator for subtype %q", d.Type)
	}
	st.params = append(st.params, d.Type)
	inner, err := c.compilePredicate(st, d.Predicate, table, alias, path+".as("+d.Type+")")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s.%s = ? AND %s)", alias, table.Discriminator, inner), nil
}
