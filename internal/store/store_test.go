package store

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.FileExists(t, path)
	for _, table := range []string{"customers", "orders", "items", "animals", "blogs"} {
		assert.Contains(t, tableNames(t, s.db), table)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := range 3 {
		s, err := Open(path)
		require.NoError(t, err, "open #%d", i)

		v, err := s.Version(context.Background())
		require.NoError(t, err)
		assert.Equal(t, SchemaVersion, v, "open #%d", i)
		require.NoError(t, s.Close())
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	defer s.Close()

	mustExec(t, s.db, `INSERT INTO blogs (id, name, url, rating) VALUES ('b1', 'Blog1', 'blog1.blogs.net', 1)`)

	// A second statement must land on the same connection and see the row.
	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM blogs`).Scan(&n))
	assert.Equal(t, 1, n)

	mode, err := s.pragmaValue("journal_mode")
	require.NoError(t, err)
	assert.Equal(t, "memory", mode)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	assert.Error(t, err)
}

func TestOpen_LogsMigrations(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, err := Open(filepath.Join(t.TempDir(), "test.db"), WithLogger(logger))
	require.NoError(t, err)
	defer s.Close()

	for _, m := range migrations {
		assert.Contains(t, buf.String(), m.name)
	}
}

func TestClose(t *testing.T) {
	assert.NoError(t, (&Store{}).Close())

	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.NotPanics(t, func() { _ = s.Close() })
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	for _, p := range filePragmas {
		t.Run(p.name, func(t *testing.T) {
			got, err := s.pragmaValue(p.name)
			require.NoError(t, err)
			assert.Equal(t, p.expect, got)
		})
	}
}

func TestSchema_Tables(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		table string
		want  []string
	}{
		{"customers", []string{"id", "name", "email", "tier"}},
		{"orders", []string{"id", "status", "total", "customer_id"}},
		{"items", []string{"id", "order_id", "sku", "price", "quantity"}},
		{"animals", []string{"id", "kind", "name", "breed", "indoor"}},
		{"blogs", []string{"id", "name", "url", "rating"}},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			assert.Equal(t, tt.want, tableColumns(t, s.db, tt.table))
		})
	}
}

func TestSchema_MatchesTranslatorSchema(t *testing.T) {
	require.NoError(t, Schema.Validate())

	s := createTestStore(t)
	for table, meta := range Schema {
		columns := tableColumns(t, s.db, table)
		assert.Contains(t, columns, meta.Key, "table %s key", table)
		if meta.Discriminator != "" {
			assert.Contains(t, columns, meta.Discriminator, "table %s discriminator", table)
		}
		for _, col := range meta.Nullable {
			assert.Contains(t, columns, col, "table %s nullable column", table)
		}
		for path, rel := range meta.Relations {
			assert.Contains(t, columns, rel.LocalKey, "relation %s.%s local key", table, path)
			assert.Contains(t, tableColumns(t, s.db, rel.Table), rel.ForeignKey,
				"relation %s.%s foreign key", table, path)
		}
	}
}

func TestConstraints(t *testing.T) {
	s := createTestStore(t)

	t.Run("order references unknown customer", func(t *testing.T) {
		_, err := s.db.Exec(`INSERT INTO orders (id, status, total, customer_id) VALUES ('ox', 'PAID', 10, 'missing')`)
		assert.Error(t, err)
	})

	t.Run("animal kind is checked", func(t *testing.T) {
		_, err := s.db.Exec(`INSERT INTO animals (id, kind, name) VALUES ('ax', 'Fish', 'Nemo')`)
		assert.Error(t, err)
	})

	t.Run("items cascade with their order", func(t *testing.T) {
		mustExec(t, s.db, `INSERT INTO orders (id, status, total) VALUES ('o1', 'PAID', 10)`)
		mustExec(t, s.db, `INSERT INTO items (id, order_id, sku, price) VALUES ('i1', 'o1', 'A', 5)`)
		mustExec(t, s.db, `DELETE FROM orders WHERE id = 'o1'`)

		var n int
		require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n))
		assert.Zero(t, n)
	})
}

func TestMigrations_Indexes(t *testing.T) {
	s := createTestStore(t)

	want := map[string]string{
		"items":   "idx_items_order_id",
		"orders":  "idx_orders_customer_id",
		"animals": "idx_animals_kind",
		"blogs":   "idx_blogs_rating",
	}
	for table, index := range want {
		assert.Contains(t, tableIndexes(t, s.db, table), index)
	}
}

func TestMigrations_Ordered(t *testing.T) {
	for i, m := range migrations {
		assert.Equal(t, i+1, m.version, "migration %q", m.name)
		assert.NotEmpty(t, m.stmts, "migration %q", m.name)
	}
}

func TestMigrations_UpgradeFromSchemaOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	// A database created from schema.sql alone, before any migration ran.
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(schemaSQL)
	require.NoError(t, err)
	require.NotContains(t, tableIndexes(t, db, "items"), "idx_items_order_id")
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)
	assert.Contains(t, tableIndexes(t, s.db, "items"), "idx_items_order_id")
	assert.Contains(t, tableIndexes(t, s.db, "blogs"), "idx_blogs_rating")
}

func TestMigrations_ResumeFromV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(schemaSQL)
	require.NoError(t, err)
	for _, stmt := range migrations[0].stmts {
		_, err = db.Exec(stmt)
		require.NoError(t, err)
	}
	_, err = db.Exec("PRAGMA user_version = 1")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)
	assert.Contains(t, tableIndexes(t, s.db, "blogs"), "idx_blogs_rating")
}

func tableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	return queryStrings(t, db, "SELECT name FROM sqlite_master WHERE type = 'table'")
}

func tableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	return queryStrings(t, db, "SELECT name FROM pragma_table_info(?)", table)
}

func tableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	return queryStrings(t, db, "SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = ?", table)
}

func queryStrings(t *testing.T, db *sql.DB, query string, args ...any) []string {
	t.Helper()
	rows, err := db.Query(query, args...)
	require.NoError(t, err)
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		require.NoError(t, rows.Scan(&s))
		out = append(out, s)
	}
	require.NoError(t, rows.Err())
	return out
}
