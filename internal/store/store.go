package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migration is one step of the schema history. Version is the user_version
// the database reports once the step has run.
type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations run in order on top of schema.sql. Append only.
var migrations = []migration{
	{
		version: 1,
		name:    "relation and discriminator indexes",
		stmts: []string{
			"CREATE INDEX IF NOT EXISTS idx_items_order_id ON items(order_id)",
			"CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id)",
			"CREATE INDEX IF NOT EXISTS idx_animals_kind ON animals(kind)",
		},
	},
	{
		version: 2,
		name:    "blog rating index",
		stmts: []string{
			"CREATE INDEX IF NOT EXISTS idx_blogs_rating ON blogs(rating)",
		},
	},
}

// SchemaVersion is the user_version of a fully migrated database.
var SchemaVersion = migrations[len(migrations)-1].version

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store is the SQLite database holding the sample domain and the blog table.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Option configures Open.
type Option func(*Store)

// WithLogger sets the logger used for schema and migration events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// pragma is one connection setting and the value PRAGMA reports back for it.
type pragma struct {
	name   string
	set    string
	expect string
}

// filePragmas configure on-disk databases. In-memory databases skip WAL,
// which SQLite does not support there.
var filePragmas = []pragma{
	{"journal_mode", "WAL", "wal"},
	{"synchronous", "NORMAL", "1"},
	{"busy_timeout", "5000", "5000"},
	{"foreign_keys", "ON", "1"},
}

// Open creates or opens the database at path, applying pragmas, the schema
// and any pending migrations. Opening an up-to-date database is a no-op
// beyond the connection itself.
//
// path may be MemoryPath for a database that lives as long as the Store.
// The pool is pinned to one connection either way: SQLite has one writer,
// and each in-memory connection would otherwise see its own empty database.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", path, err)
	}
	s.db = db

	if err := s.configure(isMemory(path)); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection. Closing twice is harmless.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Version reports the database's user_version.
func (s *Store) Version(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return v, nil
}

func isMemory(path string) bool {
	return path == MemoryPath || strings.Contains(path, "mode=memory")
}

func (s *Store) configure(memory bool) error {
	for _, p := range filePragmas {
		if memory && p.name == "journal_mode" {
			continue
		}
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.set)); err != nil {
			return fmt.Errorf("pragma %s: %w", p.name, err)
		}
	}
	return nil
}

// migrate applies schema.sql, then every migration newer than the stored
// user_version, bumping user_version after each step.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	current, err := s.Version(context.Background())
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		for _, stmt := range m.stmts {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
			}
		}
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			return fmt.Errorf("set user_version %d: %w", m.version, err)
		}
		s.logger.Debug("schema migrated", "version", m.version, "step", m.name)
	}
	return nil
}

// pragmaValue reads the current value of a pragma.
func (s *Store) pragmaValue(name string) (string, error) {
	var v string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&v); err != nil {
		return "", fmt.Errorf("read pragma %s: %w", name, err)
	}
	return v, nil
}
