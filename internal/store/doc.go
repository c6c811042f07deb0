// Package store provides the SQLite persistence behind the benchmark.
//
// It holds the sample domain (customers, orders with items, animals) and the
// blog table used by the CRUD timings, and it executes translated
// specifications:
//
//	q := spec.ApplyQuery(store.From("orders"), model.OrderStatusIs("PAID"))
//	ids, err := s.FindIDs(ctx, q)
//
// Query narrowing never touches the database. FindIDs compiles the
// accumulated structural predicates with querysql against Schema.
//
// # Deterministic Results
//
// Every read orders by the table key with COLLATE BINARY so the SQL path and
// in-memory evaluation can be compared element by element.
//
// # Database Configuration
//
// Open applies schema.sql and then the numbered migrations, tracking progress
// in PRAGMA user_version. File databases get:
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// MemoryPath databases skip WAL and live as long as the Store.
package store
