package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/roach88/specbench/internal/model"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

// seededStore returns a store holding the end-to-end scenario data:
//
//	o1 PAID, no customer, items priced 50 and 150
//	o2 PAID, customer Alice, no items
//	o3 PENDING, customer Alice, item priced 20
//	o4 SHIPPED, customer Bob (gold), item priced 500
//	a1 Dog Rex (Husky), a2 Cat Tom (indoor), a3 Dog Fido (Poodle), a4 Cat Kit (outdoor)
func seededStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	ctx := context.Background()

	customers := []model.Customer{
		{ID: "c1", Name: "Alice", Email: "alice@example.com"},
		{ID: "c2", Name: "Bob", Email: "bob@example.com", Tier: "gold"},
	}
	orders := []model.Order{
		{ID: "o1", Status: model.StatusPaid, Total: 200, Items: []model.Item{
			{ID: "i1", SKU: "A", Price: 50, Quantity: 1},
			{ID: "i2", SKU: "B", Price: 150, Quantity: 2},
		}},
		{ID: "o2", Status: model.StatusPaid, Total: 0, CustomerID: "c1"},
		{ID: "o3", Status: model.StatusPending, Total: 20, CustomerID: "c1", Items: []model.Item{
			{ID: "i3", SKU: "A", Price: 20, Quantity: 1},
		}},
		{ID: "o4", Status: model.StatusShipped, Total: 500, CustomerID: "c2", Items: []model.Item{
			{ID: "i4", SKU: "C", Price: 500, Quantity: 1},
		}},
	}
	animals := []model.Animal{
		model.Dog{ID: "a1", Name: "Rex", Breed: "Husky"},
		model.Cat{ID: "a2", Name: "Tom", Indoor: true},
		model.Dog{ID: "a3", Name: "Fido", Breed: "Poodle"},
		model.Cat{ID: "a4", Name: "Kit", Indoor: false},
	}

	if err := s.InsertCustomers(ctx, customers); err != nil {
		t.Fatalf("InsertCustomers() failed: %v", err)
	}
	if err := s.InsertOrders(ctx, orders); err != nil {
		t.Fatalf("InsertOrders() failed: %v", err)
	}
	if err := s.InsertAnimals(ctx, animals); err != nil {
		t.Fatalf("InsertAnimals() failed: %v", err)
	}
	return s
}
