package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/specbench/internal/model"
)

// InsertCustomers writes customers in one transaction.
// Uses ON CONFLICT(id) DO NOTHING - duplicate IDs are silently ignored.
func (s *Store) InsertCustomers(ctx context.Context, customers []model.Customer) error {
	return s.inTx(ctx, "insert customers", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO customers (id, name, email, tier)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, c := range customers {
			tier := c.Tier
			if tier == "" {
				tier = "standard"
			}
			if _, err := stmt.ExecContext(ctx, c.ID, c.Name, c.Email, tier); err != nil {
				return fmt.Errorf("customer %q: %w", c.ID, err)
			}
		}
		return nil
	})
}

// InsertOrders writes orders and their items in one transaction.
// An empty CustomerID is stored as NULL. Referenced customers must exist.
func (s *Store) InsertOrders(ctx context.Context, orders []model.Order) error {
	return s.inTx(ctx, "insert orders", func(tx *sql.Tx) error {
		orderStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO orders (id, status, total, customer_id)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer orderStmt.Close()

		itemStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO items (id, order_id, sku, price, quantity)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer itemStmt.Close()

		for _, o := range orders {
			customerID := sql.NullString{String: o.CustomerID, Valid: o.CustomerID != ""}
			if _, err := orderStmt.ExecContext(ctx, o.ID, o.Status, o.Total, customerID); err != nil {
				return fmt.Errorf("order %q: %w", o.ID, err)
			}
			for _, it := range o.Items {
				qty := it.Quantity
				if qty == 0 {
					qty = 1
				}
				if _, err := itemStmt.ExecContext(ctx, it.ID, o.ID, it.SKU, it.Price, qty); err != nil {
					return fmt.Errorf("order %q item %q: %w", o.ID, it.ID, err)
				}
			}
		}
		return nil
	})
}

// LoadOrders returns every order with its customer and items hydrated,
// ordered by id. Items are ordered by id within each order.
// Returns an empty slice (not nil) if there are no orders.
func (s *Store) LoadOrders(ctx context.Context) ([]model.Order, error) {
	customers, err := s.loadCustomers(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.loadItems(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, total, customer_id
		FROM orders
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		var customerID sql.NullString
		if err := rows.Scan(&o.ID, &o.Status, &o.Total, &customerID); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if customerID.Valid {
			o.CustomerID = customerID.String
			if c, ok := customers[customerID.String]; ok {
				o.Customer = &c
			}
		}
		o.Items = items[o.ID]
		if o.Items == nil {
			o.Items = []model.Item{}
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func (s *Store) loadCustomers(ctx context.Context) (map[string]model.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, tier
		FROM customers
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	customers := make(map[string]model.Customer)
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Tier); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, nil
}

func (s *Store) loadItems(ctx context.Context) (map[string][]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, sku, price, quantity
		FROM items
		ORDER BY order_id COLLATE BINARY ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]model.Item)
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.SKU, &it.Price, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items[it.OrderID] = append(items[it.OrderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// inTx runs fn in a transaction, committing on success and rolling back on
// error. op prefixes the returned error.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}
