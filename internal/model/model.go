// Package model defines the sample entities the specification algebra is
// exercised against, together with their field tables and spec constructors.
//
// Field names double as SQLite column names (see store/schema.sql), so a spec
// built here means the same thing in memory and after translation.
package model

// Customer places orders.
type Customer struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email" json:"email"`
	Tier  string `yaml:"tier" json:"tier"` // "standard" | "gold"
}

// Item is one line of an order. Price is in cents.
type Item struct {
	ID       string `yaml:"id" json:"id"`
	OrderID  string `yaml:"-" json:"order_id"`
	SKU      string `yaml:"sku" json:"sku"`
	Price    int64  `yaml:"price" json:"price"`
	Quantity int64  `yaml:"quantity" json:"quantity"`
}

// Order optionally references a customer and owns its items.
//
// CustomerID is empty when the order has no customer. Customer is the
// hydrated relation and is nil in that case.
type Order struct {
	ID         string    `yaml:"id" json:"id"`
	Status     string    `yaml:"status" json:"status"`
	Total      int64     `yaml:"total" json:"total"`
	CustomerID string    `yaml:"customer_id,omitempty" json:"customer_id,omitempty"`
	Customer   *Customer `yaml:"-" json:"customer,omitempty"`
	Items      []Item    `yaml:"items,omitempty" json:"items,omitempty"`
}

// Order statuses.
const (
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusShipped   = "SHIPPED"
	StatusCancelled = "CANCELLED"
)

// Statuses lists every order status.
var Statuses = []string{StatusPending, StatusPaid, StatusShipped, StatusCancelled}

// Animal is the base type of a single-table hierarchy discriminated by Kind.
type Animal interface {
	AnimalID() string
	AnimalName() string
	// Kind is the discriminator value, equal to the Go type name.
	Kind() string
}

// Dog is an Animal with a breed.
type Dog struct {
	ID    string
	Name  string
	Breed string
}

func (d Dog) AnimalID() string   { return d.ID }
func (d Dog) AnimalName() string { return d.Name }
func (Dog) Kind() string         { return "Dog" }

// Cat is an Animal that may live indoors.
type Cat struct {
	ID     string
	Name   string
	Indoor bool
}

func (c Cat) AnimalID() string   { return c.ID }
func (c Cat) AnimalName() string { return c.Name }
func (Cat) Kind() string         { return "Cat" }

// Blog is the row type of the CRUD benchmark.
type Blog struct {
	ID     string
	Name   string
	URL    string
	Rating int64
}
