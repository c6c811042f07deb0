package bench

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/specbench/internal/ir"
	"github.com/roach88/specbench/internal/model"
	"github.com/roach88/specbench/internal/store"
)

// Fixture is a dataset for one run: customers, orders with items and
// animals.
type Fixture struct {
	Customers []model.Customer `yaml:"customers"`
	Orders    []model.Order    `yaml:"orders"`
	Animals   []AnimalRecord   `yaml:"animals"`
}

// AnimalRecord is the YAML shape of an animal. Kind selects the subtype;
// Breed applies to dogs and Indoor to cats.
type AnimalRecord struct {
	ID     string `yaml:"id"`
	Kind   string `yaml:"kind"`
	Name   string `yaml:"name"`
	Breed  string `yaml:"breed,omitempty"`
	Indoor bool   `yaml:"indoor,omitempty"`
}

// Animal converts the record to its concrete subtype.
func (r AnimalRecord) Animal() (model.Animal, error) {
	switch r.Kind {
	case model.Dog{}.Kind():
		return model.Dog{ID: r.ID, Name: r.Name, Breed: r.Breed}, nil
	case model.Cat{}.Kind():
		return model.Cat{ID: r.ID, Name: r.Name, Indoor: r.Indoor}, nil
	default:
		return nil, fmt.Errorf("animal %q: unknown kind %q", r.ID, r.Kind)
	}
}

// LoadFixture reads a YAML fixture from path.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes a YAML fixture. Unknown keys are rejected.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

func (f *Fixture) validate() error {
	customers := make(map[string]bool, len(f.Customers))
	for _, c := range f.Customers {
		if c.ID == "" {
			return fmt.Errorf("customer with empty id")
		}
		customers[c.ID] = true
	}
	for _, o := range f.Orders {
		if o.ID == "" {
			return fmt.Errorf("order with empty id")
		}
		if o.CustomerID != "" && !customers[o.CustomerID] {
			return fmt.Errorf("order %q references unknown customer %q", o.ID, o.CustomerID)
		}
	}
	for _, a := range f.Animals {
		if _, err := a.Animal(); err != nil {
			return err
		}
	}
	return nil
}

// Seed writes the fixture into s.
func Seed(ctx context.Context, s *store.Store, f *Fixture) error {
	if err := s.InsertCustomers(ctx, f.Customers); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if err := s.InsertOrders(ctx, f.Orders); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	animals := make([]model.Animal, 0, len(f.Animals))
	for _, r := range f.Animals {
		a, err := r.Animal()
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		animals = append(animals, a)
	}
	if err := s.InsertAnimals(ctx, animals); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}

// Fingerprint returns the content hash of the fixture. Two fixtures with the
// same rows in the same order share a fingerprint.
func (f *Fixture) Fingerprint() (string, error) {
	customers := make(ir.IRArray, len(f.Customers))
	for i, c := range f.Customers {
		customers[i] = fieldsObject(c, model.CustomerFields)
	}

	orders := make(ir.IRArray, len(f.Orders))
	for i, o := range f.Orders {
		obj := fieldsObject(o, model.OrderFields)
		items := make(ir.IRArray, len(o.Items))
		for j, it := range o.Items {
			items[j] = fieldsObject(it, model.ItemFields)
		}
		obj["items"] = items
		orders[i] = obj
	}

	animals := make(ir.IRArray, len(f.Animals))
	for i, r := range f.Animals {
		a, err := r.Animal()
		if err != nil {
			return "", err
		}
		obj := fieldsObject(a, model.AnimalFields)
		switch v := a.(type) {
		case model.Dog:
			obj["breed"] = ir.IRString(v.Breed)
		case model.Cat:
			obj["indoor"] = ir.IRBool(v.Indoor)
		}
		animals[i] = obj
	}

	return ir.Fingerprint(ir.DomainDataset, ir.IRObject{
		"customers": customers,
		"orders":    orders,
		"animals":   animals,
	})
}

func fieldsObject[T any](v T, fields map[string]model.Getter[T]) ir.IRObject {
	obj := make(ir.IRObject, len(fields))
	for name, get := range fields {
		obj[name] = get(v)
	}
	return obj
}
