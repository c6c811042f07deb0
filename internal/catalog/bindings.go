package catalog

import (
	"errors"
	"strings"

	"github.com/roach88/specbench/internal/model"
	"github.com/roach88/specbench/internal/queryir"
	"github.com/roach88/specbench/internal/spec"
)

// Entity names accepted in a definition's "entity" field.
const (
	EntityOrder  = "order"
	EntityAnimal = "animal"
)

// Tables maps entity names to the store tables holding them.
var Tables = map[string]string{
	EntityOrder:  "orders",
	EntityAnimal: "animals",
}

// OrderEntity binds orders, their optional customer and their items.
func OrderEntity() *Entity[model.Order] {
	customer := NewEntity[model.Customer]("customer", model.CustomerFields, model.CustomerKinds)
	item := NewEntity[model.Item]("item", model.ItemFields, model.ItemKinds)
	order := NewEntity[model.Order](EntityOrder, model.OrderFields, model.OrderKinds)
	One(order, model.PathCustomer, customer, model.SelectCustomer)
	Many(order, model.PathItems, item, model.SelectItems)
	return order
}

// AnimalEntity binds the animal hierarchy with Dog and Cat subtypes.
func AnimalEntity() *Entity[model.Animal] {
	animal := NewEntity[model.Animal](EntityAnimal, model.AnimalFields, model.AnimalKinds)
	Subtype(animal, NewEntity[model.Dog](model.Dog{}.Kind(), model.DogFields, model.DogKinds))
	Subtype(animal, NewEntity[model.Cat](model.Cat{}.Kind(), model.CatFields, model.CatKinds))
	return animal
}

// Bound is a definition together with its executable spec.
type Bound[T any] struct {
	Name  string
	Table string
	Spec  spec.Spec[T]
}

// Bind builds every definition in c whose entity is e.Name.
// All binding errors are collected and returned joined.
func Bind[T any](c *Catalog, e *Entity[T]) ([]Bound[T], error) {
	var bound []Bound[T]
	var errs []error
	for _, def := range c.Definitions {
		if def.Entity != e.Name {
			continue
		}
		s, err := BindDefinition(def, e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		bound = append(bound, Bound[T]{Name: def.Name, Table: Tables[def.Entity], Spec: s})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return bound, nil
}

// BindDefinition builds one definition against e. Error paths are rooted at
// the definition, e.g. "filters.vip.where.and[0]".
func BindDefinition[T any](def Definition, e *Entity[T]) (spec.Spec[T], error) {
	root := "filters." + def.Name
	if def.Entity != e.Name {
		return nil, defErr(ErrCodeUnknownEntity, root+".entity", noPos,
			"definition is for %q, not %q", def.Entity, e.Name)
	}
	s, err := e.Build(def.Where)
	if err != nil {
		var de *DefinitionError
		if errors.As(err, &de) {
			de.Path = root + ".where" + strings.TrimPrefix(de.Path, "$")
		}
		return nil, err
	}
	return s, nil
}

// Validate checks that every definition names a known entity and binds
// cleanly. It returns all problems joined.
func Validate(c *Catalog) error {
	orders, animals := OrderEntity(), AnimalEntity()
	var errs []error
	for _, def := range c.Definitions {
		var err error
		switch def.Entity {
		case EntityOrder:
			_, err = BindDefinition(def, orders)
		case EntityAnimal:
			_, err = BindDefinition(def, animals)
		default:
			err = defErr(ErrCodeUnknownEntity, "filters."+def.Name+".entity", noPos,
				"unknown entity %q (want %q or %q)", def.Entity, EntityOrder, EntityAnimal)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Query returns the QueryIR select a definition translates to.
func (d Definition) Query() queryir.Select {
	return queryir.Select{From: Tables[d.Entity], Filter: d.Where}
}
