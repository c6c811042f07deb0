package model

import "github.com/roach88/specbench/internal/ir"

// Getter extracts one field of T as an IR value.
type Getter[T any] func(T) ir.IRValue

// Field tables map column names to getters. They are read-only after init.
var (
	CustomerFields = map[string]Getter[Customer]{
		"id":    func(c Customer) ir.IRValue { return ir.IRString(c.ID) },
		"name":  func(c Customer) ir.IRValue { return ir.IRString(c.Name) },
		"email": func(c Customer) ir.IRValue { return ir.IRString(c.Email) },
		"tier":  func(c Customer) ir.IRValue { return ir.IRString(c.Tier) },
	}

	ItemFields = map[string]Getter[Item]{
		"id":       func(i Item) ir.IRValue { return ir.IRString(i.ID) },
		"order_id": func(i Item) ir.IRValue { return ir.IRString(i.OrderID) },
		"sku":      func(i Item) ir.IRValue { return ir.IRString(i.SKU) },
		"price":    func(i Item) ir.IRValue { return ir.IRInt(i.Price) },
		"quantity": func(i Item) ir.IRValue { return ir.IRInt(i.Quantity) },
	}

	OrderFields = map[string]Getter[Order]{
		"id":     func(o Order) ir.IRValue { return ir.IRString(o.ID) },
		"status": func(o Order) ir.IRValue { return ir.IRString(o.Status) },
		"total":  func(o Order) ir.IRValue { return ir.IRInt(o.Total) },
		"customer_id": func(o Order) ir.IRValue {
			if o.CustomerID == "" {
				return ir.IRNull{}
			}
			return ir.IRString(o.CustomerID)
		},
	}

	AnimalFields = map[string]Getter[Animal]{
		"id":   func(a Animal) ir.IRValue { return ir.IRString(a.AnimalID()) },
		"name": func(a Animal) ir.IRValue { return ir.IRString(a.AnimalName()) },
		"kind": func(a Animal) ir.IRValue { return ir.IRString(a.Kind()) },
	}

	DogFields = map[string]Getter[Dog]{
		"id":    func(d Dog) ir.IRValue { return ir.IRString(d.ID) },
		"name":  func(d Dog) ir.IRValue { return ir.IRString(d.Name) },
		"breed": func(d Dog) ir.IRValue { return ir.IRString(d.Breed) },
	}

	CatFields = map[string]Getter[Cat]{
		"id":     func(c Cat) ir.IRValue { return ir.IRString(c.ID) },
		"name":   func(c Cat) ir.IRValue { return ir.IRString(c.Name) },
		"indoor": func(c Cat) ir.IRValue { return ir.IRBool(c.Indoor) },
	}
)

// Field kinds give the ir.Kind each getter returns for a present value.
// Nullable fields (customer_id, breed, indoor) may also return IRNull.
// Literals compared against a field must be of its kind: SQLite coerces
// across kinds where in-memory comparison never matches.
var (
	CustomerKinds = map[string]string{"id": "string", "name": "string", "email": "string", "tier": "string"}
	ItemKinds     = map[string]string{"id": "string", "order_id": "string", "sku": "string", "price": "int", "quantity": "int"}
	OrderKinds    = map[string]string{"id": "string", "status": "string", "total": "int", "customer_id": "string"}
	AnimalKinds   = map[string]string{"id": "string", "name": "string", "kind": "string"}
	DogKinds      = map[string]string{"id": "string", "name": "string", "breed": "string"}
	CatKinds      = map[string]string{"id": "string", "name": "string", "indoor": "bool"}
)
