package model

import (
	"github.com/roach88/specbench/internal/ir"
	"github.com/roach88/specbench/internal/queryir"
	"github.com/roach88/specbench/internal/spec"
)

// Relation paths used in structural forms.
const (
	PathCustomer = "customer"
	PathItems    = "items"
)

// OrderStatusIs matches orders in the given status.
func OrderStatusIs(status string) spec.Spec[Order] {
	return spec.Compare("status", queryir.OpEq, ir.IRString(status), OrderFields["status"])
}

// OrderTotalAtLeast matches orders whose total is at least cents.
func OrderTotalAtLeast(cents int64) spec.Spec[Order] {
	return spec.Compare("total", queryir.OpGe, ir.IRInt(cents), OrderFields["total"])
}

// OrderCustomer applies s to the order's customer. Orders without one never match.
func OrderCustomer(s spec.Spec[Customer]) spec.Spec[Order] {
	return spec.ComposePtr(s, PathCustomer, SelectCustomer)
}

// OrderHasItem matches orders with at least one item satisfying s.
func OrderHasItem(s spec.Spec[Item]) spec.Spec[Order] {
	return spec.Any(s, PathItems, SelectItems)
}

// SelectCustomer is the selector behind OrderCustomer.
func SelectCustomer(o Order) *Customer { return o.Customer }

// SelectItems is the selector behind OrderHasItem.
func SelectItems(o Order) []Item { return o.Items }

// CustomerNameIs matches customers by exact name.
func CustomerNameIs(name string) spec.Spec[Customer] {
	return spec.Compare("name", queryir.OpEq, ir.IRString(name), CustomerFields["name"])
}

// CustomerTierIs matches customers in the given tier.
func CustomerTierIs(tier string) spec.Spec[Customer] {
	return spec.Compare("tier", queryir.OpEq, ir.IRString(tier), CustomerFields["tier"])
}

// ItemPriceGreaterThan matches items priced above cents.
func ItemPriceGreaterThan(cents int64) spec.Spec[Item] {
	return spec.Compare("price", queryir.OpGt, ir.IRInt(cents), ItemFields["price"])
}

// ItemSKUIs matches items by SKU.
func ItemSKUIs(sku string) spec.Spec[Item] {
	return spec.Compare("sku", queryir.OpEq, ir.IRString(sku), ItemFields["sku"])
}

// DogBreedIs matches dogs of the given breed.
func DogBreedIs(breed string) spec.Spec[Dog] {
	return spec.Compare("breed", queryir.OpEq, ir.IRString(breed), DogFields["breed"])
}

// CatIsIndoor matches cats whose indoor flag equals indoor.
func CatIsIndoor(indoor bool) spec.Spec[Cat] {
	return spec.Compare("indoor", queryir.OpEq, ir.IRBool(indoor), CatFields["indoor"])
}

// AnimalNameIs matches any animal by name.
func AnimalNameIs(name string) spec.Spec[Animal] {
	return spec.Compare("name", queryir.OpEq, ir.IRString(name), AnimalFields["name"])
}

// AsAnimal lifts a dog spec to all animals; cats never match.
func AsAnimal(s spec.Spec[Dog]) spec.Spec[Animal] {
	return spec.AsBase[Animal](s)
}

// CatAsAnimal lifts a cat spec to all animals; dogs never match.
func CatAsAnimal(s spec.Spec[Cat]) spec.Spec[Animal] {
	return spec.AsBase[Animal](s)
}
