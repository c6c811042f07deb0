package spec

import (
	"github.com/roach88/specbench/internal/ir"
	"github.com/roach88/specbench/internal/queryir"
)

type customer struct {
	Name string
}

type item struct {
	SKU   string
	Price int64
}

type order struct {
	Status   string
	Customer *customer
	Items    []item
}

type animal interface {
	Legs() int
}

type dog struct {
	Breed string
}

func (dog) Legs() int { return 4 }

type cat struct {
	Indoor bool
}

func (cat) Legs() int { return 4 }

func statusEquals(status string) Spec[order] {
	return Leaf(
		queryir.Compare{Field: "status", Op: queryir.OpEq, Value: ir.IRString(status)},
		func(o order) bool { return o.Status == status },
	)
}

func nameEquals(name string) Spec[customer] {
	return Compare("name", queryir.OpEq, ir.IRString(name), func(c customer) ir.IRValue {
		return ir.IRString(c.Name)
	})
}

func priceGreaterThan(p int64) Spec[item] {
	return Compare("price", queryir.OpGt, ir.IRInt(p), func(i item) ir.IRValue {
		return ir.IRInt(i.Price)
	})
}

func breedEquals(breed string) Spec[dog] {
	return Leaf(
		queryir.Compare{Field: "breed", Op: queryir.OpEq, Value: ir.IRString(breed)},
		func(d dog) bool { return d.Breed == breed },
	)
}

func orderCustomer(s Spec[customer]) Spec[order] {
	return ComposePtr(s, "customer", func(o order) *customer { return o.Customer })
}

func orderItems(s Spec[item]) Spec[order] {
	return Any(s, "items", func(o order) []item { return o.Items })
}

// intSpec builds leaves over plain ints for algebraic property checks.
func isEven() Spec[int] {
	return Func("even", func(n int) bool { return n%2 == 0 })
}

func isPositive() Spec[int] {
	return Compare("n", queryir.OpGt, ir.IRInt(0), func(n int) ir.IRValue { return ir.IRInt(n) })
}

func divisibleBy3() Spec[int] {
	return Func("div3", func(n int) bool { return n%3 == 0 })
}

func never() Spec[int] {
	return Not(AlwaysTrue[int]())
}

var sampleInts = []int{-6, -3, -2, -1, 0, 1, 2, 3, 4, 6, 9, 12}
