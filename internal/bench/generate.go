package bench

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/roach88/specbench/internal/model"
)

var (
	firstNames = []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi"}
	breeds     = []string{"Husky", "Poodle", "Beagle", "Collie", "Terrier"}
	skus       = []string{"SKU-1", "SKU-2", "SKU-3", "SKU-4", "SKU-5", "SKU-6"}
)

// Generate builds a synthetic fixture with n orders, n/4 customers
// (at least one) and n/2 animals. The same seed always yields the same
// fixture, ids included.
//
// Roughly one order in five has no customer and one in six has no items,
// so relation predicates see absent and empty cases.
func Generate(n int, seed uint64) *Fixture {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	src := rand.NewChaCha8(key)
	rng := rand.New(src)

	newID := func() string {
		id, err := uuid.NewRandomFromReader(src)
		if err != nil {
			// ChaCha8 reads never fail.
			panic(err)
		}
		return id.String()
	}

	f := &Fixture{}
	nCustomers := max(n/4, 1)
	for i := range nCustomers {
		tier := "standard"
		if rng.IntN(5) == 0 {
			tier = "gold"
		}
		name := firstNames[i%len(firstNames)]
		f.Customers = append(f.Customers, model.Customer{
			ID:    newID(),
			Name:  name,
			Email: fmt.Sprintf("%s.%d@example.com", name, i),
			Tier:  tier,
		})
	}

	for range n {
		o := model.Order{
			ID:     newID(),
			Status: model.Statuses[rng.IntN(len(model.Statuses))],
		}
		if rng.IntN(5) != 0 {
			o.CustomerID = f.Customers[rng.IntN(len(f.Customers))].ID
		}
		if rng.IntN(6) != 0 {
			for range 1 + rng.IntN(4) {
				it := model.Item{
					ID:       newID(),
					SKU:      skus[rng.IntN(len(skus))],
					Price:    int64(1 + rng.IntN(300)),
					Quantity: int64(1 + rng.IntN(3)),
				}
				o.Total += it.Price * it.Quantity
				o.Items = append(o.Items, it)
			}
		}
		f.Orders = append(f.Orders, o)
	}

	for i := range n / 2 {
		r := AnimalRecord{ID: newID(), Name: fmt.Sprintf("pet-%d", i)}
		if rng.IntN(2) == 0 {
			r.Kind = model.Dog{}.Kind()
			r.Breed = breeds[rng.IntN(len(breeds))]
		} else {
			r.Kind = model.Cat{}.Kind()
			r.Indoor = rng.IntN(2) == 0
		}
		f.Animals = append(f.Animals, r)
	}
	return f
}
