package kinds

import (
	"time"

	"github.com/kjk/records/recordstore"
)

// MinCarYear is the oldest model year we accept
const MinCarYear = 1900

type Car struct {
	Make  string
	Model string
	Year  int
}

// CurrentYear is used to validate model years. Tests override it.
var CurrentYear = func() int {
	return time.Now().Year()
}

func checkCarYear(v any) error {
	year := v.(int)
	maxYear := CurrentYear()
	if year < MinCarYear || year > maxYear {
		return recordstore.Invalid("year", "must be between %d and %d, got %d", MinCarYear, maxYear, year)
	}
	return nil
}

var CarKind = &recordstore.Kind[Car]{
	Name: "car",
	Fields: []recordstore.Field[Car]{
		{
			Name:     "make",
			Type:     recordstore.String,
			Required: true,
			Get:      func(c *Car) any { return c.Make },
			Set:      func(c *Car, v any) { c.Make = v.(string) },
		},
		{
			Name:     "model",
			Type:     recordstore.String,
			Required: true,
			Get:      func(c *Car) any { return c.Model },
			Set:      func(c *Car, v any) { c.Model = v.(string) },
		},
		{
			Name:     "year",
			Type:     recordstore.Int,
			Required: true,
			Get:      func(c *Car) any { return c.Year },
			Set:      func(c *Car, v any) { c.Year = v.(int) },
			Check:    checkCarYear,
		},
	},
}

func NewCarStore(opts ...recordstore.Option) *recordstore.Store[Car] {
	return recordstore.New(CarKind, opts...)
}

func SeedCars(s *recordstore.Store[Car]) error {
	cars := []recordstore.Fields{
		{"make": "Toyota", "model": "Corolla", "year": 2020},
		{"make": "Honda", "model": "Civic", "year": 2018},
		{"make": "Ford", "model": "Mustang", "year": 2022},
	}
	return seed(s, cars)
}

func seed[T any](s *recordstore.Store[T], all []recordstore.Fields) error {
	for _, fields := range all {
		if _, err := s.Add(fields); err != nil {
			return err
		}
	}
	return nil
}
