package kinds

import (
	"fmt"
	"strings"

	"github.com/kjk/records/recordstore"
)

const (
	VehicleCar  = "car"
	VehicleBike = "bike"
)

// Vehicle is a vehicle available for rent. Convertible only applies
// to cars, Sidecar only to bikes.
type Vehicle struct {
	Type        string
	Make        string
	Model       string
	DailyRate   float64
	Convertible bool
	Sidecar     bool
}

func (v *Vehicle) String() string {
	var extra string
	switch v.Type {
	case VehicleCar:
		extra = fmt.Sprintf("convertible=%v", v.Convertible)
	case VehicleBike:
		extra = fmt.Sprintf("sidecar=%v", v.Sidecar)
	}
	return fmt.Sprintf("%s %s %s, %.2f/day, %s", v.Type, v.Make, v.Model, v.DailyRate, extra)
}

func checkVehicleType(v any) error {
	switch v.(string) {
	case VehicleCar, VehicleBike:
		return nil
	}
	return fmt.Errorf("must be '%s' or '%s', got '%s'", VehicleCar, VehicleBike, v)
}

func checkDailyRate(v any) error {
	if rate := v.(float64); !(rate > 0) {
		return fmt.Errorf("must be a positive number, got %v", rate)
	}
	return nil
}

func validateVehicle(v *Vehicle) error {
	if v.Type == VehicleBike && v.Convertible {
		return recordstore.Invalid("convertible", "only applies to cars")
	}
	if v.Type == VehicleCar && v.Sidecar {
		return recordstore.Invalid("sidecar", "only applies to bikes")
	}
	return nil
}

var VehicleKind = &recordstore.Kind[Vehicle]{
	Name: "vehicle",
	Fields: []recordstore.Field[Vehicle]{
		{
			Name:     "type",
			Type:     recordstore.String,
			Required: true,
			Get:      func(v *Vehicle) any { return v.Type },
			Set:      func(v *Vehicle, val any) { v.Type = strings.ToLower(val.(string)) },
			Check: func(v any) error {
				return checkVehicleType(strings.ToLower(v.(string)))
			},
		},
		{
			Name:     "make",
			Type:     recordstore.String,
			Required: true,
			Get:      func(v *Vehicle) any { return v.Make },
			Set:      func(v *Vehicle, val any) { v.Make = val.(string) },
		},
		{
			Name:     "model",
			Type:     recordstore.String,
			Required: true,
			Get:      func(v *Vehicle) any { return v.Model },
			Set:      func(v *Vehicle, val any) { v.Model = val.(string) },
		},
		{
			Name:     "daily_rate",
			Type:     recordstore.Float,
			Required: true,
			Get:      func(v *Vehicle) any { return v.DailyRate },
			Set:      func(v *Vehicle, val any) { v.DailyRate = val.(float64) },
			Check:    checkDailyRate,
		},
		{
			Name: "convertible",
			Type: recordstore.Bool,
			Get:  func(v *Vehicle) any { return v.Convertible },
			Set:  func(v *Vehicle, val any) { v.Convertible = val.(bool) },
		},
		{
			Name: "sidecar",
			Type: recordstore.Bool,
			Get:  func(v *Vehicle) any { return v.Sidecar },
			Set:  func(v *Vehicle, val any) { v.Sidecar = val.(bool) },
		},
	},
	Validate: validateVehicle,
}

func NewVehicleStore(opts ...recordstore.Option) *recordstore.Store[Vehicle] {
	return recordstore.New(VehicleKind, opts...)
}

// RentalCost returns the cost of renting vehicle at index for a number of days
func RentalCost(s *recordstore.Store[Vehicle], index int, days int) (float64, error) {
	rec, err := s.At(index)
	if err != nil {
		return 0, err
	}
	if days <= 0 {
		return 0, recordstore.Invalid("days", "must be a positive integer, got %d", days)
	}
	return rec.Value.DailyRate * float64(days), nil
}

func SeedVehicles(s *recordstore.Store[Vehicle]) error {
	vehicles := []recordstore.Fields{
		{"type": VehicleCar, "make": "Toyota", "model": "Corolla", "daily_rate": 50.0, "convertible": true},
		{"type": VehicleBike, "make": "Yamaha", "model": "YZF-R3", "daily_rate": 30.0, "sidecar": false},
	}
	return seed(s, vehicles)
}
