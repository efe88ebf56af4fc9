package kinds

import (
	"fmt"

	"github.com/kjk/records/recordstore"
)

type Device struct {
	Name     string
	Type     string
	Location string
	Wattage  int
	Powered  bool
}

var DeviceKind = &recordstore.Kind[Device]{
	Name: "device",
	Fields: []recordstore.Field[Device]{
		{
			Name:     "name",
			Type:     recordstore.String,
			Required: true,
			Get:      func(d *Device) any { return d.Name },
			Set:      func(d *Device, v any) { d.Name = v.(string) },
		},
		{
			Name:     "device_type",
			Type:     recordstore.String,
			Required: true,
			Get:      func(d *Device) any { return d.Type },
			Set:      func(d *Device, v any) { d.Type = v.(string) },
		},
		{
			Name:     "location",
			Type:     recordstore.String,
			Required: true,
			Get:      func(d *Device) any { return d.Location },
			Set:      func(d *Device, v any) { d.Location = v.(string) },
		},
		{
			Name: "wattage",
			Type: recordstore.Int,
			Get:  func(d *Device) any { return d.Wattage },
			Set:  func(d *Device, v any) { d.Wattage = v.(int) },
			Check: func(v any) error {
				if w := v.(int); w < 0 {
					return fmt.Errorf("can't be negative, got %d", w)
				}
				return nil
			},
		},
		{
			Name: "powered",
			Type: recordstore.Bool,
			Get:  func(d *Device) any { return d.Powered },
			Set:  func(d *Device, v any) { d.Powered = v.(bool) },
		},
	},
}

func NewDeviceStore(opts ...recordstore.Option) *recordstore.Store[Device] {
	return recordstore.New(DeviceKind, opts...)
}

// TurnOn powers on the device at index. Turning on a device that is
// already on is a no-op.
func TurnOn(s *recordstore.Store[Device], index int) (recordstore.Record[Device], error) {
	return setPower(s, index, true)
}

func TurnOff(s *recordstore.Store[Device], index int) (recordstore.Record[Device], error) {
	return setPower(s, index, false)
}

func setPower(s *recordstore.Store[Device], index int, on bool) (recordstore.Record[Device], error) {
	rec, err := s.At(index)
	if err != nil {
		return rec, err
	}
	if rec.Value.Powered == on {
		return rec, nil
	}
	return s.UpdateAt(index, recordstore.Fields{"powered": on})
}

// TotalConsumption returns combined wattage of powered devices
func TotalConsumption(s *recordstore.Store[Device]) int {
	total := 0
	for _, rec := range s.List() {
		if rec.Value.Powered {
			total += rec.Value.Wattage
		}
	}
	return total
}

func CelsiusToFahrenheit(celsius float64) float64 {
	return celsius*9/5 + 32
}

func SeedDevices(s *recordstore.Store[Device]) error {
	devices := []recordstore.Fields{
		{"name": "LivingRoom Light", "device_type": "Light", "location": "Living Room", "wattage": 10},
		{"name": "Kitchen Thermostat", "device_type": "Thermostat", "location": "Kitchen", "wattage": 0},
		{"name": "Bedroom Plug", "device_type": "Plug", "location": "Bedroom", "wattage": 100},
		{"name": "Bedroom Plug 1", "device_type": "Plug", "location": "Bedroom", "wattage": 100},
	}
	return seed(s, devices)
}
