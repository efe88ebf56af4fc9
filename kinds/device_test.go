package kinds

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert"

	"github.com/kjk/records/recordstore"
)

func TestDevicePower(t *testing.T) {
	s := NewDeviceStore()
	assert.NoError(t, SeedDevices(s))
	assert.Equal(t, 0, TotalConsumption(s))

	_, err := TurnOn(s, 0)
	assert.NoError(t, err)
	rec, err := TurnOn(s, 2)
	assert.NoError(t, err)
	assert.True(t, rec.Value.Powered)
	assert.Equal(t, 110, TotalConsumption(s))

	// already on
	_, err = TurnOn(s, 2)
	assert.NoError(t, err)
	assert.Equal(t, 110, TotalConsumption(s))

	_, err = TurnOff(s, 0)
	assert.NoError(t, err)
	assert.Equal(t, 100, TotalConsumption(s))

	_, err = TurnOn(s, 10)
	assert.True(t, errors.Is(err, recordstore.ErrIndex))
}

func TestDeviceWattage(t *testing.T) {
	s := NewDeviceStore()
	_, err := s.Add(recordstore.Fields{"name": "Fan", "device_type": "Fan", "location": "Office", "wattage": -1})
	assert.True(t, errors.Is(err, recordstore.ErrValidation))
	rec, err := s.Add(recordstore.Fields{"name": "Fan", "device_type": "Fan", "location": "Office"})
	assert.NoError(t, err)
	assert.Equal(t, 0, rec.Value.Wattage)
}

func TestCelsiusToFahrenheit(t *testing.T) {
	assert.Equal(t, 32.0, CelsiusToFahrenheit(0))
	assert.Equal(t, 212.0, CelsiusToFahrenheit(100))
	assert.Equal(t, -40.0, CelsiusToFahrenheit(-40))
}
