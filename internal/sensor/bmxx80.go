package sensor

import (
	"fmt"
	"strconv"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

// BMXX80 reads a Bosch BME280 through periph.io.
type BMXX80 struct {
	bus i2c.BusCloser
	dev *bmxx80.Dev
}

func NewBMXX80(bus int, addr uint16) (*BMXX80, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}

	b, err := i2creg.Open(strconv.Itoa(bus))
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %d: %w", bus, err)
	}

	dev, err := bmxx80.NewI2C(b, addr, &bmxx80.DefaultOpts)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("bmxx80 at 0x%02X: %w", addr, err)
	}

	return &BMXX80{bus: b, dev: dev}, nil
}

func (b *BMXX80) Sense() (float64, float64, error) {
	var env physic.Env
	if err := b.dev.Sense(&env); err != nil {
		return 0, 0, fmt.Errorf("bmxx80 sense: %w", err)
	}

	// env.Humidity is fixed point at 0.00001 %rH.
	return env.Temperature.Celsius(), float64(env.Humidity) / float64(physic.PercentRH), nil
}

func (b *BMXX80) Close() error {
	haltErr := b.dev.Halt()
	if err := b.bus.Close(); err != nil {
		return err
	}
	return haltErr
}
