package sensor

import (
	"fmt"

	"github.com/d2r2/go-bsbmp"
	"github.com/d2r2/go-i2c"
	"github.com/d2r2/go-logger"
)

// BSBMP reads a BME280 through the d2r2 I2C stack.
type BSBMP struct {
	conn   *i2c.I2C
	sensor *bsbmp.BMP
}

func NewBSBMP(bus int, addr uint16) (*BSBMP, error) {
	// Both packages log every register access at debug level.
	_ = logger.ChangePackageLogLevel("i2c", logger.InfoLevel)
	_ = logger.ChangePackageLogLevel("bsbmp", logger.InfoLevel)

	conn, err := i2c.NewI2C(uint8(addr), bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %d at 0x%02X: %w", bus, addr, err)
	}

	sensor, err := bsbmp.NewBMP(bsbmp.BME280, conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("bme280: %w", err)
	}

	return &BSBMP{conn: conn, sensor: sensor}, nil
}

func (b *BSBMP) Sense() (float64, float64, error) {
	t, err := b.sensor.ReadTemperatureC(bsbmp.ACCURACY_STANDARD)
	if err != nil {
		return 0, 0, fmt.Errorf("read temperature: %w", err)
	}

	supported, h, err := b.sensor.ReadHumidityRH(bsbmp.ACCURACY_STANDARD)
	if err != nil {
		return 0, 0, fmt.Errorf("read humidity: %w", err)
	}
	if !supported {
		return 0, 0, fmt.Errorf("sensor does not report humidity")
	}

	return float64(t), float64(h), nil
}

func (b *BSBMP) Close() error {
	return b.conn.Close()
}
