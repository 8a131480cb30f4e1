package sensor

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/michd9/clima/internal/config"
	"github.com/michd9/clima/internal/filter"
)

// Driver reads one temperature (°C) and relative humidity (%) pair.
type Driver interface {
	Sense() (temperature, humidity float64, err error)
	Close() error
}

// Sampler turns driver output into filter readings. Driver errors never
// escape it: a faulty cycle yields an absent reading.
type Sampler struct {
	driver Driver
	logger *slog.Logger
}

func NewSampler(driver Driver, logger *slog.Logger) *Sampler {
	return &Sampler{driver: driver, logger: logger}
}

func (s *Sampler) Sample() filter.Reading {
	t, h, err := s.driver.Sense()
	if err != nil {
		s.logger.Warn("sensor read failed", "error", err)
		return filter.Reading{}
	}

	r := filter.Reading{
		Temperature: measurement(t),
		Humidity:    measurement(h),
	}
	if !r.Valid() {
		s.logger.Warn("sensor returned invalid values", "temperature", t, "humidity", h)
	}
	return r
}

func measurement(v float64) filter.Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return filter.Absent()
	}
	return filter.Present(v)
}

// Open returns the driver selected by cfg.SensorDriver.
func Open(cfg config.Config) (Driver, error) {
	switch cfg.SensorDriver {
	case "bmxx80":
		d, err := NewBMXX80(cfg.I2CBus, cfg.BME280Address)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "bsbmp":
		d, err := NewBSBMP(cfg.I2CBus, cfg.BME280Address)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "dht22":
		d, err := NewDHT22(cfg.DHTPin)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "dummy":
		return NewDummy(), nil
	default:
		return nil, fmt.Errorf("unknown sensor driver %q", cfg.SensorDriver)
	}
}
