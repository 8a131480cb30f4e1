package sensor

import (
	"fmt"

	dht "github.com/MichaelS11/go-dht"
)

const dhtReadRetries = 11

type dhtReader interface {
	ReadRetry(maxRetries int) (humidity, temperature float64, err error)
}

// DHT22 reads an AM2302/DHT22 on a single GPIO pin.
type DHT22 struct {
	pin string
	dev dhtReader
}

func NewDHT22(pin string) (*DHT22, error) {
	if err := dht.HostInit(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}

	dev, err := dht.NewDHT(pin, dht.Celsius, "dht22")
	if err != nil {
		return nil, fmt.Errorf("dht22 on %s: %w", pin, err)
	}

	return &DHT22{pin: pin, dev: dev}, nil
}

// Sense retries transient checksum and timing errors before giving up.
func (d *DHT22) Sense() (float64, float64, error) {
	humidity, temperature, err := d.dev.ReadRetry(dhtReadRetries)
	if err != nil {
		return 0, 0, fmt.Errorf("dht22 read on %s: %w", d.pin, err)
	}
	return temperature, humidity, nil
}

func (d *DHT22) Close() error {
	return nil
}
