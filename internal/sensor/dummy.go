package sensor

import "math/rand"

// Dummy produces plausible indoor values without hardware.
type Dummy struct{}

func NewDummy() *Dummy {
	return &Dummy{}
}

func (d *Dummy) Sense() (float64, float64, error) {
	return 20 + 5*rand.Float64(), 40 + 20*rand.Float64(), nil
}

func (d *Dummy) Close() error {
	return nil
}
