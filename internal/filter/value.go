package filter

// Value is an optional sensor measurement. The zero Value is absent.
type Value struct {
	v       float64
	present bool
}

// Present wraps a valid measurement.
func Present(v float64) Value {
	return Value{v: v, present: true}
}

// Absent is the value reported when a sensor cycle produced no data.
func Absent() Value {
	return Value{}
}

// Get returns the measurement and whether it is present.
func (v Value) Get() (float64, bool) {
	return v.v, v.present
}

func (v Value) IsPresent() bool {
	return v.present
}

// Reading is one temperature/humidity sample.
type Reading struct {
	Temperature Value
	Humidity    Value
}

// Valid reports whether both components are present.
func (r Reading) Valid() bool {
	return r.Temperature.present && r.Humidity.present
}
