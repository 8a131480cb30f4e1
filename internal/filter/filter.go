package filter

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

const DefaultWindowSize = 5

var ErrInvalidWindowSize = errors.New("window size must be positive")

// maxMagnitude bounds accepted measurements so window means stay
// convertible to int.
const maxMagnitude = 1e15

// SensorFilter is a moving-average filter over the last WindowSize
// temperature/humidity readings.
//
// Both buffers are mutated together, so they always hold the same number of
// samples. It is safe for concurrent use.
type SensorFilter struct {
	mu          sync.Mutex
	windowSize  int
	temperature *ring
	humidity    *ring
}

// Snapshot is a consistent view of the filter output.
type Snapshot struct {
	Temperature int  `json:"temperature_c"`
	Humidity    int  `json:"humidity_pct"`
	Samples     int  `json:"samples"`
	WindowSize  int  `json:"window_size"`
	Stable      bool `json:"stable"`
}

func New(windowSize int) (*SensorFilter, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindowSize, windowSize)
	}

	return &SensorFilter{
		windowSize:  windowSize,
		temperature: newRing(windowSize),
		humidity:    newRing(windowSize),
	}, nil
}

// AddReading appends a sample, evicting the oldest one once the window is full.
// If either value is absent, not finite or beyond maxMagnitude the call is a
// no-op.
func (f *SensorFilter) AddReading(temperature, humidity Value) {
	t, ok := usable(temperature)
	if !ok {
		return
	}
	h, ok := usable(humidity)
	if !ok {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.temperature.push(t)
	f.humidity.push(h)
}

func usable(v Value) (float64, bool) {
	x, ok := v.Get()
	if !ok || math.IsNaN(x) || math.Abs(x) > maxMagnitude {
		return 0, false
	}
	return x, true
}

// Add is AddReading for a Reading.
func (f *SensorFilter) Add(r Reading) {
	f.AddReading(r.Temperature, r.Humidity)
}

// Filtered returns the window means rounded half to even. ok is false until
// the first reading has been accepted.
func (f *SensorFilter) Filtered() (temperature, humidity int, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.filtered()
}

// IsStable reports whether the window is full.
func (f *SensorFilter) IsStable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.temperature.len() == f.windowSize
}

func (f *SensorFilter) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.temperature.len()
}

func (f *SensorFilter) WindowSize() int {
	return f.windowSize
}

// Snapshot returns the filtered values together with the window state.
func (f *SensorFilter) Snapshot() (Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, h, ok := f.filtered()
	if !ok {
		return Snapshot{WindowSize: f.windowSize}, false
	}

	n := f.temperature.len()
	return Snapshot{
		Temperature: t,
		Humidity:    h,
		Samples:     n,
		WindowSize:  f.windowSize,
		Stable:      n == f.windowSize,
	}, true
}

func (f *SensorFilter) filtered() (int, int, bool) {
	if f.temperature.len() == 0 || f.humidity.len() == 0 {
		return 0, 0, false
	}

	return int(math.RoundToEven(f.temperature.mean())), int(math.RoundToEven(f.humidity.mean())), true
}
