package filter

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFilter(t *testing.T, windowSize int) *SensorFilter {
	t.Helper()

	f, err := New(windowSize)
	require.NoError(t, err)
	return f
}

func addPairs(f *SensorFilter, pairs ...[2]float64) {
	for _, p := range pairs {
		f.AddReading(Present(p[0]), Present(p[1]))
	}
}

func TestNew(t *testing.T) {
	for _, size := range []int{1, 2, DefaultWindowSize, 100} {
		f := newFilter(t, size)

		assert.Equal(t, size, f.WindowSize())
		assert.Zero(t, f.Len())
		assert.False(t, f.IsStable())
		assert.Empty(t, f.temperature.slice())
		assert.Empty(t, f.humidity.slice())
	}
}

func TestNew_InvalidWindowSize(t *testing.T) {
	for _, size := range []int{0, -1, -5} {
		f, err := New(size)
		require.ErrorIs(t, err, ErrInvalidWindowSize)
		assert.Nil(t, f)
	}
}

func TestAddReading(t *testing.T) {
	f := newFilter(t, DefaultWindowSize)

	f.AddReading(Present(20.5), Present(55.0))

	assert.Equal(t, 1, f.Len())
	assert.Equal(t, []float64{20.5}, f.temperature.slice())
	assert.Equal(t, []float64{55.0}, f.humidity.slice())
}

func TestAddReading_AbsentIsNoop(t *testing.T) {
	tests := []struct {
		name        string
		temperature Value
		humidity    Value
	}{
		{name: "both absent", temperature: Absent(), humidity: Absent()},
		{name: "temperature absent", temperature: Absent(), humidity: Present(50)},
		{name: "humidity absent", temperature: Present(20), humidity: Absent()},
		{name: "zero value", temperature: Value{}, humidity: Value{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFilter(t, 3)
			addPairs(f, [2]float64{20, 50}, [2]float64{21, 51})

			f.AddReading(tt.temperature, tt.humidity)

			assert.Equal(t, 2, f.Len())
			assert.Equal(t, []float64{20, 21}, f.temperature.slice())
			assert.Equal(t, []float64{50, 51}, f.humidity.slice())
		})
	}
}

func TestAddReading_UnrepresentableIsNoop(t *testing.T) {
	tests := []struct {
		name        string
		temperature Value
		humidity    Value
	}{
		{name: "nan temperature", temperature: Present(math.NaN()), humidity: Present(50)},
		{name: "nan humidity", temperature: Present(20), humidity: Present(math.NaN())},
		{name: "positive infinity", temperature: Present(math.Inf(1)), humidity: Present(50)},
		{name: "negative infinity", temperature: Present(20), humidity: Present(math.Inf(-1))},
		{name: "huge temperature", temperature: Present(1e300), humidity: Present(50)},
		{name: "huge negative humidity", temperature: Present(20), humidity: Present(-1e300)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFilter(t, 2)

			f.AddReading(tt.temperature, tt.humidity)

			assert.Zero(t, f.Len())
			_, _, ok := f.Filtered()
			assert.False(t, ok)

			f.AddReading(Present(21), Present(49))

			temperature, humidity, ok := f.Filtered()
			require.True(t, ok)
			assert.Equal(t, 21, temperature)
			assert.Equal(t, 49, humidity)
		})
	}
}

func TestAddReading_LargeFiniteValueKept(t *testing.T) {
	f := newFilter(t, 1)

	f.AddReading(Present(-1e9), Present(1e9))

	temperature, humidity, ok := f.Filtered()
	require.True(t, ok)
	assert.Equal(t, -1_000_000_000, temperature)
	assert.Equal(t, 1_000_000_000, humidity)
}

func TestAddReading_AbsentOnEmptyFilter(t *testing.T) {
	f := newFilter(t, 1)

	f.Add(Reading{})

	_, _, ok := f.Filtered()
	assert.False(t, ok)
	assert.False(t, f.IsStable())
}

func TestAddReading_ZeroIsPresent(t *testing.T) {
	f := newFilter(t, 2)

	f.AddReading(Present(0), Present(0))

	temperature, humidity, ok := f.Filtered()
	require.True(t, ok)
	assert.Zero(t, temperature)
	assert.Zero(t, humidity)
	assert.Equal(t, 1, f.Len())
}

func TestFiltered_Empty(t *testing.T) {
	f := newFilter(t, DefaultWindowSize)

	temperature, humidity, ok := f.Filtered()
	assert.False(t, ok)
	assert.Zero(t, temperature)
	assert.Zero(t, humidity)
}

func TestFiltered_FullWindow(t *testing.T) {
	f := newFilter(t, 5)
	for i := 0; i < 5; i++ {
		f.AddReading(Present(20+float64(i)), Present(50+float64(i)))
	}

	temperature, humidity, ok := f.Filtered()
	require.True(t, ok)
	assert.Equal(t, 22, temperature)
	assert.Equal(t, 52, humidity)
	assert.True(t, f.IsStable())
}

func TestFiltered_FaultDuringWarmUp(t *testing.T) {
	f := newFilter(t, 5)
	f.AddReading(Present(20), Present(50))
	f.AddReading(Present(21), Present(51))
	f.AddReading(Absent(), Absent())
	f.AddReading(Present(22), Present(52))
	f.AddReading(Present(23), Present(53))

	assert.Equal(t, 4, f.Len())
	assert.False(t, f.IsStable())

	// 21.5 and 51.5 both round to the even neighbour.
	temperature, humidity, ok := f.Filtered()
	require.True(t, ok)
	assert.Equal(t, 22, temperature)
	assert.Equal(t, 52, humidity)
}

func TestFiltered_WindowOfOne(t *testing.T) {
	f := newFilter(t, 1)
	f.AddReading(Present(10), Present(40))

	assert.True(t, f.IsStable())
	temperature, humidity, ok := f.Filtered()
	require.True(t, ok)
	assert.Equal(t, 10, temperature)
	assert.Equal(t, 40, humidity)

	f.AddReading(Present(12), Present(44))
	temperature, humidity, _ = f.Filtered()
	assert.Equal(t, 12, temperature)
	assert.Equal(t, 44, humidity)
	assert.Equal(t, 1, f.Len())
}

func TestFiltered_PartialWindowMean(t *testing.T) {
	f := newFilter(t, 10)
	addPairs(f, [2]float64{18.2, 40.1}, [2]float64{19.1, 41.3}, [2]float64{20.0, 45.2})

	temperature, humidity, ok := f.Filtered()
	require.True(t, ok)
	assert.Equal(t, 19, temperature)
	assert.Equal(t, 42, humidity)
	assert.False(t, f.IsStable())
}

func TestFiltered_RoundHalfToEven(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want int
	}{
		{name: "22.5 rounds down", a: 22, b: 23, want: 22},
		{name: "23.5 rounds up", a: 23, b: 24, want: 24},
		{name: "0.5 rounds to zero", a: 0, b: 1, want: 0},
		{name: "-0.5 rounds to zero", a: 0, b: -1, want: 0},
		{name: "-1.5 rounds to -2", a: -1, b: -2, want: -2},
		{name: "above half rounds up", a: 22, b: 23.2, want: 23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFilter(t, 2)
			addPairs(f, [2]float64{tt.a, tt.a}, [2]float64{tt.b, tt.b})

			temperature, humidity, ok := f.Filtered()
			require.True(t, ok)
			assert.Equal(t, tt.want, temperature)
			assert.Equal(t, tt.want, humidity)
		})
	}
}

func TestFiltered_SlidingWindow(t *testing.T) {
	f := newFilter(t, 3)
	addPairs(f,
		[2]float64{100, 0},
		[2]float64{10, 60},
		[2]float64{11, 61},
		[2]float64{12, 62},
	)

	assert.Equal(t, []float64{10, 11, 12}, f.temperature.slice())
	assert.Equal(t, []float64{60, 61, 62}, f.humidity.slice())

	temperature, humidity, ok := f.Filtered()
	require.True(t, ok)
	assert.Equal(t, 11, temperature)
	assert.Equal(t, 61, humidity)
}

func TestFiltered_Idempotent(t *testing.T) {
	f := newFilter(t, 4)
	addPairs(f, [2]float64{20.4, 50.6}, [2]float64{21.7, 49.9})

	t1, h1, ok1 := f.Filtered()
	t2, h2, ok2 := f.Filtered()

	assert.Equal(t, t1, t2)
	assert.Equal(t, h1, h2)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, 2, f.Len())
}

func TestIsStable_Lifecycle(t *testing.T) {
	const windowSize = 4
	f := newFilter(t, windowSize)

	for i := 1; i <= 3*windowSize; i++ {
		f.AddReading(Present(float64(i)), Present(float64(i)))

		assert.Equal(t, min(i, windowSize), f.Len())
		assert.Equal(t, i >= windowSize, f.IsStable(), "after %d readings", i)
		assert.Len(t, f.humidity.slice(), f.temperature.len())
	}
}

func TestSnapshot(t *testing.T) {
	f := newFilter(t, 3)

	s, ok := f.Snapshot()
	assert.False(t, ok)
	assert.Equal(t, Snapshot{WindowSize: 3}, s)

	addPairs(f, [2]float64{20, 50}, [2]float64{22, 54})
	s, ok = f.Snapshot()
	require.True(t, ok)
	assert.Equal(t, Snapshot{Temperature: 21, Humidity: 52, Samples: 2, WindowSize: 3}, s)

	addPairs(f, [2]float64{24, 56})
	s, ok = f.Snapshot()
	require.True(t, ok)
	assert.Equal(t, Snapshot{Temperature: 22, Humidity: 53, Samples: 3, WindowSize: 3, Stable: true}, s)
}

func TestSensorFilter_ConcurrentAccess(t *testing.T) {
	f := newFilter(t, 8)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				f.AddReading(Present(21), Present(48))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = f.Snapshot()
				_ = f.IsStable()
			}
		}()
	}
	wg.Wait()

	s, ok := f.Snapshot()
	require.True(t, ok)
	assert.Equal(t, Snapshot{Temperature: 21, Humidity: 48, Samples: 8, WindowSize: 8, Stable: true}, s)
}

func TestValue(t *testing.T) {
	v, ok := Present(0).Get()
	assert.True(t, ok)
	assert.Zero(t, v)

	_, ok = Absent().Get()
	assert.False(t, ok)
	assert.False(t, Value{}.IsPresent())

	assert.True(t, Reading{Temperature: Present(1), Humidity: Present(2)}.Valid())
	assert.False(t, Reading{Temperature: Present(1)}.Valid())
}
