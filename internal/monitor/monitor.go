package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/michd9/clima/internal/filter"
	"github.com/michd9/clima/internal/mqtt"
)

// Sampler produces one reading per call. Faults come back as absent values.
type Sampler interface {
	Sample() filter.Reading
}

// Publisher forwards filtered values. It must publish nothing while stable is
// false.
type Publisher interface {
	PublishReadings(temperature, humidity int, stable bool) (bool, error)
}

// StationPublisher is implemented by publishers that also report per-station
// telemetry and health.
type StationPublisher interface {
	PublishTelemetry(telemetry mqtt.Telemetry) error
	PublishStationHealth(health mqtt.StationHealth) error
}

type Options struct {
	Interval time.Duration
	// StationID enables telemetry and health publishing when set and the
	// publisher supports it.
	StationID string
	Logger    *slog.Logger
}

// Monitor runs the sample, filter, publish cycle.
type Monitor struct {
	sampler   Sampler
	filter    *filter.SensorFilter
	publisher Publisher
	station   StationPublisher
	opts      Options
	now       func() time.Time
}

func New(sampler Sampler, f *filter.SensorFilter, publisher Publisher, opts Options) *Monitor {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	m := &Monitor{
		sampler:   sampler,
		filter:    f,
		publisher: publisher,
		opts:      opts,
		now:       time.Now,
	}
	if sp, ok := publisher.(StationPublisher); ok && opts.StationID != "" {
		m.station = sp
	}
	return m
}

// Run ticks every Interval until ctx is done. Cycles never overlap.
func (m *Monitor) Run(ctx context.Context) error {
	m.opts.Logger.Info("starting sensor monitoring",
		"interval", m.opts.Interval,
		"window_size", m.filter.WindowSize(),
	)

	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// Tick performs a single cycle.
func (m *Monitor) Tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	reading := m.sampler.Sample()
	m.filter.Add(reading)

	if !reading.Valid() {
		m.opts.Logger.Warn("skipping cycle: sensor reading unavailable")
		m.publishHealth(false)
		return
	}
	m.publishHealth(true)

	snapshot, ok := m.filter.Snapshot()
	if !ok {
		return
	}

	if !snapshot.Stable {
		m.opts.Logger.Info("collecting initial readings for stable filter output",
			"samples", snapshot.Samples,
			"window_size", snapshot.WindowSize,
		)
		return
	}

	published, err := m.publisher.PublishReadings(snapshot.Temperature, snapshot.Humidity, snapshot.Stable)
	if err != nil {
		m.opts.Logger.Error("failed to publish readings",
			"temperature_c", snapshot.Temperature,
			"humidity_pct", snapshot.Humidity,
			"error", err,
		)
		return
	}
	if published {
		m.opts.Logger.Info("filtered",
			"temperature_c", snapshot.Temperature,
			"humidity_pct", snapshot.Humidity,
		)
	}

	m.publishTelemetry(snapshot)
}

func (m *Monitor) publishTelemetry(s filter.Snapshot) {
	if m.station == nil {
		return
	}

	temperature, humidity := float64(s.Temperature), float64(s.Humidity)
	err := m.station.PublishTelemetry(mqtt.Telemetry{
		StationID:   m.opts.StationID,
		Timestamp:   m.now(),
		Temperature: &temperature,
		Humidity:    &humidity,
		Samples:     s.Samples,
		WindowSize:  s.WindowSize,
	})
	if err != nil {
		m.opts.Logger.Warn("failed to publish telemetry", "station_id", m.opts.StationID, "error", err)
	}
}

func (m *Monitor) publishHealth(healthy bool) {
	if m.station == nil {
		return
	}

	err := m.station.PublishStationHealth(mqtt.StationHealth{
		StationID: m.opts.StationID,
		LastSeen:  m.now(),
		Healthy:   healthy,
	})
	if err != nil {
		m.opts.Logger.Warn("failed to publish station health", "station_id", m.opts.StationID, "error", err)
	}
}
