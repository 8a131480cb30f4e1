package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/michd9/clima/internal/config"
	"github.com/michd9/clima/internal/filter"
	"github.com/michd9/clima/internal/httpapi"
	"github.com/michd9/clima/internal/monitor"
	"github.com/michd9/clima/internal/mqtt"
	"github.com/michd9/clima/internal/sensor"
)

const shutdownTimeout = 10 * time.Second

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("initializing",
		"mqtt_broker", cfg.MQTTBroker,
		"mqtt_port", cfg.MQTTPort,
		"mqtt_client_id", cfg.MQTTClientID,
		"mqtt_topic", cfg.MQTTTopic,
		"sensor_driver", cfg.SensorDriver,
		"poll_interval", cfg.SensorPollInterval,
		"window_size", cfg.FilterWindowSize,
		"station_id", cfg.StationID,
		"http_addr", cfg.HTTPAddr,
	)

	sensorFilter, err := filter.New(cfg.FilterWindowSize)
	if err != nil {
		return err
	}

	driver, err := sensor.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := driver.Close(); err != nil {
			slog.Error("sensor close", "error", err)
		}
	}()

	logger := slog.Default()

	mqttClient, err := mqtt.NewClient(cfg, logger.With("component", "mqtt"))
	if err != nil {
		return err
	}
	defer mqttClient.Disconnect()

	mon := monitor.New(
		sensor.NewSampler(driver, logger.With("component", "sensor")),
		sensorFilter,
		mqttClient,
		monitor.Options{
			Interval:  cfg.SensorPollInterval,
			StationID: cfg.StationID,
			Logger:    logger.With("component", "monitor"),
		},
	)

	srv := httpapi.NewServer(cfg.HTTPAddr, httpapi.NewMux(sensorFilter, mqttClient))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Readings taken before the broker is reachable still feed the filter;
		// publishing them fails and is logged by the monitor.
		if err := mqttClient.Connect(ctx); err != nil {
			if ctx.Err() == nil {
				slog.Error("mqtt connect failed", "error", err)
			}
		}
		return nil
	})

	g.Go(func() error {
		return mon.Run(ctx)
	})

	g.Go(func() error {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		slog.Info("http shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
