package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string
	MQTTQoS      byte

	SensorDriver       string
	I2CBus             int
	BME280Address      uint16
	DHTPin             string
	SensorPollInterval time.Duration
	FilterWindowSize   int

	// StationID enables the stations/<id>/telemetry and stations/<id>/health
	// topics when set.
	StationID string
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	if mqttBroker == "" {
		mqttBroker = "localhost"
	}

	mqttPortStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if mqttPortStr == "" {
		mqttPortStr = "1883"
	}
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}
	if mqttPort < 1 || mqttPort > 65535 {
		return Config{}, fmt.Errorf("MQTT_PORT must be between 1 and 65535, got %d", mqttPort)
	}

	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "serverS"
	}

	mqttTopic := strings.TrimSpace(os.Getenv("MQTT_TOPIC"))
	if mqttTopic == "" {
		mqttTopic = "sensor/dht"
	}
	if strings.ContainsAny(mqttTopic, "#+") || strings.HasSuffix(mqttTopic, "/") {
		return Config{}, fmt.Errorf("invalid MQTT_TOPIC %q (no wildcards or trailing slash)", mqttTopic)
	}

	mqttQoSStr := strings.TrimSpace(os.Getenv("MQTT_QOS"))
	if mqttQoSStr == "" {
		mqttQoSStr = "0"
	}
	mqttQoS, err := strconv.ParseUint(mqttQoSStr, 10, 8)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_QOS %q: %w", mqttQoSStr, err)
	}
	if mqttQoS > 2 {
		return Config{}, fmt.Errorf("invalid MQTT_QOS %q (allowed: 0, 1, 2)", mqttQoSStr)
	}

	sensorDriver := strings.ToLower(strings.TrimSpace(os.Getenv("SENSOR_DRIVER")))
	if sensorDriver == "" {
		sensorDriver = "bmxx80"
	}
	switch sensorDriver {
	case "bmxx80", "bsbmp", "dht22", "dummy":
	default:
		return Config{}, fmt.Errorf("invalid SENSOR_DRIVER %q (allowed: bmxx80, bsbmp, dht22, dummy)", sensorDriver)
	}

	i2cBusStr := strings.TrimSpace(os.Getenv("I2C_BUS"))
	if i2cBusStr == "" {
		i2cBusStr = "1"
	}
	i2cBus, err := strconv.Atoi(i2cBusStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid I2C_BUS %q: %w", i2cBusStr, err)
	}
	if i2cBus < 0 {
		return Config{}, fmt.Errorf("I2C_BUS must not be negative, got %d", i2cBus)
	}

	bme280AddressStr := strings.TrimSpace(os.Getenv("BME280_ADDRESS"))
	if bme280AddressStr == "" {
		bme280AddressStr = "0x76"
	}
	bme280Address, err := strconv.ParseUint(bme280AddressStr, 0, 16)
	if err != nil {
		return Config{}, fmt.Errorf("invalid BME280_ADDRESS %q: %w", bme280AddressStr, err)
	}

	dhtPin := strings.ToUpper(strings.TrimSpace(os.Getenv("DHT_PIN")))
	if dhtPin == "" {
		dhtPin = "GPIO4"
	}
	if strings.ContainsAny(dhtPin, " \t") {
		return Config{}, fmt.Errorf("invalid DHT_PIN %q", dhtPin)
	}

	sensorPollIntervalStr := strings.TrimSpace(os.Getenv("SENSOR_POLL_INTERVAL"))
	if sensorPollIntervalStr == "" {
		sensorPollIntervalStr = "30s"
	}
	sensorPollInterval, err := time.ParseDuration(sensorPollIntervalStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SENSOR_POLL_INTERVAL %q: %w", sensorPollIntervalStr, err)
	}
	if sensorPollInterval <= 0 {
		return Config{}, fmt.Errorf("SENSOR_POLL_INTERVAL must be positive, got %v", sensorPollInterval)
	}

	windowSizeStr := strings.TrimSpace(os.Getenv("FILTER_WINDOW_SIZE"))
	if windowSizeStr == "" {
		windowSizeStr = "5"
	}
	windowSize, err := strconv.Atoi(windowSizeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid FILTER_WINDOW_SIZE %q: %w", windowSizeStr, err)
	}
	if windowSize <= 0 {
		return Config{}, fmt.Errorf("FILTER_WINDOW_SIZE must be positive, got %d", windowSize)
	}

	return Config{
		AppEnv:             appEnv,
		LogLevel:           level,
		HTTPAddr:           httpAddr,
		MQTTBroker:         mqttBroker,
		MQTTPort:           mqttPort,
		MQTTClientID:       mqttClientID,
		MQTTTopic:          mqttTopic,
		MQTTQoS:            byte(mqttQoS),
		SensorDriver:       sensorDriver,
		I2CBus:             i2cBus,
		BME280Address:      uint16(bme280Address),
		DHTPin:             dhtPin,
		SensorPollInterval: sensorPollInterval,
		FilterWindowSize:   windowSize,
		StationID:          strings.TrimSpace(os.Getenv("STATION_ID")),
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
