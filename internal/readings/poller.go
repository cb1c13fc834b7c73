package readings

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-onewire/internal/discovery"
	"github.com/nerrad567/gray-logic-onewire/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-onewire/internal/onewire"
)

// Measurement channel names. These double as owserver attribute paths and
// MQTT topic segments.
const (
	ChannelTemperature = "temperature"
	ChannelHumidity    = "humidity"
)

// Reader reads numeric attributes from the bus. owserver.Client satisfies it.
type Reader interface {
	ReadFloat(ctx context.Context, id onewire.SensorID, attribute string) (float64, error)
}

// SensorSource supplies the sensors to poll. discovery.Repository
// satisfies it.
type SensorSource interface {
	ListPresent(ctx context.Context) ([]discovery.Record, error)
}

// Publisher is the broker surface for publishing readings. mqtt.Client
// satisfies it.
type Publisher interface {
	PublishString(topic string, payload string, qos byte, retained bool) error
}

// MetricsWriter records readings in the time-series store. influxdb.Client
// satisfies it. Writes are fire-and-forget; the client batches internally.
type MetricsWriter interface {
	WriteSensorReading(sensorID, sensorType, channel string, value float64)
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// PollerStats tracks polling statistics for monitoring.
type PollerStats struct {
	CyclesTotal   uint64 `json:"cycles_total"`
	ReadingsTotal uint64 `json:"readings_total"`
	ErrorsTotal   uint64 `json:"errors_total"`
}

// Reading is one sampled value from one sensor channel.
type Reading struct {
	SensorID   string    `json:"sensor_id"`
	SensorType string    `json:"sensor_type"`
	Channel    string    `json:"channel"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}

// Poller reads measurement channels from present sensors on a fixed
// interval and publishes the values.
//
// Publisher and MetricsWriter are optional; nil disables the respective
// output. The poller itself holds no sensor state between cycles.
type Poller struct {
	reader  Reader
	source  SensorSource
	pub     Publisher
	metrics MetricsWriter
	topics  mqtt.Topics
	qos     byte

	cyclesTotal   atomic.Uint64
	readingsTotal atomic.Uint64
	errorsTotal   atomic.Uint64

	logger   Logger
	loggerMu sync.RWMutex
}

// NewPoller creates a Poller. pub and metrics may be nil.
func NewPoller(reader Reader, source SensorSource, pub Publisher, metrics MetricsWriter, qos byte) *Poller {
	return &Poller{
		reader:  reader,
		source:  source,
		pub:     pub,
		metrics: metrics,
		qos:     qos,
	}
}

// Run polls until ctx is cancelled. A zero or negative interval disables
// polling and returns immediately.
func (p *Poller) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.Poll(ctx); err != nil {
				p.logError("poll cycle", "error", err)
			}
		}
	}
}

// Poll performs one cycle over all present sensors and returns the
// collected readings. Per-sensor failures are logged and counted; only a
// failure to list the sensor population returns an error.
func (p *Poller) Poll(ctx context.Context) ([]Reading, error) {
	sensors, err := p.source.ListPresent(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sensors to poll: %w", err)
	}

	var readings []Reading
	errCount := 0
	for _, sensor := range sensors {
		for _, channel := range channelsFor(onewire.ParseSensorType(sensor.SensorType)) {
			reading, err := p.read(ctx, sensor, channel)
			if err != nil {
				errCount++
				p.logWarn("reading sensor channel",
					"sensor", sensor.SensorID, "channel", channel, "error", err)
				continue
			}
			p.emit(reading)
			readings = append(readings, reading)
		}
	}

	p.cyclesTotal.Add(1)
	p.readingsTotal.Add(uint64(len(readings)))
	p.errorsTotal.Add(uint64(errCount))

	p.logDebug("poll cycle completed",
		"sensors", len(sensors), "readings", len(readings), "errors", errCount)

	return readings, nil
}

// channelsFor returns the measurement channels a sensor type exposes,
// temperature first.
func channelsFor(t onewire.SensorType) []string {
	var channels []string
	if t.HasTemperature() {
		channels = append(channels, ChannelTemperature)
	}
	if t.HasHumidity() {
		channels = append(channels, ChannelHumidity)
	}
	return channels
}

func (p *Poller) read(ctx context.Context, sensor discovery.Record, channel string) (Reading, error) {
	id, err := onewire.ParseSensorID(sensor.SensorID)
	if err != nil {
		return Reading{}, err
	}

	value, err := p.reader.ReadFloat(ctx, id, channel)
	if err != nil {
		return Reading{}, err
	}

	return Reading{
		SensorID:   sensor.SensorID,
		SensorType: sensor.SensorType,
		Channel:    channel,
		Value:      value,
		Timestamp:  time.Now().UTC(),
	}, nil
}

// emit fans one reading out to the configured sinks.
//
// Topic: graylogic/onewire/sensor/<normalized id>/<channel>
func (p *Poller) emit(reading Reading) {
	if p.pub != nil {
		topic := p.topics.SensorState(normalizeID(reading.SensorID), reading.Channel)
		payload := strconv.FormatFloat(reading.Value, 'f', -1, 64)
		if err := p.pub.PublishString(topic, payload, p.qos, true); err != nil {
			p.logWarn("publishing reading", "topic", topic, "error", err)
		}
	}

	if p.metrics != nil {
		p.metrics.WriteSensorReading(reading.SensorID, reading.SensorType, reading.Channel, reading.Value)
	}
}

// normalizeID converts a bus address to its topic-safe underscore form.
func normalizeID(sensorID string) string {
	return strings.ReplaceAll(sensorID, ".", "_")
}

// Stats returns a snapshot of polling statistics.
func (p *Poller) Stats() PollerStats {
	return PollerStats{
		CyclesTotal:   p.cyclesTotal.Load(),
		ReadingsTotal: p.readingsTotal.Load(),
		ErrorsTotal:   p.errorsTotal.Load(),
	}
}

// SetLogger sets an optional logger for poll progress and failures.
func (p *Poller) SetLogger(logger Logger) {
	p.loggerMu.Lock()
	p.logger = logger
	p.loggerMu.Unlock()
}

func (p *Poller) logDebug(msg string, args ...any) {
	p.loggerMu.RLock()
	defer p.loggerMu.RUnlock()
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Poller) logWarn(msg string, args ...any) {
	p.loggerMu.RLock()
	defer p.loggerMu.RUnlock()
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Poller) logError(msg string, args ...any) {
	p.loggerMu.RLock()
	defer p.loggerMu.RUnlock()
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
