package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names. Tag cardinality stays bounded by the bus: at most
// a few dozen sensor ids per bridge.
const (
	measurementReading = "onewire_reading"
	measurementScan    = "onewire_scan"
)

// WriteSensorReading records one polled channel value, tagged by bus
// address, classified type and channel. Non-blocking; dropped when the
// client is closed.
//
//	client.WriteSensorReading("28.AB12CD34EF00", "DS18B20", "temperature", 21.5)
func (c *Client) WriteSensorReading(sensorID, sensorType, channel string, value float64) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(
		measurementReading,
		map[string]string{
			"sensor_id":   sensorID,
			"sensor_type": sensorType,
			"channel":     channel,
		},
		map[string]interface{}{"value": value},
		time.Now(),
	))
}

// WriteScanSummary records the outcome of one bus scan. A falling
// sensor count or rising error count over time usually means wiring or
// owserver trouble.
func (c *Client) WriteScanSummary(scanID string, sensorsFound, errorCount int) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(
		measurementScan,
		map[string]string{"scan_id": scanID},
		map[string]interface{}{
			"sensors_found": sensorsFound,
			"errors":        errorCount,
		},
		time.Now(),
	))
}
