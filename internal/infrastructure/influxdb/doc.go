// Package influxdb stores the bridge's time series.
//
// Two measurements, both written through influxdb-client-go's
// non-blocking batched API:
//
//	onewire_reading   polled channel values, tagged sensor_id/sensor_type/channel
//	onewire_scan      per-scan device and error counts, tagged scan_id
//
// The poller and scanner call the Write methods fire-and-forget; batch
// delivery failures come back asynchronously through SetOnError and are
// logged, never retried, since the next poll cycle supersedes the lost
// points anyway. InfluxDB being down therefore degrades history, not
// live MQTT state.
package influxdb
