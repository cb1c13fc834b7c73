package mqtt

import "fmt"

// Topic prefixes for the 1-Wire bridge.
//
// All topics use the flat scheme: graylogic/onewire/{category}/{sensor_id}
// Sensor IDs use the underscore form (e.g. "28_AB12CD34EF00") so the dot in
// the bus address never collides with broker path conventions.
const (
	// TopicPrefixOneWire is the base for all 1-Wire bridge topics.
	TopicPrefixOneWire = "graylogic/onewire"
)

// Topics provides builders for 1-Wire bridge MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.SensorState("28_AB12CD34EF00", "temperature")
//	// Returns: "graylogic/onewire/sensor/28_AB12CD34EF00/temperature"
type Topics struct{}

// Discovery returns the retained topic for a discovered sensor's metadata.
//
// Example: graylogic/onewire/discovery/26_0123456789AB
func (Topics) Discovery(sensorID string) string {
	return fmt.Sprintf("%s/discovery/%s", TopicPrefixOneWire, sensorID)
}

// ScanResult returns the topic for bus scan completion events.
//
// Example: graylogic/onewire/discovery/scan
func (Topics) ScanResult() string {
	return fmt.Sprintf("%s/discovery/scan", TopicPrefixOneWire)
}

// ScanCommand returns the topic the bridge subscribes to for remotely
// triggered bus scans. Any payload on this topic requests a scan.
//
// Example: graylogic/onewire/command/scan
func (Topics) ScanCommand() string {
	return fmt.Sprintf("%s/command/scan", TopicPrefixOneWire)
}

// SensorState returns the topic for a sensor channel reading.
//
// Example: graylogic/onewire/sensor/28_AB12CD34EF00/temperature
func (Topics) SensorState(sensorID, channel string) string {
	return fmt.Sprintf("%s/sensor/%s/%s", TopicPrefixOneWire, sensorID, channel)
}

// Health returns the bridge health status topic.
//
// Example: graylogic/onewire/health
func (Topics) Health() string {
	return fmt.Sprintf("%s/health", TopicPrefixOneWire)
}

// AllDiscovery returns a pattern matching all discovery announcements.
//
// Pattern: graylogic/onewire/discovery/+
func (Topics) AllDiscovery() string {
	return fmt.Sprintf("%s/discovery/+", TopicPrefixOneWire)
}

// AllSensorStates returns a pattern matching all sensor readings.
//
// Pattern: graylogic/onewire/sensor/+/+
func (Topics) AllSensorStates() string {
	return fmt.Sprintf("%s/sensor/+/+", TopicPrefixOneWire)
}

// AllTopics returns a pattern matching all 1-Wire bridge topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: graylogic/onewire/#
func (Topics) AllTopics() string {
	return fmt.Sprintf("%s/#", TopicPrefixOneWire)
}
