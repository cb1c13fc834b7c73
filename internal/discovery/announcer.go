package discovery

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nerrad567/gray-logic-onewire/internal/infrastructure/mqtt"
)

// Publisher is the broker surface the announcer needs. mqtt.Client
// satisfies it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishRetained(topic string, payload []byte) error
}

// MQTTAnnouncer publishes discovery results to the broker.
//
// Sensor announcements are retained so consumers that connect after a
// scan still see the current population. Scan summaries are not
// retained; they are events, not state.
type MQTTAnnouncer struct {
	pub    Publisher
	topics mqtt.Topics
	qos    byte
}

// Interface compliance check.
var _ Announcer = (*MQTTAnnouncer)(nil)

// NewMQTTAnnouncer creates an announcer publishing at the given QoS.
func NewMQTTAnnouncer(pub Publisher, qos byte) *MQTTAnnouncer {
	return &MQTTAnnouncer{pub: pub, qos: qos}
}

// AnnounceSensor publishes a discovered sensor's metadata, retained.
//
// Topic: graylogic/onewire/discovery/<normalized id>
func (a *MQTTAnnouncer) AnnounceSensor(rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling sensor announcement: %w", err)
	}

	topic := a.topics.Discovery(normalizeID(rec.SensorID))
	if err := a.pub.PublishRetained(topic, payload); err != nil {
		return fmt.Errorf("publishing sensor announcement: %w", err)
	}

	return nil
}

// AnnounceScan publishes a completed scan's summary.
//
// Topic: graylogic/onewire/discovery/scan
func (a *MQTTAnnouncer) AnnounceScan(run ScanRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshalling scan announcement: %w", err)
	}

	if err := a.pub.Publish(a.topics.ScanResult(), payload, a.qos, false); err != nil {
		return fmt.Errorf("publishing scan announcement: %w", err)
	}

	return nil
}

// normalizeID converts a bus address to its topic-safe underscore form.
func normalizeID(sensorID string) string {
	return strings.ReplaceAll(sensorID, ".", "_")
}
