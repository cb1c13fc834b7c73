package discovery

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// fakePublisher captures published messages.
type fakePublisher struct {
	published []publishedMsg
	err       error
}

type publishedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

func (f *fakePublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMsg{topic, payload, qos, retained})
	return nil
}

func (f *fakePublisher) PublishRetained(topic string, payload []byte) error {
	return f.Publish(topic, payload, 1, true)
}

func TestMQTTAnnouncer_AnnounceSensor(t *testing.T) {
	pub := &fakePublisher{}
	announcer := NewMQTTAnnouncer(pub, 1)

	rec := Record{
		SensorID:   "26.000000000001",
		Family:     "26",
		SensorType: "AMS",
		ThingType:  "onewire:ams",
		Label:      "Advanced Multisensor (26.000000000001)",
		Present:    true,
		FirstSeen:  time.Now().UTC(),
		LastSeen:   time.Now().UTC(),
	}

	if err := announcer.AnnounceSensor(rec); err != nil {
		t.Fatalf("AnnounceSensor() error = %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.published))
	}

	msg := pub.published[0]
	wantTopic := "graylogic/onewire/discovery/26_000000000001"
	if msg.topic != wantTopic {
		t.Errorf("topic = %q, want %q", msg.topic, wantTopic)
	}
	if !msg.retained {
		t.Error("sensor announcement not retained")
	}

	var got Record
	if err := json.Unmarshal(msg.payload, &got); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if got.SensorID != rec.SensorID || got.ThingType != rec.ThingType {
		t.Errorf("payload record = %+v, want %+v", got, rec)
	}
}

func TestMQTTAnnouncer_AnnounceScan(t *testing.T) {
	pub := &fakePublisher{}
	announcer := NewMQTTAnnouncer(pub, 1)

	completed := time.Now().UTC()
	run := ScanRun{
		ID:           "scan-test-001",
		StartedAt:    completed.Add(-3 * time.Second),
		CompletedAt:  &completed,
		SensorsFound: 4,
	}

	if err := announcer.AnnounceScan(run); err != nil {
		t.Fatalf("AnnounceScan() error = %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.published))
	}

	msg := pub.published[0]
	if msg.topic != "graylogic/onewire/discovery/scan" {
		t.Errorf("topic = %q, want graylogic/onewire/discovery/scan", msg.topic)
	}
	if msg.retained {
		t.Error("scan announcement retained, want transient")
	}

	var got ScanRun
	if err := json.Unmarshal(msg.payload, &got); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if got.ID != run.ID || got.SensorsFound != run.SensorsFound {
		t.Errorf("payload run = %+v, want %+v", got, run)
	}
}

func TestMQTTAnnouncer_PublishFailure(t *testing.T) {
	pubErr := errors.New("broker gone")
	announcer := NewMQTTAnnouncer(&fakePublisher{err: pubErr}, 1)

	if err := announcer.AnnounceSensor(Record{SensorID: "28.000000000001"}); !errors.Is(err, pubErr) {
		t.Errorf("AnnounceSensor() error = %v, want wrapped %v", err, pubErr)
	}
	if err := announcer.AnnounceScan(ScanRun{ID: "x"}); !errors.Is(err, pubErr) {
		t.Errorf("AnnounceScan() error = %v, want wrapped %v", err, pubErr)
	}
}
