package discovery

import (
	"time"

	"github.com/nerrad567/gray-logic-onewire/internal/onewire"
)

// Record is the persisted form of a discovered sensor.
//
// One record exists per physical device. Secondaries attached to a
// multisensor carry the owner's id in AssociatedWith; top-level devices
// leave it empty.
type Record struct {
	SensorID         string    `json:"sensor_id"`
	Family           string    `json:"family"`
	SensorType       string    `json:"sensor_type"`
	ThingType        string    `json:"thing_type,omitempty"`
	Label            string    `json:"label,omitempty"`
	Vendor           string    `json:"vendor,omitempty"`
	HardwareRevision string    `json:"hardware_revision,omitempty"`
	ProductionDate   string    `json:"production_date,omitempty"`
	AssociatedWith   string    `json:"associated_with,omitempty"`
	Present          bool      `json:"present"`
	FirstSeen        time.Time `json:"first_seen"`
	LastSeen         time.Time `json:"last_seen"`
}

// recordFromItem converts a classified item into its persisted form.
//
// Thing type and label are best-effort: unmapped types (UNKNOWN, bare
// coarse types that never resolved) simply leave both fields empty.
func recordFromItem(item *onewire.DiscoveryItem, associatedWith string, now time.Time) Record {
	rec := Record{
		SensorID:         item.SensorID().String(),
		Family:           item.SensorID().Family(),
		SensorType:       item.SensorType().String(),
		Vendor:           item.Vendor(),
		HardwareRevision: item.HardwareRevision(),
		ProductionDate:   item.ProductionDate(),
		AssociatedWith:   associatedWith,
		Present:          true,
		FirstSeen:        now,
		LastSeen:         now,
	}

	if uid, err := item.ThingTypeUID(); err == nil {
		rec.ThingType = uid.String()
	}
	if label, err := item.Label(); err == nil {
		rec.Label = label
	}

	return rec
}

// ScanRun captures the outcome of one pass over the bus.
type ScanRun struct {
	ID           string     `json:"id"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	SensorsFound int        `json:"sensors_found"`
	Errors       int        `json:"errors"`
}
