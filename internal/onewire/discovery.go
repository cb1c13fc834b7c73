package onewire

import (
	"context"
	"fmt"
)

// EDS name page layout: the first seven bytes of page 0 carry the subtype
// name in ASCII ("EDS0068"), and page 3 carries the firmware revision.
const (
	edsNamePage   = 0
	edsNameLength = 7

	edsRevisionPage       = 3
	edsRevisionLowOffset  = 3
	edsRevisionHighOffset = 4
)

const edsVendor = "Embedded Data Systems"

// BridgeHandler is the bus transport consumed during item construction.
// Implemented by the owserver client; tests substitute fakes.
type BridgeHandler interface {
	// GetType queries the raw device type.
	GetType(ctx context.Context, id SensorID) (SensorType, error)

	// ReadPages reads the device's memory pages.
	ReadPages(ctx context.Context, id SensorID) (PageBuffer, error)
}

// Logger is an optional observer for classification events.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
}

// classificationState tracks the item's position in the type state machine:
// decoded (construction complete, associations may still be attached) or
// resolved (type finalised, read-only from this package's perspective).
type classificationState int

const (
	stateDecoded classificationState = iota
	stateResolved
)

// associatedSensor pairs an attached secondary item with its type as
// captured at attach time. Holding them as one sequence keeps the
// item/type correspondence structural.
type associatedSensor struct {
	item *DiscoveryItem
	typ  SensorType
}

// familyDecoder populates a DiscoveryItem's fields for one device family.
// Adding a family means adding an entry to familyDecoders, never touching
// shared state.
type familyDecoder func(ctx context.Context, item *DiscoveryItem, handler BridgeHandler) error

var familyDecoders = map[SensorType]familyDecoder{
	TypeDS2438: decodeDS2438,
	TypeEDS:    decodeEDS,
}

// DiscoveryItem represents one device found during a discovery pass: its
// identity, resolved type, decoded metadata, and the association graph to
// secondary sensors wired to it.
//
// Lifecycle: constructed once per physical device; secondaries are attached
// during a post-pass once all devices on the segment are known; ResolveType
// finalises the classification. Not safe for concurrent mutation.
type DiscoveryItem struct {
	sensorID   SensorID
	sensorType SensorType
	vendor     string
	hwRevision string
	prodDate   string

	pages PageBuffer

	// associatedIDs come from this device's own configuration pages;
	// associated holds the items the caller attached afterwards.
	associatedIDs []SensorID
	associated    []associatedSensor

	state classificationState

	thingType      ThingTypeUID
	thingTypeValid bool

	logger Logger
}

// NewDiscoveryItem constructs an item for the given device, querying its
// type and dispatching to the family-specific decoder.
//
// Structural failures (bus errors, unreadable pages, unrecognised layouts)
// abort construction; recoverable ambiguity degrades the type to
// TypeUnknown while metadata fields stay usable.
func NewDiscoveryItem(ctx context.Context, handler BridgeHandler, sensorID SensorID) (*DiscoveryItem, error) {
	item := &DiscoveryItem{
		sensorID:   sensorID,
		sensorType: TypeUnknown,
		vendor:     defaultVendor,
	}

	sensorType, err := handler.GetType(ctx, sensorID)
	if err != nil {
		return nil, fmt.Errorf("querying type of %s: %w", sensorID, err)
	}
	item.sensorType = sensorType

	if decode, ok := familyDecoders[sensorType]; ok {
		if err := decode(ctx, item, handler); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", sensorID, err)
		}
	}

	return item, nil
}

// decodeDS2438 reads and decodes the configuration pages of a
// DS2438-family device, including the associated-sensor ROM slots.
func decodeDS2438(ctx context.Context, item *DiscoveryItem, handler BridgeHandler) error {
	pages, err := handler.ReadPages(ctx, item.sensorID)
	if err != nil {
		return err
	}
	item.pages = pages

	cfg, err := ParseDS2438Config(pages)
	if err != nil {
		return err
	}

	item.associatedIDs = cfg.AssociatedSensorIDs
	item.vendor = cfg.Vendor
	item.hwRevision = cfg.HardwareRevision
	item.prodDate = cfg.ProductionDate
	item.sensorType = cfg.SubType

	if len(item.associatedIDs) > 0 {
		item.logDebug("found associated sensors",
			"sensor", item.sensorID.String(),
			"associated", fmt.Sprint(item.associatedIDs))
	}
	return nil
}

// decodeEDS identifies an EDS sensor from its name page. Identification is
// best-effort: an unrecognised name resolves to TypeUnknown while the
// firmware revision is still decoded.
func decodeEDS(ctx context.Context, item *DiscoveryItem, handler BridgeHandler) error {
	item.vendor = edsVendor

	pages, err := handler.ReadPages(ctx, item.sensorID)
	if err != nil {
		return err
	}
	item.pages = pages

	name, err := pages.ASCII(edsNamePage, 0, edsNameLength)
	if err != nil {
		return err
	}
	item.sensorType = ParseSensorType(name)

	low, err := pages.Byte(edsRevisionPage, edsRevisionLowOffset)
	if err != nil {
		return err
	}
	high, err := pages.Byte(edsRevisionPage, edsRevisionHighOffset)
	if err != nil {
		return err
	}
	item.hwRevision = fmt.Sprintf("%d.%d", high, low)

	return nil
}

// SensorType returns the current (possibly still coarse) sensor type.
func (d *DiscoveryItem) SensorType() SensorType {
	return d.sensorType
}

// SensorID returns the device identity (familyId.serialDigits).
func (d *DiscoveryItem) SensorID() SensorID {
	return d.sensorID
}

// NormalizedSensorID returns the id in familyId_serialDigits form, for
// naming the discovery result.
func (d *DiscoveryItem) NormalizedSensorID() string {
	return d.sensorID.Normalized()
}

// Vendor returns the vendor name (decoded where available).
func (d *DiscoveryItem) Vendor() string {
	return d.vendor
}

// ProductionDate returns the production date in ww/yy form, where the
// device provides one.
func (d *DiscoveryItem) ProductionDate() string {
	return d.prodDate
}

// HardwareRevision returns the hardware revision, where available.
func (d *DiscoveryItem) HardwareRevision() string {
	return d.hwRevision
}

// Pages returns the raw memory pages read during construction.
func (d *DiscoveryItem) Pages() PageBuffer {
	return d.pages
}

// ThingTypeUID maps the current sensor type to its thing type identifier.
//
// The last successful lookup is cached and survives later type changes;
// Label falls back to it when the current type has no mapping. Returns an
// error wrapping ErrNoThingType when no mapping exists.
func (d *DiscoveryItem) ThingTypeUID() (ThingTypeUID, error) {
	uid, ok := ThingTypeMap[d.sensorType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoThingType, d.sensorType)
	}
	d.thingType = uid
	d.thingTypeValid = true
	return uid, nil
}

// HasAssociatedSensorIDs reports whether this device's pages named other
// sensor ids.
func (d *DiscoveryItem) HasAssociatedSensorIDs() bool {
	return len(d.associatedIDs) > 0
}

// AssociatedSensorIDs returns the ids found in this device's configuration
// pages, in slot order.
func (d *DiscoveryItem) AssociatedSensorIDs() []SensorID {
	return d.associatedIDs
}

// HasAssociatedSensors reports whether secondary items have been attached.
func (d *DiscoveryItem) HasAssociatedSensors() bool {
	return len(d.associated) > 0
}

// AddAssociatedSensor attaches a secondary item to this one, capturing its
// type. No deduplication is performed — callers must not attach the same
// secondary twice. Returns ErrAlreadyResolved once the type is finalised.
func (d *DiscoveryItem) AddAssociatedSensor(item *DiscoveryItem) error {
	if d.state == stateResolved {
		return fmt.Errorf("%w: %s", ErrAlreadyResolved, d.sensorID)
	}
	d.associated = append(d.associated, associatedSensor{item: item, typ: item.SensorType()})
	return nil
}

// AddAssociatedSensors attaches secondaries in input order, stopping at the
// first failure.
func (d *DiscoveryItem) AddAssociatedSensors(items []*DiscoveryItem) error {
	for _, item := range items {
		if err := d.AddAssociatedSensor(item); err != nil {
			return err
		}
	}
	return nil
}

// AssociatedSensors returns all attached secondary items in attach order.
func (d *DiscoveryItem) AssociatedSensors() []*DiscoveryItem {
	items := make([]*DiscoveryItem, len(d.associated))
	for i, a := range d.associated {
		items[i] = a.item
	}
	return items
}

// AssociatedSensorsOfType returns the attached secondaries whose current
// type equals sensorType, preserving relative order. The current type is
// consulted rather than the type captured at attach time, so a secondary
// resolved after attachment is filtered under its resolved type.
func (d *DiscoveryItem) AssociatedSensorsOfType(sensorType SensorType) []*DiscoveryItem {
	var items []*DiscoveryItem
	for _, a := range d.associated {
		if a.item.SensorType() == sensorType {
			items = append(items, a.item)
		}
	}
	return items
}

// AssociatedSensorTypes returns the captured types of the attached
// secondaries, index-aligned with AssociatedSensors.
func (d *DiscoveryItem) AssociatedSensorTypes() []SensorType {
	types := make([]SensorType, len(d.associated))
	for i, a := range d.associated {
		types[i] = a.typ
	}
	return types
}

// AssociatedSensorCount returns the number of physical sensors this item
// represents: the attached secondaries plus the device itself.
func (d *DiscoveryItem) AssociatedSensorCount() int {
	return len(d.associated) + 1
}

// ClearAssociatedSensors detaches all secondaries (items and captured types
// together) and reopens the item for re-discovery.
func (d *DiscoveryItem) ClearAssociatedSensors() {
	d.associated = nil
	d.state = stateDecoded
}

// ResolveType finalises the sensor type from the attached secondaries.
// Call only after all secondaries are attached; calling again with the
// same association state yields the same result.
func (d *DiscoveryItem) ResolveType() {
	resolved := MultisensorType(d.sensorType, d.AssociatedSensorTypes())
	if resolved != d.sensorType {
		d.logDebug("resolved sensor type",
			"sensor", d.sensorID.String(),
			"from", d.sensorType.String(),
			"to", resolved.String())
	}
	d.sensorType = resolved
	d.state = stateResolved
}

// Label composes the human-readable discovery label
// "<display name> (<raw id>)", forcing thing type resolution first.
// When the current type has no mapping but an earlier lookup succeeded,
// the cached thing type supplies the display name.
func (d *DiscoveryItem) Label() (string, error) {
	uid, err := d.ThingTypeUID()
	if err != nil {
		if !d.thingTypeValid {
			return "", err
		}
		uid = d.thingType
	}
	return fmt.Sprintf("%s (%s)", ThingLabelMap[uid], d.sensorID), nil
}

// SetLogger sets an optional observer for classification events.
func (d *DiscoveryItem) SetLogger(logger Logger) {
	d.logger = logger
}

func (d *DiscoveryItem) logDebug(msg string, keysAndValues ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, keysAndValues...)
	}
}

// String returns a debug representation.
func (d *DiscoveryItem) String() string {
	return fmt.Sprintf("%s/%s (associated: %d)", d.sensorID, d.sensorType, len(d.associated))
}
