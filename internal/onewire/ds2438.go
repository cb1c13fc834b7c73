package onewire

import (
	"fmt"
	"strings"
)

// DS2438 configuration page layout. These offsets are the manufacturer's
// memory map and form a binary contract with the hardware — they must not
// change.
const (
	// ds2438ConfigPage holds subtype, revision, production date and vendor.
	ds2438ConfigPage = 3

	ds2438SubTypeOffset        = 0
	ds2438HWRevisionLowOffset  = 3
	ds2438HWRevisionHighOffset = 4
	ds2438ProdWeekOffset       = 5
	ds2438ProdYearOffset       = 6

	ds2438VendorOffset = 16
	ds2438VendorLength = 16

	// ds2438FirstSlotPage is the first of three pages each holding one
	// associated-sensor ROM id at offset 0.
	ds2438FirstSlotPage = 4
	ds2438SlotCount     = 3
)

// ds2438SubTypes maps the subtype code byte to a sensor type. Codes not in
// this table resolve to TypeUnknown rather than failing.
var ds2438SubTypes = map[byte]SensorType{
	0x00: TypeDS2438,
	0x19: TypeMSTH,
	0x1A: TypeMSTHS,
	0x1B: TypeMSTV,
	0x1C: TypeMSTL,
	0x1D: TypeMSTC,
}

// defaultVendor is reported when the vendor field is blank.
const defaultVendor = "Dallas/Maxim"

// DS2438Config holds the metadata decoded from a DS2438-family device's
// configuration pages. It is produced once per device during discovery and
// not persisted.
type DS2438Config struct {
	// Vendor is the manufacturer name from the vendor string field.
	Vendor string

	// HardwareRevision is "high.low" from the two revision bytes.
	HardwareRevision string

	// ProductionDate is "ww/yy" from the week/year bytes.
	ProductionDate string

	// AssociatedSensorIDs lists the ROM ids of secondary sensors wired to
	// this device, in slot order. Empty slots are skipped.
	AssociatedSensorIDs []SensorID

	// SubType is the coarse sensor subtype decoded from the subtype code.
	SubType SensorType
}

// ParseDS2438Config interprets the configuration pages of a DS2438-family
// device.
//
// Structural problems (missing pages, undersized page data) return an error
// wrapping ErrDecodeFailed. Recoverable ambiguity — an unmapped subtype
// code, a malformed ROM slot — degrades to TypeUnknown or a skipped slot so
// partial metadata remains usable.
func ParseDS2438Config(pages PageBuffer) (DS2438Config, error) {
	cfg := DS2438Config{Vendor: defaultVendor, SubType: TypeUnknown}

	config, err := pages.Page(ds2438ConfigPage)
	if err != nil {
		return DS2438Config{}, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	if len(config) < ds2438VendorOffset+ds2438VendorLength {
		return DS2438Config{}, fmt.Errorf("%w: config page truncated (%d bytes)",
			ErrDecodeFailed, len(config))
	}

	// Associated sensor slots, one ROM id per page, included in slot order.
	for slot := 0; slot < ds2438SlotCount; slot++ {
		page, err := pages.Page(ds2438FirstSlotPage + slot)
		if err != nil {
			return DS2438Config{}, fmt.Errorf("%w: slot %d: %w", ErrDecodeFailed, slot, err)
		}
		if len(page) < romLength {
			return DS2438Config{}, fmt.Errorf("%w: slot %d truncated (%d bytes)",
				ErrDecodeFailed, slot, len(page))
		}
		rom := page[:romLength]
		if emptySlot(rom) {
			continue
		}
		id, err := sensorIDFromROM(rom)
		if err != nil {
			continue
		}
		cfg.AssociatedSensorIDs = append(cfg.AssociatedSensorIDs, id)
	}

	if vendor := trimField(config[ds2438VendorOffset : ds2438VendorOffset+ds2438VendorLength]); vendor != "" {
		cfg.Vendor = vendor
	}

	cfg.HardwareRevision = fmt.Sprintf("%d.%d",
		config[ds2438HWRevisionHighOffset], config[ds2438HWRevisionLowOffset])
	cfg.ProductionDate = fmt.Sprintf("%d/%02d",
		config[ds2438ProdWeekOffset], config[ds2438ProdYearOffset])

	if subType, ok := ds2438SubTypes[config[ds2438SubTypeOffset]]; ok {
		cfg.SubType = subType
	}

	return cfg, nil
}

// emptySlot reports whether a ROM slot carries the "no sensor" sentinel:
// all bytes 0x00 or all bytes 0xFF.
func emptySlot(rom []byte) bool {
	allZero, allFF := true, true
	for _, b := range rom {
		if b != 0x00 {
			allZero = false
		}
		if b != 0xFF {
			allFF = false
		}
	}
	return allZero || allFF
}

// trimField strips the padding bytes manufacturers use to fill fixed-width
// ASCII fields.
func trimField(field []byte) string {
	return strings.TrimFunc(string(field), func(r rune) bool {
		return r == 0x00 || r == 0xFF || r == ' '
	})
}

// MultisensorType resolves an ambiguous multisensor placeholder to its
// precise subtype based on the types of the attached secondary sensors.
//
// A humidity-capable secondary (a second DS2438, or a DS1923 logger)
// upgrades the classification to the advanced variant; otherwise the basic
// variant applies. For any other coarse type the function is an identity,
// which also makes repeated resolution a no-op.
//
// Call this only after all secondary sensors for the device are attached.
func MultisensorType(coarse SensorType, associated []SensorType) SensorType {
	switch coarse {
	case TypeMSTH:
		if containsHumiditySecondary(associated) {
			return TypeAMS
		}
		return TypeBMS
	case TypeMSTHS:
		if containsHumiditySecondary(associated) {
			return TypeAMSS
		}
		return TypeBMSS
	default:
		return coarse
	}
}

func containsHumiditySecondary(types []SensorType) bool {
	for _, t := range types {
		if t == TypeDS2438 || t == TypeDS1923 {
			return true
		}
	}
	return false
}
