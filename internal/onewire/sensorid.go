package onewire

import (
	"fmt"
	"regexp"
	"strings"
)

// sensorIDPattern matches the canonical id format: two hex family digits,
// a dot, and twelve hex serial digits (e.g. "28.AB12CD34EF00").
var sensorIDPattern = regexp.MustCompile(`^[0-9A-Fa-f]{2}\.[0-9A-Fa-f]{12}$`)

// romLength is the size of a 1-Wire ROM id without CRC: family byte plus
// six serial bytes.
const romLength = 7

// SensorID identifies a device on the 1-Wire bus.
//
// The string form is "familyId.serialDigits" with the family encoded in the
// first two hex digits (e.g. "28.AB12CD34EF00" is a DS18B20). Equality and
// ordering follow the raw string.
type SensorID string

// ParseSensorID validates and canonicalises a raw sensor id string.
// Hex digits are upper-cased so ids compare equal regardless of the case
// the bus layer reports them in.
//
// Returns ErrInvalidSensorID if the string does not match the
// familyId.serialDigits format.
func ParseSensorID(raw string) (SensorID, error) {
	if !sensorIDPattern.MatchString(raw) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSensorID, raw)
	}
	return SensorID(strings.ToUpper(raw)), nil
}

// sensorIDFromROM builds a SensorID from a raw 7-byte ROM id as stored in
// DS2438 configuration pages: family byte followed by six serial bytes.
func sensorIDFromROM(rom []byte) (SensorID, error) {
	if len(rom) != romLength {
		return "", fmt.Errorf("%w: rom id must be %d bytes, got %d",
			ErrInvalidSensorID, romLength, len(rom))
	}
	return SensorID(fmt.Sprintf("%02X.%02X%02X%02X%02X%02X%02X",
		rom[0], rom[1], rom[2], rom[3], rom[4], rom[5], rom[6])), nil
}

// Family returns the two-digit family code (the part before the dot).
func (s SensorID) Family() string {
	if i := strings.IndexByte(string(s), '.'); i > 0 {
		return string(s)[:i]
	}
	return string(s)
}

// Normalized returns the id with the separator replaced for use as a
// display or key string: "28.AB12CD34EF00" becomes "28_AB12CD34EF00".
func (s SensorID) Normalized() string {
	return strings.ReplaceAll(string(s), ".", "_")
}

// String returns the raw id.
func (s SensorID) String() string {
	return string(s)
}
