package onewire

import "errors"

// Domain errors for the onewire package.
var (
	// ErrOutOfRange is returned when a page index or byte offset exceeds
	// the populated page data.
	ErrOutOfRange = errors.New("onewire: page access out of range")

	// ErrInvalidSensorID is returned when a sensor id string does not
	// match the familyId.serialDigits format.
	ErrInvalidSensorID = errors.New("onewire: invalid sensor id")

	// ErrDecodeFailed is returned when a device's page layout cannot be
	// decoded for a family that mandates decoding.
	ErrDecodeFailed = errors.New("onewire: page decode failed")

	// ErrNoThingType is returned when a resolved sensor type has no
	// corresponding thing type entry.
	ErrNoThingType = errors.New("onewire: no thing type mapping")

	// ErrAlreadyResolved is returned when a secondary sensor is attached
	// after the item's type has been finalised.
	ErrAlreadyResolved = errors.New("onewire: sensor type already resolved")
)
