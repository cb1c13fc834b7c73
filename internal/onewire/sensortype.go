package onewire

// SensorType enumerates coarse device families and precise sensor subtypes.
//
// The bus layer reports coarse types (DS2438, EDS, or one of the simple
// single-purpose families). Decoding refines DS2438 and EDS devices to a
// subtype; multisensor resolution may refine the subtype once more based on
// attached secondary sensors. Unmapped codes resolve to TypeUnknown rather
// than failing — classification is best-effort.
type SensorType string

const (
	// TypeUnknown is the sentinel for unclassified or unrecognised devices.
	TypeUnknown SensorType = "UNKNOWN"

	// Simple single-purpose families.
	TypeDS18S20 SensorType = "DS18S20"
	TypeDS18B20 SensorType = "DS18B20"
	TypeDS1822  SensorType = "DS1822"
	TypeDS1923  SensorType = "DS1923"
	TypeDS2401  SensorType = "DS2401"
	TypeDS2405  SensorType = "DS2405"
	TypeDS2406  SensorType = "DS2406"
	TypeDS2408  SensorType = "DS2408"
	TypeDS2409  SensorType = "DS2409"
	TypeDS2413  SensorType = "DS2413"
	TypeDS2423  SensorType = "DS2423"

	// TypeDS2438 is the raw battery-monitor family used as the base chip
	// of all supported multisensors. A bare DS2438 keeps this type.
	TypeDS2438 SensorType = "DS2438"

	// Multisensor placeholders decoded from the DS2438 configuration page.
	// These are ambiguous until secondary sensors are attached.
	TypeMSTH  SensorType = "MS_TH"
	TypeMSTHS SensorType = "MS_TH_S"

	// Precise multisensor subtypes.
	TypeBMS  SensorType = "BMS"
	TypeBMSS SensorType = "BMS_S"
	TypeAMS  SensorType = "AMS"
	TypeAMSS SensorType = "AMS_S"
	TypeMSTC SensorType = "MS_TC"
	TypeMSTL SensorType = "MS_TL"
	TypeMSTV SensorType = "MS_TV"

	// TypeEDS is the coarse family for Embedded Data Systems sensors;
	// the precise subtype is read from the device's name page.
	TypeEDS     SensorType = "EDS"
	TypeEDS0064 SensorType = "EDS0064"
	TypeEDS0065 SensorType = "EDS0065"
	TypeEDS0066 SensorType = "EDS0066"
	TypeEDS0067 SensorType = "EDS0067"
	TypeEDS0068 SensorType = "EDS0068"
)

// knownSensorTypes is the closed set accepted by ParseSensorType.
var knownSensorTypes = map[string]SensorType{
	string(TypeDS18S20): TypeDS18S20,
	string(TypeDS18B20): TypeDS18B20,
	string(TypeDS1822):  TypeDS1822,
	string(TypeDS1923):  TypeDS1923,
	string(TypeDS2401):  TypeDS2401,
	string(TypeDS2405):  TypeDS2405,
	string(TypeDS2406):  TypeDS2406,
	string(TypeDS2408):  TypeDS2408,
	string(TypeDS2409):  TypeDS2409,
	string(TypeDS2413):  TypeDS2413,
	string(TypeDS2423):  TypeDS2423,
	string(TypeDS2438):  TypeDS2438,
	string(TypeMSTH):    TypeMSTH,
	string(TypeMSTHS):   TypeMSTHS,
	string(TypeBMS):     TypeBMS,
	string(TypeBMSS):    TypeBMSS,
	string(TypeAMS):     TypeAMS,
	string(TypeAMSS):    TypeAMSS,
	string(TypeMSTC):    TypeMSTC,
	string(TypeMSTL):    TypeMSTL,
	string(TypeMSTV):    TypeMSTV,
	string(TypeEDS):     TypeEDS,
	string(TypeEDS0064): TypeEDS0064,
	string(TypeEDS0065): TypeEDS0065,
	string(TypeEDS0066): TypeEDS0066,
	string(TypeEDS0067): TypeEDS0067,
	string(TypeEDS0068): TypeEDS0068,
}

// ParseSensorType maps a raw type string from the bus layer to a SensorType.
// Unrecognised strings map to TypeUnknown.
func ParseSensorType(s string) SensorType {
	if t, ok := knownSensorTypes[s]; ok {
		return t
	}
	return TypeUnknown
}

// HasTemperature reports whether this sensor type exposes a temperature
// attribute readable by the poller.
func (t SensorType) HasTemperature() bool {
	switch t {
	case TypeDS18S20, TypeDS18B20, TypeDS1822, TypeDS1923, TypeDS2438,
		TypeMSTH, TypeMSTHS, TypeBMS, TypeBMSS, TypeAMS, TypeAMSS,
		TypeMSTC, TypeMSTL, TypeMSTV,
		TypeEDS0064, TypeEDS0065, TypeEDS0066, TypeEDS0067, TypeEDS0068:
		return true
	default:
		return false
	}
}

// HasHumidity reports whether this sensor type exposes a humidity attribute.
func (t SensorType) HasHumidity() bool {
	switch t {
	case TypeDS1923, TypeDS2438, TypeMSTH, TypeMSTHS,
		TypeBMS, TypeBMSS, TypeAMS, TypeAMSS,
		TypeEDS0065, TypeEDS0068:
		return true
	default:
		return false
	}
}

// String returns the type name.
func (t SensorType) String() string {
	return string(t)
}
