package onewire

// BindingID prefixes every thing type identifier issued by this bridge.
const BindingID = "onewire"

// ThingTypeUID identifies a fully classified device kind to the external
// device-management layer (format "onewire:<type>").
type ThingTypeUID string

// String returns the identifier.
func (u ThingTypeUID) String() string {
	return string(u)
}

// Thing type identifiers.
const (
	ThingTypeTemperature         ThingTypeUID = BindingID + ":temperature"
	ThingTypeTemperatureHumidity ThingTypeUID = BindingID + ":temperature-humidity"
	ThingTypeIButton             ThingTypeUID = BindingID + ":ibutton"
	ThingTypeDigitalIO           ThingTypeUID = BindingID + ":digitalio"
	ThingTypeDigitalIO2          ThingTypeUID = BindingID + ":digitalio2"
	ThingTypeDigitalIO8          ThingTypeUID = BindingID + ":digitalio8"
	ThingTypeCounter2            ThingTypeUID = BindingID + ":counter2"
	ThingTypeMultisensor         ThingTypeUID = BindingID + ":ms-tx"
	ThingTypeBMS                 ThingTypeUID = BindingID + ":bms"
	ThingTypeBMSSolar            ThingTypeUID = BindingID + ":bms-s"
	ThingTypeAMS                 ThingTypeUID = BindingID + ":ams"
	ThingTypeAMSSolar            ThingTypeUID = BindingID + ":ams-s"
	ThingTypeEDSEnv              ThingTypeUID = BindingID + ":edsenv"
)

// ThingTypeMap maps resolved sensor types to thing type identifiers.
//
// The map is deliberately not total: coarse placeholders (EDS, MS_TH,
// MS_TH_S), hub devices (DS2409), and TypeUnknown have no entry, and
// looking them up surfaces ErrNoThingType to the caller. Classification may
// legitimately produce such types.
var ThingTypeMap = map[SensorType]ThingTypeUID{
	TypeDS18S20: ThingTypeTemperature,
	TypeDS18B20: ThingTypeTemperature,
	TypeDS1822:  ThingTypeTemperature,
	TypeDS1923:  ThingTypeTemperatureHumidity,
	TypeDS2401:  ThingTypeIButton,
	TypeDS2405:  ThingTypeDigitalIO,
	TypeDS2406:  ThingTypeDigitalIO2,
	TypeDS2408:  ThingTypeDigitalIO8,
	TypeDS2413:  ThingTypeDigitalIO2,
	TypeDS2423:  ThingTypeCounter2,
	TypeDS2438:  ThingTypeMultisensor,
	TypeBMS:     ThingTypeBMS,
	TypeBMSS:    ThingTypeBMSSolar,
	TypeAMS:     ThingTypeAMS,
	TypeAMSS:    ThingTypeAMSSolar,
	TypeMSTC:    ThingTypeMultisensor,
	TypeMSTL:    ThingTypeMultisensor,
	TypeMSTV:    ThingTypeMultisensor,
	TypeEDS0064: ThingTypeEDSEnv,
	TypeEDS0065: ThingTypeEDSEnv,
	TypeEDS0066: ThingTypeEDSEnv,
	TypeEDS0067: ThingTypeEDSEnv,
	TypeEDS0068: ThingTypeEDSEnv,
}

// ThingLabelMap maps thing type identifiers to display names used when
// composing discovery result labels.
var ThingLabelMap = map[ThingTypeUID]string{
	ThingTypeTemperature:         "Temperature Sensor",
	ThingTypeTemperatureHumidity: "Temperature/Humidity Sensor",
	ThingTypeIButton:             "iButton",
	ThingTypeDigitalIO:           "Digital I/O",
	ThingTypeDigitalIO2:          "Dual Digital I/O",
	ThingTypeDigitalIO8:          "8-Channel Digital I/O",
	ThingTypeCounter2:            "Dual Counter",
	ThingTypeMultisensor:         "Multisensor",
	ThingTypeBMS:                 "Basic Multisensor",
	ThingTypeBMSSolar:            "Basic Multisensor (solar)",
	ThingTypeAMS:                 "Advanced Multisensor",
	ThingTypeAMSSolar:            "Advanced Multisensor (solar)",
	ThingTypeEDSEnv:              "EDS Environmental Sensor",
}
