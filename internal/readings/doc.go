// Package readings polls classified sensors for their measurement channels
// and fans the values out to MQTT and InfluxDB.
//
// The poller works from the repository's view of the bus, not from live
// enumeration: only sensors marked present by the most recent discovery
// scan are polled, and the channels read per sensor follow its classified
// type (temperature for every thermometer family, humidity only where the
// hardware provides it).
//
// Polling is strictly sequential per cycle. The 1-Wire bus is a shared
// single-master medium, so concurrent reads would serialise at the bus
// anyway while adding timeout pressure. A slow cycle simply delays the
// next tick; cycles never overlap.
//
// Per-sensor read failures are counted and logged but never abort a cycle.
// A sensor that has gone missing between scans surfaces as read errors
// until the next discovery pass marks it absent.
package readings
