// Package mqtt connects the bridge to the site broker.
//
// Outbound, the bridge publishes three kinds of retained state:
//
//	graylogic/onewire/discovery/<sensor_id>          classification metadata per device
//	graylogic/onewire/sensor/<sensor_id>/<channel>   polled readings ("21.5")
//	graylogic/onewire/health                         bridge online/offline status
//
// plus a non-retained scan event on graylogic/onewire/discovery/scan.
// Inbound, it subscribes to graylogic/onewire/command/scan so an
// operator or another service can trigger a bus scan without touching
// the REST API.
//
// Sensor ids appear in topics in underscore form ("28_AB12CD34EF00");
// the dotted bus address stays inside payloads. The Topics builders are
// the only sanctioned way to construct these strings.
//
// The health topic doubles as the broker's last will: a bridge that
// dies without a clean shutdown is still reported offline, with the
// reason distinguishing crash from shutdown. Subscriptions are
// re-established automatically after a reconnect.
package mqtt
