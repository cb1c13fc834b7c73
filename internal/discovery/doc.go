// Package discovery scans the 1-Wire bus and turns raw device listings
// into classified, persisted, announced sensors.
//
// This package manages:
//   - Bus enumeration via the owserver client
//   - Classification of each device through onewire.NewDiscoveryItem
//   - The association pass that folds secondary sensors into their
//     owning multisensor and refines coarse types
//   - SQLite persistence of scan results (discovered_sensors, scan_runs)
//   - Retained MQTT announcements for downstream consumers
//
// # Scan Lifecycle
//
// A scan is a single pass over the bus:
//
//  1. List all device addresses (owserver DIRALL).
//  2. Build a DiscoveryItem per device. Devices that fail to decode are
//     counted and skipped; one bad sensor never aborts the scan.
//  3. Attach secondaries: any device whose address appears in another
//     device's associated slots is removed from the top level and added
//     to its owner.
//  4. Resolve each remaining top-level item's final type.
//  5. Persist, mark devices missing from this scan as absent, announce.
//
// Only one scan runs at a time; concurrent requests get ErrScanInProgress.
//
// # Thread Safety
//
// Scanner and SQLiteRepository are safe for concurrent use. A scan holds
// an internal lock for its full duration.
package discovery
