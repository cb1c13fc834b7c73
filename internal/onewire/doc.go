// Package onewire implements classification of 1-Wire bus sensors.
//
// During a discovery pass every device on the bus is turned into a
// DiscoveryItem: the raw device type is queried, family-specific memory
// pages are read and decoded, and embedded vendor/firmware/production
// metadata is extracted. DS2438-based multisensors additionally carry the
// ROM ids of physically attached secondary sensors in their configuration
// pages; once all devices on a segment are known, secondaries are attached
// to their primary and the combined shape resolves the precise sensor
// subtype (e.g. a basic vs. advanced temperature/humidity multisensor).
//
// # Key Responsibilities
//
//   - Bounds-checked access to raw device memory pages (PageBuffer)
//   - Decoding the DS2438 configuration page layout (DS2438Config)
//   - Best-effort EDS subtype identification from the name page
//   - The primary/secondary association graph and multisensor resolution
//   - Mapping resolved sensor types to thing types for the management layer
//
// # What This Package Does Not Do
//
// No bus I/O happens here. Page reads and type queries are delegated to a
// BridgeHandler (implemented by internal/owserver); retries, scheduling and
// discovery orchestration live in internal/discovery.
//
// # Thread Safety
//
// A DiscoveryItem is not safe for concurrent mutation. Independent items may
// be constructed in parallel, but association attachment and resolution for
// one item must be serialised by the caller.
package onewire
