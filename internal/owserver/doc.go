// Package owserver implements a client for the owserver daemon (owfs).
//
// owserver exposes the 1-Wire bus over TCP (default port 4304) with a
// simple binary request/response protocol: a 24-byte header of six
// big-endian 32-bit fields followed by a payload. This package provides
// the wire codec and a client exposing the operations the discovery and
// readings layers need: bus listing, device type queries, page reads, and
// numeric attribute reads.
//
// The client dials per request. owserver closes non-persistent connections
// after each reply, and discovery traffic is far too sparse to justify
// connection pooling.
//
// # Thread Safety
//
// All exported methods are safe for concurrent use.
//
// # References
//
//   - owserver protocol: https://owfs.org/index_php_page_owserver-protocol.html
//   - owfs daemon: https://github.com/owfs/owfs
package owserver
