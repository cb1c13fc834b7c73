package owserver

import (
	"encoding/binary"
	"fmt"
)

// owserver protocol message types.
const (
	// MessageRead reads the value of a single property path.
	MessageRead uint32 = 2

	// MessageWrite writes a value to a property path.
	MessageWrite uint32 = 3

	// MessagePresent checks whether a path exists on the bus.
	MessagePresent uint32 = 6

	// MessageDirAll lists a directory in a single comma-separated reply
	// (unlike MessageDir, which streams one reply per entry).
	MessageDirAll uint32 = 7

	// MessageNop is a keepalive / connectivity probe.
	MessageNop uint32 = 1
)

// Control flags for the header flags field.
const (
	// FlagOwnet marks the request as coming from an ownet client and
	// must be set on every request.
	FlagOwnet uint32 = 0x00000100

	// FlagPersistence asks the server to keep the connection open after
	// the reply. Not used: this client dials per request.
	FlagPersistence uint32 = 0x00000004

	// FlagUncached bypasses the server's value cache. Device listing and
	// page reads during discovery always want live bus data.
	FlagUncached uint32 = 0x00000020

	// FlagBusRet includes bus.N and system directories in listings.
	FlagBusRet uint32 = 0x00000002
)

// Header size and field layout. The header is six big-endian 32-bit words:
//
//	Byte  0-3:  protocol version (0)
//	Byte  4-7:  payload length in bytes
//	Byte  8-11: message type (request) or return code (response, signed)
//	Byte 12-15: control flags
//	Byte 16-19: data size
//	Byte 20-23: offset
const (
	headerSize = 24

	// maxPayload bounds accepted response payloads. The largest reply
	// this client ever expects is a full DIRALL listing; anything bigger
	// indicates protocol desync.
	maxPayload = 65536
)

// Header is a decoded owserver message header. On responses the Type field
// carries the signed return code.
type Header struct {
	Version int32
	Payload int32
	Type    int32
	Flags   uint32
	Size    int32
	Offset  int32
}

// EncodeMessage builds a complete request message: header plus
// NUL-terminated path payload.
//
// Parameters:
//   - msgType: protocol message type (MessageRead, MessageDirAll, ...)
//   - path: property path (e.g. "/26.000000000001/pages/page.ALL")
//   - size: expected data size for reads (server truncates to this)
//
// Returns:
//   - []byte: wire-ready message
func EncodeMessage(msgType uint32, path string, size int32) []byte {
	payload := append([]byte(path), 0x00)

	buf := make([]byte, headerSize+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], 0) // version
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(payload)))
	binary.BigEndian.PutUint32(buf[8:12], msgType)
	binary.BigEndian.PutUint32(buf[12:16], FlagOwnet|FlagUncached)
	binary.BigEndian.PutUint32(buf[16:20], uint32(size))
	binary.BigEndian.PutUint32(buf[20:24], 0) // offset
	copy(buf[headerSize:], payload)

	return buf
}

// ParseHeader decodes a 24-byte response header.
//
// Returns ErrInvalidResponse if the buffer is short or the announced
// payload length is implausible. A negative payload length is legal: the
// server sends those as keepalives during long operations.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, fmt.Errorf("%w: header too short (%d bytes)", ErrInvalidResponse, len(data))
	}

	h := Header{
		Version: int32(binary.BigEndian.Uint32(data[0:4])),
		Payload: int32(binary.BigEndian.Uint32(data[4:8])),
		Type:    int32(binary.BigEndian.Uint32(data[8:12])),
		Flags:   binary.BigEndian.Uint32(data[12:16]),
		Size:    int32(binary.BigEndian.Uint32(data[16:20])),
		Offset:  int32(binary.BigEndian.Uint32(data[20:24])),
	}

	if h.Payload > maxPayload {
		return Header{}, fmt.Errorf("%w: payload %d exceeds limit %d",
			ErrInvalidResponse, h.Payload, maxPayload)
	}

	return h, nil
}

// IsKeepalive reports whether this response header is a server keepalive
// (negative payload length) rather than a real reply.
func (h Header) IsKeepalive() bool {
	return h.Payload < 0
}
