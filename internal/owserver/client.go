package owserver

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-onewire/internal/onewire"
)

// Default timeouts for owserver communication.
const (
	// defaultConnectTimeout is the maximum time to wait for a TCP connect.
	defaultConnectTimeout = 10 * time.Second

	// defaultRequestTimeout bounds one complete request/response exchange.
	// Page reads hit the physical bus, which is slow; a full pages.ALL
	// read of a DS2438 can take a couple of seconds.
	defaultRequestTimeout = 15 * time.Second

	// defaultAddress is the standard owserver listen address.
	defaultAddress = "localhost:4304"

	// typeReadSize and floatReadSize bound single-property reads.
	typeReadSize  = 32
	floatReadSize = 32

	// pagesReadSize bounds a pages.ALL read (8 pages of 32 bytes).
	pagesReadSize = 256

	// dirReadSize bounds a DIRALL listing of a fully populated segment.
	dirReadSize = 8192
)

// edsFamily is the 1-Wire family code of Embedded Data Systems sensors.
// Their precise subtype comes from the name page, so the bus layer reports
// them with the coarse EDS type.
const edsFamily = "7E"

// Config holds owserver connection configuration.
type Config struct {
	// Address is the owserver host:port. Default: "localhost:4304".
	Address string

	// ConnectTimeout is the maximum time to wait for a TCP connect.
	ConnectTimeout time.Duration

	// RequestTimeout bounds one request/response exchange.
	RequestTimeout time.Duration
}

// Stats holds operational statistics.
type Stats struct {
	RequestsTotal uint64
	ErrorsTotal   uint64
	LastActivity  time.Time
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Connector is the client interface consumed by discovery and readings.
// This allows mocking the owserver client in tests.
type Connector interface {
	Dir(ctx context.Context) ([]onewire.SensorID, error)
	GetType(ctx context.Context, id onewire.SensorID) (onewire.SensorType, error)
	ReadPages(ctx context.Context, id onewire.SensorID) (onewire.PageBuffer, error)
	ReadFloat(ctx context.Context, id onewire.SensorID, attribute string) (float64, error)
	Ping(ctx context.Context) error
	Stats() Stats
}

// Ensure Client implements Connector and the discovery bridge contract.
var (
	_ Connector             = (*Client)(nil)
	_ onewire.BridgeHandler = (*Client)(nil)
)

// Client is a per-request TCP client for the owserver daemon.
//
// Thread Safety:
//   - All methods are safe for concurrent use; each request uses its own
//     connection.
type Client struct {
	cfg Config

	// Logger (optional)
	logger   Logger
	loggerMu sync.RWMutex

	// Statistics (atomic for performance)
	requestsTotal atomic.Uint64
	errorsTotal   atomic.Uint64
	lastActivity  atomic.Int64 // Unix timestamp
}

// New creates an owserver client. No connection is made until the first
// request; use Ping to verify reachability at startup.
func New(cfg Config) *Client {
	if cfg.Address == "" {
		cfg.Address = defaultAddress
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	return &Client{cfg: cfg}
}

// Ping verifies the daemon is reachable with a NOP exchange.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.request(ctx, MessageNop, "", 0)
	return err
}

// Dir lists all sensors on the bus.
//
// Non-sensor directory entries (bus.N, settings, statistics, ...) are
// filtered out by the sensor id format.
func (c *Client) Dir(ctx context.Context) ([]onewire.SensorID, error) {
	data, err := c.request(ctx, MessageDirAll, "/", dirReadSize)
	if err != nil {
		return nil, err
	}

	var ids []onewire.SensorID
	for _, entry := range strings.Split(trimPayload(data), ",") {
		entry = strings.Trim(entry, "/")
		id, err := onewire.ParseSensorID(entry)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	c.logDebug("bus listing complete", "sensors", len(ids))
	return ids, nil
}

// GetType queries the raw device type of a sensor.
//
// EDS-family devices are reported with the coarse EDS type; their subtype
// lives in the name page and is decoded by the discovery layer.
func (c *Client) GetType(ctx context.Context, id onewire.SensorID) (onewire.SensorType, error) {
	if id.Family() == edsFamily {
		return onewire.TypeEDS, nil
	}

	data, err := c.request(ctx, MessageRead, "/"+id.String()+"/type", typeReadSize)
	if err != nil {
		return onewire.TypeUnknown, err
	}

	return onewire.ParseSensorType(trimPayload(data)), nil
}

// ReadPages reads a device's full memory pages.
func (c *Client) ReadPages(ctx context.Context, id onewire.SensorID) (onewire.PageBuffer, error) {
	data, err := c.request(ctx, MessageRead, "/"+id.String()+"/pages/page.ALL", pagesReadSize)
	if err != nil {
		return onewire.PageBuffer{}, err
	}
	return onewire.PageBufferFromRaw(data), nil
}

// ReadFloat reads a numeric attribute (e.g. "temperature", "humidity").
func (c *Client) ReadFloat(ctx context.Context, id onewire.SensorID, attribute string) (float64, error) {
	data, err := c.request(ctx, MessageRead, "/"+id.String()+"/"+attribute, floatReadSize)
	if err != nil {
		return 0, err
	}

	value, err := strconv.ParseFloat(trimPayload(data), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parsing %s: %w", ErrInvalidResponse, attribute, err)
	}
	return value, nil
}

// request performs one complete exchange: dial, send, skip keepalives,
// read the reply.
func (c *Client) request(ctx context.Context, msgType uint32, path string, size int32) ([]byte, error) {
	c.requestsTotal.Add(1)

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(dialCtx, "tcp", c.cfg.Address)
	if err != nil {
		c.errorsTotal.Add(1)
		return nil, fmt.Errorf("%w: dial %s: %w", ErrConnectionFailed, c.cfg.Address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.cfg.RequestTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		c.errorsTotal.Add(1)
		return nil, fmt.Errorf("%w: set deadline: %w", ErrRequestFailed, err)
	}

	if _, err := conn.Write(EncodeMessage(msgType, path, size)); err != nil {
		c.errorsTotal.Add(1)
		return nil, fmt.Errorf("%w: write: %w", ErrRequestFailed, err)
	}

	data, err := c.readReply(conn, path)
	if err != nil {
		c.errorsTotal.Add(1)
		return nil, err
	}

	c.lastActivity.Store(time.Now().Unix())
	return data, nil
}

// readReply reads response messages until a non-keepalive reply arrives.
func (c *Client) readReply(conn net.Conn, path string) ([]byte, error) {
	header := make([]byte, headerSize)

	for {
		if _, err := io.ReadFull(conn, header); err != nil {
			return nil, fmt.Errorf("%w: read header: %w", ErrRequestFailed, err)
		}

		h, err := ParseHeader(header)
		if err != nil {
			return nil, err
		}

		// Keepalives arrive while the server works the physical bus.
		if h.IsKeepalive() {
			c.logDebug("keepalive from owserver", "path", path)
			continue
		}

		if h.Type < 0 {
			return nil, fmt.Errorf("%w: %s: code %d", ErrServerError, path, h.Type)
		}

		if h.Payload == 0 {
			return nil, nil
		}

		data := make([]byte, h.Payload)
		if _, err := io.ReadFull(conn, data); err != nil {
			return nil, fmt.Errorf("%w: read payload: %w", ErrRequestFailed, err)
		}
		return data, nil
	}
}

// trimPayload strips the NUL terminator and the space padding owserver
// uses on fixed-width text properties.
func trimPayload(data []byte) string {
	return strings.Trim(string(data), "\x00 ")
}

// SetLogger sets the logger for this client.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// Stats returns current operational statistics.
func (c *Client) Stats() Stats {
	return Stats{
		RequestsTotal: c.requestsTotal.Load(),
		ErrorsTotal:   c.errorsTotal.Load(),
		LastActivity:  time.Unix(c.lastActivity.Load(), 0),
	}
}

func (c *Client) logDebug(msg string, keysAndValues ...any) {
	c.loggerMu.RLock()
	logger := c.logger
	c.loggerMu.RUnlock()

	if logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}
