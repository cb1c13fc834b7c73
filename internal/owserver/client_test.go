package owserver

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-onewire/internal/onewire"
)

// fakeOwserver serves canned replies per property path, emulating the
// per-request connection model of the real daemon.
type fakeOwserver struct {
	t         *testing.T
	ln        net.Listener
	responses map[string][]byte // path -> payload; missing path -> error code
	keepalive bool              // send one keepalive before the real reply
}

func newFakeOwserver(t *testing.T, responses map[string][]byte) *fakeOwserver {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	f := &fakeOwserver{t: t, ln: ln, responses: responses}
	go f.serve()
	t.Cleanup(func() { ln.Close() })
	return f
}

func (f *fakeOwserver) serve() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeOwserver) handle(conn net.Conn) {
	defer conn.Close()

	header := make([]byte, headerSize)
	if _, err := io.ReadFull(conn, header); err != nil {
		return
	}
	payloadLen := binary.BigEndian.Uint32(header[4:8])
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return
	}
	path := string(payload[:max(0, len(payload)-1)]) // strip NUL

	if f.keepalive {
		ka := make([]byte, headerSize)
		binary.BigEndian.PutUint32(ka[4:8], 0xFFFFFFFF) // payload = -1
		conn.Write(ka)
	}

	resp := make([]byte, headerSize)
	data, ok := f.responses[path]
	if !ok {
		binary.BigEndian.PutUint32(resp[8:12], 0xFFFFFFFE) // ret = -2
		conn.Write(resp)
		return
	}

	binary.BigEndian.PutUint32(resp[4:8], uint32(len(data)))
	binary.BigEndian.PutUint32(resp[8:12], uint32(len(data)))
	conn.Write(resp)
	conn.Write(data)
}

func newTestClient(t *testing.T, f *fakeOwserver) *Client {
	t.Helper()
	return New(Config{
		Address:        f.ln.Addr().String(),
		ConnectTimeout: time.Second,
		RequestTimeout: time.Second,
	})
}

func TestClientGetType(t *testing.T) {
	f := newFakeOwserver(t, map[string][]byte{
		"/26.000000000001/type": []byte("DS2438\x00"),
	})
	c := newTestClient(t, f)

	got, err := c.GetType(context.Background(), "26.000000000001")
	if err != nil {
		t.Fatalf("GetType() unexpected error: %v", err)
	}
	if got != onewire.TypeDS2438 {
		t.Errorf("GetType() = %v, want %v", got, onewire.TypeDS2438)
	}
}

func TestClientGetTypeEDSFamily(t *testing.T) {
	// EDS family never touches the wire: unreachable address must not matter.
	c := New(Config{
		Address:        "127.0.0.1:1", // nothing listens here
		ConnectTimeout: 100 * time.Millisecond,
		RequestTimeout: 100 * time.Millisecond,
	})

	got, err := c.GetType(context.Background(), "7E.001122334455")
	if err != nil {
		t.Fatalf("GetType() unexpected error: %v", err)
	}
	if got != onewire.TypeEDS {
		t.Errorf("GetType() = %v, want %v", got, onewire.TypeEDS)
	}
}

func TestClientDir(t *testing.T) {
	f := newFakeOwserver(t, map[string][]byte{
		"/": []byte("/26.000000000001,/28.AB12CD34EF00,/bus.0,/settings,/statistics\x00"),
	})
	c := newTestClient(t, f)

	ids, err := c.Dir(context.Background())
	if err != nil {
		t.Fatalf("Dir() unexpected error: %v", err)
	}

	want := []onewire.SensorID{"26.000000000001", "28.AB12CD34EF00"}
	if len(ids) != len(want) {
		t.Fatalf("Dir() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("Dir()[%d] = %v, want %v", i, ids[i], want[i])
		}
	}
}

func TestClientReadPages(t *testing.T) {
	raw := make([]byte, onewire.PageSize*8)
	raw[onewire.PageSize*3+4] = 0x01 // hw revision high

	f := newFakeOwserver(t, map[string][]byte{
		"/26.000000000001/pages/page.ALL": raw,
	})
	c := newTestClient(t, f)

	pages, err := c.ReadPages(context.Background(), "26.000000000001")
	if err != nil {
		t.Fatalf("ReadPages() unexpected error: %v", err)
	}
	if pages.PageCount() != 8 {
		t.Fatalf("PageCount() = %d, want 8", pages.PageCount())
	}
	b, err := pages.Byte(3, 4)
	if err != nil {
		t.Fatalf("Byte(3, 4) unexpected error: %v", err)
	}
	if b != 0x01 {
		t.Errorf("Byte(3, 4) = 0x%02X, want 0x01", b)
	}
}

func TestClientReadFloat(t *testing.T) {
	f := newFakeOwserver(t, map[string][]byte{
		"/28.AB12CD34EF00/temperature": []byte("      21.5625"),
	})
	c := newTestClient(t, f)

	v, err := c.ReadFloat(context.Background(), "28.AB12CD34EF00", "temperature")
	if err != nil {
		t.Fatalf("ReadFloat() unexpected error: %v", err)
	}
	if v != 21.5625 {
		t.Errorf("ReadFloat() = %v, want 21.5625", v)
	}
}

func TestClientServerError(t *testing.T) {
	f := newFakeOwserver(t, nil) // every path answers with a negative code
	c := newTestClient(t, f)

	_, err := c.GetType(context.Background(), "28.AB12CD34EF00")
	if !errors.Is(err, ErrServerError) {
		t.Fatalf("GetType() error = %v, want ErrServerError", err)
	}

	stats := c.Stats()
	if stats.ErrorsTotal == 0 {
		t.Error("ErrorsTotal not incremented on server error")
	}
}

func TestClientSkipsKeepalive(t *testing.T) {
	f := newFakeOwserver(t, map[string][]byte{
		"/28.AB12CD34EF00/temperature": []byte("19.25"),
	})
	f.keepalive = true
	c := newTestClient(t, f)

	v, err := c.ReadFloat(context.Background(), "28.AB12CD34EF00", "temperature")
	if err != nil {
		t.Fatalf("ReadFloat() unexpected error: %v", err)
	}
	if v != 19.25 {
		t.Errorf("ReadFloat() = %v, want 19.25", v)
	}
}

func TestClientConnectionFailed(t *testing.T) {
	c := New(Config{
		Address:        "127.0.0.1:1",
		ConnectTimeout: 100 * time.Millisecond,
		RequestTimeout: 100 * time.Millisecond,
	})

	if err := c.Ping(context.Background()); !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("Ping() error = %v, want ErrConnectionFailed", err)
	}
}
