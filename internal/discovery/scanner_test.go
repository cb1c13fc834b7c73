package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-onewire/internal/onewire"
)

// fakeBus implements BusClient over canned data.
type fakeBus struct {
	ids    []onewire.SensorID
	types  map[onewire.SensorID]onewire.SensorType
	pages  map[onewire.SensorID]onewire.PageBuffer
	dirErr error

	// readErr forces ReadPages to fail for specific sensors.
	readErr map[onewire.SensorID]error
}

func (f *fakeBus) Dir(ctx context.Context) ([]onewire.SensorID, error) {
	if f.dirErr != nil {
		return nil, f.dirErr
	}
	return f.ids, nil
}

func (f *fakeBus) GetType(ctx context.Context, sensorID onewire.SensorID) (onewire.SensorType, error) {
	typ, ok := f.types[sensorID]
	if !ok {
		return onewire.TypeUnknown, errors.New("fake: unknown sensor")
	}
	return typ, nil
}

func (f *fakeBus) ReadPages(ctx context.Context, sensorID onewire.SensorID) (onewire.PageBuffer, error) {
	if err, ok := f.readErr[sensorID]; ok {
		return onewire.PageBuffer{}, err
	}
	pages, ok := f.pages[sensorID]
	if !ok {
		return onewire.PageBuffer{}, errors.New("fake: no pages")
	}
	return pages, nil
}

// ds2438Pages builds an eight-page DS2438 memory image. subType goes to
// the config page; each entry in slots fills one associated slot with a
// raw ROM id.
func ds2438Pages(subType byte, slots ...[]byte) onewire.PageBuffer {
	raw := make([][]byte, 8)
	for i := range raw {
		raw[i] = make([]byte, onewire.PageSize)
	}
	config := raw[3]
	config[0] = subType
	config[3] = 2 // hw revision low
	config[4] = 1 // hw revision high
	config[5] = 42
	config[6] = 18
	copy(config[16:], "Dallas/Maxim")
	for i, rom := range slots {
		copy(raw[4+i], rom)
	}
	return onewire.NewPageBuffer(raw)
}

// fakeRepo records repository calls.
type fakeRepo struct {
	upserts   []Record
	marked    []string
	created   []ScanRun
	completed []ScanRun
}

func (f *fakeRepo) Upsert(ctx context.Context, rec *Record) error {
	f.upserts = append(f.upserts, *rec)
	return nil
}

func (f *fakeRepo) GetBySensorID(ctx context.Context, sensorID string) (*Record, error) {
	return nil, ErrNotFound
}

func (f *fakeRepo) List(ctx context.Context) ([]Record, error)        { return f.upserts, nil }
func (f *fakeRepo) ListPresent(ctx context.Context) ([]Record, error) { return f.upserts, nil }

func (f *fakeRepo) MarkMissing(ctx context.Context, seen []string) error {
	f.marked = seen
	return nil
}

func (f *fakeRepo) CreateScanRun(ctx context.Context, run *ScanRun) error {
	f.created = append(f.created, *run)
	return nil
}

func (f *fakeRepo) CompleteScanRun(ctx context.Context, run *ScanRun) error {
	f.completed = append(f.completed, *run)
	return nil
}

// fakeAnnouncer records announcements.
type fakeAnnouncer struct {
	sensors []Record
	scans   []ScanRun
}

func (f *fakeAnnouncer) AnnounceSensor(rec Record) error {
	f.sensors = append(f.sensors, rec)
	return nil
}

func (f *fakeAnnouncer) AnnounceScan(run ScanRun) error {
	f.scans = append(f.scans, run)
	return nil
}

func TestScan_MultisensorAssociation(t *testing.T) {
	owner := onewire.SensorID("26.000000000001")
	tempID := onewire.SensorID("28.BBBBBBBBBBBB")
	humID := onewire.SensorID("26.CCCCCCCCCCCC")

	bus := &fakeBus{
		ids: []onewire.SensorID{owner, tempID, humID},
		types: map[onewire.SensorID]onewire.SensorType{
			owner:  onewire.TypeDS2438,
			tempID: onewire.TypeDS18B20,
			humID:  onewire.TypeDS2438,
		},
		pages: map[onewire.SensorID]onewire.PageBuffer{
			// MS_TH owner naming both other devices in its slots.
			owner: ds2438Pages(0x19,
				[]byte{0x28, 0xBB, 0xBB, 0xBB, 0xBB, 0xBB, 0xBB},
				[]byte{0x26, 0xCC, 0xCC, 0xCC, 0xCC, 0xCC, 0xCC},
			),
			// Plain DS2438 secondary with empty slots.
			humID: ds2438Pages(0x00),
		},
	}

	repo := &fakeRepo{}
	announcer := &fakeAnnouncer{}
	scanner := NewScanner(bus, repo, announcer)

	result, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	// One top-level item: the multisensor; both others claimed.
	if len(result.Items) != 1 {
		t.Fatalf("Scan() top-level items = %d, want 1", len(result.Items))
	}

	item := result.Items[0]
	if item.SensorID() != owner {
		t.Errorf("top-level item = %s, want %s", item.SensorID(), owner)
	}
	// A DS2438 secondary provides humidity, so MS_TH resolves to AMS.
	if item.SensorType() != onewire.TypeAMS {
		t.Errorf("resolved type = %s, want %s", item.SensorType(), onewire.TypeAMS)
	}
	if item.AssociatedSensorCount() != 3 {
		t.Errorf("AssociatedSensorCount() = %d, want 3", item.AssociatedSensorCount())
	}

	// Three records: owner plus two secondaries pointing back at it.
	if len(result.Records) != 3 {
		t.Fatalf("Scan() records = %d, want 3", len(result.Records))
	}
	if result.Records[0].SensorID != owner.String() || result.Records[0].AssociatedWith != "" {
		t.Errorf("owner record = %+v", result.Records[0])
	}
	if result.Records[0].ThingType != "onewire:ams" {
		t.Errorf("owner thing type = %q, want %q", result.Records[0].ThingType, "onewire:ams")
	}
	for _, rec := range result.Records[1:] {
		if rec.AssociatedWith != owner.String() {
			t.Errorf("secondary %s associated_with = %q, want %q",
				rec.SensorID, rec.AssociatedWith, owner)
		}
	}

	// Persistence and announcements cover all three devices.
	if len(repo.upserts) != 3 {
		t.Errorf("repo upserts = %d, want 3", len(repo.upserts))
	}
	if len(repo.marked) != 3 {
		t.Errorf("repo marked seen = %d, want 3", len(repo.marked))
	}
	if len(repo.created) != 1 || len(repo.completed) != 1 {
		t.Errorf("scan run records = %d created, %d completed, want 1 each",
			len(repo.created), len(repo.completed))
	}
	if len(announcer.sensors) != 3 || len(announcer.scans) != 1 {
		t.Errorf("announcements = %d sensors, %d scans, want 3 and 1",
			len(announcer.sensors), len(announcer.scans))
	}

	if result.Run.SensorsFound != 3 || result.Run.Errors != 0 {
		t.Errorf("run = %+v, want 3 sensors, 0 errors", result.Run)
	}
	if result.Run.CompletedAt == nil {
		t.Error("run.CompletedAt = nil, want set")
	}
}

func TestScan_SimpleSensorsStayTopLevel(t *testing.T) {
	ids := []onewire.SensorID{"28.000000000001", "10.000000000002"}
	bus := &fakeBus{
		ids: ids,
		types: map[onewire.SensorID]onewire.SensorType{
			ids[0]: onewire.TypeDS18B20,
			ids[1]: onewire.TypeDS18S20,
		},
	}

	scanner := NewScanner(bus, nil, nil)
	result, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(result.Items) != 2 {
		t.Fatalf("top-level items = %d, want 2", len(result.Items))
	}
	for i, item := range result.Items {
		if item.SensorID() != ids[i] {
			t.Errorf("item %d = %s, want %s (bus order preserved)", i, item.SensorID(), ids[i])
		}
	}
	if result.Records[0].ThingType != "onewire:temperature" {
		t.Errorf("thing type = %q, want %q", result.Records[0].ThingType, "onewire:temperature")
	}
}

func TestScan_PerDeviceFailureTolerated(t *testing.T) {
	good := onewire.SensorID("28.000000000001")
	bad := onewire.SensorID("26.000000000002")

	bus := &fakeBus{
		ids: []onewire.SensorID{good, bad},
		types: map[onewire.SensorID]onewire.SensorType{
			good: onewire.TypeDS18B20,
			bad:  onewire.TypeDS2438,
		},
		readErr: map[onewire.SensorID]error{
			bad: errors.New("fake: bus glitch"),
		},
	}

	scanner := NewScanner(bus, nil, nil)
	result, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(result.Items) != 1 {
		t.Fatalf("top-level items = %d, want 1", len(result.Items))
	}
	if result.Items[0].SensorID() != good {
		t.Errorf("surviving item = %s, want %s", result.Items[0].SensorID(), good)
	}
	if result.Run.Errors != 1 {
		t.Errorf("run.Errors = %d, want 1", result.Run.Errors)
	}
	if result.Run.SensorsFound != 1 {
		t.Errorf("run.SensorsFound = %d, want 1", result.Run.SensorsFound)
	}
}

func TestScan_AssociatedSensorMissingFromBus(t *testing.T) {
	owner := onewire.SensorID("26.000000000001")

	bus := &fakeBus{
		ids: []onewire.SensorID{owner},
		types: map[onewire.SensorID]onewire.SensorType{
			owner: onewire.TypeDS2438,
		},
		pages: map[onewire.SensorID]onewire.PageBuffer{
			// Slot names a sensor that is not on the bus.
			owner: ds2438Pages(0x19, []byte{0x28, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06}),
		},
	}

	scanner := NewScanner(bus, nil, nil)
	result, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(result.Items) != 1 {
		t.Fatalf("top-level items = %d, want 1", len(result.Items))
	}
	// No secondaries attached, so MS_TH resolves to BMS.
	if got := result.Items[0].SensorType(); got != onewire.TypeBMS {
		t.Errorf("resolved type = %s, want %s", got, onewire.TypeBMS)
	}
}

func TestScan_DirFailure(t *testing.T) {
	bus := &fakeBus{dirErr: errors.New("fake: owserver down")}

	scanner := NewScanner(bus, nil, nil)
	_, err := scanner.Scan(context.Background())
	if !errors.Is(err, ErrScanFailed) {
		t.Errorf("Scan() error = %v, want ErrScanFailed", err)
	}
}

func TestScan_InProgress(t *testing.T) {
	bus := &fakeBus{}
	scanner := NewScanner(bus, nil, nil)

	scanner.scanMu.Lock()
	defer scanner.scanMu.Unlock()

	_, err := scanner.Scan(context.Background())
	if !errors.Is(err, ErrScanInProgress) {
		t.Errorf("Scan() error = %v, want ErrScanInProgress", err)
	}
}

func TestScan_Stats(t *testing.T) {
	bus := &fakeBus{
		ids: []onewire.SensorID{"28.000000000001"},
		types: map[onewire.SensorID]onewire.SensorType{
			"28.000000000001": onewire.TypeDS18B20,
		},
	}

	scanner := NewScanner(bus, nil, nil)
	for i := 0; i < 3; i++ {
		if _, err := scanner.Scan(context.Background()); err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
	}

	stats := scanner.Stats()
	if stats.ScansTotal != 3 {
		t.Errorf("ScansTotal = %d, want 3", stats.ScansTotal)
	}
	if stats.SensorsFound != 3 {
		t.Errorf("SensorsFound = %d, want 3", stats.SensorsFound)
	}
	if stats.ErrorsTotal != 0 {
		t.Errorf("ErrorsTotal = %d, want 0", stats.ErrorsTotal)
	}
}

type fakeMetrics struct {
	summaries []struct {
		scanID       string
		sensorsFound int
		errorCount   int
	}
}

func (f *fakeMetrics) WriteScanSummary(scanID string, sensorsFound, errorCount int) {
	f.summaries = append(f.summaries, struct {
		scanID       string
		sensorsFound int
		errorCount   int
	}{scanID, sensorsFound, errorCount})
}

func TestScan_RecordsMetricsSummary(t *testing.T) {
	bus := &fakeBus{
		ids: []onewire.SensorID{"28.000000000001", "28.000000000002"},
		types: map[onewire.SensorID]onewire.SensorType{
			"28.000000000001": onewire.TypeDS18B20,
			"28.000000000002": onewire.TypeDS18B20,
		},
		readErr: map[onewire.SensorID]error{},
	}

	scanner := NewScanner(bus, nil, nil)
	metrics := &fakeMetrics{}
	scanner.SetMetrics(metrics)

	result, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(metrics.summaries) != 1 {
		t.Fatalf("summaries recorded = %d, want 1", len(metrics.summaries))
	}
	got := metrics.summaries[0]
	if got.scanID != result.Run.ID {
		t.Errorf("summary scan id = %q, want %q", got.scanID, result.Run.ID)
	}
	if got.sensorsFound != 2 || got.errorCount != 0 {
		t.Errorf("summary = %d sensors / %d errors, want 2 / 0", got.sensorsFound, got.errorCount)
	}
}

func TestRun_DisabledInterval(t *testing.T) {
	scanner := NewScanner(&fakeBus{}, nil, nil)

	done := make(chan struct{})
	go func() {
		scanner.Run(context.Background(), 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Run() with zero interval did not return")
	}
}
