package discovery

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-onewire/internal/onewire"
)

// BusClient is the bus access the scanner needs: enumeration plus the
// read operations classification performs. owserver.Client satisfies it.
type BusClient interface {
	onewire.BridgeHandler

	// Dir lists the addresses of all devices currently on the bus.
	Dir(ctx context.Context) ([]onewire.SensorID, error)
}

// Announcer publishes discovery results to interested consumers.
// Implementations must tolerate being called once per sensor per scan.
type Announcer interface {
	// AnnounceSensor publishes a discovered sensor's metadata.
	AnnounceSensor(rec Record) error

	// AnnounceScan publishes the outcome of a completed scan.
	AnnounceScan(run ScanRun) error
}

// MetricsRecorder receives per-scan summaries for trend monitoring.
// influxdb.Client satisfies it; recording is fire-and-forget.
type MetricsRecorder interface {
	WriteScanSummary(scanID string, sensorsFound, errorCount int)
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ScannerStats tracks scan statistics for monitoring.
type ScannerStats struct {
	ScansTotal   uint64 `json:"scans_total"`
	SensorsFound uint64 `json:"sensors_found"`
	ErrorsTotal  uint64 `json:"errors_total"`
}

// ScanResult is the in-memory outcome of a single scan: the run metadata,
// the resolved top-level items, and the flat record set that was persisted.
type ScanResult struct {
	Run     ScanRun
	Items   []*onewire.DiscoveryItem
	Records []Record
}

// Scanner performs bus scans: enumerate, classify, associate, resolve,
// persist, announce.
//
// Repository and Announcer are optional; a nil repository skips
// persistence and a nil announcer skips MQTT output. This keeps the
// scanner usable in one-shot CLI contexts and in tests.
type Scanner struct {
	bus       BusClient
	repo      Repository
	announcer Announcer

	// scanMu serialises scans. TryLock gives ErrScanInProgress semantics
	// instead of queueing.
	scanMu sync.Mutex

	scansTotal   atomic.Uint64
	sensorsFound atomic.Uint64
	errorsTotal  atomic.Uint64

	logger   Logger
	loggerMu sync.RWMutex

	metrics   MetricsRecorder
	metricsMu sync.RWMutex
}

// NewScanner creates a Scanner over the given bus client.
// repo and announcer may be nil.
func NewScanner(bus BusClient, repo Repository, announcer Announcer) *Scanner {
	return &Scanner{
		bus:       bus,
		repo:      repo,
		announcer: announcer,
	}
}

// Scan performs one full pass over the bus.
//
// Per-device failures (unreadable pages, malformed configuration) are
// logged and counted but never abort the scan. Only a failure to
// enumerate the bus at all returns an error.
//
// Returns ErrScanInProgress if another scan is still running.
func (s *Scanner) Scan(ctx context.Context) (*ScanResult, error) {
	if !s.scanMu.TryLock() {
		return nil, ErrScanInProgress
	}
	defer s.scanMu.Unlock()

	run := ScanRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	s.logInfo("bus scan started", "scan_id", run.ID)

	if s.repo != nil {
		if err := s.repo.CreateScanRun(ctx, &run); err != nil {
			s.logWarn("recording scan start", "scan_id", run.ID, "error", err)
		}
	}

	ids, err := s.bus.Dir(ctx)
	if err != nil {
		s.errorsTotal.Add(1)
		return nil, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}

	items, order, errCount := s.classify(ctx, ids)
	claimed := s.associate(items, order)

	// Resolve final types for devices that remain top-level.
	var topLevel []*onewire.DiscoveryItem
	for _, id := range order {
		if _, isSecondary := claimed[id]; isSecondary {
			continue
		}
		item := items[id]
		item.ResolveType()
		topLevel = append(topLevel, item)
	}

	records := buildRecords(topLevel, time.Now().UTC())

	completed := time.Now().UTC()
	run.CompletedAt = &completed
	run.SensorsFound = len(items)
	run.Errors = errCount

	s.persist(ctx, run, records)
	s.announce(records, run)
	s.recordMetrics(run)

	s.scansTotal.Add(1)
	s.sensorsFound.Add(uint64(len(items)))
	s.errorsTotal.Add(uint64(errCount))

	s.logInfo("bus scan completed",
		"scan_id", run.ID,
		"sensors", len(items),
		"top_level", len(topLevel),
		"errors", errCount)

	return &ScanResult{Run: run, Items: topLevel, Records: records}, nil
}

// classify builds a DiscoveryItem per enumerated device.
func (s *Scanner) classify(ctx context.Context, ids []onewire.SensorID) (map[onewire.SensorID]*onewire.DiscoveryItem, []onewire.SensorID, int) {
	items := make(map[onewire.SensorID]*onewire.DiscoveryItem, len(ids))
	order := make([]onewire.SensorID, 0, len(ids))
	errCount := 0

	for _, id := range ids {
		item, err := onewire.NewDiscoveryItem(ctx, s.bus, id)
		if err != nil {
			errCount++
			s.logWarn("classifying sensor", "sensor", id.String(), "error", err)
			continue
		}
		if logger := s.getLogger(); logger != nil {
			item.SetLogger(logger)
		}
		items[id] = item
		order = append(order, id)
	}

	return items, order, errCount
}

// associate attaches secondaries named in configuration pages to their
// owners. Returns the claimed set: secondary id -> owner id.
//
// A secondary named by two owners stays with the first; the duplicate
// claim is logged and ignored.
func (s *Scanner) associate(items map[onewire.SensorID]*onewire.DiscoveryItem, order []onewire.SensorID) map[onewire.SensorID]onewire.SensorID {
	claimed := make(map[onewire.SensorID]onewire.SensorID)

	for _, id := range order {
		item := items[id]
		if !item.HasAssociatedSensorIDs() {
			continue
		}

		for _, assocID := range item.AssociatedSensorIDs() {
			secondary, onBus := items[assocID]
			if !onBus {
				s.logDebug("associated sensor not on bus",
					"owner", id.String(), "associated", assocID.String())
				continue
			}

			if owner, taken := claimed[assocID]; taken {
				s.logWarn("associated sensor claimed twice",
					"sensor", assocID.String(),
					"owner", owner.String(),
					"duplicate_owner", id.String())
				continue
			}

			if err := item.AddAssociatedSensor(secondary); err != nil {
				s.logWarn("attaching associated sensor",
					"owner", id.String(), "associated", assocID.String(), "error", err)
				continue
			}
			claimed[assocID] = id
		}
	}

	return claimed
}

// buildRecords flattens resolved top-level items and their secondaries
// into persisted records.
func buildRecords(topLevel []*onewire.DiscoveryItem, now time.Time) []Record {
	var records []Record
	for _, item := range topLevel {
		records = append(records, recordFromItem(item, "", now))
		for _, secondary := range item.AssociatedSensors() {
			records = append(records, recordFromItem(secondary, item.SensorID().String(), now))
		}
	}
	return records
}

// persist writes records and the scan run outcome. Persistence failures
// are logged, not fatal: the scan result is still returned and announced.
func (s *Scanner) persist(ctx context.Context, run ScanRun, records []Record) {
	if s.repo == nil {
		return
	}

	seen := make([]string, 0, len(records))
	for i := range records {
		if err := s.repo.Upsert(ctx, &records[i]); err != nil {
			s.logError("persisting sensor", "sensor", records[i].SensorID, "error", err)
		}
		seen = append(seen, records[i].SensorID)
	}

	if err := s.repo.MarkMissing(ctx, seen); err != nil {
		s.logError("marking missing sensors", "error", err)
	}

	if err := s.repo.CompleteScanRun(ctx, &run); err != nil {
		s.logWarn("recording scan completion", "scan_id", run.ID, "error", err)
	}
}

// announce publishes records and the scan summary. Publish failures are
// logged, not fatal.
func (s *Scanner) announce(records []Record, run ScanRun) {
	if s.announcer == nil {
		return
	}

	for _, rec := range records {
		if err := s.announcer.AnnounceSensor(rec); err != nil {
			s.logWarn("announcing sensor", "sensor", rec.SensorID, "error", err)
		}
	}

	if err := s.announcer.AnnounceScan(run); err != nil {
		s.logWarn("announcing scan", "scan_id", run.ID, "error", err)
	}
}

// Run scans periodically until ctx is cancelled. A zero or negative
// interval disables periodic scanning and returns immediately; scans can
// still be triggered directly via Scan.
func (s *Scanner) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Scan(ctx); err != nil {
				s.logError("periodic scan", "error", err)
			}
		}
	}
}

// Stats returns a snapshot of scan statistics.
func (s *Scanner) Stats() ScannerStats {
	return ScannerStats{
		ScansTotal:   s.scansTotal.Load(),
		SensorsFound: s.sensorsFound.Load(),
		ErrorsTotal:  s.errorsTotal.Load(),
	}
}

// SetLogger sets an optional logger for scan progress and failures.
func (s *Scanner) SetLogger(logger Logger) {
	s.loggerMu.Lock()
	s.logger = logger
	s.loggerMu.Unlock()
}

// SetMetrics sets an optional recorder for per-scan summaries.
func (s *Scanner) SetMetrics(metrics MetricsRecorder) {
	s.metricsMu.Lock()
	s.metrics = metrics
	s.metricsMu.Unlock()
}

func (s *Scanner) recordMetrics(run ScanRun) {
	s.metricsMu.RLock()
	metrics := s.metrics
	s.metricsMu.RUnlock()
	if metrics != nil {
		metrics.WriteScanSummary(run.ID, run.SensorsFound, run.Errors)
	}
}

func (s *Scanner) getLogger() Logger {
	s.loggerMu.RLock()
	defer s.loggerMu.RUnlock()
	return s.logger
}

func (s *Scanner) logDebug(msg string, args ...any) {
	if logger := s.getLogger(); logger != nil {
		logger.Debug(msg, args...)
	}
}

func (s *Scanner) logInfo(msg string, args ...any) {
	if logger := s.getLogger(); logger != nil {
		logger.Info(msg, args...)
	}
}

func (s *Scanner) logWarn(msg string, args ...any) {
	if logger := s.getLogger(); logger != nil {
		logger.Warn(msg, args...)
	}
}

func (s *Scanner) logError(msg string, args ...any) {
	if logger := s.getLogger(); logger != nil {
		logger.Error(msg, args...)
	}
}
