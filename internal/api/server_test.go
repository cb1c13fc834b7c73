package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-onewire/internal/discovery"
	"github.com/nerrad567/gray-logic-onewire/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-onewire/internal/infrastructure/logging"
)

// fakeRepo is an in-memory discovery.Repository.
type fakeRepo struct {
	records []discovery.Record
	err     error
}

func (f *fakeRepo) Upsert(ctx context.Context, rec *discovery.Record) error { return nil }

func (f *fakeRepo) GetBySensorID(ctx context.Context, sensorID string) (*discovery.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.records {
		if f.records[i].SensorID == sensorID {
			return &f.records[i], nil
		}
	}
	return nil, discovery.ErrNotFound
}

func (f *fakeRepo) List(ctx context.Context) ([]discovery.Record, error) {
	return f.records, f.err
}

func (f *fakeRepo) ListPresent(ctx context.Context) ([]discovery.Record, error) {
	var present []discovery.Record
	for _, rec := range f.records {
		if rec.Present {
			present = append(present, rec)
		}
	}
	return present, f.err
}

func (f *fakeRepo) MarkMissing(ctx context.Context, seen []string) error          { return nil }
func (f *fakeRepo) CreateScanRun(ctx context.Context, run *discovery.ScanRun) error { return nil }
func (f *fakeRepo) CompleteScanRun(ctx context.Context, run *discovery.ScanRun) error {
	return nil
}

// fakeScanner is a canned ScanService.
type fakeScanner struct {
	result *discovery.ScanResult
	err    error
	stats  discovery.ScannerStats
}

func (f *fakeScanner) Scan(ctx context.Context) (*discovery.ScanResult, error) {
	return f.result, f.err
}

func (f *fakeScanner) Stats() discovery.ScannerStats { return f.stats }

// fakeBus is a canned BusPinger.
type fakeBus struct{ err error }

func (f *fakeBus) Ping(ctx context.Context) error { return f.err }

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
}

func testServer(t *testing.T, repo discovery.Repository, scanner ScanService, bus BusPinger) *Server {
	t.Helper()
	srv, err := New(Deps{
		Config:  config.APIConfig{Host: "127.0.0.1", Port: 8090},
		Logger:  testLogger(),
		Repo:    repo,
		Scanner: scanner,
		Bus:     bus,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv
}

func TestNew_RequiredDeps(t *testing.T) {
	tests := []struct {
		name string
		deps Deps
	}{
		{"missing logger", Deps{Repo: &fakeRepo{}, Scanner: &fakeScanner{}}},
		{"missing repo", Deps{Logger: testLogger(), Scanner: &fakeScanner{}}},
		{"missing scanner", Deps{Logger: testLogger(), Repo: &fakeRepo{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.deps); err == nil {
				t.Error("New() error = nil, want missing dependency error")
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, &fakeRepo{}, &fakeScanner{}, &fakeBus{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var health HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q, want ok", health.Status)
	}
	if health.Checks["owserver"] != "ok" {
		t.Errorf("owserver check = %q, want ok", health.Checks["owserver"])
	}
}

func TestHandleHealth_BusUnreachable(t *testing.T) {
	srv := testServer(t, &fakeRepo{}, &fakeScanner{}, &fakeBus{err: errors.New("refused")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)

	var health HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if health.Status != "degraded" {
		t.Errorf("status = %q, want degraded", health.Status)
	}
	if health.Checks["owserver"] != "unreachable" {
		t.Errorf("owserver check = %q, want unreachable", health.Checks["owserver"])
	}
}

func TestHandleListSensors(t *testing.T) {
	repo := &fakeRepo{records: []discovery.Record{
		{SensorID: "26.000000000001", SensorType: "AMS", Present: true},
		{SensorID: "28.000000000002", SensorType: "DS18B20", Present: false},
	}}
	srv := testServer(t, repo, &fakeScanner{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sensors", nil)
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp SensorListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
}

func TestHandleListSensors_PresentFilter(t *testing.T) {
	repo := &fakeRepo{records: []discovery.Record{
		{SensorID: "26.000000000001", SensorType: "AMS", Present: true},
		{SensorID: "28.000000000002", SensorType: "DS18B20", Present: false},
	}}
	srv := testServer(t, repo, &fakeScanner{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sensors?present=true", nil)
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)

	var resp SensorListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("count = %d, want 1", resp.Count)
	}
	if resp.Sensors[0].SensorID != "26.000000000001" {
		t.Errorf("sensor = %s, want the present one", resp.Sensors[0].SensorID)
	}
}

func TestHandleGetSensor(t *testing.T) {
	repo := &fakeRepo{records: []discovery.Record{
		{SensorID: "26.000000000001", SensorType: "AMS", ThingType: "onewire:ams", Present: true},
	}}
	srv := testServer(t, repo, &fakeScanner{}, nil)

	// Both address forms resolve to the same sensor.
	for _, path := range []string{
		"/api/v1/sensors/26.000000000001",
		"/api/v1/sensors/26_000000000001",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.buildRouter().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
			continue
		}

		var sensor discovery.Record
		if err := json.Unmarshal(rec.Body.Bytes(), &sensor); err != nil {
			t.Fatalf("invalid JSON response: %v", err)
		}
		if sensor.ThingType != "onewire:ams" {
			t.Errorf("thing type = %q, want onewire:ams", sensor.ThingType)
		}
	}
}

func TestHandleGetSensor_NotFound(t *testing.T) {
	srv := testServer(t, &fakeRepo{}, &fakeScanner{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sensors/28.FFFFFFFFFFFF", nil)
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleTriggerScan(t *testing.T) {
	completed := time.Now().UTC()
	scanner := &fakeScanner{result: &discovery.ScanResult{
		Run: discovery.ScanRun{
			ID:           "scan-test-001",
			CompletedAt:  &completed,
			SensorsFound: 4,
		},
	}}
	srv := testServer(t, &fakeRepo{}, scanner, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", nil)
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp ScanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.ScanID != "scan-test-001" || resp.SensorsFound != 4 {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleTriggerScan_Conflict(t *testing.T) {
	scanner := &fakeScanner{err: discovery.ErrScanInProgress}
	srv := testServer(t, &fakeRepo{}, scanner, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", nil)
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestHandleMetrics(t *testing.T) {
	scanner := &fakeScanner{stats: discovery.ScannerStats{ScansTotal: 5, SensorsFound: 12}}
	srv := testServer(t, &fakeRepo{}, scanner, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var metrics SystemMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if metrics.Scanner.ScansTotal != 5 {
		t.Errorf("scanner.scans_total = %d, want 5", metrics.Scanner.ScansTotal)
	}
	if metrics.Runtime.Goroutines == 0 {
		t.Error("runtime.goroutines = 0, want > 0")
	}
	if metrics.Version != "test" {
		t.Errorf("version = %q, want test", metrics.Version)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	srv := testServer(t, &fakeRepo{}, &fakeScanner{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "client-supplied-id" {
		t.Errorf("X-Request-ID = %q, want client-supplied-id", got)
	}

	// Absent header: the server generates one.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec = httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not generated")
	}
}
