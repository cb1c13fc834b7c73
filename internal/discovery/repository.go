package discovery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for discovery persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// Upsert inserts a sensor record or refreshes an existing one.
	// FirstSeen is preserved on update; LastSeen is always refreshed.
	Upsert(ctx context.Context, rec *Record) error

	// GetBySensorID retrieves a sensor by its bus address.
	// Returns ErrNotFound if the sensor has never been discovered.
	GetBySensorID(ctx context.Context, sensorID string) (*Record, error)

	// List retrieves all known sensors, present or not.
	List(ctx context.Context) ([]Record, error)

	// ListPresent retrieves sensors seen during the most recent scans.
	ListPresent(ctx context.Context) ([]Record, error)

	// MarkMissing flags every sensor not in seen as absent.
	// An empty seen slice marks the whole population absent.
	MarkMissing(ctx context.Context, seen []string) error

	// CreateScanRun records the start of a bus scan.
	CreateScanRun(ctx context.Context, run *ScanRun) error

	// CompleteScanRun records the outcome of a finished scan.
	CompleteScanRun(ctx context.Context, run *ScanRun) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// Interface compliance check.
var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection with the
// discovered_sensors and scan_runs tables migrated.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts a sensor record or refreshes an existing one.
func (r *SQLiteRepository) Upsert(ctx context.Context, rec *Record) error {
	now := time.Now().UTC()
	if rec.FirstSeen.IsZero() {
		rec.FirstSeen = now
	}
	if rec.LastSeen.IsZero() {
		rec.LastSeen = now
	}

	query := `
		INSERT INTO discovered_sensors (
			sensor_id, family, sensor_type, thing_type, label, vendor,
			hardware_revision, production_date, associated_with, present,
			first_seen, last_seen
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(sensor_id) DO UPDATE SET
			sensor_type = excluded.sensor_type,
			thing_type = excluded.thing_type,
			label = excluded.label,
			vendor = excluded.vendor,
			hardware_revision = excluded.hardware_revision,
			production_date = excluded.production_date,
			associated_with = excluded.associated_with,
			present = excluded.present,
			last_seen = excluded.last_seen`

	_, err := r.db.ExecContext(ctx, query,
		rec.SensorID,
		rec.Family,
		rec.SensorType,
		nullableString(rec.ThingType),
		nullableString(rec.Label),
		nullableString(rec.Vendor),
		nullableString(rec.HardwareRevision),
		nullableString(rec.ProductionDate),
		nullableString(rec.AssociatedWith),
		boolToInt(rec.Present),
		rec.FirstSeen.Format(time.RFC3339),
		rec.LastSeen.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting sensor %s: %w", rec.SensorID, err)
	}

	return nil
}

// GetBySensorID retrieves a sensor by its bus address.
func (r *SQLiteRepository) GetBySensorID(ctx context.Context, sensorID string) (*Record, error) {
	query := `
		SELECT sensor_id, family, sensor_type, thing_type, label, vendor,
			hardware_revision, production_date, associated_with, present,
			first_seen, last_seen
		FROM discovered_sensors
		WHERE sensor_id = ?`

	row := r.db.QueryRowContext(ctx, query, sensorID)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying sensor by id: %w", err)
	}
	return rec, nil
}

// List retrieves all known sensors, present or not.
func (r *SQLiteRepository) List(ctx context.Context) ([]Record, error) {
	query := `
		SELECT sensor_id, family, sensor_type, thing_type, label, vendor,
			hardware_revision, production_date, associated_with, present,
			first_seen, last_seen
		FROM discovered_sensors
		ORDER BY sensor_id`

	return r.queryRecords(ctx, query)
}

// ListPresent retrieves sensors seen during the most recent scans.
func (r *SQLiteRepository) ListPresent(ctx context.Context) ([]Record, error) {
	query := `
		SELECT sensor_id, family, sensor_type, thing_type, label, vendor,
			hardware_revision, production_date, associated_with, present,
			first_seen, last_seen
		FROM discovered_sensors
		WHERE present = 1
		ORDER BY sensor_id`

	return r.queryRecords(ctx, query)
}

// MarkMissing flags every sensor not in seen as absent.
func (r *SQLiteRepository) MarkMissing(ctx context.Context, seen []string) error {
	if len(seen) == 0 {
		if _, err := r.db.ExecContext(ctx, `UPDATE discovered_sensors SET present = 0`); err != nil {
			return fmt.Errorf("marking all sensors missing: %w", err)
		}
		return nil
	}

	placeholders := strings.Repeat("?,", len(seen))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(
		`UPDATE discovered_sensors SET present = 0 WHERE sensor_id NOT IN (%s)`,
		placeholders,
	)

	args := make([]any, len(seen))
	for i, id := range seen {
		args[i] = id
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("marking sensors missing: %w", err)
	}

	return nil
}

// CreateScanRun records the start of a bus scan.
func (r *SQLiteRepository) CreateScanRun(ctx context.Context, run *ScanRun) error {
	query := `
		INSERT INTO scan_runs (id, started_at, completed_at, sensors_found, errors)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		nullableTime(run.CompletedAt),
		run.SensorsFound,
		run.Errors,
	)
	if err != nil {
		return fmt.Errorf("inserting scan run: %w", err)
	}

	return nil
}

// CompleteScanRun records the outcome of a finished scan.
func (r *SQLiteRepository) CompleteScanRun(ctx context.Context, run *ScanRun) error {
	query := `
		UPDATE scan_runs
		SET completed_at = ?, sensors_found = ?, errors = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		nullableTime(run.CompletedAt),
		run.SensorsFound,
		run.Errors,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("completing scan run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking scan run update: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("completing scan run %s: %w", run.ID, ErrNotFound)
	}

	return nil
}

// queryRecords executes a query and scans all resulting rows.
func (r *SQLiteRepository) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sensors: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sensor row: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sensor rows: %w", err)
	}

	return records, nil
}

// rowScanner abstracts over *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a row or rows result into a Record.
func scanRecord(scanner rowScanner) (*Record, error) {
	var rec Record
	var thingType, label, vendor, hwRevision, prodDate, associatedWith sql.NullString
	var present int
	var firstSeen, lastSeen string

	err := scanner.Scan(
		&rec.SensorID,
		&rec.Family,
		&rec.SensorType,
		&thingType,
		&label,
		&vendor,
		&hwRevision,
		&prodDate,
		&associatedWith,
		&present,
		&firstSeen,
		&lastSeen,
	)
	if err != nil {
		return nil, err
	}

	rec.ThingType = thingType.String
	rec.Label = label.String
	rec.Vendor = vendor.String
	rec.HardwareRevision = hwRevision.String
	rec.ProductionDate = prodDate.String
	rec.AssociatedWith = associatedWith.String
	rec.Present = present != 0

	if rec.FirstSeen, err = time.Parse(time.RFC3339, firstSeen); err != nil {
		return nil, fmt.Errorf("parsing first_seen: %w", err)
	}
	if rec.LastSeen, err = time.Parse(time.RFC3339, lastSeen); err != nil {
		return nil, fmt.Errorf("parsing last_seen: %w", err)
	}

	return &rec, nil
}

// nullableString returns a sql.NullString that is NULL for empty strings.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullableTime returns a sql.NullString for optional time pointers (as RFC3339 strings).
func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

// boolToInt converts a boolean to 0/1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
