package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	dirPermissions  = 0750
	filePermissions = 0600

	// openPingTimeout bounds the connectivity check performed by Open.
	openPingTimeout = 5 * time.Second

	connMaxIdleTime = 30 * time.Minute
)

// DB is the bridge's handle on the SQLite inventory store. It embeds
// *sql.DB so the repository layer can run queries directly, and adds
// migration and health-check support on top.
type DB struct {
	*sql.DB
	path string
}

// Config mirrors the database section of config.yaml.
type Config struct {
	// Path to the SQLite file. The parent directory is created on open.
	Path string

	// WALMode enables write-ahead logging. Lets the API serve inventory
	// reads while a scan is persisting results.
	WALMode bool

	// BusyTimeout is how long a locked statement waits, in seconds.
	BusyTimeout int
}

// dsn builds the go-sqlite3 connection string. Foreign keys are always
// on: the sensor inventory relies on them for the associated_with
// relationship between multisensors and their secondaries.
func dsn(cfg Config) string {
	s := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path, cfg.BusyTimeout*1000)
	if cfg.WALMode {
		s += "&_journal_mode=WAL&_synchronous=NORMAL"
	}
	return s
}

// Open opens (creating if necessary) the inventory database, applies the
// connection pragmas and verifies connectivity. The pool is pinned to a
// single connection: SQLite allows one writer, and the bridge's write
// load (scan persistence, presence updates) is light.
func Open(cfg Config) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	db := &DB{DB: sqlDB, path: cfg.Path}

	ctx, cancel := context.WithTimeout(context.Background(), openPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	// Inventory contents are site topology; keep the file owner-only.
	// Ignored on first run when the file does not exist yet.
	_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // File may not exist yet

	return db, nil
}

// Close closes the underlying connection. Safe to call on a DB whose
// connection was already cleared.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// HealthCheck runs a trivial query to confirm the store is reachable.
func (db *DB) HealthCheck(ctx context.Context) error {
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
