// Package db provides sqlite persistence for telemetry readings, movement
// commands, and hazard reinforcement events.
package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the sqlite handle with the station's storage operations.
type DB struct {
	*sql.DB
	path string
}

// Open opens (or creates) the sqlite database at path and applies any
// pending schema migrations.
func Open(path string) (*DB, error) {
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", path, err)
	}

	db := &DB{DB: handle, path: path}
	if err := db.migrateUp(); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

// migrateUp applies all pending migrations from the embedded directory.
// Already being at the latest version is not an error.
func (db *DB) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	// Not closing m: that would close the underlying DB connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Reading is one normalized telemetry record from the robot. Channels the
// robot did not report stay nil.
type Reading struct {
	Timestamp float64  `json:"timestamp"`
	Temp      *float64 `json:"temp"`
	Gas       *float64 `json:"gas"`
	Pressure  *float64 `json:"pressure"`
	Vibration *float64 `json:"vibration"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Battery   *float64 `json:"battery"`
	Mode      *string  `json:"mode"`
	RSSI      *float64 `json:"rssi"`
	Quality   *float64 `json:"quality"`
	Survivors *int64   `json:"survivors"`
}

// RecordReading appends a telemetry record.
func (db *DB) RecordReading(r Reading) error {
	_, err := db.Exec(`
		INSERT INTO readings
			(timestamp, temp, gas, pressure, vibration, latitude, longitude, battery, mode, rssi, quality, survivors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Timestamp, r.Temp, r.Gas, r.Pressure, r.Vibration,
		r.Latitude, r.Longitude, r.Battery, r.Mode, r.RSSI, r.Quality, r.Survivors,
	)
	if err != nil {
		return fmt.Errorf("record reading: %w", err)
	}
	return nil
}

// RecentReadings returns up to limit readings in chronological order.
func (db *DB) RecentReadings(limit int) ([]Reading, error) {
	rows, err := db.Query(`
		SELECT timestamp, temp, gas, pressure, vibration, latitude, longitude, battery, mode, rssi, quality, survivors
		FROM readings ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		var r Reading
		if err := rows.Scan(
			&r.Timestamp, &r.Temp, &r.Gas, &r.Pressure, &r.Vibration,
			&r.Latitude, &r.Longitude, &r.Battery, &r.Mode, &r.RSSI, &r.Quality, &r.Survivors,
		); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query is newest-first for the LIMIT; callers want chronological order.
	for i, j := 0, len(readings)-1; i < j; i, j = i+1, j-1 {
		readings[i], readings[j] = readings[j], readings[i]
	}
	return readings, nil
}

// RecordCommand logs a movement command and its outcome.
func (db *DB) RecordCommand(commandID, command, status string) error {
	_, err := db.Exec(
		"INSERT INTO commands (command_id, command, status) VALUES (?, ?, ?)",
		commandID, command, status,
	)
	if err != nil {
		return fmt.Errorf("record command %s: %w", commandID, err)
	}
	return nil
}

// RecordHazardEvent logs one reinforcement call: the affected cells as a
// JSON array and the amount applied.
func (db *DB) RecordHazardEvent(cellsJSON string, amount float64) error {
	_, err := db.Exec(
		"INSERT INTO hazard_events (cells, amount) VALUES (?, ?)",
		cellsJSON, amount,
	)
	if err != nil {
		return fmt.Errorf("record hazard event: %w", err)
	}
	return nil
}

// HazardEventCount returns the number of logged reinforcement events.
func (db *DB) HazardEventCount() (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM hazard_events").Scan(&n); err != nil {
		return 0, fmt.Errorf("count hazard events: %w", err)
	}
	return n, nil
}
