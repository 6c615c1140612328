// services/meter/db.go
package meter

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed migration/*
var migrationFiles embed.FS

// ConnectSqlite opens (or creates) the results database and applies the
// schema migrations.
func ConnectSqlite(path string) (*sql.DB, error) {
	db, err := connectWithBackoff("sqlite3", path, 3)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runMigrations(db *sql.DB) error {
	entries, err := fs.ReadDir(migrationFiles, "migration")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		data, err := fs.ReadFile(migrationFiles, filepath.Join("migration", entry.Name()))
		if err != nil {
			return err
		}
		if _, err := db.Exec(string(data)); err != nil {
			return fmt.Errorf("meter: migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func connectWithBackoff(driver, connStr string, maxRetries int) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open(driver, connStr)
		if err == nil {
			if err = db.Ping(); err == nil {
				return db, nil
			}
			db.Close()
		}
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	return nil, err
}

// ReadingRow is one persisted light measurement, channel values normalised
// to fractions of the saturation ceiling.
type ReadingRow struct {
	JobID      string    `json:"jobID"`
	Source     string    `json:"source"`
	Clear      float64   `json:"clear"`
	Red        float64   `json:"red"`
	Green      float64   `json:"green"`
	Blue       float64   `json:"blue"`
	RecordedAt time.Time `json:"recordedAt"`
}

func insertReading(db *sql.DB, row ReadingRow) error {
	_, err := db.Exec(
		"INSERT INTO readings (job_id, source, clear, red, green, blue) VALUES (?, ?, ?, ?, ?, ?)",
		row.JobID, row.Source, row.Clear, row.Red, row.Green, row.Blue,
	)
	return err
}

func latestReading(db *sql.DB) (ReadingRow, error) {
	var row ReadingRow
	err := db.QueryRow(
		"SELECT job_id, source, clear, red, green, blue, recorded_at FROM readings ORDER BY id DESC LIMIT 1",
	).Scan(&row.JobID, &row.Source, &row.Clear, &row.Red, &row.Green, &row.Blue, &row.RecordedAt)
	return row, err
}
