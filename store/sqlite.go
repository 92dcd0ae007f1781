// Package store keeps an optional SQLite log of batch runs: the places each fetch produced, the
// statuses each check recorded and every per-row failure.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/whosonfirst/go-poi-directory"
	"github.com/whosonfirst/go-poi-directory/status"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sql.DB
}

// Run is a single invocation of a batch tool.
type Run struct {
	ID        string
	Tool      string
	StartedAt time.Time
	// FinishedAt is zero for runs that never completed.
	FinishedAt time.Time
	Succeeded  int
	Failed     int
}

// StatusCheck is a recorded business status lookup.
type StatusCheck struct {
	RunID     string
	Name      string
	Status    string
	CheckedAt time.Time
}

// Open opens (creating if necessary) the SQLite database at 'path'.
func Open(ctx context.Context, path string) (*Store, error) {

	db, err := sql.Open("sqlite3", path)

	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	_, err = db.ExecContext(ctx, schema)

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// StartRun records the start of a run of 'tool'.
func (s *Store) StartRun(ctx context.Context, tool string) (*Run, error) {

	run := &Run{
		ID:        uuid.New().String(),
		Tool:      tool,
		StartedAt: time.Now(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, tool, started_at) VALUES (?, ?, ?)",
		run.ID, run.Tool, run.StartedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	return run, nil
}

// FinishRun records the completion time and the success and failure totals of 'run'.
func (s *Store) FinishRun(ctx context.Context, run *Run, succeeded int, failed int) error {

	now := time.Now()

	_, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, succeeded = ?, failed = ? WHERE id = ?",
		now, succeeded, failed, run.ID,
	)

	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	run.FinishedAt = now
	run.Succeeded = succeeded
	run.Failed = failed

	return nil
}

// Runs returns the most recent 'limit' runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]*Run, error) {

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, tool, started_at, finished_at, succeeded, failed FROM runs ORDER BY started_at DESC LIMIT ?",
		limit,
	)

	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	defer rows.Close()

	runs := make([]*Run, 0)

	for rows.Next() {

		run := new(Run)

		var finished sql.NullTime

		err := rows.Scan(&run.ID, &run.Tool, &run.StartedAt, &finished, &run.Succeeded, &run.Failed)

		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		if finished.Valid {
			run.FinishedAt = finished.Time
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// RecordPlaces stores every result in 'report': fetched places and failures alike.
func (s *Store) RecordPlaces(ctx context.Context, run *Run, report *directory.Report[*directory.Place]) error {

	return s.withTx(ctx, func(tx *sql.Tx) error {

		for _, res := range report.Results {

			if !res.OK() {

				err := insertFailure(ctx, tx, run, res.Key, res.Tag, res.Err)

				if err != nil {
					return err
				}

				continue
			}

			pl := res.Value

			_, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO places (run_id, place_id, name, category, full_address, latitude, longitude,
				city, state, zip_code, phone_number, website, google_maps_url) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				run.ID, res.Key, pl.Name, pl.Category, pl.FullAddress, pl.Latitude, pl.Longitude,
				pl.City, pl.State, pl.ZipCode, pl.PhoneNumber, pl.Website, pl.GoogleMapsURL,
			)

			if err != nil {
				return fmt.Errorf("insert place %s: %w", res.Key, err)
			}
		}

		return nil
	})
}

// RecordStatusChecks stores the status of every checked row in 'report', plus a failure entry for
// each lookup that errored.
func (s *Store) RecordStatusChecks(ctx context.Context, run *Run, report *directory.Report[*status.Checked]) error {

	return s.withTx(ctx, func(tx *sql.Tx) error {

		for _, res := range report.Results {

			if res.Value == nil {
				continue
			}

			_, err := tx.ExecContext(ctx,
				"INSERT INTO status_checks (run_id, name, business_status, checked_at) VALUES (?, ?, ?, ?)",
				run.ID, res.Value.Name, string(res.Value.Status), res.Value.LastChecked,
			)

			if err != nil {
				return fmt.Errorf("insert status check for %s: %w", res.Key, err)
			}

			if !res.OK() {

				err := insertFailure(ctx, tx, run, res.Key, res.Tag, res.Err)

				if err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// Places returns the places recorded for 'run_id', ordered by category and name.
func (s *Store) Places(ctx context.Context, run_id string) ([]*directory.Place, error) {

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, category, full_address, latitude, longitude, city, state, zip_code, phone_number, website, google_maps_url
		FROM places WHERE run_id = ? ORDER BY category, name`,
		run_id,
	)

	if err != nil {
		return nil, fmt.Errorf("query places: %w", err)
	}

	defer rows.Close()

	places := make([]*directory.Place, 0)

	for rows.Next() {

		pl := new(directory.Place)

		var lat, lon sql.NullFloat64

		err := rows.Scan(&pl.Name, &pl.Category, &pl.FullAddress, &lat, &lon,
			&pl.City, &pl.State, &pl.ZipCode, &pl.PhoneNumber, &pl.Website, &pl.GoogleMapsURL)

		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}

		if lat.Valid && lon.Valid {
			pl.Latitude = &lat.Float64
			pl.Longitude = &lon.Float64
		}

		places = append(places, pl)
	}

	return places, rows.Err()
}

// StatusHistory returns every recorded check for 'name', most recent first.
func (s *Store) StatusHistory(ctx context.Context, name string) ([]*StatusCheck, error) {

	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, name, business_status, checked_at FROM status_checks WHERE name = ? ORDER BY checked_at DESC",
		name,
	)

	if err != nil {
		return nil, fmt.Errorf("query status checks: %w", err)
	}

	defer rows.Close()

	checks := make([]*StatusCheck, 0)

	for rows.Next() {

		c := new(StatusCheck)

		err := rows.Scan(&c.RunID, &c.Name, &c.Status, &c.CheckedAt)

		if err != nil {
			return nil, fmt.Errorf("scan status check: %w", err)
		}

		checks = append(checks, c)
	}

	return checks, rows.Err()
}

// Failures returns the number of failures recorded for 'run_id' by tag.
func (s *Store) Failures(ctx context.Context, run_id string) (map[string]int, error) {

	rows, err := s.db.QueryContext(ctx,
		"SELECT tag, COUNT(*) FROM failures WHERE run_id = ? GROUP BY tag",
		run_id,
	)

	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}

	defer rows.Close()

	counts := make(map[string]int)

	for rows.Next() {

		var tag string
		var count int

		err := rows.Scan(&tag, &count)

		if err != nil {
			return nil, fmt.Errorf("scan failure count: %w", err)
		}

		counts[tag] = count
	}

	return counts, rows.Err()
}

func insertFailure(ctx context.Context, tx *sql.Tx, run *Run, key string, tag string, failure error) error {

	_, err := tx.ExecContext(ctx,
		"INSERT INTO failures (run_id, key, tag, error) VALUES (?, ?, ?, ?)",
		run.ID, key, tag, failure.Error(),
	)

	if err != nil {
		return fmt.Errorf("insert failure for %s: %w", key, err)
	}

	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {

	tx, err := s.db.BeginTx(ctx, nil)

	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	err = fn(tx)

	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
