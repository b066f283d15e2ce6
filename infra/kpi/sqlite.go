// Package kpi stores daily asset energy records in SQLite.
package kpi

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/flexmodel/core/metrics/eco"
)

const dayLayout = "2006-01-02"

const schema = `CREATE TABLE IF NOT EXISTS asset_energy_daily (
	run_id         TEXT NOT NULL,
	asset          TEXT NOT NULL,
	day            TEXT NOT NULL,
	charged_kwh    REAL NOT NULL DEFAULT 0,
	discharged_kwh REAL NOT NULL DEFAULT 0,
	active_steps   INTEGER NOT NULL DEFAULT 0,
	cost_eur       REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, asset, day)
);`

// SQLiteStore implements eco.Store on a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ eco.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kpi schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Add upserts r, summing into an existing row of the same run, asset and day.
func (s *SQLiteStore) Add(r eco.Record) error {
	_, err := s.db.Exec(`INSERT INTO asset_energy_daily
		(run_id, asset, day, charged_kwh, discharged_kwh, active_steps, cost_eur)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, asset, day) DO UPDATE SET
			charged_kwh    = charged_kwh + excluded.charged_kwh,
			discharged_kwh = discharged_kwh + excluded.discharged_kwh,
			active_steps   = active_steps + excluded.active_steps,
			cost_eur       = cost_eur + excluded.cost_eur`,
		r.RunID, r.Asset, eco.Day(r.Date).Format(dayLayout),
		r.ChargedKWh, r.DischargedKWh, r.ActiveSteps, r.CostEUR)
	return err
}

// Query returns the rows matching f ordered like eco.Sort.
func (s *SQLiteStore) Query(f eco.Filter) ([]eco.Record, error) {
	var (
		where []string
		args  []any
	)
	if f.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, f.RunID)
	}
	if f.Asset != "" {
		where = append(where, "asset = ?")
		args = append(args, f.Asset)
	}
	// ISO dates compare correctly as text.
	if !f.From.IsZero() {
		where = append(where, "day >= ?")
		args = append(args, eco.Day(f.From).Format(dayLayout))
	}
	if !f.To.IsZero() {
		where = append(where, "day <= ?")
		args = append(args, eco.Day(f.To).Format(dayLayout))
	}
	q := `SELECT run_id, asset, day, charged_kwh, discharged_kwh, active_steps, cost_eur
		FROM asset_energy_daily`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY day, run_id, asset"

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []eco.Record
	for rows.Next() {
		var (
			r   eco.Record
			day string
		)
		if err := rows.Scan(&r.RunID, &r.Asset, &day, &r.ChargedKWh, &r.DischargedKWh, &r.ActiveSteps, &r.CostEUR); err != nil {
			return nil, err
		}
		if r.Date, err = time.Parse(dayLayout, day); err != nil {
			return nil, fmt.Errorf("kpi row %s/%s: %w", r.RunID, r.Asset, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
