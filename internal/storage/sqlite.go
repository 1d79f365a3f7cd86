package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/san-kum/rdwsim/internal/stats"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS experiment_results (
		run_id     TEXT NOT NULL,
		idx        INTEGER NOT NULL,
		experiment TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      REAL,
		PRIMARY KEY (run_id, idx, key)
	);
	CREATE INDEX IF NOT EXISTS experiment_results_run ON experiment_results (run_id);
`

// ResultsDB stores summary metrics in long format, one row per
// (run, experiment, metric). Vector metrics become two rows suffixed .x
// and .z; missing metrics are NULL.
type ResultsDB struct {
	db *sql.DB
}

func OpenResultsDB(path string) (*ResultsDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	_, _ = db.Exec("PRAGMA busy_timeout = 5000;")
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &ResultsDB{db: db}, nil
}

func (d *ResultsDB) Close() error { return d.db.Close() }

// Row is one stored metric.
type Row struct {
	Index      int
	Experiment string
	Key        string
	Value      sql.NullFloat64
}

func (d *ResultsDB) Insert(ctx context.Context, runID string, results []stats.Result) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO experiment_results (run_id, idx, experiment, key, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range results {
		exp := ExperimentKey(r.Descriptor)
		for _, key := range stats.SummaryKeys {
			for _, row := range metricRows(key, r.Metrics[key]) {
				if _, err := stmt.ExecContext(ctx, runID, i, exp, row.Key, row.Value); err != nil {
					return fmt.Errorf("insert %s/%s: %w", exp, row.Key, err)
				}
			}
		}
	}
	return tx.Commit()
}

func metricRows(key string, v stats.Value) []Row {
	switch v.Kind {
	case stats.Scalar:
		return []Row{{Key: key, Value: sql.NullFloat64{Float64: v.Scalar, Valid: true}}}
	case stats.Vector:
		return []Row{
			{Key: key + ".x", Value: sql.NullFloat64{Float64: v.Vec.X(), Valid: true}},
			{Key: key + ".z", Value: sql.NullFloat64{Float64: v.Vec.Y(), Valid: true}},
		}
	default:
		return []Row{{Key: key}}
	}
}

// Query returns every row of runID ordered by experiment index and key.
func (d *ResultsDB) Query(ctx context.Context, runID string) ([]Row, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT idx, experiment, key, value FROM experiment_results WHERE run_id = ? ORDER BY idx, key`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Index, &r.Experiment, &r.Key, &r.Value); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Runs lists the run ids present in the database.
func (d *ResultsDB) Runs(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT DISTINCT run_id FROM experiment_results ORDER BY run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
