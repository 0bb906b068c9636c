//Package store logs sweep runs and their trials to SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nathanhack/eccsweep/benchmarking"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

//RunInfo describes one invocation of the sweep.
type RunInfo struct {
	ID          int64
	StartedAt   time.Time
	Source      string // the block data file
	TypeInfo    string
	ECCInfo     string
	PayloadInfo string
	Seed        int64
	First       int
	Last        int
	Trials      int
	TrialCount  int // trials logged so far
}

//Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while migrating %v: %w", path, err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			source TEXT NOT NULL,
			type_info TEXT NOT NULL,
			ecc_info TEXT NOT NULL,
			payload_info TEXT NOT NULL,
			seed INTEGER NOT NULL,
			first_rate INTEGER NOT NULL,
			last_rate INTEGER NOT NULL,
			trials INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trials (
			run_id INTEGER NOT NULL,
			rate TEXT NOT NULL,
			repetition INTEGER NOT NULL,
			parameter INTEGER NOT NULL,
			decoded INTEGER NOT NULL,
			valid INTEGER NOT NULL,
			percentage REAL NOT NULL,
			flipped_bits INTEGER NOT NULL,
			total_bits INTEGER NOT NULL,
			PRIMARY KEY (run_id, rate, repetition)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trials_rate ON trials(rate);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

//StartRun records a new run and returns its id.
func (s *Store) StartRun(ctx context.Context, info RunInfo) (int64, error) {
	if info.StartedAt.IsZero() {
		info.StartedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, source, type_info, ecc_info, payload_info, seed, first_rate, last_rate, trials)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.StartedAt.Format(time.RFC3339Nano),
		info.Source,
		info.TypeInfo,
		info.ECCInfo,
		info.PayloadInfo,
		info.Seed,
		info.First,
		info.Last,
		info.Trials,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

//InsertTrial logs a single trial of the run.
func (s *Store) InsertTrial(ctx context.Context, runID int64, result benchmarking.TrialResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trials (run_id, rate, repetition, parameter, decoded, valid, percentage, flipped_bits, total_bits)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		result.Rate.String(),
		result.Repetition,
		result.Parameter,
		result.Decoded,
		result.Valid,
		result.Percentage,
		result.FlippedBits,
		result.TotalBits,
	)
	if err != nil {
		return fmt.Errorf("error while logging trial %v of rate %v: %w", result.Repetition, result.Rate, err)
	}
	return nil
}

//Runs lists every run, oldest first, with the number of trials logged for it.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.started_at, r.source, r.type_info, r.ecc_info, r.payload_info, r.seed,
			r.first_rate, r.last_rate, r.trials, COUNT(t.run_id)
		 FROM runs r LEFT JOIN trials t ON t.run_id = r.id
		 GROUP BY r.id
		 ORDER BY r.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		var startedAt string
		if err := rows.Scan(&info.ID, &startedAt, &info.Source, &info.TypeInfo, &info.ECCInfo, &info.PayloadInfo,
			&info.Seed, &info.First, &info.Last, &info.Trials, &info.TrialCount); err != nil {
			return nil, err
		}
		info.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("run %v has a bad start time %q: %w", info.ID, startedAt, err)
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

//Trials returns the logged trials of a run in rate then repetition order.
func (s *Store) Trials(ctx context.Context, runID int64) ([]benchmarking.TrialResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rate, repetition, parameter, decoded, valid, percentage, flipped_bits, total_bits
		 FROM trials WHERE run_id = ?
		 ORDER BY rate, repetition`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []benchmarking.TrialResult
	for rows.Next() {
		var rate string
		var r benchmarking.TrialResult
		if err := rows.Scan(&rate, &r.Repetition, &r.Parameter, &r.Decoded, &r.Valid, &r.Percentage, &r.FlippedBits, &r.TotalBits); err != nil {
			return nil, err
		}
		r.Rate, err = benchmarking.ParseRate(rate)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
