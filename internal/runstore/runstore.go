// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runstore archives completed research runs in a SQLite database.
// The headline columns make listing cheap; the full state rides along as a
// YAML blob so a report can be recompiled from any archived run.
package runstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/market-engine/pkg/types"
)

const dbFile = "runs.db"

// Summary is one archived run's headline row.
type Summary struct {
	RunID        string
	Idea         string
	TargetRegion string
	CreatedAt    time.Time
	Verified     bool
	Viable       bool
	LTVCACRatio  float64
	ReportPath   string
}

// Store manages the run archive database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the archive at dataDir/runs.db, creating the
// schema if needed.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			idea TEXT NOT NULL,
			target_region TEXT,
			created_at TEXT NOT NULL,
			verified INTEGER NOT NULL,
			viable INTEGER NOT NULL,
			ltv_cac_ratio REAL,
			report_path TEXT,
			state BLOB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save archives one run, replacing any previous archive of the same run ID.
func (s *Store) Save(ctx context.Context, st *types.MarketState) error {
	blob, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling run state: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, idea, target_region, created_at, verified, viable, ltv_cac_ratio, report_path, state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET
			idea=excluded.idea, target_region=excluded.target_region,
			created_at=excluded.created_at, verified=excluded.verified,
			viable=excluded.viable, ltv_cac_ratio=excluded.ltv_cac_ratio,
			report_path=excluded.report_path, state=excluded.state`,
		st.RunID, st.RawIdea, st.TargetRegion,
		st.CreatedAt.UTC().Format(time.RFC3339Nano),
		boolInt(st.Verified), boolInt(st.FinanciallyViable),
		finiteOrNull(st.RevenueModel.LTVCACRatio), st.FinalReportPath, blob,
	)
	if err != nil {
		return fmt.Errorf("archiving run %s: %w", st.RunID, err)
	}
	return nil
}

// List returns run summaries, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, idea, target_region, created_at, verified, viable,
			COALESCE(ltv_cac_ratio, 0), COALESCE(report_path, '')
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		var createdAt string
		var verified, viable int
		if err := rows.Scan(&sum.RunID, &sum.Idea, &sum.TargetRegion, &createdAt,
			&verified, &viable, &sum.LTVCACRatio, &sum.ReportPath); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		sum.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		sum.Verified = verified != 0
		sum.Viable = viable != 0
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Get returns the full archived state of one run.
func (s *Store) Get(ctx context.Context, runID string) (*types.MarketState, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM runs WHERE run_id = ?`, runID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", runID, err)
	}

	var st types.MarketState
	if err := yaml.Unmarshal(blob, &st); err != nil {
		return nil, fmt.Errorf("parsing archived state for %s: %w", runID, err)
	}
	return &st, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// finiteOrNull maps an infinite or NaN ratio to NULL; SQLite REAL has no Inf.
func finiteOrNull(v float64) any {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return v
}
