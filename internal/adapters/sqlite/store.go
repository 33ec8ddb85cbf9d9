package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"phylorank/internal/adapters/filesystem"
	"phylorank/internal/application"
	"phylorank/internal/domain"
	"phylorank/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Store implements ports.PlacementStore using SQLite
type Store struct {
	db     *sql.DB
	dbPath string
}

// Ensure Store implements PlacementStore
var _ ports.PlacementStore = (*Store)(nil)

// NewStore creates a new SQLite placement store
func NewStore() *Store {
	return &Store{}
}

// Open creates or opens the database at path
func (s *Store) Open(path string) error {
	s.dbPath = filesystem.ExpandPath(path)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", s.dbPath+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	// Performance pragmas + schema in single batch (reduces round-trips)
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -64000;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;
		PRAGMA foreign_keys = ON;

		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			input_tree TEXT NOT NULL,
			taxonomy_file TEXT NOT NULL,
			output_tree TEXT NOT NULL,
			skip_rd_refine INTEGER NOT NULL,
			max_rd_diff REAL NOT NULL,
			num_leaves INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS thresholds (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			rank INTEGER NOT NULL,
			rel_dist REAL NOT NULL,
			PRIMARY KEY (run_id, rank)
		);
		CREATE TABLE IF NOT EXISTS placements (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			taxon TEXT NOT NULL,
			rank INTEGER NOT NULL,
			node_id INTEGER NOT NULL,
			f_measure REAL NOT NULL,
			precision REAL NOT NULL,
			recall REAL NOT NULL,
			rel_dist REAL NOT NULL,
			num_candidates INTEGER NOT NULL,
			PRIMARY KEY (run_id, taxon)
		);
		CREATE TABLE IF NOT EXISTS leaf_taxonomy (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			leaf TEXT NOT NULL,
			taxa TEXT NOT NULL,
			PRIMARY KEY (run_id, leaf)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
		CREATE INDEX IF NOT EXISTS idx_placements_rank ON placements(run_id, rank);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		db.Close()
		return fmt.Errorf("failed to update metadata: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file in use
func (s *Store) Path() string {
	return s.dbPath
}

const runColumns = `id, created_at, input_tree, taxonomy_file, output_tree, skip_rd_refine, max_rd_diff, num_leaves`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.Run, error) {
	var run domain.Run
	var created int64
	var skip int
	if err := row.Scan(&run.ID, &created, &run.InputTree, &run.TaxonomyFile, &run.OutputTree,
		&skip, &run.MaxRDDiff, &run.NumLeaves); err != nil {
		return nil, err
	}
	run.CreatedAt = time.Unix(0, created).UTC()
	run.SkipRDRefine = skip != 0
	return &run, nil
}

// loadThresholds fills in the per-rank thresholds of run
func (s *Store) loadThresholds(run *domain.Run) error {
	rows, err := s.db.Query(`SELECT rank, rel_dist FROM thresholds WHERE run_id = ?`, run.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	run.Thresholds = make(map[domain.Rank]float64)
	for rows.Next() {
		var rank int
		var rd float64
		if err := rows.Scan(&rank, &rd); err != nil {
			return err
		}
		run.Thresholds[domain.Rank(rank)] = rd
	}
	return rows.Err()
}

// ListRuns returns every run, newest first
func (s *Store) ListRuns() ([]domain.Run, error) {
	rows, err := s.db.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		if err := s.loadThresholds(&runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// GetRun retrieves a run by id
func (s *Store) GetRun(runID string) (*domain.Run, error) {
	run, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, application.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadThresholds(run); err != nil {
		return nil, err
	}
	return run, nil
}

// LatestRun retrieves the most recent run
func (s *Store) LatestRun() (*domain.Run, error) {
	run, err := scanRun(s.db.QueryRow(`SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no runs stored: %w", application.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadThresholds(run); err != nil {
		return nil, err
	}
	return run, nil
}

const placementColumns = `taxon, rank, node_id, f_measure, precision, recall, rel_dist, num_candidates`

func scanPlacement(row rowScanner) (*domain.PlacementStat, error) {
	var p domain.PlacementStat
	var rank int
	if err := row.Scan(&p.Taxon, &rank, &p.NodeID, &p.FMeasure, &p.Precision, &p.Recall,
		&p.RelDist, &p.NumCandidates); err != nil {
		return nil, err
	}
	p.Rank = domain.Rank(rank)
	return &p, nil
}

// ListPlacements returns the placements of a run in canonical taxon
// order; RankUnknown selects every rank
func (s *Store) ListPlacements(runID string, rank domain.Rank) ([]domain.PlacementStat, error) {
	query := `SELECT ` + placementColumns + ` FROM placements WHERE run_id = ?`
	args := []any{runID}
	if rank != domain.RankUnknown {
		query += ` AND rank = ?`
		args = append(args, int(rank))
	}
	query += ` ORDER BY rank, taxon`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.PlacementStat
	for rows.Next() {
		p, err := scanPlacement(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, *p)
	}
	return stats, rows.Err()
}

// GetPlacement retrieves the placement of one taxon
func (s *Store) GetPlacement(runID, taxon string) (*domain.PlacementStat, error) {
	p, err := scanPlacement(s.db.QueryRow(`
		SELECT `+placementColumns+`
		FROM placements WHERE run_id = ? AND taxon = ?
	`, runID, taxon))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("taxon %s in run %s: %w", taxon, runID, application.ErrNotFound)
	}
	return p, err
}

// GetLeafTaxonomy retrieves the decorated taxonomy of one leaf
func (s *Store) GetLeafTaxonomy(runID, leaf string) (*domain.LeafTaxonomy, error) {
	var taxa string
	err := s.db.QueryRow(`
		SELECT taxa FROM leaf_taxonomy WHERE run_id = ? AND leaf = ?
	`, runID, leaf).Scan(&taxa)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("leaf %s in run %s: %w", leaf, runID, application.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &domain.LeafTaxonomy{Leaf: leaf, Taxa: splitTaxa(taxa)}, nil
}

// BeginTx starts a new transaction
func (s *Store) BeginTx() (ports.StoreTx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	return &storeTx{tx: tx}, nil
}

const taxaSep = "; "

func joinTaxa(taxa []string) string {
	return strings.Join(taxa, taxaSep)
}

func splitTaxa(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, taxaSep)
}
