package sqlite

import (
	"database/sql"

	"phylorank/internal/domain"
	"phylorank/internal/ports"
)

// storeTx implements ports.StoreTx
type storeTx struct {
	tx *sql.Tx
}

// Ensure storeTx implements StoreTx
var _ ports.StoreTx = (*storeTx)(nil)

// InsertRun inserts a run and its rank thresholds
func (t *storeTx) InsertRun(run *domain.Run) error {
	skip := 0
	if run.SkipRDRefine {
		skip = 1
	}
	_, err := t.tx.Exec(`
		INSERT INTO runs (id, created_at, input_tree, taxonomy_file, output_tree, skip_rd_refine, max_rd_diff, num_leaves)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.CreatedAt.UnixNano(), run.InputTree, run.TaxonomyFile, run.OutputTree,
		skip, run.MaxRDDiff, run.NumLeaves)
	if err != nil {
		return err
	}

	for _, th := range run.SortedThresholds() {
		if _, err := t.tx.Exec(`
			INSERT INTO thresholds (run_id, rank, rel_dist) VALUES (?, ?, ?)
		`, run.ID, int(th.Rank), th.RelDist); err != nil {
			return err
		}
	}
	return nil
}

// InsertPlacement inserts or replaces the placement of one taxon
func (t *storeTx) InsertPlacement(runID string, p *domain.PlacementStat) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO placements (run_id, taxon, rank, node_id, f_measure, precision, recall, rel_dist, num_candidates)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, p.Taxon, int(p.Rank), p.NodeID, p.FMeasure, p.Precision, p.Recall, p.RelDist, p.NumCandidates)
	return err
}

// InsertLeafTaxonomy inserts or replaces the taxonomy of one leaf
func (t *storeTx) InsertLeafTaxonomy(runID string, lt *domain.LeafTaxonomy) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO leaf_taxonomy (run_id, leaf, taxa)
		VALUES (?, ?, ?)
	`, runID, lt.Leaf, joinTaxa(lt.Taxa))
	return err
}

// Commit commits the transaction
func (t *storeTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *storeTx) Rollback() error {
	return t.tx.Rollback()
}
