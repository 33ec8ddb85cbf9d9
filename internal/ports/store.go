package ports

import "phylorank/internal/domain"

// PlacementStore persists decoration runs for later queries.
type PlacementStore interface {
	// Lifecycle
	Open(path string) error
	Close() error

	// Run queries
	ListRuns() ([]domain.Run, error)
	GetRun(runID string) (*domain.Run, error)
	LatestRun() (*domain.Run, error)

	// Placement queries; rank RankUnknown lists every rank
	ListPlacements(runID string, rank domain.Rank) ([]domain.PlacementStat, error)
	GetPlacement(runID, taxon string) (*domain.PlacementStat, error)
	GetLeafTaxonomy(runID, leaf string) (*domain.LeafTaxonomy, error)

	// Batch writes
	BeginTx() (StoreTx, error)
}

// StoreTx represents a transaction writing one run atomically
type StoreTx interface {
	InsertRun(run *domain.Run) error
	InsertPlacement(runID string, stat *domain.PlacementStat) error
	InsertLeafTaxonomy(runID string, lt *domain.LeafTaxonomy) error

	Commit() error
	Rollback() error
}
