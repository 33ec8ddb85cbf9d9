package commands

import (
	"context"
	"fmt"

	"phylorank/internal/application"
	"phylorank/internal/domain"
	"phylorank/internal/ports"
)

// SaveRunResult contains the result of persisting a run
type SaveRunResult struct {
	RunID      string
	Placements int
	Leaves     int
}

// SaveRunCommand writes a run with its placements and extant taxonomy in
// a single transaction
type SaveRunCommand struct {
	store      ports.PlacementStore
	Run        *domain.Run
	Placements []domain.PlacementStat
	Extant     []domain.LeafTaxonomy
}

// NewSaveRunCommand creates a new SaveRunCommand
func NewSaveRunCommand(store ports.PlacementStore, run *domain.Run, stats []domain.PlacementStat, extant []domain.LeafTaxonomy) *SaveRunCommand {
	return &SaveRunCommand{
		store:      store,
		Run:        run,
		Placements: stats,
		Extant:     extant,
	}
}

// Validate checks the run can be stored
func (c *SaveRunCommand) Validate() error {
	if c.Run == nil {
		return &application.ValidationError{Field: "run", Message: "run is required"}
	}
	return application.ValidateRequired("runID", c.Run.ID)
}

// Execute runs the save command
func (c *SaveRunCommand) Execute(ctx context.Context) (*SaveRunResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	tx, err := c.store.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.InsertRun(c.Run); err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}
	for i := range c.Placements {
		if err := tx.InsertPlacement(c.Run.ID, &c.Placements[i]); err != nil {
			return nil, fmt.Errorf("failed to save placement %s: %w", c.Placements[i].Taxon, err)
		}
	}
	for i := range c.Extant {
		if err := tx.InsertLeafTaxonomy(c.Run.ID, &c.Extant[i]); err != nil {
			return nil, fmt.Errorf("failed to save taxonomy of %s: %w", c.Extant[i].Leaf, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}

	return &SaveRunResult{
		RunID:      c.Run.ID,
		Placements: len(c.Placements),
		Leaves:     len(c.Extant),
	}, nil
}

// ListRunsCommand lists stored runs, newest first
type ListRunsCommand struct {
	store ports.PlacementStore
}

// NewListRunsCommand creates a new ListRunsCommand
func NewListRunsCommand(store ports.PlacementStore) *ListRunsCommand {
	return &ListRunsCommand{store: store}
}

// Execute runs the list runs command
func (c *ListRunsCommand) Execute(ctx context.Context) ([]domain.Run, error) {
	return c.store.ListRuns()
}

// resolveRun returns the requested run, or the latest one when runID is empty
func resolveRun(store ports.PlacementStore, runID string) (*domain.Run, error) {
	if runID == "" {
		return store.LatestRun()
	}
	return store.GetRun(runID)
}

// PlacementsResult contains the placements of one run
type PlacementsResult struct {
	Run        *domain.Run
	Placements []domain.PlacementStat
}

// ListPlacementsCommand lists the placements of a run, optionally for one rank
type ListPlacementsCommand struct {
	store ports.PlacementStore
	RunID string
	Rank  domain.Rank
}

// NewListPlacementsCommand creates a new ListPlacementsCommand.
// An empty runID selects the latest run; RankUnknown selects every rank.
func NewListPlacementsCommand(store ports.PlacementStore, runID string, rank domain.Rank) *ListPlacementsCommand {
	return &ListPlacementsCommand{
		store: store,
		RunID: runID,
		Rank:  rank,
	}
}

// Execute runs the list placements command
func (c *ListPlacementsCommand) Execute(ctx context.Context) (*PlacementsResult, error) {
	run, err := resolveRun(c.store, c.RunID)
	if err != nil {
		return nil, err
	}

	stats, err := c.store.ListPlacements(run.ID, c.Rank)
	if err != nil {
		return nil, fmt.Errorf("failed to list placements: %w", err)
	}
	return &PlacementsResult{Run: run, Placements: stats}, nil
}

// GetPlacementCommand looks up where one taxon was placed
type GetPlacementCommand struct {
	store ports.PlacementStore
	RunID string
	Taxon string
}

// NewGetPlacementCommand creates a new GetPlacementCommand
func NewGetPlacementCommand(store ports.PlacementStore, runID, taxon string) *GetPlacementCommand {
	return &GetPlacementCommand{
		store: store,
		RunID: runID,
		Taxon: taxon,
	}
}

// Validate checks the taxon is well formed
func (c *GetPlacementCommand) Validate() error {
	if err := application.ValidateRequired("taxon", c.Taxon); err != nil {
		return err
	}
	if domain.RankOf(c.Taxon) == domain.RankUnknown {
		return &application.ValidationError{
			Field:   "taxon",
			Message: fmt.Sprintf("expected a rank prefix such as p__, got: %s", c.Taxon),
		}
	}
	return nil
}

// Execute runs the get placement command
func (c *GetPlacementCommand) Execute(ctx context.Context) (*domain.PlacementStat, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	run, err := resolveRun(c.store, c.RunID)
	if err != nil {
		return nil, err
	}
	return c.store.GetPlacement(run.ID, c.Taxon)
}

// LeafTaxonomyCommand returns the decorated taxonomy of one extant taxon
type LeafTaxonomyCommand struct {
	store ports.PlacementStore
	RunID string
	Leaf  string
}

// NewLeafTaxonomyCommand creates a new LeafTaxonomyCommand
func NewLeafTaxonomyCommand(store ports.PlacementStore, runID, leaf string) *LeafTaxonomyCommand {
	return &LeafTaxonomyCommand{
		store: store,
		RunID: runID,
		Leaf:  leaf,
	}
}

// Execute runs the leaf taxonomy command
func (c *LeafTaxonomyCommand) Execute(ctx context.Context) (*domain.LeafTaxonomy, error) {
	if err := application.ValidateRequired("leaf", c.Leaf); err != nil {
		return nil, err
	}

	run, err := resolveRun(c.store, c.RunID)
	if err != nil {
		return nil, err
	}
	return c.store.GetLeafTaxonomy(run.ID, c.Leaf)
}
