package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"phylorank/internal/application"
	"phylorank/internal/domain"
	"phylorank/internal/ports"
)

// Decoration carries the state shared by the decoration stages. Each stage
// documents which fields it reads and which it mutates.
type Decoration struct {
	Tree     *domain.Tree
	Taxonomy *domain.Taxonomy

	// Placements is built by Search, then narrowed by assignment and resolution
	Placements domain.Placements
	// TieCounts records the number of tied candidates per taxon after Search
	TieCounts map[string]int
	// Placed is the set of taxa committed by AssignUnambiguous
	Placed map[string]bool
	// Thresholds is the expected relative divergence of each rank
	Thresholds map[domain.Rank]float64

	logger *zap.Logger
}

// NewDecoration creates the shared state for decorating tree with taxonomy.
// The taxonomy should already be restricted to the leaves of the tree.
func NewDecoration(tree *domain.Tree, taxonomy *domain.Taxonomy, logger *zap.Logger) *Decoration {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoration{
		Tree:       tree,
		Taxonomy:   taxonomy,
		Placements: make(domain.Placements),
		TieCounts:  make(map[string]int),
		Placed:     make(map[string]bool),
		Thresholds: make(map[domain.Rank]float64),
		logger:     logger,
	}
}

// RefineOptions controls how tied placements are resolved
type RefineOptions struct {
	Filter       InferenceFilter
	MaxRDDiff    float64
	SkipRDRefine bool
}

// Decorate runs every stage in order: profile, search, unambiguous
// assignment, then either relative divergence refinement or terminal
// placement of the remaining ties.
func (d *Decoration) Decorate(ctx context.Context, estimator ports.DivergenceEstimator, opts RefineOptions) error {
	d.logger.Info("Calculating taxa within each lineage.")
	d.Profile()

	d.logger.Info("Calculating F-measure statistic for each taxa.")
	d.Search()

	d.logger.Info("Placing labels with unambiguous position in tree.")
	d.AssignUnambiguous()

	if opts.SkipRDRefine {
		if n := d.ResolveTerminal(); n > 0 {
			d.logger.Warn("Taxa with multiple placements of equal quality were placed at a terminal position.",
				zap.Int("taxa", n))
		}
		return nil
	}

	if estimator == nil {
		return fmt.Errorf("%w: no divergence estimator for refinement", application.ErrInvalidInput)
	}

	d.logger.Info("Establishing median relative divergence for taxonomic ranks.")
	inference := d.InferenceTaxa(opts.Filter)
	estimate, err := estimator.Estimate(ctx, d.Tree, inference, d.Taxonomy)
	if err != nil {
		return err
	}
	d.ApplyDivergence(estimate, inference)

	d.logger.Info("Resolving ambiguous taxon label placements using median relative divergences.",
		zap.Int("ambiguous", len(d.Placements.Ambiguous())))
	d.Resolve(opts.MaxRDDiff)
	return nil
}
