package ports

import (
	"context"

	"phylorank/internal/domain"
)

// DivergenceEstimator computes relative divergence over alternative rootings.
// The tree must not be modified; labels placed so far identify named clades.
type DivergenceEstimator interface {
	Estimate(
		ctx context.Context,
		tree *domain.Tree,
		inferenceTaxa map[string]bool,
		taxonomy *domain.Taxonomy,
	) (*domain.DivergenceEstimate, error)
}
