// Package divergence estimates relative divergence over alternative
// rootings of a tree, one per phylum used as outgroup.
package divergence

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"phylorank/internal/application"
	"phylorank/internal/domain"
	"phylorank/internal/ports"
)

// minPhyla is the number of phyla needed to root on each in turn
const minPhyla = 2

// Estimator implements ports.DivergenceEstimator by rooting the tree on
// each inference phylum in turn
type Estimator struct {
	logger  *zap.Logger
	workers int
}

var _ ports.DivergenceEstimator = (*Estimator)(nil)

// Option configures an Estimator
type Option func(*Estimator)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Estimator) {
		e.logger = logger
	}
}

// WithWorkers bounds the number of rootings computed concurrently
func WithWorkers(n int) Option {
	return func(e *Estimator) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEstimator creates a new relative divergence estimator
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{
		logger:  zap.NewNop(),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// rooting holds the result of using one phylum as outgroup
type rooting struct {
	phylum  string
	skipped bool
	dists   map[domain.Rank]map[string]float64
	samples map[int]float64
}

// Estimate roots a copy of the tree on each phylum of the inference set
// and records the divergence of every labeled taxon and every ingroup
// node. The input tree is not modified.
func (e *Estimator) Estimate(ctx context.Context, tree *domain.Tree, inference map[string]bool, taxonomy *domain.Taxonomy) (*domain.DivergenceEstimate, error) {
	var phyla []string
	for _, p := range taxonomy.TaxaAtRank(domain.RankPhylum) {
		if inference[p] {
			phyla = append(phyla, p)
		}
	}
	if len(phyla) < minPhyla {
		return nil, fmt.Errorf("%w: relative divergence needs at least %d phyla in the inference set, found %d (use --skip-rd-refine)",
			application.ErrInvalidInput, minPhyla, len(phyla))
	}

	e.logger.Info("Calculating relative divergence over alternative rootings.",
		zap.Int("phyla", len(phyla)),
		zap.Int("workers", e.workers))

	results := make([]rooting, len(phyla))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, phylum := range phyla {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = rootOn(tree, phylum, taxonomy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	est := &domain.DivergenceEstimate{
		LineageDists: make(map[string]map[domain.Rank]map[string]float64),
		NodeSamples:  make(map[int][]float64),
	}
	for _, r := range results {
		if r.skipped {
			e.logger.Warn("Phylum spans the root on both sides and cannot be used as outgroup.",
				zap.String("phylum", r.phylum))
			continue
		}
		est.LineageDists[r.phylum] = r.dists
		for _, n := range tree.Preorder() {
			if rd, ok := r.samples[n.ID]; ok {
				est.NodeSamples[n.ID] = append(est.NodeSamples[n.ID], rd)
			}
		}
	}

	// nodes never inside an ingroup keep the divergence of the input rooting
	base := tree.Clone()
	base.AssignRelativeDivergence()
	for _, n := range base.Preorder() {
		if _, ok := est.NodeSamples[n.ID]; !ok {
			est.NodeSamples[n.ID] = []float64{n.RelDist}
		}
	}

	return est, nil
}

// rootOn computes divergences with phylum as outgroup on a copy of tree
func rootOn(tree *domain.Tree, phylum string, taxonomy *domain.Taxonomy) rooting {
	r := rooting{
		phylum:  phylum,
		dists:   make(map[domain.Rank]map[string]float64),
		samples: make(map[int]float64),
	}

	clone := tree.Clone()
	byName := clone.LeafByName()
	inPhylum := make(map[string]bool)
	var outgroup, others []*domain.Node
	for _, id := range taxonomy.LeavesForTaxon(phylum) {
		if leaf, ok := byName[id]; ok {
			outgroup = append(outgroup, leaf)
			inPhylum[id] = true
		}
	}
	for _, leaf := range clone.Leaves() {
		if !inPhylum[leaf.Name] {
			others = append(others, leaf)
		}
	}
	if len(outgroup) == 0 || len(others) == 0 {
		r.skipped = true
		return r
	}

	var ingroup *domain.Node
	if mrca := clone.MRCA(outgroup); mrca != clone.Root {
		clone.RerootAbove(mrca)
		for _, c := range clone.Root.Children {
			if c != mrca {
				ingroup = c
			}
		}
	} else if mrca := clone.MRCA(others); mrca != clone.Root {
		clone.RerootAbove(mrca)
		ingroup = mrca
	} else {
		r.skipped = true
		return r
	}

	clone.AssignRelativeDivergence()

	excluded := map[string]bool{phylum: true}
	for _, t := range taxonomy.Descendants(phylum) {
		excluded[t] = true
	}

	for _, n := range ingroup.Preorder() {
		if n.ID >= 0 {
			r.samples[n.ID] = n.RelDist
		}
		for _, taxon := range n.Label.Taxa {
			if excluded[taxon] {
				continue
			}
			rank := domain.RankOf(taxon)
			if rank == domain.RankUnknown {
				continue
			}
			if r.dists[rank] == nil {
				r.dists[rank] = make(map[string]float64)
			}
			r.dists[rank][taxon] = n.RelDist
		}
	}
	return r
}
