package commands

import (
	"slices"

	"go.uber.org/zap"

	"phylorank/internal/domain"
)

// InferenceFilter selects the taxa trusted to estimate rank divergence
type InferenceFilter struct {
	// Trusted restricts inference to these taxa when non-empty
	Trusted map[string]bool
	// MinChildren drops taxa with fewer named child taxa; species are kept
	MinChildren int
	// MinSupport drops taxa placed on a node with lower support
	MinSupport float64
}

// InferenceTaxa returns the filtered taxa that were placed unambiguously.
// Reads Taxonomy, Placements and Placed.
func (d *Decoration) InferenceTaxa(f InferenceFilter) map[string]bool {
	taxa := make(map[string]bool)
	for _, taxon := range d.Taxonomy.Taxa() {
		taxa[taxon] = true
	}

	if f.MinChildren > 0 {
		for taxon := range taxa {
			if domain.RankOf(taxon) == domain.RankSpecies {
				continue
			}
			if len(d.Taxonomy.Children(taxon)) < f.MinChildren {
				delete(taxa, taxon)
			}
		}
	}

	if f.MinSupport > 0 {
		for taxon := range taxa {
			cands := d.Placements[taxon]
			if len(cands) != 1 {
				continue
			}
			if s := cands[0].Node.Label.Support; s != nil && *s < f.MinSupport {
				delete(taxa, taxon)
			}
		}
	}

	if len(f.Trusted) > 0 {
		for taxon := range taxa {
			if !f.Trusted[taxon] {
				delete(taxa, taxon)
			}
		}
	}

	for taxon := range taxa {
		if !d.Placed[taxon] {
			delete(taxa, taxon)
		}
	}

	d.logger.Info("Selected taxa for inferring rank divergence.", zap.Int("taxa", len(taxa)))
	return taxa
}

// ApplyDivergence sets each node's relative divergence to the median of
// its samples and derives the per-rank thresholds. Nodes without samples
// keep their current value; the root is always 0.
// Writes Node.RelDist and Thresholds.
func (d *Decoration) ApplyDivergence(est *domain.DivergenceEstimate, inference map[string]bool) {
	for _, n := range d.Tree.Preorder() {
		if samples := est.NodeSamples[n.ID]; len(samples) > 0 {
			n.RelDist = median(samples)
		}
	}
	d.Tree.Root.RelDist = 0

	d.Thresholds = RankThresholds(est.LineageDists, inference)
	for _, def := range domain.Ranks {
		if rd, ok := d.Thresholds[def.Rank]; ok {
			d.logger.Info("Median relative divergence.",
				zap.String("rank", def.Name),
				zap.Float64("rd", rd))
		}
	}
}

// RankThresholds computes, for each rank, the median over inference taxa
// of each taxon's median divergence across rootings. Ranks without any
// inference taxon are absent from the result.
func RankThresholds(lineageDists map[string]map[domain.Rank]map[string]float64, inference map[string]bool) map[domain.Rank]float64 {
	perTaxon := make(map[domain.Rank]map[string][]float64)
	for _, byRank := range lineageDists {
		for rank, dists := range byRank {
			for taxon, rd := range dists {
				if !inference[taxon] {
					continue
				}
				if perTaxon[rank] == nil {
					perTaxon[rank] = make(map[string][]float64)
				}
				perTaxon[rank][taxon] = append(perTaxon[rank][taxon], rd)
			}
		}
	}

	thresholds := make(map[domain.Rank]float64)
	for rank, byTaxon := range perTaxon {
		medians := make([]float64, 0, len(byTaxon))
		for _, rds := range byTaxon {
			medians = append(medians, median(rds))
		}
		thresholds[rank] = median(medians)
	}
	return thresholds
}

// median of a non-empty sample; even counts average the middle pair
func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
