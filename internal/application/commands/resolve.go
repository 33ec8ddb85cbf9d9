package commands

import (
	"math"

	"go.uber.org/zap"

	"phylorank/internal/domain"
)

// Resolve commits every tied taxon to one node, most specific ranks first.
// A candidate that already carries a finer label bounds the scan so a
// coarser taxon is never nested below it. Otherwise the candidate whose
// divergence is closest to the rank threshold (within maxRDDiff) wins, and
// the last candidate is used when none qualifies.
// Reads Thresholds and Node.RelDist; writes Placements and Node.Label.
func (d *Decoration) Resolve(maxRDDiff float64) {
	ambiguous := d.Placements.Ambiguous()
	domain.SortTaxaReverse(ambiguous)

	for _, taxon := range ambiguous {
		cands := d.Placements[taxon]
		rank := domain.RankOf(taxon)
		rd, hasRD := d.Thresholds[rank]

		var chosen *domain.Candidate
		closest := math.Inf(1)
		for i := range cands {
			c := &cands[i]

			if c.Node.Label.MostSpecificRank().MoreSpecificThan(rank) {
				// stop before descending into a more specific lineage
				if chosen == nil {
					chosen = c
				}
				break
			}

			if !hasRD {
				continue
			}
			if diff := math.Abs(rd - c.Node.RelDist); diff <= maxRDDiff && diff < closest {
				closest = diff
				chosen = c
			}
		}

		if chosen == nil {
			chosen = &cands[len(cands)-1]
		}

		d.logger.Debug("Resolved ambiguous taxon.",
			zap.String("taxon", taxon),
			zap.Int("candidates", len(cands)),
			zap.Int("node", chosen.Node.ID),
			zap.Float64("rel_dist", chosen.Node.RelDist))

		chosen.Node.Label.MergeTaxon(taxon)
		d.Placements[taxon] = []domain.Candidate{*chosen}
	}
}
