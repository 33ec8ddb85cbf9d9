package commands

import (
	"slices"

	"phylorank/internal/application"
	"phylorank/internal/domain"
)

// Statistics returns one row per placed taxon in canonical order. Every
// taxon must have exactly one placement by now; anything else is a defect
// in the pipeline and is reported as an InvariantError.
func (d *Decoration) Statistics() ([]domain.PlacementStat, error) {
	taxa := d.Placements.Taxa()
	stats := make([]domain.PlacementStat, 0, len(taxa))
	for _, taxon := range taxa {
		cands := d.Placements[taxon]
		if len(cands) != 1 {
			return nil, &application.InvariantError{Taxon: taxon, Candidates: len(cands)}
		}

		c := cands[0]
		stats = append(stats, domain.PlacementStat{
			Taxon:         taxon,
			Rank:          domain.RankOf(taxon),
			NodeID:        c.Node.ID,
			FMeasure:      c.FMeasure,
			Precision:     c.Precision,
			Recall:        c.Recall,
			RelDist:       c.Node.RelDist,
			NumCandidates: d.TieCounts[taxon],
		})
	}
	return stats, nil
}

// ExtantTaxonomy returns the decorated taxonomy of every leaf in tree order
func (d *Decoration) ExtantTaxonomy(fillGaps bool) []domain.LeafTaxonomy {
	leaves := d.Tree.Leaves()
	result := make([]domain.LeafTaxonomy, 0, len(leaves))
	for _, leaf := range leaves {
		result = append(result, domain.LeafTaxonomy{
			Leaf: leaf.Name,
			Taxa: LeafTaxa(leaf, fillGaps),
		})
	}
	return result
}

// LeafTaxa collects the taxa labeling the path from leaf to root, general
// first. Ranks missing after the most specific taxon are padded with
// placeholders. With fillGaps, ranks missing inside the path are filled
// too, naming the closest taxon above the gap.
func LeafTaxa(leaf *domain.Node, fillGaps bool) []string {
	var taxa []string
	for n := leaf; n != nil; n = n.Parent {
		for _, t := range slices.Backward(n.Label.Taxa) {
			taxa = append(taxa, t)
		}
	}
	slices.Reverse(taxa)

	if fillGaps {
		return FillRankGaps(taxa)
	}

	// ranks can be missing inside the path; pad below the deepest one
	next := domain.RankDomain
	if len(taxa) > 0 {
		next = domain.RankOf(taxa[len(taxa)-1]) + 1
	}
	for r := next; int(r) < domain.NumRanks; r++ {
		taxa = append(taxa, r.Placeholder())
	}
	return taxa
}

// FillRankGaps lays taxa out one per rank. A rank with no taxon but a
// named taxon below it becomes "<prefix>{unclassified <ancestor name>}"; ranks
// below the most specific taxon become bare placeholders.
func FillRankGaps(taxa []string) []string {
	record := make([]string, domain.NumRanks)
	deepest := domain.RankUnknown
	for _, t := range taxa {
		r := domain.RankOf(t)
		if r == domain.RankUnknown || record[r] != "" {
			continue
		}
		record[r] = t
		if r > deepest {
			deepest = r
		}
	}

	ancestor := ""
	for i, def := range domain.Ranks {
		switch {
		case record[i] != "":
			ancestor = domain.TaxonName(record[i])
		case def.Rank < deepest && ancestor != "":
			record[i] = def.Prefix + "{unclassified " + ancestor + "}"
		default:
			record[i] = def.Rank.Placeholder()
		}
	}
	return record
}
