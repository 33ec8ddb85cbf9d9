package commands

import (
	"go.uber.org/zap"

	"phylorank/internal/domain"
)

// minLineageFraction is the share of a taxon's leaves that must fall below
// the parent-derived search root; otherwise the whole tree is searched.
const minLineageFraction = 0.5

// Search finds, for every taxon, the node(s) with the highest F-measure.
// Ranks are processed from domain to species because a taxon's search
// region is bounded by where its parent taxon was placed.
// Reads Node.Profile and Taxonomy; writes Placements and TieCounts.
func (d *Decoration) Search() {
	d.Placements = make(domain.Placements)
	d.TieCounts = make(map[string]int)

	for _, def := range domain.Ranks {
		taxa := d.Taxonomy.TaxaAtRank(def.Rank)
		d.logger.Info("Processing taxa at rank.",
			zap.Int("taxa", len(taxa)),
			zap.String("rank", def.Name))

		for _, taxon := range taxa {
			root, ok := d.SearchRoot(def.Rank, taxon)
			if !ok {
				// parent taxon was never placed (e.g. a lineage absent from this tree)
				d.logger.Debug("Skipping taxon with unplaced parent.", zap.String("taxon", taxon))
				continue
			}

			if cands := d.bestNodes(root, def.Rank, taxon); len(cands) > 0 {
				d.Placements[taxon] = cands
				d.TieCounts[taxon] = len(cands)
			}
		}
	}
}

// SearchRoot returns the root of the subtree searched for taxon, and false
// when the taxon must be skipped because its parent has no placement.
func (d *Decoration) SearchRoot(rank domain.Rank, taxon string) (*domain.Node, bool) {
	if rank == domain.RankDomain {
		return d.Tree.Root, true
	}

	parent := d.Taxonomy.ParentTaxon(taxon)
	cands := d.Placements[parent]
	if len(cands) == 0 {
		return nil, false
	}

	var root *domain.Node
	if len(cands) == 1 {
		root = cands[0].Node
	} else {
		var leaves []*domain.Node
		for _, c := range cands {
			leaves = append(leaves, c.Node.Leaves()...)
		}
		root = d.Tree.MRCA(leaves)
	}

	total := d.Tree.Root.Profile.Count(rank, taxon)
	if float64(root.Profile.Count(rank, taxon)) < minLineageFraction*float64(total) {
		// a substantial portion of the taxon lies outside the parent lineage
		root = d.Tree.Root
	}
	return root, true
}

// bestNodes scores every node below root in preorder and keeps those tied
// at the maximum F-measure.
func (d *Decoration) bestNodes(root *domain.Node, rank domain.Rank, taxon string) []domain.Candidate {
	total := d.Tree.Root.Profile.Count(rank, taxon)

	var best []domain.Candidate
	bestF := -1.0
	for _, n := range root.Preorder() {
		c, ok := Score(n, rank, taxon, total)
		if !ok {
			continue
		}

		if c.FMeasure > bestF {
			bestF = c.FMeasure
			best = []domain.Candidate{c}
		} else if c.FMeasure == bestF {
			best = append(best, c)
		}
	}
	return best
}

// Score computes precision, recall and F-measure of node n for taxon.
// total is the number of leaves assigned to taxon in the whole tree.
// It reports false when the node carries no evidence for the taxon.
func Score(n *domain.Node, rank domain.Rank, taxon string, total int) (domain.Candidate, bool) {
	inLineage := n.Profile.Count(rank, taxon)
	withRank := n.Profile.Total(rank)
	if inLineage == 0 || withRank == 0 || total == 0 {
		return domain.Candidate{}, false
	}

	precision := float64(inLineage) / float64(withRank)
	recall := float64(inLineage) / float64(total)
	return domain.Candidate{
		Node:      n,
		FMeasure:  (2 * precision * recall) / (precision + recall),
		Precision: precision,
		Recall:    recall,
	}, true
}
