package commands

import "phylorank/internal/domain"

// AssignUnambiguous labels the single best node of every taxon that has
// exactly one candidate, in canonical rank-then-name order, and returns
// the set of taxa placed this way.
// Reads Placements; writes Node.Label and Placed.
func (d *Decoration) AssignUnambiguous() map[string]bool {
	placed := make(map[string]bool)
	for _, taxon := range d.Placements.Taxa() {
		cands := d.Placements[taxon]
		if len(cands) != 1 {
			continue
		}
		placed[taxon] = true
		cands[0].Node.Label.AppendTaxon(taxon)
	}
	d.Placed = placed
	return placed
}

// ResolveTerminal collapses every tied taxon to its last (most terminal)
// candidate, then relabels the tree from scratch. It returns the number
// of taxa that were tied.
// Writes Placements, Node.Label and Placed.
func (d *Decoration) ResolveTerminal() int {
	ambiguous := d.Placements.Ambiguous()
	for _, taxon := range ambiguous {
		cands := d.Placements[taxon]
		d.Placements[taxon] = cands[len(cands)-1:]
	}

	StripLabels(d.Tree)
	d.AssignUnambiguous()
	return len(ambiguous)
}

// StripLabels removes taxa and auxiliary text from every node, keeping
// support values. Leaves can carry taxa too when a taxon is best matched
// by a single extant genome.
func StripLabels(tree *domain.Tree) {
	for _, n := range tree.Preorder() {
		n.Label.StripTaxa()
	}
}
