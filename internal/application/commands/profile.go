package commands

import "phylorank/internal/domain"

// Profile annotates every node with its leaf count and per-rank taxon
// counts, accumulating from the leaves up in a single postorder pass.
// Reads Tree and Taxonomy; writes Node.Profile.
func (d *Decoration) Profile() {
	for _, n := range d.Tree.Postorder() {
		p := newProfile()

		if n.IsLeaf() {
			p.NumLeaves = 1
			for i, taxon := range d.Taxonomy.Record(n.Name) {
				if domain.IsPlaceholder(taxon) {
					continue
				}
				p.TaxaCount[i][taxon]++
				p.RankTotal[i]++
			}
		} else {
			for _, c := range n.Children {
				p.NumLeaves += c.Profile.NumLeaves
				for i, counts := range c.Profile.TaxaCount {
					for taxon, count := range counts {
						p.TaxaCount[i][taxon] += count
					}
					p.RankTotal[i] += c.Profile.RankTotal[i]
				}
			}
		}

		n.Profile = p
	}
}

func newProfile() domain.Profile {
	p := domain.Profile{
		TaxaCount: make([]map[string]int, domain.NumRanks),
		RankTotal: make([]int, domain.NumRanks),
	}
	for i := range p.TaxaCount {
		p.TaxaCount[i] = make(map[string]int)
	}
	return p
}
