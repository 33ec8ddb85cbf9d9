package domain

import "slices"

// Label is the annotation carried by an internal node: an optional support
// value, the taxa placed on the node and free-form auxiliary text.
type Label struct {
	Support *float64
	Taxa    []string
	Aux     string
}

// HasSupport reports whether a support value is present
func (l Label) HasSupport() bool {
	return l.Support != nil
}

// IsEmpty reports whether the label carries nothing at all
func (l Label) IsEmpty() bool {
	return l.Support == nil && len(l.Taxa) == 0 && l.Aux == ""
}

// AppendTaxon adds a taxon after the existing ones
func (l *Label) AppendTaxon(taxon string) {
	l.Taxa = append(l.Taxa, taxon)
}

// MergeTaxon adds a taxon and restores canonical rank order. A taxon
// already on the label is not added twice.
func (l *Label) MergeTaxon(taxon string) {
	if l.HasTaxon(taxon) {
		return
	}
	l.Taxa = append(l.Taxa, taxon)
	SortTaxa(l.Taxa)
}

// HasTaxon reports whether taxon is already on the label
func (l Label) HasTaxon(taxon string) bool {
	return slices.Contains(l.Taxa, taxon)
}

// MostSpecificRank returns the finest rank among the label's taxa,
// or RankUnknown when the label has none.
func (l Label) MostSpecificRank() Rank {
	finest := RankUnknown
	for _, t := range l.Taxa {
		if r := RankOf(t); r > finest {
			finest = r
		}
	}
	return finest
}

// StripTaxa removes taxa and auxiliary text, keeping the support value
func (l *Label) StripTaxa() {
	l.Taxa = nil
	l.Aux = ""
}

// Clone returns a deep copy
func (l Label) Clone() Label {
	c := Label{Aux: l.Aux, Taxa: slices.Clone(l.Taxa)}
	if l.Support != nil {
		s := *l.Support
		c.Support = &s
	}
	return c
}

// SupportValue is a convenience for building labels
func SupportValue(v float64) *float64 {
	return &v
}
