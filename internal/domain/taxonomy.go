package domain

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Taxonomy maps extant taxon identifiers (leaf names) to their taxonomy
// record, and indexes the derived views used by the decoration pipeline.
type Taxonomy struct {
	records map[string][]string

	ids          []string            // sorted extant ids
	taxaAtRank   [][]string          // rank -> sorted named taxa
	extant       map[string][]string // taxon -> sorted extant ids
	parent       map[string]string   // taxon -> immediate parent (may be a placeholder)
	parents      map[string]map[string]bool
	children     map[string]map[string]bool // taxon -> named immediate children
	taxonRecords map[string][]string        // taxon -> a record naming it
}

// NewTaxonomy builds an index over records. Records shorter than the rank
// table are padded with placeholders.
func NewTaxonomy(records map[string][]string) *Taxonomy {
	t := &Taxonomy{records: make(map[string][]string, len(records))}
	for id, rec := range records {
		t.records[id] = normalizeRecord(rec)
	}
	t.index()
	return t
}

func normalizeRecord(rec []string) []string {
	out := UnclassifiedRecord()
	for i := 0; i < len(rec) && i < len(out); i++ {
		taxon := strings.TrimSpace(rec[i])
		if RankOf(taxon) == Rank(i) {
			out[i] = taxon
		}
	}
	return out
}

func (t *Taxonomy) index() {
	t.ids = make([]string, 0, len(t.records))
	for id := range t.records {
		t.ids = append(t.ids, id)
	}
	sort.Strings(t.ids)

	t.taxaAtRank = make([][]string, len(Ranks))
	t.extant = make(map[string][]string)
	t.parent = make(map[string]string)
	t.parents = make(map[string]map[string]bool)
	t.children = make(map[string]map[string]bool)
	t.taxonRecords = make(map[string][]string)

	for _, id := range t.ids {
		rec := t.records[id]
		for i, taxon := range rec {
			if IsPlaceholder(taxon) {
				continue
			}
			if _, seen := t.extant[taxon]; !seen {
				t.taxaAtRank[i] = append(t.taxaAtRank[i], taxon)
				t.taxonRecords[taxon] = rec
			}
			t.extant[taxon] = append(t.extant[taxon], id)

			if i == 0 {
				continue
			}
			p := rec[i-1]
			// the first record seen (in id order) defines the parent
			if _, ok := t.parent[taxon]; !ok {
				t.parent[taxon] = p
			}
			if t.parents[taxon] == nil {
				t.parents[taxon] = make(map[string]bool)
			}
			t.parents[taxon][p] = true
			if !IsPlaceholder(p) {
				if t.children[p] == nil {
					t.children[p] = make(map[string]bool)
				}
				t.children[p][taxon] = true
			}
		}
	}

	for i := range t.taxaAtRank {
		sort.Strings(t.taxaAtRank[i])
	}
}

// Record returns the record for id, or the fully unclassified record
// when id has no entry.
func (t *Taxonomy) Record(id string) []string {
	if rec, ok := t.records[id]; ok {
		return rec
	}
	return UnclassifiedRecord()
}

// Has reports whether id has an explicit record
func (t *Taxonomy) Has(id string) bool {
	_, ok := t.records[id]
	return ok
}

// IDs returns every extant id in sorted order
func (t *Taxonomy) IDs() []string {
	return t.ids
}

// Restrict returns a taxonomy holding exactly the given ids. Ids without a
// record get the fully unclassified record.
func (t *Taxonomy) Restrict(ids []string) *Taxonomy {
	records := make(map[string][]string, len(ids))
	for _, id := range ids {
		records[id] = t.Record(id)
	}
	return NewTaxonomy(records)
}

// TaxaAtRank returns the named taxa at rank, sorted
func (t *Taxonomy) TaxaAtRank(rank Rank) []string {
	if !rank.valid() {
		return nil
	}
	return t.taxaAtRank[rank]
}

// Taxa returns every named taxon in canonical order
func (t *Taxonomy) Taxa() []string {
	var all []string
	for _, taxa := range t.taxaAtRank {
		all = append(all, taxa...)
	}
	return all
}

// LeavesForTaxon returns the sorted extant ids assigned to taxon
func (t *Taxonomy) LeavesForTaxon(taxon string) []string {
	return t.extant[taxon]
}

// LeafCount returns the number of extant ids assigned to taxon
func (t *Taxonomy) LeafCount(taxon string) int {
	return len(t.extant[taxon])
}

// ParentTaxon returns the taxon one rank above taxon. The result may be a
// placeholder when the parent rank is unclassified, and is empty for
// domains and unknown taxa.
func (t *Taxonomy) ParentTaxon(taxon string) string {
	return t.parent[taxon]
}

// Children returns the named taxa one rank below taxon, sorted
func (t *Taxonomy) Children(taxon string) []string {
	var children []string
	for c := range t.children[taxon] {
		children = append(children, c)
	}
	sort.Strings(children)
	return children
}

// Descendants returns every named taxon below taxon in canonical order
func (t *Taxonomy) Descendants(taxon string) []string {
	var result []string
	queue := t.Children(taxon)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		result = append(result, cur)
		queue = append(queue, t.Children(cur)...)
	}
	SortTaxa(result)
	return result
}

// Lineage returns the named taxa above and including taxon, general first
func (t *Taxonomy) Lineage(taxon string) []string {
	rec, ok := t.taxonRecords[taxon]
	if !ok {
		return nil
	}
	rank := RankOf(taxon)
	var lineage []string
	for i := 0; i <= int(rank); i++ {
		if !IsPlaceholder(rec[i]) {
			lineage = append(lineage, rec[i])
		}
	}
	return lineage
}

// Inconsistency describes a taxon assigned to more than one parent taxon
type Inconsistency struct {
	Taxon   string
	Parents []string
}

func (i Inconsistency) String() string {
	return fmt.Sprintf("%s has multiple parents: %s", i.Taxon, strings.Join(i.Parents, ", "))
}

// Inconsistencies lists taxa whose records disagree about their parent
func (t *Taxonomy) Inconsistencies() []Inconsistency {
	var result []Inconsistency
	for _, taxon := range t.Taxa() {
		ps := t.parents[taxon]
		if len(ps) < 2 {
			continue
		}
		parents := make([]string, 0, len(ps))
		for p := range ps {
			parents = append(parents, p)
		}
		slices.Sort(parents)
		result = append(result, Inconsistency{Taxon: taxon, Parents: parents})
	}
	return result
}
