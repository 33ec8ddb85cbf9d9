package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Rank is a level in the taxonomic hierarchy
type Rank int

const (
	RankUnknown Rank = iota - 1
	RankDomain       // d__
	RankPhylum       // p__
	RankClass        // c__
	RankOrder        // o__
	RankFamily       // f__
	RankGenus        // g__
	RankSpecies      // s__
)

// RankDef describes one rank: its name and the prefix carried by its taxa
type RankDef struct {
	Rank   Rank
	Name   string
	Prefix string
}

// Ranks lists every rank from most general to most specific
var Ranks = []RankDef{
	{RankDomain, "domain", "d__"},
	{RankPhylum, "phylum", "p__"},
	{RankClass, "class", "c__"},
	{RankOrder, "order", "o__"},
	{RankFamily, "family", "f__"},
	{RankGenus, "genus", "g__"},
	{RankSpecies, "species", "s__"},
}

// NumRanks is the number of ranks in a taxonomy record
var NumRanks = len(Ranks)

// prefixLen is the length of every rank prefix ("p__")
const prefixLen = 3

func (r Rank) valid() bool {
	return r >= RankDomain && int(r) < len(Ranks)
}

func (r Rank) String() string {
	if !r.valid() {
		return "unknown"
	}
	return Ranks[r].Name
}

// Prefix returns the taxon prefix for the rank (e.g. "p__")
func (r Rank) Prefix() string {
	if !r.valid() {
		return ""
	}
	return Ranks[r].Prefix
}

// Placeholder returns the value marking a missing classification at this rank.
// It is the bare prefix, e.g. "c__".
func (r Rank) Placeholder() string {
	return r.Prefix()
}

// MoreSpecificThan reports whether r is strictly finer than other
func (r Rank) MoreSpecificThan(other Rank) bool {
	return r > other
}

// Parent returns the next more general rank, or RankUnknown for domain
func (r Rank) Parent() Rank {
	if r <= RankDomain {
		return RankUnknown
	}
	return r - 1
}

// ParseRank resolves a rank name ("phylum") or prefix ("p__" or "p")
func ParseRank(s string) (Rank, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, def := range Ranks {
		if s == def.Name || s == def.Prefix || s+"__" == def.Prefix {
			return def.Rank, nil
		}
	}
	return RankUnknown, fmt.Errorf("unknown rank: %q", s)
}

// RankOf returns the rank of a prefixed taxon name (e.g. "g__Escherichia")
func RankOf(taxon string) Rank {
	if len(taxon) < prefixLen {
		return RankUnknown
	}
	prefix := taxon[:prefixLen]
	for _, def := range Ranks {
		if def.Prefix == prefix {
			return def.Rank
		}
	}
	return RankUnknown
}

// IsPlaceholder reports whether taxon is an empty rank marker such as "g__"
func IsPlaceholder(taxon string) bool {
	return len(taxon) == prefixLen && RankOf(taxon) != RankUnknown
}

// TaxonName strips the rank prefix: "p__Firmicutes" -> "Firmicutes"
func TaxonName(taxon string) string {
	if RankOf(taxon) == RankUnknown {
		return taxon
	}
	return taxon[prefixLen:]
}

// UnclassifiedRecord returns a taxonomy record with every rank missing
func UnclassifiedRecord() []string {
	record := make([]string, len(Ranks))
	for i, def := range Ranks {
		record[i] = def.Rank.Placeholder()
	}
	return record
}

// CompareTaxa orders taxa by rank (general first) then by name
func CompareTaxa(a, b string) int {
	ra, rb := RankOf(a), RankOf(b)
	if ra != rb {
		return int(ra) - int(rb)
	}
	return strings.Compare(a, b)
}

// SortTaxa sorts taxa in canonical order: rank from domain to species,
// then alphabetically within a rank.
func SortTaxa(taxa []string) {
	slices.SortFunc(taxa, CompareTaxa)
}

// SortTaxaReverse sorts taxa from species to domain, reverse alphabetical
// within a rank.
func SortTaxaReverse(taxa []string) {
	slices.SortFunc(taxa, func(a, b string) int {
		return CompareTaxa(b, a)
	})
}
