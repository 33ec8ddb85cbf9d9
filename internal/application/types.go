package application

import "phylorank/internal/domain"

// Re-export rank types for use by adapters
type Rank = domain.Rank

const (
	RankUnknown = domain.RankUnknown
	RankDomain  = domain.RankDomain
	RankPhylum  = domain.RankPhylum
	RankClass   = domain.RankClass
	RankOrder   = domain.RankOrder
	RankFamily  = domain.RankFamily
	RankGenus   = domain.RankGenus
	RankSpecies = domain.RankSpecies
)

// Re-export domain types for use by adapters
type (
	Tree          = domain.Tree
	Node          = domain.Node
	Taxonomy      = domain.Taxonomy
	Run           = domain.Run
	PlacementStat = domain.PlacementStat
	LeafTaxonomy  = domain.LeafTaxonomy
)

// ParseRank resolves a rank name or prefix
func ParseRank(s string) (Rank, error) {
	return domain.ParseRank(s)
}

// ParseRankFilter resolves an optional rank flag; empty means every rank
func ParseRankFilter(s string) (Rank, error) {
	if s == "" {
		return RankUnknown, nil
	}
	r, err := domain.ParseRank(s)
	if err != nil {
		return RankUnknown, &ValidationError{Field: "rank", Message: err.Error()}
	}
	return r, nil
}
