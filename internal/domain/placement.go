package domain

import (
	"sort"
	"time"
)

// Candidate is a node scored as a placement for a taxon
type Candidate struct {
	Node      *Node
	FMeasure  float64
	Precision float64
	Recall    float64
}

// Placements maps each taxon to its best-scoring candidate nodes, in
// preorder. A single entry means the placement is resolved.
type Placements map[string][]Candidate

// Taxa returns the placed taxa in canonical order
func (p Placements) Taxa() []string {
	taxa := make([]string, 0, len(p))
	for taxon := range p {
		taxa = append(taxa, taxon)
	}
	SortTaxa(taxa)
	return taxa
}

// Ambiguous returns the taxa with more than one candidate, canonical order
func (p Placements) Ambiguous() []string {
	var taxa []string
	for taxon, cands := range p {
		if len(cands) > 1 {
			taxa = append(taxa, taxon)
		}
	}
	SortTaxa(taxa)
	return taxa
}


// PlacementStat is one row of the taxon statistics table
type PlacementStat struct {
	Taxon     string
	Rank      Rank
	NodeID    int
	FMeasure  float64
	Precision float64
	Recall    float64
	RelDist   float64
	// NumCandidates is the number of tied nodes before resolution
	NumCandidates int
}

// LeafTaxonomy is the decorated taxonomy of one extant taxon
type LeafTaxonomy struct {
	Leaf string
	Taxa []string
}

// Run records one decoration run persisted to a placement store
type Run struct {
	ID           string
	CreatedAt    time.Time
	InputTree    string
	TaxonomyFile string
	OutputTree   string
	SkipRDRefine bool
	MaxRDDiff    float64
	NumLeaves    int
	Thresholds   map[Rank]float64
}

// SortedThresholds returns the run's rank thresholds ordered by rank
func (r *Run) SortedThresholds() []RankThreshold {
	result := make([]RankThreshold, 0, len(r.Thresholds))
	for rank, rd := range r.Thresholds {
		result = append(result, RankThreshold{Rank: rank, RelDist: rd})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Rank < result[j].Rank })
	return result
}

// RankThreshold is the expected relative divergence of a rank
type RankThreshold struct {
	Rank    Rank
	RelDist float64
}

// DefaultMaxRDDiff is the tolerance around a rank's expected relative
// divergence within which a tied candidate is acceptable
const DefaultMaxRDDiff = 0.1

// DivergenceEstimate is the output of a relative divergence estimator
type DivergenceEstimate struct {
	// LineageDists[lineage][rank][taxon] is the relative divergence of a
	// taxon when the tree is rooted on lineage
	LineageDists map[string]map[Rank]map[string]float64
	// NodeSamples[nodeID] holds a node's relative divergence over rootings
	NodeSamples map[int][]float64
}
