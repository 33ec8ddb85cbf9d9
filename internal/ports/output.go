package ports

import "phylorank/internal/domain"

// OutputWriter writes the human-readable decoration reports
type OutputWriter interface {
	WriteStatistics(path string, stats []domain.PlacementStat) error
	WriteTaxonomy(path string, taxonomy []domain.LeafTaxonomy) error
}
