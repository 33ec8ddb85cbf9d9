package ports

// TaxonomyReader loads taxonomy files
type TaxonomyReader interface {
	// ReadTaxonomy returns extant id -> ordered taxa (domain to species).
	// Malformed entries are returned in malformed and left out of records.
	ReadTaxonomy(path string) (records map[string][]string, malformed []string, err error)

	// ReadTaxa returns the taxa listed one per line (first column)
	ReadTaxa(path string) (map[string]bool, error)
}
