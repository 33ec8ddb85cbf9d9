package ports

import "phylorank/internal/domain"

// TreeCodec reads and writes trees at the file-format boundary. Internal
// node labels are decoded into domain.Label on read and encoded on write.
type TreeCodec interface {
	ReadTree(path string) (*domain.Tree, error)
	WriteTree(path string, tree *domain.Tree) error
}
