package newick

import (
	"fmt"
	"os"

	"phylorank/internal/domain"
	"phylorank/internal/ports"
)

// Codec reads and writes Newick tree files
type Codec struct{}

var _ ports.TreeCodec = (*Codec)(nil)

// NewCodec creates a Newick file codec
func NewCodec() *Codec {
	return &Codec{}
}

// ReadTree parses the first tree in the file at path
func (c *Codec) ReadTree(path string) (*domain.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tree, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return tree, nil
}

// WriteTree writes tree to path, replacing any existing file
func (c *Codec) WriteTree(path string, tree *domain.Tree) error {
	return os.WriteFile(path, []byte(Format(tree)), 0644)
}
