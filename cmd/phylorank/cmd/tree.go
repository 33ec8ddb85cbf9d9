package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"phylorank/internal/adapters/newick"
	"phylorank/internal/domain"
)

var treeShowLeaves bool

var treeCmd = &cobra.Command{
	Use:   "tree <decorated-tree>",
	Short: "Print the labelled nodes of a decorated tree",
	Long: `Print the taxonomy labels of a decorated tree as an indented outline.

Only labelled nodes are shown unless --leaves is given. Each line carries
the node's relative divergence under the tree's own rooting.

Examples:
  phylorank tree bac.decorated.tree
  phylorank tree bac.decorated.tree --leaves`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := newick.NewCodec().ReadTree(args[0])
		if err != nil {
			return err
		}
		tree.AssignRelativeDivergence()

		printTree(tree.Root, 0)
		return nil
	},
}

func printTree(node *domain.Node, depth int) {
	next := depth
	switch {
	case len(node.Label.Taxa) > 0:
		line := fmt.Sprintf("%s%s  RD=%.3f", strings.Repeat("  ", depth), strings.Join(node.Label.Taxa, "; "), node.RelDist)
		if node.Label.HasSupport() {
			line += "  support=" + strconv.FormatFloat(*node.Label.Support, 'g', -1, 64)
		}
		fmt.Println(line)
		next++
	case node.IsLeaf() && treeShowLeaves:
		fmt.Printf("%s%s\n", strings.Repeat("  ", depth), node.Name)
	}

	for _, child := range node.Children {
		printTree(child, next)
	}
}

func init() {
	treeCmd.Flags().BoolVar(&treeShowLeaves, "leaves", false, "also print leaves")
	rootCmd.AddCommand(treeCmd)
}
