package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"phylorank/internal/application/commands"
)

var lineageRun string

var lineageCmd = &cobra.Command{
	Use:   "lineage <leaf>",
	Short: "Show the taxonomy a leaf inherits from a decorated tree",
	Long: `Show the taxonomy recorded for a leaf in a stored run.

Example:
  phylorank lineage GCF_000005845.2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		lt, err := commands.NewLeafTaxonomyCommand(store, lineageRun, args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%s\t%s\n", lt.Leaf, strings.Join(lt.Taxa, "; "))
		return nil
	},
}

func init() {
	lineageCmd.Flags().StringVar(&lineageRun, "run", "", "run ID (default: most recent run)")
	rootCmd.AddCommand(lineageCmd)
}
