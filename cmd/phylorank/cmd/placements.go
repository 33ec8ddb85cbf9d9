package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"phylorank/internal/application"
	"phylorank/internal/application/commands"
	"phylorank/internal/domain"
)

var (
	placementsRun  string
	placementsRank string
)

var placementsCmd = &cobra.Command{
	Use:   "placements [taxon]",
	Short: "Show where taxa were placed",
	Long: `Show the node each taxon was placed on in a stored run, with the
F-measure, precision and recall of the placement.

Without a taxon every placement of the run is listed, optionally
restricted to one rank. The most recent run is used unless --run is given.

Examples:
  phylorank placements
  phylorank placements --rank phylum
  phylorank placements p__Firmicutes --run 3f1c...`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if len(args) == 1 {
			p, err := commands.NewGetPlacementCommand(store, placementsRun, args[0]).Execute(cmd.Context())
			if err != nil {
				return err
			}
			printPlacement(*p)
			return nil
		}

		rank, err := application.ParseRankFilter(placementsRank)
		if err != nil {
			return err
		}
		result, err := commands.NewListPlacementsCommand(store, placementsRun, rank).Execute(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Run %s (%s)\n", result.Run.ID, result.Run.OutputTree)
		for _, p := range result.Placements {
			printPlacement(p)
		}
		return nil
	},
}

func printPlacement(p domain.PlacementStat) {
	fmt.Printf("%-30s node %-6d F=%.4f P=%.4f R=%.4f RD=%.3f",
		p.Taxon, p.NodeID, p.FMeasure, p.Precision, p.Recall, p.RelDist)
	if p.NumCandidates > 1 {
		fmt.Printf(" (%d tied nodes)", p.NumCandidates)
	}
	fmt.Println()
}

func init() {
	placementsCmd.Flags().StringVar(&placementsRun, "run", "", "run ID (default: most recent run)")
	placementsCmd.Flags().StringVar(&placementsRank, "rank", "", "restrict to one rank (domain, phylum, ... or d, p, ...)")
	rootCmd.AddCommand(placementsCmd)
}
