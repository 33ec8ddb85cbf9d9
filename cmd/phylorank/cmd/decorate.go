package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"phylorank/internal/adapters/divergence"
	"phylorank/internal/adapters/filesystem"
	"phylorank/internal/adapters/newick"
	"phylorank/internal/application/commands"
	"phylorank/internal/domain"
)

var decorateFlags struct {
	trustedTaxa  string
	minChildren  int
	minSupport   float64
	maxRDDiff    float64
	skipRDRefine bool
	fillGaps     bool
	workers      int
	noStore      bool
}

var decorateCmd = &cobra.Command{
	Use:   "decorate <input-tree> <taxonomy-file> <output-tree>",
	Short: "Place taxonomy labels on the internal nodes of a tree",
	Long: `Decorate a rooted Newick tree with taxonomy labels.

The taxonomy file has one "<leaf-id>\t<d__...;p__...;...>" line per
extant taxon. Besides the decorated tree, two files are written:
  <output-tree>-table     placement statistics per taxon
  <output-tree>-taxonomy  the taxonomy each leaf inherits from the tree

Flags not given on the command line fall back to the decorate section of
the config file.

Examples:
  phylorank decorate bac.tree bac_taxonomy.tsv bac.decorated.tree
  phylorank decorate bac.tree tax.tsv out.tree --skip-rd-refine
  phylorank decorate bac.tree tax.tsv out.tree --trusted-taxa-file trusted.txt --min-support 70`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := commands.DecorateOptions{
			InputTree:       args[0],
			TaxonomyFile:    args[1],
			OutputTree:      args[2],
			TrustedTaxaFile: cfg.Decorate.TrustedTaxa,
			MinChildren:     cfg.Decorate.MinChildren,
			MinSupport:      cfg.Decorate.MinSupport,
			MaxRDDiff:       cfg.Decorate.MaxRDDiff,
			SkipRDRefine:    cfg.Decorate.SkipRDRefine,
			FillRankGaps:    cfg.Decorate.FillRankGaps,
		}

		f := cmd.Flags()
		if f.Changed("trusted-taxa-file") {
			opts.TrustedTaxaFile = decorateFlags.trustedTaxa
		}
		if f.Changed("min-children") {
			opts.MinChildren = decorateFlags.minChildren
		}
		if f.Changed("min-support") {
			opts.MinSupport = decorateFlags.minSupport
		}
		if f.Changed("max-rd-diff") {
			opts.MaxRDDiff = decorateFlags.maxRDDiff
		}
		if f.Changed("skip-rd-refine") {
			opts.SkipRDRefine = decorateFlags.skipRDRefine
		}
		if f.Changed("fill-rank-gaps") {
			opts.FillRankGaps = decorateFlags.fillGaps
		}

		options := []commands.DecorateOption{commands.WithLogger(logger)}
		if !decorateFlags.noStore {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			options = append(options, commands.WithStore(store))
		}

		estimator := divergence.NewEstimator(
			divergence.WithLogger(logger),
			divergence.WithWorkers(decorateFlags.workers),
		)

		repo := filesystem.NewRepository()
		decorate := commands.NewDecorateCommand(
			newick.NewCodec(),
			repo,
			repo,
			estimator,
			opts,
			options...,
		)
		result, err := decorate.Execute(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(result.Message)
		run := domain.Run{Thresholds: result.Thresholds}
		for _, th := range run.SortedThresholds() {
			fmt.Printf("  %-8s median RD %.3f\n", th.Rank, th.RelDist)
		}
		return nil
	},
}

func init() {
	f := decorateCmd.Flags()
	f.StringVar(&decorateFlags.trustedTaxa, "trusted-taxa-file", "", "taxa to use for inferring rank divergence")
	f.IntVar(&decorateFlags.minChildren, "min-children", 0, "minimum named child taxa for a taxon to be used in inference")
	f.Float64Var(&decorateFlags.minSupport, "min-support", 0, "minimum node support for a taxon to be used in inference")
	f.Float64Var(&decorateFlags.maxRDDiff, "max-rd-diff", domain.DefaultMaxRDDiff, "maximum distance from a rank's median relative divergence")
	f.BoolVar(&decorateFlags.skipRDRefine, "skip-rd-refine", false, "place tied taxa at their most terminal node")
	f.BoolVar(&decorateFlags.fillGaps, "fill-rank-gaps", false, "fill ranks missing inside a leaf's taxonomy")
	f.IntVar(&decorateFlags.workers, "workers", 0, "rootings computed concurrently (0 uses every CPU)")
	f.BoolVar(&decorateFlags.noStore, "no-store", false, "do not record the run in the placement store")
	rootCmd.AddCommand(decorateCmd)
}
