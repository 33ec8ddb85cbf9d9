package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"phylorank/internal/application/commands"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored decoration runs",
	Long: `List decoration runs recorded in the placement store, newest first.

Example:
  phylorank runs`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := commands.NewListRunsCommand(store).Execute(cmd.Context())
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded")
			return nil
		}

		for _, r := range runs {
			var th []string
			for _, t := range r.SortedThresholds() {
				th = append(th, fmt.Sprintf("%s=%.3f", t.Rank, t.RelDist))
			}
			fmt.Printf("%s %s %s -> %s (%d leaves) %s\n",
				r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"),
				r.InputTree, r.OutputTree, r.NumLeaves, strings.Join(th, " "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
}
