package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"phylorank/internal/adapters/newick"
	"phylorank/internal/adapters/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse <decorated-tree>",
	Short: "Browse a decorated tree interactively",
	Long: `Open an interactive browser over a decorated tree.

Nodes expand and collapse; labelled nodes are colored by their most
specific rank. Press y to copy the selected node's lineage and ? for help.

Example:
  phylorank browse bac.decorated.tree`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := tui.NewApp(newick.NewCodec(), args[0])

		p := tea.NewProgram(app, tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
