package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"phylorank/internal/adapters/sqlite"
	"phylorank/internal/config"
)

var (
	configPath string
	dbPath     string
	verbose    bool

	cfg    = config.Default()
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "phylorank",
	Short: "Decorate phylogenetic trees with taxonomy labels",
	Long: `phylorank places taxonomy labels on the internal nodes of a rooted tree.

Each taxon goes to the node whose subtree best matches its members
(F-measure); ties are broken with relative divergence. Decoration runs
are stored so placements can be queried later.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("db") {
			cfg.Store = dbPath
		}

		zc := zap.NewProductionConfig()
		level, _ := cfg.Level()
		if verbose {
			level = zapcore.DebugLevel
		}
		zc.Level = zap.NewAtomicLevelAt(level)
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.ConfigPath(), "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DBPath(), "path to the placement store")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// openStore opens the placement store named by the configuration.
// Callers close it.
func openStore() (*sqlite.Store, error) {
	store := sqlite.NewStore()
	if err := store.Open(cfg.Store); err != nil {
		return nil, err
	}
	return store, nil
}
