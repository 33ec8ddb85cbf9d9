package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"phylorank/internal/application"
	"phylorank/internal/domain"
	"phylorank/internal/ports"
)

// DecorateOptions holds the inputs and tuning of one decoration run
type DecorateOptions struct {
	InputTree       string
	TaxonomyFile    string
	TrustedTaxaFile string
	OutputTree      string

	MinChildren  int
	MinSupport   float64
	MaxRDDiff    float64
	SkipRDRefine bool
	FillRankGaps bool
}

// TablePath is where the per-taxon statistics table is written
func (o DecorateOptions) TablePath() string {
	return o.OutputTree + "-table"
}

// TaxonomyPath is where the decorated extant taxonomy is written
func (o DecorateOptions) TaxonomyPath() string {
	return o.OutputTree + "-taxonomy"
}

// DecorateResult summarizes a finished run
type DecorateResult struct {
	RunID      string
	NumLeaves  int
	Stats      []domain.PlacementStat
	Thresholds map[domain.Rank]float64
	Message    string
}

// DecorateCommand places taxonomy labels on the internal nodes of a tree
type DecorateCommand struct {
	codec     ports.TreeCodec
	reader    ports.TaxonomyReader
	writer    ports.OutputWriter
	estimator ports.DivergenceEstimator
	store     ports.PlacementStore
	logger    *zap.Logger

	Options DecorateOptions
}

// DecorateOption configures optional collaborators of a DecorateCommand
type DecorateOption func(*DecorateCommand)

// WithLogger sets the logger used by every stage
func WithLogger(logger *zap.Logger) DecorateOption {
	return func(c *DecorateCommand) {
		c.logger = logger
	}
}

// WithStore persists the run once all outputs are written
func WithStore(store ports.PlacementStore) DecorateOption {
	return func(c *DecorateCommand) {
		c.store = store
	}
}

// NewDecorateCommand creates a new DecorateCommand
func NewDecorateCommand(
	codec ports.TreeCodec,
	reader ports.TaxonomyReader,
	writer ports.OutputWriter,
	estimator ports.DivergenceEstimator,
	opts DecorateOptions,
	options ...DecorateOption,
) *DecorateCommand {
	c := &DecorateCommand{
		codec:     codec,
		reader:    reader,
		writer:    writer,
		estimator: estimator,
		Options:   opts,
		logger:    zap.NewNop(),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Validate checks the run options
func (c *DecorateCommand) Validate() error {
	o := c.Options
	if err := application.ValidateRequired("inputTree", o.InputTree); err != nil {
		return err
	}
	if err := application.ValidateRequired("taxonomyFile", o.TaxonomyFile); err != nil {
		return err
	}
	if err := application.ValidateRequired("outputTree", o.OutputTree); err != nil {
		return err
	}
	if o.InputTree == o.OutputTree {
		return &application.ValidationError{
			Field:   "outputTree",
			Message: "output tree must differ from the input tree",
		}
	}
	if err := application.ValidateNonNegative("minChildren", o.MinChildren); err != nil {
		return err
	}
	if o.MinSupport < 0 {
		return &application.ValidationError{
			Field:   "minSupport",
			Message: fmt.Sprintf("minimum support must not be negative, got %g", o.MinSupport),
		}
	}
	return application.ValidateRange("maxRDDiff", o.MaxRDDiff, 0, 1)
}

// Execute reads every input, decorates the tree and writes the outputs.
// Nothing is written unless the whole pipeline succeeds.
func (c *DecorateCommand) Execute(ctx context.Context) (*DecorateResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	o := c.Options

	c.logger.Info("Reading tree.", zap.String("path", o.InputTree))
	tree, err := c.codec.ReadTree(o.InputTree)
	if err != nil {
		return nil, &application.InputError{Path: o.InputTree, Err: err}
	}

	c.logger.Info("Reading taxonomy.", zap.String("path", o.TaxonomyFile))
	records, malformed, err := c.reader.ReadTaxonomy(o.TaxonomyFile)
	if err != nil {
		return nil, &application.InputError{Path: o.TaxonomyFile, Err: err}
	}
	for _, line := range malformed {
		c.logger.Warn("Skipping malformed taxonomy entry.", zap.String("entry", line))
	}

	var trusted map[string]bool
	if o.TrustedTaxaFile != "" {
		trusted, err = c.reader.ReadTaxa(o.TrustedTaxaFile)
		if err != nil {
			return nil, &application.InputError{Path: o.TrustedTaxaFile, Err: err}
		}
		c.logger.Info("Read trusted taxa.", zap.Int("taxa", len(trusted)))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	StripLabels(tree)

	full := domain.NewTaxonomy(records)
	leaves := tree.Leaves()
	ids := make([]string, 0, len(leaves))
	missing := 0
	for _, leaf := range leaves {
		ids = append(ids, leaf.Name)
		if !full.Has(leaf.Name) {
			missing++
		}
	}
	if missing > 0 {
		c.logger.Warn("Leaves without a taxonomy entry are treated as unclassified.",
			zap.Int("leaves", missing))
	}
	taxonomy := full.Restrict(ids)
	c.logger.Info("Restricted taxonomy to tree leaves.",
		zap.Int("records", len(full.IDs())),
		zap.Int("leaves", len(taxonomy.IDs())))
	for _, inc := range taxonomy.Inconsistencies() {
		c.logger.Warn("Taxonomy is not a strict hierarchy.", zap.String("detail", inc.String()))
	}

	d := NewDecoration(tree, taxonomy, c.logger)
	refine := RefineOptions{
		Filter: InferenceFilter{
			Trusted:     trusted,
			MinChildren: o.MinChildren,
			MinSupport:  o.MinSupport,
		},
		MaxRDDiff:    o.MaxRDDiff,
		SkipRDRefine: o.SkipRDRefine,
	}
	if err := d.Decorate(ctx, c.estimator, refine); err != nil {
		return nil, fmt.Errorf("failed to decorate tree: %w", err)
	}

	stats, err := d.Statistics()
	if err != nil {
		return nil, err
	}
	extant := d.ExtantTaxonomy(o.FillRankGaps)

	c.logger.Info("Writing out statistics for taxa.", zap.String("path", o.TablePath()))
	if err := c.writer.WriteStatistics(o.TablePath(), stats); err != nil {
		return nil, fmt.Errorf("failed to write statistics: %w", err)
	}

	c.logger.Info("Writing out taxonomy for extant taxa.", zap.String("path", o.TaxonomyPath()))
	if err := c.writer.WriteTaxonomy(o.TaxonomyPath(), extant); err != nil {
		return nil, fmt.Errorf("failed to write taxonomy: %w", err)
	}

	c.logger.Info("Writing out decorated tree.", zap.String("path", o.OutputTree))
	if err := c.codec.WriteTree(o.OutputTree, tree); err != nil {
		return nil, fmt.Errorf("failed to write tree: %w", err)
	}

	result := &DecorateResult{
		NumLeaves:  len(leaves),
		Stats:      stats,
		Thresholds: d.Thresholds,
		Message:    fmt.Sprintf("Placed %d taxa on %s", len(stats), o.OutputTree),
	}

	if c.store != nil {
		run := &domain.Run{
			ID:           uuid.NewString(),
			CreatedAt:    time.Now().UTC(),
			InputTree:    o.InputTree,
			TaxonomyFile: o.TaxonomyFile,
			OutputTree:   o.OutputTree,
			SkipRDRefine: o.SkipRDRefine,
			MaxRDDiff:    o.MaxRDDiff,
			NumLeaves:    len(leaves),
			Thresholds:   d.Thresholds,
		}
		if _, err := NewSaveRunCommand(c.store, run, stats, extant).Execute(ctx); err != nil {
			return nil, err
		}
		result.RunID = run.ID
		result.Message += fmt.Sprintf(" (run %s)", run.ID)
	}

	return result, nil
}
