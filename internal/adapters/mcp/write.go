package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"phylorank/internal/application/commands"
	"phylorank/internal/domain"
	"phylorank/internal/ports"
)

// Decorator bundles the collaborators needed to run a decoration
type Decorator struct {
	Codec     ports.TreeCodec
	Reader    ports.TaxonomyReader
	Writer    ports.OutputWriter
	Estimator ports.DivergenceEstimator
	Store     ports.PlacementStore
	Logger    *zap.Logger

	// Defaults fill the tuning arguments a call leaves out
	Defaults commands.DecorateOptions
}

// RegisterWriteTools adds the tools that produce new runs to the MCP server.
func RegisterWriteTools(s *server.MCPServer, d Decorator) {
	s.AddTool(decorateTool(), decorateHandler(d))
}

// --- decorate ---

func decorateTool() mcp.Tool {
	return mcp.NewTool("decorate",
		mcp.WithDescription("Place taxonomy labels on the internal nodes of a tree and store the run. Writes the decorated tree plus <output_tree>-table and <output_tree>-taxonomy."),
		mcp.WithString("input_tree",
			mcp.Description("Newick tree to decorate"),
			mcp.Required(),
		),
		mcp.WithString("taxonomy_file",
			mcp.Description("Tab-separated taxonomy of the extant taxa"),
			mcp.Required(),
		),
		mcp.WithString("output_tree",
			mcp.Description("Where to write the decorated tree"),
			mcp.Required(),
		),
		mcp.WithString("trusted_taxa_file",
			mcp.Description("Taxa to use for inferring rank divergence"),
		),
		mcp.WithNumber("min_children",
			mcp.Description("Minimum named child taxa for a taxon to be used in inference"),
		),
		mcp.WithNumber("min_support",
			mcp.Description("Minimum node support for a taxon to be used in inference"),
		),
		mcp.WithNumber("max_rd_diff",
			mcp.Description("Maximum difference from a rank's median relative divergence (default 0.1)"),
		),
		mcp.WithBoolean("skip_rd_refine",
			mcp.Description("Place tied taxa at their most terminal node instead of using relative divergence"),
		),
		mcp.WithBoolean("fill_rank_gaps",
			mcp.Description("Fill ranks missing inside a leaf's taxonomy"),
		),
	)
}

func decorateHandler(d Decorator) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		def := d.Defaults
		if def == (commands.DecorateOptions{}) {
			def.MaxRDDiff = domain.DefaultMaxRDDiff
		}
		opts := commands.DecorateOptions{
			InputTree:       req.GetString("input_tree", ""),
			TaxonomyFile:    req.GetString("taxonomy_file", ""),
			OutputTree:      req.GetString("output_tree", ""),
			TrustedTaxaFile: req.GetString("trusted_taxa_file", def.TrustedTaxaFile),
			MinChildren:     req.GetInt("min_children", def.MinChildren),
			MinSupport:      req.GetFloat("min_support", def.MinSupport),
			MaxRDDiff:       req.GetFloat("max_rd_diff", def.MaxRDDiff),
			SkipRDRefine:    req.GetBool("skip_rd_refine", def.SkipRDRefine),
			FillRankGaps:    req.GetBool("fill_rank_gaps", def.FillRankGaps),
		}

		options := []commands.DecorateOption{commands.WithLogger(d.Logger)}
		if d.Store != nil {
			options = append(options, commands.WithStore(d.Store))
		}

		cmd := commands.NewDecorateCommand(d.Codec, d.Reader, d.Writer, d.Estimator, opts, options...)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(result.Message), nil
	}
}
