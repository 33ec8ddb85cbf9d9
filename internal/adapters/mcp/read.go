package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"phylorank/internal/application"
	"phylorank/internal/application/commands"
	"phylorank/internal/domain"
	"phylorank/internal/ports"
)

// RegisterReadTools adds all read-only placement store tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, store ports.PlacementStore) {
	s.AddTool(listRunsTool(), listRunsHandler(store))
	s.AddTool(listPlacementsTool(), listPlacementsHandler(store))
	s.AddTool(getPlacementTool(), getPlacementHandler(store))
	s.AddTool(leafTaxonomyTool(), leafTaxonomyHandler(store))
}

func runIDOption() mcp.ToolOption {
	return mcp.WithString("run_id",
		mcp.Description("Decoration run ID. Omit to use the most recent run."),
	)
}

// --- list_runs ---

func listRunsTool() mcp.Tool {
	return mcp.NewTool("list_runs",
		mcp.WithDescription("List stored decoration runs, newest first, with their inputs and per-rank relative divergence thresholds."),
	)
}

func listRunsHandler(store ports.PlacementStore) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		runs, err := commands.NewListRunsCommand(store).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(runs, formatRun)
	}
}

// --- list_placements ---

func listPlacementsTool() mcp.Tool {
	return mcp.NewTool("list_placements",
		mcp.WithDescription("List where each taxon was placed in a decorated tree, with F-measure, precision, recall and relative divergence."),
		runIDOption(),
		mcp.WithString("rank",
			mcp.Description("Restrict to one rank: domain, phylum, class, order, family, genus, species (or d, p, c, o, f, g, s). Omit for all ranks."),
		),
	)
}

func listPlacementsHandler(store ports.PlacementStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rank, err := application.ParseRankFilter(req.GetString("rank", ""))
		if err != nil {
			return toolError(err)
		}

		result, err := commands.NewListPlacementsCommand(store, req.GetString("run_id", ""), rank).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(result.Placements, formatPlacement)
	}
}

// --- get_placement ---

func getPlacementTool() mcp.Tool {
	return mcp.NewTool("get_placement",
		mcp.WithDescription("Show where a single taxon was placed and how well the node matches its membership."),
		mcp.WithString("taxon",
			mcp.Description("Taxon with rank prefix (e.g. p__Firmicutes)"),
			mcp.Required(),
		),
		runIDOption(),
	)
}

func getPlacementHandler(store ports.PlacementStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taxon := req.GetString("taxon", "")
		if taxon == "" {
			return toolError(fmt.Errorf("taxon is required"))
		}

		p, err := commands.NewGetPlacementCommand(store, req.GetString("run_id", ""), taxon).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(formatPlacement(*p)), nil
	}
}

// --- leaf_taxonomy ---

func leafTaxonomyTool() mcp.Tool {
	return mcp.NewTool("leaf_taxonomy",
		mcp.WithDescription("Return the taxonomy a leaf inherits from the labels decorated above it."),
		mcp.WithString("leaf",
			mcp.Description("Extant taxon identifier as it appears in the tree"),
			mcp.Required(),
		),
		runIDOption(),
	)
}

func leafTaxonomyHandler(store ports.PlacementStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		leaf := req.GetString("leaf", "")
		if leaf == "" {
			return toolError(fmt.Errorf("leaf is required"))
		}

		lt, err := commands.NewLeafTaxonomyCommand(store, req.GetString("run_id", ""), leaf).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(strings.Join(lt.Taxa, "; ")), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatRun(r domain.Run) string {
	var th []string
	for _, t := range r.SortedThresholds() {
		th = append(th, fmt.Sprintf("%s=%.3f", t.Rank, t.RelDist))
	}
	return fmt.Sprintf("%s  %s  %s -> %s  leaves=%d  %s",
		r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.InputTree, r.OutputTree, r.NumLeaves, strings.Join(th, " "))
}

func formatPlacement(p domain.PlacementStat) string {
	return fmt.Sprintf("%s  node=%d  F=%.4f  P=%.4f  R=%.4f  RD=%.3f  candidates=%d",
		p.Taxon, p.NodeID, p.FMeasure, p.Precision, p.Recall, p.RelDist, p.NumCandidates)
}
