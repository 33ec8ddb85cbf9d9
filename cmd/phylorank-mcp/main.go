package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"phylorank/internal/adapters/divergence"
	"phylorank/internal/adapters/filesystem"
	mcpadapter "phylorank/internal/adapters/mcp"
	"phylorank/internal/adapters/newick"
	"phylorank/internal/adapters/sqlite"
	"phylorank/internal/application/commands"
	"phylorank/internal/config"
)

func main() {
	configFlag := flag.String("config", config.ConfigPath(), "path to the YAML config file")
	dbFlag := flag.String("db", "", "path to the placement store (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFlag, false)
	if err != nil {
		log.Fatalf("phylorank-mcp: %v", err)
	}
	if *dbFlag != "" {
		cfg.Store = *dbFlag
	}

	// stdout carries the MCP protocol; production config logs to stderr
	zc := zap.NewProductionConfig()
	if level, err := cfg.Level(); err == nil {
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := zc.Build()
	if err != nil {
		log.Fatalf("phylorank-mcp: %v", err)
	}
	defer logger.Sync()

	store := sqlite.NewStore()
	if err := store.Open(cfg.Store); err != nil {
		log.Fatalf("phylorank-mcp: %v", err)
	}
	defer store.Close()

	mcpServer := server.NewMCPServer(
		"phylorank-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	repo := filesystem.NewRepository()
	mcpadapter.RegisterReadTools(mcpServer, store)
	mcpadapter.RegisterWriteTools(mcpServer, mcpadapter.Decorator{
		Codec:     newick.NewCodec(),
		Reader:    repo,
		Writer:    repo,
		Estimator: divergence.NewEstimator(divergence.WithLogger(logger)),
		Store:     store,
		Logger:    logger,
		Defaults: commands.DecorateOptions{
			TrustedTaxaFile: cfg.Decorate.TrustedTaxa,
			MinChildren:     cfg.Decorate.MinChildren,
			MinSupport:      cfg.Decorate.MinSupport,
			MaxRDDiff:       cfg.Decorate.MaxRDDiff,
			SkipRDRefine:    cfg.Decorate.SkipRDRefine,
			FillRankGaps:    cfg.Decorate.FillRankGaps,
		},
	})

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("phylorank-mcp: %v", err)
	}
}
