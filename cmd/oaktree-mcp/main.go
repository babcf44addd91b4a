// Command oaktree-mcp exposes the runner controls of SPEC_FULL.md §4.13
// as MCP tools over stdio, for agentic callers that want to drive a
// procedure the same way an operator does through the HTTP surface.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/oaktree/internal/common"
)

func main() {
	configPath := os.Getenv("OAKTREE_CONFIG")
	if configPath == "" {
		configPath = "oaktree.toml"
	}

	config, err := common.LoadFromFiles(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio.
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	loaderDir := "."
	if wd, err := os.Getwd(); err == nil {
		loaderDir = wd
	}

	procedures := newProcedureHost(config, logger, loaderDir)

	mcpServer := server.NewMCPServer(
		"oaktree",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createRunProcedureTool(), handleRunProcedure(procedures, logger))
	mcpServer.AddTool(createStepTool(), handleStep(procedures, logger))
	mcpServer.AddTool(createStatusTool(), handleStatus(procedures, logger))
	mcpServer.AddTool(createHaltTool(), handleHalt(procedures, logger))

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
