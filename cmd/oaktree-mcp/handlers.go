package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oaktree/internal/loader"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(text)}}
}

func handleRunProcedure(host *procedureHost, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		doc, err := request.RequireString("yaml")
		if err != nil || doc == "" {
			return textResult("Error: yaml parameter is required"), nil
		}

		dirLoader := loader.NewDirLoader(host.loaderDir, logger)
		p, err := loader.Load([]byte(doc), logger, dirLoader)
		if err != nil {
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}

		runID, err := host.registry.Submit(p)
		if err != nil {
			logger.Error().Err(err).Msg("oaktree_run_procedure: submit failed")
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}

		if err := host.registry.RunAsync(runID); err != nil {
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return textResult(fmt.Sprintf("run_id: %s", runID)), nil
	}
}

func handleStep(host *procedureHost, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		runID, err := request.RequireString("run_id")
		if err != nil || runID == "" {
			return textResult("Error: run_id parameter is required"), nil
		}
		st, err := host.registry.Step(runID)
		if err != nil {
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(fmt.Sprintf("status: %s", st.String())), nil
	}
}

func handleStatus(host *procedureHost, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		runID, err := request.RequireString("run_id")
		if err != nil || runID == "" {
			return textResult("Error: run_id parameter is required"), nil
		}
		st, running, finished, err := host.registry.RunStatus(runID)
		if err != nil {
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(fmt.Sprintf("status: %s, running: %t, finished: %t", st.String(), running, finished)), nil
	}
}

func handleHalt(host *procedureHost, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		runID, err := request.RequireString("run_id")
		if err != nil || runID == "" {
			return textResult("Error: run_id parameter is required"), nil
		}
		if err := host.registry.Halt(runID); err != nil {
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult("halted"), nil
	}
}
