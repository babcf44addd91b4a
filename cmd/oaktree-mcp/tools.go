package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func createRunProcedureTool() mcp.Tool {
	return mcp.NewTool("oaktree_run_procedure",
		mcp.WithDescription("Load a YAML procedure document, start it, and return its run ID"),
		mcp.WithString("yaml",
			mcp.Required(),
			mcp.Description("The YAML procedure document (§4.14 shape)"),
		),
	)
}

func createStepTool() mcp.Tool {
	return mcp.NewTool("oaktree_step",
		mcp.WithDescription("Tick a run's root instruction exactly once and return the resulting status"),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Run ID returned by oaktree_run_procedure"),
		),
	)
}

func createStatusTool() mcp.Tool {
	return mcp.NewTool("oaktree_status",
		mcp.WithDescription("Report a run's current root status"),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Run ID returned by oaktree_run_procedure"),
		),
	)
}

func createHaltTool() mcp.Tool {
	return mcp.NewTool("oaktree_halt",
		mcp.WithDescription("Halt a run, propagating the halt flag through its tree"),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Run ID returned by oaktree_run_procedure"),
		),
	)
}
