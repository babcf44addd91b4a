package main

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/value"
)

// consoleUI is the UserInterface the run subcommand attaches to its
// Runner: it prints status transitions and messages to stdout and logs
// everything through arbor, and has no operator attached to answer
// prompts (embeds ui.Base's default rejections for those).
type consoleUI struct {
	ui.Base
	logger arbor.ILogger
}

func newConsoleUI(logger arbor.ILogger) *consoleUI {
	return &consoleUI{logger: logger}
}

func (c *consoleUI) UpdateInstructionStatus(node ui.NodeInfo, newStatus status.ExecutionStatus) {
	fmt.Printf("[%s] %s (%s) -> %s\n", node.ID, node.Name, node.TypeName, newStatus.String())
}

func (c *consoleUI) VariableUpdated(name string, v value.Value, connected bool) {
	text, _ := v.AsString()
	c.logger.Debug().Str("variable", name).Str("value", text).Bool("connected", connected).Msg("variable updated")
}

func (c *consoleUI) Message(text string) {
	fmt.Println(text)
}

func (c *consoleUI) Log(severity ui.Severity, text string) {
	switch severity {
	case ui.Emergency, ui.Alert, ui.Critical, ui.Error:
		c.logger.Error().Msg(text)
	case ui.Warning:
		c.logger.Warn().Msg(text)
	case ui.Notice, ui.Info:
		c.logger.Info().Msg(text)
	default:
		c.logger.Debug().Msg(text)
	}
}

var _ ui.UserInterface = (*consoleUI)(nil)
