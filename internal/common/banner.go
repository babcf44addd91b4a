package common

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the startup banner and logs the same information
// through arbor (§4.10: print banner comes after logger init).
func PrintBanner(config *Config, logger arbor.ILogger) {
	version := GetVersion()
	serviceURL := fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)

	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorGreen).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(72)

	fmt.Printf("\n")
	b.PrintTopLine()
	b.PrintCenteredText("OAKTREE")
	b.PrintCenteredText("Behavior Tree Execution Engine")
	b.PrintSeparatorLine()
	b.PrintKeyValue("Version", version, 15)
	b.PrintKeyValue("Control URL", serviceURL, 15)
	b.PrintKeyValue("History", historyLabel(config), 15)
	b.PrintBottomLine()
	fmt.Printf("\n")

	logger.Info().
		Str("version", version).
		Str("control_url", serviceURL).
		Bool("history_enabled", config.History.Enabled).
		Bool("mcp_enabled", config.MCP.Enabled).
		Msg("oaktree started")
}

func historyLabel(config *Config) string {
	if config.History.Enabled {
		return config.History.Path
	}
	return "disabled"
}

// PrintShutdownBanner displays the shutdown banner.
func PrintShutdownBanner(logger arbor.ILogger) {
	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorGreen).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(42)

	b.PrintTopLine()
	b.PrintCenteredText("SHUTTING DOWN")
	b.PrintCenteredText("OAKTREE")
	b.PrintBottomLine()
	fmt.Println()

	logger.Info().Msg("oaktree shutting down")
}
