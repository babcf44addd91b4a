// Package common provides the application-level ambient stack shared by
// the cmd/oaktree and cmd/oaktree-mcp binaries: configuration loading,
// logger setup, and the startup banner (§4.10).
package common

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the process-level configuration for an oaktree host (§4.10).
// It is never consulted by the core engine packages (instr, workspace,
// procedure, runner); only cmd/oaktree and cmd/oaktree-mcp read it.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
	Runner  RunnerConfig  `toml:"runner"`
	History HistoryConfig `toml:"history"`
	MCP     MCPConfig     `toml:"mcp"`
}

// ServerConfig configures the HTTP/WS control surface (C12).
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoggingConfig configures the arbor logger (console and/or file).
type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// RunnerConfig configures the Runner's tick pacing (C8).
type RunnerConfig struct {
	BackoffInterval string `toml:"backoff_interval"` // duration string, e.g. "20ms"
	DefaultTimeout  string `toml:"default_timeout"`  // duration string applied when an instruction's own timeout attribute is absent
}

// HistoryConfig configures the run-history trace sink (C11).
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Badger database directory
}

// MCPConfig configures whether the MCP control surface (C13) is active.
type MCPConfig struct {
	Enabled bool `toml:"enabled"`
}

// NewDefaultConfig returns a Config with production-safe defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8242,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Runner: RunnerConfig{
			BackoffInterval: "20ms",
			DefaultTimeout:  "30s",
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    "./data/history",
		},
		MCP: MCPConfig{
			Enabled: false,
		},
	}
}

// LoadFromFiles loads configuration with priority default -> file1 -> file2
// -> ... ; later files override earlier ones. CLI flag overrides are
// applied afterward by the caller via ApplyFlagOverrides (§4.10).
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	return config, nil
}

// ApplyFlagOverrides layers command-line flags over config, the final and
// highest-priority step of the layering order (§4.10).
func ApplyFlagOverrides(config *Config, host string, port int, logLevel string) {
	if host != "" {
		config.Server.Host = host
	}
	if port > 0 {
		config.Server.Port = port
	}
	if logLevel != "" {
		config.Logging.Level = logLevel
	}
}
