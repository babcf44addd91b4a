package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

// SetupLogger configures an arbor.ILogger from config: console and/or file
// writers per Logging.Output, plus a memory writer so the C12 WebSocket
// surface can replay recent log lines to newly connected clients (§4.10,
// §4.12).
func SetupLogger(config *Config) arbor.ILogger {
	logger := arbor.NewLogger()

	hasFile, hasConsole := false, false
	for _, output := range config.Logging.Output {
		switch output {
		case "file":
			hasFile = true
		case "stdout", "console":
			hasConsole = true
		}
	}

	if hasFile {
		logsDir := "./logs"
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			logger = logger.WithConsoleWriter(writerConfig(config, models.LogWriterTypeConsole, ""))
			logger.Warn().Err(err).Str("logs_dir", logsDir).Msg("failed to create logs directory, falling back to console")
		} else {
			logFile := filepath.Join(logsDir, "oaktree.log")
			logger = logger.WithFileWriter(writerConfig(config, models.LogWriterTypeFile, logFile))
		}
	}

	if hasConsole || !hasFile {
		logger = logger.WithConsoleWriter(writerConfig(config, models.LogWriterTypeConsole, ""))
	}

	logger = logger.WithMemoryWriter(writerConfig(config, models.LogWriterTypeMemory, ""))
	logger = logger.WithLevelFromString(config.Logging.Level)

	return logger
}

func writerConfig(config *Config, writerType models.LogWriterType, filename string) models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:             writerType,
		FileName:         filename,
		TimeFormat:       "15:04:05.000",
		DisableTimestamp: false,
		MaxSize:          50 * 1024 * 1024,
		MaxBackups:       3,
	}
}

// WithCorrelationID returns a child logger carrying a per-run correlation
// ID, attached to every log line emitted during that run (§4.10, §4.12
// middleware).
func WithCorrelationID(logger arbor.ILogger, runID string) arbor.ILogger {
	return logger.WithCorrelationId(runID)
}

// FatalStartup logs a startup error at Fatal and exits the process
// (§7: config/CLI errors are wrapped and logged at Fatal before exit,
// never as a tick-time error).
func FatalStartup(logger arbor.ILogger, err error, context string) {
	logger.Fatal().Err(fmt.Errorf("%s: %w", context, err)).Msg("startup failed")
}
