package main

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oaktree/internal/common"
	"github.com/ternarybob/oaktree/internal/history"
	"github.com/ternarybob/oaktree/internal/server"
)

// procedureHost owns the same run Registry type the HTTP/WS control
// surface (C12) uses, so oaktree-mcp drives procedures through exactly
// the Runner an operator's HTTP client would (§4.13).
type procedureHost struct {
	registry  *server.Registry
	loaderDir string
}

func newProcedureHost(config *common.Config, logger arbor.ILogger, loaderDir string) *procedureHost {
	var store *history.Store
	if config.History.Enabled {
		s, err := history.Open(config.History.Path, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("oaktree-mcp: history disabled: failed to open store")
		} else {
			store = s
		}
	}
	return &procedureHost{
		registry:  server.NewRegistry(logger, store),
		loaderDir: loaderDir,
	}
}
