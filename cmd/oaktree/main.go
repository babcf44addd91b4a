// Command oaktree is the CLI host of SPEC_FULL.md §4.10. It dispatches one
// of run/serve/validate/version; run and serve then load config, apply
// flag overrides and init the logger (serve also prints the banner).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oaktree/internal/common"
	"github.com/ternarybob/oaktree/internal/history"
	"github.com/ternarybob/oaktree/internal/loader"
	"github.com/ternarybob/oaktree/internal/runner"
	"github.com/ternarybob/oaktree/internal/server"
	"github.com/ternarybob/oaktree/internal/ui"
)

// dirOf returns the directory containing path, for resolving sibling
// Include/IncludeProcedure files relative to a submitted procedure.
func dirOf(path string) string {
	dir := filepath.Dir(path)
	if dir == "" {
		return "."
	}
	return dir
}

// configPaths is a custom flag type allowing multiple -config flags,
// later files overriding earlier ones.
type configPaths []string

func (c *configPaths) String() string { return fmt.Sprintf("%v", *c) }
func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	case "validate":
		cmdValidate(os.Args[2:])
	case "version":
		fmt.Printf("oaktree version %s\n", common.GetVersion())
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "oaktree: unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: oaktree <run|serve|validate|version> [flags] [args]")
}

// loadHost runs §4.10's required startup sequence (load config -> apply
// flag overrides -> init logger -> print banner) shared by run and serve.
func loadHost(fs *flag.FlagSet, args []string, printBanner bool) (*common.Config, arbor.ILogger) {
	var configFiles configPaths
	fs.Var(&configFiles, "config", "Configuration file path (repeatable, later files override earlier ones)")
	host := fs.String("host", "", "Server host (overrides config)")
	port := fs.Int("port", 0, "Server port (overrides config)")
	logLevel := fs.String("log-level", "", "Log level (overrides config)")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	if len(configFiles) == 0 {
		if _, err := os.Stat("oaktree.toml"); err == nil {
			configFiles = append(configFiles, "oaktree.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}
	common.ApplyFlagOverrides(config, *host, *port, *logLevel)

	logger := common.SetupLogger(config)
	if printBanner {
		common.PrintBanner(config, logger)
	}
	return config, logger
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	config, logger := loadHost(fs, args, false)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: oaktree run <procedure.yaml>")
		os.Exit(2)
	}
	procFile := fs.Arg(0)

	var store *history.Store
	if config.History.Enabled {
		s, err := history.Open(config.History.Path, logger)
		if err != nil {
			common.FatalStartup(logger, err, "open history store")
		}
		store = s
		defer store.Close()
	}

	dirLoader := loader.NewDirLoader(dirOf(procFile), logger)
	p, err := loader.LoadFile(procFile, logger, dirLoader)
	if err != nil {
		common.FatalStartup(logger, err, "load procedure")
	}
	if err := p.Setup(); err != nil {
		common.FatalStartup(logger, err, "setup procedure")
	}
	defer p.Teardown()

	runID := uuid.New().String()
	cui := newConsoleUI(logger)
	var attached ui.UserInterface = cui
	if store != nil {
		attached = history.NewRecorder(cui, store, runID, logger)
	}

	r := runner.New(logger, attached)
	if err := r.SetProcedure(p); err != nil {
		common.FatalStartup(logger, err, "attach procedure to runner")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := r.ExecuteProcedure(ctx)
	fmt.Printf("final status: %s\n", st.String())
	if !st.Terminal() {
		os.Exit(1)
	}
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	config, logger := loadHost(fs, args, true)

	var store *history.Store
	if config.History.Enabled {
		s, err := history.Open(config.History.Path, logger)
		if err != nil {
			common.FatalStartup(logger, err, "open history store")
		}
		store = s
		defer store.Close()
	}

	wd, _ := os.Getwd()
	srv := server.New(config, logger, store, wd)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	common.PrintShutdownBanner(logger)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: oaktree validate <procedure.yaml>")
		os.Exit(2)
	}
	procFile := fs.Arg(0)

	logger := arbor.NewLogger().WithLevelFromString("warn")

	dirLoader := loader.NewDirLoader(dirOf(procFile), logger)
	p, err := loader.LoadFile(procFile, logger, dirLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
		os.Exit(1)
	}
	if err := p.Setup(); err != nil {
		fmt.Fprintf(os.Stderr, "setup error: %v\n", err)
		os.Exit(1)
	}
	defer p.Teardown()
	fmt.Println("ok")
}
