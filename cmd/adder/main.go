package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/woxQAQ/wasmadd/internal/adder"
	"github.com/woxQAQ/wasmadd/internal/config"
	"github.com/woxQAQ/wasmadd/internal/prompt"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	flags := pflag.NewFlagSet("adder", pflag.ExitOnError)
	configPath := flags.String("config", "", "Path to configuration file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.Int("repeat", 1, "Number of prompt/compute cycles")
	flags.String("prompt", prompt.ModeAuto, "Prompt mode (auto, line, tui)")
	flags.String("page", "index.html", "HTML page results are appended to (empty keeps it in memory)")
	flags.String("title", "", "Title for a newly created page")
	flags.String("base-url", "", "Fetch the module over HTTP relative to this URL")
	flags.String("module", config.DefaultModulePath, "Path of the Wasm module")
	flags.String("sha256", "", "Expected hex sha256 of the module")
	flags.String("manifest", "", "Directory holding a manifest.yaml")
	flags.String("export", "add", "Name of the export to call")
	flags.Bool("wasm-debug", false, "Enable Wasm debug logging")
	flags.String("cache-dir", "", "Compilation cache directory")
	flags.Int("timeout", 30, "Export call timeout in seconds")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.LogLevel == "debug" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}

	defer logger.Sync()

	logger.Info("Starting adder",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("date", date),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prompter, err := prompt.New(cfg.Prompt.Mode, os.Stdin, os.Stdout)
	if err != nil {
		logger.Fatal("Failed to create prompter", zap.Error(err))
	}

	a, err := adder.New(ctx, cfg, prompter, adder.NewConsole(logger), logger)
	if err != nil {
		logger.Fatal("Failed to create adder", zap.Error(err))
	}
	defer a.Close(context.WithoutCancel(ctx))

	if err := a.Run(ctx, cfg.Repeat); err != nil {
		var cycleErr *adder.CycleError
		if errors.As(err, &cycleErr) {
			logger.Error("Cycles failed", zap.Int("failed", len(cycleErr.Errs)), zap.Int("cycles", cycleErr.Cycles))
		} else {
			logger.Error("Run failed", zap.Error(err))
		}
		a.Close(context.WithoutCancel(ctx))
		logger.Sync()
		os.Exit(1)
	}
}
