// Package main implements the greenrun CLI - a TN5250 green-screen RPA
// engine and workflow orchestrator runner.
//
// This file serves as the entry point and command registration hub. The
// actual command implementations are split across multiple cmd_*.go files.
//
// # File Index
//
// Entry Point & Global State:
//   - main.go       - Entry point, rootCmd, global flags, init()
//
// Commands:
//   - cmd_run.go      - runCmd: execute a workflow file against a registry
//                        of components
//   - cmd_mockhost.go - mockhostCmd: start the in-tree mock TN5250 server
//   - cmd_validate.go - validateCmd: load and validate a catalog,
//                        navigation config, or workflow file without
//                        running anything
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"greenrun/internal/config"
	"greenrun/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	workspace  string
	timeout    time.Duration

	// logger is the CLI's own operational logger (startup, shutdown,
	// command dispatch), distinct from internal/logging's per-category
	// file logger used by the library packages (SPEC_FULL.md §3).
	logger *zap.Logger

	// cfg is the process-wide Config loaded in PersistentPreRunE.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "greenrun",
	Short: "greenrun - a TN5250 green-screen RPA engine",
	Long: `greenrun drives a legacy IBM 5250 (AS/400) green-screen application
over telnet, extracts named data fields from its screens, and sequences
that extraction with other workflow components (calculation, decisioning,
HTTP, database I/O, approval polling, email).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		}
		cfg.InitLogging(ws)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a greenrun config YAML file")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory for logs (default: current)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall command timeout")

	rootCmd.AddCommand(runCmd, mockhostCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
