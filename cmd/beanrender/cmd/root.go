// Package cmd provides CLI commands for beanrender.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/config"
	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/pathutil"
)

var (
	cfgFile string
	debug   bool

	// appConfig is loaded once before any subcommand runs.
	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "beanrender",
	Short: "Render ledger documents as Beancount files",
	Long: `beanrender is a CLI tool that turns structured ledger documents (YAML)
into Beancount plain-text accounting files.

It supports:
- Rendering every Beancount directive with metadata, costs and prices
- Writing to stdout, a single file, or monthly files under the ledger root
- Recording render history in SQLite
- Dry-run mode for testing

Example:
  beanrender render ledger.yaml
  beanrender render ledger.yaml --monthly
  beanrender stats`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		exitOnError(err, "failed to load configuration")
		appConfig = cfg

		slog.SetDefault(newLogger(os.Stderr, debug, cfg))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(statsCmd)
}

// newLogger returns a text logger at Debug level when --debug or DEBUG=true is set.
func newLogger(w io.Writer, debugFlag bool, cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel(debugFlag, cfg),
	}))
}

func logLevel(debugFlag bool, cfg *config.Config) slog.Level {
	if debugFlag || (cfg != nil && cfg.Debug) {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// loadPaths validates the loaded configuration and builds the path resolver for the ledger root.
func loadPaths() (*pathutil.PathResolver, error) {
	cfg := appConfig
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	if err := cfg.Validate([]string{"ledger", "root"}); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	slog.Debug("Loaded configuration", "root", cfg.Ledger.Root, "env", cfg.AppEnv)

	return pathutil.New(pathutil.Config{
		LedgerRoot:   cfg.Ledger.Root,
		DatabasePath: cfg.Ledger.DBPath,
	}), nil
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
