package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/llegregam/isoplot/internal/config"
	"github.com/llegregam/isoplot/internal/logger"
)

var (
	// Global flags
	cfgFile    string
	verbose    bool
	flagOutDir string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "isoplot",
	Short: "Isoplot: reshape and aggregate isotopic labelling data",
	Long: `Isoplot merges isotopologue measurements with a sample metadata template,
optionally normalizes corrected areas, aggregates replicates into mean and
standard deviation per group and exports the resulting tables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.isoplot/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&flagOutDir, "output-dir", "o", "", "directory for outputs (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so config set can repair the file
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{OutputDir: ".", TemplateName: "ModifyThis.xlsx", SheetIndex: 1, PlotWorkers: 4}
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if f.Changed("output-dir") && flagOutDir != "" {
		cfg.OutputDir = flagOutDir
	}
}

// currentConfig returns the loaded configuration, loading it when commands run
// without cobra initialization.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}

func newLogger() logger.ILogger {
	return logger.New(currentConfig().Verbose)
}
