package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/flalloc/cmd/flctl/logger"
	"github.com/joshuapare/flalloc/pool"
)

var (
	// Global flags
	verbose     bool
	quiet       bool
	jsonOut     bool
	showMetrics bool
	envFile     string
	arenaSize   int
	backing     string

	cfg Config
)

var rootCmd = &cobra.Command{
	Use:   "flctl",
	Short: "Drive a first-fit free-list pool",
	Long: `flctl exercises the flalloc free-list allocator. It replays allocation
scripts, runs randomized stress with invariant checks after every step,
and reports free-list layout and pool statistics.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		BoolVar(&showMetrics, "metrics", false, "Print Prometheus metrics after the command")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Load FLCTL_* variables from this file")
	rootCmd.PersistentFlags().IntVar(&arenaSize, "arena-size", 0, "Address space size in bytes (overrides FLCTL_ARENA_SIZE)")
	rootCmd.PersistentFlags().StringVar(&backing, "backing", "", "Backing memory: heap or mmap (overrides FLCTL_BACKING)")
}

// setup loads configuration, applies flag overrides and starts logging.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("arena-size") {
		loaded.ArenaSize = arenaSize
	}
	if cmd.Flags().Changed("backing") {
		loaded.Backing = backing
	}
	if err := loaded.validate(); err != nil {
		return err
	}
	level, err := logger.ParseLevel(loaded.LogLevel)
	if err != nil {
		return err
	}
	if verbose && level > slog.LevelInfo {
		level = slog.LevelInfo
	}
	if err := logger.Init(logger.Options{Level: level, File: loaded.LogFile}); err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	cfg = loaded
	logger.Debug("config loaded", "arena_size", cfg.ArenaSize, "backing", cfg.Backing)
	return nil
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printStats writes a human-readable pool summary with grouped digits.
func printStats(s pool.Stats) {
	if quiet {
		return
	}
	p := message.NewPrinter(language.English)
	p.Fprintf(os.Stdout, "\nPool Statistics\n")
	p.Fprintf(os.Stdout, "  Capacity:      %d bytes\n", s.Capacity)
	p.Fprintf(os.Stdout, "  Free:          %d bytes in %d block(s), largest %d\n", s.FreeBytes, s.FreeBlocks, s.LargestFree)
	p.Fprintf(os.Stdout, "  Live:          %d bytes in %d block(s)\n", s.LiveBytes, s.Live)
	p.Fprintf(os.Stdout, "  Header bytes:  %d\n", s.Overhead())
	p.Fprintf(os.Stdout, "  Calls:         %d alloc, %d free, %d failed\n", s.Allocs, s.Frees, s.Failures)
	p.Fprintf(os.Stdout, "  Splits/Merges: %d / %d\n", s.Splits, s.Merges)
}

// printMetrics gathers reg and writes it in the Prometheus text format.
func printMetrics(reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
			return err
		}
	}
	return nil
}
