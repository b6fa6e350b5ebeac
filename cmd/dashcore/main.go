// Command dashcore computes and serves financial dashboard figures.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/seenimoa/dashcore/internal/config"
	"github.com/seenimoa/dashcore/internal/loader"
	"github.com/seenimoa/dashcore/internal/logging"
	"github.com/seenimoa/dashcore/internal/report"
	"github.com/seenimoa/dashcore/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root command's PersistentPreRunE.
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dashcore",
	Short: "dashcore — financial statement metrics and pie geometry",
	Long: `dashcore computes the numbers behind financial dashboard widgets:
statement section totals, gross profit, operating and net income,
percent-of-revenue and period-over-period change, plus SVG arc geometry
for revenue-breakdown pie charts. It can print them, render reports and
charts, or serve them over HTTP with a live snapshot stream.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger = logging.WithComponent(logging.New(cfg.Logging, os.Stderr), logging.ComponentCLI)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("file", "", "dashboard data file (.yaml, .json, .toml); default: dashboard.data_file or built-in data")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(pieCmd)
	rootCmd.AddCommand(importHTMLCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadDashboard resolves the --file flag, falling back to dashboard.data_file.
func loadDashboard(cmd *cobra.Command) (*models.Dashboard, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = cfg.Dashboard.DataFile
	}
	d, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	source := path
	if source == "" {
		source = "built-in"
	}
	logger.Debug("dashboard loaded", "source", source,
		"statements", len(d.Statements), "pies", len(d.Pies))
	return d, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dashcore %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show resolved configuration and data source",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDashboard(cmd)
		if err != nil {
			return err
		}

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  dashcore — Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		dataFile := cfg.Dashboard.DataFile
		if dataFile == "" {
			dataFile = "(built-in mock data)"
		}
		fmt.Printf("    Data file:     %s\n", dataFile)
		fmt.Printf("    Statement:     %s (period %d)\n", cfg.Dashboard.Statement, cfg.Dashboard.Period)
		fmt.Printf("    Pie dataset:   %s\n", cfg.Dashboard.PieDataset)
		fmt.Printf("    Currency:      %s (%s)\n", cfg.Dashboard.Currency, cfg.Dashboard.NumberStyle)
		fmt.Printf("    Feed:          enabled=%t every %s, ±%.1f%%\n", cfg.Feed.Enabled, cfg.Feed.Interval(), cfg.Feed.JitterPct)
		fmt.Printf("    API Server:    %s:%d (page=%t, cache %s)\n", cfg.API.Host, cfg.API.Port, cfg.API.ServeUI, cfg.API.CacheTTL())
		fmt.Printf("    Logging:       %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)
		if engine := report.DetectPDFEngine(); engine != report.EngineNone {
			fmt.Printf("    PDF export:    ✓ %s\n", engine)
		} else {
			fmt.Println("    PDF export:    ✗ (HTML fallback)")
		}
		fmt.Println()

		fmt.Printf("  Dashboard: %s\n", d.Name)
		for _, st := range d.Statements {
			fmt.Printf("    statement %-12s %d periods, %d sections\n", st.ID, len(st.Periods), len(st.Sections))
		}
		for _, p := range d.Pies {
			fmt.Printf("    pie       %-12s %d slices\n", p.ID, len(p.Slices))
		}
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
