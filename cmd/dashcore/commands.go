package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/dashcore/api"
	"github.com/seenimoa/dashcore/internal/aggregate"
	"github.com/seenimoa/dashcore/internal/feed"
	"github.com/seenimoa/dashcore/internal/loader"
	"github.com/seenimoa/dashcore/internal/logging"
	"github.com/seenimoa/dashcore/internal/pie"
	"github.com/seenimoa/dashcore/internal/report"
	"github.com/seenimoa/dashcore/pkg/models"
	"github.com/seenimoa/dashcore/pkg/utils"
)

// --- Metrics Command ---

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print the KPI summary and statement table for one period",
	Long: `Print key figures (revenue, gross profit, operating and net income,
net margin) and every statement row with its previous-period value,
percent change and share of revenue.

Examples:
  dashcore metrics
  dashcore metrics --period 2
  dashcore metrics --file data/dashboard.yaml --statement income`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, p, err := selectStatement(cmd)
		if err != nil {
			return err
		}
		rc := reportConfig(p)
		out, err := report.GenerateText(st, rc)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render an HTML or PDF statement report with charts",
	Long: `Render the statement report with a trend line, section bar chart,
net-margin gauge and the configured revenue pie.

PDF export uses wkhtmltopdf or headless chromium when installed and
otherwise writes the HTML next to the requested path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		formatFlag, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		format, err := report.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		d, st, p, err := selectStatementFrom(cmd)
		if err != nil {
			return err
		}
		rc := reportConfig(p)
		rc.Format = format
		if ds := d.Pie(cfg.Dashboard.PieDataset); ds != nil {
			rc.Pie = ds
		}

		switch format {
		case report.FormatText:
			text, err := report.GenerateText(st, rc)
			if err != nil {
				return err
			}
			return writeOutput(out, text)
		case report.FormatHTML:
			html, err := report.GenerateHTML(st, rc)
			if err != nil {
				return err
			}
			return writeOutput(out, html)
		default:
			if out == "" {
				return fmt.Errorf("--out is required for pdf output")
			}
			html, err := report.GenerateHTML(st, rc)
			if err != nil {
				return err
			}
			pdfCfg := report.DefaultPDFConfig()
			pdfCfg.OutputPath = out
			written, err := report.GeneratePDF(cmd.Context(), html, pdfCfg)
			if err != nil {
				return err
			}
			if written != out {
				logger.Warn("no PDF engine found, wrote HTML instead", "path", written)
			}
			fmt.Printf("Report written to %s\n", written)
			return nil
		}
	},
}

func init() {
	for _, c := range []*cobra.Command{metricsCmd, reportCmd} {
		c.Flags().String("statement", "", "statement id (default: dashboard.statement)")
		c.Flags().Int("period", -1, "period index, 0 = most recent (default: dashboard.period)")
	}
	reportCmd.Flags().String("format", "html", "output format: text, html or pdf")
	reportCmd.Flags().String("out", "", "output file (default: stdout; required for pdf)")
}

// --- Pie Command ---

var pieCmd = &cobra.Command{
	Use:   "pie",
	Short: "Print wedge geometry for a pie dataset",
	Long: `Print each wedge's start/end angle, arc endpoints, large-arc flag and
SVG path for the selected pie dataset, optionally writing the chart as SVG.

Examples:
  dashcore pie
  dashcore pie --dataset product --svg product.svg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDashboard(cmd)
		if err != nil {
			return err
		}
		id, _ := cmd.Flags().GetString("dataset")
		if id == "" {
			id = cfg.Dashboard.PieDataset
		}
		ds, err := loader.Pie(d, id)
		if err != nil {
			return err
		}

		if total := pie.Total(ds.Slices); math.Abs(total-100) > 0.01 {
			logger.Warn("pie slices do not sum to 100", logging.FieldDataset, ds.ID, "total", total)
		}

		pc := cfg.Pie
		wedges := pie.Arcs(ds.Slices, pc.CenterX, pc.CenterY, pc.Radius)

		fmt.Printf("\n  %s (%s)\n", ds.Title, ds.ID)
		fmt.Println("  " + strings.Repeat("─", 60))
		for _, w := range wedges {
			if w.Empty() {
				fmt.Printf("  %-18s %7s  (no wedge)\n", w.Name, utils.FormatShare(w.Value))
				continue
			}
			fmt.Printf("  %-18s %7s  %6.1f° → %6.1f°  large=%d\n",
				w.Name, utils.FormatShare(w.Value), w.StartAngle, w.EndAngle, w.LargeArc)
			fmt.Printf("    %s\n", w.Path())
		}
		fmt.Println()

		svgPath, _ := cmd.Flags().GetString("svg")
		if svgPath != "" {
			donut, _ := cmd.Flags().GetFloat64("donut")
			svg := report.PieChart(*ds, report.PieOptions{
				CenterX: pc.CenterX,
				CenterY: pc.CenterY,
				Radius:  pc.Radius,
				Palette: pc.Palette,
				Donut:   donut,
			})
			if err := writeOutput(svgPath, svg); err != nil {
				return err
			}
			fmt.Printf("SVG written to %s\n", svgPath)
		}
		return nil
	},
}

func init() {
	pieCmd.Flags().String("dataset", "", "pie dataset id (default: dashboard.pie_dataset)")
	pieCmd.Flags().String("svg", "", "write the pie chart as SVG to this file")
	pieCmd.Flags().Float64("donut", 0, "inner radius as a fraction of the radius (0 draws a full pie)")
}

// --- Import HTML Command ---

var importHTMLCmd = &cobra.Command{
	Use:   "import-html [file.html]",
	Short: "Import a statement from a local HTML table",
	Long: `Parse a statement table from a saved HTML page. Header cells give the
periods (most recent first); rows with a data-section attribute or a
single cell (<th> or <td colspan>) start a section.

Examples:
  dashcore import-html q4.html
  dashcore import-html q4.html --selector "#income" --out data/income.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		selector, _ := cmd.Flags().GetString("selector")
		id, _ := cmd.Flags().GetString("id")
		out, _ := cmd.Flags().GetString("out")

		st, err := loader.ImportHTMLFile(args[0], selector)
		if err != nil {
			return err
		}
		if id != "" {
			st.ID = id
		}
		logger.Info("statement imported", logging.FieldStatement, st.ID,
			"periods", len(st.Periods), "sections", len(st.Sections))

		text, err := report.GenerateText(st, reportConfig(0))
		if err != nil {
			return err
		}
		fmt.Print(text)

		if out != "" {
			d := &models.Dashboard{
				Name:       strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])),
				Statements: []*models.Statement{st},
			}
			if err := loader.SaveFile(out, d); err != nil {
				return err
			}
			fmt.Printf("Dashboard written to %s\n", out)
		}
		return nil
	},
}

func init() {
	importHTMLCmd.Flags().String("selector", "", "CSS selector of the table (default: first table)")
	importHTMLCmd.Flags().String("id", "", "statement id (default: table id or \"imported\")")
	importHTMLCmd.Flags().String("out", "", "write a dashboard file (.yaml, .json, .toml) with the imported statement")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and live snapshot feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDashboard(cmd)
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}

		srv := api.NewServer(cfg, d, logger)
		g, ctx := errgroup.WithContext(cmd.Context())

		if cfg.Feed.Enabled {
			st, err := loader.Statement(d, cfg.Dashboard.Statement)
			if err != nil {
				return err
			}
			producer, err := feed.New(st, cfg.Feed, logger)
			if err != nil {
				return err
			}
			srv.SetFeed(producer)
			g.Go(func() error {
				return producer.Run(ctx, srv.PublishSnapshot)
			})
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		g.Go(func() error {
			return srv.Serve(ctx, addr)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (default: api.port)")
}

// --- helpers ---

func selectStatement(cmd *cobra.Command) (*models.Statement, int, error) {
	_, st, p, err := selectStatementFrom(cmd)
	return st, p, err
}

// selectStatementFrom loads the dashboard and resolves --statement and
// --period against the config defaults. The period must exist.
func selectStatementFrom(cmd *cobra.Command) (*models.Dashboard, *models.Statement, int, error) {
	d, err := loadDashboard(cmd)
	if err != nil {
		return nil, nil, 0, err
	}
	id, _ := cmd.Flags().GetString("statement")
	if id == "" {
		id = cfg.Dashboard.Statement
	}
	st, err := loader.Statement(d, id)
	if err != nil {
		return nil, nil, 0, err
	}

	p, _ := cmd.Flags().GetInt("period")
	if p < 0 {
		p = cfg.Dashboard.Period
	}
	if !aggregate.ValidPeriod(st, p) {
		return nil, nil, 0, fmt.Errorf("%w: %d (statement %q has %d periods)",
			report.ErrInvalidPeriod, p, st.ID, len(st.Periods))
	}
	return d, st, p, nil
}

func reportConfig(p int) report.ReportConfig {
	rc := report.DefaultReportConfig()
	rc.Period = p
	rc.Currency = cfg.Dashboard.Currency
	rc.NumberStyle = utils.NumberStyle(cfg.Dashboard.NumberStyle)
	rc.PieOpts = report.PieOptions{
		CenterX: cfg.Pie.CenterX,
		CenterY: cfg.Pie.CenterY,
		Radius:  cfg.Pie.Radius,
		Palette: cfg.Pie.Palette,
	}
	return rc
}

// writeOutput writes content to path, or to stdout when path is empty.
func writeOutput(path, content string) error {
	if path == "" {
		fmt.Print(content)
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
