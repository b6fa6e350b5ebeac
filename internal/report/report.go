package report

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/seenimoa/dashcore/internal/aggregate"
	"github.com/seenimoa/dashcore/pkg/models"
	"github.com/seenimoa/dashcore/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Generator: chart and template rendering
// ════════════════════════════════════════════════════════════════════

// ReportFormat specifies the output format.
type ReportFormat string

const (
	FormatHTML ReportFormat = "html"
	FormatPDF  ReportFormat = "pdf"
	FormatText ReportFormat = "text"
)

var (
	ErrNilStatement  = errors.New("statement is nil")
	ErrInvalidPeriod = errors.New("period out of range")
)

// ParseFormat maps a CLI flag value to a ReportFormat.
func ParseFormat(s string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatHTML:
		return FormatHTML, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// ReportConfig controls report generation behaviour.
type ReportConfig struct {
	Format      ReportFormat
	Title       string            // custom report title (optional, default: statement title)
	Period      int               // selected period index, 0 = current
	Currency    string            // currency symbol
	NumberStyle utils.NumberStyle // digit grouping
	Pie         *models.PieDataset
	PieOpts     PieOptions
	ChartCfg    ChartConfig
	GeneratedAt time.Time // zero uses time.Now
}

// DefaultReportConfig returns sensible defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Format:      FormatText,
		Currency:    "$",
		NumberStyle: utils.StyleWestern,
		PieOpts:     PieOptions{Radius: 120, Palette: DefaultPalette},
		ChartCfg:    DefaultChartConfig(),
	}
}

// ════════════════════════════════════════════════════════════════════
// Report Data, flattened for the templates
// ════════════════════════════════════════════════════════════════════

// ReportData is the template model passed to the HTML template.
type ReportData struct {
	Title          string
	StatementTitle string
	Period         string
	PreviousPeriod string
	GeneratedAt    string

	KPIs     []KPIRow
	Sections []SectionTable

	NetMargin string

	Notes     string        // Markdown source, printed by the text report
	NotesHTML template.HTML // rendered by goldmark

	// Charts (inline SVG)
	TrendChartSVG  template.HTML
	SectionBarSVG  template.HTML
	MarginGaugeSVG template.HTML
	PieChartSVG    template.HTML
	PieTitle       string
}

// KPIRow is one card of the key-figures strip.
type KPIRow struct {
	Label       string
	Value       string
	Change      string
	Arrow       string
	ChangeClass string // CSS class: up, down, flat
}

// SectionTable is a statement section with its item rows and total.
type SectionTable struct {
	Title string
	Rows  []TableRow
	Total TableRow
}

// TableRow is a formatted statement table row.
type TableRow struct {
	Name        string
	Tooltip     string
	Value       string
	Previous    string
	Change      string
	Arrow       string
	Share       string
	ChangeClass string
}

// ════════════════════════════════════════════════════════════════════
// Generate Report
// ════════════════════════════════════════════════════════════════════

// GenerateHTML generates a self-contained HTML report for a statement.
func GenerateHTML(st *models.Statement, cfg ReportConfig) (string, error) {
	data, err := buildReportData(st, cfg, true)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New("report").Parse(ReportTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}

// GenerateText generates a plain-text statement report (terminal / CLI friendly).
func GenerateText(st *models.Statement, cfg ReportConfig) (string, error) {
	data, err := buildReportData(st, cfg, false)
	if err != nil {
		return "", err
	}
	return renderTextReport(data), nil
}

// ════════════════════════════════════════════════════════════════════
// Internal: template data
// ════════════════════════════════════════════════════════════════════

func buildReportData(st *models.Statement, cfg ReportConfig, charts bool) (ReportData, error) {
	if st == nil {
		return ReportData{}, ErrNilStatement
	}
	p := cfg.Period
	if !aggregate.ValidPeriod(st, p) {
		return ReportData{}, fmt.Errorf("%w: %d (statement has %d periods)", ErrInvalidPeriod, p, len(st.Periods))
	}

	now := cfg.GeneratedAt
	if now.IsZero() {
		now = time.Now()
	}
	money := func(v float64) string { return utils.FormatCurrency(v, cfg.Currency, cfg.NumberStyle) }

	data := ReportData{
		Title:          cfg.Title,
		StatementTitle: st.Title,
		Period:         st.Periods[p],
		GeneratedAt:    now.Format("02 Jan 2006, 15:04 MST"),
	}
	if data.Title == "" {
		data.Title = st.Title
	}
	if aggregate.ValidPeriod(st, p+1) {
		data.PreviousPeriod = st.Periods[p+1]
	}

	sum := aggregate.Summarize(st, p)
	for _, k := range []struct {
		label string
		fig   aggregate.Figure
	}{
		{"Revenue", sum.Revenue},
		{"Gross Profit", sum.GrossProfit},
		{"Operating Income", sum.OperatingIncome},
		{"Net Income", sum.NetIncome},
	} {
		row := KPIRow{Label: k.label, Value: money(k.fig.Value)}
		if k.fig.HasPrevious {
			row.Change = utils.FormatPct(k.fig.Change)
			row.Arrow = utils.Arrow(k.fig.Change)
			row.ChangeClass = changeClass(k.fig.Change)
		}
		data.KPIs = append(data.KPIs, row)
	}
	data.NetMargin = utils.FormatShare(sum.NetMargin)

	data.Notes = strings.TrimSpace(st.Notes)
	if charts && data.Notes != "" {
		notes, err := renderNotes(data.Notes)
		if err != nil {
			return ReportData{}, err
		}
		data.NotesHTML = notes
	}

	for _, sec := range aggregate.Rows(st, p) {
		table := SectionTable{Title: sec.Title, Total: formatRow(sec.Total, money)}
		for _, r := range sec.Items {
			table.Rows = append(table.Rows, formatRow(r, money))
		}
		data.Sections = append(data.Sections, table)
	}

	if charts {
		data.TrendChartSVG = template.HTML(trendChart(st, cfg.ChartCfg))
		data.SectionBarSVG = template.HTML(sectionBarChart(st, p, cfg.ChartCfg, money))
		data.MarginGaugeSVG = template.HTML(GaugeChart(sum.NetMargin, "Net Margin", 220))
		if cfg.Pie != nil {
			data.PieChartSVG = template.HTML(PieChart(*cfg.Pie, cfg.PieOpts))
			data.PieTitle = cfg.Pie.Title
		}
	}
	return data, nil
}

func formatRow(r aggregate.Row, money func(float64) string) TableRow {
	row := TableRow{
		Name:    r.Name,
		Tooltip: r.Tooltip,
		Value:   money(r.Value),
		Share:   utils.FormatShare(r.PercentOfRevenue),
	}
	if r.HasPrevious {
		row.Previous = money(r.Previous)
		row.Change = utils.FormatPct(r.Change)
		row.Arrow = utils.Arrow(r.Change)
		row.ChangeClass = changeClass(r.Change)
	}
	return row
}

func changeClass(pct float64) string {
	switch {
	case pct > 0:
		return "up"
	case pct < 0:
		return "down"
	default:
		return "flat"
	}
}

// trendChart plots revenue, expenses and net income over all periods,
// oldest on the left.
func trendChart(st *models.Statement, cfg ChartConfig) string {
	n := len(st.Periods)
	labels := make([]string, n)
	net := make([]float64, n)
	for i := 0; i < n; i++ {
		labels[i] = st.Periods[n-1-i]
		net[i] = aggregate.NetIncome(st, n-1-i)
	}
	cfg.Title = "Revenue, Expenses and Net Income"
	return LineChart([]LineChartSeries{
		{Name: "Revenue", Values: aggregate.Trend(st, models.SectionRevenue), Color: "#2563eb"},
		{Name: "Expenses", Values: aggregate.Trend(st, models.SectionExpenses), Color: "#dc2626"},
		{Name: "Net Income", Values: net, Color: "#16a34a"},
	}, labels, cfg)
}

// sectionBarChart compares every section's total for period p.
func sectionBarChart(st *models.Statement, p int, cfg ChartConfig, money func(float64) string) string {
	items := make([]BarItem, 0, len(st.Sections))
	for _, sec := range st.Sections {
		items = append(items, BarItem{Label: sec.Title, Value: aggregate.SectionTotal(st, sec.ID, p)})
	}
	cfg.Title = "Section Totals, " + st.Periods[p]
	return HorizontalBarChart(items, money, cfg)
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderTextReport(d ReportData) string {
	var sb strings.Builder
	line := strings.Repeat("═", 78)
	thinLine := strings.Repeat("─", 78)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", d.Title))
	if d.PreviousPeriod != "" {
		sb.WriteString(fmt.Sprintf("  Period: %s (vs %s)\n", d.Period, d.PreviousPeriod))
	} else {
		sb.WriteString(fmt.Sprintf("  Period: %s\n", d.Period))
	}
	sb.WriteString(fmt.Sprintf("  Generated: %s\n", d.GeneratedAt))
	sb.WriteString(line + "\n")

	sb.WriteString("\n  ★ KEY FIGURES\n")
	for _, k := range d.KPIs {
		sb.WriteString(fmt.Sprintf("    %-20s %20s  %s\n", k.Label, k.Value, changeCell(k.Change, k.Arrow)))
	}
	sb.WriteString(fmt.Sprintf("    %-20s %20s\n", "Net Margin", d.NetMargin))
	sb.WriteString(thinLine + "\n")

	for _, sec := range d.Sections {
		sb.WriteString(fmt.Sprintf("\n  ■ %s\n", strings.ToUpper(sec.Title)))
		for _, r := range sec.Rows {
			sb.WriteString(textRow(r))
		}
		sb.WriteString("    " + strings.Repeat("·", 74) + "\n")
		sb.WriteString(textRow(sec.Total))
	}

	if d.Notes != "" {
		sb.WriteString("\n  ✎ NOTES\n")
		for _, l := range strings.Split(d.Notes, "\n") {
			sb.WriteString("    " + l + "\n")
		}
	}

	sb.WriteString("\n" + line + "\n")
	return sb.String()
}

func textRow(r TableRow) string {
	prev := r.Previous
	if prev == "" {
		prev = utils.Placeholder
	}
	return fmt.Sprintf("    %-24s %16s %16s  %-9s %7s\n",
		truncate(r.Name, 24), r.Value, prev, changeCell(r.Change, r.Arrow), r.Share)
}

func changeCell(change, arrow string) string {
	if change == "" {
		return utils.Placeholder
	}
	return change + " " + arrow
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
