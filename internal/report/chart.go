// Package report renders dashboard figures: SVG charts (pie, trend line,
// section bars, margin gauge), plain-text statement tables and a
// self-contained HTML report with optional PDF export.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/dashcore/internal/pie"
	"github.com/seenimoa/dashcore/pkg/models"
	"github.com/seenimoa/dashcore/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 400)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 60)
	MarginBottom int    // bottom margin (default: 50)
	MarginLeft   int    // left margin (default: 70)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	TextColor    string // axis label color (default: "#333333")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  60,
		MarginBottom: 50,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// DefaultPalette is used when a pie is rendered without a palette.
var DefaultPalette = []string{"#2563eb", "#16a34a", "#f59e0b", "#dc2626", "#9333ea", "#0891b2"}

// ════════════════════════════════════════════════════════════════════
// Pie / Donut Chart
// ════════════════════════════════════════════════════════════════════

// PieOptions positions the pie and colours its wedges.
type PieOptions struct {
	CenterX float64
	CenterY float64
	Radius  float64
	Palette []string // wedge i uses Palette[i % len]
	Donut   float64  // inner radius as a fraction of Radius; 0 draws a full pie
}

// PieChart renders a dataset as an SVG pie with a legend to the right of the
// circle. Zero-value slices keep their palette slot and legend entry but draw
// no wedge.
func PieChart(ds models.PieDataset, opts PieOptions) string {
	if len(ds.Slices) == 0 {
		return emptySVG(ChartConfig{}, "No data")
	}
	if opts.Radius <= 0 {
		opts.Radius = 140
	}
	if opts.CenterX == 0 && opts.CenterY == 0 {
		opts.CenterX, opts.CenterY = opts.Radius+20, opts.Radius+40
	}
	palette := opts.Palette
	if len(palette) == 0 {
		palette = DefaultPalette
	}

	wedges := pie.Arcs(ds.Slices, opts.CenterX, opts.CenterY, opts.Radius)

	legendX := opts.CenterX + opts.Radius + 30
	width := int(legendX) + 220
	height := int(math.Max(opts.CenterY+opts.Radius+20, float64(60+len(wedges)*22)))

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		width, height, width, height))
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="white"/>`, width, height))

	title := ds.Title
	if title == "" {
		title = ds.ID
	}
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="22" font-size="14" font-weight="bold" fill="#333" text-anchor="middle">%s</text>`,
		opts.CenterX, escapeXML(title)))

	for i, w := range wedges {
		if w.Empty() {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path d="%s" fill="%s" stroke="white" stroke-width="1"><title>%s: %s</title></path>`,
			w.Path(), palette[i%len(palette)], escapeXML(w.Name), utils.FormatShare(w.Value)))
	}

	if opts.Donut > 0 && opts.Donut < 1 {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="white"/>`,
			opts.CenterX, opts.CenterY, opts.Radius*opts.Donut))
	}

	// Legend
	for i, w := range wedges {
		ly := 50 + float64(i)*22
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="12" height="12" fill="%s"/>`,
			legendX, ly-10, palette[i%len(palette)]))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="12" fill="#333">%s (%s)</text>`,
			legendX+18, ly, escapeXML(w.Name), utils.FormatShare(w.Value)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Line Chart
// ════════════════════════════════════════════════════════════════════

// LineChartSeries represents a named data series for line charts.
type LineChartSeries struct {
	Name   string
	Values []float64
	Color  string // hex color (optional, auto-assigned if empty)
}

// LineChart plots one or more series over shared x positions, e.g. section
// totals per period, oldest first. NaN values leave a gap in the markers and
// are skipped by the line. Labels name the x positions.
func LineChart(series []LineChartSeries, labels []string, cfg ChartConfig) string {
	if len(series) == 0 {
		return emptySVG(cfg, "No data")
	}
	cfg = withDefaults(cfg, "Trend")

	points := 0
	var all []float64
	for _, s := range series {
		points = max(points, len(s.Values))
		all = append(all, s.Values...)
	}
	ys, ok := newValueScale(all, 0.05)
	if !ok {
		return emptySVG(cfg, "No data points")
	}

	px, py, pw, ph := cfg.plotArea()
	xAt := func(i int) float64 {
		if points == 1 {
			return float64(px) + float64(pw)/2
		}
		return float64(px) + float64(i)*float64(pw)/float64(points-1)
	}
	yAt := func(v float64) float64 {
		return float64(py+ph) - ys.fraction(v)*float64(ph)
	}

	var sb strings.Builder
	chartFrame(&sb, cfg)

	const ticks = 5
	for i := 0; i <= ticks; i++ {
		v := ys.lo + (ys.hi-ys.lo)*float64(i)/ticks
		y := yAt(v)
		fmt.Fprintf(&sb, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor)
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, utils.FormatCurrencyCompact(v, ""))
	}

	for si, s := range series {
		color := s.Color
		if color == "" {
			color = DefaultPalette[si%len(DefaultPalette)]
		}

		var d strings.Builder
		for i, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			op := 'L'
			if d.Len() == 0 {
				op = 'M'
			}
			fmt.Fprintf(&d, "%c%.1f,%.1f ", op, xAt(i), yAt(v))
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>`, xAt(i), yAt(v), color)
		}
		if strings.Count(d.String(), ",") > 1 {
			fmt.Fprintf(&sb, `<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
				strings.TrimSpace(d.String()), color)
		}

		// legend swatch, top left of the plot
		ly := py + 10 + si*16
		fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="14" height="4" fill="%s"/>`, px+10, ly-2, color)
		fmt.Fprintf(&sb, `<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
			px+30, ly+4, cfg.TextColor, escapeXML(s.Name))
	}

	for i, label := range labels {
		if i >= points {
			break
		}
		fmt.Fprintf(&sb, `<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			xAt(i), py+ph+18, cfg.FontSize-1, cfg.TextColor, escapeXML(label))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Bar Chart (Horizontal)
// ════════════════════════════════════════════════════════════════════

// BarItem represents a single bar in a horizontal bar chart.
type BarItem struct {
	Label string
	Value float64
	Color string // optional; green/red by sign otherwise
}

// HorizontalBarChart draws one bar per item from a shared zero line, e.g.
// section totals for the selected period. format renders the value labels;
// nil prints one decimal.
func HorizontalBarChart(items []BarItem, format func(float64) string, cfg ChartConfig) string {
	if len(items) == 0 {
		return emptySVG(cfg, "No data")
	}
	cfg = withDefaults(cfg, "Comparison")
	cfg.MarginLeft = 140
	if format == nil {
		format = func(v float64) string { return fmt.Sprintf("%.1f", v) }
	}

	// the axis always includes zero so bars grow from it
	values := []float64{0}
	for _, it := range items {
		values = append(values, it.Value)
	}
	xs, _ := newValueScale(values, 0)

	px, py, pw, ph := cfg.plotArea()
	xAt := func(v float64) float64 { return float64(px) + xs.fraction(v)*float64(pw) }
	zeroX := xAt(0)

	slot := float64(ph) / float64(len(items))
	barH := math.Min(slot*0.7, 30)

	var sb strings.Builder
	chartFrame(&sb, cfg)
	if xs.lo < 0 {
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="#999" stroke-width="1"/>`,
			zeroX, py, zeroX, py+ph)
	}

	for i, it := range items {
		color := it.Color
		switch {
		case color != "":
		case it.Value < 0:
			color = "#ef5350"
		default:
			color = "#4caf50"
		}

		x0, x1 := zeroX, xAt(it.Value)
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		y := float64(py) + float64(i)*slot + (slot-barH)/2
		mid := y + barH/2 + 4

		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="2"/>`,
			x0, y, x1-x0, barH, color)
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, mid, cfg.FontSize, cfg.TextColor, escapeXML(it.Label))
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="%d" fill="%s">%s</text>`,
			x1+5, mid, cfg.FontSize, cfg.TextColor, escapeXML(format(it.Value)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Gauge Chart (for margins)
// ════════════════════════════════════════════════════════════════════

// marginBands colour a gauge by the percentage it shows.
var marginBands = []struct {
	below float64
	color string
}{
	{5, "#ef5350"},
	{10, "#ff9800"},
	{20, "#ffc107"},
	{math.Inf(1), "#4caf50"},
}

// GaugeChart draws a semicircular gauge for a percentage such as a net
// margin, sweeping clockwise from the left end (0%) over the top to the
// right end (100%). value is clamped to 0-100; NaN draws an empty track
// showing the placeholder.
func GaugeChart(value float64, label string, width int) string {
	if width == 0 {
		width = 200
	}
	height := width/2 + 30
	cx := float64(width) / 2
	cy := float64(width)/2 - 10
	r := float64(width)/2 - 20

	missing := math.IsNaN(value)
	if missing {
		value = 0
	}
	value = math.Max(0, math.Min(100, value))

	color := marginBands[len(marginBands)-1].color
	for _, b := range marginBands {
		if value < b.below {
			color = b.color
			break
		}
	}

	// same compass as the pie: 0° at twelve o'clock, clockwise
	const leftEnd = 270.0
	deg := leftEnd + value*1.8
	left := pie.PointOnCircle(cx, cy, r, leftEnd)
	right := pie.PointOnCircle(cx, cy, r, leftEnd+180)
	end := pie.PointOnCircle(cx, cy, r, deg)
	tip := pie.PointOnCircle(cx, cy, r*0.85, deg)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		width, height, width, height)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="white"/>`, width, height)

	arc := `<path d="M%.1f,%.1f A%.1f,%.1f 0 0,1 %.1f,%.1f" fill="none" stroke="%s" stroke-width="12" stroke-linecap="round"/>`
	fmt.Fprintf(&sb, arc, left.X, left.Y, r, r, right.X, right.Y, "#e0e0e0")

	text := utils.Placeholder
	if !missing {
		fmt.Fprintf(&sb, arc, left.X, left.Y, r, r, end.X, end.Y, color)
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333" stroke-width="2"/>`,
			cx, cy, tip.X, tip.Y)
		text = utils.FormatShare(value)
	}
	fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="5" fill="#333"/>`, cx, cy)
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="22" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cx, cy+25, color, text)
	fmt.Fprintf(&sb, `<text x="%.1f" y="%d" font-size="11" fill="#666" text-anchor="middle">%s</text>`,
		cx, height-5, escapeXML(label))

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

// withDefaults fills an unset chart size from DefaultChartConfig, keeping
// the caller's title, or title when that is empty too.
func withDefaults(cfg ChartConfig, title string) ChartConfig {
	if cfg.Width == 0 {
		t := cfg.Title
		cfg = DefaultChartConfig()
		cfg.Title = t
	}
	if cfg.Title == "" {
		cfg.Title = title
	}
	return cfg
}

// chartFrame writes the svg element, background and title.
func chartFrame(sb *strings.Builder, cfg ChartConfig) {
	sb.WriteString(svgHeader(cfg))
	fmt.Fprintf(sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, cfg.Width, cfg.Height, cfg.BgColor)
	fmt.Fprintf(sb, `<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title))
}

// valueScale maps finite data values onto [0, 1].
type valueScale struct{ lo, hi float64 }

// newValueScale spans the finite values, widened by pad (a fraction of the
// range) on both sides. A flat range gets unit width. ok is false when no
// value is finite.
func newValueScale(values []float64, pad float64) (valueScale, bool) {
	s := valueScale{lo: math.Inf(1), hi: math.Inf(-1)}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		s.lo = math.Min(s.lo, v)
		s.hi = math.Max(s.hi, v)
	}
	if s.lo > s.hi {
		return valueScale{}, false
	}
	span := s.hi - s.lo
	if span < 1e-3 {
		span = 1
		if pad == 0 {
			s.hi = s.lo + span
		}
	}
	s.lo -= span * pad
	s.hi += span * pad
	return s, true
}

func (s valueScale) fraction(v float64) float64 {
	return (v - s.lo) / (s.hi - s.lo)
}

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
