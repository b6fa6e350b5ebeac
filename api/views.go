package api

import (
	"math"
	"time"

	"github.com/seenimoa/dashcore/internal/aggregate"
	"github.com/seenimoa/dashcore/internal/feed"
	"github.com/seenimoa/dashcore/internal/pie"
	"github.com/seenimoa/dashcore/pkg/models"
)

// ============================================================
// JSON views
//
// encoding/json rejects NaN, which the aggregation core returns for
// undefined ratios, so every computed number goes through optional and
// is rendered as null when it is not finite.
// ============================================================

func optional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// StatementInfo lists a statement without its values.
type StatementInfo struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Periods  []string `json:"periods"`
	Sections []string `json:"sections"`
	Notes    string   `json:"notes,omitempty"`
}

func newStatementInfo(st *models.Statement) StatementInfo {
	info := StatementInfo{ID: st.ID, Title: st.Title, Periods: st.Periods, Notes: st.Notes}
	for _, sec := range st.Sections {
		info.Sections = append(info.Sections, sec.ID)
	}
	return info
}

// FigureView is a KPI value with its change against the previous period.
// Previous and Change are omitted for the oldest period.
type FigureView struct {
	Value    *float64 `json:"value"`
	Previous *float64 `json:"previous,omitempty"`
	Change   *float64 `json:"change,omitempty"`
}

func newFigureView(f aggregate.Figure) FigureView {
	v := FigureView{Value: optional(f.Value)}
	if f.HasPrevious {
		v.Previous = optional(f.Previous)
		v.Change = optional(f.Change)
	}
	return v
}

// SummaryView is the KPI card bundle for one period.
type SummaryView struct {
	Period          string     `json:"period"`
	PeriodIndex     int        `json:"period_index"`
	Revenue         FigureView `json:"revenue"`
	Expenses        FigureView `json:"expenses"`
	OtherIncome     FigureView `json:"other_income"`
	Taxes           FigureView `json:"taxes"`
	GrossProfit     FigureView `json:"gross_profit"`
	OperatingIncome FigureView `json:"operating_income"`
	NetIncome       FigureView `json:"net_income"`
	GrossMargin     *float64   `json:"gross_margin"`
	OperatingMargin *float64   `json:"operating_margin"`
	NetMargin       *float64   `json:"net_margin"`
}

func newSummaryView(s aggregate.Summary) SummaryView {
	return SummaryView{
		Period:          s.Period,
		PeriodIndex:     s.PeriodIndex,
		Revenue:         newFigureView(s.Revenue),
		Expenses:        newFigureView(s.Expenses),
		OtherIncome:     newFigureView(s.OtherIncome),
		Taxes:           newFigureView(s.Taxes),
		GrossProfit:     newFigureView(s.GrossProfit),
		OperatingIncome: newFigureView(s.OperatingIncome),
		NetIncome:       newFigureView(s.NetIncome),
		GrossMargin:     optional(s.GrossMargin),
		OperatingMargin: optional(s.OperatingMargin),
		NetMargin:       optional(s.NetMargin),
	}
}

// RowView is one statement table row.
type RowView struct {
	Name             string   `json:"name"`
	Tooltip          string   `json:"tooltip,omitempty"`
	Value            *float64 `json:"value"`
	Previous         *float64 `json:"previous,omitempty"`
	Change           *float64 `json:"change,omitempty"`
	PercentOfRevenue *float64 `json:"percent_of_revenue"`
}

func newRowView(r aggregate.Row) RowView {
	v := RowView{
		Name:             r.Name,
		Tooltip:          r.Tooltip,
		Value:            optional(r.Value),
		PercentOfRevenue: optional(r.PercentOfRevenue),
	}
	if r.HasPrevious {
		v.Previous = optional(r.Previous)
		v.Change = optional(r.Change)
	}
	return v
}

// SectionRowsView is a section's rows followed by its total.
type SectionRowsView struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Items []RowView `json:"items"`
	Total RowView   `json:"total"`
}

// RowsView is the response of GET /statements/{id}/rows.
type RowsView struct {
	StatementID string            `json:"statement_id"`
	Period      string            `json:"period"`
	PeriodIndex int               `json:"period_index"`
	Sections    []SectionRowsView `json:"sections"`
}

func newSectionRowsViews(rows []aggregate.SectionRows) []SectionRowsView {
	out := make([]SectionRowsView, 0, len(rows))
	for _, sr := range rows {
		v := SectionRowsView{ID: sr.ID, Title: sr.Title, Total: newRowView(sr.Total)}
		v.Items = make([]RowView, 0, len(sr.Items))
		for _, r := range sr.Items {
			v.Items = append(v.Items, newRowView(r))
		}
		out = append(out, v)
	}
	return out
}

// PieInfo lists a pie dataset.
type PieInfo struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Slices int     `json:"slices"`
	Total  float64 `json:"total"`
}

// WedgeView is one slice's arc descriptor plus its ready-made SVG path.
type WedgeView struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Color      string  `json:"color,omitempty"`
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
	StartX     float64 `json:"start_x"`
	StartY     float64 `json:"start_y"`
	EndX       float64 `json:"end_x"`
	EndY       float64 `json:"end_y"`
	LargeArc   int     `json:"large_arc"`
	SweepFlag  int     `json:"sweep_flag"`
	Path       string  `json:"path,omitempty"`
	Empty      bool    `json:"empty,omitempty"`
}

// PieView is the response of GET /pies/{id}.
type PieView struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	CenterX float64     `json:"cx"`
	CenterY float64     `json:"cy"`
	Radius  float64     `json:"r"`
	Total   float64     `json:"total"`
	Wedges  []WedgeView `json:"wedges"`
}

func newPieView(ds *models.PieDataset, wedges []pie.Wedge, palette []string) PieView {
	v := PieView{ID: ds.ID, Title: ds.Title, Total: pie.Total(ds.Slices)}
	if len(wedges) > 0 {
		v.CenterX, v.CenterY, v.Radius = wedges[0].Center.X, wedges[0].Center.Y, wedges[0].Radius
	}
	v.Wedges = make([]WedgeView, 0, len(wedges))
	for i, w := range wedges {
		wv := WedgeView{
			Name:       w.Name,
			Value:      w.Value,
			StartAngle: w.StartAngle,
			EndAngle:   w.EndAngle,
			StartX:     w.Start.X,
			StartY:     w.Start.Y,
			EndX:       w.End.X,
			EndY:       w.End.Y,
			LargeArc:   w.LargeArc,
			SweepFlag:  w.SweepFlag,
			Empty:      w.Empty(),
		}
		if !wv.Empty {
			wv.Path = w.Path()
		}
		if len(palette) > 0 {
			wv.Color = palette[i%len(palette)]
		}
		v.Wedges = append(v.Wedges, wv)
	}
	return v
}

// SnapshotView is the payload of a "snapshot" WebSocket message.
type SnapshotView struct {
	ID          string            `json:"id"`
	Seq         uint64            `json:"seq"`
	At          time.Time         `json:"at"`
	StatementID string            `json:"statement_id"`
	Summary     SummaryView       `json:"summary"`
	Sections    []SectionRowsView `json:"sections"`
}

func newSnapshotView(snap feed.Snapshot) SnapshotView {
	return SnapshotView{
		ID:          snap.ID,
		Seq:         snap.Seq,
		At:          snap.At,
		StatementID: snap.StatementID,
		Summary:     newSummaryView(snap.Summary),
		Sections:    newSectionRowsViews(aggregate.Rows(snap.Statement, 0)),
	}
}
