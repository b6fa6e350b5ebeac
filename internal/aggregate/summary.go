package aggregate

import (
	"math"

	"github.com/seenimoa/dashcore/pkg/models"
)

// Figure is a single KPI value with its comparison against the previous
// period. HasPrevious is false for the oldest period.
type Figure struct {
	Value       float64 `json:"value"`
	Previous    float64 `json:"previous"`
	Change      float64 `json:"change"`
	HasPrevious bool    `json:"has_previous"`
}

// Summary is the KPI card bundle for one period.
type Summary struct {
	Period          string  `json:"period"`
	PeriodIndex     int     `json:"period_index"`
	Revenue         Figure  `json:"revenue"`
	Expenses        Figure  `json:"expenses"`
	OtherIncome     Figure  `json:"other_income"`
	Taxes           Figure  `json:"taxes"`
	GrossProfit     Figure  `json:"gross_profit"`
	OperatingIncome Figure  `json:"operating_income"`
	NetIncome       Figure  `json:"net_income"`
	GrossMargin     float64 `json:"gross_margin"`
	OperatingMargin float64 `json:"operating_margin"`
	NetMargin       float64 `json:"net_margin"`
}

// Summarize computes the derived metrics for period p and compares each
// against period p+1, the period before it. p is not clamped.
func Summarize(st *models.Statement, p int) Summary {
	s := Summary{PeriodIndex: p}
	if ValidPeriod(st, p) {
		s.Period = st.Periods[p]
	}

	s.Revenue = figure(st, p, func(q int) float64 { return SectionTotal(st, models.SectionRevenue, q) })
	s.Expenses = figure(st, p, func(q int) float64 { return SectionTotal(st, models.SectionExpenses, q) })
	s.OtherIncome = figure(st, p, func(q int) float64 { return SectionTotal(st, models.SectionOtherIncome, q) })
	s.Taxes = figure(st, p, func(q int) float64 { return SectionTotal(st, models.SectionTaxes, q) })
	s.GrossProfit = figure(st, p, func(q int) float64 { return GrossProfit(st, q) })
	s.OperatingIncome = figure(st, p, func(q int) float64 { return OperatingIncome(st, q) })
	s.NetIncome = figure(st, p, func(q int) float64 { return NetIncome(st, q) })

	s.GrossMargin = PercentOfRevenue(s.GrossProfit.Value, st, p)
	s.OperatingMargin = PercentOfRevenue(s.OperatingIncome.Value, st, p)
	s.NetMargin = PercentOfRevenue(s.NetIncome.Value, st, p)
	return s
}

func figure(st *models.Statement, p int, metric func(int) float64) Figure {
	f := Figure{Value: metric(p)}
	if ValidPeriod(st, p+1) {
		f.Previous = metric(p + 1)
		f.Change = PercentChange(f.Value, f.Previous)
		f.HasPrevious = true
	}
	return f
}

// Row is one line of a rendered statement table.
type Row struct {
	Name             string  `json:"name"`
	Tooltip          string  `json:"tooltip,omitempty"`
	Value            float64 `json:"value"`
	Previous         float64 `json:"previous"`
	Change           float64 `json:"change"`
	PercentOfRevenue float64 `json:"percent_of_revenue"`
	HasPrevious      bool    `json:"has_previous"`
}

// SectionRows holds a section's item rows followed by its total.
type SectionRows struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Items []Row  `json:"items"`
	Total Row    `json:"total"`
}

// Rows builds table rows for every section of the statement in declaration
// order, with per-item change against p+1 and percent of revenue.
func Rows(st *models.Statement, p int) []SectionRows {
	if st == nil {
		return nil
	}
	out := make([]SectionRows, 0, len(st.Sections))
	hasPrev := ValidPeriod(st, p+1)
	for _, sec := range st.Sections {
		sr := SectionRows{ID: sec.ID, Title: sec.Title, Items: make([]Row, 0, len(sec.Items))}
		for i := range sec.Items {
			item := &sec.Items[i]
			r := Row{Name: item.Name, Tooltip: item.Tooltip, Value: valueAt(item, p)}
			if hasPrev {
				r.Previous = valueAt(item, p+1)
				r.Change = PercentChange(r.Value, r.Previous)
				r.HasPrevious = true
			}
			r.PercentOfRevenue = PercentOfRevenue(r.Value, st, p)
			sr.Items = append(sr.Items, r)
		}

		total := Row{Name: "Total " + sec.Title, Value: SectionTotal(st, sec.ID, p)}
		if hasPrev {
			total.Previous = SectionTotal(st, sec.ID, p+1)
			total.Change = PercentChange(total.Value, total.Previous)
			total.HasPrevious = true
		}
		total.PercentOfRevenue = PercentOfRevenue(total.Value, st, p)
		sr.Total = total
		out = append(out, sr)
	}
	return out
}

// Trend returns a section's totals across every period, oldest first, for
// sparkline rendering.
func Trend(st *models.Statement, sectionID string) []float64 {
	if st == nil {
		return nil
	}
	n := len(st.Periods)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = SectionTotal(st, sectionID, n-1-i)
	}
	return out
}

// CAGR returns the compound growth rate per period, in percent, of a
// section's total between the oldest and the most recent period. Non-positive
// endpoints return 0.
func CAGR(st *models.Statement, sectionID string) float64 {
	if st == nil || len(st.Periods) < 2 {
		return 0
	}
	steps := float64(len(st.Periods) - 1)
	start := SectionTotal(st, sectionID, len(st.Periods)-1)
	end := SectionTotal(st, sectionID, 0)
	if start <= 0 || end <= 0 {
		return 0
	}
	return (math.Pow(end/start, 1/steps) - 1) * 100
}
