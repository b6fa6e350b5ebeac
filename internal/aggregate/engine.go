// Package aggregate turns a multi-period statement into the derived figures
// dashboard widgets display: section totals, gross/operating/net income,
// percent of revenue and period-over-period change.
//
// Every function is pure and never fails. A missing section or line item
// degrades to zero; a period index outside the statement yields NaN, which
// callers must clamp or guard before formatting.
package aggregate

import (
	"math"

	"github.com/seenimoa/dashcore/pkg/models"
)

// SectionTotal sums the values of every item in the section for period p,
// left to right in declaration order. A missing section totals 0.
func SectionTotal(st *models.Statement, sectionID string, p int) float64 {
	sec := st.Section(sectionID)
	if sec == nil {
		return 0
	}
	total := 0.0
	for i := range sec.Items {
		total += valueAt(&sec.Items[i], p)
	}
	return total
}

// LineItemValue returns the named item's value for period p, or 0 when the
// section or item does not exist.
func LineItemValue(st *models.Statement, sectionID, itemName string, p int) float64 {
	item := st.Section(sectionID).Item(itemName)
	if item == nil {
		return 0
	}
	return valueAt(item, p)
}

// GrossProfit is revenue minus the "Cost of Goods Sold" expense line.
func GrossProfit(st *models.Statement, p int) float64 {
	return SectionTotal(st, models.SectionRevenue, p) -
		LineItemValue(st, models.SectionExpenses, models.CostOfGoodsSold, p)
}

// OperatingIncome is revenue minus total expenses.
func OperatingIncome(st *models.Statement, p int) float64 {
	return SectionTotal(st, models.SectionRevenue, p) - SectionTotal(st, models.SectionExpenses, p)
}

// NetIncome is revenue - expenses + other income - taxes.
func NetIncome(st *models.Statement, p int) float64 {
	return SectionTotal(st, models.SectionRevenue, p) -
		SectionTotal(st, models.SectionExpenses, p) +
		SectionTotal(st, models.SectionOtherIncome, p) -
		SectionTotal(st, models.SectionTaxes, p)
}

// PercentChange returns the relative change from previous to current in
// percent. A zero base returns 0, which also reports a 0 -> x move as
// "no change"; use PercentChangeOK to tell the two apart.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / math.Abs(previous) * 100
}

// PercentChangeOK is PercentChange with an explicit insufficient-data flag.
func PercentChangeOK(current, previous float64) (float64, bool) {
	if previous == 0 || math.IsNaN(previous) || math.IsNaN(current) {
		return 0, false
	}
	return PercentChange(current, previous), true
}

// PercentOfRevenue expresses value as a percentage of the period's revenue.
// Zero revenue yields NaN.
func PercentOfRevenue(value float64, st *models.Statement, p int) float64 {
	revenue := SectionTotal(st, models.SectionRevenue, p)
	if revenue == 0 {
		return math.NaN()
	}
	return value / revenue * 100
}

// PercentOfRevenueOK is PercentOfRevenue with an explicit insufficient-data flag.
func PercentOfRevenueOK(value float64, st *models.Statement, p int) (float64, bool) {
	pct := PercentOfRevenue(value, st, p)
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0, false
	}
	return pct, true
}

// ValidPeriod reports whether p indexes one of the statement's periods.
func ValidPeriod(st *models.Statement, p int) bool {
	return st != nil && p >= 0 && p < len(st.Periods)
}

// ClampPeriod bounds p to the statement's period range. A statement without
// periods clamps to 0.
func ClampPeriod(st *models.Statement, p int) int {
	if st == nil || len(st.Periods) == 0 || p < 0 {
		return 0
	}
	if p >= len(st.Periods) {
		return len(st.Periods) - 1
	}
	return p
}

func valueAt(item *models.LineItem, p int) float64 {
	if p < 0 || p >= len(item.Values) {
		return math.NaN()
	}
	return item.Values[p]
}
