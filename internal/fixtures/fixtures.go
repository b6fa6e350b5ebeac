// Package fixtures holds the built-in mock dashboard: a four-quarter income
// statement and the revenue-breakdown pie datasets. It is used when no data
// file is configured and as shared test data.
package fixtures

import "github.com/seenimoa/dashcore/pkg/models"

// StatementID is the id of the built-in income statement.
const StatementID = "income"

// Dashboard returns a fresh copy of the mock dashboard. Callers may mutate it.
func Dashboard() *models.Dashboard {
	return &models.Dashboard{
		Name:       "Financial Overview",
		Statements: []*models.Statement{IncomeStatement()},
		Pies:       RevenueBreakdown(),
	}
}

// IncomeStatement returns the mock quarterly income statement, most recent
// quarter first.
func IncomeStatement() *models.Statement {
	return &models.Statement{
		ID:      StatementID,
		Title:   "Income Statement",
		Periods: []string{"Q4 2024", "Q3 2024", "Q2 2024", "Q1 2024"},
		Notes: "Q4 revenue grew **8.7%** on holiday product demand.\n\n" +
			"- Marketing spend rose ahead of the Q1 launch\n" +
			"- Other income includes a one-off asset sale",
		Sections: []models.Section{
			{
				ID:    models.SectionRevenue,
				Title: "Revenue",
				Items: []models.LineItem{
					{Name: "Product Sales", Values: []float64{850000, 780000, 720000, 690000}, Tooltip: "Hardware and licensed software"},
					{Name: "Service Revenue", Values: []float64{320000, 300000, 285000, 270000}, Tooltip: "Consulting and support contracts"},
					{Name: "Subscription Revenue", Values: []float64{80000, 70000, 65000, 60000}},
				},
			},
			{
				ID:    models.SectionExpenses,
				Title: "Expenses",
				Items: []models.LineItem{
					{Name: models.CostOfGoodsSold, Values: []float64{620000, 580000, 540000, 520000}, Tooltip: "Direct production costs"},
					{Name: "Salaries & Wages", Values: []float64{210000, 205000, 198000, 195000}},
					{Name: "Marketing", Values: []float64{85000, 78000, 72000, 70000}},
					{Name: "Rent & Utilities", Values: []float64{45000, 45000, 44000, 44000}},
					{Name: "Depreciation", Values: []float64{30000, 29000, 28000, 27000}},
				},
			},
			{
				ID:    models.SectionOtherIncome,
				Title: "Other Income",
				Items: []models.LineItem{
					{Name: "Interest Income", Values: []float64{12000, 11000, 10500, 10000}},
					{Name: "Investment Gains", Values: []float64{8000, -3000, 5000, 2000}},
				},
			},
			{
				ID:    models.SectionTaxes,
				Title: "Taxes",
				Items: []models.LineItem{
					{Name: "Income Tax", Values: []float64{70000, 55000, 50000, 40000}},
				},
			},
		},
	}
}

// RevenueBreakdown returns the selectable revenue pie datasets.
func RevenueBreakdown() []models.PieDataset {
	return []models.PieDataset{
		{
			ID:    "region",
			Title: "Revenue by Region",
			Slices: []models.PieSlice{
				{Name: "North America", Value: 40},
				{Name: "Europe", Value: 30},
				{Name: "Asia Pacific", Value: 20},
				{Name: "Rest of World", Value: 10},
			},
		},
		{
			ID:    "product",
			Title: "Revenue by Product",
			Slices: []models.PieSlice{
				{Name: "Hardware", Value: 45},
				{Name: "Software", Value: 25},
				{Name: "Services", Value: 20},
				{Name: "Subscriptions", Value: 10},
			},
		},
		{
			ID:    "channel",
			Title: "Revenue by Channel",
			Slices: []models.PieSlice{
				{Name: "Direct", Value: 55},
				{Name: "Partners", Value: 30},
				{Name: "Online", Value: 15},
			},
		},
	}
}
