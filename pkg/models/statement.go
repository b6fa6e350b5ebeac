// Package models defines the shared data types: financial statements with
// their sections and line items, pie datasets, and the dashboard document
// that bundles them.
package models

import (
	"errors"
	"fmt"
)

// Distinguished section ids consumed by the derived-metric formulas.
const (
	SectionRevenue     = "revenue"
	SectionExpenses    = "expenses"
	SectionOtherIncome = "otherIncome"
	SectionTaxes       = "taxes"
)

// CostOfGoodsSold is the expense line subtracted from revenue for gross profit.
const CostOfGoodsSold = "Cost of Goods Sold"

var (
	ErrRaggedValues     = errors.New("line item values do not match period count")
	ErrDuplicateSection = errors.New("duplicate section id")
	ErrNoPeriods        = errors.New("statement has no periods")
)

// LineItem is a single named row of a statement, one value per period.
type LineItem struct {
	Name    string    `json:"name"              mapstructure:"name"`
	Values  []float64 `json:"values"            mapstructure:"values"`
	Tooltip string    `json:"tooltip,omitempty" mapstructure:"tooltip"`
}

// Section groups line items, e.g. Revenue or Expenses.
type Section struct {
	ID    string     `json:"id"    mapstructure:"id"`
	Title string     `json:"title" mapstructure:"title"`
	Items []LineItem `json:"items" mapstructure:"items"`
}

// Statement is a multi-period financial statement.
// Periods[0] is the most recent period; Periods[p+1] precedes Periods[p].
type Statement struct {
	ID       string    `json:"id"       mapstructure:"id"`
	Title    string    `json:"title"    mapstructure:"title"`
	Periods  []string  `json:"periods"  mapstructure:"periods"`
	Sections []Section `json:"sections" mapstructure:"sections"`
	Notes    string    `json:"notes,omitempty" mapstructure:"notes"` // Markdown commentary
}

// Section returns the section with the given id, or nil.
func (s *Statement) Section(id string) *Section {
	if s == nil {
		return nil
	}
	for i := range s.Sections {
		if s.Sections[i].ID == id {
			return &s.Sections[i]
		}
	}
	return nil
}

// Item returns the line item with the given name, or nil.
func (sec *Section) Item(name string) *LineItem {
	if sec == nil {
		return nil
	}
	for i := range sec.Items {
		if sec.Items[i].Name == name {
			return &sec.Items[i]
		}
	}
	return nil
}

// Validate checks the structure loaders rely on: at least one
// period, unique section ids, and one value per period on every item.
func (s *Statement) Validate() error {
	if len(s.Periods) == 0 {
		return ErrNoPeriods
	}
	seen := make(map[string]bool, len(s.Sections))
	for _, sec := range s.Sections {
		if seen[sec.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateSection, sec.ID)
		}
		seen[sec.ID] = true
		for _, item := range sec.Items {
			if len(item.Values) != len(s.Periods) {
				return fmt.Errorf("%w: %s/%s has %d values, want %d",
					ErrRaggedValues, sec.ID, item.Name, len(item.Values), len(s.Periods))
			}
		}
	}
	return nil
}

// Clone returns a deep copy so callers can mutate values without touching
// the source statement.
func (s *Statement) Clone() *Statement {
	if s == nil {
		return nil
	}
	out := &Statement{
		ID:       s.ID,
		Title:    s.Title,
		Periods:  append([]string(nil), s.Periods...),
		Sections: make([]Section, len(s.Sections)),
		Notes:    s.Notes,
	}
	for i, sec := range s.Sections {
		cp := Section{ID: sec.ID, Title: sec.Title, Items: make([]LineItem, len(sec.Items))}
		for j, item := range sec.Items {
			cp.Items[j] = LineItem{
				Name:    item.Name,
				Values:  append([]float64(nil), item.Values...),
				Tooltip: item.Tooltip,
			}
		}
		out.Sections[i] = cp
	}
	return out
}
