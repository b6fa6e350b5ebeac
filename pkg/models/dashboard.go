package models

// PieSlice is one named share of a pie chart, as a percentage (0-100).
type PieSlice struct {
	Name  string  `json:"name"  mapstructure:"name"`
	Value float64 `json:"value" mapstructure:"value"`
}

// PieDataset is a selectable set of slices, e.g. revenue by region.
// Slices are expected to sum to 100; nothing renormalizes them.
type PieDataset struct {
	ID     string     `json:"id"     mapstructure:"id"`
	Title  string     `json:"title"  mapstructure:"title"`
	Slices []PieSlice `json:"slices" mapstructure:"slices"`
}

// Dashboard bundles the statements and pie datasets a dashboard renders.
type Dashboard struct {
	Name       string       `json:"name"       mapstructure:"name"`
	Statements []*Statement `json:"statements" mapstructure:"statements"`
	Pies       []PieDataset `json:"pies"       mapstructure:"pies"`
}

// Statement returns the statement with the given id, or nil.
func (d *Dashboard) Statement(id string) *Statement {
	if d == nil {
		return nil
	}
	for _, st := range d.Statements {
		if st != nil && st.ID == id {
			return st
		}
	}
	return nil
}

// Pie returns the pie dataset with the given id, or nil.
func (d *Dashboard) Pie(id string) *PieDataset {
	if d == nil {
		return nil
	}
	for i := range d.Pies {
		if d.Pies[i].ID == id {
			return &d.Pies[i]
		}
	}
	return nil
}
