// Package loader reads dashboard data from local files: full dashboards in
// YAML, JSON or TOML, and single statements from HTML tables.
package loader

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/seenimoa/dashcore/internal/fixtures"
	"github.com/seenimoa/dashcore/pkg/models"
)

var (
	ErrUnknownStatement  = errors.New("unknown statement")
	ErrUnknownDataset    = errors.New("unknown pie dataset")
	ErrDuplicateID       = errors.New("duplicate id")
	ErrEmptyDashboardDoc = errors.New("dashboard file defines no statements or pies")
)

// Load returns the dashboard stored at path, or the built-in mock dashboard
// when path is empty.
func Load(path string) (*models.Dashboard, error) {
	if path == "" {
		return fixtures.Dashboard(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a dashboard document. The format follows the file
// extension (.yaml, .yml, .json, .toml).
func LoadFile(path string) (*models.Dashboard, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading dashboard %s: %w", path, err)
	}

	var d models.Dashboard
	if err := v.Unmarshal(&d); err != nil {
		return nil, fmt.Errorf("decoding dashboard %s: %w", path, err)
	}
	if err := Check(&d); err != nil {
		return nil, fmt.Errorf("dashboard %s: %w", path, err)
	}
	return &d, nil
}

// Check validates every statement in the dashboard and rejects duplicate
// statement or pie ids.
func Check(d *models.Dashboard) error {
	if len(d.Statements) == 0 && len(d.Pies) == 0 {
		return ErrEmptyDashboardDoc
	}
	seen := make(map[string]bool, len(d.Statements))
	for i, st := range d.Statements {
		if st == nil {
			return fmt.Errorf("statement %d is empty", i)
		}
		if seen[st.ID] {
			return fmt.Errorf("%w: statement %q", ErrDuplicateID, st.ID)
		}
		seen[st.ID] = true
		if err := st.Validate(); err != nil {
			return fmt.Errorf("statement %q: %w", st.ID, err)
		}
	}
	pies := make(map[string]bool, len(d.Pies))
	for _, p := range d.Pies {
		if pies[p.ID] {
			return fmt.Errorf("%w: pie %q", ErrDuplicateID, p.ID)
		}
		pies[p.ID] = true
	}
	return nil
}

// Statement looks up a statement by id.
func Statement(d *models.Dashboard, id string) (*models.Statement, error) {
	st := d.Statement(id)
	if st == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatement, id)
	}
	return st, nil
}

// Pie looks up a pie dataset by id.
func Pie(d *models.Dashboard, id string) (*models.PieDataset, error) {
	p := d.Pie(id)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, id)
	}
	return p, nil
}
