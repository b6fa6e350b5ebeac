package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/seenimoa/dashcore/pkg/models"
)

// SaveFile writes a dashboard document that LoadFile reads back. The format
// follows the file extension; an existing file is overwritten.
func SaveFile(path string, d *models.Dashboard) error {
	if err := Check(d); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	v := viper.New()
	v.Set("name", d.Name)
	v.Set("statements", statementMaps(d.Statements))
	v.Set("pies", pieMaps(d.Pies))

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing dashboard %s: %w", path, err)
	}
	return nil
}

// statementMaps spells out the document keys so the written file matches
// the mapstructure tags LoadFile decodes with.
func statementMaps(stmts []*models.Statement) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(stmts))
	for _, st := range stmts {
		sections := make([]map[string]interface{}, 0, len(st.Sections))
		for _, sec := range st.Sections {
			items := make([]map[string]interface{}, 0, len(sec.Items))
			for _, it := range sec.Items {
				item := map[string]interface{}{"name": it.Name, "values": it.Values}
				if it.Tooltip != "" {
					item["tooltip"] = it.Tooltip
				}
				items = append(items, item)
			}
			sections = append(sections, map[string]interface{}{
				"id":    sec.ID,
				"title": sec.Title,
				"items": items,
			})
		}
		m := map[string]interface{}{
			"id":       st.ID,
			"title":    st.Title,
			"periods":  st.Periods,
			"sections": sections,
		}
		if st.Notes != "" {
			m["notes"] = st.Notes
		}
		out = append(out, m)
	}
	return out
}

func pieMaps(pies []models.PieDataset) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(pies))
	for _, p := range pies {
		slices := make([]map[string]interface{}, 0, len(p.Slices))
		for _, s := range p.Slices {
			slices = append(slices, map[string]interface{}{"name": s.Name, "value": s.Value})
		}
		out = append(out, map[string]interface{}{
			"id":     p.ID,
			"title":  p.Title,
			"slices": slices,
		})
	}
	return out
}
