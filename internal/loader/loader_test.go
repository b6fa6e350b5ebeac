package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/seenimoa/dashcore/internal/aggregate"
	"github.com/seenimoa/dashcore/internal/fixtures"
	"github.com/seenimoa/dashcore/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Dashboard files
// ════════════════════════════════════════════════════════════════════

func TestLoadEmptyPathUsesFixtures(t *testing.T) {
	d, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if d.Statement(fixtures.StatementID) == nil {
		t.Error("expected built-in statement")
	}
}

func TestLoadFileYAML(t *testing.T) {
	d, err := LoadFile(filepath.Join("testdata", "dashboard.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if d.Name != "Retail Dashboard" {
		t.Errorf("Name = %q", d.Name)
	}

	st, err := Statement(d, "pl")
	if err != nil {
		t.Fatalf("Statement(pl) error: %v", err)
	}
	if len(st.Periods) != 2 || st.Periods[0] != "FY2024" {
		t.Errorf("Periods = %v", st.Periods)
	}
	if st.Section("otherIncome") == nil {
		t.Error("section id case must be preserved")
	}
	if got := st.Section("revenue").Items[0].Tooltip; got != "Brick and mortar" {
		t.Errorf("Tooltip = %q", got)
	}
	if got := aggregate.GrossProfit(st, 0); got != 630000 {
		t.Errorf("GrossProfit = %v, want 630000", got)
	}

	p, err := Pie(d, "category")
	if err != nil {
		t.Fatalf("Pie(category) error: %v", err)
	}
	if len(p.Slices) != 3 || p.Slices[0].Value != 50 {
		t.Errorf("Slices = %+v", p.Slices)
	}
}

func TestLoadFileRagged(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "ragged.json"))
	if !errors.Is(err, models.ErrRaggedValues) {
		t.Errorf("expected ErrRaggedValues, got %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join("testdata", "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCheck(t *testing.T) {
	if err := Check(&models.Dashboard{}); !errors.Is(err, ErrEmptyDashboardDoc) {
		t.Errorf("expected ErrEmptyDashboardDoc, got %v", err)
	}

	d := fixtures.Dashboard()
	d.Statements = append(d.Statements, fixtures.IncomeStatement())
	if err := Check(d); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID for statements, got %v", err)
	}

	d = fixtures.Dashboard()
	d.Pies = append(d.Pies, d.Pies[0])
	if err := Check(d); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID for pies, got %v", err)
	}
}

func TestLookupErrors(t *testing.T) {
	d := fixtures.Dashboard()
	if _, err := Statement(d, "nope"); !errors.Is(err, ErrUnknownStatement) {
		t.Errorf("expected ErrUnknownStatement, got %v", err)
	}
	if _, err := Pie(d, "nope"); !errors.Is(err, ErrUnknownDataset) {
		t.Errorf("expected ErrUnknownDataset, got %v", err)
	}
}

// ════════════════════════════════════════════════════════════════════
// HTML import
// ════════════════════════════════════════════════════════════════════

func TestImportHTMLFile(t *testing.T) {
	st, err := ImportHTMLFile(filepath.Join("testdata", "statement.html"), "#quarterly")
	if err != nil {
		t.Fatalf("ImportHTMLFile() error: %v", err)
	}
	if st.ID != "quarterly" || st.Title != "Quarterly Results" {
		t.Errorf("ID/Title = %q/%q", st.ID, st.Title)
	}
	if len(st.Periods) != 2 || st.Periods[1] != "Q1 2025" {
		t.Fatalf("Periods = %v", st.Periods)
	}
	if len(st.Sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(st.Sections))
	}

	wantIDs := []string{"revenue", "expenses", "otherIncome"}
	for i, id := range wantIDs {
		if st.Sections[i].ID != id {
			t.Errorf("section %d id = %q, want %q", i, st.Sections[i].ID, id)
		}
	}
	if st.Sections[1].Title != "Operating Expenses" {
		t.Errorf("expenses title = %q", st.Sections[1].Title)
	}

	rev := st.Section("revenue")
	if rev.Items[0].Tooltip != "All product lines" {
		t.Errorf("tooltip = %q", rev.Items[0].Tooltip)
	}
	if got := aggregate.SectionTotal(st, "revenue", 0); got != 1250000 {
		t.Errorf("revenue total = %v, want 1250000", got)
	}
	if got := aggregate.GrossProfit(st, 1); got != 570000 {
		t.Errorf("gross profit prev = %v, want 570000", got)
	}
	if got := st.Section("expenses").Item("Marketing").Values[1]; got != 0 {
		t.Errorf("unparseable cell = %v, want 0", got)
	}
	if got := st.Section("otherIncome").Items[0].Values[0]; got != -5000 {
		t.Errorf("accounting negative = %v, want -5000", got)
	}
}

func TestImportHTMLNoTable(t *testing.T) {
	_, err := ImportHTML(strings.NewReader("<html><body><p>none</p></body></html>"), "")
	if !errors.Is(err, ErrNoTable) {
		t.Errorf("expected ErrNoTable, got %v", err)
	}
}

func TestImportHTMLNoPeriods(t *testing.T) {
	html := `<table><tbody><tr><td>Sales</td><td>1</td></tr></tbody></table>`
	if _, err := ImportHTML(strings.NewReader(html), "table"); !errors.Is(err, models.ErrNoPeriods) {
		t.Errorf("expected ErrNoPeriods, got %v", err)
	}
}

func TestImportHTMLItemsBeforeSection(t *testing.T) {
	html := `<table><thead><tr><th></th><th>2024</th></tr></thead>
<tbody><tr><td>Misc</td><td>12</td></tr></tbody></table>`
	st, err := ImportHTML(strings.NewReader(html), "")
	if err != nil {
		t.Fatalf("ImportHTML() error: %v", err)
	}
	if st.Sections[0].ID != "general" || st.Sections[0].Items[0].Values[0] != 12 {
		t.Errorf("unexpected sections: %+v", st.Sections)
	}
}

func TestImportHTMLSingleCellSection(t *testing.T) {
	html := `<table><thead><tr><th></th><th>2024</th><th>2023</th></tr></thead>
<tbody>
<tr><td colspan="3">Revenue</td></tr>
<tr><td>Sales</td><td>100</td><td>90</td></tr>
<tr><td colspan="3">Other Éarnings</td></tr>
<tr><td>Interest</td><td>$(1,200)</td><td>50</td></tr>
</tbody></table>`
	st, err := ImportHTML(strings.NewReader(html), "")
	if err != nil {
		t.Fatalf("ImportHTML() error: %v", err)
	}
	if len(st.Sections) != 2 {
		t.Fatalf("got %d sections, want 2: %+v", len(st.Sections), st.Sections)
	}
	if st.Sections[0].ID != "revenue" || len(st.Sections[0].Items) != 1 {
		t.Errorf("revenue section = %+v", st.Sections[0])
	}
	other := st.Sections[1]
	if other.ID != "otherÉarnings" || !utf8.ValidString(other.ID) {
		t.Errorf("section id = %q", other.ID)
	}
	if got := other.Items[0].Values[0]; got != -1200 {
		t.Errorf("interest = %v, want -1200", got)
	}
}

func TestImportHTMLFileMissing(t *testing.T) {
	_, err := ImportHTMLFile(filepath.Join(t.TempDir(), "nope.html"), "")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1,234", 1234},
		{"$1,250,000", 1250000},
		{"(1,200)", -1200},
		{"$(1,200)", -1200},
		{"-$(1.2M)", -1200000},
		{"€ (3.5K)", -3500},
		{"2.5M", 2500000},
		{"250K", 250000},
		{"₹ 99", 99},
		{"-42.5", -42.5},
		{"n/a", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseAmount(tt.in); got != tt.want {
			t.Errorf("parseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCamelCase(t *testing.T) {
	tests := map[string]string{
		"Revenue":              "revenue",
		"Other Income":         "otherIncome",
		"Taxes":                "taxes",
		"Selling, General & A": "sellingGeneralA",
		"Other Éarnings":       "otherÉarnings",
		"ümsatz Ärger":         "ümsatzÄrger",
	}
	for in, want := range tests {
		if got := camelCase(in); got != want {
			t.Errorf("camelCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	for _, ext := range []string{"yaml", "json", "toml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", "dashboard."+ext)
			want := fixtures.Dashboard()
			if err := SaveFile(path, want); err != nil {
				t.Fatalf("SaveFile: %v", err)
			}

			got, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			if got.Name != want.Name || len(got.Statements) != 1 || len(got.Pies) != 3 {
				t.Fatalf("round trip lost data: %+v", got)
			}
			st := got.Statement(fixtures.StatementID)
			if st == nil || st.Section(models.SectionOtherIncome) == nil {
				t.Fatal("expected otherIncome section to keep its id")
			}
			if item := st.Section(models.SectionRevenue).Item("Product Sales"); item == nil || item.Tooltip == "" {
				t.Error("expected tooltip to survive")
			}
			if st.Notes != want.Statements[0].Notes {
				t.Errorf("notes = %q, want %q", st.Notes, want.Statements[0].Notes)
			}
			for p := range st.Periods {
				if g, w := aggregate.NetIncome(st, p), aggregate.NetIncome(want.Statements[0], p); g != w {
					t.Errorf("period %d: net income %v, want %v", p, g, w)
				}
			}
		})
	}
}

func TestSaveFileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := SaveFile(path, &models.Dashboard{}); !errors.Is(err, ErrEmptyDashboardDoc) {
		t.Errorf("got %v, want ErrEmptyDashboardDoc", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("nothing should be written for an invalid dashboard")
	}
}
