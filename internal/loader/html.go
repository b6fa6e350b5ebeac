package loader

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/dashcore/pkg/models"
)

// ErrNoTable is returned when the selector matches no table.
var ErrNoTable = errors.New("no statement table found")

// ImportHTMLFile parses the first table matching selector in a local HTML file.
func ImportHTMLFile(path, selector string) (*models.Statement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ImportHTML(f, selector)
}

// ImportHTML parses a statement from an HTML table.
//
// The table header holds a label column followed by one column per period,
// most recent first. A body row with a data-section attribute, or with a
// single cell (<th> or <td colspan>), starts a new section; the section id is the attribute value
// or the camel-cased title ("Other Income" -> "otherIncome"). Every other body
// row is a line item: label cell, then one value per period. A title attribute
// on the label cell becomes the item tooltip. Unparseable cells read as 0.
func ImportHTML(r io.Reader, selector string) (*models.Statement, error) {
	if selector == "" {
		selector = "table"
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse statement HTML: %w", err)
	}

	table := doc.Find(selector).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoTable, selector)
	}

	st := &models.Statement{
		ID:    table.AttrOr("id", "imported"),
		Title: strings.TrimSpace(table.Find("caption").First().Text()),
	}

	// Parse header row for period names.
	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		if i > 0 { // skip row label column
			st.Periods = append(st.Periods, strings.TrimSpace(th.Text()))
		}
	})
	if len(st.Periods) == 0 {
		return nil, models.ErrNoPeriods
	}

	cur := -1
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Children()
		sectionID, isSection := row.Attr("data-section")
		if cells.Length() == 1 {
			isSection = true
		}

		if isSection {
			title := strings.TrimSpace(cells.First().Text())
			if sectionID == "" {
				sectionID = camelCase(title)
			}
			st.Sections = append(st.Sections, models.Section{ID: sectionID, Title: title})
			cur = len(st.Sections) - 1
			return
		}

		if cur < 0 {
			st.Sections = append(st.Sections, models.Section{ID: "general", Title: "General"})
			cur = len(st.Sections) - 1
		}

		label := cells.First()
		item := models.LineItem{
			Name:    strings.TrimSpace(label.Text()),
			Tooltip: label.AttrOr("title", ""),
			Values:  make([]float64, len(st.Periods)),
		}
		cells.Each(func(i int, cell *goquery.Selection) {
			if i == 0 || i-1 >= len(item.Values) {
				return
			}
			item.Values[i-1] = parseAmount(cell.Text())
		})
		st.Sections[cur].Items = append(st.Sections[cur].Items, item)
	})

	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

// parseAmount parses a displayed amount. Handles currency symbols,
// thousands separators, accounting negatives "(1,200)" or "$(1,200)" and
// K/M/B suffixes.
func parseAmount(s string) float64 {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', '$', '€', '£', '₹', ' ', '\u00a0':
			return -1
		}
		return r
	}, strings.TrimSpace(s))

	negative := false
	if strings.HasPrefix(s, "-") && strings.HasPrefix(s[1:], "(") {
		negative = true
		s = s[1:]
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "B"):
		multiplier = 1e9
	case strings.HasSuffix(s, "M"):
		multiplier = 1e6
	case strings.HasSuffix(s, "K"):
		multiplier = 1e3
	}
	if multiplier != 1 {
		s = s[:len(s)-1]
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if negative {
		val = -math.Abs(val)
	}
	return val * multiplier
}

// camelCase turns a section title into an id: "Other Income" -> "otherIncome".
func camelCase(title string) string {
	words := strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var sb strings.Builder
	for i, w := range words {
		w = strings.ToLower(w)
		if i > 0 {
			r, size := utf8.DecodeRuneInString(w)
			w = string(unicode.ToUpper(r)) + w[size:]
		}
		sb.WriteString(w)
	}
	return sb.String()
}
