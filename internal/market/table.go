package market

import (
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Column headers of a goodsdata listings table.
const (
	ColBuyPrice        = "Buy price"
	ColSellPrice       = "Sell price"
	ColQuantity        = "QTY"
	ColUpdated         = "Updated"
	ColRange           = "OPR"
	ColPad             = "Pad"
	ColLocation        = "Location"
	ColStationDistance = "St dist"
	ColSystemDistance  = "Distance"
)

// Row is one table row addressed by column name.
type Row interface {
	Field(name string) (string, bool)
}

// Table is a source of rows. The normalizer only depends on this.
type Table interface {
	Rows() iter.Seq2[int, Row]
}

// MapRow is a Row backed by a map.
type MapRow map[string]string

// Field implements Row.
func (r MapRow) Field(name string) (string, bool) {
	v, ok := r[name]
	return v, ok
}

// StaticTable is an in-memory Table.
type StaticTable []MapRow

// Rows implements Table.
func (t StaticTable) Rows() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for i, r := range t {
			if !yield(i, r) {
				return
			}
		}
	}
}

// HTMLTable is the first table found in an HTML page.
type HTMLTable struct {
	Header []string
	Cells  [][]string
}

type htmlRow struct {
	index map[string]int
	cells []string
}

func (r htmlRow) Field(name string) (string, bool) {
	i, ok := r.index[name]
	if !ok || i >= len(r.cells) {
		return "", false
	}
	return r.cells[i], true
}

// Rows implements Table.
func (t *HTMLTable) Rows() iter.Seq2[int, Row] {
	index := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	return func(yield func(int, Row) bool) {
		for i, cells := range t.Cells {
			if !yield(i, htmlRow{index: index, cells: cells}) {
				return
			}
		}
	}
}

// Len returns the number of body rows.
func (t *HTMLTable) Len() int { return len(t.Cells) }

// ParseHTMLTable extracts the first <table> of page. ok is false when the
// page has no table or the table has no header; that is not an error, the
// side simply has no listings.
func ParseHTMLTable(page string) (*HTMLTable, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, false
	}
	sel := doc.Find("table").First()
	if sel.Length() == 0 {
		return nil, false
	}

	t := &HTMLTable{}
	sel.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		t.Header = append(t.Header, cellText(th))
	})

	rows := sel.Find("tr")
	rows.Each(func(i int, tr *goquery.Selection) {
		if tr.ParentsFiltered("thead").Length() > 0 {
			return
		}
		if len(t.Header) == 0 {
			// No thead: first row carries the header.
			tr.Find("th,td").Each(func(_ int, c *goquery.Selection) {
				t.Header = append(t.Header, cellText(c))
			})
			return
		}
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, cellText(td))
		})
		if len(cells) == 0 {
			return
		}
		t.Cells = append(t.Cells, cells)
	})

	if len(t.Header) == 0 {
		return nil, false
	}
	return t, true
}

func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
