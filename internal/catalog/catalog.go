// Package catalog maps commodity ids to display names.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"arrow-trader/internal/logger"
)

// selectName is the name of the select control listing every commodity.
const selectName = "searchcommodity"

// bundled holds placeholder ids and names. Live index names override them.
//
//go:embed format.html
var bundled []byte

var errNoEntries = errors.New("select has no commodity options")

// CatalogLoadError means no commodity names are available. It is fatal for a run.
type CatalogLoadError struct {
	Source string
	Err    error
}

func (e *CatalogLoadError) Error() string {
	return fmt.Sprintf("load commodity catalog from %s: %v", e.Source, e.Err)
}

func (e *CatalogLoadError) Unwrap() error { return e.Err }

// Catalog maps commodity id to display name. Read-only once loaded.
type Catalog map[int]string

// Name returns the display name of id, or a placeholder for unknown ids.
func (c Catalog) Name(id int) string {
	if name, ok := c[id]; ok {
		return name
	}
	return fmt.Sprintf("Commodity %d", id)
}

// IDs returns the known ids in ascending order.
func (c Catalog) IDs() []int {
	ids := make([]int, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Merge applies names on top of the catalog and returns how many entries
// were added or renamed. Blank names leave the existing entry alone.
func (c Catalog) Merge(names map[int]string) int {
	changed := 0
	for id, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || c[id] == name {
			continue
		}
		c[id] = name
		changed++
	}
	return changed
}

// Load reads the catalog document at path, or the bundled one when path is empty.
func Load(path string) (Catalog, error) {
	source := "bundled format.html"
	var r io.Reader = bytes.NewReader(bundled)
	if path != "" {
		source = path
		f, err := os.Open(path)
		if err != nil {
			return nil, &CatalogLoadError{Source: source, Err: err}
		}
		defer f.Close()
		r = f
	}

	c, err := parse(r)
	if err != nil {
		return nil, &CatalogLoadError{Source: source, Err: err}
	}
	logger.Info("CATALOG", fmt.Sprintf("Loaded %d commodity names from %s", len(c), source))
	return c, nil
}

// Parse reads a catalog document.
func Parse(r io.Reader) (Catalog, error) {
	c, err := parse(r)
	if err != nil {
		return nil, &CatalogLoadError{Source: "reader", Err: err}
	}
	return c, nil
}

func parse(r io.Reader) (Catalog, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	sel := doc.Find(fmt.Sprintf("select[name=%q]", selectName)).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("select %q not found", selectName)
	}

	c := make(Catalog)
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		value, _ := opt.Attr("value")
		id, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return
		}
		// The name lives in a nested span; HTML5 parsers drop tags inside
		// <option>, in which case the option text is the name.
		name := opt.Find("span").First().Text()
		if strings.TrimSpace(name) == "" {
			name = opt.Text()
		}
		name = strings.Join(strings.Fields(name), " ")
		if name == "" {
			return
		}
		c[id] = name
	})
	if len(c) == 0 {
		return nil, errNoEntries
	}
	return c, nil
}
