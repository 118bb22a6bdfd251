package inara

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"arrow-trader/internal/market"
)

// commodityLinkRe matches commodity detail links such as /galaxy-commodity/10269/.
var commodityLinkRe = regexp.MustCompile(`/galaxy-commodity/(\d+)`)

var errNoCommodities = errors.New("no commodity links found; page format may have changed")

// Commodity is one entry of the commodity index.
type Commodity struct {
	ID   int
	Name string
}

// IndexURL is the page listing every commodity.
func (c *Client) IndexURL() string {
	return c.baseURL + "/galaxy-commodities/"
}

// ListingsURL is the goodsdata page holding one side's listings for a commodity.
func (c *Client) ListingsURL(id int, side market.Side) string {
	return fmt.Sprintf("%s/ajaxaction.php?act=goodsdata&refname=%s&refid=%d&refid2=0",
		c.baseURL, side.RefName(), id)
}

// DiscoverCommodities lists the commodities linked from the index page in
// page order. Repeated links to the same id are collapsed to the first one.
func (c *Client) DiscoverCommodities(ctx context.Context) ([]Commodity, error) {
	url := c.IndexURL()
	page, err := c.GetPage(ctx, url)
	if err != nil {
		return nil, &DiscoveryError{URL: url, Err: err}
	}

	commodities, err := parseIndex(page)
	if err != nil {
		return nil, &DiscoveryError{URL: url, Err: err}
	}
	return commodities, nil
}

// DiscoverCommodityIDs is DiscoverCommodities without the names.
func (c *Client) DiscoverCommodityIDs(ctx context.Context) ([]int, error) {
	commodities, err := c.DiscoverCommodities(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(commodities))
	for i, cm := range commodities {
		ids[i] = cm.ID
	}
	return ids, nil
}

func parseIndex(page string) ([]Commodity, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	seen := make(map[int]bool)
	var out []Commodity
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := commodityLinkRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		id, err := strconv.Atoi(m[1])
		if err != nil || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, Commodity{
			ID:   id,
			Name: strings.Join(strings.Fields(a.Text()), " "),
		})
	})

	if len(out) == 0 {
		return nil, errNoCommodities
	}
	return out, nil
}

// FetchListingsPage retrieves the raw goodsdata page for one side of a commodity.
func (c *Client) FetchListingsPage(ctx context.Context, id int, side market.Side) (string, error) {
	return c.GetPage(ctx, c.ListingsURL(id, side))
}
