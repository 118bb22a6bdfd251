// Package report renders ranked trades as plain text and stores the log files.
package report

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/stat"

	"arrow-trader/internal/catalog"
	"arrow-trader/internal/engine"
	"arrow-trader/internal/market"
)

// OtherLocations is how many extra rows are listed per side.
const OtherLocations = 3

const rule = "========================="

// Format renders the top n results, one block per commodity.
func Format(ranked []engine.CommodityResult, names catalog.Catalog, n int) string {
	var b strings.Builder
	for _, r := range engine.Top(ranked, n) {
		if !r.HasTrade() {
			continue
		}
		writeCommodity(&b, r, names.Name(r.CommodityID))
	}
	return b.String()
}

func writeCommodity(b *strings.Builder, r engine.CommodityResult, name string) {
	fmt.Fprintf(b, "\n%s[ %s ]%s\n", rule, name, rule)
	fmt.Fprintf(b, "Available Profit: \t%s Cr\n", humanize.Comma(r.BestProfit))
	fmt.Fprintf(b, "Profit Per Ton: \t%d Cr/T\n", r.ProfitPerUnit())
	b.WriteString("Buy:\n")
	writeSide(b, *r.BestBuy, r.Buys, "buy")
	b.WriteString("Sell:\n")
	writeSide(b, *r.BestSell, r.Sells, "sell")
}

func writeSide(b *strings.Builder, best market.Listing, all []market.Listing, label string) {
	b.WriteString("\tBest:\n")
	fmt.Fprintf(b, "\t\t%s\n", FormatLocation(best))
	if len(all) == 0 {
		return
	}
	fmt.Fprintf(b, "\tOther %s locations:\n", label)
	for _, l := range all[:min(len(all), OtherLocations)] {
		fmt.Fprintf(b, "\t\t%s\n", FormatLocation(l))
	}
}

// FormatLocation renders one listing on a single line.
func FormatLocation(l market.Listing) string {
	loc := l.Location
	return fmt.Sprintf("%s (%s) \t | \t %s (%s) \t Pad: %s \t Carrier: %t \t Qty: %s \t Price: %s \t Max Cost: %s \t Updated: %s",
		loc.Station, loc.StationDistance,
		loc.System, loc.SystemDistance,
		loc.PadSize, loc.Carrier,
		humanize.Comma(l.Quantity), humanize.Comma(l.Price),
		humanize.Comma(l.Quantity*l.Price),
		l.Updated)
}

// Summary renders the run footer: what was fetched and how the profits spread.
func Summary(s engine.Summary, ranked []engine.CommodityResult) string {
	var b strings.Builder
	b.WriteString("\n" + rule + "[ Summary ]" + rule + "\n")
	line := func(k string, v any) { fmt.Fprintf(&b, "%-26s %v\n", k, v) }

	line("Commodities requested:", s.Requested)
	line("Fetched:", s.Fetched)
	line("Skipped (fetch errors):", s.Skipped)
	line("Without a trade:", s.NoTrade)
	line("Malformed rows:", s.RowErrors)
	line("Profitable commodities:", len(ranked))

	if st, ok := Profits(ranked); ok {
		line("Best profit:", humanize.Comma(st.Max)+" Cr")
		line("Mean profit:", humanize.Comma(int64(math.Round(st.Mean)))+" Cr")
		line("Median profit:", humanize.Comma(int64(math.Round(st.Median)))+" Cr")
		line("Std deviation:", humanize.Comma(int64(math.Round(st.StdDev)))+" Cr")
	}
	if s.Elapsed > 0 {
		line("Elapsed:", s.Elapsed.Round(time.Second))
	}
	return b.String()
}

// ProfitStats describes the spread of best profits across ranked commodities.
type ProfitStats struct {
	Max    int64
	Mean   float64
	Median float64
	StdDev float64
}

// Profits computes ProfitStats. ok is false when nothing was ranked.
func Profits(ranked []engine.CommodityResult) (ProfitStats, bool) {
	if len(ranked) == 0 {
		return ProfitStats{}, false
	}
	xs := make([]float64, len(ranked))
	var st ProfitStats
	for i, r := range ranked {
		xs[i] = float64(r.BestProfit)
		st.Max = max(st.Max, r.BestProfit)
	}
	slices.Sort(xs)

	st.Mean = stat.Mean(xs, nil)
	st.Median = stat.Quantile(0.5, stat.Empirical, xs, nil)
	if len(xs) > 1 {
		st.StdDev = stat.StdDev(xs, nil)
	}
	return st, true
}
