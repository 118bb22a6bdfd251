package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"arrow-trader/internal/db"
)

// History renders archived runs newest first, each followed by up to top
// of its archived trades.
func History(runs []db.RunRecord, trades map[string][]db.TradeRecord, top int) string {
	if len(runs) == 0 {
		return "No archived runs.\n"
	}
	var b strings.Builder
	for _, r := range runs {
		when := r.Timestamp
		if ts, err := time.Parse(time.RFC3339, r.Timestamp); err == nil {
			when = ts.Format("2006-01-02 15:04") + " (" + humanize.Time(ts) + ")"
		}
		fmt.Fprintf(&b, "%s  %s\n", r.ID, when)
		fmt.Fprintf(&b, "  fetched %d/%d, skipped %d, profitable %d, top %s Cr, took %s\n",
			r.Fetched, r.Requested, r.Skipped, r.Count, humanize.Comma(r.TopProfit),
			(time.Duration(r.DurationMs) * time.Millisecond).Round(time.Second))
		rows := trades[r.ID]
		if top >= 0 && len(rows) > top {
			rows = rows[:top]
		}
		for _, t := range rows {
			fmt.Fprintf(&b, "  %2d. %-28s %12s Cr  %s (%s) -> %s (%s)\n",
				t.Position, t.CommodityName, humanize.Comma(t.BestProfit),
				t.BuyStation, t.BuySystem, t.SellStation, t.SellSystem)
		}
	}
	return b.String()
}
