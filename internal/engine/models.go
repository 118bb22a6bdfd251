package engine

import (
	"time"

	"arrow-trader/internal/market"
)

// CommodityResult holds one commodity's listings and, once optimized, its best trade.
type CommodityResult struct {
	CommodityID int
	Buys        []market.Listing // where the trader can buy, table order
	Sells       []market.Listing // where the trader can sell, table order
	BestBuy     *market.Listing  // nil when no profitable pair exists
	BestSell    *market.Listing
	BestProfit  int64
}

// HasTrade reports whether the optimizer found a profitable pair.
func (r *CommodityResult) HasTrade() bool {
	return r.BestBuy != nil && r.BestSell != nil && r.BestProfit > 0
}

// ProfitPerUnit is the price spread of the best pair, 0 without a trade.
func (r *CommodityResult) ProfitPerUnit() int64 {
	if !r.HasTrade() {
		return 0
	}
	return r.BestSell.Price - r.BestBuy.Price
}

// ScanParams holds the input parameters for a listings scan.
type ScanParams struct {
	Filters        market.Filters
	MaxQuantity    int64 // cargo capacity shared by both sides of a trade
	MaxRequestWait int   // upper bound of the pause between commodities in seconds; 0 = no pause
}

// Summary counts what happened during a run.
type Summary struct {
	Requested  int
	Fetched    int
	Skipped    int   // commodities dropped because a retrieval failed
	SkippedIDs []int
	EmptySides int // sides that came back without a listings table
	NoTrade    int // fetched commodities without a profitable pair
	RowErrors  int // malformed rows dropped by the normalizer
	Elapsed    time.Duration
}
