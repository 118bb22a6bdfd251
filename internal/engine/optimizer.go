package engine

import (
	"cmp"
	"fmt"
	"slices"

	"arrow-trader/internal/logger"
	"arrow-trader/internal/market"
)

// CalcPossibleProfit is the value of trading a listing up to the cap:
// price × min(quantity, limit).
func CalcPossibleProfit(l market.Listing, limit int64) int64 {
	if limit < 0 {
		limit = 0
	}
	return l.Price * min(l.Quantity, limit)
}

// TradeQuantity is how many units one buy/sell pair can move.
func TradeQuantity(buy, sell market.Listing, limit int64) int64 {
	if limit < 0 {
		limit = 0
	}
	return min(buy.Quantity, sell.Quantity, limit)
}

func pairProfit(buy, sell market.Listing, limit int64) int64 {
	q := TradeQuantity(buy, sell, limit)
	return CalcPossibleProfit(sell, q) - CalcPossibleProfit(buy, q)
}

// Optimize searches every sell × buy pair of r for the highest profit under
// maxQuantity. Sells are the outer loop and only a strictly greater profit
// replaces the current best, so the first pair found wins ties. When no pair
// makes money the best listings stay nil and BestProfit is 0.
func Optimize(r *CommodityResult, maxQuantity int64) {
	r.BestBuy, r.BestSell, r.BestProfit = nil, nil, 0

	var best int64
	bestSell, bestBuy := -1, -1
	for si, sell := range r.Sells {
		for bi, buy := range r.Buys {
			if p := pairProfit(buy, sell, maxQuantity); p > best {
				best, bestSell, bestBuy = p, si, bi
			}
		}
	}
	if bestSell < 0 {
		return
	}

	sell, buy := r.Sells[bestSell], r.Buys[bestBuy]
	r.BestSell, r.BestBuy, r.BestProfit = &sell, &buy, best
}

// Rank optimizes every result, drops those without a trade and orders the
// rest by BestProfit, highest first. Equal profits keep their input order.
func Rank(results []CommodityResult, maxQuantity int64) []CommodityResult {
	ranked := make([]CommodityResult, 0, len(results))
	for i := range results {
		Optimize(&results[i], maxQuantity)
		if results[i].HasTrade() {
			ranked = append(ranked, results[i])
		}
	}

	slices.SortStableFunc(ranked, func(a, b CommodityResult) int {
		return cmp.Compare(b.BestProfit, a.BestProfit)
	})

	logger.Debug("RANK", fmt.Sprintf("%d of %d commodities have a profitable trade", len(ranked), len(results)))
	return ranked
}

// Top returns at most n ranked results.
func Top(ranked []CommodityResult, n int) []CommodityResult {
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
