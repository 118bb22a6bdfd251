package engine

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"arrow-trader/internal/logger"
	"arrow-trader/internal/market"
)

func lst(price, qty int64, station string) market.Listing {
	return market.Listing{Price: price, Quantity: qty, Location: market.Location{Station: station}}
}

func TestCalcPossibleProfit(t *testing.T) {
	l := lst(40, 300, "A")
	tests := []struct {
		cap  int64
		want int64
	}{
		{0, 0},
		{1, 40},
		{299, 40 * 299},
		{300, 40 * 300},
		{10000, 40 * 300},
		{-5, 0},
	}
	for _, tt := range tests {
		if got := CalcPossibleProfit(l, tt.cap); got != tt.want {
			t.Errorf("CalcPossibleProfit(cap=%d) = %d, want %d", tt.cap, got, tt.want)
		}
	}
}

func TestTradeQuantity(t *testing.T) {
	if q := TradeQuantity(lst(1, 100, ""), lst(2, 50, ""), 1000); q != 50 {
		t.Errorf("TradeQuantity = %d, want 50", q)
	}
	if q := TradeQuantity(lst(1, 100, ""), lst(2, 500, ""), 80); q != 80 {
		t.Errorf("TradeQuantity = %d, want 80 (capped)", q)
	}
}

func TestOptimize_Scenario2000(t *testing.T) {
	r := CommodityResult{
		CommodityID: 1,
		Buys:        []market.Listing{lst(10, 100, "Buy")},
		Sells:       []market.Listing{lst(50, 50, "Sell")},
	}
	Optimize(&r, 1000)

	if r.BestProfit != 2000 {
		t.Errorf("BestProfit = %d, want 2000", r.BestProfit)
	}
	if !r.HasTrade() {
		t.Fatal("HasTrade() = false, want true")
	}
	if r.BestBuy.Location.Station != "Buy" || r.BestSell.Location.Station != "Sell" {
		t.Errorf("best pair = %+v / %+v", r.BestBuy, r.BestSell)
	}
	if r.ProfitPerUnit() != 40 {
		t.Errorf("ProfitPerUnit = %d, want 40", r.ProfitPerUnit())
	}
}

func TestOptimize_EmptySells(t *testing.T) {
	r := CommodityResult{Buys: []market.Listing{lst(10, 100, "A"), lst(1, 5, "B")}}
	Optimize(&r, 1000)
	if r.HasTrade() || r.BestBuy != nil || r.BestSell != nil || r.BestProfit != 0 {
		t.Errorf("expected no trade, got %+v", r)
	}
}

func TestOptimize_NoProfit(t *testing.T) {
	r := CommodityResult{
		Buys:  []market.Listing{lst(100, 10, "A")},
		Sells: []market.Listing{lst(100, 10, "B"), lst(90, 10, "C")},
	}
	Optimize(&r, 1000)
	if r.HasTrade() {
		t.Errorf("break-even and losing pairs must not count as a trade: %+v", r)
	}
	if r.ProfitPerUnit() != 0 {
		t.Errorf("ProfitPerUnit without trade = %d, want 0", r.ProfitPerUnit())
	}
}

func TestOptimize_TieBreakFirstPair(t *testing.T) {
	// Every pair yields 10 × 10 = 100; sells outer, buys inner means S1/B1 wins.
	r := CommodityResult{
		Buys:  []market.Listing{lst(10, 10, "B1"), lst(10, 10, "B2")},
		Sells: []market.Listing{lst(20, 10, "S1"), lst(20, 10, "S2")},
	}
	for i := 0; i < 5; i++ {
		Optimize(&r, 1000)
		if r.BestSell.Location.Station != "S1" || r.BestBuy.Location.Station != "B1" {
			t.Fatalf("run %d: best = %s/%s, want S1/B1", i, r.BestSell.Location.Station, r.BestBuy.Location.Station)
		}
	}
}

func TestOptimize_LaterTieDoesNotReplace(t *testing.T) {
	// S1/B1 = 10 × 10, S2/B1 = 20 × 5; equal profit, S1 was seen first.
	r := CommodityResult{
		Buys:  []market.Listing{lst(10, 10, "B1")},
		Sells: []market.Listing{lst(20, 10, "S1"), lst(30, 5, "S2")},
	}
	Optimize(&r, 1000)
	if r.BestSell.Location.Station != "S1" || r.BestProfit != 100 {
		t.Errorf("best = %s %d, want S1 100", r.BestSell.Location.Station, r.BestProfit)
	}
}

func TestOptimize_CapLimitsQuantity(t *testing.T) {
	r := CommodityResult{
		Buys:  []market.Listing{lst(100, 50000, "A")},
		Sells: []market.Listing{lst(150, 40000, "B")},
	}
	Optimize(&r, 25000)
	if want := int64(50 * 25000); r.BestProfit != want {
		t.Errorf("BestProfit = %d, want %d", r.BestProfit, want)
	}
}

func TestOptimize_QuantityBeatsSpread(t *testing.T) {
	// Small spread on a deep market beats a big spread on a thin one.
	r := CommodityResult{
		Buys:  []market.Listing{lst(50, 10, "Thin"), lst(150, 10000, "Deep")},
		Sells: []market.Listing{lst(200, 10000, "S")},
	}
	Optimize(&r, 25000)
	if r.BestBuy.Location.Station != "Deep" {
		t.Errorf("BestBuy = %s, want Deep", r.BestBuy.Location.Station)
	}
}

func TestOptimize_ResetsPreviousBest(t *testing.T) {
	r := CommodityResult{
		Buys:  []market.Listing{lst(10, 10, "A")},
		Sells: []market.Listing{lst(20, 10, "B")},
	}
	Optimize(&r, 100)
	r.Sells = nil
	Optimize(&r, 100)
	if r.BestBuy != nil || r.BestSell != nil || r.BestProfit != 0 {
		t.Errorf("stale best after re-optimize: %+v", r)
	}
}

func TestOptimize_BestIsCopy(t *testing.T) {
	r := CommodityResult{
		Buys:  []market.Listing{lst(10, 10, "A")},
		Sells: []market.Listing{lst(20, 10, "B")},
	}
	Optimize(&r, 100)
	r.Buys[0].Price = 999
	if r.BestBuy.Price != 10 {
		t.Errorf("BestBuy aliases the buys slice")
	}
}

func TestRank_OrderAndExclusion(t *testing.T) {
	results := []CommodityResult{
		{CommodityID: 1, Buys: []market.Listing{lst(10, 10, "")}, Sells: []market.Listing{lst(20, 10, "")}}, // 100
		{CommodityID: 2, Buys: []market.Listing{lst(10, 10, "")}},                                          // no sells
		{CommodityID: 3, Buys: []market.Listing{lst(10, 10, "")}, Sells: []market.Listing{lst(40, 10, "")}}, // 300
		{CommodityID: 4, Buys: []market.Listing{lst(10, 10, "")}, Sells: []market.Listing{lst(5, 10, "")}},  // loss
	}
	ranked := Rank(results, 1000)
	if len(ranked) != 2 {
		t.Fatalf("len(ranked) = %d, want 2", len(ranked))
	}
	if ranked[0].CommodityID != 3 || ranked[1].CommodityID != 1 {
		t.Errorf("order = %d, %d; want 3, 1", ranked[0].CommodityID, ranked[1].CommodityID)
	}
	for _, r := range ranked {
		if !r.HasTrade() {
			t.Errorf("commodity %d ranked without a trade", r.CommodityID)
		}
	}
}

func TestRank_StableTies(t *testing.T) {
	var results []CommodityResult
	for id := 1; id <= 6; id++ {
		sell := int64(20)
		if id == 4 {
			sell = 30
		}
		results = append(results, CommodityResult{
			CommodityID: id,
			Buys:        []market.Listing{lst(10, 10, "")},
			Sells:       []market.Listing{lst(sell, 10, "")},
		})
	}
	ranked := Rank(results, 1000)
	want := []int{4, 1, 2, 3, 5, 6}
	for i, r := range ranked {
		if r.CommodityID != want[i] {
			t.Fatalf("ranked[%d] = %d, want %d (full order %v)", i, r.CommodityID, want[i], ids(ranked))
		}
	}
}

func TestRank_Empty(t *testing.T) {
	if got := Rank(nil, 100); len(got) != 0 {
		t.Errorf("Rank(nil) = %v", got)
	}
}

func TestTop(t *testing.T) {
	ranked := make([]CommodityResult, 4)
	if len(Top(ranked, 2)) != 2 {
		t.Error("Top(4, 2) != 2")
	}
	if len(Top(ranked, 10)) != 4 {
		t.Error("Top(4, 10) != 4")
	}
	if len(Top(ranked, 0)) != 0 || len(Top(ranked, -1)) != 0 {
		t.Error("Top with n <= 0 should be empty")
	}
}

func ids(rs []CommodityResult) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.CommodityID
	}
	return out
}

func TestRank_DebugLineFollowsLogLevel(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stdout)
	defer logger.SetLevel("info")

	logger.SetLevel("error")
	Rank(nil, 10)
	if buf.Len() != 0 {
		t.Errorf("Rank wrote at error level: %q", buf.String())
	}

	logger.SetLevel("debug")
	Rank(nil, 10)
	if got := buf.String(); !strings.Contains(got, "[RANK]") || !strings.Contains(got, "0 of 0") {
		t.Errorf("Rank debug line missing at debug level: %q", got)
	}
}
