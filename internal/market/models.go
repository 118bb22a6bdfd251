package market

// Side says which page a listing came from, seen from the trader.
type Side int

const (
	// SideBuy listings are stations selling the commodity (the trader buys there).
	SideBuy Side = iota
	// SideSell listings are stations buying the commodity (the trader sells there).
	SideSell
)

// String returns "buy" or "sell".
func (s Side) String() string {
	if s == SideSell {
		return "sell"
	}
	return "buy"
}

// RefName is the goodsdata page selector for this side.
func (s Side) RefName() string {
	if s == SideSell {
		return "sellmax"
	}
	return "buymin"
}

// PriceColumn is the table header holding the price for this side.
func (s Side) PriceColumn() string {
	if s == SideSell {
		return ColSellPrice
	}
	return ColBuyPrice
}

// Listing is one quoted offer at one location.
type Listing struct {
	Price    int64 // credits per unit, >= 0
	Quantity int64 // units available, >= 0
	Updated  string
	Range    string
	Location Location
}

// Location is the decomposed location of a listing.
type Location struct {
	Station         string
	System          string
	PadSize         string
	Carrier         bool
	StationDistance string // display text, e.g. "1,234 Ls"
	SystemDistance  string // display text, e.g. "120.5 Ly"
}

// Filters are the caller's row constraints.
type Filters struct {
	LargeOnly           bool
	IncludeFleetCarrier bool
	NearSol             bool
}

// Keep reports whether an already-normalized listing passes the filters.
// Applying it to Normalize output drops nothing.
func (f Filters) Keep(l Listing) bool {
	if f.LargeOnly && l.Location.PadSize != LargePad {
		return false
	}
	if !f.IncludeFleetCarrier && l.Location.Carrier {
		return false
	}
	if f.NearSol {
		d, err := ParseDistance(l.Location.SystemDistance)
		if err != nil || d > MaxSolDistance {
			return false
		}
	}
	return true
}
