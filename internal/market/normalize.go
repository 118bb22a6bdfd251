package market

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// LargePad is the pad code kept when only large pads are allowed.
	LargePad = "L"
	// MaxSolDistance is the near-Sol cutoff in light-years.
	MaxSolDistance = 500.0
	// snipMarker starts the trailing annotation of a system name.
	snipMarker = "✂"
)

// fleetCarrierRe matches a carrier callsign such as "(KHM-86M)".
var fleetCarrierRe = regexp.MustCompile(`\([0-9A-Za-z]{3}-[0-9A-Za-z]{3}\)`)

var (
	errNegative    = errors.New("negative value")
	errNoDelimiter = errors.New("missing '|' between station and system")
	errMissing     = errors.New("column missing")
)

// RowParseError reports a row that could not be normalized. The row is
// skipped; the rest of the table is still processed.
type RowParseError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("row %d: %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *RowParseError) Unwrap() error { return e.Err }

// IsFleetCarrier reports whether a location names a fleet carrier.
func IsFleetCarrier(location string) bool {
	return fleetCarrierRe.MatchString(location)
}

// ParseLocation splits "Station | System✂annotation" into station and system.
// Exactly one trailing whitespace character is removed from the station part.
func ParseLocation(raw string) (station, system string, err error) {
	before, after, found := strings.Cut(raw, "|")
	if !found {
		return "", "", errNoDelimiter
	}
	station = before
	if r, size := utf8.DecodeLastRuneInString(station); size > 0 && unicode.IsSpace(r) {
		station = station[:len(station)-size]
	}
	system, _, _ = strings.Cut(after, snipMarker)
	return station, strings.TrimSpace(system), nil
}

// ParsePrice reads a price such as "12,345 Cr".
func ParsePrice(s string) (int64, error) {
	return parseCount(leadingToken(s))
}

// ParseQuantity reads a quantity such as "1,200".
func ParseQuantity(s string) (int64, error) {
	return parseCount(leadingToken(s))
}

// ParseDistance reads the leading number of a distance such as "1,234.5 Ly".
func ParseDistance(s string) (float64, error) {
	tok := strings.ReplaceAll(leadingToken(s), ",", "")
	tok = strings.TrimRightFunc(tok, unicode.IsLetter)
	d, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errNegative
	}
	return d, nil
}

func leadingToken(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

func parseCount(tok string) (int64, error) {
	tok = strings.ReplaceAll(tok, ",", "")
	tok = strings.TrimRightFunc(tok, unicode.IsLetter)
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errNegative
	}
	return n, nil
}

// Normalize turns one side's raw table into listings, applying the filters.
//
// Malformed rows are skipped and reported as RowParseErrors; they never abort
// the table. Rows removed by a filter are not errors.
func Normalize(t Table, side Side, f Filters) ([]Listing, []*RowParseError) {
	var listings []Listing
	var rowErrs []*RowParseError

	for i, row := range t.Rows() {
		l, keep, err := normalizeRow(i, row, side, f)
		if err != nil {
			rowErrs = append(rowErrs, err)
			continue
		}
		if keep {
			listings = append(listings, l)
		}
	}
	return listings, rowErrs
}

func normalizeRow(i int, row Row, side Side, f Filters) (Listing, bool, *RowParseError) {
	field := func(name string) (string, *RowParseError) {
		v, ok := row.Field(name)
		if !ok {
			return "", &RowParseError{Row: i, Field: name, Err: errMissing}
		}
		return v, nil
	}

	rawPrice, perr := field(side.PriceColumn())
	if perr != nil {
		return Listing{}, false, perr
	}
	price, err := ParsePrice(rawPrice)
	if err != nil {
		return Listing{}, false, &RowParseError{Row: i, Field: side.PriceColumn(), Value: rawPrice, Err: err}
	}

	rawQty, perr := field(ColQuantity)
	if perr != nil {
		return Listing{}, false, perr
	}
	qty, err := ParseQuantity(rawQty)
	if err != nil {
		return Listing{}, false, &RowParseError{Row: i, Field: ColQuantity, Value: rawQty, Err: err}
	}

	pad, perr := field(ColPad)
	if perr != nil {
		return Listing{}, false, perr
	}
	pad = strings.TrimSpace(pad)
	if f.LargeOnly && pad != LargePad {
		return Listing{}, false, nil
	}

	location, perr := field(ColLocation)
	if perr != nil {
		return Listing{}, false, perr
	}
	carrier := IsFleetCarrier(location)
	if !f.IncludeFleetCarrier && carrier {
		return Listing{}, false, nil
	}

	sysDist, _ := row.Field(ColSystemDistance)
	if f.NearSol {
		d, err := ParseDistance(sysDist)
		if err != nil {
			return Listing{}, false, &RowParseError{Row: i, Field: ColSystemDistance, Value: sysDist, Err: err}
		}
		if d > MaxSolDistance {
			return Listing{}, false, nil
		}
	}

	station, system, err := ParseLocation(location)
	if err != nil {
		return Listing{}, false, &RowParseError{Row: i, Field: ColLocation, Value: location, Err: err}
	}

	updated, _ := row.Field(ColUpdated)
	opr, _ := row.Field(ColRange)
	stDist, _ := row.Field(ColStationDistance)

	return Listing{
		Price:    price,
		Quantity: qty,
		Updated:  updated,
		Range:    opr,
		Location: Location{
			Station:         station,
			System:          system,
			PadSize:         pad,
			Carrier:         carrier,
			StationDistance: stDist,
			SystemDistance:  sysDist,
		},
	}, true, nil
}
