package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"arrow-trader/internal/inara"
	"arrow-trader/internal/logger"
	"arrow-trader/internal/market"
)

// ListingSource retrieves the raw listings page for one side of a commodity.
type ListingSource interface {
	FetchListingsPage(ctx context.Context, id int, side market.Side) (string, error)
}

// Scanner downloads and normalizes listings one commodity at a time.
type Scanner struct {
	Source ListingSource
	// Name labels commodities in progress messages. Optional.
	Name func(id int) string
	// Sleep waits between commodities. Tests replace it to skip the pause.
	Sleep func(ctx context.Context, d time.Duration) error
	// Rand drives the pause length. nil uses the global source.
	Rand *rand.Rand
}

// NewScanner creates a Scanner reading from src.
func NewScanner(src ListingSource) *Scanner {
	return &Scanner{Source: src, Sleep: sleepCtx}
}

// Fetch downloads both sides of every commodity in ids, in order.
//
// A commodity whose retrieval fails is logged, counted and skipped; the rest
// of the batch still runs. A side without a listings table contributes no
// listings. The only error returned is ctx's, together with whatever was
// collected before it was cancelled.
func (s *Scanner) Fetch(ctx context.Context, ids []int, params ScanParams, progress func(string)) ([]CommodityResult, Summary, error) {
	if progress == nil {
		progress = func(string) {}
	}
	start := time.Now()
	sum := Summary{Requested: len(ids)}
	results := make([]CommodityResult, 0, len(ids))

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			sum.Elapsed = time.Since(start)
			return results, sum, err
		}

		progress(fmt.Sprintf("Downloading listings for %s (%d/%d)...", s.name(id), i+1, len(ids)))
		res, err := s.fetchCommodity(ctx, id, params.Filters, &sum)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				sum.Elapsed = time.Since(start)
				return results, sum, ctxErr
			}
			sum.Skipped++
			sum.SkippedIDs = append(sum.SkippedIDs, id)
			var fe *inara.FetchError
			if errors.As(err, &fe) && fe.StatusCode != 0 {
				logger.Warn("SCAN", fmt.Sprintf("skipping %s: HTTP %d", s.name(id), fe.StatusCode))
			} else {
				logger.Warn("SCAN", fmt.Sprintf("skipping %s: %v", s.name(id), err))
			}
		} else {
			sum.Fetched++
			results = append(results, res)
		}

		if i < len(ids)-1 {
			if err := s.pause(ctx, params.MaxRequestWait); err != nil {
				sum.Elapsed = time.Since(start)
				return results, sum, err
			}
		}
	}

	sum.Elapsed = time.Since(start)
	logger.Debug("SCAN", fmt.Sprintf("requested=%d fetched=%d skipped=%d emptySides=%d rowErrors=%d in %v",
		sum.Requested, sum.Fetched, sum.Skipped, sum.EmptySides, sum.RowErrors, sum.Elapsed.Round(time.Millisecond)))
	return results, sum, nil
}

func (s *Scanner) fetchCommodity(ctx context.Context, id int, f market.Filters, sum *Summary) (CommodityResult, error) {
	buys, err := s.fetchSide(ctx, id, market.SideBuy, f, sum)
	if err != nil {
		return CommodityResult{}, err
	}
	sells, err := s.fetchSide(ctx, id, market.SideSell, f, sum)
	if err != nil {
		return CommodityResult{}, err
	}
	return CommodityResult{CommodityID: id, Buys: buys, Sells: sells}, nil
}

func (s *Scanner) fetchSide(ctx context.Context, id int, side market.Side, f market.Filters, sum *Summary) ([]market.Listing, error) {
	page, err := s.Source.FetchListingsPage(ctx, id, side)
	if err != nil {
		return nil, fmt.Errorf("%s side: %w", side, err)
	}

	table, ok := market.ParseHTMLTable(page)
	if !ok {
		sum.EmptySides++
		logger.Debug("SCAN", fmt.Sprintf("commodity %d has no %s table", id, side))
		return nil, nil
	}

	listings, rowErrs := market.Normalize(table, side, f)
	if len(rowErrs) > 0 {
		sum.RowErrors += len(rowErrs)
		logger.Debug("SCAN", fmt.Sprintf("commodity %d %s side: %d malformed rows skipped (first: %v)",
			id, side, len(rowErrs), rowErrs[0]))
	}
	return listings, nil
}

// pause sleeps rand[0,1) × randint(1, maxWait) seconds. maxWait <= 0 disables it.
func (s *Scanner) pause(ctx context.Context, maxWait int) error {
	if maxWait <= 0 {
		return nil
	}
	var frac float64
	var n int
	if s.Rand != nil {
		frac, n = s.Rand.Float64(), s.Rand.IntN(maxWait)+1
	} else {
		frac, n = rand.Float64(), rand.IntN(maxWait)+1
	}
	d := time.Duration(frac * float64(n) * float64(time.Second))

	sleep := s.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	return sleep(ctx, d)
}

func (s *Scanner) name(id int) string {
	if s.Name != nil {
		return s.Name(id)
	}
	return fmt.Sprintf("commodity %d", id)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
