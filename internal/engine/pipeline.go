package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"arrow-trader/internal/catalog"
	"arrow-trader/internal/inara"
	"arrow-trader/internal/logger"
)

// Discoverer lists the commodities the remote source knows about.
type Discoverer interface {
	DiscoverCommodities(ctx context.Context) ([]inara.Commodity, error)
}

// Inputs are what a run needs before fetching: labels and the ids to scan.
type Inputs struct {
	Catalog catalog.Catalog
	IDs     []int
}

// LoadInputs reads the catalog and discovers commodity ids concurrently.
// Either failure aborts the run. Non-blank names from the commodity index
// replace catalog entries; the catalog only labels ids the index leaves blank.
func LoadInputs(ctx context.Context, catalogPath string, d Discoverer) (*Inputs, error) {
	var (
		cat         catalog.Catalog
		commodities []inara.Commodity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := catalog.Load(catalogPath)
		if err != nil {
			return err
		}
		cat = c
		return nil
	})
	g.Go(func() error {
		cs, err := d.DiscoverCommodities(gctx)
		if err != nil {
			return err
		}
		commodities = cs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load inputs: %w", err)
	}

	names := make(map[int]string, len(commodities))
	ids := make([]int, len(commodities))
	for i, c := range commodities {
		ids[i] = c.ID
		names[c.ID] = c.Name
	}
	if changed := cat.Merge(names); changed > 0 {
		logger.Info("CATALOG", fmt.Sprintf("Took %d names from the commodity index", changed))
	}

	return &Inputs{Catalog: cat, IDs: ids}, nil
}

// Run fetches, ranks and counts. The summary's NoTrade is filled in here.
func Run(ctx context.Context, s *Scanner, ids []int, params ScanParams, progress func(string)) ([]CommodityResult, Summary, error) {
	results, sum, err := s.Fetch(ctx, ids, params, progress)
	ranked := Rank(results, params.MaxQuantity)
	sum.NoTrade = len(results) - len(ranked)
	return ranked, sum, err
}
