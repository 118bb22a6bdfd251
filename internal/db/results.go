package db

import (
	"fmt"

	"arrow-trader/internal/catalog"
	"arrow-trader/internal/engine"
	"arrow-trader/internal/logger"
)

// TradeRecord is one ranked commodity of an archived run.
type TradeRecord struct {
	Position      int    `json:"position"`
	CommodityID   int    `json:"commodity_id"`
	CommodityName string `json:"commodity_name"`
	BestProfit    int64  `json:"best_profit"`
	ProfitPerUnit int64  `json:"profit_per_unit"`
	Units         int64  `json:"units"`
	BuyPrice      int64  `json:"buy_price"`
	BuyStation    string `json:"buy_station"`
	BuySystem     string `json:"buy_system"`
	SellPrice     int64  `json:"sell_price"`
	SellStation   string `json:"sell_station"`
	SellSystem    string `json:"sell_system"`
}

// InsertResults bulk-inserts the ranked trades of a run. Results without a
// trade are skipped.
func (d *DB) InsertResults(runID string, ranked []engine.CommodityResult, names catalog.Catalog, maxQuantity int64) error {
	if runID == "" || len(ranked) == 0 {
		return nil
	}

	tx, err := d.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO trade_results (
		run_id, position, commodity_id, commodity_name,
		best_profit, profit_per_unit, units,
		buy_price, buy_station, buy_system,
		sell_price, sell_station, sell_system
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	pos := 0
	for _, r := range ranked {
		if !r.HasTrade() {
			continue
		}
		pos++
		_, err := stmt.Exec(
			runID, pos, r.CommodityID, names.Name(r.CommodityID),
			r.BestProfit, r.ProfitPerUnit(), engine.TradeQuantity(*r.BestBuy, *r.BestSell, maxQuantity),
			r.BestBuy.Price, r.BestBuy.Location.Station, r.BestBuy.Location.System,
			r.BestSell.Price, r.BestSell.Location.Station, r.BestSell.Location.System,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert commodity %d: %w", r.CommodityID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	logger.Debug("DB", fmt.Sprintf("archived %d trades for run %s", pos, runID))
	return nil
}

// GetResults retrieves the archived trades of a run in rank order.
func (d *DB) GetResults(runID string) ([]TradeRecord, error) {
	rows, err := d.sql.Query(`
		SELECT position, commodity_id, commodity_name,
			best_profit, profit_per_unit, units,
			buy_price, buy_station, buy_system,
			sell_price, sell_station, sell_system
		FROM trade_results WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []TradeRecord
	for rows.Next() {
		var r TradeRecord
		if err := rows.Scan(
			&r.Position, &r.CommodityID, &r.CommodityName,
			&r.BestProfit, &r.ProfitPerUnit, &r.Units,
			&r.BuyPrice, &r.BuyStation, &r.BuySystem,
			&r.SellPrice, &r.SellStation, &r.SellSystem,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
