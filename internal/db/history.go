package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"arrow-trader/internal/engine"
)

// RunRecord is one archived run.
type RunRecord struct {
	ID         string          `json:"id"`
	Timestamp  string          `json:"timestamp"`
	Requested  int             `json:"requested"`
	Fetched    int             `json:"fetched"`
	Skipped    int             `json:"skipped"`
	NoTrade    int             `json:"no_trade"`
	RowErrors  int             `json:"row_errors"`
	Count      int             `json:"count"`
	TopProfit  int64           `json:"top_profit"`
	DurationMs int64           `json:"duration_ms"`
	Params     json.RawMessage `json:"params"`
	Report     string          `json:"report"`
}

// NewRunRecord fills a record from a run's summary and ranking.
// params is stored as JSON; report is the rendered text.
func NewRunRecord(sum engine.Summary, ranked []engine.CommodityResult, params any, report string) (RunRecord, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return RunRecord{}, fmt.Errorf("encode params: %w", err)
	}
	r := RunRecord{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().Format(time.RFC3339),
		Requested:  sum.Requested,
		Fetched:    sum.Fetched,
		Skipped:    sum.Skipped,
		NoTrade:    sum.NoTrade,
		RowErrors:  sum.RowErrors,
		Count:      len(ranked),
		DurationMs: sum.Elapsed.Milliseconds(),
		Params:     paramsJSON,
		Report:     report,
	}
	if len(ranked) > 0 {
		r.TopProfit = ranked[0].BestProfit
	}
	return r, nil
}

// InsertRun stores a run. An empty ID is replaced with a fresh uuid.
func (d *DB) InsertRun(r *RunRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp == "" {
		r.Timestamp = time.Now().Format(time.RFC3339)
	}
	params := string(r.Params)
	if params == "" {
		params = "{}"
	}
	_, err := d.sql.Exec(
		`INSERT INTO runs (id, timestamp, requested, fetched, skipped, no_trade, row_errors,
		 count, top_profit, duration_ms, params_json, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Timestamp, r.Requested, r.Fetched, r.Skipped, r.NoTrade, r.RowErrors,
		r.Count, r.TopProfit, r.DurationMs, params, r.Report,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRuns returns the last N runs (newest first).
func (d *DB) GetRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.Query(
		`SELECT id, timestamp, requested, fetched, skipped, no_trade, row_errors,
		 count, top_profit, duration_ms, COALESCE(params_json, '{}'), report
		 FROM runs ORDER BY timestamp DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	records := []RunRecord{}
	for rows.Next() {
		var r RunRecord
		var paramsStr string
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Requested, &r.Fetched, &r.Skipped, &r.NoTrade,
			&r.RowErrors, &r.Count, &r.TopProfit, &r.DurationMs, &paramsStr, &r.Report); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Params = json.RawMessage(paramsStr)
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetRun returns a single run, or nil when id is unknown.
func (d *DB) GetRun(id string) (*RunRecord, error) {
	var r RunRecord
	var paramsStr string
	err := d.sql.QueryRow(
		`SELECT id, timestamp, requested, fetched, skipped, no_trade, row_errors,
		 count, top_profit, duration_ms, COALESCE(params_json, '{}'), report
		 FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.Timestamp, &r.Requested, &r.Fetched, &r.Skipped, &r.NoTrade,
		&r.RowErrors, &r.Count, &r.TopProfit, &r.DurationMs, &paramsStr, &r.Report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	r.Params = json.RawMessage(paramsStr)
	return &r, nil
}
