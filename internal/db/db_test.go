package db

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"arrow-trader/internal/catalog"
	"arrow-trader/internal/engine"
	"arrow-trader/internal/market"
)

// openTestDB opens an in-memory SQLite DB and runs migrations (for testing only).
func openTestDB(t *testing.T) *DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	// every pooled connection would get its own empty in-memory database
	sqlDB.SetMaxOpenConns(1)
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func rankedFixture() []engine.CommodityResult {
	l := func(station, system string, price, qty int64) market.Listing {
		return market.Listing{Price: price, Quantity: qty, Location: market.Location{Station: station, System: system}}
	}
	results := []engine.CommodityResult{
		{CommodityID: 10, Buys: []market.Listing{l("Alpha", "Sol", 10, 100)}, Sells: []market.Listing{l("Beta", "Lave", 50, 50)}},
		{CommodityID: 20, Buys: []market.Listing{l("Gamma", "Diso", 100, 5000)}, Sells: []market.Listing{l("Delta", "Leesti", 600, 30000)}},
		{CommodityID: 30, Buys: []market.Listing{l("Nowhere", "Void", 1, 1)}},
	}
	return engine.Rank(results, 25000)
}

func TestDB_MigrateIsIdempotent(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var version int
	if err := d.sql.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != 2 {
		t.Errorf("schema version = %d, want 2", version)
	}
}

func TestDB_RunRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	ranked := rankedFixture()
	sum := engine.Summary{Requested: 3, Fetched: 3, NoTrade: 1, RowErrors: 4, Elapsed: 1500 * time.Millisecond}
	rec, err := NewRunRecord(sum, ranked, map[string]any{"max_quantity": 25000}, "report text")
	if err != nil {
		t.Fatalf("NewRunRecord: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("NewRunRecord did not assign an id")
	}
	if err := d.InsertRun(&rec); err != nil {
		t.Fatalf("InsertRun: %v", err)
	}

	runs, err := d.GetRuns(5)
	if err != nil {
		t.Fatalf("GetRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("GetRuns len = %d, want 1", len(runs))
	}
	got := runs[0]
	if got.ID != rec.ID {
		t.Errorf("ID = %q, want %q", got.ID, rec.ID)
	}
	if got.Count != 2 || got.NoTrade != 1 || got.RowErrors != 4 {
		t.Errorf("counts = %+v", got)
	}
	if got.TopProfit != 2_500_000 {
		t.Errorf("TopProfit = %d, want 2500000", got.TopProfit)
	}
	if got.DurationMs != 1500 {
		t.Errorf("DurationMs = %d, want 1500", got.DurationMs)
	}
	if got.Report != "report text" {
		t.Errorf("Report = %q", got.Report)
	}
	var params map[string]int
	if err := json.Unmarshal(got.Params, &params); err != nil || params["max_quantity"] != 25000 {
		t.Errorf("Params = %s (%v)", got.Params, err)
	}

	one, err := d.GetRun(rec.ID)
	if err != nil || one == nil || one.ID != rec.ID {
		t.Errorf("GetRun = %+v, %v", one, err)
	}
	missing, err := d.GetRun("nope")
	if err != nil || missing != nil {
		t.Errorf("GetRun(unknown) = %+v, %v; want nil, nil", missing, err)
	}
}

func TestDB_InsertRunAssignsID(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	var rec RunRecord
	if err := d.InsertRun(&rec); err != nil {
		t.Fatalf("InsertRun: %v", err)
	}
	if rec.ID == "" || rec.Timestamp == "" {
		t.Errorf("InsertRun left id/timestamp empty: %+v", rec)
	}
	runs, _ := d.GetRuns(0)
	if len(runs) != 1 || string(runs[0].Params) != "{}" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestDB_ResultsRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	ranked := rankedFixture()
	rec, _ := NewRunRecord(engine.Summary{}, ranked, nil, "")
	if err := d.InsertRun(&rec); err != nil {
		t.Fatal(err)
	}
	names := catalog.Catalog{10: "Gold", 20: "Painite"}
	if err := d.InsertResults(rec.ID, ranked, names, 25000); err != nil {
		t.Fatalf("InsertResults: %v", err)
	}

	got, err := d.GetResults(rec.ID)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetResults len = %d, want 2", len(got))
	}
	first := got[0]
	if first.Position != 1 || first.CommodityID != 20 || first.CommodityName != "Painite" {
		t.Errorf("first = %+v", first)
	}
	if first.Units != 5000 || first.ProfitPerUnit != 500 || first.BestProfit != 2_500_000 {
		t.Errorf("first trade numbers = %+v", first)
	}
	if first.BuyStation != "Gamma" || first.SellSystem != "Leesti" {
		t.Errorf("first locations = %+v", first)
	}
	if got[1].CommodityName != "Gold" || got[1].Position != 2 {
		t.Errorf("second = %+v", got[1])
	}
}

func TestDB_InsertResultsEmpty(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if err := d.InsertResults("", rankedFixture(), nil, 1); err != nil {
		t.Errorf("empty run id: %v", err)
	}
	if err := d.InsertResults("run", nil, nil, 1); err != nil {
		t.Errorf("no results: %v", err)
	}
	got, err := d.GetResults("run")
	if err != nil || len(got) != 0 {
		t.Errorf("GetResults = %v, %v", got, err)
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive", "runs.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rec := RunRecord{Requested: 1}
	if err := d.InsertRun(&rec); err != nil {
		t.Fatal(err)
	}
	d.Close()

	d, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer d.Close()
	runs, err := d.GetRuns(10)
	if err != nil || len(runs) != 1 {
		t.Errorf("after reopen runs = %v, %v", runs, err)
	}
}
