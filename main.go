package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"arrow-trader/internal/catalog"
	"arrow-trader/internal/config"
	"arrow-trader/internal/db"
	"arrow-trader/internal/engine"
	"arrow-trader/internal/inara"
	"arrow-trader/internal/logger"
	"arrow-trader/internal/prompt"
	"arrow-trader/internal/report"
)

var version = "dev"

func main() {
	def := config.Default()
	configPath := flag.String("config", "", "TOML config file")
	interactive := flag.Bool("interactive", true, "ask for the trade options on startup")
	largeOnly := flag.Bool("large-only", def.LargeOnly, "only stations with a large landing pad")
	carriers := flag.Bool("carriers", def.IncludeFleetCarrier, "include fleet carriers")
	maxQuantity := flag.Int("max-quantity", def.MaxQuantity, "cargo capacity in units")
	maxWait := flag.Int("max-wait", def.MaxRequestWait, "maximum pause between commodities in seconds (0-10)")
	results := flag.Int("results", def.NumResultsToDisplay, "number of commodities to report")
	nearSol := flag.Bool("near-sol", def.NearSol, "only systems within 500 Ly of Sol")
	logFile := flag.Bool("log-file", def.LogFile, "write the report to the log directory")
	logDir := flag.String("log-dir", def.LogDir, "report log directory")
	open := flag.Bool("open", def.OpenReport, "open the report when done")
	archive := flag.String("archive", def.ArchivePath, "SQLite run archive (empty = off)")
	catalogPath := flag.String("catalog", def.CatalogPath, "commodity catalog HTML (empty = bundled)")
	logLevel := flag.String("log-level", def.LogLevel, "debug, info, warn or error")
	history := flag.Int("history", 0, "print the last N archived runs and exit")
	showRun := flag.String("show-run", "", "print the archived report of a run id and exit")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		if err := cfg.LoadFile(*configPath); err != nil {
			logger.Error("CONFIG", err.Error())
			os.Exit(1)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		logger.Error("CONFIG", err.Error())
		os.Exit(1)
	}

	// Flags given explicitly win over file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "large-only":
			cfg.LargeOnly = *largeOnly
		case "carriers":
			cfg.IncludeFleetCarrier = *carriers
		case "max-quantity":
			cfg.MaxQuantity = *maxQuantity
		case "max-wait":
			cfg.MaxRequestWait = *maxWait
		case "results":
			cfg.NumResultsToDisplay = *results
		case "near-sol":
			cfg.NearSol = *nearSol
		case "log-file":
			cfg.LogFile = *logFile
		case "log-dir":
			cfg.LogDir = *logDir
		case "open":
			cfg.OpenReport = *open
		case "archive":
			cfg.ArchivePath = *archive
		case "catalog":
			cfg.CatalogPath = *catalogPath
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	logger.SetLevel(cfg.LogLevel)

	if *history > 0 || *showRun != "" {
		if err := readArchive(cfg.ArchivePath, *history, *showRun); err != nil {
			logger.Error("DB", err.Error())
			os.Exit(1)
		}
		return
	}

	logger.Banner(version)

	if *interactive {
		if err := prompt.Ask(os.Stdin, os.Stdout, cfg); err != nil {
			logger.Error("PROMPT", err.Error())
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("CONFIG", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("RUN", err.Error())
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	client := inara.NewClient(inara.Options{
		BaseURL:     cfg.BaseURL,
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.RequestTimeout,
		MinInterval: cfg.MinRequestInterval,
	})
	if !client.HealthCheck(ctx) {
		logger.Warn("INARA", fmt.Sprintf("%s did not answer the health check; trying anyway", client.BaseURL()))
	}

	logger.Section("Commodities")
	in, err := engine.LoadInputs(ctx, cfg.CatalogPath, client)
	if err != nil {
		return err
	}
	logger.Success("INARA", fmt.Sprintf("Found %d commodities", len(in.IDs)))

	scanner := engine.NewScanner(client)
	scanner.Name = in.Catalog.Name
	params := engine.ScanParams{
		Filters:        cfg.Filters(),
		MaxQuantity:    int64(cfg.MaxQuantity),
		MaxRequestWait: cfg.MaxRequestWait,
	}

	logger.Section("Listings")
	ranked, sum, err := engine.Run(ctx, scanner, in.IDs, params, func(msg string) {
		logger.Info("SCAN", msg)
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Warn("RUN", "Interrupted; reporting what was collected so far")
	}

	text := report.Format(ranked, in.Catalog, cfg.NumResultsToDisplay) + report.Summary(sum, ranked)
	fmt.Print(text)

	logger.Section("Run")
	logger.Stats("Commodities fetched", sum.Fetched)
	logger.Stats("Skipped", sum.Skipped)
	logger.Stats("Profitable", len(ranked))
	logger.Stats("Elapsed", sum.Elapsed.Round(time.Second))

	if cfg.LogFile {
		path, err := report.SaveLog(cfg.LogDir, text)
		if err != nil {
			logger.Warn("REPORT", fmt.Sprintf("Could not save log: %v", err))
		} else {
			logger.Success("REPORT", fmt.Sprintf("Saved %s", path))
			if cfg.OpenReport {
				if err := report.Open(path); err != nil {
					logger.Warn("REPORT", err.Error())
				}
			}
		}
	}

	if cfg.ArchivePath != "" {
		if err := archiveRun(cfg, sum, ranked, in.Catalog, text); err != nil {
			logger.Warn("DB", fmt.Sprintf("Archive failed: %v", err))
		}
	}
	return nil
}

func archiveRun(cfg *config.Config, sum engine.Summary, ranked []engine.CommodityResult, names catalog.Catalog, text string) error {
	database, err := db.Open(cfg.ArchivePath)
	if err != nil {
		return err
	}
	defer database.Close()

	rec, err := db.NewRunRecord(sum, ranked, cfg, text)
	if err != nil {
		return err
	}
	if err := database.InsertRun(&rec); err != nil {
		return err
	}
	return database.InsertResults(rec.ID, ranked, names, int64(cfg.MaxQuantity))
}

// readArchive prints archived runs instead of scanning.
func readArchive(path string, n int, runID string) error {
	if path == "" {
		return errors.New("no archive configured; set -archive or archive_path")
	}
	database, err := db.Open(path)
	if err != nil {
		return err
	}
	defer database.Close()

	if runID != "" {
		rec, err := database.GetRun(runID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("run %s not found in %s", runID, path)
		}
		fmt.Print(rec.Report)
		return nil
	}

	runs, err := database.GetRuns(n)
	if err != nil {
		return err
	}
	trades := make(map[string][]db.TradeRecord, len(runs))
	for _, r := range runs {
		rows, err := database.GetResults(r.ID)
		if err != nil {
			return err
		}
		trades[r.ID] = rows
	}
	fmt.Print(report.History(runs, trades, 3))
	return nil
}
