// Command monitor audits registry health and runs the batch hygiene jobs.
//
// Usage: monitor run [full|quick|metrics|sweep|backfill|refresh|help]
//
// Exit code 0 on success with no critical findings, 1 on any error or when
// the audit reports critical health.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"tenet/internal/dedupe"
	"tenet/internal/fundamentals"
	"tenet/internal/importguard"
	"tenet/internal/maintenance"
	"tenet/internal/monitor"
	"tenet/internal/platform/config"
	"tenet/internal/platform/logger"
	"tenet/internal/platform/postgres"
	"tenet/internal/registry/store"
	"tenet/internal/ticker"
)

const runTimeout = 5 * time.Minute

func main() {
	if len(os.Args) < 2 || os.Args[1] != "run" {
		usage()
		os.Exit(1)
	}
	command := "full"
	if len(os.Args) > 2 {
		command = os.Args[2]
	}
	if command == "help" {
		usage()
		return
	}

	cfg := config.FromEnv()
	log := logger.New()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	registry := buildStore(db)

	validator := ticker.New(registry, ticker.DefaultReferenceTable())
	detector := dedupe.New(registry)
	guard := importguard.New(registry, validator, detector, log, nil)
	mon := monitor.New(guard, registry, cfg.Monitor, log, nil)
	runner := maintenance.NewRunner(registry, detector, validator, guard, log)

	switch command {
	case "full":
		report, err := mon.RunAudit(ctx)
		exitOn(err, log)
		printJSON(report)
		if report.Health == monitor.HealthCritical {
			os.Exit(1)
		}
	case "quick":
		healthy, alerts, err := mon.QuickHealthCheck(ctx)
		exitOn(err, log)
		fmt.Printf("healthy=%t alerts=%d\n", healthy, alerts)
		if !healthy {
			os.Exit(1)
		}
	case "metrics":
		report, err := guard.BuildQualityReport(ctx)
		exitOn(err, log)
		printJSON(report)
	case "sweep":
		result, err := runner.SweepDuplicateEvidence(ctx)
		exitOn(err, log)
		printJSON(result)
	case "backfill":
		result, err := runner.BackfillTickers(ctx)
		exitOn(err, log)
		printJSON(result)
	case "refresh":
		if cfg.Fundamentals.BaseURL == "" {
			log.Error("TENET_FUNDAMENTALS_URL is not configured")
			os.Exit(1)
		}
		provider := fundamentals.NewHTTPProvider(cfg.Fundamentals)
		collector := fundamentals.NewCollector(registry, provider, log)
		result, err := collector.RefreshAll(ctx)
		exitOn(err, log)
		printJSON(result)
	default:
		usage()
		os.Exit(1)
	}
}

func buildStore(db *sql.DB) store.Store {
	if db == nil {
		return store.NewInMemory()
	}
	return store.NewPostgres(db)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func exitOn(err error, log interface{ Error(string, ...any) }) {
	if err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: monitor run [command]

commands:
  full      run the complete registry audit and print the report (default)
  quick     boolean health check plus alert count
  metrics   print the numeric quality summary
  sweep     remove duplicate evidence records, keeping the earliest
  backfill  assign reference-table tickers to companies lacking one
  refresh   pull profiles and financials from the configured provider
  help      show this message`)
}
