package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"txn-insights/internal/config"
	"txn-insights/internal/engine"
	"txn-insights/internal/export"
	infra "txn-insights/internal/infra/bigquery"
	"txn-insights/internal/ingest"
	"txn-insights/internal/logger"
)

const engineVersion = "v1"

func main() {
	_ = godotenv.Load()

	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	transactionsPath := flag.String("transactions", "", "transactions CSV, local path or gs:// URI")
	snapshotsPath := flag.String("snapshots", "", "account snapshots CSV, local path or gs:// URI")
	configPath := flag.String("config", "", "optional YAML settings file")
	outDir := flag.String("out", "out", "directory for result CSVs")
	sinkToBQ := flag.Bool("bq", false, "also write results to BigQuery")
	flag.Parse()

	if *transactionsPath == "" || *snapshotsPath == "" {
		log.Fatal().Msg("Error: -transactions and -snapshots are required")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	// Add logger to context
	ctx = logger.WithContext(ctx, log)

	cfg := engine.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load settings")
		}
	}

	log.Info().
		Str("transactions", *transactionsPath).
		Str("snapshots", *snapshotsPath).
		Msg("Starting derivation")

	txns, err := ingest.ReadTransactions(ctx, *transactionsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read transactions")
	}
	snaps, err := ingest.ReadSnapshots(ctx, *snapshotsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read snapshots")
	}

	var runID string
	if *sinkToBQ {
		runID, err = infra.StartDerivationRun(ctx, engineVersion)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to start derivation run")
		}
		log.Info().Str("derivation_run_id", runID).Msg("Derivation run started")
	}

	res, err := engine.Derive(ctx, txns, snaps, cfg)
	if err != nil {
		if *sinkToBQ {
			infra.MarkDerivationRunFailed(ctx, runID, err)
		}
		log.Fatal().Err(err).Msg("Derivation failed")
	}

	for _, f := range res.Failures {
		log.Warn().
			Str("entity", f.Entity).
			Str("op", f.Op).
			Err(f.Err).
			Msg("Entity skipped")
	}

	if err := writeResults(*outDir, res); err != nil {
		if *sinkToBQ {
			infra.MarkDerivationRunFailed(ctx, runID, err)
		}
		log.Fatal().Err(err).Msg("Failed to write results")
	}

	if *sinkToBQ {
		if err := sinkResults(ctx, runID, res); err != nil {
			infra.MarkDerivationRunFailed(ctx, runID, err)
			log.Fatal().Err(err).Msg("Failed to sink results to BigQuery")
		}
		counts := infra.RunCounts{
			Users:        len(res.MobileModes),
			Accounts:     len(res.Balances),
			Transactions: len(res.Transactions),
			Failures:     len(res.Failures),
		}
		if err := infra.MarkDerivationRunSucceeded(ctx, runID, counts); err != nil {
			log.Fatal().Err(err).Msg("Failed to mark derivation run succeeded")
		}
	}

	fmt.Println("Derivation completed successfully.")
}

// writeResults writes the three result CSVs under dir.
func writeResults(dir string, res *engine.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	write := func(name string, fn func(f *os.File) error) error {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		if err := fn(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}

	if err := write("transactions.csv", func(f *os.File) error {
		return export.WriteTransactions(f, res.Transactions)
	}); err != nil {
		return err
	}
	if err := write("balances.csv", func(f *os.File) error {
		return export.WriteBalances(f, res.Balances)
	}); err != nil {
		return err
	}
	return write("decisions.csv", func(f *os.File) error {
		return export.WriteDecisions(f, res)
	})
}

// sinkResults writes the derived rows to BigQuery under one run ID.
func sinkResults(ctx context.Context, runID string, res *engine.Result) error {
	if err := infra.InsertTransactionLabels(ctx, infra.BuildTransactionLabelRows(runID, res.Transactions)); err != nil {
		return err
	}
	if err := infra.InsertDailyBalances(ctx, infra.BuildDailyBalanceRows(runID, res.Balances)); err != nil {
		return err
	}
	rows := infra.BuildPaymentDecisionRows(runID, res.MobileModes, res.CarInsuranceModes, res.SwapClasses)
	return infra.InsertPaymentDecisions(ctx, rows)
}
