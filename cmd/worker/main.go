package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"txn-insights/internal/config"
	"txn-insights/internal/engine"
	infra "txn-insights/internal/infra/bigquery"
	"txn-insights/internal/ingest"
	"txn-insights/internal/jobs"
	"txn-insights/internal/jobs/inmemory"
	"txn-insights/internal/logger"
)

const engineVersion = "v1"

func main() {
	_ = godotenv.Load()

	// Initialize logger
	log := logger.New()

	transactionsPath := flag.String("transactions", "", "optionally enqueue one batch on startup: transactions CSV")
	snapshotsPath := flag.String("snapshots", "", "account snapshots CSV for the startup batch")
	configPath := flag.String("config", "", "optional YAML settings file for the startup batch")
	workers := flag.Int("workers", 5, "number of concurrent batch jobs")
	flag.Parse()

	// Initialize job store and queue. In production this would be replaced
	// with Cloud Tasks or Pub/Sub.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, *workers, jobStore)

	log.Info().Msg("Starting worker service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	handler := func(ctx context.Context, job jobs.Job) error {
		batchJob, ok := job.(*jobs.DeriveBatchJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", batchJob.JobID).
			Str("transactions_uri", batchJob.TransactionsURI).
			Str("snapshots_uri", batchJob.SnapshotsURI).
			Msg("Processing derivation batch")

		if err := runBatch(ctx, batchJob); err != nil {
			log.Error().
				Err(err).
				Str("job_id", batchJob.JobID).
				Msg("Derivation batch failed")
			return err
		}

		log.Info().
			Str("job_id", batchJob.JobID).
			Msg("Derivation batch completed successfully")

		return nil
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	if *transactionsPath != "" && *snapshotsPath != "" {
		job := &jobs.DeriveBatchJob{
			TransactionsURI: *transactionsPath,
			SnapshotsURI:    *snapshotsPath,
			ConfigPath:      *configPath,
		}
		if err := jobQueue.PublishDeriveBatch(ctx, job); err != nil {
			log.Fatal().Err(err).Msg("Failed to enqueue startup batch")
		}
		log.Info().Str("job_id", job.JobID).Msg("Startup batch enqueued")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Worker service exited")
}

// runBatch executes one derivation batch end to end: read the inputs, run
// the engine and sink the results to BigQuery under a tracked run.
func runBatch(ctx context.Context, job *jobs.DeriveBatchJob) error {
	cfg := engine.DefaultConfig()
	if job.ConfigPath != "" {
		var err error
		cfg, err = config.Load(job.ConfigPath)
		if err != nil {
			return err
		}
	}

	txns, err := ingest.ReadTransactions(ctx, job.TransactionsURI)
	if err != nil {
		return err
	}
	snaps, err := ingest.ReadSnapshots(ctx, job.SnapshotsURI)
	if err != nil {
		return err
	}

	runID, err := infra.StartDerivationRun(ctx, engineVersion)
	if err != nil {
		return err
	}
	job.DerivationRunID = runID

	res, err := engine.Derive(ctx, txns, snaps, cfg)
	if err != nil {
		infra.MarkDerivationRunFailed(ctx, runID, err)
		return err
	}

	if err := infra.InsertTransactionLabels(ctx, infra.BuildTransactionLabelRows(runID, res.Transactions)); err != nil {
		infra.MarkDerivationRunFailed(ctx, runID, err)
		return err
	}
	if err := infra.InsertDailyBalances(ctx, infra.BuildDailyBalanceRows(runID, res.Balances)); err != nil {
		infra.MarkDerivationRunFailed(ctx, runID, err)
		return err
	}
	decisions := infra.BuildPaymentDecisionRows(runID, res.MobileModes, res.CarInsuranceModes, res.SwapClasses)
	if err := infra.InsertPaymentDecisions(ctx, decisions); err != nil {
		infra.MarkDerivationRunFailed(ctx, runID, err)
		return err
	}

	return infra.MarkDerivationRunSucceeded(ctx, runID, infra.RunCounts{
		Users:        len(res.MobileModes),
		Accounts:     len(res.Balances),
		Transactions: len(res.Transactions),
		Failures:     len(res.Failures),
	})
}
