package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"txn-insights/internal/logger"
)

const (
	projectID           = "steady-flare-461204-k3"
	datasetID           = "insights"
	derivationRunsTable = "derivation_runs"
)

// RunCounts summarises a derivation run for the run-tracking table.
type RunCounts struct {
	Users        int
	Accounts     int
	Transactions int
	Failures     int
}

// StartDerivationRun inserts a new row into insights.derivation_runs with
// status=RUNNING and returns the generated derivation_run_id.
func StartDerivationRun(ctx context.Context, engineVersion string) (string, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("StartDerivationRun: bigquery client: %w", err)
	}
	defer client.Close()

	return StartDerivationRunWithClient(ctx, client, engineVersion)
}

// StartDerivationRunWithClient inserts a new row into insights.derivation_runs
// with status=RUNNING using the provided BigQuery client.
func StartDerivationRunWithClient(ctx context.Context, client *bigquery.Client, engineVersion string) (string, error) {
	derivationRunID := uuid.NewString()
	started := time.Now()

	q := client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			derivation_run_id,
			started_ts,
			engine_version,
			status
		)
		VALUES (
			@derivation_run_id,
			@started_ts,
			@engine_version,
			@status
		)
	`, datasetID, derivationRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "derivation_run_id", Value: derivationRunID},
		{Name: "started_ts", Value: started},
		{Name: "engine_version", Value: engineVersion},
		{Name: "status", Value: "RUNNING"},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return "", fmt.Errorf("StartDerivationRun: running insert query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("StartDerivationRun: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return "", fmt.Errorf("StartDerivationRun: job error: %w", err)
	}

	return derivationRunID, nil
}

// MarkDerivationRunSucceeded sets status=SUCCESS, finished_ts and the run
// counts, and clears error_message.
func MarkDerivationRunSucceeded(ctx context.Context, derivationRunID string, counts RunCounts) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("MarkDerivationRunSucceeded: bigquery client: %w", err)
	}
	defer client.Close()

	return MarkDerivationRunSucceededWithClient(ctx, client, derivationRunID, counts)
}

// MarkDerivationRunSucceededWithClient sets status=SUCCESS, finished_ts and
// the run counts using the provided BigQuery client.
func MarkDerivationRunSucceededWithClient(ctx context.Context, client *bigquery.Client, derivationRunID string, counts RunCounts) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = "",
		    users = @users,
		    accounts = @accounts,
		    transactions = @transactions,
		    failures = @failures
		WHERE derivation_run_id = @derivation_run_id
	`, datasetID, derivationRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "SUCCESS"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "users", Value: int64(counts.Users)},
		{Name: "accounts", Value: int64(counts.Accounts)},
		{Name: "transactions", Value: int64(counts.Transactions)},
		{Name: "failures", Value: int64(counts.Failures)},
		{Name: "derivation_run_id", Value: derivationRunID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("MarkDerivationRunSucceeded: running update query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("MarkDerivationRunSucceeded: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("MarkDerivationRunSucceeded: job error: %w", err)
	}

	return nil
}

// MarkDerivationRunFailed sets status=FAILED, finished_ts and error_message.
func MarkDerivationRunFailed(ctx context.Context, derivationRunID string, runErr error) {
	log := logger.FromContext(ctx)

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		log.Error().
			Err(err).
			Str("derivation_run_id", derivationRunID).
			Msg("MarkDerivationRunFailed: bigquery client error")
		return
	}
	defer client.Close()

	MarkDerivationRunFailedWithClient(ctx, client, derivationRunID, runErr)
}

// MarkDerivationRunFailedWithClient sets status=FAILED, finished_ts and
// error_message using the provided BigQuery client.
func MarkDerivationRunFailedWithClient(ctx context.Context, client *bigquery.Client, derivationRunID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE derivation_run_id = @derivation_run_id
	`, datasetID, derivationRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "derivation_run_id", Value: derivationRunID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Str("derivation_run_id", derivationRunID).
			Msg("MarkDerivationRunFailed: running update query")
		return
	}

	status, err := job.Wait(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Str("derivation_run_id", derivationRunID).
			Msg("MarkDerivationRunFailed: waiting for job")
		return
	}
	if err := status.Err(); err != nil {
		log.Error().
			Err(err).
			Str("derivation_run_id", derivationRunID).
			Msg("MarkDerivationRunFailed: job completed with error")
	}
}
