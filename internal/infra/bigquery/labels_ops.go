package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const (
	transactionLabelsTable = "transaction_labels"
	dailyBalancesTable     = "daily_balances"
	paymentDecisionsTable  = "payment_decisions"
)

// InsertTransactionLabels inserts a batch of TransactionLabelRow into
// insights.transaction_labels.
func InsertTransactionLabels(ctx context.Context, rows []*TransactionLabelRow) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("InsertTransactionLabels: bigquery client: %w", err)
	}
	defer client.Close()

	return InsertTransactionLabelsWithClient(ctx, client, rows)
}

// InsertTransactionLabelsWithClient inserts a batch of TransactionLabelRow
// using the provided BigQuery client.
func InsertTransactionLabelsWithClient(ctx context.Context, client *bigquery.Client, rows []*TransactionLabelRow) error {
	if len(rows) == 0 {
		return nil
	}

	table := client.DatasetInProject(projectID, datasetID).Table(transactionLabelsTable)
	inserter := table.Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactionLabels: inserting rows: %w", err)
	}

	return nil
}

// InsertDailyBalances inserts a batch of DailyBalanceRow into
// insights.daily_balances.
func InsertDailyBalances(ctx context.Context, rows []*DailyBalanceRow) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("InsertDailyBalances: bigquery client: %w", err)
	}
	defer client.Close()

	return InsertDailyBalancesWithClient(ctx, client, rows)
}

// InsertDailyBalancesWithClient inserts a batch of DailyBalanceRow using the
// provided BigQuery client.
func InsertDailyBalancesWithClient(ctx context.Context, client *bigquery.Client, rows []*DailyBalanceRow) error {
	if len(rows) == 0 {
		return nil
	}

	table := client.DatasetInProject(projectID, datasetID).Table(dailyBalancesTable)
	inserter := table.Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertDailyBalances: inserting rows: %w", err)
	}

	return nil
}

// InsertPaymentDecisions inserts a batch of PaymentDecisionRow into
// insights.payment_decisions.
func InsertPaymentDecisions(ctx context.Context, rows []*PaymentDecisionRow) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("InsertPaymentDecisions: bigquery client: %w", err)
	}
	defer client.Close()

	return InsertPaymentDecisionsWithClient(ctx, client, rows)
}

// InsertPaymentDecisionsWithClient inserts a batch of PaymentDecisionRow
// using the provided BigQuery client.
func InsertPaymentDecisionsWithClient(ctx context.Context, client *bigquery.Client, rows []*PaymentDecisionRow) error {
	if len(rows) == 0 {
		return nil
	}

	table := client.DatasetInProject(projectID, datasetID).Table(paymentDecisionsTable)
	inserter := table.Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertPaymentDecisions: inserting rows: %w", err)
	}

	return nil
}

// QueryLabelsByRun queries the transaction labels written by one derivation
// run.
func QueryLabelsByRun(ctx context.Context, derivationRunID string) ([]*TransactionLabelRow, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("QueryLabelsByRun: bigquery client: %w", err)
	}
	defer client.Close()

	return QueryLabelsByRunWithClient(ctx, client, derivationRunID)
}

// QueryLabelsByRunWithClient queries the transaction labels written by one
// derivation run using the provided BigQuery client. Only includes labels
// from successful runs.
func QueryLabelsByRunWithClient(ctx context.Context, client *bigquery.Client, derivationRunID string) ([]*TransactionLabelRow, error) {
	q := client.Query(`
		SELECT
			l.transaction_id,
			l.derivation_run_id,
			l.user_id,
			l.account_id,
			l.transaction_date,
			l.amount,
			l.direction,
			l.tag,
			l.is_transfer,
			l.created_ts
		FROM insights.transaction_labels l
		INNER JOIN insights.derivation_runs dr
		  ON l.derivation_run_id = dr.derivation_run_id
		WHERE l.derivation_run_id = @derivation_run_id
		  AND dr.status = 'SUCCESS'
		ORDER BY l.transaction_date, l.transaction_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "derivation_run_id", Value: derivationRunID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryLabelsByRun: query read: %w", err)
	}

	var rows []*TransactionLabelRow
	for {
		var r TransactionLabelRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryLabelsByRun: iterating rows: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}
