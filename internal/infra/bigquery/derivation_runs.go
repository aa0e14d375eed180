package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

type DerivationRunRow struct {
	DerivationRunID string `bigquery:"derivation_run_id"` // REQUIRED

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	EngineVersion string `bigquery:"engine_version"` // NULLABLE

	Status       string `bigquery:"status"`        // NULLABLE
	ErrorMessage string `bigquery:"error_message"` // NULLABLE

	Users        bigquery.NullInt64 `bigquery:"users"`        // NULLABLE
	Accounts     bigquery.NullInt64 `bigquery:"accounts"`     // NULLABLE
	Transactions bigquery.NullInt64 `bigquery:"transactions"` // NULLABLE
	Failures     bigquery.NullInt64 `bigquery:"failures"`     // NULLABLE
}
