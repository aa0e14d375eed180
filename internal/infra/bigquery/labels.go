package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

type TransactionLabelRow struct {
	TransactionID   string `bigquery:"transaction_id"`    // REQUIRED
	DerivationRunID string `bigquery:"derivation_run_id"` // REQUIRED

	UserID    string `bigquery:"user_id"`    // NULLABLE
	AccountID string `bigquery:"account_id"` // NULLABLE

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	Amount          *big.Rat   `bigquery:"amount"`           // REQUIRED NUMERIC
	Direction       string     `bigquery:"direction"`        // NULLABLE

	Tag        bigquery.NullString `bigquery:"tag"`         // NULLABLE
	IsTransfer bool                `bigquery:"is_transfer"` // REQUIRED

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED (default CURRENT_TIMESTAMP)
}

type DailyBalanceRow struct {
	AccountID       string `bigquery:"account_id"`        // REQUIRED
	DerivationRunID string `bigquery:"derivation_run_id"` // REQUIRED

	Date    civil.Date `bigquery:"date"`    // REQUIRED
	Balance *big.Rat   `bigquery:"balance"` // REQUIRED NUMERIC

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED (default CURRENT_TIMESTAMP)
}

type PaymentDecisionRow struct {
	UserID          string `bigquery:"user_id"`           // REQUIRED
	DerivationRunID string `bigquery:"derivation_run_id"` // REQUIRED

	MobilePaymentMode       string              `bigquery:"mobile_payment_mode"`        // NULLABLE
	CarInsurancePaymentMode string              `bigquery:"car_insurance_payment_mode"` // NULLABLE
	InsurerSwapClass        bigquery.NullString `bigquery:"insurer_swap_class"`         // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED (default CURRENT_TIMESTAMP)
}
