package bigquery

import (
	"sort"
	"time"

	"cloud.google.com/go/bigquery"

	"txn-insights/internal/domain"
)

// BuildTransactionLabelRows converts tagged transactions into sink rows for
// one derivation run.
func BuildTransactionLabelRows(derivationRunID string, txns []domain.Transaction) []*TransactionLabelRow {
	now := time.Now()
	rows := make([]*TransactionLabelRow, 0, len(txns))
	for _, tx := range txns {
		rows = append(rows, &TransactionLabelRow{
			TransactionID:   tx.ID,
			DerivationRunID: derivationRunID,
			UserID:          tx.UserID,
			AccountID:       tx.AccountID,
			TransactionDate: tx.Date,
			Amount:          tx.Amount.Rat(),
			Direction:       string(tx.Direction),
			Tag:             bigquery.NullString{StringVal: tx.Tag, Valid: tx.Tag != ""},
			IsTransfer:      tx.Transfer,
			CreatedTS:       now,
		})
	}
	return rows
}

// BuildDailyBalanceRows converts reconstructed balance series into sink rows,
// ordered by account then date.
func BuildDailyBalanceRows(derivationRunID string, series map[string][]domain.DailyBalance) []*DailyBalanceRow {
	accounts := make([]string, 0, len(series))
	for account := range series {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	now := time.Now()
	var rows []*DailyBalanceRow
	for _, account := range accounts {
		for _, b := range series[account] {
			rows = append(rows, &DailyBalanceRow{
				AccountID:       account,
				DerivationRunID: derivationRunID,
				Date:            b.Date,
				Balance:         b.Balance.Rat(),
				CreatedTS:       now,
			})
		}
	}
	return rows
}

// BuildPaymentDecisionRows converts per-user classifications into sink rows,
// ordered by user. Users without a swap classification get a NULL swap class.
func BuildPaymentDecisionRows(derivationRunID string, mobile, carInsurance map[string]domain.PaymentMode, swaps map[string]domain.SwapClass) []*PaymentDecisionRow {
	users := make([]string, 0, len(mobile))
	for user := range mobile {
		users = append(users, user)
	}
	sort.Strings(users)

	now := time.Now()
	rows := make([]*PaymentDecisionRow, 0, len(users))
	for _, user := range users {
		swap := bigquery.NullString{}
		if class, ok := swaps[user]; ok {
			swap = bigquery.NullString{StringVal: class.String(), Valid: true}
		}
		rows = append(rows, &PaymentDecisionRow{
			UserID:                  user,
			DerivationRunID:         derivationRunID,
			MobilePaymentMode:       mobile[user].String(),
			CarInsurancePaymentMode: carInsurance[user].String(),
			InsurerSwapClass:        swap,
			CreatedTS:               now,
		})
	}
	return rows
}
