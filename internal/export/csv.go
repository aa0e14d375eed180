// Package export writes derivation results as CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"txn-insights/internal/domain"
	"txn-insights/internal/engine"
)

// WriteTransactions writes the tagged transaction set. The layout is the
// ingest layout plus the derived tag and is_transfer columns.
func WriteTransactions(w io.Writer, txns []domain.Transaction) error {
	cw := csv.NewWriter(w)

	header := []string{
		"transaction_id", "user_id", "account_id", "transaction_date",
		"amount", "credit_debit", "transaction_description", "merchant_name",
		"auto_tag", "manual_tag", "up_tag", "tag", "is_transfer",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	for _, tx := range txns {
		rec := []string{
			tx.ID, tx.UserID, tx.AccountID, tx.Date.String(),
			tx.Amount.String(), string(tx.Direction), tx.Description, tx.MerchantName,
			tx.AutoTag, tx.ManualTag, tx.UpTag, tx.Tag, strconv.FormatBool(tx.Transfer),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("export: write transaction %s: %w", tx.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteBalances writes the reconstructed daily series, ordered by account
// then date.
func WriteBalances(w io.Writer, series map[string][]domain.DailyBalance) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"account_id", "date", "balance"}); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	accounts := make([]string, 0, len(series))
	for account := range series {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	for _, account := range accounts {
		for _, b := range series[account] {
			rec := []string{account, b.Date.String(), b.Balance.String()}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("export: write balance for %s: %w", account, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteDecisions writes the per-user classification outcomes, ordered by
// user. The swap column is empty for users without relevant history.
func WriteDecisions(w io.Writer, res *engine.Result) error {
	cw := csv.NewWriter(w)

	header := []string{"user_id", "mobile_payment_mode", "car_insurance_payment_mode", "insurer_swap_class"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	users := make([]string, 0, len(res.MobileModes))
	for user := range res.MobileModes {
		users = append(users, user)
	}
	sort.Strings(users)

	for _, user := range users {
		swap := ""
		if class, ok := res.SwapClasses[user]; ok {
			swap = class.String()
		}
		rec := []string{
			user,
			res.MobileModes[user].String(),
			res.CarInsuranceModes[user].String(),
			swap,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("export: write decisions for %s: %w", user, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
