// Package ingest loads transaction and account-snapshot records from CSV,
// either on the local filesystem or in Google Cloud Storage.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"txn-insights/internal/domain"
)

// transaction CSV columns
var transactionColumns = []string{
	"transaction_id", "user_id", "account_id", "transaction_date",
	"amount", "credit_debit", "transaction_description", "merchant_name",
	"auto_tag", "manual_tag", "up_tag",
}

// snapshot CSV columns
var snapshotColumns = []string{
	"account_id", "user_id", "account_last_refreshed", "latest_balance",
}

// ReadTransactions reads a transactions CSV from path. The header row is
// required; column order is free.
func ReadTransactions(ctx context.Context, path string) ([]domain.Transaction, error) {
	r, closeFn, err := open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return ParseTransactions(r)
}

// ParseTransactions decodes transaction records from CSV data.
func ParseTransactions(r io.Reader) ([]domain.Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	col, err := header(cr, transactionColumns)
	if err != nil {
		return nil, err
	}

	var out []domain.Transaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: %w", line, err)
		}

		date, err := civil.ParseDate(rec[col["transaction_date"]])
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: transaction_date: %w", line, err)
		}
		amount, err := decimal.NewFromString(rec[col["amount"]])
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: amount: %w", line, err)
		}
		dir := domain.Direction(strings.ToLower(strings.TrimSpace(rec[col["credit_debit"]])))
		if dir != domain.Credit && dir != domain.Debit {
			return nil, fmt.Errorf("ingest: line %d: invalid credit_debit %q", line, rec[col["credit_debit"]])
		}

		out = append(out, domain.Transaction{
			ID:           rec[col["transaction_id"]],
			UserID:       rec[col["user_id"]],
			AccountID:    rec[col["account_id"]],
			Date:         date,
			Amount:       amount,
			Direction:    dir,
			Description:  strings.ToLower(rec[col["transaction_description"]]),
			MerchantName: strings.ToLower(rec[col["merchant_name"]]),
			AutoTag:      strings.ToLower(rec[col["auto_tag"]]),
			ManualTag:    strings.ToLower(rec[col["manual_tag"]]),
			UpTag:        strings.ToLower(rec[col["up_tag"]]),
		})
	}
	return out, nil
}

// ReadSnapshots reads an account-snapshot CSV from path.
func ReadSnapshots(ctx context.Context, path string) ([]domain.AccountSnapshot, error) {
	r, closeFn, err := open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return ParseSnapshots(r)
}

// ParseSnapshots decodes account snapshots from CSV data.
func ParseSnapshots(r io.Reader) ([]domain.AccountSnapshot, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	col, err := header(cr, snapshotColumns)
	if err != nil {
		return nil, err
	}

	var out []domain.AccountSnapshot
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: %w", line, err)
		}

		refreshed, err := civil.ParseDate(rec[col["account_last_refreshed"]])
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: account_last_refreshed: %w", line, err)
		}
		balance, err := decimal.NewFromString(rec[col["latest_balance"]])
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: latest_balance: %w", line, err)
		}

		out = append(out, domain.AccountSnapshot{
			AccountID:     rec[col["account_id"]],
			UserID:        rec[col["user_id"]],
			LastRefreshed: refreshed,
			LatestBalance: balance,
		})
	}
	return out, nil
}

// header reads the header row and verifies the required columns exist.
func header(cr *csv.Reader, required []string) (map[string]int, error) {
	headers, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}
	col := make(map[string]int, len(headers))
	for i, h := range headers {
		col[strings.TrimSpace(h)] = i
	}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("ingest: missing column %q", name)
		}
	}
	return col, nil
}

// open returns a reader for a local path or a gs:// URI.
func open(ctx context.Context, path string) (io.Reader, func() error, error) {
	if strings.HasPrefix(path, "gs://") {
		data, err := FetchFromGCS(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return strings.NewReader(string(data)), func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	return f, f.Close, nil
}
