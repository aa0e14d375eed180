package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"txn-insights/internal/balances"
	"txn-insights/internal/domain"
)

func day(d int) civil.Date {
	return civil.Date{Year: 2023, Month: 5, Day: d}
}

func fixture() ([]domain.Transaction, []domain.AccountSnapshot) {
	txns := []domain.Transaction{
		// u1: an internal transfer between two accounts.
		{ID: "p1", UserID: "u1", AccountID: "a1", Date: day(1), Amount: decimal.NewFromInt(-100), Direction: domain.Credit, Description: "deposit"},
		{ID: "p2", UserID: "u1", AccountID: "a2", Date: day(3), Amount: decimal.NewFromInt(100), Direction: domain.Debit, Description: "withdrawal"},
		// u2: six identical mobile instalments.
		{ID: "m1", UserID: "u2", AccountID: "a3", Date: day(2), Amount: decimal.NewFromInt(40), Direction: domain.Debit, MerchantName: "o2", AutoTag: "mobile"},
		{ID: "m2", UserID: "u2", AccountID: "a3", Date: day(6), Amount: decimal.NewFromInt(40), Direction: domain.Debit, MerchantName: "o2", AutoTag: "mobile"},
		{ID: "m3", UserID: "u2", AccountID: "a3", Date: day(10), Amount: decimal.NewFromInt(40), Direction: domain.Debit, MerchantName: "o2", AutoTag: "mobile"},
		{ID: "m4", UserID: "u2", AccountID: "a3", Date: day(14), Amount: decimal.NewFromInt(40), Direction: domain.Debit, MerchantName: "o2", AutoTag: "mobile"},
		{ID: "m5", UserID: "u2", AccountID: "a3", Date: day(18), Amount: decimal.NewFromInt(40), Direction: domain.Debit, MerchantName: "o2", AutoTag: "mobile"},
		{ID: "m6", UserID: "u2", AccountID: "a3", Date: day(22), Amount: decimal.NewFromInt(40), Direction: domain.Debit, MerchantName: "o2", AutoTag: "mobile"},
		// u3: swapped home insurers twice within one year.
		{ID: "s1", UserID: "u3", AccountID: "a4", Date: day(4), Amount: decimal.NewFromInt(20), Direction: domain.Debit, AutoTag: "home insurance", MerchantName: "acme"},
		{ID: "s2", UserID: "u3", AccountID: "a4", Date: day(12), Amount: decimal.NewFromInt(21), Direction: domain.Debit, AutoTag: "home insurance", MerchantName: "globex"},
		{ID: "s3", UserID: "u3", AccountID: "a4", Date: day(20), Amount: decimal.NewFromInt(22), Direction: domain.Debit, AutoTag: "home insurance", MerchantName: "initech"},
	}
	snaps := []domain.AccountSnapshot{
		{AccountID: "a1", UserID: "u1", LastRefreshed: day(10), LatestBalance: decimal.NewFromInt(500)},
		{AccountID: "a2", UserID: "u1", LastRefreshed: day(10), LatestBalance: decimal.NewFromInt(250)},
		{AccountID: "a3", UserID: "u2", LastRefreshed: day(25), LatestBalance: decimal.NewFromInt(80)},
		// a4 refresh reported zero: sentinel for "no refresh happened".
		{AccountID: "a4", UserID: "u3", LastRefreshed: day(25), LatestBalance: decimal.Zero},
	}
	return txns, snaps
}

func TestDerive_EndToEnd(t *testing.T) {
	txns, snaps := fixture()

	res, err := Derive(context.Background(), txns, snaps, DefaultConfig())
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	// Transfer pair tagged on both sides.
	tagged := map[string]bool{}
	for _, tx := range res.Transactions {
		if tx.Transfer {
			tagged[tx.ID] = true
		}
	}
	if !tagged["p1"] || !tagged["p2"] || len(tagged) != 2 {
		t.Errorf("transfer tags = %v, want exactly p1 and p2", tagged)
	}

	// Payment modes.
	if got := res.MobileModes["u2"]; got != domain.PaymentModeRegular {
		t.Errorf("u2 mobile mode = %v, want regular", got)
	}
	if got := res.MobileModes["u3"]; got != domain.PaymentModeNotApplicable {
		t.Errorf("u3 mobile mode = %v, want not_applicable", got)
	}
	if got := res.CarInsuranceModes["u1"]; got != domain.PaymentModeNotApplicable {
		t.Errorf("u1 car insurance mode = %v, want not_applicable", got)
	}

	// Swap classes: u3 frequent, u1/u2 unclassified.
	if got, ok := res.SwapClasses["u3"]; !ok || got != domain.SwapFrequent {
		t.Errorf("u3 swap class = %v (present=%v), want frequent", got, ok)
	}
	if _, ok := res.SwapClasses["u1"]; ok {
		t.Error("u1 must have no swap classification")
	}

	// Balances: three reconstructed accounts, one anchor failure.
	if len(res.Balances) != 3 {
		t.Errorf("reconstructed %d accounts, want 3", len(res.Balances))
	}
	if len(res.Failures) != 1 {
		t.Fatalf("failures = %+v, want exactly one", res.Failures)
	}
	f := res.Failures[0]
	if f.Entity != "a4" || !errors.Is(f.Err, balances.ErrNoAnchor) {
		t.Errorf("failure = %+v, want a4 with ErrNoAnchor", f)
	}

	// Anchor exactness on a reconstructed account.
	for _, b := range res.Balances["a1"] {
		if b.Date == day(10) && !b.Balance.Equal(decimal.NewFromInt(500)) {
			t.Errorf("a1 anchor-day balance = %s, want 500", b.Balance)
		}
	}
}

func TestDerive_InputNotMutated(t *testing.T) {
	txns, snaps := fixture()

	if _, err := Derive(context.Background(), txns, snaps, DefaultConfig()); err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	for _, tx := range txns {
		if tx.Transfer || tx.Tag != "" {
			t.Fatalf("input record %s was mutated", tx.ID)
		}
	}
}

func TestDerive_DeterministicAcrossWorkerCounts(t *testing.T) {
	txns, snaps := fixture()

	results := make([]*Result, 0, 3)
	for _, workers := range []int{1, 4, 16} {
		cfg := DefaultConfig()
		cfg.Workers = workers
		res, err := Derive(context.Background(), txns, snaps, cfg)
		if err != nil {
			t.Fatalf("Derive with %d workers failed: %v", workers, err)
		}
		results = append(results, res)
	}

	base := results[0]
	for i, res := range results[1:] {
		for u, m := range base.MobileModes {
			if res.MobileModes[u] != m {
				t.Errorf("run %d: mobile mode for %s differs", i+1, u)
			}
		}
		for j, tx := range base.Transactions {
			if res.Transactions[j].Transfer != tx.Transfer {
				t.Errorf("run %d: transfer flag for %s differs", i+1, tx.ID)
			}
		}
		if fmt.Sprint(res.SwapClasses) != fmt.Sprint(base.SwapClasses) {
			t.Errorf("run %d: swap classes differ", i+1)
		}
	}
}

func TestDerive_BadAggregatorName(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BalanceAgg = "median"

	if _, err := Derive(context.Background(), nil, nil, cfg); err == nil {
		t.Fatal("expected error for unknown balance_agg")
	}
}
