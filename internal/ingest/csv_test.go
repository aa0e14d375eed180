package ingest

import (
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"txn-insights/internal/domain"
)

const transactionsCSV = `transaction_id,user_id,account_id,transaction_date,amount,credit_debit,transaction_description,merchant_name,auto_tag,manual_tag,up_tag
t1,u1,a1,2023-05-01,-100.50,credit,Salary Payment,ACME Corp,earnings,no tag,no tag
t2,u1,a1,2023-05-02,40,debit,O2 Monthly Bill,O2,mobile,no tag,mobile
`

func TestParseTransactions(t *testing.T) {
	txns, err := ParseTransactions(strings.NewReader(transactionsCSV))
	if err != nil {
		t.Fatalf("ParseTransactions failed: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("parsed %d records, want 2", len(txns))
	}

	got := txns[0]
	if got.ID != "t1" || got.UserID != "u1" || got.AccountID != "a1" {
		t.Errorf("ids = %s/%s/%s", got.ID, got.UserID, got.AccountID)
	}
	if got.Date != (civil.Date{Year: 2023, Month: 5, Day: 1}) {
		t.Errorf("date = %s", got.Date)
	}
	if !got.Amount.Equal(decimal.RequireFromString("-100.50")) {
		t.Errorf("amount = %s", got.Amount)
	}
	if got.Direction != domain.Credit {
		t.Errorf("direction = %s", got.Direction)
	}
	// free text is lowercased on the way in
	if got.Description != "salary payment" || got.MerchantName != "acme corp" {
		t.Errorf("description/merchant = %q/%q", got.Description, got.MerchantName)
	}
}

func TestParseTransactions_ColumnOrderFree(t *testing.T) {
	reordered := `amount,transaction_id,user_id,account_id,transaction_date,credit_debit,transaction_description,merchant_name,auto_tag,manual_tag,up_tag
25,t9,u2,a2,2023-01-15,debit,coffee,cafe,dining,no tag,no tag
`
	txns, err := ParseTransactions(strings.NewReader(reordered))
	if err != nil {
		t.Fatalf("ParseTransactions failed: %v", err)
	}
	if txns[0].ID != "t9" || !txns[0].Amount.Equal(decimal.NewFromInt(25)) {
		t.Errorf("record = %+v", txns[0])
	}
}

func TestParseTransactions_MissingColumn(t *testing.T) {
	bad := "transaction_id,user_id\nt1,u1\n"
	if _, err := ParseTransactions(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for missing columns")
	}
}

func TestParseTransactions_BadDirection(t *testing.T) {
	bad := strings.Replace(transactionsCSV, "credit,", "sideways,", 1)
	if _, err := ParseTransactions(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for invalid credit_debit value")
	}
}

func TestParseSnapshots(t *testing.T) {
	data := `account_id,user_id,account_last_refreshed,latest_balance
a1,u1,2023-06-10,1234.56
a2,u1,2023-06-10,0
`
	snaps, err := ParseSnapshots(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseSnapshots failed: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("parsed %d snapshots, want 2", len(snaps))
	}
	if !snaps[0].HasAnchor() {
		t.Error("a1 should have an anchor")
	}
	if snaps[1].HasAnchor() {
		t.Error("a2's zero balance is a sentinel, not an anchor")
	}
}

func TestSplitGCSURI(t *testing.T) {
	tests := []struct {
		uri     string
		bucket  string
		object  string
		wantErr bool
	}{
		{uri: "gs://data/exports/txns.csv", bucket: "data", object: "exports/txns.csv"},
		{uri: "gs://data", wantErr: true},
		{uri: "gs:///no-bucket", wantErr: true},
	}
	for _, tt := range tests {
		bucket, object, err := splitGCSURI(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Errorf("splitGCSURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			continue
		}
		if err == nil && (bucket != tt.bucket || object != tt.object) {
			t.Errorf("splitGCSURI(%q) = %s/%s, want %s/%s", tt.uri, bucket, object, tt.bucket, tt.object)
		}
	}
}
