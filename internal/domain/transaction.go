package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Direction indicates which side of the ledger a transaction sits on.
type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

// Transaction is one normalized transaction record as handed to the engine.
// Sign convention: credits are negative, debits positive (normalized
// upstream). The engine never mutates ingested fields; it only fills the
// derived ones (Tag, Transfer).
type Transaction struct {
	ID        string
	UserID    string
	AccountID string

	Date      civil.Date // day granularity
	Amount    decimal.Decimal
	Direction Direction

	Description  string
	MerchantName string

	// Category tags as they arrive from the aggregator: the automatic
	// tag, the user's manual correction, and the upstream platform tag.
	AutoTag   string
	ManualTag string
	UpTag     string

	// Derived fields.
	Tag      string // resolved category tag
	Transfer bool   // member of a confirmed transfer pair
}

// TagFields returns the resolved, automatic and manual tags concatenated,
// which is how category predicates match "any tag mentions X".
func (t Transaction) TagFields() string {
	return t.Tag + " " + t.AutoTag + " " + t.ManualTag
}

// AccountSnapshot is the latest refresh observation for an account.
// A LatestBalance of exactly zero is an unsuccessful-refresh sentinel,
// not a real balance; HasAnchor reports whether the snapshot is usable.
type AccountSnapshot struct {
	AccountID     string
	UserID        string
	LastRefreshed civil.Date
	LatestBalance decimal.Decimal
}

// HasAnchor reports whether the snapshot carries a trustworthy balance.
func (s AccountSnapshot) HasAnchor() bool {
	return !s.LatestBalance.IsZero()
}

// DailyBalance is one reconstructed balance value for an account-day.
type DailyBalance struct {
	AccountID string
	Date      civil.Date
	Balance   decimal.Decimal
}
