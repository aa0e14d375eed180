// Package balances reconstructs a complete daily balance series per
// account from sparse transaction flows and one trusted anchor: the
// balance observed at the account's last refresh.
package balances

import (
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"txn-insights/internal/domain"
	"txn-insights/internal/sequence"
)

// ErrNoAnchor is returned when an account has no usable balance
// observation. A refresh that reports exactly zero is an
// unsuccessful-refresh sentinel and never used as an anchor.
var ErrNoAnchor = fmt.Errorf("balances: no usable balance anchor")

// Config holds the reconstruction knobs.
type Config struct {
	// Window is the smoothing window in days applied to daily net flow.
	Window int
	// Agg is the window aggregation; Mean when nil.
	Agg sequence.Aggregator
}

// DefaultConfig returns a 3-day trailing mean.
func DefaultConfig() Config {
	return Config{Window: 3, Agg: sequence.Mean{}}
}

func (c Config) aggregator() sequence.Aggregator {
	if c.Agg == nil {
		return sequence.Mean{}
	}
	return c.Agg
}

// Reconstruct produces one balance value per calendar day spanning the
// account's observed range. The series walks backward from the anchor
// through the pre-refresh days (undoing each day's smoothed net flow) and
// forward through the post-refresh days (subtracting it). Days without
// transactions count as zero net flow, so the series is gap-free, and the
// value on the refresh day is the observed balance exactly.
//
// txns must all belong to snap's account; records from other accounts are
// ignored.
func Reconstruct(txns []domain.Transaction, snap domain.AccountSnapshot, cfg Config) ([]domain.DailyBalance, error) {
	if !snap.HasAnchor() {
		return nil, fmt.Errorf("%w: account %s", ErrNoAnchor, snap.AccountID)
	}

	anchorDate := snap.LastRefreshed
	anchor := snap.LatestBalance
	agg := cfg.aggregator()

	flows := make(map[civil.Date]decimal.Decimal)
	first, last := anchorDate, anchorDate
	for _, t := range txns {
		if t.AccountID != snap.AccountID {
			continue
		}
		flows[t.Date] = flows[t.Date].Add(t.Amount)
		if t.Date.Before(first) {
			first = t.Date
		}
		if t.Date.After(last) {
			last = t.Date
		}
	}

	var out []domain.DailyBalance
	add := func(d civil.Date, b decimal.Decimal) {
		out = append(out, domain.DailyBalance{AccountID: snap.AccountID, Date: d, Balance: b})
	}

	// Pre-refresh: daily flows in reverse chronological order, smoothed,
	// accumulated, and offset by the anchor.
	preDays := anchorDate.DaysSince(first)
	if preDays > 0 {
		values := make([]decimal.Decimal, preDays)
		for i := 0; i < preDays; i++ {
			values[i] = flows[anchorDate.AddDays(-1-i)]
		}
		cum := sequence.CumSum(sequence.RollingTrailing(values, cfg.Window, agg))
		for i := 0; i < preDays; i++ {
			add(anchorDate.AddDays(-1-i), anchor.Add(cum[i]))
		}
	}

	add(anchorDate, anchor)

	// Post-refresh: sign-inverted daily flows in forward order, same
	// treatment; the anchor offset carries over from the split point.
	postDays := last.DaysSince(anchorDate)
	if postDays > 0 {
		values := make([]decimal.Decimal, postDays)
		for i := 0; i < postDays; i++ {
			values[i] = flows[anchorDate.AddDays(i + 1)].Neg()
		}
		cum := sequence.CumSum(sequence.RollingTrailing(values, cfg.Window, agg))
		for i := 0; i < postDays; i++ {
			add(anchorDate.AddDays(i+1), anchor.Add(cum[i]))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
