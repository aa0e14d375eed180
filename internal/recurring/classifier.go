// Package recurring classifies how a user pays for a specific recurring
// expense: in regular instalments or with a one-off large payment. The
// same two-signal engine serves every concrete case; a Variant supplies
// the category subset and the calibrated thresholds.
package recurring

import (
	"github.com/shopspring/decimal"

	"txn-insights/internal/domain"
	"txn-insights/internal/sequence"
)

// Variant parameterizes the classifier for one expense category.
type Variant struct {
	Name string

	// Filter selects the transactions the classification is based on.
	Filter func(domain.Transaction) bool

	// SeriesMinRun is the minimum number of payments of an identical
	// amount for the instalment signal. Identical amounts are counted
	// rather than temporally adjacent ones: adjacency is confused by
	// parallel payment streams (two vehicles, two contracts) and by
	// unrelated identical-amount noise.
	SeriesMinRun int

	// LargeThreshold is the exclusive lower bound for the one-off
	// large-payment signal.
	LargeThreshold decimal.Decimal

	// LargeMultiple and LargeWindow configure the neighbour guard: the
	// payment must exceed LargeMultiple times the centered rolling mean
	// of the LargeWindow surrounding payments. Zero disables the guard.
	LargeMultiple decimal.Decimal
	LargeWindow   int

	// RequireRareLarge limits the large signal to users who make no
	// more than one above-threshold payment per observed year, so that
	// chronically high regular bills do not read as purchases.
	RequireRareLarge bool

	// RequireMultiPayDay makes the instalment signal additionally
	// require a day with more than one payment, which separates
	// bill-plus-instalment users from plain bill payers.
	RequireMultiPayDay bool
}

// Classify derives the payment mode for one user's transactions.
// Exactly one signal firing decides the class; both or neither firing is
// Indeterminate, and an empty category subset is NotApplicable.
func Classify(txns []domain.Transaction, v Variant) domain.PaymentMode {
	var subset []domain.Transaction
	for _, t := range txns {
		if v.Filter == nil || v.Filter(t) {
			subset = append(subset, t)
		}
	}
	if len(subset) == 0 {
		return domain.PaymentModeNotApplicable
	}
	sequence.Order(subset)

	series := seriesSignal(subset, v)
	large := largeSignal(subset, v)

	switch {
	case series && !large:
		return domain.PaymentModeRegular
	case large && !series:
		return domain.PaymentModeUpfront
	default:
		return domain.PaymentModeIndeterminate
	}
}

// seriesSignal reports whether the longest run of identical amounts
// reaches the variant's minimum.
func seriesSignal(subset []domain.Transaction, v Variant) bool {
	if longestRun(subset) < v.SeriesMinRun {
		return false
	}
	if v.RequireMultiPayDay && !hasMultiPaymentDay(subset) {
		return false
	}
	return true
}

// largeSignal reports whether some payment is a credible one-off large
// payment: above the threshold, not explained by an identical-amount
// series, anomalous against its neighbours, and rare for the user.
func largeSignal(subset []domain.Transaction, v Variant) bool {
	runs := amountRuns(subset)

	var neighbourMean []decimal.Decimal
	if v.LargeMultiple.IsPositive() {
		amounts := make([]decimal.Decimal, len(subset))
		for i, t := range subset {
			amounts[i] = t.Amount
		}
		neighbourMean = sequence.RollingCentered(amounts, v.LargeWindow, sequence.Mean{})
	}

	if v.RequireRareLarge {
		years := distinctYears(subset)
		nLarge := 0
		for _, t := range subset {
			if t.Amount.GreaterThan(v.LargeThreshold) {
				nLarge++
			}
		}
		if nLarge > years {
			return false
		}
	}

	for i, t := range subset {
		if !t.Amount.GreaterThan(v.LargeThreshold) {
			continue
		}
		if runs[t.Amount.String()] >= v.SeriesMinRun && v.SeriesMinRun > 0 {
			continue
		}
		if neighbourMean != nil && !t.Amount.GreaterThan(neighbourMean[i].Mul(v.LargeMultiple)) {
			continue
		}
		return true
	}
	return false
}

// amountRuns counts payments per exact amount.
func amountRuns(subset []domain.Transaction) map[string]int {
	runs := make(map[string]int, len(subset))
	for _, t := range subset {
		runs[t.Amount.String()]++
	}
	return runs
}

func longestRun(subset []domain.Transaction) int {
	max := 0
	for _, n := range amountRuns(subset) {
		if n > max {
			max = n
		}
	}
	return max
}

func hasMultiPaymentDay(subset []domain.Transaction) bool {
	// subset is date-ordered
	for i := 1; i < len(subset); i++ {
		if subset[i].Date == subset[i-1].Date {
			return true
		}
	}
	return false
}

func distinctYears(subset []domain.Transaction) int {
	years := make(map[int]bool)
	for _, t := range subset {
		years[t.Date.Year] = true
	}
	return len(years)
}
