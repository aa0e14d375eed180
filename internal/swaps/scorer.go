// Package swaps scores how often a user changes service providers for
// recurring categories of spend, inferred from changes in merchant
// identity.
package swaps

import (
	"fmt"
	"strings"

	"txn-insights/internal/domain"
)

// ErrInsufficientHistory is returned when a user has no transactions in
// the relevant categories: the outcome is "no classification", never a
// guessed class.
var ErrInsufficientHistory = fmt.Errorf("swaps: insufficient history")

// Config holds the scoring knobs.
type Config struct {
	// Categories are the tag prefixes whose merchants are counted.
	Categories []string
	// RateThreshold is the exclusive swaps-per-year bound above which a
	// user is a frequent swapper. The default 1/3 means more than one
	// swap every three years.
	RateThreshold float64
}

// DefaultConfig scores home and vehicle insurance providers.
func DefaultConfig() Config {
	return Config{
		Categories:    []string{"home insurance", "vehicle insurance"},
		RateThreshold: 1.0 / 3.0,
	}
}

// Score classifies one user's swap frequency. Per category, swaps are
// distinct merchants minus one (floored at zero); the summed swap count
// is divided by the number of distinct years across the user's entire
// history, not just the years with category activity. A switch sitting in
// a long quiet history is not frequent switching. The returned class is
// meaningless when err != nil.
func Score(txns []domain.Transaction, cfg Config) (domain.SwapClass, error) {
	years := make(map[int]bool)
	merchants := make(map[string]map[string]bool, len(cfg.Categories))
	relevant := 0

	for _, t := range txns {
		years[t.Date.Year] = true
		cat := matchCategory(t, cfg.Categories)
		if cat == "" {
			continue
		}
		relevant++
		if merchants[cat] == nil {
			merchants[cat] = make(map[string]bool)
		}
		merchants[cat][t.MerchantName] = true
	}

	if relevant == 0 || len(years) == 0 {
		return domain.SwapInfrequent, fmt.Errorf("%w: no relevant transactions", ErrInsufficientHistory)
	}

	swaps := 0
	for _, m := range merchants {
		if n := len(m) - 1; n > 0 {
			swaps += n
		}
	}

	rate := float64(swaps) / float64(len(years))
	if rate > cfg.RateThreshold {
		return domain.SwapFrequent, nil
	}
	return domain.SwapInfrequent, nil
}

// matchCategory returns the first configured category the record's
// automatic tag falls under, or "" when none match.
func matchCategory(t domain.Transaction, categories []string) string {
	for _, c := range categories {
		if strings.HasPrefix(t.AutoTag, c) {
			return c
		}
	}
	return ""
}
