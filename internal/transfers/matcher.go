// Package transfers identifies pairs of transactions that are the two
// sides of one internal money movement (e.g. a withdrawal from one of a
// user's accounts and the matching deposit into another).
package transfers

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"txn-insights/internal/domain"
)

// TransferTag is the resolved tag written onto both members of a pair.
const TransferTag = "transfers"

// Config holds the matching knobs.
type Config struct {
	// MinAmount is the exclusive lower bound on the absolute amount:
	// a pair at exactly MinAmount does not match.
	MinAmount decimal.Decimal
	// MaxDayGap is the inclusive upper bound on the day distance
	// between the two sides.
	MaxDayGap int
	// MaxDistance is the largest neighbour distance K scanned in the
	// amount-sorted sequence.
	MaxDistance int
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		MinAmount:   decimal.NewFromInt(50),
		MaxDayGap:   2,
		MaxDistance: 5,
	}
}

// Pair holds the record IDs of a confirmed transfer pair.
type Pair struct {
	First  string
	Second string
}

// MatchPairs finds transfer pairs in a record set. Records are sorted by
// (user, absolute amount, date, id) and each record is compared with its
// k-th predecessor for k = 1..MaxDistance. A record belongs to at most
// one pair: each distance k is resolved completely, in scan order, before
// k+1 is considered, so first match wins. The result is deterministic for
// any arrival order of the input.
func MatchPairs(txns []domain.Transaction, cfg Config) []Pair {
	n := len(txns)
	if n < 2 {
		return nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		x, y := txns[order[a]], txns[order[b]]
		if x.UserID != y.UserID {
			return x.UserID < y.UserID
		}
		if c := x.Amount.Abs().Cmp(y.Amount.Abs()); c != 0 {
			return c < 0
		}
		if x.Date != y.Date {
			return x.Date.Before(y.Date)
		}
		return x.ID < y.ID
	})

	paired := make([]bool, n) // indexed by position in the sorted order
	var pairs []Pair

	for k := 1; k <= cfg.MaxDistance; k++ {
		// Phase 1: evaluate the predicate over the whole sequence
		// against the pairing state left by smaller distances.
		type candidate struct{ earlier, later int }
		var candidates []candidate
		for i := k; i < n; i++ {
			j := i - k
			if paired[i] || paired[j] {
				continue
			}
			if isPair(txns[order[j]], txns[order[i]], cfg) {
				candidates = append(candidates, candidate{earlier: j, later: i})
			}
		}

		// Phase 2: confirm in scan order. A record confirmed earlier in
		// this pass blocks any later candidate it appears in, which
		// stops chains (A-B confirmed rejects B-C).
		for _, c := range candidates {
			if paired[c.earlier] || paired[c.later] {
				continue
			}
			paired[c.earlier] = true
			paired[c.later] = true
			pairs = append(pairs, Pair{
				First:  txns[order[c.earlier]].ID,
				Second: txns[order[c.later]].ID,
			})
		}
	}
	return pairs
}

// isPair reports whether two neighbouring records in the sorted sequence
// form a transfer pair. a precedes b in the sort, so b's date is not
// before a's when the amounts are equal.
func isPair(a, b domain.Transaction, cfg Config) bool {
	if a.UserID != b.UserID {
		return false
	}
	absA, absB := a.Amount.Abs(), b.Amount.Abs()
	if !absA.GreaterThan(cfg.MinAmount) {
		return false
	}
	if !absA.Equal(absB) {
		return false
	}
	gap := b.Date.DaysSince(a.Date)
	if gap < 0 {
		gap = -gap
	}
	if gap > cfg.MaxDayGap {
		return false
	}
	if a.Direction == b.Direction {
		return false
	}
	if a.Tag == TransferTag || b.Tag == TransferTag {
		return false
	}
	return true
}

// descriptionHints and descriptionExcludes drive the description-based
// fallback: free-text markers of a transfer payment, minus strings that
// indicate fees or interest postings.
var (
	descriptionHints    = []string{" ft", " trf", "xfer", "transfer"}
	descriptionExcludes = []string{"fee", "interest"}
)

// MatchDescriptions returns the IDs of records whose description marks
// them as transfers regardless of pairing.
func MatchDescriptions(txns []domain.Transaction) []string {
	var ids []string
	for _, t := range txns {
		desc := strings.ToLower(t.Description)
		if !containsAny(desc, descriptionHints) || containsAny(desc, descriptionExcludes) {
			continue
		}
		ids = append(ids, t.ID)
	}
	return ids
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Apply returns a copy of txns with the transfer flag and resolved tag set
// on every record named by pairs or descriptionIDs. The input is not
// modified.
func Apply(txns []domain.Transaction, pairs []Pair, descriptionIDs []string) []domain.Transaction {
	tagged := make(map[string]bool, 2*len(pairs)+len(descriptionIDs))
	for _, p := range pairs {
		tagged[p.First] = true
		tagged[p.Second] = true
	}
	for _, id := range descriptionIDs {
		tagged[id] = true
	}

	out := make([]domain.Transaction, len(txns))
	copy(out, txns)
	for i := range out {
		if tagged[out[i].ID] {
			out[i].Transfer = true
			out[i].Tag = TransferTag
		}
	}
	return out
}
