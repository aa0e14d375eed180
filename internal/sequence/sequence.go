// Package sequence builds per-entity ordered transaction sequences and
// provides the rolling-window aggregation the derivation algorithms share.
package sequence

import (
	"fmt"
	"sort"

	"txn-insights/internal/domain"
)

// Key names the entity field a record set is grouped by.
type Key string

const (
	// KeyUser groups records by the owning user.
	KeyUser Key = "user_id"
	// KeyAccount groups records by account.
	KeyAccount Key = "account_id"
)

// ErrInvalidKey is returned when a grouping key does not name a known
// record field. It is fatal to the call: nothing is grouped.
var ErrInvalidKey = fmt.Errorf("sequence: invalid grouping key")

// Sequence is one entity's records in temporal order. Ties on the date are
// broken by amount, then by record ID, so the order is total and stable:
// re-sorting a shuffled copy of the same records yields the same sequence.
type Sequence struct {
	Entity  string
	Records []domain.Transaction
}

// Len returns the number of records in the sequence.
func (s Sequence) Len() int { return len(s.Records) }

// At returns the record at index i.
func (s Sequence) At(i int) domain.Transaction { return s.Records[i] }

// Shift returns the record k positions before index i (k > 0) or after
// (k < 0). ok is false when the neighbour falls outside the sequence.
func (s Sequence) Shift(i, k int) (domain.Transaction, bool) {
	j := i - k
	if j < 0 || j >= len(s.Records) {
		return domain.Transaction{}, false
	}
	return s.Records[j], true
}

// selector extracts the grouping value from a record.
func selector(key Key) (func(domain.Transaction) string, error) {
	switch key {
	case KeyUser:
		return func(t domain.Transaction) string { return t.UserID }, nil
	case KeyAccount:
		return func(t domain.Transaction) string { return t.AccountID }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
}

// GroupBy partitions records by the given entity key and orders each
// partition by (date, amount, id). The input slice is not modified.
func GroupBy(txns []domain.Transaction, key Key) (map[string]Sequence, error) {
	sel, err := selector(key)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]domain.Transaction)
	for _, t := range txns {
		k := sel(t)
		groups[k] = append(groups[k], t)
	}

	out := make(map[string]Sequence, len(groups))
	for entity, recs := range groups {
		Order(recs)
		out[entity] = Sequence{Entity: entity, Records: recs}
	}
	return out, nil
}

// Order sorts records in place by (date, amount, id). The comparison is
// total, so the result does not depend on input arrival order.
func Order(recs []domain.Transaction) {
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}

// Entities returns the sorted entity keys of a grouping, for callers that
// need a deterministic iteration order.
func Entities(groups map[string]Sequence) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
