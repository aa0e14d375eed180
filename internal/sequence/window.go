package sequence

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Aggregator reduces a window of values to a single value. Implementations
// must accept any non-empty window: the rolling functions shrink windows
// at sequence boundaries rather than skip them.
type Aggregator interface {
	Aggregate(window []decimal.Decimal) decimal.Decimal
	Name() string
}

// Mean averages the window.
type Mean struct{}

func (Mean) Aggregate(window []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range window {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(window))))
}

func (Mean) Name() string { return "mean" }

// Sum totals the window.
type Sum struct{}

func (Sum) Aggregate(window []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range window {
		sum = sum.Add(v)
	}
	return sum
}

func (Sum) Name() string { return "sum" }

// Max takes the largest value in the window.
type Max struct{}

func (Max) Aggregate(window []decimal.Decimal) decimal.Decimal {
	max := window[0]
	for _, v := range window[1:] {
		if v.GreaterThan(max) {
			max = v
		}
	}
	return max
}

func (Max) Name() string { return "max" }

// AggregatorByName resolves a configured aggregator name.
func AggregatorByName(name string) (Aggregator, error) {
	switch name {
	case "", "mean":
		return Mean{}, nil
	case "sum":
		return Sum{}, nil
	case "max":
		return Max{}, nil
	default:
		return nil, fmt.Errorf("sequence: unknown aggregator %q", name)
	}
}

// RollingTrailing applies agg over a trailing window of up to `window`
// values ending at each index. The first window-1 positions use whatever
// history exists (shrink, never skip).
func RollingTrailing(values []decimal.Decimal, window int, agg Aggregator) []decimal.Decimal {
	if window < 1 {
		window = 1
	}
	out := make([]decimal.Decimal, len(values))
	for i := range values {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		out[i] = agg.Aggregate(values[lo : i+1])
	}
	return out
}

// RollingCentered applies agg over a symmetric window centered on each
// index: half the window on each side, clipped at both ends. An even
// window is widened by one so the center is well defined.
func RollingCentered(values []decimal.Decimal, window int, agg Aggregator) []decimal.Decimal {
	if window < 1 {
		window = 1
	}
	half := window / 2
	out := make([]decimal.Decimal, len(values))
	for i := range values {
		lo, hi := i-half, i+half
		if lo < 0 {
			lo = 0
		}
		if hi > len(values)-1 {
			hi = len(values) - 1
		}
		out[i] = agg.Aggregate(values[lo : hi+1])
	}
	return out
}

// CumSum returns the running cumulative sum of values.
func CumSum(values []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	run := decimal.Zero
	for i, v := range values {
		run = run.Add(v)
		out[i] = run
	}
	return out
}
