package engine

import (
	"fmt"
	"runtime"

	"github.com/shopspring/decimal"

	"txn-insights/internal/balances"
	"txn-insights/internal/recurring"
	"txn-insights/internal/sequence"
	"txn-insights/internal/swaps"
	"txn-insights/internal/transfers"
)

// Config is the full derivation knob surface. Zero-valued knobs fall back
// to the calibrated defaults of the component they configure, so callers
// may override any subset.
type Config struct {
	// Transfer-pair matching.
	PairingThresholdAmount decimal.Decimal
	PairingMaxDayGap       int
	PairingMaxK            int

	// Balance reconstruction.
	BalanceWindow int
	BalanceAgg    string // mean, sum or max

	// Recurring-payment classification. These override both variants
	// when set; each variant keeps its own default otherwise.
	SeriesMinRun          int
	LargePaymentThreshold decimal.Decimal
	LargePaymentMultiple  decimal.Decimal
	LargePaymentWindow    int
	MobileMerchant        string

	// Swap-frequency scoring.
	SwapRateThreshold float64

	// Workers bounds the per-entity parallelism; defaults to GOMAXPROCS.
	Workers int
}

// DefaultConfig returns a config whose every knob resolves to the
// component defaults.
func DefaultConfig() Config {
	return Config{MobileMerchant: "o2"}
}

func (c Config) pairing() transfers.Config {
	cfg := transfers.DefaultConfig()
	if c.PairingThresholdAmount.IsPositive() {
		cfg.MinAmount = c.PairingThresholdAmount
	}
	if c.PairingMaxDayGap > 0 {
		cfg.MaxDayGap = c.PairingMaxDayGap
	}
	if c.PairingMaxK > 0 {
		cfg.MaxDistance = c.PairingMaxK
	}
	return cfg
}

func (c Config) balance() (balances.Config, error) {
	cfg := balances.DefaultConfig()
	if c.BalanceWindow > 0 {
		cfg.Window = c.BalanceWindow
	}
	agg, err := sequence.AggregatorByName(c.BalanceAgg)
	if err != nil {
		return balances.Config{}, fmt.Errorf("engine: balance_agg: %w", err)
	}
	cfg.Agg = agg
	return cfg, nil
}

func (c Config) variants() []recurring.Variant {
	merchant := c.MobileMerchant
	if merchant == "" {
		merchant = "o2"
	}
	vs := []recurring.Variant{
		recurring.MobileVariant(merchant),
		recurring.CarInsuranceVariant(),
	}
	for i := range vs {
		if c.SeriesMinRun > 0 {
			vs[i].SeriesMinRun = c.SeriesMinRun
		}
		if c.LargePaymentThreshold.IsPositive() {
			vs[i].LargeThreshold = c.LargePaymentThreshold
		}
		if c.LargePaymentMultiple.IsPositive() && vs[i].LargeMultiple.IsPositive() {
			vs[i].LargeMultiple = c.LargePaymentMultiple
		}
		if c.LargePaymentWindow > 0 && vs[i].LargeWindow > 0 {
			vs[i].LargeWindow = c.LargePaymentWindow
		}
	}
	return vs
}

func (c Config) swap() swaps.Config {
	cfg := swaps.DefaultConfig()
	if c.SwapRateThreshold > 0 {
		cfg.RateThreshold = c.SwapRateThreshold
	}
	return cfg
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
