// Package config loads derivation settings from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"txn-insights/internal/engine"
)

// file mirrors engine.Config with YAML-friendly field types. Amounts are
// strings so they survive the trip without float rounding.
type file struct {
	PairingThresholdAmount string `yaml:"pairing_threshold_amount"`
	PairingMaxDayGap       int    `yaml:"pairing_max_day_gap"`
	PairingMaxK            int    `yaml:"pairing_max_k"`

	BalanceWindow int    `yaml:"balance_window"`
	BalanceAgg    string `yaml:"balance_agg"`

	SeriesMinRun          int    `yaml:"series_min_run"`
	LargePaymentThreshold string `yaml:"large_payment_threshold"`
	LargePaymentMultiple  string `yaml:"large_payment_multiple"`
	LargePaymentWindow    int    `yaml:"large_payment_window"`
	MobileMerchant        string `yaml:"mobile_merchant"`

	SwapRateThreshold float64 `yaml:"swap_rate_threshold"`

	Workers int `yaml:"workers"`
}

// Load reads a YAML settings file and returns the resulting engine config.
// Knobs absent from the file keep their defaults; unknown keys are an error.
func Load(path string) (engine.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML settings data.
func Parse(data []byte) (engine.Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return engine.Config{}, fmt.Errorf("config: parse yaml: %w", err)
	}

	cfg := engine.DefaultConfig()
	cfg.PairingMaxDayGap = f.PairingMaxDayGap
	cfg.PairingMaxK = f.PairingMaxK
	cfg.BalanceWindow = f.BalanceWindow
	cfg.BalanceAgg = f.BalanceAgg
	cfg.SeriesMinRun = f.SeriesMinRun
	cfg.LargePaymentWindow = f.LargePaymentWindow
	cfg.SwapRateThreshold = f.SwapRateThreshold
	cfg.Workers = f.Workers
	if f.MobileMerchant != "" {
		cfg.MobileMerchant = f.MobileMerchant
	}

	var perr error
	amount := func(name, s string) decimal.Decimal {
		if s == "" {
			return decimal.Decimal{}
		}
		d, err := decimal.NewFromString(s)
		if err != nil && perr == nil {
			perr = fmt.Errorf("config: %s: %w", name, err)
		}
		return d
	}
	cfg.PairingThresholdAmount = amount("pairing_threshold_amount", f.PairingThresholdAmount)
	cfg.LargePaymentThreshold = amount("large_payment_threshold", f.LargePaymentThreshold)
	cfg.LargePaymentMultiple = amount("large_payment_multiple", f.LargePaymentMultiple)
	if perr != nil {
		return engine.Config{}, perr
	}

	return cfg, nil
}
