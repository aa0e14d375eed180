package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	data := []byte(`
pairing_threshold_amount: "75.50"
pairing_max_day_gap: 3
balance_window: 5
balance_agg: sum
mobile_merchant: vodafone
workers: 8
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !cfg.PairingThresholdAmount.Equal(decimal.RequireFromString("75.50")) {
		t.Errorf("threshold = %s", cfg.PairingThresholdAmount)
	}
	if cfg.PairingMaxDayGap != 3 || cfg.BalanceWindow != 5 || cfg.Workers != 8 {
		t.Errorf("ints = %d/%d/%d", cfg.PairingMaxDayGap, cfg.BalanceWindow, cfg.Workers)
	}
	if cfg.BalanceAgg != "sum" || cfg.MobileMerchant != "vodafone" {
		t.Errorf("strings = %q/%q", cfg.BalanceAgg, cfg.MobileMerchant)
	}
}

func TestParse_EmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.MobileMerchant != "o2" {
		t.Errorf("mobile merchant default = %q, want o2", cfg.MobileMerchant)
	}
	if !cfg.PairingThresholdAmount.IsZero() || cfg.Workers != 0 {
		t.Error("unset knobs must stay zero so component defaults apply")
	}
}

func TestParse_UnknownKey(t *testing.T) {
	if _, err := Parse([]byte("no_such_knob: 1\n")); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestParse_BadAmount(t *testing.T) {
	if _, err := Parse([]byte(`large_payment_threshold: "lots"`)); err == nil {
		t.Fatal("expected error for unparseable amount")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("series_min_run: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SeriesMinRun != 4 {
		t.Errorf("series_min_run = %d, want 4", cfg.SeriesMinRun)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
