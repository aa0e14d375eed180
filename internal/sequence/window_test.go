package sequence

import (
	"testing"

	"github.com/shopspring/decimal"
)

func vals(ss ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(ss))
	for i, s := range ss {
		out[i] = decimal.RequireFromString(s)
	}
	return out
}

func assertSeries(t *testing.T, got []decimal.Decimal, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("series length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(decimal.RequireFromString(want[i])) {
			t.Errorf("position %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRollingTrailing_ShrinksAtStart(t *testing.T) {
	got := RollingTrailing(vals("3", "6", "9", "12"), 3, Mean{})
	// windows: [3], [3 6], [3 6 9], [6 9 12]
	assertSeries(t, got, []string{"3", "4.5", "6", "9"})
}

func TestRollingTrailing_Sum(t *testing.T) {
	got := RollingTrailing(vals("1", "2", "3"), 2, Sum{})
	assertSeries(t, got, []string{"1", "3", "5"})
}

func TestRollingCentered_Symmetric(t *testing.T) {
	got := RollingCentered(vals("2", "4", "6", "8", "10"), 3, Mean{})
	// windows: [2 4], [2 4 6], [4 6 8], [6 8 10], [8 10]
	assertSeries(t, got, []string{"3", "4", "6", "8", "9"})
}

func TestRollingCentered_WindowLargerThanSeries(t *testing.T) {
	got := RollingCentered(vals("10", "20"), 20, Mean{})
	// both windows clip to the whole series
	assertSeries(t, got, []string{"15", "15"})
}

func TestMax(t *testing.T) {
	got := RollingTrailing(vals("5", "-2", "7"), 3, Max{})
	assertSeries(t, got, []string{"5", "5", "7"})
}

func TestCumSum(t *testing.T) {
	got := CumSum(vals("1", "-2", "4"))
	assertSeries(t, got, []string{"1", "-1", "3"})
}

func TestAggregatorByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "", want: "mean"},
		{name: "mean", want: "mean"},
		{name: "sum", want: "sum"},
		{name: "max", want: "max"},
		{name: "median", wantErr: true},
	}
	for _, tt := range tests {
		agg, err := AggregatorByName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("AggregatorByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err == nil && agg.Name() != tt.want {
			t.Errorf("AggregatorByName(%q) = %s, want %s", tt.name, agg.Name(), tt.want)
		}
	}
}
