package sequence

import (
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"txn-insights/internal/domain"
)

func day(d int) civil.Date {
	return civil.Date{Year: 2024, Month: 1, Day: d}
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGroupBy_OrdersWithinEntity(t *testing.T) {
	txns := []domain.Transaction{
		{ID: "t3", UserID: "u1", Date: day(5), Amount: amt("10")},
		{ID: "t1", UserID: "u1", Date: day(1), Amount: amt("20")},
		{ID: "t2", UserID: "u1", Date: day(5), Amount: amt("-5")},
		{ID: "t4", UserID: "u2", Date: day(2), Amount: amt("7")},
	}

	groups, err := GroupBy(txns, KeyUser)
	if err != nil {
		t.Fatalf("GroupBy failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	seq := groups["u1"]
	wantOrder := []string{"t1", "t2", "t3"}
	if seq.Len() != len(wantOrder) {
		t.Fatalf("u1 sequence length = %d, want %d", seq.Len(), len(wantOrder))
	}
	for i, id := range wantOrder {
		if seq.At(i).ID != id {
			t.Errorf("position %d = %s, want %s", i, seq.At(i).ID, id)
		}
	}
}

func TestGroupBy_StableUnderShuffle(t *testing.T) {
	txns := []domain.Transaction{
		{ID: "a", UserID: "u", Date: day(3), Amount: amt("100")},
		{ID: "b", UserID: "u", Date: day(3), Amount: amt("100")},
		{ID: "c", UserID: "u", Date: day(3), Amount: amt("100")},
	}
	shuffled := []domain.Transaction{txns[2], txns[0], txns[1]}

	g1, _ := GroupBy(txns, KeyUser)
	g2, _ := GroupBy(shuffled, KeyUser)

	for i := 0; i < 3; i++ {
		if g1["u"].At(i).ID != g2["u"].At(i).ID {
			t.Fatalf("order differs at %d: %s vs %s", i, g1["u"].At(i).ID, g2["u"].At(i).ID)
		}
	}
}

func TestGroupBy_InvalidKey(t *testing.T) {
	_, err := GroupBy(nil, Key("merchant"))
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestShift(t *testing.T) {
	seq := Sequence{Records: []domain.Transaction{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	}}

	got, ok := seq.Shift(2, 1)
	if !ok || got.ID != "b" {
		t.Errorf("Shift(2,1) = %v,%v, want b", got.ID, ok)
	}
	got, ok = seq.Shift(0, -2)
	if !ok || got.ID != "c" {
		t.Errorf("Shift(0,-2) = %v,%v, want c", got.ID, ok)
	}
	if _, ok := seq.Shift(0, 1); ok {
		t.Error("Shift(0,1) should fall off the start")
	}
	if _, ok := seq.Shift(2, -1); ok {
		t.Error("Shift(2,-1) should fall off the end")
	}
}

func TestEntities_Sorted(t *testing.T) {
	groups := map[string]Sequence{"b": {}, "a": {}, "c": {}}
	got := Entities(groups)
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Entities() = %v, want %v", got, want)
		}
	}
}
