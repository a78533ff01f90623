package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"12", 1200},
		{"0.10", 10},
		{"0.1", 10},
		{"-3.5", -350},
		{"  7.25 ", 725},
		{"+4", 400},
		{"1.500", 150},
		{"1e3", 100000},
		{"92233720368547758.07", math.MaxInt64},
	}
	for _, tt := range tests {
		got, err := ParseMoney(tt.in)
		if err != nil {
			t.Fatalf("ParseMoney(%q) err=%v", tt.in, err)
		}
		if got.MinorUnits() != tt.want {
			t.Fatalf("ParseMoney(%q)=%d want %d", tt.in, got.MinorUnits(), tt.want)
		}
	}
}

func TestParseMoneyRejectsInvalidText(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"abc",
		"NaN",
		"Inf",
		"-Infinity",
		"1,000",
		"12abc",
		"0x10",
		"0.001",                // sub-cent
		"92233720368547758.08", // one cent past int64
		"1e30",
		"1e1000000",
	} {
		if _, err := ParseMoney(in); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("ParseMoney(%q) err=%v want ErrInvalidAmount", in, err)
		}
	}
}

// Adding 0.10 and 0.20 a hundred times each must land on exactly 30.00.
func TestMoneyAddIsExact(t *testing.T) {
	dime := MustParseMoney("0.10")
	twenty := MustParseMoney("0.20")

	var total Money
	var err error
	for i := 0; i < 100; i++ {
		if total, err = total.Add(dime); err != nil {
			t.Fatal(err)
		}
		if total, err = total.Add(twenty); err != nil {
			t.Fatal(err)
		}
	}
	if !total.Equal(MustParseMoney("30.00")) {
		t.Fatalf("total=%s want 30.00", total)
	}
	if total.String() != "30.00" {
		t.Fatalf("String()=%q want 30.00", total.String())
	}
}

func TestMoneyOverflow(t *testing.T) {
	max := NewMoney(math.MaxInt64)
	if _, err := max.Add(NewMoney(1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("MaxInt64+1 err=%v want ErrInvalidAmount", err)
	}
	min := NewMoney(math.MinInt64)
	if _, err := min.Sub(NewMoney(1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("MinInt64-1 err=%v want ErrInvalidAmount", err)
	}
	if _, err := NewMoney(0).Sub(min); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("0-MinInt64 err=%v want ErrInvalidAmount", err)
	}
}

func TestMoneyCompare(t *testing.T) {
	a, b := NewMoney(100), NewMoney(250)
	if a.Cmp(b) != -1 || b.Cmp(a) != 1 || a.Cmp(NewMoney(100)) != 0 {
		t.Fatalf("unexpected Cmp results")
	}
	if !NewMoney(-1).IsNegative() || NewMoney(0).IsNegative() {
		t.Fatalf("unexpected IsNegative results")
	}
	if !NewMoney(0).IsZero() || !NewMoney(1).IsPositive() {
		t.Fatalf("unexpected IsZero/IsPositive results")
	}
	diff, err := a.Sub(b)
	if err != nil {
		t.Fatal(err)
	}
	if diff.String() != "-1.50" {
		t.Fatalf("100-250=%s want -1.50", diff)
	}
}

func TestMoneyDisplay(t *testing.T) {
	m := MustParseMoney("1234.5")
	if got := m.Display("USD"); got != "$1,234.50" {
		t.Fatalf("Display(USD)=%q want $1,234.50", got)
	}
	if got := m.Display("usd"); got != "$1,234.50" {
		t.Fatalf("Display(usd)=%q want $1,234.50", got)
	}
	// JPY has no minor unit, so the cents representation can't be reused
	if got := m.Display("JPY"); got != "1234.50 JPY" {
		t.Fatalf("Display(JPY)=%q", got)
	}
	if got := m.Display(""); got != "1234.50" {
		t.Fatalf("Display(\"\")=%q", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(MustParseMoney("0.30"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"0.30"` {
		t.Fatalf("marshal=%s", data)
	}

	var m Money
	if err := json.Unmarshal([]byte(`12.34`), &m); err != nil || m.MinorUnits() != 1234 {
		t.Fatalf("unmarshal number: m=%s err=%v", m, err)
	}
	if err := json.Unmarshal([]byte(`"NaN"`), &m); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("unmarshal NaN err=%v", err)
	}

	m = MustParseMoney("5.00")
	if err := json.Unmarshal([]byte(`null`), &m); err != nil || m.MinorUnits() != 500 {
		t.Fatalf("unmarshal null: m=%s err=%v", m, err)
	}
	var v struct {
		Amount Money `json:"amount"`
	}
	if err := json.Unmarshal([]byte(`{"amount":null}`), &v); err != nil || !v.Amount.IsZero() {
		t.Fatalf("unmarshal null field: v=%+v err=%v", v, err)
	}
}
