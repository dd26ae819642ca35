package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyMarshalsFixedNumber(t *testing.T) {
	raw, err := json.Marshal(map[string]Money{"amount": NewMoney(4)})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(raw) != `{"amount":4.00}` {
		t.Fatalf("unexpected json: %s", raw)
	}
}

func TestMoneyUnmarshalAcceptsStringAndNumber(t *testing.T) {
	cases := map[string]string{
		`"19.999"`: "20.00",
		`12.5`:     "12.50",
		`null`:     "0.00",
		`""`:       "0.00",
	}
	for input, want := range cases {
		var m Money
		if err := json.Unmarshal([]byte(input), &m); err != nil {
			t.Fatalf("unmarshal %s failed: %v", input, err)
		}
		if m.String() != want {
			t.Fatalf("unmarshal %s got %s want %s", input, m.String(), want)
		}
	}

	var bad Money
	if err := json.Unmarshal([]byte(`"abc"`), &bad); err == nil {
		t.Fatalf("expected invalid money error")
	}
}

func TestMoneyTimesRounds(t *testing.T) {
	got := NewMoney(33.33).Times(decimal.NewFromFloat(0.15))
	if got.String() != "5.00" {
		t.Fatalf("unexpected product: %s", got.String())
	}
}
