package entity

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoney_Format(t *testing.T) {
	cases := []struct {
		m    Money
		want string
	}{
		{NewMoney(decimal.RequireFromString("50"), "USD"), "$50.00"},
		{NewMoney(decimal.RequireFromString("12.5"), ""), "$12.50"},
		{NewMoney(decimal.RequireFromString("9.99"), "EUR"), "€9.99"},
		{NewMoney(decimal.RequireFromString("100"), "CHF"), "CHF 100.00"},
	}
	for _, tc := range cases {
		if got := tc.m.Format(); got != tc.want {
			t.Errorf("Format(%v %s) = %q, want %q", tc.m.Amount, tc.m.CurrencyCode, got, tc.want)
		}
	}
}

func TestMoney_Unit(t *testing.T) {
	if _, err := NewMoney(decimal.Zero, "USD").Unit(); err != nil {
		t.Errorf("Unit USD: %v", err)
	}
	if _, err := (Money{CurrencyCode: "NOPE"}).Unit(); err == nil {
		t.Error("Unit NOPE: want error")
	}
}

func TestCart_LineAndEmpty(t *testing.T) {
	var nilCart *Cart
	if !nilCart.IsEmpty() {
		t.Error("nil cart should be empty")
	}
	c := &Cart{Lines: []CartLine{{ID: "l1", Quantity: 2}}}
	if c.IsEmpty() {
		t.Error("cart with a line is not empty")
	}
	if c.Line("l1") == nil || c.Line("missing") != nil {
		t.Error("Line lookup mismatch")
	}
}

func TestVariant_OptionValue(t *testing.T) {
	v := Variant{SelectedOptions: []SelectedOption{{Name: "Size", Value: "M"}}}
	if got, ok := v.OptionValue("Size"); !ok || got != "M" {
		t.Errorf("OptionValue(Size) = %q, %v", got, ok)
	}
	if _, ok := v.OptionValue("Color"); ok {
		t.Error("OptionValue(Color): want false")
	}
}
