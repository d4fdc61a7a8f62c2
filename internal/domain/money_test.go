package domain

import (
	"math"
	"testing"
)

func TestMoneyFromDollars(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		want    Money
		wantErr bool
	}{
		{"zero", 0.0, 0, false},
		{"whole dollars", 4.0, 400, false},
		{"one decimal place", 1.5, 150, false},
		{"two decimal places", 5.50, 550, false},
		{"small amount", 0.01, 1, false},
		{"negative delta", -0.25, -25, false},
		{"three decimal places", 1.234, 0, true},
		{"sub-cent", 0.001, 0, true},
		{"1.10 precision", 1.10, 110, false},
		{"99.99", 99.99, 9999, false},
		{"NaN", math.NaN(), 0, true},
		{"infinity", math.Inf(1), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MoneyFromDollars(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("MoneyFromDollars(%v) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("MoneyFromDollars(%v) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("MoneyFromDollars(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestPriceFromDollars_RejectsNegative(t *testing.T) {
	if _, err := PriceFromDollars(-1); err == nil {
		t.Error("PriceFromDollars(-1) expected error, got nil")
	}
	got, err := PriceFromDollars(4.00)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 400 {
		t.Errorf("PriceFromDollars(4.00) = %d, want 400", got)
	}
}

func TestMoney_Dollars(t *testing.T) {
	tests := []struct {
		input Money
		want  float64
	}{
		{0, 0.0},
		{1, 0.01},
		{550, 5.50},
		{-25, -0.25},
	}
	for _, tt := range tests {
		if got := tt.input.Dollars(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Money(%d).Dollars() = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestMoney_String(t *testing.T) {
	tests := []struct {
		input Money
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{550, "$5.50"},
		{123456, "$1234.56"},
		{-150, "-$1.50"},
	}
	for _, tt := range tests {
		if got := tt.input.String(); got != tt.want {
			t.Errorf("Money(%d).String() = %q, want %q", tt.input, got, tt.want)
		}
	}
}
