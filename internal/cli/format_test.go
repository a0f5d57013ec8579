package cli

import (
	"testing"
	"time"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "₹0.00"},
		{5, "₹5.00"},
		{1234.5, "₹1,234.50"},
		{818.0629, "₹818.06"},
		{65206.0572, "₹65,206.06"},
		{-5000, "-₹5,000.00"},
		{1234567.891, "₹1,234,567.89"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoneyWhole(t *testing.T) {
	if got := FormatMoneyWhole(85000.4); got != "₹85,000" {
		t.Errorf("got %q", got)
	}
	if got := FormatMoneyWhole(-1500); got != "-₹1,500" {
		t.Errorf("got %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-42000, "-42,000"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{500, "500"},
		{1234, "1.2K"},
		{-5000, "-5.0K"},
		{2500000, "2.5M"},
	}
	for _, tt := range tests {
		if got := FormatCompact(tt.in); got != tt.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatOptional(t *testing.T) {
	if got := FormatOptionalMoney(nil); got != Blank {
		t.Errorf("FormatOptionalMoney(nil) = %q", got)
	}
	if got := FormatOptionalInt(nil); got != Blank {
		t.Errorf("FormatOptionalInt(nil) = %q", got)
	}
	n := 7
	if got := FormatOptionalInt(&n); got != "7" {
		t.Errorf("FormatOptionalInt(7) = %q", got)
	}
	r := 16.0
	if got := FormatRate(&r); got != "16.00%" {
		t.Errorf("FormatRate(16) = %q", got)
	}
	if got := FormatDate(time.Time{}); got != Blank {
		t.Errorf("FormatDate(zero) = %q", got)
	}
	if got := FormatDate(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)); got != "2025-03-09" {
		t.Errorf("FormatDate = %q", got)
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(1500, 1000); got != "+₹500.00" {
		t.Errorf("got %q", got)
	}
	if got := FormatDelta(1000, 1500); got != "-₹500.00" {
		t.Errorf("got %q", got)
	}
}
