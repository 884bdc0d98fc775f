package model

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLineTotal(t *testing.T) {
	tests := []struct {
		price string
		qty   int
		want  string
	}{
		{"19.99", 3, "59.97"},
		{"0.10", 3, "0.30"},
		{"5", 0, "0"},
		{"5", -2, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			got := LineTotal(decimal.RequireFromString(tt.price), tt.qty)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("LineTotal(%s, %d) = %s, want %s", tt.price, tt.qty, got, tt.want)
			}
		})
	}
}

func TestSumTotals(t *testing.T) {
	lines := []DisplayLine{
		{Total: decimal.RequireFromString("1.10")},
		{Total: decimal.RequireFromString("2.20")},
	}
	if got := SumTotals(lines); FormatMoney(got) != "3.30" {
		t.Errorf("SumTotals() = %s, want 3.30", FormatMoney(got))
	}
	if got := SumTotals(nil); !got.IsZero() {
		t.Errorf("SumTotals(nil) = %s, want 0", got)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "0", false},
		{"12.50", "12.5", false},
		{"abc", "", true},
		{"-1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("ParseAmount(%q) error = %v, want ErrInvalidRequest", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.in, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
