package currency

import "testing"

func TestFormatINR(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		want   string
	}{
		{"zero", 0, "₹0"},
		{"hundreds", 950, "₹950"},
		{"thousands", 55000, "₹55,000"},
		{"lakhs", 550000, "₹5,50,000"},
		{"crores", 12345678, "₹1,23,45,678"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatINR(tt.amount); got != tt.want {
				t.Fatalf("got=%q want=%q", got, tt.want)
			}
		})
	}
}
