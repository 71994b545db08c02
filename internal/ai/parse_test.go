package ai

import "testing"

func TestParseRupees(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"strict envelope", "$550000$", 550000, false},
		{"strict with commas", "fair price is $5,50,000$", 550000, false},
		{"fallback plain", "around 480000 rupees", 480000, false},
		{"fallback picks longest", "a 2019 car for 525000", 525000, false},
		{"no match", "cannot estimate", 0, true},
		{"multiple envelopes", "$100$ or $200$", 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRupees(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
		})
	}
}
