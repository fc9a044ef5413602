package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain integer", input: "12", want: 1200},
		{name: "dot separator", input: "12.34", want: 1234},
		{name: "comma separator", input: "12,34", want: 1234},
		{name: "single fractional digit", input: "12.3", want: 1230},
		{name: "third decimal rounds down", input: "12.344", want: 1234},
		{name: "third decimal rounds up", input: "12.346", want: 1235},
		{name: "leading whitespace", input: "  7.50", want: 750},
		{name: "empty", input: "", wantErr: true},
		{name: "negative", input: "-3.00", wantErr: true},
		{name: "explicit plus", input: "+3.00", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "letters", input: "abc", wantErr: true},
		{name: "two dots", input: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimalToCents(%q) expected error, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyFromFloat(t *testing.T) {
	tests := []struct {
		input float64
		want  int64
	}{
		{12.34, 1234},
		{0.1, 10},
		{99.995, 10000},
		{100, 10000},
	}
	for _, tt := range tests {
		if got := MoneyFromFloat(tt.input); got.Cents != tt.want {
			t.Errorf("MoneyFromFloat(%v) = %d cents, want %d", tt.input, got.Cents, tt.want)
		}
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1250, "12.50"},
		{-150, "-1.50"},
		{-5, "-0.05"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1500}
	b := Money{Cents: 700}
	if got := a.Add(b).Cents; got != 2200 {
		t.Errorf("Add = %d, want 2200", got)
	}
	if got := a.Sub(b).Cents; got != 800 {
		t.Errorf("Sub = %d, want 800", got)
	}
}
