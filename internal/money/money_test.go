package money

import (
	"errors"
	"testing"
)

func TestDecimalPlaces(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"USD", 2},
		{"EUR", 2},
		{"JPY", 0},
		{"KRW", 0},
		{"KWD", 3},
		{"ZZZ", 2}, // unknown defaults to 2
	}

	for _, tt := range tests {
		if got := DecimalPlaces(tt.code); got != tt.want {
			t.Errorf("DecimalPlaces(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		code    string
		want    int64
		wantErr bool
	}{
		{"whole dollars", 100.00, "USD", 10000, false},
		{"cents", 33.34, "USD", 3334, false},
		{"zero-decimal currency", 1234, "JPY", 1234, false},
		{"three-decimal currency", 1.234, "KWD", 1234, false},
		{"rounds half away from zero", 0.005, "USD", 1, false},
		{"unknown code", 10, "ZZZ", 0, true},
		{"lowercase rejected", 10, "usd", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMinorUnits(tt.amount, tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToMinorUnits(%v, %q) error = %v, wantErr %v", tt.amount, tt.code, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCurrency) {
					t.Errorf("error = %v, want ErrUnknownCurrency", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ToMinorUnits(%v, %q) = %d, want %d", tt.amount, tt.code, got, tt.want)
			}
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	if got := FromMinorUnits(3334, "USD"); got != 33.34 {
		t.Errorf("FromMinorUnits(3334, USD) = %v, want 33.34", got)
	}
	if got := FromMinorUnits(1234, "JPY"); got != 1234 {
		t.Errorf("FromMinorUnits(1234, JPY) = %v, want 1234", got)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, amount := range []float64{0, 0.01, 19.99, 33.33, 100.00} {
		minor, err := ToMinorUnits(amount, "USD")
		if err != nil {
			t.Fatalf("ToMinorUnits(%v) error: %v", amount, err)
		}
		if back := FromMinorUnits(minor, "USD"); back != amount {
			t.Errorf("round trip %v -> %d -> %v", amount, minor, back)
		}
	}
}
