package models

import (
	"math"
	"testing"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestFahrenheitToCelsius(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want *float64
	}{
		{name: "freezing point", in: floatPtr(32), want: floatPtr(0)},
		{name: "boiling point", in: floatPtr(212), want: floatPtr(100)},
		{name: "body temperature", in: floatPtr(98.6), want: floatPtr(37)},
		{name: "negative value", in: floatPtr(-40), want: floatPtr(-40)},
		{name: "nil input", in: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FahrenheitToCelsius(tt.in)

			if (got == nil) != (tt.want == nil) {
				t.Fatalf("FahrenheitToCelsius(%v) = %v, want %v", tt.in, got, tt.want)
			}

			if got != nil && math.Abs(*got-*tt.want) > 1e-9 {
				t.Errorf("FahrenheitToCelsius(%v) = %v, want %v", *tt.in, *got, *tt.want)
			}
		})
	}
}

func TestCelsiusFahrenheitRoundTrip(t *testing.T) {
	values := []float64{-40, 0, 18.3, 32, 82.1, 90, 104.5}

	for _, f := range values {
		c := FahrenheitToCelsius(&f)
		if c == nil {
			t.Fatalf("FahrenheitToCelsius(%v) returned nil", f)
		}

		back := CelsiusToFahrenheit(c)
		if back == nil {
			t.Fatalf("CelsiusToFahrenheit(%v) returned nil", *c)
		}

		if math.Abs(*back-f) > 1e-9 {
			t.Errorf("round trip of %v = %v", f, *back)
		}
	}
}

func TestMphToKph(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want *float64
	}{
		{name: "zero", in: floatPtr(0), want: floatPtr(0)},
		{name: "one mile", in: floatPtr(1), want: floatPtr(1.609344)},
		{name: "nil input", in: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MphToKph(tt.in)

			if (got == nil) != (tt.want == nil) {
				t.Fatalf("MphToKph(%v) = %v, want %v", tt.in, got, tt.want)
			}

			if got != nil && math.Abs(*got-*tt.want) > 1e-4 {
				t.Errorf("MphToKph(%v) = %v, want %v", *tt.in, *got, *tt.want)
			}
		})
	}
}

func TestWindRoundTrip(t *testing.T) {
	for _, mph := range []float64{0, 3.5, 12, 47.8} {
		kph := MphToKph(&mph)
		back := KphToMph(kph)

		if back == nil {
			t.Fatalf("round trip of %v returned nil", mph)
		}

		if math.Abs(*back-mph) > 1e-9 {
			t.Errorf("round trip of %v = %v", mph, *back)
		}
	}

	if KphToMph(nil) != nil {
		t.Error("KphToMph(nil) should be nil")
	}
}
