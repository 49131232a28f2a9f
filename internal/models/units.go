package models

// Unit conversion helpers for heat readings.
// All converters are total over *float64: nil in, nil out, no error paths.
// Ambient and WBGT values arrive from the forecast provider in Fahrenheit/mph
// and are mirrored into metric units for snapshot rows.

const mphPerKph = 0.621371

// FahrenheitToCelsius converts a Fahrenheit reading to Celsius.
func FahrenheitToCelsius(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := (*f - 32) * 5 / 9
	return &c
}

// CelsiusToFahrenheit converts a Celsius reading to Fahrenheit.
func CelsiusToFahrenheit(c *float64) *float64 {
	if c == nil {
		return nil
	}
	f := *c*9/5 + 32
	return &f
}

// MphToKph converts miles per hour to kilometers per hour.
func MphToKph(mph *float64) *float64 {
	if mph == nil {
		return nil
	}
	kph := *mph / mphPerKph
	return &kph
}

// KphToMph converts kilometers per hour to miles per hour.
func KphToMph(kph *float64) *float64 {
	if kph == nil {
		return nil
	}
	mph := *kph * mphPerKph
	return &mph
}
