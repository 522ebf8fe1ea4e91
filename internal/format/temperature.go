// Package format turns raw forecast values into display strings.
// Every function here is pure: the same input always yields the same output.
package format

import (
	"fmt"
	"math"
)

// CelsiusToFahrenheit converts a Celsius reading to Fahrenheit
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// FormatTemperature renders a Celsius value as a whole-degree string,
// converting to Fahrenheit when useMetric is false. Halves round away
// from zero.
func FormatTemperature(celsius float64, useMetric bool) string {
	v := celsius
	if !useMetric {
		v = CelsiusToFahrenheit(celsius)
	}
	return fmt.Sprintf("%d°", int(math.Round(v)))
}

// FormatHighLow renders "high/low" with both values in the same unit system
func FormatHighLow(high, low float64, useMetric bool) string {
	return FormatTemperature(high, useMetric) + "/" + FormatTemperature(low, useMetric)
}
