package models

import (
	"fmt"
	"strings"
)

// UnitSystem selects how temperatures are displayed
type UnitSystem int

const (
	Metric UnitSystem = iota
	Imperial
)

// String returns the preference value for the unit system
func (u UnitSystem) String() string {
	switch u {
	case Metric:
		return "metric"
	case Imperial:
		return "imperial"
	default:
		return "unknown"
	}
}

// IsMetric reports whether temperatures should be shown in Celsius
func (u UnitSystem) IsMetric() bool {
	return u != Imperial
}

// Toggle flips between metric and imperial
func (u UnitSystem) Toggle() UnitSystem {
	if u == Imperial {
		return Metric
	}
	return Imperial
}

// ParseUnitSystem accepts "metric" or "imperial", case-insensitively
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metric", "celsius", "c":
		return Metric, nil
	case "imperial", "fahrenheit", "f":
		return Imperial, nil
	default:
		return Metric, fmt.Errorf("unknown unit system %q", s)
	}
}
