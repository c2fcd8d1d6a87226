package util

import (
	"fmt"
	"math"
	"strconv"
)

// FormatValueFactor prints value with an engineering prefix and three
// decimals, e.g. 0.0015 A -> "1.500 mA".
func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue == 0:
		return fmt.Sprintf("%.3f %s", 0.0, unit)
	case absValue >= 1e9:
		return fmt.Sprintf("%.3f G%s", value/1e9, unit)
	case absValue >= 1e6:
		return fmt.Sprintf("%.3f M%s", value/1e6, unit)
	case absValue >= 1e3:
		return fmt.Sprintf("%.3f k%s", value/1e3, unit)
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

// FormatFixed prints value with precision decimals and no prefix, e.g.
// "1.0 V". Negative zero prints as zero.
func FormatFixed(value float64, precision int, unit string) string {
	s := strconv.FormatFloat(value, 'f', precision, 64)
	if isNegativeZero(s) {
		s = s[1:]
	}
	if unit == "" {
		return s
	}
	return s + " " + unit
}

func isNegativeZero(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	for _, r := range s[1:] {
		if r != '0' && r != '.' {
			return false
		}
	}
	return true
}
