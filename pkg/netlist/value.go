package netlist

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Mantissa, optional SI prefix, optional unit. M is mega and m is milli;
// "meg" in any case is also mega.
var valueRe = regexp.MustCompile(`^([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)((?i:meg)|[TGgMkKmunpfµ])?((?i:ohms?)|Ω|Hz|[VAFHs])?$`)

var unitMap = map[string]float64{
	"T": 1e12,  // tera
	"G": 1e9,   // giga
	"g": 1e9,   // giga
	"M": 1e6,   // mega
	"k": 1e3,   // kilo
	"K": 1e3,   // kilo
	"m": 1e-3,  // milli
	"u": 1e-6,  // micro
	"µ": 1e-6,  // micro
	"n": 1e-9,  // nano
	"p": 1e-12, // pico
	"f": 1e-15, // femto
}

// ParseValue - Parse value and factor. 1k -> 1000, 10uF -> 1e-05
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %q", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", matches[1], err)
	}

	if factor := matches[2]; factor != "" {
		if strings.EqualFold(factor, "meg") {
			num *= 1e6
		} else {
			num *= unitMap[factor]
		}
	}

	if math.IsInf(num, 0) || math.IsNaN(num) {
		return 0, fmt.Errorf("value out of range: %q", val)
	}
	return num, nil
}

// FormatValue renders v so that ParseValue returns exactly v.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
