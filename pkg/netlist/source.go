package netlist

import (
	"fmt"
	"strings"

	"github.com/edp1096/opspice/pkg/device"
	"github.com/edp1096/opspice/pkg/spiceerr"
)

// parseSource reads the value part of an independent source line and keeps
// its DC operating value. Accepted forms:
//
//	V1 a 0 5
//	V1 a 0 DC 5 AC 1 0
//	V1 a 0 SIN(0 1 1k)
//	V1 a 0 PULSE(0 5 1n 1n 1n 5u 10u)
//	V1 a 0 PWL(0 0 1m 5)
func parseSource(comp *device.Component, tokens []string, line int) error {
	remaining := strings.Join(tokens, " ")
	remaining = strings.ReplaceAll(remaining, "(", " ( ") // Append whitespace around parentheses
	remaining = strings.ReplaceAll(remaining, ")", " ) ")
	words := strings.Fields(remaining)

	var (
		dcValue   float64
		haveDC    bool
		waveValue float64
		haveWave  bool
	)

	for i := 0; i < len(words); {
		word := words[i]
		switch upper := strings.ToUpper(word); {
		case upper == "DC":
			if i+1 >= len(words) {
				return malformed(comp, line, "missing DC value")
			}
			value, err := ParseValue(words[i+1])
			if err != nil {
				return invalidValue(comp, words[i+1], line, err)
			}
			dcValue, haveDC = value, true
			i += 2

		case upper == "AC":
			// Small-signal magnitude and phase have no effect at DC.
			i++
			for n := 0; n < 2 && i < len(words); n++ {
				if _, err := ParseValue(words[i]); err != nil {
					break
				}
				i++
			}

		case upper == "SIN" || upper == "PULSE" || upper == "PWL":
			args, next, err := waveformArgs(words, i+1)
			if err != nil {
				return malformed(comp, line, "%s: %v", upper, err)
			}
			values := make([]float64, len(args))
			for n, arg := range args {
				if values[n], err = ParseValue(arg); err != nil {
					return invalidValue(comp, arg, line, err)
				}
			}
			if waveValue, err = waveformDC(upper, values); err != nil {
				return spiceerr.New(spiceerr.KindValue, line, spiceerr.ErrInvalidValue,
					"%s %s: %v", comp.Kind, comp.Name, err)
			}
			haveWave = true
			i = next

		case strings.Contains(word, "="):
			if err := addParam(comp, word, line); err != nil {
				return err
			}
			i++

		default:
			if haveDC || haveWave {
				return malformed(comp, line, "unexpected token %q", word)
			}
			value, err := ParseValue(word)
			if err != nil {
				return invalidValue(comp, word, line, err)
			}
			dcValue, haveDC = value, true
			i++
		}
	}

	switch {
	case haveDC:
		comp.Value = dcValue
	case haveWave:
		comp.Value = waveValue
	default:
		comp.Value = 0 // AC-only source
	}
	return nil
}

// waveformArgs collects the tokens of "( a b c )" starting at words[start].
// Parentheses are optional; without them the rest of the line is taken.
func waveformArgs(words []string, start int) (args []string, next int, err error) {
	if start >= len(words) {
		return nil, start, fmt.Errorf("missing parameters")
	}
	if words[start] != "(" {
		return words[start:], len(words), nil
	}
	for i := start + 1; i < len(words); i++ {
		if words[i] == ")" {
			return words[start+1 : i], i + 1, nil
		}
	}
	return nil, len(words), fmt.Errorf("unbalanced parentheses")
}

// waveformDC returns the value a time-dependent source holds at t=0, which
// is what the operating point sees.
func waveformDC(kind string, values []float64) (float64, error) {
	switch kind {
	case "SIN":
		// SIN(offset amplitude freq [delay damping phase])
		if len(values) < 1 {
			return 0, fmt.Errorf("insufficient SIN parameters")
		}
		return values[0], nil

	case "PULSE":
		// PULSE(v1 v2 [delay rise fall width period])
		if len(values) < 2 {
			return 0, fmt.Errorf("insufficient PULSE parameters")
		}
		return values[0], nil

	case "PWL":
		if len(values) < 2 || len(values)%2 != 0 {
			return 0, fmt.Errorf("insufficient or invalid PWL parameters, need pairs of time-value")
		}
		numPoints := len(values) / 2
		times := make([]float64, numPoints)
		points := make([]float64, numPoints)
		for i := range numPoints {
			times[i], points[i] = values[2*i], values[2*i+1]
			if i > 0 && times[i] < times[i-1] {
				return 0, fmt.Errorf("PWL time points must be increasing")
			}
		}
		return pwlAt(times, points, 0), nil
	}
	return 0, fmt.Errorf("unsupported waveform %s", kind)
}

func pwlAt(times, values []float64, t float64) float64 {
	if t <= times[0] {
		return values[0]
	}

	lastIdx := len(times) - 1
	if t >= times[lastIdx] {
		return values[lastIdx]
	}

	for i := 1; i < len(times); i++ {
		if t <= times[i] {
			t1, t2 := times[i-1], times[i]
			v1, v2 := values[i-1], values[i]
			if t2 == t1 {
				return v2
			}
			slope := (v2 - v1) / (t2 - t1)
			return v1 + slope*(t-t1)
		}
	}

	return values[lastIdx] // Must not reach
}

func malformed(comp *device.Component, line int, format string, args ...any) error {
	return spiceerr.New(spiceerr.KindParse, line, spiceerr.ErrMalformedLine,
		"%s %s: %s", comp.Kind, comp.Name, fmt.Sprintf(format, args...))
}
