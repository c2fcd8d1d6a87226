package netlist

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/opspice/pkg/device"
	"github.com/edp1096/opspice/pkg/spiceerr"
)

const divider = `* Voltage divider
V1 in 0 DC 10
R1 in out 1k
R2 out 0 1k
.op
.end
`

func TestParseDivider(t *testing.T) {
	nl, err := Parse(divider)
	require.NoError(t, err)

	assert.Equal(t, "Voltage divider", nl.Title)
	assert.True(t, nl.HasOP)
	require.Len(t, nl.Components, 3)

	want := []device.Component{
		{Kind: device.VoltageSource, Name: "V1", Nodes: [2]string{"in", "0"}, Value: 10, Line: 2},
		{Kind: device.Resistor, Name: "R1", Nodes: [2]string{"in", "out"}, Value: 1000, Line: 3},
		{Kind: device.Resistor, Name: "R2", Nodes: [2]string{"out", "0"}, Value: 1000, Line: 4},
	}
	if diff := cmp.Diff(want, nl.Components); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, nl.Directives, 1)
	assert.Equal(t, ".op", nl.Directives[0].Name)
	assert.Equal(t, 5, nl.Directives[0].Line)
}

func TestParseSyntax(t *testing.T) {
	t.Run("continuation lines", func(t *testing.T) {
		nl, err := Parse("V1 1 0\n+ DC 5\nR1 1 0\n+ 2k")
		require.NoError(t, err)
		require.Len(t, nl.Components, 2)
		assert.Equal(t, 5.0, nl.Components[0].Value)
		assert.Equal(t, 1, nl.Components[0].Line)
		assert.Equal(t, 2000.0, nl.Components[1].Value)
		assert.Equal(t, 3, nl.Components[1].Line)
	})

	t.Run("inline comments", func(t *testing.T) {
		nl, err := Parse("V1 1 0 5 ; supply\nR1 1 0 1k $ load")
		require.NoError(t, err)
		require.Len(t, nl.Components, 2)
		assert.Equal(t, 5.0, nl.Components[0].Value)
		assert.Equal(t, 1000.0, nl.Components[1].Value)
	})

	t.Run("comment lines and blank lines", func(t *testing.T) {
		nl, err := Parse("\n; first\n\n* second\nR1 1 0 1\n\nV1 1 0 1\n")
		require.NoError(t, err)
		assert.Equal(t, "first", nl.Title)
		assert.Len(t, nl.Components, 2)
	})

	t.Run("title directive", func(t *testing.T) {
		nl, err := Parse("* comment\n.title Bias network\nR1 1 0 1\nV1 1 0 1")
		require.NoError(t, err)
		assert.Equal(t, "Bias network", nl.Title)
		assert.Empty(t, nl.Directives)
	})

	t.Run("first line title", func(t *testing.T) {
		nl, err := ParseWithOptions("Classic deck\nR1 1 0 1\nV1 1 0 1", Options{FirstLineTitle: true})
		require.NoError(t, err)
		assert.Equal(t, "Classic deck", nl.Title)
		assert.Len(t, nl.Components, 2)
	})

	t.Run("byte order mark", func(t *testing.T) {
		nl, err := Parse("\ufeffR1 1 0 1\nV1 1 0 1")
		require.NoError(t, err)
		assert.Equal(t, "R1", nl.Components[0].Name)
	})

	t.Run("end stops parsing", func(t *testing.T) {
		nl, err := Parse("R1 1 0 1\nV1 1 0 1\n.END\nthis is not a netlist line")
		require.NoError(t, err)
		assert.Len(t, nl.Components, 2)
	})

	t.Run("other directives are recorded", func(t *testing.T) {
		nl, err := Parse("R1 1 0 1\nV1 1 0 1\n.tran 1u 1m\n.OPTIONS reltol=1e-3")
		require.NoError(t, err)
		assert.False(t, nl.HasOP)
		require.Len(t, nl.Directives, 2)
		assert.Equal(t, Directive{Name: ".tran", Args: []string{"1u", "1m"}, Line: 3}, nl.Directives[0])
		assert.Equal(t, ".options", nl.Directives[1].Name)
	})

	t.Run("lower-case designators", func(t *testing.T) {
		nl, err := Parse("r1 1 0 1\nv1 1 0 1\nc1 1 0 1u\nl1 1 0 1m\ni1 1 0 1m")
		require.NoError(t, err)
		kinds := make([]device.Kind, 0, len(nl.Components))
		for _, c := range nl.Components {
			kinds = append(kinds, c.Kind)
		}
		assert.Equal(t, []device.Kind{device.Resistor, device.VoltageSource, device.Capacitor, device.Inductor, device.CurrentSource}, kinds)
	})

	t.Run("parameters", func(t *testing.T) {
		nl, err := Parse("R1 1 0 1k TC1=0.001 m=2\nV1 1 0 1")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"tc1": "0.001", "m": "2"}, nl.Components[0].Params)
	})

	t.Run("negative resistor", func(t *testing.T) {
		nl, err := Parse("R1 1 0 -50\nV1 1 0 1")
		require.NoError(t, err)
		assert.Equal(t, -50.0, nl.Components[0].Value)
	})
}

func TestParseSources(t *testing.T) {
	tests := []struct {
		name string
		line string
		want float64
	}{
		{"bare value", "V1 1 0 5", 5},
		{"dc keyword", "V1 1 0 DC 5", 5},
		{"dc lower case", "V1 1 0 dc 3.3", 3.3},
		{"dc and ac", "V1 1 0 DC 5 AC 1 0", 5},
		{"ac only", "V1 1 0 AC 1", 0},
		{"sin offset", "V1 1 0 SIN(0.5 1 1k)", 0.5},
		{"sin spaced", "V1 1 0 SIN (2 1 1k 0 0)", 2},
		{"pulse initial value", "V1 1 0 PULSE(1 5 1n 1n 1n 5u 10u)", 1},
		{"pwl first value", "V1 1 0 PWL(0 2 1m 5)", 2},
		{"pwl before first point", "V1 1 0 PWL(1m 3 2m 5)", 3},
		{"explicit dc wins", "V1 1 0 DC 1 SIN(0 1 1k)", 1},
		{"current source", "I1 1 0 1m", 1e-3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nl, err := Parse(tt.line + "\nR1 1 0 1")
			require.NoError(t, err)
			assert.InDelta(t, tt.want, nl.Components[0].Value, 1e-15)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     spiceerr.Kind
		sentinel error
		line     int
	}{
		{"unknown component", "R1 1 0 1\nX1 1 0 1", spiceerr.KindParse, spiceerr.ErrUnknownComponent, 2},
		{"missing value", "R1 1 0", spiceerr.KindParse, spiceerr.ErrMalformedLine, 1},
		{"missing node", "V1 1 0 1\nR1 1", spiceerr.KindParse, spiceerr.ErrMalformedLine, 2},
		{"stray token", "R1 1 0 1k 2k", spiceerr.KindParse, spiceerr.ErrMalformedLine, 1},
		{"parameter before value", "R1 1 0 m=2", spiceerr.KindParse, spiceerr.ErrMalformedLine, 1},
		{"stray source token", "V1 1 0 5 6", spiceerr.KindParse, spiceerr.ErrMalformedLine, 1},
		{"dangling dc", "V1 1 0 DC", spiceerr.KindParse, spiceerr.ErrMalformedLine, 1},
		{"unbalanced waveform", "V1 1 0 SIN(0 1 1k", spiceerr.KindParse, spiceerr.ErrMalformedLine, 1},
		{"orphan continuation", "+ 1k", spiceerr.KindParse, spiceerr.ErrMalformedLine, 1},
		{"bad value", "\nR1 1 0 1x", spiceerr.KindValue, spiceerr.ErrInvalidValue, 2},
		{"bad source value", "V1 1 0 DC five", spiceerr.KindValue, spiceerr.ErrInvalidValue, 1},
		{"bad waveform", "V1 1 0 PULSE(1)", spiceerr.KindValue, spiceerr.ErrInvalidValue, 1},
		{"odd pwl", "V1 1 0 PWL(0 1 1m)", spiceerr.KindValue, spiceerr.ErrInvalidValue, 1},
		{"decreasing pwl", "V1 1 0 PWL(1m 1 0 2)", spiceerr.KindValue, spiceerr.ErrInvalidValue, 1},
		{"zero resistor", "R1 1 0 0", spiceerr.KindValue, spiceerr.ErrInvalidValue, 1},
		{"duplicate", "R1 1 0 1\nV1 1 0 1\nr1 1 0 2", spiceerr.KindDuplicate, spiceerr.ErrDuplicateComponent, 3},
		{"continued statement", "V1 1 0 1\nR1 1 0\n+ 1x", spiceerr.KindValue, spiceerr.ErrInvalidValue, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nl, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, nl)

			var e *spiceerr.Error
			require.True(t, errors.As(err, &e), "want *spiceerr.Error, got %T", err)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.line, e.Line)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.NotEmpty(t, e.Reason)
		})
	}
}

func TestParseIsRepeatable(t *testing.T) {
	first, err := Parse(divider)
	require.NoError(t, err)
	second, err := Parse(divider)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
