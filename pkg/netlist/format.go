package netlist

import (
	"slices"
	"strings"

	"github.com/edp1096/opspice/pkg/device"
)

// Format writes nl back as netlist text. Values are printed so that they
// parse to the same float64, parameters are sorted by key and waveform
// sources collapse to their DC value, so Parse(Format(nl)) reproduces the
// component list of nl.
func Format(nl *Netlist) string {
	var sb strings.Builder

	if nl.Title != "" {
		sb.WriteString("* " + nl.Title + "\n")
	}

	for i := range nl.Components {
		writeComponent(&sb, &nl.Components[i])
	}

	for _, d := range nl.Directives {
		sb.WriteString(d.Name)
		for _, arg := range d.Args {
			sb.WriteString(" " + arg)
		}
		sb.WriteString("\n")
	}
	sb.WriteString(".end\n")

	return sb.String()
}

func writeComponent(sb *strings.Builder, c *device.Component) {
	sb.WriteString(c.Name + " " + c.Nodes[0] + " " + c.Nodes[1] + " ")
	if c.Kind.IsSource() {
		sb.WriteString("DC ")
	}
	sb.WriteString(FormatValue(c.Value))

	keys := make([]string, 0, len(c.Params))
	for k := range c.Params {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		sb.WriteString(" " + k + "=" + c.Params[k])
	}
	sb.WriteString("\n")
}

// Canonical parses text and returns its Format. Texts that differ only in
// spacing, inline comments, value spelling or continuation layout share the
// same canonical form.
func Canonical(text string) (string, error) {
	nl, err := Parse(text)
	if err != nil {
		return "", err
	}
	return Format(nl), nil
}
