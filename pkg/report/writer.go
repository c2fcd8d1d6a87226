// Package report turns operating-point solutions into answers and
// human-readable or machine-readable reports.
package report

import (
	"fmt"
	"io"

	"github.com/edp1096/opspice/pkg/analysis"
	"github.com/edp1096/opspice/pkg/device"
)

// Writer outputs operating-point reports in one format.
type Writer interface {
	Write(reports ...*Report) (int, error)
}

// Format names accepted by NewWriter.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// NewWriter returns the writer for format.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch format {
	case "", FormatText:
		return NewTextWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("unknown report format %q (want %s, %s or %s)", format, FormatText, FormatJSON, FormatMarkdown)
	}
}

// Report is the flattened operating point of one netlist.
type Report struct {
	Source     string       `json:"source,omitempty"`
	Title      string       `json:"title,omitempty"`
	Nodes      []NodeResult `json:"nodes,omitempty"`
	Components []CompResult `json:"components,omitempty"`
	Error      *ErrorResult `json:"error,omitempty"`
}

type NodeResult struct {
	Name    string  `json:"name"`
	Voltage float64 `json:"voltage"`
}

type CompResult struct {
	Name    string  `json:"name"`
	Kind    string  `json:"kind"`
	Nodes   string  `json:"nodes"`
	Value   float64 `json:"value"`
	Unit    string  `json:"unit"`
	Drop    float64 `json:"drop"`
	Current float64 `json:"current"`
	Power   float64 `json:"power"`
}

type ErrorResult struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// New flattens sol. Nodes follow index order and components follow
// declaration order.
func New(source string, sol *analysis.Solution) *Report {
	g := sol.Graph()
	r := &Report{Source: source, Title: g.Title()}

	for idx, name := range g.NodeNames() {
		r.Nodes = append(r.Nodes, NodeResult{Name: name, Voltage: sol.VoltageAt(idx)})
	}

	for _, comp := range g.Components() {
		drop, _ := sol.Drop(comp.Name)
		current, _ := sol.Current(comp.Name)
		r.Components = append(r.Components, CompResult{
			Name:    comp.Name,
			Kind:    comp.Kind.String(),
			Nodes:   comp.Nodes[0] + "," + comp.Nodes[1],
			Value:   comp.Value,
			Unit:    unitOf(comp.Kind),
			Drop:    drop,
			Current: current,
			Power:   absorbed(comp.Kind.IsSource(), drop, current),
		})
	}
	return r
}

// NewFailed records a failed solve so batch output keeps every input.
func NewFailed(source, kind, message string, line int) *Report {
	return &Report{
		Source: source,
		Error:  &ErrorResult{Kind: kind, Message: message, Line: line},
	}
}

// unitOf returns the unit of a component's value.
func unitOf(k device.Kind) string {
	switch k {
	case device.Resistor:
		return "Ohm"
	case device.Capacitor:
		return "F"
	case device.Inductor:
		return "H"
	case device.VoltageSource:
		return "V"
	default:
		return "A"
	}
}

// countWriter counts bytes written through it.
type countWriter struct {
	w   io.Writer
	n   int
	err error
}

func (c *countWriter) printf(format string, args ...any) {
	if c.err != nil {
		return
	}
	n, err := fmt.Fprintf(c.w, format, args...)
	c.n += n
	c.err = err
}
