package report

import (
	"io"

	"github.com/edp1096/opspice/pkg/util"
)

// TextWriter prints reports for a terminal, values with engineering prefixes.
type TextWriter struct {
	output io.Writer
}

func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{output: output}
}

func (w *TextWriter) Write(reports ...*Report) (int, error) {
	cw := &countWriter{w: w.output}

	for i, r := range reports {
		if i > 0 {
			cw.printf("\n")
		}
		w.writeOne(cw, r)
	}
	return cw.n, cw.err
}

func (w *TextWriter) writeOne(cw *countWriter, r *Report) {
	if r.Source != "" {
		cw.printf("== %s ==\n", r.Source)
	}
	if r.Error != nil {
		if r.Error.Line > 0 {
			cw.printf("%s: line %d: %s\n", r.Error.Kind, r.Error.Line, r.Error.Message)
		} else {
			cw.printf("%s: %s\n", r.Error.Kind, r.Error.Message)
		}
		return
	}
	if r.Title != "" {
		cw.printf("Circuit: %s\n", r.Title)
	}

	cw.printf("\nNode Voltages:\n")
	for _, n := range r.Nodes {
		cw.printf("V(%s) = %s\n", n.Name, util.FormatValueFactor(n.Voltage, "V"))
	}

	cw.printf("\nBranch Currents:\n")
	for _, c := range r.Components {
		cw.printf("I(%s) = %s\n", c.Name, util.FormatValueFactor(c.Current, "A"))
	}
}
