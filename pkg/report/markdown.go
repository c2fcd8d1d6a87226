package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/edp1096/opspice/pkg/util"
)

// MarkdownWriter outputs reports as Markdown tables, for pasting into
// documents and chat transcripts.
type MarkdownWriter struct {
	output io.Writer
}

func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

func (w *MarkdownWriter) Write(reports ...*Report) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Operating Point")
	md.PlainText("")

	for _, r := range reports {
		w.writeReport(md, r)
	}

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeReport(md *markdown.Markdown, r *Report) {
	heading := r.Title
	if r.Source != "" {
		heading = r.Source
		if r.Title != "" {
			heading += " (" + r.Title + ")"
		}
	}
	if heading == "" {
		heading = "Circuit"
	}
	md.H2(heading)
	md.PlainText("")

	if r.Error != nil {
		reason := r.Error.Kind + ": " + r.Error.Message
		if r.Error.Line > 0 {
			reason += " (line " + strconv.Itoa(r.Error.Line) + ")"
		}
		md.Caution(reason)
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		rows = append(rows, []string{"`" + n.Name + "`", util.FormatValueFactor(n.Voltage, "V")})
	}
	md.H3("Node Voltages")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Node", "Voltage"},
		Rows:   rows,
	})
	md.PlainText("")

	rows = make([][]string, 0, len(r.Components))
	for _, c := range r.Components {
		rows = append(rows, []string{
			c.Name,
			c.Kind,
			c.Nodes,
			util.FormatValueFactor(c.Value, c.Unit),
			util.FormatValueFactor(c.Drop, "V"),
			util.FormatValueFactor(c.Current, "A"),
			util.FormatValueFactor(c.Power, "W"),
		})
	}
	md.H3("Components")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Name", "Kind", "Nodes", "Value", "Drop", "Current", "Power"},
		Rows:   rows,
	})
	md.PlainText("")
}
