package netlist

import (
	"bufio"
	"errors"
	"strings"

	"github.com/edp1096/opspice/pkg/device"
	"github.com/edp1096/opspice/pkg/spiceerr"
)

// Directive is a dot-command line. Only .op changes behavior; the rest are
// kept so the netlist can be reproduced.
type Directive struct {
	Name string   // lower-cased, with the leading dot
	Args []string // remaining tokens as written
	Line int
}

type Netlist struct {
	Title      string
	Components []device.Component
	Directives []Directive
	HasOP      bool
}

type Options struct {
	// FirstLineTitle treats the first line as the circuit title, as classic
	// SPICE decks do, whatever it contains.
	FirstLineTitle bool
}

var errEnd = errors.New(".end reached")

type parser struct {
	netlist    *Netlist
	declared   map[string]int // component key -> declaring line
	seenSource bool           // any statement or comment consumed
}

func Parse(input string) (*Netlist, error) {
	return ParseWithOptions(input, Options{})
}

func ParseWithOptions(input string, opts Options) (*Netlist, error) {
	p := &parser{
		netlist:  &Netlist{},
		declared: make(map[string]int),
	}

	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		current   string
		startLine int
		lineNo    int
	)

	flush := func() error {
		if current == "" {
			return nil
		}
		err := p.statement(current, startLine)
		current = ""
		return err
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if opts.FirstLineTitle && lineNo == 1 {
			p.netlist.Title = strings.TrimSpace(strings.TrimLeft(line, "*"))
			p.seenSource = true
			continue
		}

		// Empty line
		if line == "" {
			if err := flush(); err != nil {
				return p.finish(err)
			}
			continue
		}

		// Comment line. The first one names the circuit.
		if line[0] == '*' || line[0] == ';' {
			if err := flush(); err != nil {
				return p.finish(err)
			}
			if !p.seenSource {
				p.netlist.Title = strings.TrimSpace(line[1:])
			}
			p.seenSource = true
			continue
		}
		p.seenSource = true

		line = stripInlineComment(line)
		if line == "" {
			continue
		}

		// Line continuation
		if line[0] == '+' {
			if current == "" {
				return nil, spiceerr.New(spiceerr.KindParse, lineNo, spiceerr.ErrMalformedLine,
					"continuation line without a preceding statement")
			}
			current += " " + strings.TrimSpace(line[1:])
			continue
		}

		if err := flush(); err != nil {
			return p.finish(err)
		}
		current = line
		startLine = lineNo
	}
	if err := scanner.Err(); err != nil {
		return nil, spiceerr.New(spiceerr.KindParse, lineNo+1, spiceerr.ErrMalformedLine,
			"reading netlist: %v", err)
	}

	return p.finish(flush())
}

func (p *parser) finish(err error) (*Netlist, error) {
	if err != nil && !errors.Is(err, errEnd) {
		return nil, err
	}
	return p.netlist, nil
}

// stripInlineComment cuts the line at ';' anywhere, or at '$' preceded by
// whitespace.
func stripInlineComment(line string) string {
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		line = line[:idx]
	}
	for i := 1; i < len(line); i++ {
		if line[i] == '$' && (line[i-1] == ' ' || line[i-1] == '\t') {
			line = line[:i]
			break
		}
	}
	return strings.TrimSpace(line)
}

func (p *parser) statement(text string, line int) error {
	if text[0] == '.' {
		return p.directive(text, line)
	}

	comp, err := parseComponent(text, line)
	if err != nil {
		return err
	}

	key := comp.Key()
	if first, exists := p.declared[key]; exists {
		return spiceerr.New(spiceerr.KindDuplicate, line, spiceerr.ErrDuplicateComponent,
			"duplicate designator %q (first declared on line %d)", comp.Name, first)
	}
	p.declared[key] = line
	p.netlist.Components = append(p.netlist.Components, *comp)
	return nil
}

// Parse .op, .end, .title; everything else is recorded and ignored.
func (p *parser) directive(text string, line int) error {
	fields := strings.Fields(text)
	name := strings.ToLower(fields[0])

	switch name {
	case ".end":
		return errEnd
	case ".title":
		p.netlist.Title = strings.TrimSpace(text[len(fields[0]):])
		return nil
	case ".op":
		p.netlist.HasOP = true
	}

	var args []string
	if len(fields) > 1 {
		args = fields[1:]
	}
	p.netlist.Directives = append(p.netlist.Directives, Directive{Name: name, Args: args, Line: line})
	return nil
}

// Parse circuit element
func parseComponent(text string, line int) (*device.Component, error) {
	fields := strings.Fields(text)
	name := fields[0]

	kind, ok := device.KindOf(name)
	if !ok {
		return nil, spiceerr.New(spiceerr.KindParse, line, spiceerr.ErrUnknownComponent,
			"unknown component type %q in designator %q", name[:1], name)
	}
	if len(fields) < 4 {
		return nil, spiceerr.New(spiceerr.KindParse, line, spiceerr.ErrMalformedLine,
			"%s %s needs two nodes and a value, got %d tokens", kind, name, len(fields))
	}

	comp := &device.Component{
		Kind:  kind,
		Name:  name,
		Nodes: [2]string{fields[1], fields[2]},
		Line:  line,
	}

	var err error
	switch kind {
	case device.VoltageSource, device.CurrentSource:
		err = parseSource(comp, fields[3:], line)
	default:
		err = parsePassive(comp, fields[3:], line)
	}
	if err != nil {
		return nil, err
	}
	return comp, nil
}

// parsePassive reads "<value> [key=value ...]" for R, C and L.
func parsePassive(comp *device.Component, tokens []string, line int) error {
	if strings.Contains(tokens[0], "=") {
		return spiceerr.New(spiceerr.KindParse, line, spiceerr.ErrMalformedLine,
			"%s %s: expected a value before parameter %q", comp.Kind, comp.Name, tokens[0])
	}

	value, err := ParseValue(tokens[0])
	if err != nil {
		return invalidValue(comp, tokens[0], line, err)
	}
	if comp.Kind == device.Resistor && value == 0 {
		return spiceerr.New(spiceerr.KindValue, line, spiceerr.ErrInvalidValue,
			"resistor %s: resistance must be non-zero", comp.Name)
	}
	comp.Value = value

	for _, tok := range tokens[1:] {
		if err := addParam(comp, tok, line); err != nil {
			return err
		}
	}
	return nil
}

func addParam(comp *device.Component, tok string, line int) error {
	key, val, found := strings.Cut(tok, "=")
	if !found || key == "" || val == "" {
		return spiceerr.New(spiceerr.KindParse, line, spiceerr.ErrMalformedLine,
			"%s %s: unexpected token %q", comp.Kind, comp.Name, tok)
	}
	if comp.Params == nil {
		comp.Params = make(map[string]string)
	}
	comp.Params[strings.ToLower(key)] = val
	return nil
}

func invalidValue(comp *device.Component, tok string, line int, err error) error {
	return spiceerr.New(spiceerr.KindValue, line, spiceerr.ErrInvalidValue,
		"%s %s: invalid value %q: %v", comp.Kind, comp.Name, tok, err)
}
