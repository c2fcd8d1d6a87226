package report

import (
	"strings"

	"github.com/edp1096/opspice/internal/consts"
	"github.com/edp1096/opspice/pkg/analysis"
	"github.com/edp1096/opspice/pkg/spiceerr"
	"github.com/edp1096/opspice/pkg/util"
)

type Quantity string

const (
	NodeVoltage  Quantity = "voltage"
	VoltageDrop  Quantity = "voltage drop"
	Current      Quantity = "current"
	Power        Quantity = "power"
	VoltageDiffs Quantity = "voltage difference"
)

// Answer is a resolved query.
type Answer struct {
	Quantity Quantity
	Subject  string // node, component, or "a,b" for a difference
	Value    float64
	Unit     string
}

// Format prints the value with precision decimals and its unit, "1.0 V".
// A negative precision selects the default.
func (a Answer) Format(precision int) string {
	return util.FormatFixed(a.Value, clampPrecision(precision), a.Unit)
}

// Sentence phrases the answer for a conversational caller.
func (a Answer) Sentence(precision int) string {
	value := a.Format(precision)
	switch a.Quantity {
	case NodeVoltage:
		return "The voltage at node " + a.Subject + " is " + value + "."
	case VoltageDiffs:
		nodes := strings.SplitN(a.Subject, ",", 2)
		return "The voltage between nodes " + nodes[0] + " and " + nodes[1] + " is " + value + "."
	case Current:
		return "The current through " + a.Subject + " is " + value + "."
	default:
		return "The " + string(a.Quantity) + " of " + a.Subject + " is " + value + "."
	}
}

func clampPrecision(p int) int {
	switch {
	case p < 0:
		return consts.DefaultPrecision
	case p > consts.MaxPrecision:
		return consts.MaxPrecision
	}
	return p
}

var suffixes = []struct {
	words    string
	quantity Quantity
}{
	{"voltage drop", VoltageDrop},
	{"voltage", VoltageDrop},
	{"drop", VoltageDrop},
	{"current", Current},
	{"power", Power},
}

// Resolve answers target against sol. Accepted targets:
//
//	out               voltage of node "out"
//	node out          same
//	R1 voltage drop   V(first terminal) - V(second terminal); also "voltage", "drop"
//	R1 current        component current
//	R1 power          drop × current
//	V(out) V(a,b)     node voltage or difference
//	I(R1)             component current
func Resolve(sol *analysis.Solution, target string) (Answer, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return Answer{}, queryErr(spiceerr.ErrInvalidQuery, "empty query")
	}

	if inner, ok := call(target, "V"); ok {
		return resolveVoltage(sol, inner)
	}
	if inner, ok := call(target, "I"); ok {
		return resolveComponent(sol, strings.TrimSpace(inner), Current)
	}

	fields := strings.Fields(target)
	if len(fields) == 1 {
		return nodeVoltage(sol, fields[0])
	}
	if len(fields) == 2 && strings.EqualFold(fields[0], "node") {
		return nodeVoltage(sol, fields[1])
	}

	rest := strings.ToLower(strings.Join(fields[1:], " "))
	for _, s := range suffixes {
		if rest == s.words {
			return resolveComponent(sol, fields[0], s.quantity)
		}
	}
	return Answer{}, queryErr(spiceerr.ErrInvalidQuery,
		"cannot understand query %q: use a node name, \"<component> voltage drop\" or \"<component> current\"", target)
}

// call matches "F(...)" case-insensitively and returns the text inside.
func call(target, fn string) (string, bool) {
	if len(target) < len(fn)+2 || !strings.EqualFold(target[:len(fn)], fn) {
		return "", false
	}
	rest := strings.TrimSpace(target[len(fn):])
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return "", false
	}
	return rest[1 : len(rest)-1], true
}

func resolveVoltage(sol *analysis.Solution, inner string) (Answer, error) {
	a, b, pair := strings.Cut(inner, ",")
	a = strings.TrimSpace(a)
	if !pair {
		return nodeVoltage(sol, a)
	}
	b = strings.TrimSpace(b)

	va, err := nodeVoltage(sol, a)
	if err != nil {
		return Answer{}, err
	}
	vb, err := nodeVoltage(sol, b)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Quantity: VoltageDiffs, Subject: a + "," + b, Value: va.Value - vb.Value, Unit: "V"}, nil
}

func nodeVoltage(sol *analysis.Solution, name string) (Answer, error) {
	if name == "" {
		return Answer{}, queryErr(spiceerr.ErrInvalidQuery, "missing node name")
	}
	v, ok := sol.Voltage(name)
	if !ok {
		return Answer{}, queryErr(spiceerr.ErrUnknownNode, "unknown node %q", name)
	}
	return Answer{Quantity: NodeVoltage, Subject: name, Value: v, Unit: "V"}, nil
}

func resolveComponent(sol *analysis.Solution, name string, q Quantity) (Answer, error) {
	comp, ok := sol.Graph().Component(name)
	if !ok {
		return Answer{}, queryErr(spiceerr.ErrUnknownComponent, "unknown component %q", name)
	}

	drop, _ := sol.Drop(comp.Name)
	current, _ := sol.Current(comp.Name)

	switch q {
	case VoltageDrop:
		return Answer{Quantity: q, Subject: comp.Name, Value: drop, Unit: "V"}, nil
	case Current:
		return Answer{Quantity: q, Subject: comp.Name, Value: current, Unit: "A"}, nil
	default:
		return Answer{Quantity: Power, Subject: comp.Name, Value: absorbed(comp.Kind.IsSource(), drop, current), Unit: "W"}, nil
	}
}

// absorbed returns the power taken from the circuit. Source currents are
// reported leaving the first terminal, so their sign is flipped.
func absorbed(source bool, drop, current float64) float64 {
	if source {
		return -drop * current
	}
	return drop * current
}

func queryErr(sentinel error, format string, args ...any) error {
	return spiceerr.New(spiceerr.KindQuery, 0, sentinel, format, args...)
}
