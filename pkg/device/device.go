package device

import (
	"fmt"
	"strings"

	"github.com/edp1096/opspice/pkg/matrix"
)

// Kind is the closed set of supported two-terminal components.
type Kind int

const (
	Resistor Kind = iota
	Capacitor
	Inductor
	VoltageSource
	CurrentSource
)

var designators = map[byte]Kind{
	'R': Resistor,
	'C': Capacitor,
	'L': Inductor,
	'V': VoltageSource,
	'I': CurrentSource,
}

// KindOf maps a designator such as "R1" or "vin" to its component kind.
func KindOf(designator string) (Kind, bool) {
	if designator == "" {
		return 0, false
	}
	k, ok := designators[strings.ToUpper(designator[:1])[0]]
	return k, ok
}

func (k Kind) String() string {
	switch k {
	case Resistor:
		return "resistor"
	case Capacitor:
		return "capacitor"
	case Inductor:
		return "inductor"
	case VoltageSource:
		return "voltage source"
	case CurrentSource:
		return "current source"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// HasBranch reports whether the kind adds a branch-current unknown to the
// MNA system. Inductors are shorts at DC and reuse the voltage-source stamp.
func (k Kind) HasBranch() bool {
	return k == VoltageSource || k == Inductor
}

// IsSource reports whether the kind is an independent source.
func (k Kind) IsSource() bool {
	return k == VoltageSource || k == CurrentSource
}

// Component is one parsed netlist element. Value is in base units; for
// sources it is the DC operating value.
type Component struct {
	Kind   Kind
	Name   string
	Nodes  [2]string
	Value  float64
	Params map[string]string
	Line   int // declaring netlist line, 0 when built in code
}

// Key is the case-insensitive identity used for duplicate detection and lookups.
func (c *Component) Key() string { return strings.ToUpper(c.Name) }

// Stamp adds the component's DC contribution to m. n1 and n2 are 1-based
// matrix rows of the terminals (0 for ground); branch is the row of the
// extra unknown for kinds with HasBranch.
func Stamp(m matrix.DeviceMatrix, c *Component, n1, n2, branch int) error {
	if c.Kind.HasBranch() && branch <= 0 {
		return fmt.Errorf("%s %s: missing branch index", c.Kind, c.Name)
	}

	switch c.Kind {
	case Resistor:
		if c.Value == 0 {
			return fmt.Errorf("resistor %s: zero resistance", c.Name)
		}
		stampResistor(m, n1, n2, 1.0/c.Value)
	case Capacitor:
		stampCapacitor(m, n1, n2)
	case Inductor:
		stampInductor(m, n1, n2, branch)
	case VoltageSource:
		stampVoltageSource(m, n1, n2, branch, c.Value)
	case CurrentSource:
		stampCurrentSource(m, n1, n2, c.Value)
	default:
		return fmt.Errorf("%s: unsupported component kind %d", c.Name, int(c.Kind))
	}
	return nil
}

// Current returns the DC current associated with c given its terminal
// voltages and, for branch kinds, the solved branch unknown.
//
// Passive devices report the current flowing from the first to the second
// terminal. Sources report the current they deliver out of the first
// terminal into the circuit.
func Current(c *Component, v1, v2, branchCurrent float64) float64 {
	switch c.Kind {
	case Resistor:
		return (v1 - v2) / c.Value
	case Inductor:
		return branchCurrent
	case VoltageSource:
		return -branchCurrent
	case CurrentSource:
		return c.Value
	default:
		return 0
	}
}
