package analysis

import (
	"fmt"

	"github.com/edp1096/opspice/pkg/circuit"
	"github.com/edp1096/opspice/pkg/device"
)

// Solution is the solved unknown vector bound to its graph: node voltages
// first, then branch currents. It is immutable and safe to share.
type Solution struct {
	graph *circuit.Graph
	x     []float64
}

func newSolution(g *circuit.Graph, x []float64) *Solution {
	return &Solution{graph: g, x: x}
}

func (s *Solution) Graph() *circuit.Graph { return s.graph }

// Unknowns returns a copy of the full solution vector.
func (s *Solution) Unknowns() []float64 {
	return append([]float64(nil), s.x...)
}

// NodeVoltages returns the voltages of the non-reference nodes in index order.
func (s *Solution) NodeVoltages() []float64 {
	return append([]float64(nil), s.x[:s.graph.NumNodes()]...)
}

// BranchCurrents returns the branch unknowns in branch order. The value is
// the current entering the first terminal of the branch component.
func (s *Solution) BranchCurrents() []float64 {
	return append([]float64(nil), s.x[s.graph.NumNodes():]...)
}

// VoltageAt returns the voltage of node idx; Ground is 0 V.
func (s *Solution) VoltageAt(idx int) float64 {
	if idx == circuit.Ground {
		return 0
	}
	return s.x[idx]
}

// Voltage returns the voltage of the named node.
func (s *Solution) Voltage(node string) (float64, bool) {
	idx, ok := s.graph.NodeIndex(node)
	if !ok {
		return 0, false
	}
	return s.VoltageAt(idx), true
}

// BranchCurrent returns the raw branch unknown of a voltage source or
// inductor.
func (s *Solution) BranchCurrent(name string) (float64, bool) {
	b, ok := s.graph.BranchIndex(name)
	if !ok {
		return 0, false
	}
	return s.x[s.graph.NumNodes()+b], true
}

// Drop returns V(first terminal) - V(second terminal) of the named component.
func (s *Solution) Drop(name string) (float64, bool) {
	n1, n2, ok := s.graph.TerminalsOf(name)
	if !ok {
		return 0, false
	}
	return s.VoltageAt(n1) - s.VoltageAt(n2), true
}

// Current returns the DC current of the named component. Passive devices
// report the current from the first to the second terminal; sources report
// the current delivered out of their first terminal.
func (s *Solution) Current(name string) (float64, bool) {
	comp, ok := s.graph.Component(name)
	if !ok {
		return 0, false
	}
	n1, n2, _ := s.graph.TerminalsOf(name)
	branch, _ := s.BranchCurrent(name)
	return device.Current(comp, s.VoltageAt(n1), s.VoltageAt(n2), branch), true
}

// Results returns every unknown keyed V(node) and I(component), plus the
// currents of the components without a branch unknown.
func (s *Solution) Results() map[string]float64 {
	results := make(map[string]float64, len(s.x))

	// Node voltage
	for idx, name := range s.graph.NodeNames() {
		results[fmt.Sprintf("V(%s)", name)] = s.x[idx]
	}

	// Component current
	for _, comp := range s.graph.Components() {
		if comp.Kind == device.Capacitor {
			continue
		}
		current, _ := s.Current(comp.Name)
		results[fmt.Sprintf("I(%s)", comp.Name)] = current
	}

	return results
}
