package circuit

import (
	"fmt"

	"github.com/edp1096/opspice/pkg/device"
	"github.com/edp1096/opspice/pkg/matrix"
)

type Options struct {
	// Gmin is added to every node diagonal when positive. It keeps nearly
	// floating subcircuits solvable at the cost of a small leakage.
	Gmin float64
}

// Row maps a node index to its 1-based matrix row; Ground maps to 0.
func Row(idx int) int {
	return idx + 1
}

// BranchRow maps a branch index to its 1-based matrix row.
func (g *Graph) BranchRow(branch int) int {
	return g.NumNodes() + branch + 1
}

// Assemble builds the MNA system of g. Node rows come first, then one row
// per branch in branch order.
func Assemble(g *Graph, opts Options) (*matrix.System, error) {
	sys := matrix.NewSystem(g.Size())
	if err := Stamp(g, sys); err != nil {
		return nil, err
	}
	if opts.Gmin > 0 {
		sys.LoadGmin(opts.Gmin, g.NumNodes())
	}
	if err := sys.Err(); err != nil {
		return nil, fmt.Errorf("assembling system: %w", err)
	}
	return sys, nil
}

// Stamp writes every component of g into m.
func Stamp(g *Graph, m matrix.DeviceMatrix) error {
	for pos := range g.components {
		comp := &g.components[pos]
		n1, n2 := g.terminals[pos][0], g.terminals[pos][1]

		branch := 0
		if comp.Kind.HasBranch() {
			b, _ := g.BranchIndex(comp.Name)
			branch = g.BranchRow(b)
		}

		if err := device.Stamp(m, comp, Row(n1), Row(n2), branch); err != nil {
			return fmt.Errorf("stamping %s: %w", comp.Name, err)
		}
	}
	return nil
}
