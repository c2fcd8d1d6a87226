package circuit

import (
	"strings"

	"github.com/edp1096/opspice/pkg/device"
	"github.com/edp1096/opspice/pkg/netlist"
	"github.com/edp1096/opspice/pkg/spiceerr"
)

// Ground is the node index of the reference node.
const Ground = -1

// Graph is a validated circuit: components with resolved terminals, the
// node table and the branch table. It is read-only once built.
type Graph struct {
	title      string
	netlist    *netlist.Netlist
	components []device.Component
	terminals  [][2]int // per component, zero-based node index or Ground

	nodeMap   map[string]int // name -> index
	nodeNames []string       // index -> name

	branchMap   map[string]int // component key -> branch index
	branchNames []string       // branch index -> component name

	compIndex map[string]int // component key -> position
	adjacency [][]int        // node index -> component positions
}

// IsGround reports whether name denotes the reference node.
func IsGround(name string) bool {
	return name == "0" || strings.EqualFold(name, "gnd")
}

// Build resolves the node and branch tables of nl and checks that every
// node is connected to at least two components and that a reference node
// exists.
func Build(nl *netlist.Netlist) (*Graph, error) {
	g := &Graph{
		title:      nl.Title,
		netlist:    nl,
		components: nl.Components,
		terminals:  make([][2]int, len(nl.Components)),
		nodeMap:    make(map[string]int),
		branchMap:  make(map[string]int),
		compIndex:  make(map[string]int, len(nl.Components)),
	}

	hasGround := false
	introducedAt := make(map[int]int) // node index -> line of first component

	// Node indices in first-seen order
	for pos := range g.components {
		comp := &g.components[pos]
		g.compIndex[comp.Key()] = pos

		for t, name := range comp.Nodes {
			if IsGround(name) {
				hasGround = true
				g.terminals[pos][t] = Ground
				continue
			}
			idx, exists := g.nodeMap[name]
			if !exists {
				idx = len(g.nodeNames)
				g.nodeMap[name] = idx
				g.nodeNames = append(g.nodeNames, name)
				g.adjacency = append(g.adjacency, nil)
				introducedAt[idx] = comp.Line
			}
			g.terminals[pos][t] = idx

			// A component with both terminals on one node counts once.
			if adj := g.adjacency[idx]; len(adj) == 0 || adj[len(adj)-1] != pos {
				g.adjacency[idx] = append(adj, pos)
			}
		}
	}

	// Branch indices in declaration order
	for pos := range g.components {
		comp := &g.components[pos]
		if comp.Kind.HasBranch() {
			g.branchMap[comp.Key()] = len(g.branchNames)
			g.branchNames = append(g.branchNames, comp.Name)
		}
	}

	if !hasGround {
		return nil, spiceerr.New(spiceerr.KindTopology, 0, spiceerr.ErrNoReferenceNode,
			"no reference node: connect at least one terminal to node 0 or GND")
	}

	for idx, adj := range g.adjacency {
		if len(adj) < 2 {
			return nil, spiceerr.New(spiceerr.KindTopology, introducedAt[idx], spiceerr.ErrFloatingNode,
				"node %q is connected to only one component (%s)", g.nodeNames[idx], g.components[adj[0]].Name)
		}
	}

	return g, nil
}

func (g *Graph) Title() string { return g.title }

// NumNodes is the number of non-reference nodes.
func (g *Graph) NumNodes() int { return len(g.nodeNames) }

// NumBranches is the number of branch-current unknowns.
func (g *Graph) NumBranches() int { return len(g.branchNames) }

// Size is the dimension of the MNA system.
func (g *Graph) Size() int { return g.NumNodes() + g.NumBranches() }

// NodeIndex returns the index of name, Ground for the reference node.
func (g *Graph) NodeIndex(name string) (int, bool) {
	if IsGround(name) {
		return Ground, true
	}
	idx, ok := g.nodeMap[name]
	return idx, ok
}

func (g *Graph) NodeName(idx int) string {
	if idx == Ground {
		return "0"
	}
	return g.nodeNames[idx]
}

// NodeNames returns the non-reference nodes in index order.
func (g *Graph) NodeNames() []string {
	return append([]string(nil), g.nodeNames...)
}

// Components returns the components in declaration order.
func (g *Graph) Components() []device.Component {
	return g.components
}

// Component looks a component up by designator, case-insensitively.
func (g *Graph) Component(name string) (*device.Component, bool) {
	pos, ok := g.compIndex[strings.ToUpper(name)]
	if !ok {
		return nil, false
	}
	return &g.components[pos], true
}

// Terminals returns the node indices of the component at position pos.
func (g *Graph) Terminals(pos int) (int, int) {
	return g.terminals[pos][0], g.terminals[pos][1]
}

// TerminalsOf returns the node indices of the named component.
func (g *Graph) TerminalsOf(name string) (int, int, bool) {
	pos, ok := g.compIndex[strings.ToUpper(name)]
	if !ok {
		return 0, 0, false
	}
	return g.terminals[pos][0], g.terminals[pos][1], true
}

// BranchIndex returns the zero-based branch index of a voltage source or
// inductor.
func (g *Graph) BranchIndex(name string) (int, bool) {
	idx, ok := g.branchMap[strings.ToUpper(name)]
	return idx, ok
}

// BranchNames returns the branch components in branch order.
func (g *Graph) BranchNames() []string {
	return append([]string(nil), g.branchNames...)
}

// Adjacent returns the positions of the components touching node idx.
func (g *Graph) Adjacent(idx int) []int {
	if idx < 0 || idx >= len(g.adjacency) {
		return nil
	}
	return g.adjacency[idx]
}

// Netlist returns the canonical text of the circuit.
func (g *Graph) Netlist() string {
	return netlist.Format(g.netlist)
}
