package matrix

import "fmt"

// Solver turns an assembled System into its 0-based solution vector.
type Solver interface {
	Name() string
	Solve(sys *System) ([]float64, error)
}

const (
	SolverDense  = "dense"
	SolverSparse = "sparse"
)

// NewSolver returns the backend registered under name. An empty name selects
// the dense LU.
func NewSolver(name string) (Solver, error) {
	switch name {
	case "", SolverDense:
		return DenseLU{}, nil
	case SolverSparse:
		return SparseLU{}, nil
	default:
		return nil, fmt.Errorf("unknown solver %q (want %q or %q)", name, SolverDense, SolverSparse)
	}
}
