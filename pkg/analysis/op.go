package analysis

import (
	"context"
	"fmt"

	"github.com/edp1096/opspice/pkg/circuit"
	"github.com/edp1096/opspice/pkg/matrix"
)

// OperatingPoint computes the DC solution of a linear circuit with a single
// direct solve: capacitors open, inductors shorted.
type OperatingPoint struct {
	BaseAnalysis
	solver   matrix.Solver
	options  circuit.Options
	solution *Solution
}

func NewOP(solver matrix.Solver, opts circuit.Options) *OperatingPoint {
	if solver == nil {
		solver = matrix.DenseLU{}
	}
	return &OperatingPoint{
		BaseAnalysis: *NewBaseAnalysis(),
		solver:       solver,
		options:      opts,
	}
}

func (op *OperatingPoint) Setup(g *circuit.Graph) error {
	op.solution = nil
	return op.BaseAnalysis.Setup(g)
}

func (op *OperatingPoint) Execute(ctx context.Context) error {
	if op.Graph == nil {
		return fmt.Errorf("operating point: Setup was not called")
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	sys, err := circuit.Assemble(op.Graph, op.options)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	x, err := op.solver.Solve(sys)
	if err != nil {
		return err
	}

	op.solution = newSolution(op.Graph, x)
	op.StoreResult(op.solution)
	return nil
}

// Solution returns the result of the last successful Execute.
func (op *OperatingPoint) Solution() *Solution {
	return op.solution
}

// Solve runs an operating-point analysis of g.
func Solve(ctx context.Context, g *circuit.Graph, solver matrix.Solver, opts circuit.Options) (*Solution, error) {
	op := NewOP(solver, opts)
	if err := op.Setup(g); err != nil {
		return nil, err
	}
	if err := op.Execute(ctx); err != nil {
		return nil, err
	}
	return op.Solution(), nil
}
