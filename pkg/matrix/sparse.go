package matrix

import (
	"fmt"
	"math"

	"github.com/edp1096/sparse"

	"github.com/edp1096/opspice/internal/consts"
	"github.com/edp1096/opspice/pkg/spiceerr"
)

// CircuitMatrix wraps a real sparse matrix from github.com/edp1096/sparse.
// rhs and solution are 1-based like the matrix itself.
type CircuitMatrix struct {
	Size     int
	matrix   *sparse.Matrix
	rhs      []float64
	solution []float64
	config   *sparse.Configuration
}

var _ DeviceMatrix = (*CircuitMatrix)(nil)

func NewMatrix(size int) (*CircuitMatrix, error) {
	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 false,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}

	return &CircuitMatrix{
		Size:     size,
		matrix:   mat,
		rhs:      make([]float64, size+1),
		solution: make([]float64, size+1),
		config:   config,
	}, nil
}

func (m *CircuitMatrix) AddElement(i, j int, value float64) {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		return
	}
	m.matrix.GetElement(int64(i), int64(j)).Real += value
}

func (m *CircuitMatrix) AddRHS(i int, value float64) {
	if i <= 0 || i > m.Size {
		return
	}
	m.rhs[i] += value
}

func (m *CircuitMatrix) Clear() {
	m.matrix.Clear()
	for i := range m.rhs {
		m.rhs[i] = 0
	}
}

func (m *CircuitMatrix) Solve() error {
	if err := m.matrix.Factor(); err != nil {
		return fmt.Errorf("matrix factorization failed: %w", err)
	}

	solution, err := m.matrix.Solve(m.rhs)
	if err != nil {
		return fmt.Errorf("matrix solve failed: %w", err)
	}
	if len(solution) < m.Size+1 {
		return fmt.Errorf("matrix solve returned %d values for size %d", len(solution), m.Size)
	}
	m.solution = solution
	return nil
}

func (m *CircuitMatrix) Solution() []float64 {
	return m.solution
}

func (m *CircuitMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
	}
}

// SparseLU solves systems through CircuitMatrix. The factorization is
// Markowitz-ordered and deterministic. Because the library does not expose
// its pivot threshold, singularity is also detected from the residual.
type SparseLU struct {
	RelTol float64
}

func (s SparseLU) Name() string { return "sparse" }

func (s SparseLU) Solve(sys *System) ([]float64, error) {
	if err := sys.Err(); err != nil {
		return nil, err
	}
	if sys.Size == 0 {
		return []float64{}, nil
	}
	norm := sys.NormInf()
	if norm == 0 {
		return nil, singular()
	}

	m, err := NewMatrix(sys.Size)
	if err != nil {
		return nil, err
	}
	defer m.Destroy()

	for i := 1; i <= sys.Size; i++ {
		for j := 1; j <= sys.Size; j++ {
			if v := sys.At(i, j); v != 0 {
				m.AddElement(i, j, v)
			}
		}
		m.AddRHS(i, sys.RHS(i))
	}

	if err := m.Solve(); err != nil {
		return nil, spiceerr.New(spiceerr.KindSingular, 0, spiceerr.ErrSingularMatrix,
			"circuit matrix is singular: %v", err)
	}

	x := make([]float64, sys.Size)
	copy(x, m.Solution()[1:sys.Size+1])
	if !finite(x) {
		return nil, singular()
	}

	relTol := s.RelTol
	if relTol <= 0 {
		relTol = consts.ResidualRelTol
	}
	scale := norm*maxAbs(x) + maxAbs(sys.rhs)
	if sys.Residual(x) > relTol*scale {
		return nil, singular()
	}
	return x, nil
}

func maxAbs(v []float64) float64 {
	worst := 0.0
	for _, x := range v {
		worst = max(worst, math.Abs(x))
	}
	return worst
}
