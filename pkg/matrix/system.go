package matrix

import (
	"fmt"
	"io"
	"math"
)

// System is the dense MNA system A·x = b. Rows and columns are addressed
// 1-based through DeviceMatrix; index 0 is the ground reference and is
// silently dropped.
type System struct {
	Size int
	a    []float64 // row-major, Size*Size
	rhs  []float64
	err  error
}

var _ DeviceMatrix = (*System)(nil)

func NewSystem(size int) *System {
	return &System{
		Size: size,
		a:    make([]float64, size*size),
		rhs:  make([]float64, size),
	}
}

func (s *System) AddElement(i, j int, value float64) {
	if i == 0 || j == 0 {
		return
	}
	if i < 0 || j < 0 || i > s.Size || j > s.Size {
		s.fail(fmt.Errorf("matrix index out of bounds (i=%d, j=%d, size=%d)", i, j, s.Size))
		return
	}
	s.a[(i-1)*s.Size+(j-1)] += value
}

func (s *System) AddRHS(i int, value float64) {
	if i == 0 {
		return
	}
	if i < 0 || i > s.Size {
		s.fail(fmt.Errorf("RHS index out of bounds (i=%d, size=%d)", i, s.Size))
		return
	}
	s.rhs[i-1] += value
}

func (s *System) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Err reports the first out-of-bounds stamp, if any.
func (s *System) Err() error { return s.err }

// At returns A[i][j] using 1-based indices.
func (s *System) At(i, j int) float64 {
	return s.a[(i-1)*s.Size+(j-1)]
}

// RHS returns b[i] using a 1-based index.
func (s *System) RHS(i int) float64 {
	return s.rhs[i-1]
}

// LoadGmin adds gmin to the first n diagonal entries (the node rows).
func (s *System) LoadGmin(gmin float64, n int) {
	n = min(n, s.Size)
	for i := 1; i <= n; i++ {
		s.AddElement(i, i, gmin)
	}
}

// NormInf is the maximum absolute row sum of A.
func (s *System) NormInf() float64 {
	norm := 0.0
	for i := 0; i < s.Size; i++ {
		sum := 0.0
		for _, v := range s.a[i*s.Size : (i+1)*s.Size] {
			sum += math.Abs(v)
		}
		norm = max(norm, sum)
	}
	return norm
}

// NonZeros returns the number of structurally non-zero entries of A.
func (s *System) NonZeros() int {
	count := 0
	for _, v := range s.a {
		if v != 0 {
			count++
		}
	}
	return count
}

// Residual returns ||A·x - b||∞ for a 0-based solution vector x.
func (s *System) Residual(x []float64) float64 {
	worst := 0.0
	for i := 0; i < s.Size; i++ {
		sum := -s.rhs[i]
		for j, v := range s.a[i*s.Size : (i+1)*s.Size] {
			sum += v * x[j]
		}
		worst = max(worst, math.Abs(sum))
	}
	return worst
}

// Print writes the system as one equation per row, node equations first and
// branch equations after them.
func (s *System) Print(w io.Writer) {
	fmt.Fprintf(w, "Circuit Equations (%dx%d):\n", s.Size, s.Size)
	for i := 1; i <= s.Size; i++ {
		fmt.Fprintf(w, "Equation %d:", i)
		for j := 1; j <= s.Size; j++ {
			if v := s.At(i, j); v != 0 {
				fmt.Fprintf(w, "  %+g*x%d", v, j)
			}
		}
		fmt.Fprintf(w, " = %g\n", s.RHS(i))
	}
}
