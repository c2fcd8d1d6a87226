package matrix

import (
	"math"

	"github.com/edp1096/opspice/internal/consts"
	"github.com/edp1096/opspice/pkg/spiceerr"
)

// LU is a dense LU factorization with partial pivoting, P·A = L·U, stored
// in place: U on and above the diagonal, the unit-lower L multipliers below.
type LU struct {
	n   int
	lu  []float64
	piv []int // piv[k] is the original row now at position k
}

// Factor decomposes sys. A pivot whose magnitude does not exceed
// relTol·||A||∞ makes the system singular. Among equal candidates the first
// row wins, so the factorization is reproducible.
func Factor(sys *System, relTol float64) (*LU, error) {
	n := sys.Size
	f := &LU{
		n:   n,
		lu:  make([]float64, len(sys.a)),
		piv: make([]int, n),
	}
	copy(f.lu, sys.a)
	for i := range f.piv {
		f.piv[i] = i
	}
	if n == 0 {
		return f, nil
	}

	norm := sys.NormInf()
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, singular()
	}
	tol := relTol * norm

	for k := 0; k < n; k++ {
		p := k
		maxVal := math.Abs(f.lu[k*n+k])
		for i := k + 1; i < n; i++ {
			if v := math.Abs(f.lu[i*n+k]); v > maxVal {
				maxVal = v
				p = i
			}
		}
		if maxVal <= tol {
			return nil, singular()
		}

		if p != k {
			rowK := f.lu[k*n : (k+1)*n]
			rowP := f.lu[p*n : (p+1)*n]
			for j := range rowK {
				rowK[j], rowP[j] = rowP[j], rowK[j]
			}
			f.piv[k], f.piv[p] = f.piv[p], f.piv[k]
		}

		pivot := f.lu[k*n+k]
		for i := k + 1; i < n; i++ {
			factor := f.lu[i*n+k] / pivot
			f.lu[i*n+k] = factor
			if factor == 0 {
				continue
			}
			for j := k + 1; j < n; j++ {
				f.lu[i*n+j] -= factor * f.lu[k*n+j]
			}
		}
	}
	return f, nil
}

// Solve returns x for A·x = b, b given 0-based.
func (f *LU) Solve(b []float64) []float64 {
	n := f.n
	x := make([]float64, n)

	// Forward substitution: L·y = P·b
	for i := 0; i < n; i++ {
		sum := b[f.piv[i]]
		for j := 0; j < i; j++ {
			sum -= f.lu[i*n+j] * x[j]
		}
		x[i] = sum
	}

	// Back substitution: U·x = y
	for i := n - 1; i >= 0; i-- {
		sum := x[i]
		for j := i + 1; j < n; j++ {
			sum -= f.lu[i*n+j] * x[j]
		}
		x[i] = sum / f.lu[i*n+i]
	}
	return x
}

// DenseLU solves systems with Factor and LU.Solve.
type DenseLU struct {
	RelTol float64
}

func (d DenseLU) Name() string { return "dense" }

func (d DenseLU) Solve(sys *System) ([]float64, error) {
	if err := sys.Err(); err != nil {
		return nil, err
	}
	relTol := d.RelTol
	if relTol <= 0 {
		relTol = consts.PivotRelTol
	}

	f, err := Factor(sys, relTol)
	if err != nil {
		return nil, err
	}
	x := f.Solve(sys.rhs)
	if !finite(x) {
		return nil, singular()
	}
	return x, nil
}

func singular() error {
	return spiceerr.New(spiceerr.KindSingular, 0, spiceerr.ErrSingularMatrix,
		"circuit matrix is singular: check for floating subcircuits or conflicting voltage sources")
}

func finite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
