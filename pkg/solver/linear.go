package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/matrix"
)

const (
	// Regularization is the ridge term added to the diagonal of JᵗJ.
	Regularization = 1e-6

	// PivotEpsilon is the smallest pivot magnitude accepted during
	// elimination. Anything smaller is treated as singular.
	PivotEpsilon = 1e-12
)

var (
	// ErrSingular is returned when elimination meets a pivot below
	// PivotEpsilon, even after regularization.
	ErrSingular = errors.New("solver: singular matrix")

	// ErrDimensionMismatch is returned when operand shapes disagree.
	ErrDimensionMismatch = errors.New("solver: dimension mismatch")
)

// SolveLeastSquares returns the step dx (length nVars) minimizing
// ‖J·dx + f‖² + λ‖dx‖², by solving the regularized normal equations
//
//	(JᵗJ + λI)·dx = Jᵗ·(−f)
//
// with λ = Regularization. J must have len(f) rows of nVars columns; it may
// be non-square and rank-deficient. The normal equations are formed with
// lvlath dense matrices and solved by pivoting elimination.
func SolveLeastSquares(jac [][]float64, f []float64, nVars int) ([]float64, error) {
	if nVars == 0 {
		return []float64{}, nil
	}
	if len(jac) != len(f) {
		return nil, fmt.Errorf("%w: jacobian has %d rows, residual has %d", ErrDimensionMismatch, len(jac), len(f))
	}
	for i, row := range jac {
		if len(row) != nVars {
			return nil, fmt.Errorf("%w: jacobian row %d has %d columns, want %d", ErrDimensionMismatch, i, len(row), nVars)
		}
	}
	// No rows: the ridge term alone gives λI·dx = 0.
	if len(f) == 0 {
		return make([]float64, nVars), nil
	}

	a, b, err := normalEquations(jac, f, nVars)
	if err != nil {
		return nil, err
	}
	return gaussianSolveInPlace(a, b)
}

// normalEquations forms A = JᵗJ + λI and b = Jᵗ(−f).
func normalEquations(jac [][]float64, f []float64, nVars int) ([][]float64, []float64, error) {
	j, err := toDense(jac, nVars)
	if err != nil {
		return nil, nil, err
	}
	jt, err := matrix.Transpose(j)
	if err != nil {
		return nil, nil, wrapMatrixErr(err)
	}
	jtj, err := matrix.Mul(jt, j)
	if err != nil {
		return nil, nil, wrapMatrixErr(err)
	}
	id, err := matrix.NewIdentity(nVars)
	if err != nil {
		return nil, nil, wrapMatrixErr(err)
	}
	ridge, err := matrix.Scale(id, Regularization)
	if err != nil {
		return nil, nil, wrapMatrixErr(err)
	}
	am, err := matrix.Add(jtj, ridge)
	if err != nil {
		return nil, nil, wrapMatrixErr(err)
	}

	negF := make([]float64, len(f))
	for i, v := range f {
		negF[i] = -v
	}
	b, err := matrix.MatVec(jt, negF)
	if err != nil {
		return nil, nil, wrapMatrixErr(err)
	}

	a, err := fromMatrix(am)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func toDense(rows [][]float64, cols int) (*matrix.Dense, error) {
	d, err := matrix.NewDense(len(rows), cols)
	if err != nil {
		return nil, wrapMatrixErr(err)
	}
	for i, row := range rows {
		for k, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite entry at (%d, %d)", ErrSingular, i, k)
			}
			if err := d.Set(i, k, v); err != nil {
				return nil, wrapMatrixErr(err)
			}
		}
	}
	return d, nil
}

func fromMatrix(m matrix.Matrix) ([][]float64, error) {
	out := make([][]float64, m.Rows())
	for i := range out {
		out[i] = make([]float64, m.Cols())
		for k := range out[i] {
			v, err := m.At(i, k)
			if err != nil {
				return nil, wrapMatrixErr(err)
			}
			out[i][k] = v
		}
	}
	return out, nil
}

// wrapMatrixErr maps lvlath failures onto this package's sentinels. A
// NaN or Inf entry means the linearization is unusable, which the driver
// reports like a singular system.
func wrapMatrixErr(err error) error {
	if errors.Is(err, matrix.ErrNaNInf) {
		return fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return fmt.Errorf("%w: %v", ErrDimensionMismatch, err)
}

// GaussianSolve solves the square system A·x = b by Gaussian elimination
// with partial pivoting. A and b are not modified.
func GaussianSolve(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	if len(a) != n {
		return nil, fmt.Errorf("%w: matrix has %d rows, vector has %d", ErrDimensionMismatch, len(a), n)
	}
	m := make([][]float64, n)
	for i, row := range a {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimensionMismatch, i, len(row), n)
		}
		m[i] = append([]float64(nil), row...)
	}
	return gaussianSolveInPlace(m, append([]float64(nil), b...))
}

// gaussianSolveInPlace destroys a and b.
func gaussianSolveInPlace(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	for col := 0; col < n; col++ {
		// Partial pivoting: the largest magnitude in this column wins.
		// Ties keep the earliest row.
		pivot := col
		best := math.Abs(a[col][col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(a[r][col]); v > best {
				pivot, best = r, v
			}
		}
		if best < PivotEpsilon {
			return nil, fmt.Errorf("%w: pivot %g in column %d", ErrSingular, best, col)
		}
		if pivot != col {
			a[col], a[pivot] = a[pivot], a[col]
			b[col], b[pivot] = b[pivot], b[col]
		}

		for r := col + 1; r < n; r++ {
			factor := a[r][col] / a[col][col]
			if factor == 0 {
				continue
			}
			for c := col; c < n; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}

	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < n; c++ {
			sum -= a[r][c] * x[c]
		}
		x[r] = sum / a[r][r]
	}
	return x, nil
}
