package solver

import (
	"github.com/chazu/sketchsolve/pkg/sketch"
)

// FiniteDifferenceStep is the forward-difference step h. It is sized for
// coordinates in millimetres, well above float rounding noise.
const FiniteDifferenceStep = 1e-5

// BuildJacobian returns the len(f0)×vm.Len() matrix of partial derivatives
// ∂f_i/∂x_j at x, using forward differences. f0 must be the residual vector
// evaluated at x.
//
// Each column clones the sketch, perturbs one variable by
// FiniteDifferenceStep and re-evaluates every residual, so the cost is one
// deep copy and one full evaluation per variable.
//
// The entity set is frozen during a solve, so every perturbed evaluation
// yields the same number of rows as f0. Should a perturbation change how
// many rows resolve, the surplus rows are ignored and missing ones left zero.
func BuildJacobian(s *sketch.Sketch, vm *VariableMap, x, f0 []float64) [][]float64 {
	n := vm.Len()
	jac := make([][]float64, len(f0))
	for i := range jac {
		jac[i] = make([]float64, n)
	}

	for j := 0; j < n; j++ {
		perturbed := s.Clone()
		vm.SetValue(perturbed, j, x[j]+FiniteDifferenceStep)
		fPlus := EvaluateResiduals(perturbed)

		rows := min(len(f0), len(fPlus))
		for i := 0; i < rows; i++ {
			jac[i][j] = (fPlus[i] - f0[i]) / FiniteDifferenceStep
		}
	}
	return jac
}
