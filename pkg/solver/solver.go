package solver

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/chazu/sketchsolve/pkg/sketch"
)

// Solver defaults.
const (
	DefaultTolerance     = 1e-4
	DefaultMaxIterations = 200
	DefaultDamping       = 0.8

	MinDamping = 0.1
	MaxDamping = 1.0
)

// Solver is a damped Newton–Raphson constraint solver. A Solver holds only
// configuration and may be reused across sketches; it is safe for
// concurrent use on distinct sketches.
type Solver struct {
	tolerance     float64
	maxIterations int
	damping       float64
	logger        *slog.Logger
}

// Stats describes how a solve went.
type Stats struct {
	Variables    int     // 2 × point count
	Equations    int     // sum of static equation counts
	Residuals    int     // rows actually evaluated on the last iteration
	Iterations   int     // residual evaluations performed
	ResidualNorm float64 // ‖f‖₂ on the last iteration
}

// New returns a solver with the default tolerance, iteration limit and
// damping, logging through slog.Default().
func New() *Solver {
	return &Solver{
		tolerance:     DefaultTolerance,
		maxIterations: DefaultMaxIterations,
		damping:       DefaultDamping,
	}
}

// WithTolerance returns a copy of the solver that stops once ‖f‖₂ < tol.
func (s *Solver) WithTolerance(tol float64) *Solver {
	c := *s
	c.tolerance = tol
	return &c
}

// WithMaxIterations returns a copy of the solver with the given iteration
// budget.
func (s *Solver) WithMaxIterations(n int) *Solver {
	c := *s
	c.maxIterations = max(n, 0)
	return &c
}

// WithDamping returns a copy of the solver whose Newton steps are scaled by
// d, clamped to [MinDamping, MaxDamping].
func (s *Solver) WithDamping(d float64) *Solver {
	c := *s
	c.damping = math.Max(MinDamping, math.Min(MaxDamping, d))
	return &c
}

// WithLogger returns a copy of the solver that logs through l. A nil logger
// restores slog.Default().
func (s *Solver) WithLogger(l *slog.Logger) *Solver {
	c := *s
	c.logger = l
	return &c
}

// Tolerance returns the convergence threshold on ‖f‖₂.
func (s *Solver) Tolerance() float64 { return s.tolerance }

// MaxIterations returns the iteration budget.
func (s *Solver) MaxIterations() int { return s.maxIterations }

// Damping returns the step scale factor.
func (s *Solver) Damping() float64 { return s.damping }

func (s *Solver) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

// Solve moves the points of sk until every constraint is satisfied, or the
// iteration budget runs out, and classifies the outcome.
func (s *Solver) Solve(sk *sketch.Sketch) Result {
	r, _ := s.SolveWithStats(sk)
	return r
}

// SolveWithStats is Solve, also reporting iteration statistics.
//
// Degrees of freedom are computed from the static equation counts of the
// constraints, so a constraint whose references no longer resolve still
// counts against the DOF even though it contributes no residual rows.
func (s *Solver) SolveWithStats(sk *sketch.Sketch) (Result, Stats) {
	log := s.log()
	vm := BuildVariableMap(sk)
	stats := Stats{Variables: vm.Len(), Equations: sk.EquationCount()}

	if stats.Variables == 0 {
		return FullyConstrained{}, stats
	}
	dof := stats.Variables - stats.Equations
	if stats.Equations == 0 {
		return UnderConstrained{DOF: stats.Variables}, stats
	}

	x := vm.Values(sk)
	for iter := 0; iter < s.maxIterations; iter++ {
		vm.SetValues(sk, x)
		f := EvaluateResiduals(sk)
		norm := norm2(f)
		stats.Iterations = iter + 1
		stats.Residuals = len(f)
		stats.ResidualNorm = norm

		log.Debug("solver iteration",
			slog.Int("iteration", iter),
			slog.Float64("residual_norm", norm),
			slog.Int("residuals", len(f)),
		)

		if norm < s.tolerance {
			var r Result = FullyConstrained{}
			if dof > 0 {
				r = UnderConstrained{DOF: dof}
			}
			log.Debug("solver converged",
				slog.Int("iterations", stats.Iterations),
				slog.Float64("residual_norm", norm),
				slog.String("result", r.String()),
			)
			return r, stats
		}

		jac := BuildJacobian(sk, vm, x, f)
		dx, err := SolveLeastSquares(jac, f, vm.Len())
		if err != nil {
			reason := fmt.Sprintf("singular Jacobian at iteration %d", iter)
			if !errors.Is(err, ErrSingular) {
				reason = fmt.Sprintf("linear solve failed at iteration %d: %v", iter, err)
			}
			log.Warn("solver failed", slog.String("reason", reason))
			return Failed{Reason: reason}, stats
		}

		for i := range x {
			x[i] += s.damping * dx[i]
		}
	}

	reason := fmt.Sprintf("failed to converge after %d iterations", s.maxIterations)
	log.Warn("solver failed",
		slog.String("reason", reason),
		slog.Float64("residual_norm", stats.ResidualNorm),
	)
	return Failed{Reason: reason}, stats
}

// norm2 is the Euclidean norm of v.
func norm2(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
