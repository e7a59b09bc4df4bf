// Package solver resolves a sketch's constraints into point coordinates.
//
// The solver is a damped Newton–Raphson iteration over the flat vector of
// point coordinates. Each iteration evaluates one residual per constraint
// equation, differentiates the residuals numerically by forward
// differences, and takes a Tikhonov-regularized least-squares step:
//
//	(JᵗJ + λI)·dx = Jᵗ·(−f)
//
// The regularization keeps the normal equations solvable for non-square and
// rank-deficient systems, so under-constrained sketches converge to a
// nearby solution instead of failing.
//
// Solving is synchronous and single-threaded. The sketch is mutated in place
// once per iteration and is left at the last iterate, converged or not.
package solver
