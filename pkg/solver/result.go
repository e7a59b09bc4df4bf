package solver

import (
	"fmt"
	"strings"

	"github.com/chazu/sketchsolve/pkg/sketch"
)

// Result is the outcome of a solve. It is one of FullyConstrained,
// UnderConstrained, OverConstrained or Failed.
type Result interface {
	fmt.Stringer
	result() // marker method restricting implementations to this package
}

// FullyConstrained means the residuals converged and the constraint
// equations leave no degrees of freedom.
type FullyConstrained struct{}

func (FullyConstrained) result()        {}
func (FullyConstrained) String() string { return "fully constrained" }

// UnderConstrained means the residuals converged but DOF degrees of freedom
// remain. It is informational, not an error.
type UnderConstrained struct {
	DOF int
}

func (UnderConstrained) result() {}
func (r UnderConstrained) String() string {
	return fmt.Sprintf("under-constrained (%d DOF)", r.DOF)
}

// OverConstrained names constraints found to conflict. The Newton driver
// does not produce it: converged systems with more equations than variables
// are reported as FullyConstrained.
type OverConstrained struct {
	Conflicts []sketch.ConstraintID
}

func (OverConstrained) result() {}
func (r OverConstrained) String() string {
	ids := make([]string, len(r.Conflicts))
	for i, id := range r.Conflicts {
		ids[i] = id.Short()
	}
	return fmt.Sprintf("over-constrained (conflicts: %s)", strings.Join(ids, ", "))
}

// Failed means the solve did not converge. The sketch is left at the last
// attempted iterate.
type Failed struct {
	Reason string
}

func (Failed) result()          {}
func (r Failed) String() string { return "failed: " + r.Reason }

// Converged reports whether r is a successful outcome.
func Converged(r Result) bool {
	switch r.(type) {
	case FullyConstrained, UnderConstrained:
		return true
	}
	return false
}
