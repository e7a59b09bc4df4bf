package sketch

import (
	"strings"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/stretchr/testify/assert"
)

// hasFinding returns true if errs contains a finding of the given severity
// whose message contains substr.
func hasFinding(errs []ValidationError, sev ValidationSeverity, substr string) bool {
	for _, e := range errs {
		if e.Severity == sev && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidate_ValidSketch(t *testing.T) {
	s, pts, lines := buildSquare(t)
	_, _ = s.AddConstraint(Fixed{Point: pts[0]})
	_, _ = s.AddConstraint(Horizontal{Line: lines[0]})
	_, _ = s.AddConstraint(Perpendicular{L1: lines[0], L2: lines[1]})
	c := s.AddCircle(pts[2], 3)
	_, _ = s.AddConstraint(Tangent{E1: lines[1], E2: c})
	_, _ = s.AddConstraint(Distance{E1: pts[0], E2: lines[2], Value: 10})

	errs := Validate(s)
	for _, e := range errs {
		t.Errorf("unexpected validation finding: %s", e)
	}
}

func TestValidate_EmptySketch(t *testing.T) {
	assert.Empty(t, Validate(New()))
}

func TestValidate_DanglingConstraintReference(t *testing.T) {
	s, pts, _ := buildSquare(t)
	_, _ = s.AddConstraint(Coincident{P1: pts[0], P2: pts[1]})
	s.RemoveEntity(pts[1])

	errs := Validate(s)
	assert.True(t, hasFinding(errs, SeverityError, "does not exist"))
	assert.True(t, HasErrors(errs))
	// The line that used pts[1] is also dangling.
	assert.True(t, hasFinding(errs, SeverityError, "missing point"))
}

func TestValidate_WrongKind(t *testing.T) {
	s, pts, lines := buildSquare(t)
	_, _ = s.AddConstraint(Horizontal{Line: pts[0]})
	_, _ = s.AddConstraint(Radius{Curve: lines[0], Value: 2})
	_, _ = s.AddConstraint(Tangent{E1: lines[0], E2: lines[1]})

	errs := Validate(s)
	assert.True(t, hasFinding(errs, SeverityError, "horizontal expects a line, got point"))
	assert.True(t, hasFinding(errs, SeverityError, "radius expects a circle or arc"))
	assert.True(t, hasFinding(errs, SeverityError, "tangent between two lines"))
}

func TestValidate_LineReferencesNonPoint(t *testing.T) {
	s, pts, lines := buildSquare(t)
	s.AddLine(pts[0], lines[0])

	errs := Validate(s)
	assert.True(t, hasFinding(errs, SeverityError, "which is not a point"))
}

func TestValidate_DegenerateGeometry(t *testing.T) {
	s := New()
	a := s.AddPoint(v2.Vec{X: 1, Y: 1})
	b := s.AddPoint(v2.Vec{X: 1, Y: 1})
	s.AddLine(a, b)
	s.AddLine(a, a)
	s.AddCircle(a, 0)
	s.AddArc(a, a, b, -1)

	errs := Validate(s)
	assert.False(t, HasErrors(errs))
	assert.True(t, hasFinding(errs, SeverityWarning, "zero length"))
	assert.True(t, hasFinding(errs, SeverityWarning, "same point"))
	assert.True(t, hasFinding(errs, SeverityWarning, "circle radius must be positive"))
	assert.True(t, hasFinding(errs, SeverityWarning, "arc radius must be positive"))
}

func TestValidate_NegativeValues(t *testing.T) {
	s, pts, lines := buildSquare(t)
	c := s.AddCircle(pts[0], 1)
	_, _ = s.AddConstraint(Distance{E1: pts[0], E2: pts[1], Value: -1})
	_, _ = s.AddConstraint(Length{Line: lines[0], Value: -2})
	_, _ = s.AddConstraint(Diameter{Curve: c, Value: -3})

	errs := Validate(s)
	assert.True(t, hasFinding(errs, SeverityWarning, "distance must not be negative"))
	assert.True(t, hasFinding(errs, SeverityWarning, "length must not be negative"))
	assert.True(t, hasFinding(errs, SeverityWarning, "diameter must not be negative"))
}

func TestValidationErrorString(t *testing.T) {
	id := NamedEntityID("a")
	e := ValidationError{EntityID: id, Message: "boom", Severity: SeverityWarning}
	assert.Equal(t, "[warning] entity "+id.Short()+": boom", e.Error())

	g := ValidationError{Message: "sketch-level", Severity: SeverityError}
	assert.Equal(t, "[error] sketch-level", g.Error())
	assert.Equal(t, "ValidationSeverity(7)", ValidationSeverity(7).String())
}
