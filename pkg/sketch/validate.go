package sketch

import "fmt"

// ValidationSeverity indicates whether a validation finding makes the sketch
// structurally unsound or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // dangling or mistyped reference
	SeverityWarning                           // degenerate geometry, suspicious values
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding. Exactly one of
// EntityID and ConstraintID is set.
type ValidationError struct {
	EntityID     EntityID
	ConstraintID ConstraintID
	Message      string
	Severity     ValidationSeverity
}

func (e ValidationError) Error() string {
	switch {
	case !e.ConstraintID.IsZero():
		return fmt.Sprintf("[%s] constraint %s: %s", e.Severity, e.ConstraintID.Short(), e.Message)
	case !e.EntityID.IsZero():
		return fmt.Sprintf("[%s] entity %s: %s", e.Severity, e.EntityID.Short(), e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
}

// HasErrors reports whether errs contains at least one error-severity finding.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks the sketch for dangling references, references of the
// wrong entity kind, degenerate geometry and out-of-domain dimensional
// values. An empty slice means the sketch is sound. Validate never mutates
// the sketch.
//
// The solver itself tolerates every finding reported here by omitting the
// affected residuals; Validate exists for callers that prefer to reject
// such sketches up front.
func Validate(s *Sketch) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateEntities(s)...)
	errs = append(errs, validateConstraintRefs(s)...)
	errs = append(errs, validateValues(s)...)
	return errs
}

// validateEntities checks that every non-point entity references existing
// points and is not degenerate.
func validateEntities(s *Sketch) []ValidationError {
	var errs []ValidationError
	for _, e := range s.entities {
		for _, ref := range e.References() {
			if _, ok := s.Point(ref); ok {
				continue
			}
			msg := fmt.Sprintf("%s references missing point %s", e.Kind(), ref.Short())
			if _, exists := s.Entity(ref); exists {
				msg = fmt.Sprintf("%s references %s, which is not a point", e.Kind(), s.NameOf(ref))
			}
			errs = append(errs, ValidationError{EntityID: e.EntityID(), Message: msg, Severity: SeverityError})
		}

		switch v := e.(type) {
		case *Line:
			a, okA := s.Point(v.Start)
			b, okB := s.Point(v.End)
			if v.Start == v.End {
				errs = append(errs, ValidationError{
					EntityID: v.ID,
					Message:  "line start and end are the same point",
					Severity: SeverityWarning,
				})
			} else if okA && okB && a.Position.Sub(b.Position).Length() == 0 {
				errs = append(errs, ValidationError{
					EntityID: v.ID,
					Message:  "line has zero length",
					Severity: SeverityWarning,
				})
			}
		case *Circle:
			if v.Radius <= 0 {
				errs = append(errs, ValidationError{
					EntityID: v.ID,
					Message:  fmt.Sprintf("circle radius must be positive, got %g", v.Radius),
					Severity: SeverityWarning,
				})
			}
		case *Arc:
			if v.Radius <= 0 {
				errs = append(errs, ValidationError{
					EntityID: v.ID,
					Message:  fmt.Sprintf("arc radius must be positive, got %g", v.Radius),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}

// refKind describes which entity kinds a constraint slot accepts.
type refKind int

const (
	refPoint refKind = iota
	refLine
	refRound     // circle or arc
	refCurve     // line, circle or arc
	refPointLine // point or line
	refTangent   // line, circle or arc; at least one side round
)

func (k refKind) accepts(e Entity) bool {
	switch k {
	case refPoint:
		return e.Kind() == EntityPoint
	case refLine:
		return e.Kind() == EntityLine
	case refRound:
		return e.Kind() == EntityCircle || e.Kind() == EntityArc
	case refCurve, refTangent:
		return e.Kind() != EntityPoint
	case refPointLine:
		return e.Kind() == EntityPoint || e.Kind() == EntityLine
	}
	return false
}

func (k refKind) String() string {
	switch k {
	case refPoint:
		return "point"
	case refLine:
		return "line"
	case refRound:
		return "circle or arc"
	case refCurve, refTangent:
		return "line, circle or arc"
	case refPointLine:
		return "point or line"
	}
	return "entity"
}

// slotKinds returns the expected kind of each ReferencedEntities slot.
func slotKinds(c Constraint) []refKind {
	switch c.Kind() {
	case KindCoincident, KindHorizontalDistance, KindVerticalDistance:
		return []refKind{refPoint, refPoint}
	case KindHorizontal, KindVertical, KindLength:
		return []refKind{refLine}
	case KindParallel, KindPerpendicular, KindEqualLength, KindAngle:
		return []refKind{refLine, refLine}
	case KindEqualRadius:
		return []refKind{refRound, refRound}
	case KindPointOnCurve:
		return []refKind{refPoint, refCurve}
	case KindMidpoint:
		return []refKind{refPoint, refLine}
	case KindSymmetric:
		return []refKind{refPoint, refPoint, refLine}
	case KindFixed:
		return []refKind{refPoint}
	case KindDistance:
		return []refKind{refPointLine, refPointLine}
	case KindRadius, KindDiameter:
		return []refKind{refRound}
	case KindTangent:
		return []refKind{refTangent, refTangent}
	}
	return nil
}

// validateConstraintRefs checks every constraint reference resolves to an
// entity of the expected kind.
func validateConstraintRefs(s *Sketch) []ValidationError {
	var errs []ValidationError
	for _, c := range s.constraints {
		refs := c.ReferencedEntities()
		kinds := slotKinds(c)
		resolved := make([]Entity, len(refs))
		for i, ref := range refs {
			e, ok := s.Entity(ref)
			if !ok {
				errs = append(errs, ValidationError{
					ConstraintID: c.ConstraintID(),
					Message:      fmt.Sprintf("%s references entity %s, which does not exist", c.Kind(), ref.Short()),
					Severity:     SeverityError,
				})
				continue
			}
			resolved[i] = e
			if i < len(kinds) && !kinds[i].accepts(e) {
				errs = append(errs, ValidationError{
					ConstraintID: c.ConstraintID(),
					Message: fmt.Sprintf("%s expects a %s, got %s %s",
						c.Kind(), kinds[i], e.Kind(), s.NameOf(ref)),
					Severity: SeverityError,
				})
			}
		}
		errs = append(errs, validatePairing(c, resolved)...)
	}
	return errs
}

// validatePairing checks combinations that per-slot kinds cannot express.
func validatePairing(c Constraint, resolved []Entity) []ValidationError {
	if len(resolved) != 2 || resolved[0] == nil || resolved[1] == nil {
		return nil
	}
	a, b := resolved[0].Kind(), resolved[1].Kind()
	switch c.Kind() {
	case KindTangent:
		if a == EntityLine && b == EntityLine {
			return []ValidationError{{
				ConstraintID: c.ConstraintID(),
				Message:      "tangent between two lines is not supported",
				Severity:     SeverityError,
			}}
		}
	case KindDistance:
		if a == EntityLine && b == EntityLine {
			return []ValidationError{{
				ConstraintID: c.ConstraintID(),
				Message:      "distance between two lines is not supported",
				Severity:     SeverityError,
			}}
		}
	}
	return nil
}

// validateValues warns about dimensional targets outside their domain.
func validateValues(s *Sketch) []ValidationError {
	var errs []ValidationError
	warn := func(c Constraint, what string, v float64) {
		errs = append(errs, ValidationError{
			ConstraintID: c.ConstraintID(),
			Message:      fmt.Sprintf("%s must not be negative, got %g", what, v),
			Severity:     SeverityWarning,
		})
	}
	for _, c := range s.constraints {
		switch v := c.(type) {
		case Distance:
			if v.Value < 0 {
				warn(c, "distance", v.Value)
			}
		case Length:
			if v.Value < 0 {
				warn(c, "length", v.Value)
			}
		case Radius:
			if v.Value < 0 {
				warn(c, "radius", v.Value)
			}
		case Diameter:
			if v.Value < 0 {
				warn(c, "diameter", v.Value)
			}
		}
	}
	return errs
}
