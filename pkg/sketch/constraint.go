package sketch

// ConstraintKind enumerates the geometric and dimensional constraint types.
type ConstraintKind int

const (
	KindCoincident ConstraintKind = iota
	KindHorizontal
	KindVertical
	KindParallel
	KindPerpendicular
	KindEqualLength
	KindEqualRadius
	KindPointOnCurve
	KindMidpoint
	KindSymmetric
	KindFixed
	KindDistance
	KindHorizontalDistance
	KindVerticalDistance
	KindAngle
	KindRadius
	KindDiameter
	KindLength
	KindTangent
)

var constraintKindNames = [...]string{
	KindCoincident:         "coincident",
	KindHorizontal:         "horizontal",
	KindVertical:           "vertical",
	KindParallel:           "parallel",
	KindPerpendicular:      "perpendicular",
	KindEqualLength:        "equal-length",
	KindEqualRadius:        "equal-radius",
	KindPointOnCurve:       "point-on",
	KindMidpoint:           "midpoint",
	KindSymmetric:          "symmetric",
	KindFixed:              "fixed",
	KindDistance:           "distance",
	KindHorizontalDistance: "horizontal-distance",
	KindVerticalDistance:   "vertical-distance",
	KindAngle:              "angle",
	KindRadius:             "radius",
	KindDiameter:           "diameter",
	KindLength:             "length",
	KindTangent:            "tangent",
}

func (k ConstraintKind) String() string {
	if k >= 0 && int(k) < len(constraintKindNames) {
		return constraintKindNames[k]
	}
	return "unknown"
}

// IsDimensional reports whether the kind carries a target value.
func (k ConstraintKind) IsDimensional() bool {
	switch k {
	case KindFixed, KindDistance, KindHorizontalDistance, KindVerticalDistance,
		KindAngle, KindRadius, KindDiameter, KindLength:
		return true
	}
	return false
}

// Constraint is the closed set of sketch constraints. The unexported
// withID method restricts implementations to this package.
type Constraint interface {
	ConstraintID() ConstraintID
	Kind() ConstraintKind
	// EquationCount is the number of residual rows the constraint
	// contributes when all of its references resolve. It is a property of
	// the kind alone.
	EquationCount() int
	ReferencedEntities() []EntityID
	withID(ConstraintID) Constraint
}

// WithID returns a copy of c carrying id. Callers that need reproducible
// constraint ids stamp them with WithID before AddConstraint.
func WithID(c Constraint, id ConstraintID) Constraint {
	return c.withID(id)
}

// Coincident forces two points onto the same position.
type Coincident struct {
	ID     ConstraintID
	P1, P2 EntityID
}

func (c Coincident) ConstraintID() ConstraintID { return c.ID }
func (c Coincident) Kind() ConstraintKind { return KindCoincident }
func (c Coincident) EquationCount() int { return 2 }
func (c Coincident) ReferencedEntities() []EntityID { return []EntityID{c.P1, c.P2} }
func (c Coincident) withID(id ConstraintID) Constraint { c.ID = id; return c }

// Horizontal makes a line parallel to the X axis.
type Horizontal struct {
	ID   ConstraintID
	Line EntityID
}

func (c Horizontal) ConstraintID() ConstraintID { return c.ID }
func (c Horizontal) Kind() ConstraintKind { return KindHorizontal }
func (c Horizontal) EquationCount() int { return 1 }
func (c Horizontal) ReferencedEntities() []EntityID { return []EntityID{c.Line} }
func (c Horizontal) withID(id ConstraintID) Constraint { c.ID = id; return c }

// Vertical makes a line parallel to the Y axis.
type Vertical struct {
	ID   ConstraintID
	Line EntityID
}

func (c Vertical) ConstraintID() ConstraintID { return c.ID }
func (c Vertical) Kind() ConstraintKind { return KindVertical }
func (c Vertical) EquationCount() int { return 1 }
func (c Vertical) ReferencedEntities() []EntityID { return []EntityID{c.Line} }
func (c Vertical) withID(id ConstraintID) Constraint { c.ID = id; return c }

// Parallel makes two lines parallel.
type Parallel struct {
	ID     ConstraintID
	L1, L2 EntityID
}

func (c Parallel) ConstraintID() ConstraintID { return c.ID }
func (c Parallel) Kind() ConstraintKind { return KindParallel }
func (c Parallel) EquationCount() int { return 1 }
func (c Parallel) ReferencedEntities() []EntityID { return []EntityID{c.L1, c.L2} }
func (c Parallel) withID(id ConstraintID) Constraint { c.ID = id; return c }

// Perpendicular makes two lines meet at a right angle.
type Perpendicular struct {
	ID     ConstraintID
	L1, L2 EntityID
}

func (c Perpendicular) ConstraintID() ConstraintID { return c.ID }
func (c Perpendicular) Kind() ConstraintKind { return KindPerpendicular }
func (c Perpendicular) EquationCount() int { return 1 }
func (c Perpendicular) ReferencedEntities() []EntityID { return []EntityID{c.L1, c.L2} }
func (c Perpendicular) withID(id ConstraintID) Constraint { c.ID = id; return c }

// EqualLength gives two lines the same length.
type EqualLength struct {
	ID     ConstraintID
	L1, L2 EntityID
}

func (c EqualLength) ConstraintID() ConstraintID { return c.ID }
func (c EqualLength) Kind() ConstraintKind { return KindEqualLength }
func (c EqualLength) EquationCount() int { return 1 }
func (c EqualLength) ReferencedEntities() []EntityID { return []EntityID{c.L1, c.L2} }
func (c EqualLength) withID(id ConstraintID) Constraint { c.ID = id; return c }

// EqualRadius gives two circles or arcs the same radius.
type EqualRadius struct {
	ID     ConstraintID
	C1, C2 EntityID
}

func (c EqualRadius) ConstraintID() ConstraintID { return c.ID }
func (c EqualRadius) Kind() ConstraintKind { return KindEqualRadius }
func (c EqualRadius) EquationCount() int { return 1 }
func (c EqualRadius) ReferencedEntities() []EntityID { return []EntityID{c.C1, c.C2} }
func (c EqualRadius) withID(id ConstraintID) Constraint { c.ID = id; return c }

// PointOnCurve places a point on a line (collinear with it) or on the
// perimeter of a circle or arc.
type PointOnCurve struct {
	ID    ConstraintID
	Point EntityID
	Curve EntityID
}

func (c PointOnCurve) ConstraintID() ConstraintID { return c.ID }
func (c PointOnCurve) Kind() ConstraintKind { return KindPointOnCurve }
func (c PointOnCurve) EquationCount() int { return 1 }
func (c PointOnCurve) ReferencedEntities() []EntityID { return []EntityID{c.Point, c.Curve} }
func (c PointOnCurve) withID(id ConstraintID) Constraint { c.ID = id; return c }

// Midpoint places a point at the midpoint of a line.
type Midpoint struct {
	ID    ConstraintID
	Point EntityID
	Line  EntityID
}

func (c Midpoint) ConstraintID() ConstraintID { return c.ID }
func (c Midpoint) Kind() ConstraintKind { return KindMidpoint }
func (c Midpoint) EquationCount() int { return 2 }
func (c Midpoint) ReferencedEntities() []EntityID { return []EntityID{c.Point, c.Line} }
func (c Midpoint) withID(id ConstraintID) Constraint { c.ID = id; return c }

// Symmetric mirrors two points across an axis line.
type Symmetric struct {
	ID     ConstraintID
	E1, E2 EntityID
	Axis   EntityID
}

func (c Symmetric) ConstraintID() ConstraintID { return c.ID }
func (c Symmetric) Kind() ConstraintKind { return KindSymmetric }
func (c Symmetric) EquationCount() int { return 2 }
func (c Symmetric) ReferencedEntities() []EntityID { return []EntityID{c.E1, c.E2, c.Axis} }
func (c Symmetric) withID(id ConstraintID) Constraint { c.ID = id; return c }

// Fixed pins a point to absolute coordinates.
type Fixed struct {
	ID    ConstraintID
	Point EntityID
	X, Y  float64
}

func (c Fixed) ConstraintID() ConstraintID { return c.ID }
func (c Fixed) Kind() ConstraintKind { return KindFixed }
func (c Fixed) EquationCount() int { return 2 }
func (c Fixed) ReferencedEntities() []EntityID { return []EntityID{c.Point} }
func (c Fixed) withID(id ConstraintID) Constraint { c.ID = id; return c }

// Distance sets the distance between two points, or between a point and
// the infinite extension of a line.
type Distance struct {
	ID     ConstraintID
	E1, E2 EntityID
	Value  float64
}

func (c Distance) ConstraintID() ConstraintID { return c.ID }
func (c Distance) Kind() ConstraintKind { return KindDistance }
func (c Distance) EquationCount() int { return 1 }
func (c Distance) ReferencedEntities() []EntityID { return []EntityID{c.E1, c.E2} }
func (c Distance) withID(id ConstraintID) Constraint { c.ID = id; return c }

// HorizontalDistance sets the signed X offset from P1 to P2.
type HorizontalDistance struct {
	ID     ConstraintID
	P1, P2 EntityID
	Value  float64
}

func (c HorizontalDistance) ConstraintID() ConstraintID { return c.ID }
func (c HorizontalDistance) Kind() ConstraintKind { return KindHorizontalDistance }
func (c HorizontalDistance) EquationCount() int { return 1 }
func (c HorizontalDistance) ReferencedEntities() []EntityID { return []EntityID{c.P1, c.P2} }
func (c HorizontalDistance) withID(id ConstraintID) Constraint { c.ID = id; return c }

// VerticalDistance sets the signed Y offset from P1 to P2.
type VerticalDistance struct {
	ID     ConstraintID
	P1, P2 EntityID
	Value  float64
}

func (c VerticalDistance) ConstraintID() ConstraintID { return c.ID }
func (c VerticalDistance) Kind() ConstraintKind { return KindVerticalDistance }
func (c VerticalDistance) EquationCount() int { return 1 }
func (c VerticalDistance) ReferencedEntities() []EntityID { return []EntityID{c.P1, c.P2} }
func (c VerticalDistance) withID(id ConstraintID) Constraint { c.ID = id; return c }

// Angle sets the directed angle from L2 to L1, in radians.
type Angle struct {
	ID     ConstraintID
	L1, L2 EntityID
	Value  float64
}

func (c Angle) ConstraintID() ConstraintID { return c.ID }
func (c Angle) Kind() ConstraintKind { return KindAngle }
func (c Angle) EquationCount() int { return 1 }
func (c Angle) ReferencedEntities() []EntityID { return []EntityID{c.L1, c.L2} }
func (c Angle) withID(id ConstraintID) Constraint { c.ID = id; return c }

// Radius sets the radius of a circle or arc.
type Radius struct {
	ID    ConstraintID
	Curve EntityID
	Value float64
}

func (c Radius) ConstraintID() ConstraintID { return c.ID }
func (c Radius) Kind() ConstraintKind { return KindRadius }
func (c Radius) EquationCount() int { return 1 }
func (c Radius) ReferencedEntities() []EntityID { return []EntityID{c.Curve} }
func (c Radius) withID(id ConstraintID) Constraint { c.ID = id; return c }

// Diameter sets the diameter of a circle or arc.
type Diameter struct {
	ID    ConstraintID
	Curve EntityID
	Value float64
}

func (c Diameter) ConstraintID() ConstraintID { return c.ID }
func (c Diameter) Kind() ConstraintKind { return KindDiameter }
func (c Diameter) EquationCount() int { return 1 }
func (c Diameter) ReferencedEntities() []EntityID { return []EntityID{c.Curve} }
func (c Diameter) withID(id ConstraintID) Constraint { c.ID = id; return c }

// Length sets the length of a line.
type Length struct {
	ID    ConstraintID
	Line  EntityID
	Value float64
}

func (c Length) ConstraintID() ConstraintID { return c.ID }
func (c Length) Kind() ConstraintKind { return KindLength }
func (c Length) EquationCount() int { return 1 }
func (c Length) ReferencedEntities() []EntityID { return []EntityID{c.Line} }
func (c Length) withID(id ConstraintID) Constraint { c.ID = id; return c }

// Tangent makes a line touch a circle or arc, or two circles touch
// externally. Internal tangency is not modeled.
type Tangent struct {
	ID     ConstraintID
	E1, E2 EntityID
}

func (c Tangent) ConstraintID() ConstraintID { return c.ID }
func (c Tangent) Kind() ConstraintKind { return KindTangent }
func (c Tangent) EquationCount() int { return 1 }
func (c Tangent) ReferencedEntities() []EntityID { return []EntityID{c.E1, c.E2} }
func (c Tangent) withID(id ConstraintID) Constraint { c.ID = id; return c }

// EquationCount sums the static equation counts of every constraint.
func (s *Sketch) EquationCount() int {
	n := 0
	for _, c := range s.constraints {
		n += c.EquationCount()
	}
	return n
}
