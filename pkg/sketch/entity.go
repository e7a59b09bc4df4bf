package sketch

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// EntityKind enumerates the geometric entity types in a sketch.
type EntityKind int

const (
	EntityPoint  EntityKind = iota // 2D position, the only solver variable carrier
	EntityLine                     // segment between two points
	EntityCircle                   // center point + radius
	EntityArc                      // center, start, end points + radius
)

func (k EntityKind) String() string {
	switch k {
	case EntityPoint:
		return "point"
	case EntityLine:
		return "line"
	case EntityCircle:
		return "circle"
	case EntityArc:
		return "arc"
	default:
		return "unknown"
	}
}

// Entity is the closed set of sketch geometry. The unexported clone method
// restricts implementations to this package.
type Entity interface {
	EntityID() EntityID
	Kind() EntityKind
	// References returns the point entities this entity is defined by.
	References() []EntityID
	clone() Entity
}

// ---------------------------------------------------------------------------
// Point
// ---------------------------------------------------------------------------

// Point is a 2D position. The solver moves points by rewriting Position.
type Point struct {
	ID       EntityID
	Position v2.Vec
}

func (p *Point) EntityID() EntityID { return p.ID }
func (p *Point) Kind() EntityKind { return EntityPoint }
func (p *Point) References() []EntityID { return nil }
func (p *Point) clone() Entity { c := *p; return &c }

// ---------------------------------------------------------------------------
// Line
// ---------------------------------------------------------------------------

// Line is a segment from Start to End. Both must be point entities.
type Line struct {
	ID    EntityID
	Start EntityID
	End   EntityID
}

func (l *Line) EntityID() EntityID { return l.ID }
func (l *Line) Kind() EntityKind { return EntityLine }
func (l *Line) References() []EntityID { return []EntityID{l.Start, l.End} }
func (l *Line) clone() Entity { c := *l; return &c }

// ---------------------------------------------------------------------------
// Circle
// ---------------------------------------------------------------------------

// Circle is a full circle. Radius is read by constraints but is never a
// solver variable.
type Circle struct {
	ID     EntityID
	Center EntityID
	Radius float64
}

func (c *Circle) EntityID() EntityID { return c.ID }
func (c *Circle) Kind() EntityKind { return EntityCircle }
func (c *Circle) References() []EntityID { return []EntityID{c.Center} }
func (c *Circle) clone() Entity { cc := *c; return &cc }

// ---------------------------------------------------------------------------
// Arc
// ---------------------------------------------------------------------------

// Arc is a counter-clockwise circular arc from Start to End around Center.
type Arc struct {
	ID     EntityID
	Center EntityID
	Start  EntityID
	End    EntityID
	Radius float64
}

func (a *Arc) EntityID() EntityID { return a.ID }
func (a *Arc) Kind() EntityKind { return EntityArc }
func (a *Arc) References() []EntityID { return []EntityID{a.Center, a.Start, a.End} }
func (a *Arc) clone() Entity { c := *a; return &c }

// CurveRadius returns the radius of a circle or arc entity.
func CurveRadius(e Entity) (center EntityID, radius float64, ok bool) {
	switch c := e.(type) {
	case *Circle:
		return c.Center, c.Radius, true
	case *Arc:
		return c.Center, c.Radius, true
	}
	return ZeroID, 0, false
}
