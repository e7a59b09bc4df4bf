package solver

import (
	"math"

	"github.com/chazu/sketchsolve/pkg/sketch"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// minAxisLength guards divisions by a line length that has collapsed to zero.
const minAxisLength = 1e-12

// EvaluateResiduals returns the residual vector of every constraint in s at
// the sketch's current point positions. A satisfied sketch has all residuals
// equal to zero.
//
// A constraint whose referenced entities are missing or of the wrong kind
// contributes no rows, so len(result) may be smaller than s.EquationCount().
func EvaluateResiduals(s *sketch.Sketch) []float64 {
	f := make([]float64, 0, s.EquationCount())
	for c := range s.Constraints() {
		f = appendResiduals(f, s, c)
	}
	return f
}

// appendResiduals appends the residual rows of a single constraint.
func appendResiduals(f []float64, s *sketch.Sketch, c sketch.Constraint) []float64 {
	switch c := c.(type) {
	case sketch.Coincident:
		p1, ok1 := point(s, c.P1)
		p2, ok2 := point(s, c.P2)
		if ok1 && ok2 {
			f = append(f, p1.X-p2.X, p1.Y-p2.Y)
		}

	case sketch.Horizontal:
		if a, b, ok := lineEnds(s, c.Line); ok {
			f = append(f, a.Y-b.Y)
		}

	case sketch.Vertical:
		if a, b, ok := lineEnds(s, c.Line); ok {
			f = append(f, a.X-b.X)
		}

	case sketch.Parallel:
		if d1, d2, ok := lineDirs(s, c.L1, c.L2); ok {
			f = append(f, cross(d1, d2))
		}

	case sketch.Perpendicular:
		if d1, d2, ok := lineDirs(s, c.L1, c.L2); ok {
			f = append(f, d1.Dot(d2))
		}

	case sketch.EqualLength:
		if d1, d2, ok := lineDirs(s, c.L1, c.L2); ok {
			f = append(f, d1.Length()-d2.Length())
		}

	case sketch.EqualRadius:
		_, r1, ok1 := round(s, c.C1)
		_, r2, ok2 := round(s, c.C2)
		if ok1 && ok2 {
			f = append(f, r1-r2)
		}

	case sketch.PointOnCurve:
		p, ok := point(s, c.Point)
		if !ok {
			break
		}
		if a, b, ok := lineEnds(s, c.Curve); ok {
			f = append(f, cross(p.Sub(a), b.Sub(a)))
		} else if center, r, ok := round(s, c.Curve); ok {
			f = append(f, p.Sub(center).Length()-r)
		}

	case sketch.Midpoint:
		p, ok := point(s, c.Point)
		a, b, okLine := lineEnds(s, c.Line)
		if ok && okLine {
			mid := a.Add(b).MulScalar(0.5)
			f = append(f, p.X-mid.X, p.Y-mid.Y)
		}

	case sketch.Symmetric:
		p1, ok1 := point(s, c.E1)
		p2, ok2 := point(s, c.E2)
		a, b, okAxis := lineEnds(s, c.Axis)
		if ok1 && ok2 && okAxis {
			axis := b.Sub(a)
			n := math.Max(axis.Length(), minAxisLength)
			mid := p1.Add(p2).MulScalar(0.5)
			f = append(f,
				cross(axis, mid.Sub(a))/n,
				p2.Sub(p1).Dot(axis)/n,
			)
		}

	case sketch.Fixed:
		if p, ok := point(s, c.Point); ok {
			f = append(f, p.X-c.X, p.Y-c.Y)
		}

	case sketch.Distance:
		if d, ok := distance(s, c.E1, c.E2); ok {
			f = append(f, d-c.Value)
		}

	case sketch.HorizontalDistance:
		p1, ok1 := point(s, c.P1)
		p2, ok2 := point(s, c.P2)
		if ok1 && ok2 {
			f = append(f, (p2.X-p1.X)-c.Value)
		}

	case sketch.VerticalDistance:
		p1, ok1 := point(s, c.P1)
		p2, ok2 := point(s, c.P2)
		if ok1 && ok2 {
			f = append(f, (p2.Y-p1.Y)-c.Value)
		}

	case sketch.Angle:
		if d1, d2, ok := lineDirs(s, c.L1, c.L2); ok {
			f = append(f, math.Atan2(d1.Y, d1.X)-math.Atan2(d2.Y, d2.X)-c.Value)
		}

	case sketch.Radius:
		if _, r, ok := round(s, c.Curve); ok {
			f = append(f, r-c.Value)
		}

	case sketch.Diameter:
		if _, r, ok := round(s, c.Curve); ok {
			f = append(f, 2*r-c.Value)
		}

	case sketch.Length:
		if a, b, ok := lineEnds(s, c.Line); ok {
			f = append(f, b.Sub(a).Length()-c.Value)
		}

	case sketch.Tangent:
		if r, ok := tangency(s, c.E1, c.E2); ok {
			f = append(f, r)
		}
	}
	return f
}

// ---------------------------------------------------------------------------
// Entity resolution
// ---------------------------------------------------------------------------

// point resolves id to a point position.
func point(s *sketch.Sketch, id sketch.EntityID) (v2.Vec, bool) {
	p, ok := s.Point(id)
	if !ok {
		return v2.Vec{}, false
	}
	return p.Position, true
}

// lineEnds resolves id to a line and returns its endpoint positions.
func lineEnds(s *sketch.Sketch, id sketch.EntityID) (start, end v2.Vec, ok bool) {
	l, ok := s.Line(id)
	if !ok {
		return v2.Vec{}, v2.Vec{}, false
	}
	start, okS := point(s, l.Start)
	end, okE := point(s, l.End)
	return start, end, okS && okE
}

// lineDirs resolves two lines and returns their end-minus-start directions.
func lineDirs(s *sketch.Sketch, l1, l2 sketch.EntityID) (d1, d2 v2.Vec, ok bool) {
	a1, b1, ok1 := lineEnds(s, l1)
	a2, b2, ok2 := lineEnds(s, l2)
	if !ok1 || !ok2 {
		return v2.Vec{}, v2.Vec{}, false
	}
	return b1.Sub(a1), b2.Sub(a2), true
}

// round resolves id to a circle or arc and returns its center and radius.
func round(s *sketch.Sketch, id sketch.EntityID) (center v2.Vec, radius float64, ok bool) {
	e, ok := s.Entity(id)
	if !ok {
		return v2.Vec{}, 0, false
	}
	cid, r, ok := sketch.CurveRadius(e)
	if !ok {
		return v2.Vec{}, 0, false
	}
	center, ok = point(s, cid)
	return center, r, ok
}

// ---------------------------------------------------------------------------
// Geometry
// ---------------------------------------------------------------------------

// cross is the z component of the 3D cross product of a and b.
func cross(a, b v2.Vec) float64 {
	return a.X*b.Y - a.Y*b.X
}

// distance measures point–point, or point–line distance where the line is
// treated as infinite. Either argument may be the line.
func distance(s *sketch.Sketch, e1, e2 sketch.EntityID) (float64, bool) {
	p1, ok1 := point(s, e1)
	p2, ok2 := point(s, e2)
	switch {
	case ok1 && ok2:
		return p2.Sub(p1).Length(), true
	case ok1:
		return pointLineDistance(s, p1, e2)
	case ok2:
		return pointLineDistance(s, p2, e1)
	}
	return 0, false
}

func pointLineDistance(s *sketch.Sketch, p v2.Vec, line sketch.EntityID) (float64, bool) {
	a, b, ok := lineEnds(s, line)
	if !ok {
		return 0, false
	}
	d := b.Sub(a)
	n := d.Length()
	if n < minAxisLength {
		return p.Sub(a).Length(), true
	}
	return math.Abs(cross(d, p.Sub(a))) / n, true
}

// closestOnSegment returns the point of segment ab closest to p.
func closestOnSegment(p, a, b v2.Vec) v2.Vec {
	d := b.Sub(a)
	l2 := d.Dot(d)
	if l2 < minAxisLength*minAxisLength {
		return a
	}
	t := p.Sub(a).Dot(d) / l2
	t = math.Max(0, math.Min(1, t))
	return a.Add(d.MulScalar(t))
}

// tangency returns the tangency residual for line–round or round–round
// pairs, in either argument order.
func tangency(s *sketch.Sketch, e1, e2 sketch.EntityID) (float64, bool) {
	c1, r1, round1 := round(s, e1)
	c2, r2, round2 := round(s, e2)
	if round1 && round2 {
		return c2.Sub(c1).Length() - (r1 + r2), true
	}

	line, center, r := e1, c2, r2
	if round1 {
		line, center, r = e2, c1, r1
	} else if !round2 {
		return 0, false
	}
	a, b, ok := lineEnds(s, line)
	if !ok {
		return 0, false
	}
	return center.Sub(closestOnSegment(center, a, b)).Length() - r, true
}
