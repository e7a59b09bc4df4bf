package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/sketchsolve/pkg/sketch"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// ErrUnresolved is returned when an entity references a point that is
// missing from the sketch.
var ErrUnresolved = errors.New("export: unresolved point reference")

// DefaultSegments is the number of segments used for a full circle.
const DefaultSegments = 64

// sweepEpsilon absorbs rounding when an arc spans an exact share of a circle.
const sweepEpsilon = 1e-9

// Options controls tessellation and drawing.
type Options struct {
	// Segments is the number of segments for a full circle. Arcs use a
	// proportional share, with at least one segment.
	Segments int
	// MarkSize is the half-width of the cross drawn at each point entity.
	// Zero draws no point marks.
	MarkSize float64
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{Segments: DefaultSegments, MarkSize: 0.5}
}

func (o Options) segments() int {
	if o.Segments < 3 {
		return DefaultSegments
	}
	return o.Segments
}

// Tessellate produces one polyline per entity of s, in insertion order.
// Point entities yield a single-point polyline. The sketch is never mutated.
func Tessellate(s *sketch.Sketch, opts Options) ([]*Polyline, error) {
	if s == nil {
		return nil, nil
	}

	var lines []*Polyline
	for e := range s.Entities() {
		pl, err := Flatten(s, e, opts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: %s %s: %w", e.Kind(), s.NameOf(e.EntityID()), err)
		}
		lines = append(lines, pl)
	}
	return lines, nil
}

// Flatten flattens a single entity at the sketch's current point positions.
func Flatten(s *sketch.Sketch, e sketch.Entity, opts Options) (*Polyline, error) {
	var pts []v2.Vec
	closed := false

	switch v := e.(type) {
	case *sketch.Point:
		pts = []v2.Vec{v.Position}

	case *sketch.Line:
		a, b, err := positions2(s, v.Start, v.End)
		if err != nil {
			return nil, err
		}
		pts = []v2.Vec{a, b}

	case *sketch.Circle:
		c, err := position(s, v.Center)
		if err != nil {
			return nil, err
		}
		pts = arcPoints(c, v.Radius, 0, 2*math.Pi, opts.segments(), false)
		closed = true

	case *sketch.Arc:
		c, err := position(s, v.Center)
		if err != nil {
			return nil, err
		}
		a, b, err := positions2(s, v.Start, v.End)
		if err != nil {
			return nil, err
		}
		start := math.Atan2(a.Y-c.Y, a.X-c.X)
		sweep := math.Atan2(b.Y-c.Y, b.X-c.X) - start
		if sweep <= 0 {
			sweep += 2 * math.Pi
		}
		n := int(math.Ceil(float64(opts.segments())*sweep/(2*math.Pi) - sweepEpsilon))
		pts = arcPoints(c, v.Radius, start, sweep, max(n, 1), true)

	default:
		return nil, fmt.Errorf("unsupported entity type %T", e)
	}

	return &Polyline{Points: pts, Closed: closed, Entity: s.NameOf(e.EntityID())}, nil
}

// arcPoints samples n segments of a circle counter-clockwise from start
// through sweep radians. With inclusive, the end point is emitted too.
func arcPoints(c v2.Vec, r, start, sweep float64, n int, inclusive bool) []v2.Vec {
	count := n
	if inclusive {
		count++
	}
	pts := make([]v2.Vec, count)
	for i := range pts {
		theta := start + sweep*float64(i)/float64(n)
		pts[i] = v2.Vec{X: c.X + r*math.Cos(theta), Y: c.Y + r*math.Sin(theta)}
	}
	return pts
}

func position(s *sketch.Sketch, id sketch.EntityID) (v2.Vec, error) {
	p, ok := s.Point(id)
	if !ok {
		return v2.Vec{}, fmt.Errorf("%w: %s", ErrUnresolved, s.NameOf(id))
	}
	return p.Position, nil
}

func positions2(s *sketch.Sketch, a, b sketch.EntityID) (v2.Vec, v2.Vec, error) {
	pa, err := position(s, a)
	if err != nil {
		return v2.Vec{}, v2.Vec{}, err
	}
	pb, err := position(s, b)
	if err != nil {
		return v2.Vec{}, v2.Vec{}, err
	}
	return pa, pb, nil
}
