package solver

import (
	"testing"

	"github.com/chazu/sketchsolve/pkg/sketch"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/stretchr/testify/require"
)

// fixture wraps a sketch with shorthand constructors for tests.
type fixture struct {
	t *testing.T
	s *sketch.Sketch
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, s: sketch.New()}
}

func (f *fixture) point(x, y float64) sketch.EntityID {
	return f.s.AddPoint(v2.Vec{X: x, Y: y})
}

func (f *fixture) line(x1, y1, x2, y2 float64) sketch.EntityID {
	return f.s.AddLine(f.point(x1, y1), f.point(x2, y2))
}

func (f *fixture) circle(cx, cy, r float64) sketch.EntityID {
	return f.s.AddCircle(f.point(cx, cy), r)
}

func (f *fixture) constrain(c sketch.Constraint) {
	f.t.Helper()
	_, err := f.s.AddConstraint(c)
	require.NoError(f.t, err)
}

func (f *fixture) pos(id sketch.EntityID) v2.Vec {
	f.t.Helper()
	p, ok := f.s.Point(id)
	require.True(f.t, ok, "point %s missing", id.Short())
	return p.Position
}

func (f *fixture) lineEnds(id sketch.EntityID) (v2.Vec, v2.Vec) {
	f.t.Helper()
	l, ok := f.s.Line(id)
	require.True(f.t, ok)
	return f.pos(l.Start), f.pos(l.End)
}
