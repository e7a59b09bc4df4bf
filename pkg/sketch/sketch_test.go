package sketch

import (
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSquare creates four points joined by four lines, with no constraints.
func buildSquare(t *testing.T) (*Sketch, []EntityID, []EntityID) {
	t.Helper()
	s := New()
	pts := []EntityID{
		s.AddPoint(v2.Vec{X: 0, Y: 0}),
		s.AddPoint(v2.Vec{X: 10, Y: 0}),
		s.AddPoint(v2.Vec{X: 10, Y: 10}),
		s.AddPoint(v2.Vec{X: 0, Y: 10}),
	}
	lines := make([]EntityID, 4)
	for i := range pts {
		lines[i] = s.AddLine(pts[i], pts[(i+1)%4])
	}
	return s, pts, lines
}

func TestNewSketch(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.EntityCount())
	assert.Equal(t, 0, s.ConstraintCount())
	assert.Equal(t, 0, s.PointCount())
	assert.Equal(t, 0, s.EquationCount())
}

func TestAddEntitiesPreservesOrder(t *testing.T) {
	s, pts, lines := buildSquare(t)

	require.Equal(t, 8, s.EntityCount())
	assert.Equal(t, 4, s.PointCount())

	var got []EntityID
	for e := range s.Entities() {
		got = append(got, e.EntityID())
	}
	want := append(append([]EntityID{}, pts...), lines...)
	assert.Equal(t, want, got)
}

func TestEntityLookup(t *testing.T) {
	s, pts, lines := buildSquare(t)

	p, ok := s.Point(pts[2])
	require.True(t, ok)
	assert.Equal(t, v2.Vec{X: 10, Y: 10}, p.Position)

	_, ok = s.Point(lines[0])
	assert.False(t, ok, "a line is not a point")

	l, ok := s.Line(lines[0])
	require.True(t, ok)
	assert.Equal(t, pts[0], l.Start)
	assert.Equal(t, pts[1], l.End)

	_, ok = s.Entity(NewEntityID())
	assert.False(t, ok)
}

func TestAddEntityDuplicate(t *testing.T) {
	s := New()
	id := NamedEntityID("a")
	require.NoError(t, s.AddEntity(&Point{ID: id}))
	err := s.AddEntity(&Point{ID: id})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.ErrorIs(t, s.AddEntity(nil), ErrNilEntity)
}

func TestRemoveEntityReindexes(t *testing.T) {
	s, pts, _ := buildSquare(t)
	s.SetName(pts[1], "b")

	require.True(t, s.RemoveEntity(pts[1]))
	assert.False(t, s.RemoveEntity(pts[1]), "second removal must report false")

	assert.Equal(t, 3, s.PointCount())
	_, ok := s.Lookup("b")
	assert.False(t, ok, "name of removed entity must be released")

	// Remaining entities are still reachable through the index.
	for _, id := range []EntityID{pts[0], pts[2], pts[3]} {
		_, ok := s.Point(id)
		assert.True(t, ok)
	}
}

func TestAddConstraintAssignsID(t *testing.T) {
	s, _, lines := buildSquare(t)

	id, err := s.AddConstraint(Horizontal{Line: lines[0]})
	require.NoError(t, err)
	assert.False(t, id.IsZero())

	c, ok := s.Constraint(id)
	require.True(t, ok)
	assert.Equal(t, id, c.ConstraintID())
	assert.Equal(t, KindHorizontal, c.Kind())

	_, err = s.AddConstraint(Horizontal{ID: id, Line: lines[0]})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestRemoveConstraint(t *testing.T) {
	s, pts, lines := buildSquare(t)
	h, _ := s.AddConstraint(Horizontal{Line: lines[0]})
	f, _ := s.AddConstraint(Fixed{Point: pts[0]})
	v, _ := s.AddConstraint(Vertical{Line: lines[1]})

	require.True(t, s.RemoveConstraint(f))
	assert.Equal(t, 2, s.ConstraintCount())

	var kinds []ConstraintKind
	for c := range s.Constraints() {
		kinds = append(kinds, c.Kind())
	}
	assert.Equal(t, []ConstraintKind{KindHorizontal, KindVertical}, kinds)

	_, ok := s.Constraint(v)
	assert.True(t, ok)
	_, ok = s.Constraint(h)
	assert.True(t, ok)
}

func TestEquationCount(t *testing.T) {
	tests := []struct {
		c    Constraint
		want int
	}{
		{Coincident{}, 2},
		{Horizontal{}, 1},
		{Vertical{}, 1},
		{Parallel{}, 1},
		{Perpendicular{}, 1},
		{EqualLength{}, 1},
		{EqualRadius{}, 1},
		{PointOnCurve{}, 1},
		{Midpoint{}, 2},
		{Symmetric{}, 2},
		{Fixed{}, 2},
		{Distance{}, 1},
		{HorizontalDistance{}, 1},
		{VerticalDistance{}, 1},
		{Angle{}, 1},
		{Radius{}, 1},
		{Diameter{}, 1},
		{Length{}, 1},
		{Tangent{}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.c.Kind().String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.EquationCount())
		})
	}
}

func TestSketchEquationCountSums(t *testing.T) {
	s, pts, lines := buildSquare(t)
	_, _ = s.AddConstraint(Fixed{Point: pts[0]})
	_, _ = s.AddConstraint(Horizontal{Line: lines[0]})
	_, _ = s.AddConstraint(Coincident{P1: pts[1], P2: pts[2]})
	assert.Equal(t, 5, s.EquationCount())
}

func TestConstraintKindString(t *testing.T) {
	assert.Equal(t, "equal-length", KindEqualLength.String())
	assert.Equal(t, "point-on", KindPointOnCurve.String())
	assert.Equal(t, "unknown", ConstraintKind(99).String())
	assert.True(t, KindDistance.IsDimensional())
	assert.False(t, KindParallel.IsDimensional())
}

func TestCloneIsDeep(t *testing.T) {
	s, pts, _ := buildSquare(t)
	s.SetName(pts[0], "origin")
	_, _ = s.AddConstraint(Fixed{Point: pts[0]})

	c := s.Clone()
	cp, ok := c.Point(pts[0])
	require.True(t, ok)
	cp.Position = v2.Vec{X: 99, Y: 99}

	orig, _ := s.Point(pts[0])
	assert.Equal(t, v2.Vec{X: 0, Y: 0}, orig.Position, "mutating the clone must not touch the original")

	id, ok := c.Lookup("origin")
	require.True(t, ok)
	assert.Equal(t, pts[0], id)
	assert.Equal(t, s.ConstraintCount(), c.ConstraintCount())
	assert.Equal(t, s.EntityCount(), c.EntityCount())
}

func TestNames(t *testing.T) {
	s := New()
	a := s.AddPoint(v2.Vec{})
	b := s.AddPoint(v2.Vec{})

	s.SetName(a, "p")
	assert.Equal(t, "p", s.NameOf(a))
	assert.Equal(t, b.Short(), s.NameOf(b))

	// Reassigning the name moves it.
	s.SetName(b, "p")
	id, _ := s.Lookup("p")
	assert.Equal(t, b, id)
	assert.Equal(t, a.Short(), s.NameOf(a))
}

func TestNamedIDsAreDeterministic(t *testing.T) {
	assert.Equal(t, NamedEntityID("front"), NamedEntityID("front"))
	assert.NotEqual(t, NamedEntityID("front"), NamedEntityID("back"))
	assert.Equal(t, SequentialConstraintID("box.lisp", 3), SequentialConstraintID("box.lisp", 3))
	assert.NotEqual(t, SequentialConstraintID("box.lisp", 3), SequentialConstraintID("box.lisp", 4))
	assert.Len(t, NamedEntityID("x").Short(), 8)
	assert.True(t, ZeroID.IsZero())
}

func TestSequentialEntityIDs(t *testing.T) {
	assert.Equal(t, SequentialEntityID("sketch", 1), SequentialEntityID("sketch", 1))
	assert.NotEqual(t, SequentialEntityID("sketch", 1), SequentialEntityID("sketch", 2))
	// Anonymous ids live apart from user names, whatever the name.
	assert.NotEqual(t, NamedEntityID("sketch#1"), SequentialEntityID("sketch", 1))
	assert.NotEqual(t, NamedEntityID("_anon_1"), SequentialEntityID("sketch", 1))
}

func TestConstraintReferencesAndEquations(t *testing.T) {
	a, b, c := NamedEntityID("a"), NamedEntityID("b"), NamedEntityID("c")
	tests := []struct {
		c         Constraint
		refs      []EntityID
		equations int
	}{
		{Coincident{P1: a, P2: b}, []EntityID{a, b}, 2},
		{Horizontal{Line: a}, []EntityID{a}, 1},
		{Vertical{Line: a}, []EntityID{a}, 1},
		{Parallel{L1: a, L2: b}, []EntityID{a, b}, 1},
		{Perpendicular{L1: a, L2: b}, []EntityID{a, b}, 1},
		{EqualLength{L1: a, L2: b}, []EntityID{a, b}, 1},
		{EqualRadius{C1: a, C2: b}, []EntityID{a, b}, 1},
		{PointOnCurve{Point: a, Curve: b}, []EntityID{a, b}, 1},
		{Midpoint{Point: a, Line: b}, []EntityID{a, b}, 2},
		{Symmetric{E1: a, E2: b, Axis: c}, []EntityID{a, b, c}, 2},
		{Fixed{Point: a, X: 1, Y: 2}, []EntityID{a}, 2},
		{Distance{E1: a, E2: b, Value: 1}, []EntityID{a, b}, 1},
		{HorizontalDistance{P1: a, P2: b, Value: 1}, []EntityID{a, b}, 1},
		{VerticalDistance{P1: a, P2: b, Value: 1}, []EntityID{a, b}, 1},
		{Angle{L1: a, L2: b, Value: 1}, []EntityID{a, b}, 1},
		{Radius{Curve: a, Value: 1}, []EntityID{a}, 1},
		{Diameter{Curve: a, Value: 1}, []EntityID{a}, 1},
		{Length{Line: a, Value: 1}, []EntityID{a}, 1},
		{Tangent{E1: a, E2: b}, []EntityID{a, b}, 1},
	}
	require.Len(t, tests, len(constraintKindNames))

	seen := make(map[ConstraintKind]bool)
	total := 0
	s := New()
	for _, tt := range tests {
		kind := tt.c.Kind()
		t.Run(kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.refs, tt.c.ReferencedEntities())
			assert.Equal(t, tt.equations, tt.c.EquationCount())
		})
		seen[kind] = true
		total += tt.equations
		_, err := s.AddConstraint(tt.c)
		require.NoError(t, err)
	}
	assert.Len(t, seen, len(constraintKindNames))
	assert.Equal(t, total, s.EquationCount())
}

func TestCurveRadius(t *testing.T) {
	center := NewEntityID()
	_, r, ok := CurveRadius(&Circle{Center: center, Radius: 4})
	assert.True(t, ok)
	assert.Equal(t, 4.0, r)

	c, r, ok := CurveRadius(&Arc{Center: center, Radius: 2})
	assert.True(t, ok)
	assert.Equal(t, center, c)
	assert.Equal(t, 2.0, r)

	_, _, ok = CurveRadius(&Line{})
	assert.False(t, ok)
}
