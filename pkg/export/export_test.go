package export

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/chazu/sketchsolve/pkg/sketch"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Drawing that keeps every segment in memory.
type recorder struct {
	segments [][2]v2.Vec
	saved    bool
}

func (r *recorder) Line(p0, p1 v2.Vec) { r.segments = append(r.segments, [2]v2.Vec{p0, p1}) }
func (r *recorder) Save() error { r.saved = true; return nil }

func entity(t *testing.T, s *sketch.Sketch, id sketch.EntityID) sketch.Entity {
	t.Helper()
	e, ok := s.Entity(id)
	require.True(t, ok)
	return e
}

func assertNear(t *testing.T, want, got v2.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "y")
}

func TestFlattenLine(t *testing.T) {
	s := sketch.New()
	a := s.AddPoint(v2.Vec{X: 0, Y: 0})
	b := s.AddPoint(v2.Vec{X: 3, Y: 4})
	l := s.AddLine(a, b)
	s.SetName(l, "edge")

	pl, err := Flatten(s, entity(t, s, l), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []v2.Vec{{X: 0, Y: 0}, {X: 3, Y: 4}}, pl.Points)
	assert.False(t, pl.Closed)
	assert.Equal(t, 1, pl.SegmentCount())
	assert.Equal(t, "edge", pl.Entity)
}

func TestFlattenCircle(t *testing.T) {
	s := sketch.New()
	o := s.AddPoint(v2.Vec{X: 1, Y: 2})
	c := s.AddCircle(o, 5)

	pl, err := Flatten(s, entity(t, s, c), Options{Segments: 8})
	require.NoError(t, err)
	require.Len(t, pl.Points, 8)
	assert.True(t, pl.Closed)
	assert.Equal(t, 8, pl.SegmentCount())
	for _, p := range pl.Points {
		assert.InDelta(t, 5, p.Sub(v2.Vec{X: 1, Y: 2}).Length(), 1e-9)
	}
	assertNear(t, v2.Vec{X: 6, Y: 2}, pl.Points[0])
}

func TestFlattenQuarterArc(t *testing.T) {
	s := sketch.New()
	o := s.AddPoint(v2.Vec{})
	a := s.AddPoint(v2.Vec{X: 2, Y: 0})
	b := s.AddPoint(v2.Vec{X: 0, Y: 2})
	arc := s.AddArc(o, a, b, 2)

	pl, err := Flatten(s, entity(t, s, arc), Options{Segments: 64})
	require.NoError(t, err)
	assert.False(t, pl.Closed)
	require.Len(t, pl.Points, 17)
	assertNear(t, v2.Vec{X: 2, Y: 0}, pl.Points[0])
	assertNear(t, v2.Vec{X: 0, Y: 2}, pl.Points[16])
}

func TestFlattenArcWrapsCounterClockwise(t *testing.T) {
	s := sketch.New()
	o := s.AddPoint(v2.Vec{})
	a := s.AddPoint(v2.Vec{X: 0, Y: 1})
	b := s.AddPoint(v2.Vec{X: 1, Y: 0})
	arc := s.AddArc(o, a, b, 1)

	// From 90 degrees counter-clockwise around to 0 is three quarters.
	pl, err := Flatten(s, entity(t, s, arc), Options{Segments: 4})
	require.NoError(t, err)
	require.Len(t, pl.Points, 4)
	assertNear(t, v2.Vec{X: -1, Y: 0}, pl.Points[1])
	assertNear(t, v2.Vec{X: 0, Y: -1}, pl.Points[2])
	assertNear(t, v2.Vec{X: 1, Y: 0}, pl.Points[3])
}

func TestFlattenUsesEntityRadius(t *testing.T) {
	s := sketch.New()
	o := s.AddPoint(v2.Vec{})
	a := s.AddPoint(v2.Vec{X: 3, Y: 0})
	b := s.AddPoint(v2.Vec{X: -3, Y: 0})
	arc := s.AddArc(o, a, b, 1)

	pl, err := Flatten(s, entity(t, s, arc), Options{Segments: 16})
	require.NoError(t, err)
	for _, p := range pl.Points {
		assert.InDelta(t, 1, p.Length(), 1e-9)
	}
	assertNear(t, v2.Vec{X: 0, Y: 1}, pl.Points[len(pl.Points)/2])
}

func TestFlattenUnresolved(t *testing.T) {
	s := sketch.New()
	a := s.AddPoint(v2.Vec{})
	b := s.AddPoint(v2.Vec{X: 1})
	l := s.AddLine(a, b)
	s.RemoveEntity(b)

	_, err := Flatten(s, entity(t, s, l), DefaultOptions())
	assert.ErrorIs(t, err, ErrUnresolved)

	_, err = Tessellate(s, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestPolylineShape(t *testing.T) {
	a, b, c := v2.Vec{}, v2.Vec{X: 1}, v2.Vec{X: 1, Y: 1}
	tests := []struct {
		name     string
		pl       Polyline
		empty    bool
		segments int
	}{
		{"nil points", Polyline{}, true, 0},
		{"closed but empty", Polyline{Closed: true}, true, 0},
		{"single point", Polyline{Points: []v2.Vec{a}}, false, 0},
		{"open pair", Polyline{Points: []v2.Vec{a, b}}, false, 1},
		{"closed pair", Polyline{Points: []v2.Vec{a, b}, Closed: true}, false, 1},
		{"closed triangle", Polyline{Points: []v2.Vec{a, b, c}, Closed: true}, false, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.empty, tt.pl.IsEmpty())
			assert.Equal(t, tt.segments, tt.pl.SegmentCount())
			n := 0
			tt.pl.Segments(func(p0, p1 v2.Vec) { n++ })
			assert.Equal(t, tt.segments, n)
		})
	}
}

func TestOptionsSegmentsDefault(t *testing.T) {
	assert.Equal(t, DefaultSegments, Options{}.segments())
	assert.Equal(t, DefaultSegments, Options{Segments: 2}.segments())
	assert.Equal(t, 12, Options{Segments: 12}.segments())
}

func TestTessellateNil(t *testing.T) {
	lines, err := Tessellate(nil, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestTessellateOnePolylinePerEntity(t *testing.T) {
	s := sketch.New()
	a := s.AddPoint(v2.Vec{})
	b := s.AddPoint(v2.Vec{X: 4})
	s.AddLine(a, b)
	s.AddCircle(a, 1)

	lines, err := Tessellate(s, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, lines, 4)
	assert.Len(t, lines[0].Points, 1)
	assert.Len(t, lines[2].Points, 2)
	assert.Equal(t, DefaultSegments, lines[3].SegmentCount())
}

func TestDrawMarksPoints(t *testing.T) {
	s := sketch.New()
	a := s.AddPoint(v2.Vec{})
	b := s.AddPoint(v2.Vec{X: 4})
	s.AddLine(a, b)

	r := &recorder{}
	n, err := Draw(r, s, Options{MarkSize: 0.25})
	require.NoError(t, err)
	assert.Equal(t, 5, n, "two crosses and one line")
	assert.Len(t, r.segments, 5)
	assert.False(t, r.saved, "Draw must not save")

	assert.Equal(t, [2]v2.Vec{{X: -0.25}, {X: 0.25}}, r.segments[0])

	r = &recorder{}
	n, err = Draw(r, s, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDrawCircleSegments(t *testing.T) {
	s := sketch.New()
	o := s.AddPoint(v2.Vec{})
	s.AddCircle(o, 2)

	r := &recorder{}
	n, err := Draw(r, s, Options{Segments: 6})
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	// Closed: the last segment returns to the first point.
	last := r.segments[len(r.segments)-1]
	assertNear(t, r.segments[0][0], last[1])
	assert.InDelta(t, 2*math.Sin(math.Pi/6)*2, last[0].Sub(last[1]).Length(), 1e-9)
}

// dxfLines reads back the LINE entities of an ASCII DXF file as
// {x0, y0, x1, y1} tuples.
func dxfLines(t *testing.T, path string) [][4]float64 {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	rows := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	slot := map[string]int{"10": 0, "20": 1, "11": 2, "21": 3}
	var lines [][4]float64
	var cur *[4]float64
	for i := 0; i+1 < len(rows); i += 2 {
		code := strings.TrimSpace(rows[i])
		value := strings.TrimSpace(rows[i+1])
		if code == "0" {
			if cur != nil {
				lines = append(lines, *cur)
				cur = nil
			}
			if value == "LINE" {
				cur = &[4]float64{}
			}
			continue
		}
		if cur == nil {
			continue
		}
		if k, ok := slot[code]; ok {
			v, err := strconv.ParseFloat(value, 64)
			require.NoError(t, err)
			cur[k] = v
		}
	}
	return lines
}

func TestWriteDXF(t *testing.T) {
	s := sketch.New()
	a := s.AddPoint(v2.Vec{})
	b := s.AddPoint(v2.Vec{X: 10})
	c := s.AddPoint(v2.Vec{X: 10, Y: 10})
	s.AddLine(a, b)
	s.AddLine(b, c)
	s.AddCircle(a, 3)

	path := filepath.Join(t.TempDir(), "sketch.dxf")
	opts := Options{Segments: 8, MarkSize: 0.5}
	require.NoError(t, WriteDXF(s, path, opts))

	lines := dxfLines(t, path)
	// Three crosses of two strokes, two lines, eight circle segments.
	require.Len(t, lines, 3*2+2+8)

	assert.Contains(t, lines, [4]float64{0, 0, 10, 0})
	assert.Contains(t, lines, [4]float64{10, 0, 10, 10})
	assert.Contains(t, lines, [4]float64{-0.5, 0, 0.5, 0}, "cross on the first point")

	// Circle segments stay on radius 3 around the origin.
	for _, l := range lines[3*2+2:] {
		assert.InDelta(t, 3, math.Hypot(l[0], l[1]), 1e-5)
		assert.InDelta(t, 3, math.Hypot(l[2], l[3]), 1e-5)
	}
}

func TestWriteDXFMatchesDraw(t *testing.T) {
	s := sketch.New()
	o := s.AddPoint(v2.Vec{X: 1, Y: 1})
	e := s.AddPoint(v2.Vec{X: 1, Y: 4})
	st := s.AddPoint(v2.Vec{X: 4, Y: 1})
	s.AddArc(o, st, e, 3)

	opts := Options{Segments: 16}
	r := &recorder{}
	n, err := Draw(r, s, opts)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "arc.dxf")
	require.NoError(t, WriteDXF(s, path, opts))
	lines := dxfLines(t, path)
	require.Len(t, lines, n)
	for i, seg := range r.segments {
		assert.InDelta(t, seg[0].X, lines[i][0], 1e-5)
		assert.InDelta(t, seg[0].Y, lines[i][1], 1e-5)
		assert.InDelta(t, seg[1].X, lines[i][2], 1e-5)
		assert.InDelta(t, seg[1].Y, lines[i][3], 1e-5)
	}
}

func TestWriteDXFBadDirectory(t *testing.T) {
	s := sketch.New()
	a := s.AddPoint(v2.Vec{})
	b := s.AddPoint(v2.Vec{X: 1})
	s.AddLine(a, b)

	err := WriteDXF(s, filepath.Join(t.TempDir(), "missing", "x.dxf"), DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export: writing")
}

func TestWriteDXFUnresolved(t *testing.T) {
	s := sketch.New()
	a := s.AddPoint(v2.Vec{})
	b := s.AddPoint(v2.Vec{X: 1})
	s.AddLine(a, b)
	s.RemoveEntity(a)

	path := filepath.Join(t.TempDir(), "bad.dxf")
	err := WriteDXF(s, path, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnresolved)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing is written on error")
}
