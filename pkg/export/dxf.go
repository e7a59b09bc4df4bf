package export

import (
	"fmt"

	"github.com/chazu/sketchsolve/pkg/sketch"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Drawing is the output surface for flattened sketches. WriteDXF draws
// through sdfx's DXF renderer; tests substitute a recorder.
type Drawing interface {
	Line(p0, p1 v2.Vec)
	Save() error
}

// dxfDrawing adapts *render.DXF, which takes whole segments, to Drawing.
type dxfDrawing struct {
	*render.DXF
}

func (d dxfDrawing) Line(p0, p1 v2.Vec) {
	d.DXF.Line(&sdf.Line2{p0, p1})
}

var _ Drawing = dxfDrawing{}

// Draw tessellates s and draws every polyline into d, plus a cross at each
// point entity when opts.MarkSize is positive. It returns the number of
// segments drawn. Draw does not call Save.
func Draw(d Drawing, s *sketch.Sketch, opts Options) (int, error) {
	lines, err := Tessellate(s, opts)
	if err != nil {
		return 0, err
	}

	n := 0
	line := func(p0, p1 v2.Vec) {
		d.Line(p0, p1)
		n++
	}
	for _, pl := range lines {
		if pl.IsEmpty() {
			continue
		}
		if len(pl.Points) == 1 {
			if opts.MarkSize > 0 {
				drawMark(line, pl.Points[0], opts.MarkSize)
			}
			continue
		}
		pl.Segments(line)
	}
	return n, nil
}

// drawMark draws an axis-aligned cross centered on p.
func drawMark(line func(p0, p1 v2.Vec), p v2.Vec, size float64) {
	line(v2.Vec{X: p.X - size, Y: p.Y}, v2.Vec{X: p.X + size, Y: p.Y})
	line(v2.Vec{X: p.X, Y: p.Y - size}, v2.Vec{X: p.X, Y: p.Y + size})
}

// WriteDXF draws s into a new DXF file at path.
func WriteDXF(s *sketch.Sketch, path string, opts Options) error {
	d := dxfDrawing{render.NewDXF(path)}
	if _, err := Draw(d, s, opts); err != nil {
		return err
	}
	if err := d.Save(); err != nil {
		return fmt.Errorf("export: writing %s: %w", path, err)
	}
	return nil
}
