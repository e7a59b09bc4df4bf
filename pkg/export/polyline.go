// Package export turns a sketch into flat line work: each entity is
// tessellated into a polyline, and the polylines are drawn into a DXF file
// through sdfx's DXF renderer.
package export

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Polyline is the flattened outline of one sketch entity.
type Polyline struct {
	Points []v2.Vec `json:"points"`
	Closed bool     `json:"closed"` // last point connects back to the first
	Entity string   `json:"entity"` // which sketch entity this came from
}

// SegmentCount returns the number of line segments the polyline draws.
func (p *Polyline) SegmentCount() int {
	n := len(p.Points)
	if n < 2 {
		return 0
	}
	if p.Closed && n > 2 {
		return n
	}
	return n - 1
}

// IsEmpty returns true if the polyline has no geometry.
func (p *Polyline) IsEmpty() bool {
	return len(p.Points) == 0
}

// Segments calls fn for each segment in drawing order.
func (p *Polyline) Segments(fn func(p0, p1 v2.Vec)) {
	for i := 1; i < len(p.Points); i++ {
		fn(p.Points[i-1], p.Points[i])
	}
	if p.Closed && len(p.Points) > 2 {
		fn(p.Points[len(p.Points)-1], p.Points[0])
	}
}
