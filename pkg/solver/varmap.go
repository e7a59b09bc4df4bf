package solver

import (
	"github.com/chazu/sketchsolve/pkg/sketch"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// VariableMap maps each point entity to two consecutive slots (x, y) in the
// flat solver variable vector. A map is only valid for the sketch it was
// built from and only while that sketch's entity set is unchanged.
type VariableMap struct {
	points []sketch.EntityID       // points[k] owns slots 2k and 2k+1
	index  map[sketch.EntityID]int // point id -> x slot
}

// BuildVariableMap assigns variables to every point of s in the sketch's
// natural entity order.
func BuildVariableMap(s *sketch.Sketch) *VariableMap {
	vm := &VariableMap{index: make(map[sketch.EntityID]int)}
	for e := range s.Entities() {
		if e.Kind() != sketch.EntityPoint {
			continue
		}
		vm.index[e.EntityID()] = 2 * len(vm.points)
		vm.points = append(vm.points, e.EntityID())
	}
	return vm
}

// Len returns the number of scalar variables (twice the point count).
func (vm *VariableMap) Len() int {
	return 2 * len(vm.points)
}

// Index returns the x slot of a point; y is at the following slot.
func (vm *VariableMap) Index(id sketch.EntityID) (int, bool) {
	i, ok := vm.index[id]
	return i, ok
}

// Values reads the current coordinates of every mapped point.
func (vm *VariableMap) Values(s *sketch.Sketch) []float64 {
	x := make([]float64, vm.Len())
	for k, id := range vm.points {
		p := pointPosition(s, id)
		x[2*k], x[2*k+1] = p.X, p.Y
	}
	return x
}

// SetValues writes x back into the mapped points' positions.
func (vm *VariableMap) SetValues(s *sketch.Sketch, x []float64) {
	for k, id := range vm.points {
		if p, ok := s.Point(id); ok {
			p.Position = v2.Vec{X: x[2*k], Y: x[2*k+1]}
		}
	}
}

// SetValue writes a single variable into the sketch.
func (vm *VariableMap) SetValue(s *sketch.Sketch, slot int, v float64) {
	p, ok := s.Point(vm.points[slot/2])
	if !ok {
		return
	}
	if slot%2 == 0 {
		p.Position.X = v
	} else {
		p.Position.Y = v
	}
}

// pointPosition returns the position of the point id, or the origin when id
// does not resolve to a point.
func pointPosition(s *sketch.Sketch, id sketch.EntityID) v2.Vec {
	if p, ok := s.Point(id); ok {
		return p.Position
	}
	return v2.Vec{}
}
