package sketch

import (
	"errors"
	"fmt"
	"iter"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

var (
	// ErrDuplicateID is returned when an entity or constraint id is already present.
	ErrDuplicateID = errors.New("sketch: duplicate id")

	// ErrNilEntity is returned when a nil entity or constraint is added.
	ErrNilEntity = errors.New("sketch: nil entity")
)

// Sketch is a planar sketch: entities and constraints in insertion order.
// Entities are held by pointer so callers (and the solver) can update
// point positions in place. Never hold an entity pointer across RemoveEntity.
type Sketch struct {
	entities        []Entity
	entityIndex     map[EntityID]int
	constraints     []Constraint
	constraintIndex map[ConstraintID]int
	names           map[string]EntityID
	entityNames     map[EntityID]string
}

// New creates an empty Sketch.
func New() *Sketch {
	return &Sketch{
		entityIndex:     make(map[EntityID]int),
		constraintIndex: make(map[ConstraintID]int),
		names:           make(map[string]EntityID),
		entityNames:     make(map[EntityID]string),
	}
}

// ---------------------------------------------------------------------------
// Entities
// ---------------------------------------------------------------------------

// AddEntity appends e to the sketch. It fails if e is nil or its id is
// already present.
func (s *Sketch) AddEntity(e Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	id := e.EntityID()
	if _, exists := s.entityIndex[id]; exists {
		return fmt.Errorf("%w: entity %s", ErrDuplicateID, id.Short())
	}
	s.entityIndex[id] = len(s.entities)
	s.entities = append(s.entities, e)
	return nil
}

// AddPoint adds a point at pos with a fresh id.
func (s *Sketch) AddPoint(pos v2.Vec) EntityID {
	p := &Point{ID: NewEntityID(), Position: pos}
	s.mustAdd(p)
	return p.ID
}

// AddLine adds a line between two point entities with a fresh id.
func (s *Sketch) AddLine(start, end EntityID) EntityID {
	l := &Line{ID: NewEntityID(), Start: start, End: end}
	s.mustAdd(l)
	return l.ID
}

// AddCircle adds a circle with a fresh id.
func (s *Sketch) AddCircle(center EntityID, radius float64) EntityID {
	c := &Circle{ID: NewEntityID(), Center: center, Radius: radius}
	s.mustAdd(c)
	return c.ID
}

// AddArc adds an arc with a fresh id.
func (s *Sketch) AddArc(center, start, end EntityID, radius float64) EntityID {
	a := &Arc{ID: NewEntityID(), Center: center, Start: start, End: end, Radius: radius}
	s.mustAdd(a)
	return a.ID
}

// mustAdd adds an entity whose id was just generated and cannot collide.
func (s *Sketch) mustAdd(e Entity) {
	if err := s.AddEntity(e); err != nil {
		panic(fmt.Sprintf("sketch: %v", err))
	}
}

// RemoveEntity deletes the entity with the given id. Constraints and other
// entities that reference it are left in place with a dangling reference.
func (s *Sketch) RemoveEntity(id EntityID) bool {
	i, ok := s.entityIndex[id]
	if !ok {
		return false
	}
	s.entities = append(s.entities[:i], s.entities[i+1:]...)
	delete(s.entityIndex, id)
	for j := i; j < len(s.entities); j++ {
		s.entityIndex[s.entities[j].EntityID()] = j
	}
	if name, named := s.entityNames[id]; named {
		delete(s.names, name)
		delete(s.entityNames, id)
	}
	return true
}

// Entity returns the entity with the given id.
func (s *Sketch) Entity(id EntityID) (Entity, bool) {
	i, ok := s.entityIndex[id]
	if !ok {
		return nil, false
	}
	return s.entities[i], true
}

// Point returns the point entity with the given id. It returns false if the
// id is missing or refers to a non-point entity.
func (s *Sketch) Point(id EntityID) (*Point, bool) {
	e, ok := s.Entity(id)
	if !ok {
		return nil, false
	}
	p, ok := e.(*Point)
	return p, ok
}

// Line returns the line entity with the given id.
func (s *Sketch) Line(id EntityID) (*Line, bool) {
	e, ok := s.Entity(id)
	if !ok {
		return nil, false
	}
	l, ok := e.(*Line)
	return l, ok
}

// Entities iterates entities in insertion order.
func (s *Sketch) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, e := range s.entities {
			if !yield(e) {
				return
			}
		}
	}
}

// EntityCount returns the number of entities.
func (s *Sketch) EntityCount() int {
	return len(s.entities)
}

// PointCount returns the number of point entities.
func (s *Sketch) PointCount() int {
	n := 0
	for _, e := range s.entities {
		if e.Kind() == EntityPoint {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Constraints
// ---------------------------------------------------------------------------

// AddConstraint appends c to the sketch and returns its id. A zero id is
// replaced with a fresh one.
func (s *Sketch) AddConstraint(c Constraint) (ConstraintID, error) {
	if c == nil {
		return ConstraintID{}, ErrNilEntity
	}
	if c.ConstraintID().IsZero() {
		c = c.withID(NewConstraintID())
	}
	id := c.ConstraintID()
	if _, exists := s.constraintIndex[id]; exists {
		return ConstraintID{}, fmt.Errorf("%w: constraint %s", ErrDuplicateID, id.Short())
	}
	s.constraintIndex[id] = len(s.constraints)
	s.constraints = append(s.constraints, c)
	return id, nil
}

// RemoveConstraint deletes the constraint with the given id.
func (s *Sketch) RemoveConstraint(id ConstraintID) bool {
	i, ok := s.constraintIndex[id]
	if !ok {
		return false
	}
	s.constraints = append(s.constraints[:i], s.constraints[i+1:]...)
	delete(s.constraintIndex, id)
	for j := i; j < len(s.constraints); j++ {
		s.constraintIndex[s.constraints[j].ConstraintID()] = j
	}
	return true
}

// Constraint returns the constraint with the given id.
func (s *Sketch) Constraint(id ConstraintID) (Constraint, bool) {
	i, ok := s.constraintIndex[id]
	if !ok {
		return nil, false
	}
	return s.constraints[i], true
}

// Constraints iterates constraints in insertion order.
func (s *Sketch) Constraints() iter.Seq[Constraint] {
	return func(yield func(Constraint) bool) {
		for _, c := range s.constraints {
			if !yield(c) {
				return
			}
		}
	}
}

// ConstraintCount returns the number of constraints.
func (s *Sketch) ConstraintCount() int {
	return len(s.constraints)
}

// ---------------------------------------------------------------------------
// Names
// ---------------------------------------------------------------------------

// SetName assigns a user-facing name to an entity, replacing any previous
// holder of that name.
func (s *Sketch) SetName(id EntityID, name string) {
	if old, ok := s.names[name]; ok {
		delete(s.entityNames, old)
	}
	if prev, ok := s.entityNames[id]; ok {
		delete(s.names, prev)
	}
	s.names[name] = id
	s.entityNames[id] = name
}

// Lookup returns the entity id registered under name.
func (s *Sketch) Lookup(name string) (EntityID, bool) {
	id, ok := s.names[name]
	return id, ok
}

// NameOf returns the user-facing name of an entity, or its short id.
func (s *Sketch) NameOf(id EntityID) string {
	if name, ok := s.entityNames[id]; ok {
		return name
	}
	return id.Short()
}

// ---------------------------------------------------------------------------
// Copy
// ---------------------------------------------------------------------------

// Clone returns a deep copy of the sketch. Mutating the clone's points never
// affects the original.
func (s *Sketch) Clone() *Sketch {
	c := &Sketch{
		entities:        make([]Entity, len(s.entities)),
		entityIndex:     make(map[EntityID]int, len(s.entityIndex)),
		constraints:     make([]Constraint, len(s.constraints)),
		constraintIndex: make(map[ConstraintID]int, len(s.constraintIndex)),
		names:           make(map[string]EntityID, len(s.names)),
		entityNames:     make(map[EntityID]string, len(s.entityNames)),
	}
	for i, e := range s.entities {
		c.entities[i] = e.clone()
	}
	for id, i := range s.entityIndex {
		c.entityIndex[id] = i
	}
	// Constraints are values; copying the interface copies the struct.
	copy(c.constraints, s.constraints)
	for id, i := range s.constraintIndex {
		c.constraintIndex[id] = i
	}
	for name, id := range s.names {
		c.names[name] = id
	}
	for id, name := range s.entityNames {
		c.entityNames[id] = name
	}
	return c
}
