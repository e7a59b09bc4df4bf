package sketch

import (
	"strconv"

	"github.com/google/uuid"
)

// EntityID is an opaque identifier for a sketch entity.
type EntityID uuid.UUID

// ConstraintID is an opaque identifier for a sketch constraint.
type ConstraintID uuid.UUID

// ZeroID is the zero-value EntityID, used to represent "no entity".
var ZeroID EntityID

// Namespaces for name-derived identifiers. Deriving ids from names keeps
// sketches built from the same source byte-for-byte reproducible.
var (
	entityNamespace     = uuid.NewSHA1(uuid.NameSpaceOID, []byte("sketchsolve/entity"))
	anonymousNamespace  = uuid.NewSHA1(uuid.NameSpaceOID, []byte("sketchsolve/anonymous"))
	constraintNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("sketchsolve/constraint"))
)

// NewEntityID returns a fresh random EntityID.
func NewEntityID() EntityID {
	return EntityID(uuid.New())
}

// NamedEntityID returns the deterministic EntityID for a user-assigned name.
func NamedEntityID(name string) EntityID {
	return EntityID(uuid.NewSHA1(entityNamespace, []byte(name)))
}

// SequentialEntityID returns the deterministic id of the n-th unnamed
// entity from source. It never collides with a NamedEntityID.
func SequentialEntityID(source string, n int) EntityID {
	return EntityID(uuid.NewSHA1(anonymousNamespace, []byte(source+"#"+strconv.Itoa(n))))
}

// IsZero reports whether the id is the zero value.
func (id EntityID) IsZero() bool {
	return id == ZeroID
}

// String returns the canonical UUID form.
func (id EntityID) String() string {
	return uuid.UUID(id).String()
}

// Short returns the first 8 hex characters, for log and error messages.
func (id EntityID) Short() string {
	return id.String()[:8]
}

// NewConstraintID returns a fresh random ConstraintID.
func NewConstraintID() ConstraintID {
	return ConstraintID(uuid.New())
}

// SequentialConstraintID returns a deterministic ConstraintID for the
// n-th constraint of a named sketch source.
func SequentialConstraintID(source string, n int) ConstraintID {
	return ConstraintID(uuid.NewSHA1(constraintNamespace, []byte(source+"#"+strconv.Itoa(n))))
}

// IsZero reports whether the id is the zero value.
func (id ConstraintID) IsZero() bool {
	return id == ConstraintID{}
}

// String returns the canonical UUID form.
func (id ConstraintID) String() string {
	return uuid.UUID(id).String()
}

// Short returns the first 8 hex characters.
func (id ConstraintID) Short() string {
	return id.String()[:8]
}
