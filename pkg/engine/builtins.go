package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/chazu/sketchsolve/pkg/sketch"
	v2 "github.com/deadsy/sdfx/vec/v2"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpEntity wraps a sketch.EntityID so it can be passed between builtins.
type sexpEntity struct {
	id   sketch.EntityID
	kind sketch.EntityKind
	name string // human-readable name for error messages
}

func (e *sexpEntity) SexpString(ps *zygo.PrintState) string {
	if e.name != "" {
		return fmt.Sprintf("(%s %q)", e.kind, e.name)
	}
	return fmt.Sprintf("(%s %s)", e.kind, e.id.Short())
}
func (e *sexpEntity) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Sketch builder
// ---------------------------------------------------------------------------

// idSource labels the anonymous entity and constraint id sequences of
// evaluated sketches.
const idSource = "sketch"

// builder accumulates entities and constraints while a program runs. It is
// owned by a single evaluation, so anonymous names and constraint ids are
// reproducible across evaluations of the same source.
type builder struct {
	sketch *sketch.Sketch
	anon   int
	seq    int
}

func newBuilder() *builder {
	return &builder{sketch: sketch.New()}
}

// entityID returns the id for a named entity, or the next anonymous id.
func (b *builder) entityID(name string) sketch.EntityID {
	if name != "" {
		return sketch.NamedEntityID(name)
	}
	b.anon++
	return sketch.SequentialEntityID(idSource, b.anon)
}

// addEntity adds e under name (which may be empty) and returns its ref.
func (b *builder) addEntity(e sketch.Entity, name string) (zygo.Sexp, error) {
	if err := b.sketch.AddEntity(e); err != nil {
		if errors.Is(err, sketch.ErrDuplicateID) && name != "" {
			return zygo.SexpNull, fmt.Errorf("entity %q is already defined", name)
		}
		return zygo.SexpNull, err
	}
	if name != "" {
		b.sketch.SetName(e.EntityID(), name)
	}
	return &sexpEntity{id: e.EntityID(), kind: e.Kind(), name: name}, nil
}

// addConstraint stamps c with the next sequential id and adds it.
func (b *builder) addConstraint(c sketch.Constraint) error {
	b.seq++
	c = sketch.WithID(c, sketch.SequentialConstraintID(idSource, b.seq))
	_, err := b.sketch.AddConstraint(c)
	return err
}

// resolve accepts an entity ref or an entity name.
func (b *builder) resolve(s zygo.Sexp) (sketch.EntityID, error) {
	switch v := s.(type) {
	case *sexpEntity:
		return v.id, nil
	case *zygo.SexpStr:
		if id, ok := b.sketch.Lookup(v.S); ok {
			return id, nil
		}
		return sketch.ZeroID, fmt.Errorf("no entity named %q", v.S)
	}
	return sketch.ZeroID, fmt.Errorf("expected entity reference or name, got %T (%s)", s, s.SexpString(nil))
}

// entityArgs splits the arguments of an entity builtin into an optional
// leading name and want positional operands. A :name keyword may be used
// instead of the leading string.
func entityArgs(op string, args []zygo.Sexp, want int) (string, kwArgs, error) {
	pa := parseArgs(args)
	var name string
	if v, ok := pa.kw["name"]; ok {
		s, err := toString(v)
		if err != nil {
			return "", pa, fmt.Errorf("%s: name: %w", op, err)
		}
		name = s
	}
	if len(pa.positional) == want+1 {
		s, err := toString(pa.positional[0])
		if err != nil {
			return "", pa, fmt.Errorf("%s: name: %w", op, err)
		}
		if name != "" {
			return "", pa, fmt.Errorf("%s: name given twice", op)
		}
		name = s
		pa.positional = pa.positional[1:]
	}
	if len(pa.positional) != want {
		return "", pa, fmt.Errorf("%s requires %d arguments after the optional name, got %d",
			op, want, len(pa.positional))
	}
	return name, pa, nil
}

// radiusArg reads a radius from the :radius keyword or the last positional.
func radiusArg(op string, pa kwArgs) (float64, error) {
	v, ok := pa.kw["radius"]
	if !ok {
		v = pa.positional[len(pa.positional)-1]
	}
	r, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: radius: %w", op, err)
	}
	return r, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all sketch builtins into a zygomys environment.
// The builtins operate on the provided builder, populating its sketch
// during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens and kebab-case names are in zygomys form.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (point "name" x y)
	// -----------------------------------------------------------------------
	env.AddFunction("point", func(env *zygo.Zlisp, fn string, args []zygo.Sexp) (zygo.Sexp, error) {
		name, pa, err := entityArgs("point", args, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		x, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: x: %w", err)
		}
		y, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: y: %w", err)
		}
		p := &sketch.Point{ID: b.entityID(name), Position: v2.Vec{X: x, Y: y}}
		return b.addEntity(p, name)
	})

	// -----------------------------------------------------------------------
	// (ref "name")
	// -----------------------------------------------------------------------
	env.AddFunction("ref", func(env *zygo.Zlisp, fn string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("ref requires a name argument")
		}
		name, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ref: name: %w", err)
		}
		id, ok := b.sketch.Lookup(name)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("ref: no entity named %q", name)
		}
		e, _ := b.sketch.Entity(id)
		return &sexpEntity{id: id, kind: e.Kind(), name: name}, nil
	})

	// -----------------------------------------------------------------------
	// (line "name" start end)
	// -----------------------------------------------------------------------
	env.AddFunction("line", func(env *zygo.Zlisp, fn string, args []zygo.Sexp) (zygo.Sexp, error) {
		name, pa, err := entityArgs("line", args, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		start, err := b.resolve(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: start: %w", err)
		}
		end, err := b.resolve(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: end: %w", err)
		}
		l := &sketch.Line{ID: b.entityID(name), Start: start, End: end}
		return b.addEntity(l, name)
	})

	// -----------------------------------------------------------------------
	// (circle "name" center r) or (circle "name" center :radius r)
	// -----------------------------------------------------------------------
	env.AddFunction("circle", func(env *zygo.Zlisp, fn string, args []zygo.Sexp) (zygo.Sexp, error) {
		want := 2
		if _, ok := parseArgs(args).kw["radius"]; ok {
			want = 1
		}
		name, pa, err := entityArgs("circle", args, want)
		if err != nil {
			return zygo.SexpNull, err
		}
		center, err := b.resolve(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: center: %w", err)
		}
		r, err := radiusArg("circle", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		c := &sketch.Circle{ID: b.entityID(name), Center: center, Radius: r}
		return b.addEntity(c, name)
	})

	// -----------------------------------------------------------------------
	// (arc "name" center start end r) or (arc "name" center start end :radius r)
	// -----------------------------------------------------------------------
	env.AddFunction("arc", func(env *zygo.Zlisp, fn string, args []zygo.Sexp) (zygo.Sexp, error) {
		want := 4
		if _, ok := parseArgs(args).kw["radius"]; ok {
			want = 3
		}
		name, pa, err := entityArgs("arc", args, want)
		if err != nil {
			return zygo.SexpNull, err
		}
		var pts [3]sketch.EntityID
		for i, slot := range []string{"center", "start", "end"} {
			id, err := b.resolve(pa.positional[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("arc: %s: %w", slot, err)
			}
			pts[i] = id
		}
		r, err := radiusArg("arc", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		a := &sketch.Arc{ID: b.entityID(name), Center: pts[0], Start: pts[1], End: pts[2], Radius: r}
		return b.addEntity(a, name)
	})

	// -----------------------------------------------------------------------
	// (deg 90) -> radians
	// -----------------------------------------------------------------------
	env.AddFunction("deg", func(env *zygo.Zlisp, fn string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("deg requires exactly 1 argument, got %d", len(args))
		}
		d, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("deg: %w", err)
		}
		return &zygo.SexpFloat{Val: d * math.Pi / 180}, nil
	})

	// -----------------------------------------------------------------------
	// (fixed p) pins p where it is; (fixed p x y) pins it at (x, y).
	// -----------------------------------------------------------------------
	env.AddFunction("fixed", func(env *zygo.Zlisp, fn string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 && len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("fixed requires a point and optional x y, got %d arguments", len(args))
		}
		id, err := b.resolve(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fixed: point: %w", err)
		}
		c := sketch.Fixed{Point: id}
		if len(args) == 3 {
			if c.X, err = toFloat64(args[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("fixed: x: %w", err)
			}
			if c.Y, err = toFloat64(args[2]); err != nil {
				return zygo.SexpNull, fmt.Errorf("fixed: y: %w", err)
			}
		} else {
			p, ok := b.sketch.Point(id)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("fixed: %s is not a point", b.sketch.NameOf(id))
			}
			c.X, c.Y = p.Position.X, p.Position.Y
		}
		return zygo.SexpNull, b.addConstraint(c)
	})

	for _, spec := range constraintBuiltins {
		registerConstraint(env, b, spec)
	}
}

// constraintBuiltin describes a constraint builtin that takes refs entity
// operands followed by an optional dimensional value.
type constraintBuiltin struct {
	kind     sketch.ConstraintKind
	refs     int
	hasValue bool
	build    func(ids []sketch.EntityID, value float64) sketch.Constraint
}

var constraintBuiltins = []constraintBuiltin{
	{sketch.KindCoincident, 2, false, func(e []sketch.EntityID, _ float64) sketch.Constraint {
		return sketch.Coincident{P1: e[0], P2: e[1]}
	}},
	{sketch.KindHorizontal, 1, false, func(e []sketch.EntityID, _ float64) sketch.Constraint {
		return sketch.Horizontal{Line: e[0]}
	}},
	{sketch.KindVertical, 1, false, func(e []sketch.EntityID, _ float64) sketch.Constraint {
		return sketch.Vertical{Line: e[0]}
	}},
	{sketch.KindParallel, 2, false, func(e []sketch.EntityID, _ float64) sketch.Constraint {
		return sketch.Parallel{L1: e[0], L2: e[1]}
	}},
	{sketch.KindPerpendicular, 2, false, func(e []sketch.EntityID, _ float64) sketch.Constraint {
		return sketch.Perpendicular{L1: e[0], L2: e[1]}
	}},
	{sketch.KindEqualLength, 2, false, func(e []sketch.EntityID, _ float64) sketch.Constraint {
		return sketch.EqualLength{L1: e[0], L2: e[1]}
	}},
	{sketch.KindEqualRadius, 2, false, func(e []sketch.EntityID, _ float64) sketch.Constraint {
		return sketch.EqualRadius{C1: e[0], C2: e[1]}
	}},
	{sketch.KindPointOnCurve, 2, false, func(e []sketch.EntityID, _ float64) sketch.Constraint {
		return sketch.PointOnCurve{Point: e[0], Curve: e[1]}
	}},
	{sketch.KindMidpoint, 2, false, func(e []sketch.EntityID, _ float64) sketch.Constraint {
		return sketch.Midpoint{Point: e[0], Line: e[1]}
	}},
	{sketch.KindSymmetric, 3, false, func(e []sketch.EntityID, _ float64) sketch.Constraint {
		return sketch.Symmetric{E1: e[0], E2: e[1], Axis: e[2]}
	}},
	{sketch.KindDistance, 2, true, func(e []sketch.EntityID, v float64) sketch.Constraint {
		return sketch.Distance{E1: e[0], E2: e[1], Value: v}
	}},
	{sketch.KindHorizontalDistance, 2, true, func(e []sketch.EntityID, v float64) sketch.Constraint {
		return sketch.HorizontalDistance{P1: e[0], P2: e[1], Value: v}
	}},
	{sketch.KindVerticalDistance, 2, true, func(e []sketch.EntityID, v float64) sketch.Constraint {
		return sketch.VerticalDistance{P1: e[0], P2: e[1], Value: v}
	}},
	{sketch.KindAngle, 2, true, func(e []sketch.EntityID, v float64) sketch.Constraint {
		return sketch.Angle{L1: e[0], L2: e[1], Value: v}
	}},
	{sketch.KindRadius, 1, true, func(e []sketch.EntityID, v float64) sketch.Constraint {
		return sketch.Radius{Curve: e[0], Value: v}
	}},
	{sketch.KindDiameter, 1, true, func(e []sketch.EntityID, v float64) sketch.Constraint {
		return sketch.Diameter{Curve: e[0], Value: v}
	}},
	{sketch.KindLength, 1, true, func(e []sketch.EntityID, v float64) sketch.Constraint {
		return sketch.Length{Line: e[0], Value: v}
	}},
	{sketch.KindTangent, 2, false, func(e []sketch.EntityID, _ float64) sketch.Constraint {
		return sketch.Tangent{E1: e[0], E2: e[1]}
	}},
}

// builtinName is the zygomys name of a constraint kind: equal-length is
// registered as equal_length, matching preprocessSource.
func builtinName(k sketch.ConstraintKind) string {
	return strings.ReplaceAll(k.String(), "-", "_")
}

func registerConstraint(env *zygo.Zlisp, b *builder, spec constraintBuiltin) {
	op := spec.kind.String()
	want := spec.refs
	if spec.hasValue {
		want++
	}
	env.AddFunction(builtinName(spec.kind), func(env *zygo.Zlisp, fn string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != want {
			return zygo.SexpNull, fmt.Errorf("%s requires exactly %d arguments, got %d", op, want, len(args))
		}
		ids := make([]sketch.EntityID, spec.refs)
		for i := range ids {
			id, err := b.resolve(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: argument %d: %w", op, i+1, err)
			}
			ids[i] = id
		}
		var value float64
		if spec.hasValue {
			v, err := toFloat64(args[spec.refs])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: value: %w", op, err)
			}
			value = v
		}
		return zygo.SexpNull, b.addConstraint(spec.build(ids, value))
	})
}
