package solid

import (
	"fmt"
	"math"

	"github.com/soypat/solid/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

type union struct {
	shapes []Shape
}

// NewUnion returns the union of the argument shapes.
func NewUnion(shapes ...Shape) (Shape, error) {
	if err := checkShapes("union", shapes...); err != nil {
		return nil, err
	}
	if len(shapes) == 1 {
		return shapes[0], nil
	}
	return &union{shapes: shapes}, nil
}

func (u *union) Evaluate(p r3.Vec) float64 {
	d := math.Inf(1)
	for _, s := range u.shapes {
		d = math.Min(d, s.Evaluate(p))
	}
	return d
}

func (u *union) Bounds() r3.Box {
	bb := d3.Box(u.shapes[0].Bounds())
	for _, s := range u.shapes[1:] {
		bb = bb.Union(d3.Box(s.Bounds()))
	}
	return r3.Box(bb)
}

func (u *union) AppendSCAD(b []byte, depth int) []byte {
	return appendBlock(b, depth, "union()", u.shapes)
}

func (u *union) ForEachChild(fn func(Shape) error) error { return forEach(u.shapes, fn) }

type difference struct {
	shapes []Shape
}

// NewDifference returns base with all of sub removed from it.
func NewDifference(base Shape, sub ...Shape) (Shape, error) {
	shapes := append([]Shape{base}, sub...)
	if err := checkShapes("difference", shapes...); err != nil {
		return nil, err
	}
	return &difference{shapes: shapes}, nil
}

func (d *difference) Evaluate(p r3.Vec) float64 {
	dist := d.shapes[0].Evaluate(p)
	for _, s := range d.shapes[1:] {
		dist = math.Max(dist, -s.Evaluate(p))
	}
	return dist
}

func (d *difference) Bounds() r3.Box { return d.shapes[0].Bounds() }

func (d *difference) AppendSCAD(b []byte, depth int) []byte {
	return appendBlock(b, depth, "difference()", d.shapes)
}

func (d *difference) ForEachChild(fn func(Shape) error) error { return forEach(d.shapes, fn) }

type intersection struct {
	shapes []Shape
}

// NewIntersection returns the region shared by all argument shapes.
func NewIntersection(shapes ...Shape) (Shape, error) {
	if err := checkShapes("intersection", shapes...); err != nil {
		return nil, err
	}
	return &intersection{shapes: shapes}, nil
}

func (in *intersection) Evaluate(p r3.Vec) float64 {
	d := math.Inf(-1)
	for _, s := range in.shapes {
		d = math.Max(d, s.Evaluate(p))
	}
	return d
}

func (in *intersection) Bounds() r3.Box {
	bb := d3.Box(in.shapes[0].Bounds())
	for _, s := range in.shapes[1:] {
		bb = bb.Intersect(d3.Box(s.Bounds()))
	}
	if bb.Empty() {
		c := bb.Center()
		return r3.Box{Min: c, Max: c}
	}
	return r3.Box(bb)
}

func (in *intersection) AppendSCAD(b []byte, depth int) []byte {
	return appendBlock(b, depth, "intersection()", in.shapes)
}

func (in *intersection) ForEachChild(fn func(Shape) error) error { return forEach(in.shapes, fn) }

type minkowski struct {
	s     Shape
	round *sphere
}

// NewMinkowski returns the Minkowski sum of s and round. round must be a
// sphere centered on the origin, which rounds every edge of s by the sphere's radius.
func NewMinkowski(s, round Shape) (Shape, error) {
	if err := checkShapes("minkowski", s, round); err != nil {
		return nil, err
	}
	sp, ok := round.(*sphere)
	if !ok {
		return nil, fmt.Errorf("minkowski sum with %T: %w", round, ErrUnsupported)
	}
	return &minkowski{s: s, round: sp}, nil
}

func (m *minkowski) Evaluate(p r3.Vec) float64 {
	return m.s.Evaluate(p) - m.round.r
}

func (m *minkowski) Bounds() r3.Box {
	return r3.Box(d3.Box(m.s.Bounds()).Grow(m.round.r))
}

func (m *minkowski) AppendSCAD(b []byte, depth int) []byte {
	return appendBlock(b, depth, "minkowski()", []Shape{m.s, m.round})
}

func (m *minkowski) ForEachChild(fn func(Shape) error) error {
	return forEach([]Shape{m.s, m.round}, fn)
}

// hullSweep is the convex hull of a convex shape and a translated copy of it.
type hullSweep struct {
	s     Shape
	moved *translation
}

// NewHull returns the convex hull of the argument shapes. Only the hull of a
// convex shape and a translated copy of that same shape is supported, which
// sweeps the shape along the translation.
func NewHull(shapes ...Shape) (Shape, error) {
	if err := checkShapes("hull", shapes...); err != nil {
		return nil, err
	}
	if len(shapes) != 2 {
		return nil, fmt.Errorf("hull of %d shapes: %w", len(shapes), ErrUnsupported)
	}
	tr, ok := shapes[1].(*translation)
	if !ok || tr.s != shapes[0] {
		return nil, fmt.Errorf("hull of unrelated shapes: %w", ErrUnsupported)
	}
	return &hullSweep{s: shapes[0], moved: tr}, nil
}

func (h *hullSweep) Evaluate(p r3.Vec) float64 {
	// Distance along the sweep is convex for convex shapes, so a golden
	// section search over the sweep parameter finds the minimum.
	const invPhi = 0.6180339887498949
	f := func(t float64) float64 {
		return h.s.Evaluate(r3.Sub(p, r3.Scale(t, h.moved.v)))
	}
	a, b := 0.0, 1.0
	c := b - (b-a)*invPhi
	d := a + (b-a)*invPhi
	fc, fd := f(c), f(d)
	for i := 0; i < 40; i++ {
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - (b-a)*invPhi
			fc = f(c)
		} else {
			a, c, fc = c, d, fd
			d = a + (b-a)*invPhi
			fd = f(d)
		}
	}
	return math.Min(math.Min(fc, fd), math.Min(f(0), f(1)))
}

func (h *hullSweep) Bounds() r3.Box {
	return r3.Box(d3.Box(h.s.Bounds()).Union(d3.Box(h.moved.Bounds())))
}

func (h *hullSweep) AppendSCAD(b []byte, depth int) []byte {
	return appendBlock(b, depth, "hull()", []Shape{h.s, h.moved})
}

func (h *hullSweep) ForEachChild(fn func(Shape) error) error {
	return forEach([]Shape{h.s, h.moved}, fn)
}

func forEach(shapes []Shape, fn func(Shape) error) error {
	for _, s := range shapes {
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}
