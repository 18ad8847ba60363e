package solid

import (
	"fmt"

	"github.com/soypat/solid/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

type translation struct {
	s Shape
	v r3.Vec
}

// NewTranslate returns s moved by v.
func NewTranslate(s Shape, v r3.Vec) (Shape, error) {
	if err := checkShapes("translate", s); err != nil {
		return nil, err
	}
	return &translation{s: s, v: v}, nil
}

func (t *translation) Evaluate(p r3.Vec) float64 {
	return t.s.Evaluate(r3.Sub(p, t.v))
}

func (t *translation) Bounds() r3.Box {
	return r3.Box(d3.Box(t.s.Bounds()).Translate(t.v))
}

func (t *translation) AppendSCAD(b []byte, depth int) []byte {
	b = appendIndent(b, depth)
	b = append(b, "translate(v = "...)
	b = AppendVec(b, t.v)
	b = append(b, ") "...)
	return appendChildren(b, depth, []Shape{t.s})
}

func (t *translation) ForEachChild(fn func(Shape) error) error { return fn(t.s) }

type rotation struct {
	s   Shape
	deg r3.Vec
	t   d3.Transform
	inv d3.Transform
}

// NewRotate returns s rotated about the origin by deg.X degrees about the X
// axis, then deg.Y about Y and finally deg.Z about Z.
func NewRotate(s Shape, deg r3.Vec) (Shape, error) {
	if err := checkShapes("rotate", s); err != nil {
		return nil, err
	}
	t := d3.EulerXYZ(deg)
	return &rotation{s: s, deg: deg, t: t, inv: t.Inv()}, nil
}

func (r *rotation) Evaluate(p r3.Vec) float64 {
	return r.s.Evaluate(r.inv.Transform(p))
}

func (r *rotation) Bounds() r3.Box {
	return r3.Box(r.t.ApplyBox(d3.Box(r.s.Bounds())))
}

func (r *rotation) AppendSCAD(b []byte, depth int) []byte {
	b = appendIndent(b, depth)
	b = append(b, "rotate(a = "...)
	b = AppendVec(b, r.deg)
	b = append(b, ") "...)
	return appendChildren(b, depth, []Shape{r.s})
}

func (r *rotation) ForEachChild(fn func(Shape) error) error { return fn(r.s) }

type scaling struct {
	s Shape
	k float64
}

// NewScale returns s scaled uniformly about the origin by k.
func NewScale(s Shape, k float64) (Shape, error) {
	if err := checkShapes("scale", s); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("scale factor %g: %w", k, ErrNonPositive)
	}
	return &scaling{s: s, k: k}, nil
}

func (sc *scaling) Evaluate(p r3.Vec) float64 {
	return sc.s.Evaluate(r3.Scale(1/sc.k, p)) * sc.k
}

func (sc *scaling) Bounds() r3.Box {
	bb := sc.s.Bounds()
	return r3.Box{Min: r3.Scale(sc.k, bb.Min), Max: r3.Scale(sc.k, bb.Max)}
}

func (sc *scaling) AppendSCAD(b []byte, depth int) []byte {
	b = appendIndent(b, depth)
	b = append(b, "scale(v = "...)
	b = AppendVec(b, d3.Elem(sc.k))
	b = append(b, ") "...)
	return appendChildren(b, depth, []Shape{sc.s})
}

func (sc *scaling) ForEachChild(fn func(Shape) error) error { return fn(sc.s) }
