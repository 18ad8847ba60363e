package solid

import (
	"fmt"
	"math"

	"github.com/soypat/solid/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

type cube struct {
	size r3.Vec
}

// NewCube returns an axis aligned box with one corner on the origin and the
// opposite corner at (x, y, z).
func NewCube(x, y, z float64) (Shape, error) {
	size := r3.Vec{X: x, Y: y, Z: z}
	if d3.LTEZero(size) {
		return nil, fmt.Errorf("cube %v: %w", size, ErrNonPositive)
	}
	return &cube{size: size}, nil
}

func (c *cube) Evaluate(p r3.Vec) float64 {
	half := r3.Scale(0.5, c.size)
	q := r3.Sub(d3.AbsElem(r3.Sub(p, half)), half)
	return r3.Norm(d3.MaxElem(q, r3.Vec{})) + math.Min(d3.Max(q), 0)
}

func (c *cube) Bounds() r3.Box {
	return r3.Box{Max: c.size}
}

func (c *cube) AppendSCAD(b []byte, depth int) []byte {
	b = appendIndent(b, depth)
	b = append(b, "cube(size = "...)
	b = AppendVec(b, c.size)
	return append(b, ");\n"...)
}

func (c *cube) ForEachChild(fn func(Shape) error) error { return noChildren(fn) }

type sphere struct {
	r float64
}

// NewSphere returns a sphere of radius r centered on the origin.
func NewSphere(r float64) (Shape, error) {
	if r <= 0 {
		return nil, fmt.Errorf("sphere radius %g: %w", r, ErrNonPositive)
	}
	return &sphere{r: r}, nil
}

func (s *sphere) Evaluate(p r3.Vec) float64 {
	return r3.Norm(p) - s.r
}

func (s *sphere) Bounds() r3.Box {
	return r3.Box(d3.CenteredBox(r3.Vec{}, d3.Elem(2*s.r)))
}

func (s *sphere) AppendSCAD(b []byte, depth int) []byte {
	b = appendIndent(b, depth)
	b = append(b, "sphere(r = "...)
	b = AppendFloat(b, s.r)
	return append(b, ");\n"...)
}

func (s *sphere) ForEachChild(fn func(Shape) error) error { return noChildren(fn) }

type cylinder struct {
	h, r     float64
	segments int
	// Regular polygon prism parameters.
	apothem  float64
	halfEdge float64
	sector   float64
}

// NewCylinder returns a cylinder of height h and radius r standing on the XY
// plane along +Z. With segments >= 3 the cylinder is a regular polygon prism
// with circumradius r and a vertex on the +X axis. With segments 0 the
// cylinder is round and its faceting is left to the file's $fn setting.
func NewCylinder(h, r float64, segments int) (Shape, error) {
	switch {
	case h <= 0 || r <= 0:
		return nil, fmt.Errorf("cylinder h=%g r=%g: %w", h, r, ErrNonPositive)
	case segments < 0 || segments == 1 || segments == 2:
		return nil, fmt.Errorf("cylinder segments=%d: %w", segments, ErrBadSegments)
	}
	c := &cylinder{h: h, r: r, segments: segments}
	if segments > 0 {
		n := float64(segments)
		c.apothem = r * math.Cos(pi/n)
		c.halfEdge = r * math.Sin(pi/n)
		c.sector = tau / n
	}
	return c, nil
}

func (c *cylinder) Evaluate(p r3.Vec) float64 {
	var d2 float64
	if c.segments == 0 {
		d2 = math.Hypot(p.X, p.Y) - c.r
	} else {
		d2 = c.polygonDistance(p.X, p.Y)
	}
	dz := math.Abs(p.Z-c.h/2) - c.h/2
	return math.Min(math.Max(d2, dz), 0) + math.Hypot(math.Max(d2, 0), math.Max(dz, 0))
}

// polygonDistance returns the signed distance to the regular polygon in the XY plane.
func (c *cylinder) polygonDistance(x, y float64) float64 {
	theta := math.Atan2(y, x)
	k := math.Floor(theta / c.sector)
	sin, cos := math.Sincos((k + 0.5) * c.sector)
	// Rotate the point so the nearest edge normal lies along +X.
	qx := x*cos + y*sin
	qy := -x*sin + y*cos
	qy -= Clamp(qy, -c.halfEdge, c.halfEdge)
	return math.Hypot(qx-c.apothem, qy) * Sign(qx-c.apothem)
}

func (c *cylinder) Bounds() r3.Box {
	if c.segments == 0 {
		return r3.Box{
			Min: r3.Vec{X: -c.r, Y: -c.r},
			Max: r3.Vec{X: c.r, Y: c.r, Z: c.h},
		}
	}
	var bb d3.Box
	for i := 0; i < c.segments; i++ {
		sin, cos := math.Sincos(float64(i) * c.sector)
		v := r3.Vec{X: c.r * cos, Y: c.r * sin}
		if i == 0 {
			bb = d3.Box{Min: v, Max: v}
		}
		bb = bb.Include(v)
	}
	bb.Max.Z = c.h
	return r3.Box(bb)
}

func (c *cylinder) AppendSCAD(b []byte, depth int) []byte {
	b = appendIndent(b, depth)
	b = append(b, "cylinder("...)
	if c.segments > 0 {
		b = append(b, "$fn = "...)
		b = appendInt(b, c.segments)
		b = append(b, ", "...)
	}
	b = append(b, "h = "...)
	b = AppendFloat(b, c.h)
	b = append(b, ", r = "...)
	b = AppendFloat(b, c.r)
	return append(b, ");\n"...)
}

func (c *cylinder) ForEachChild(fn func(Shape) error) error { return noChildren(fn) }
