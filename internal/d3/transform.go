package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is an affine 3D transformation stored as a 3x3 linear part
// followed by a translation column.
// The zero value of Transform is the identity transform.
type Transform struct {
	// The diagonal is stored with the identity subtracted so that the zero value
	// is the identity:
	//  d00 = x00-1, d11 = x11-1, d22 = x22-1
	d00, x01, x02, x03 float64
	x10, d11, x12, x13 float64
	x20, x21, d22, x23 float64
}

// NewTransform returns a Transform populated with the 12 values of the top
// three rows of a row-major 4x4 affine matrix.
func NewTransform(a []float64) Transform {
	if len(a) != 12 {
		panic("Transform is initialized with 12 values")
	}
	return Transform{
		d00: a[0] - 1, x01: a[1], x02: a[2], x03: a[3],
		x10: a[4], d11: a[5] - 1, x12: a[6], x13: a[7],
		x20: a[8], x21: a[9], d22: a[10] - 1, x23: a[11],
	}
}

// Translation returns a transform that moves points by v.
func Translation(v r3.Vec) Transform {
	return Transform{x03: v.X, x13: v.Y, x23: v.Z}
}

// Scaling returns a uniform scaling about the origin.
func Scaling(k float64) Transform {
	return Transform{d00: k - 1, d11: k - 1, d22: k - 1}
}

// RotationX returns a right handed rotation of deg degrees about the X axis.
func RotationX(deg float64) Transform {
	s, c := sincosDeg(deg)
	return NewTransform([]float64{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
	})
}

// RotationY returns a right handed rotation of deg degrees about the Y axis.
func RotationY(deg float64) Transform {
	s, c := sincosDeg(deg)
	return NewTransform([]float64{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
	})
}

// RotationZ returns a right handed rotation of deg degrees about the Z axis.
func RotationZ(deg float64) Transform {
	s, c := sincosDeg(deg)
	return NewTransform([]float64{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
	})
}

// EulerXYZ returns the rotation that first rotates about X by a.X,
// then about Y by a.Y and last about Z by a.Z, all about fixed axes and in degrees.
func EulerXYZ(a r3.Vec) Transform {
	return RotationZ(a.Z).Mul(RotationY(a.Y)).Mul(RotationX(a.X))
}

// sincosDeg is math.Sincos in degrees with exact values at multiples of 90.
func sincosDeg(deg float64) (s, c float64) {
	if q := deg / 90; q == math.Trunc(q) {
		switch int(math.Mod(math.Mod(q, 4)+4, 4)) {
		case 0:
			return 0, 1
		case 1:
			return 1, 0
		case 2:
			return 0, -1
		default:
			return -1, 0
		}
	}
	return math.Sincos(deg * math.Pi / 180)
}

// Transform applies the Transform to v.
func (t Transform) Transform(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: (t.d00+1)*v.X + t.x01*v.Y + t.x02*v.Z + t.x03,
		Y: t.x10*v.X + (t.d11+1)*v.Y + t.x12*v.Z + t.x13,
		Z: t.x20*v.X + t.x21*v.Y + (t.d22+1)*v.Z + t.x23,
	}
}

// Translate returns t followed by a translation of v.
func (t Transform) Translate(v r3.Vec) Transform {
	t.x03 += v.X
	t.x13 += v.Y
	t.x23 += v.Z
	return t
}

// Mul returns the transform equivalent to applying b and then t.
func (t Transform) Mul(b Transform) Transform {
	if t == (Transform{}) {
		return b
	}
	if b == (Transform{}) {
		return t
	}
	x00, x11, x22 := t.d00+1, t.d11+1, t.d22+1
	y00, y11, y22 := b.d00+1, b.d11+1, b.d22+1
	var m Transform
	m.d00 = x00*y00 + t.x01*b.x10 + t.x02*b.x20 - 1
	m.x01 = x00*b.x01 + t.x01*y11 + t.x02*b.x21
	m.x02 = x00*b.x02 + t.x01*b.x12 + t.x02*y22
	m.x03 = x00*b.x03 + t.x01*b.x13 + t.x02*b.x23 + t.x03

	m.x10 = t.x10*y00 + x11*b.x10 + t.x12*b.x20
	m.d11 = t.x10*b.x01 + x11*y11 + t.x12*b.x21 - 1
	m.x12 = t.x10*b.x02 + x11*b.x12 + t.x12*y22
	m.x13 = t.x10*b.x03 + x11*b.x13 + t.x12*b.x23 + t.x13

	m.x20 = t.x20*y00 + t.x21*b.x10 + x22*b.x20
	m.x21 = t.x20*b.x01 + t.x21*y11 + x22*b.x21
	m.d22 = t.x20*b.x02 + t.x21*b.x12 + x22*y22 - 1
	m.x23 = t.x20*b.x03 + t.x21*b.x13 + x22*b.x23 + t.x23
	return m
}

// Det returns the determinant of the linear part of the Transform.
func (t Transform) Det() float64 {
	x00, x11, x22 := t.d00+1, t.d11+1, t.d22+1
	return x00*(x11*x22-t.x12*t.x21) -
		t.x01*(t.x10*x22-t.x12*t.x20) +
		t.x02*(t.x10*t.x21-x11*t.x20)
}

// Inv returns the inverse of the transform such that
// t.Inv().Mul(t) is the identity Transform.
// Inv panics if the transform is singular.
func (t Transform) Inv() Transform {
	if t == (Transform{}) {
		return t
	}
	det := t.Det()
	if math.Abs(det) < 1e-16 {
		panic("singular transform")
	}
	d := 1 / det
	x00, x11, x22 := t.d00+1, t.d11+1, t.d22+1
	i00 := (x11*x22 - t.x12*t.x21) * d
	i01 := (t.x02*t.x21 - t.x01*x22) * d
	i02 := (t.x01*t.x12 - t.x02*x11) * d
	i10 := (t.x12*t.x20 - t.x10*x22) * d
	i11 := (x00*x22 - t.x02*t.x20) * d
	i12 := (t.x02*t.x10 - x00*t.x12) * d
	i20 := (t.x10*t.x21 - x11*t.x20) * d
	i21 := (t.x01*t.x20 - x00*t.x21) * d
	i22 := (x00*x11 - t.x01*t.x10) * d
	return Transform{
		d00: i00 - 1, x01: i01, x02: i02, x03: -(i00*t.x03 + i01*t.x13 + i02*t.x23),
		x10: i10, d11: i11 - 1, x12: i12, x13: -(i10*t.x03 + i11*t.x13 + i12*t.x23),
		x20: i20, x21: i21, d22: i22 - 1, x23: -(i20*t.x03 + i21*t.x13 + i22*t.x23),
	}
}

// ApplyBox returns the axis aligned box enclosing the transformed corners of b.
func (t Transform) ApplyBox(b Box) Box {
	v := b.Vertices()
	out := Box{Min: t.Transform(v[0]), Max: t.Transform(v[0])}
	for _, p := range v[1:] {
		out = out.Include(t.Transform(p))
	}
	return out
}

// Equals tests the equality of the Transforms to within a tolerance.
func (t Transform) Equals(b Transform, tolerance float64) bool {
	ta, tb := t.SliceCopy(), b.SliceCopy()
	for i := range ta {
		if math.Abs(ta[i]-tb[i]) > tolerance {
			return false
		}
	}
	return true
}

// SliceCopy returns the 12 values of the Transform in row major order.
func (t Transform) SliceCopy() []float64 {
	return []float64{
		t.d00 + 1, t.x01, t.x02, t.x03,
		t.x10, t.d11 + 1, t.x12, t.x13,
		t.x20, t.x21, t.d22 + 1, t.x23,
	}
}
