package d3

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestEulerXYZ(t *testing.T) {
	const tol = 1e-15
	for _, test := range []struct {
		deg  r3.Vec
		in   r3.Vec
		want r3.Vec
	}{
		{deg: r3.Vec{X: 90}, in: r3.Vec{Z: 1}, want: r3.Vec{Y: -1}},
		{deg: r3.Vec{X: 90}, in: r3.Vec{Y: 1}, want: r3.Vec{Z: 1}},
		{deg: r3.Vec{Y: -90}, in: r3.Vec{Z: 1}, want: r3.Vec{X: -1}},
		{deg: r3.Vec{Y: -90}, in: r3.Vec{X: 1}, want: r3.Vec{Z: 1}},
		{deg: r3.Vec{Z: 180}, in: r3.Vec{X: 1, Y: 2}, want: r3.Vec{X: -1, Y: -2}},
		// X first and then Z: the Z axis ends up pointing along +X.
		{deg: r3.Vec{X: 90, Z: 90}, in: r3.Vec{Z: 1}, want: r3.Vec{X: 1}},
		{deg: r3.Vec{X: 90, Z: 90}, in: r3.Vec{Y: 1}, want: r3.Vec{Z: 1}},
		{deg: r3.Vec{X: 90, Z: -90}, in: r3.Vec{Z: 1}, want: r3.Vec{X: -1}},
	} {
		got := EulerXYZ(test.deg).Transform(test.in)
		if !EqualWithin(got, test.want, tol) {
			t.Errorf("rotate %v of %v: got %v, want %v", test.deg, test.in, got, test.want)
		}
	}
}

func TestTransformInverse(t *testing.T) {
	tf := EulerXYZ(r3.Vec{X: 12, Y: -33, Z: 71}).Translate(r3.Vec{X: 1, Y: -2, Z: 3}).Mul(Scaling(2))
	if !tf.Inv().Mul(tf).Equals(Transform{}, 1e-12) {
		t.Error("inverse times transform is not the identity")
	}
	p := r3.Vec{X: 0.5, Y: 4, Z: -7}
	if got := tf.Inv().Transform(tf.Transform(p)); !EqualWithin(got, p, 1e-12) {
		t.Errorf("round trip of %v got %v", p, got)
	}
	if got := Translation(r3.Vec{X: 1}).Transform(p); got != (r3.Vec{X: 1.5, Y: 4, Z: -7}) {
		t.Errorf("translation got %v", got)
	}
}

func TestApplyBox(t *testing.T) {
	b := Box{Max: r3.Vec{X: 1, Y: 2, Z: 3}}
	got := RotationZ(90).ApplyBox(b)
	want := Box{Min: r3.Vec{X: -2}, Max: r3.Vec{Y: 1, Z: 3}}
	if !got.Equals(want, 1e-15) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
