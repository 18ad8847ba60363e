package solid

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Builder constructs shapes while keeping track of the first error found.
// After an error every method returns nil and Err reports the failure,
// so a part can be described without checking each step.
//
//	var bld solid.Builder
//	box := bld.Cube(10, 10, 2)
//	hole := bld.Translate(bld.Cylinder(2, 1, 0), 5, 5, 0)
//	part := bld.Difference(box, hole)
//	if err := bld.Err(); err != nil {
//		return nil, err
//	}
type Builder struct {
	err error
}

// Err returns the first error encountered by the Builder.
func (bld *Builder) Err() error { return bld.err }

func (bld *Builder) keep(s Shape, err error) Shape {
	if err != nil {
		bld.err = err
		return nil
	}
	return s
}

func (bld *Builder) Cube(x, y, z float64) Shape {
	if bld.err != nil {
		return nil
	}
	return bld.keep(NewCube(x, y, z))
}

func (bld *Builder) Sphere(r float64) Shape {
	if bld.err != nil {
		return nil
	}
	return bld.keep(NewSphere(r))
}

// Cylinder see [NewCylinder].
func (bld *Builder) Cylinder(h, r float64, segments int) Shape {
	if bld.err != nil {
		return nil
	}
	return bld.keep(NewCylinder(h, r, segments))
}

func (bld *Builder) Union(shapes ...Shape) Shape {
	if bld.err != nil {
		return nil
	}
	return bld.keep(NewUnion(shapes...))
}

func (bld *Builder) Difference(base Shape, sub ...Shape) Shape {
	if bld.err != nil {
		return nil
	}
	return bld.keep(NewDifference(base, sub...))
}

func (bld *Builder) Intersection(shapes ...Shape) Shape {
	if bld.err != nil {
		return nil
	}
	return bld.keep(NewIntersection(shapes...))
}

// Minkowski rounds s with a sphere of radius r.
func (bld *Builder) Minkowski(s Shape, r float64) Shape {
	round := bld.Sphere(r)
	if bld.err != nil {
		return nil
	}
	return bld.keep(NewMinkowski(s, round))
}

// Hull returns the hull of s and a copy of s moved by (x, y, z).
func (bld *Builder) Hull(s Shape, x, y, z float64) Shape {
	moved := bld.Translate(s, x, y, z)
	if bld.err != nil {
		return nil
	}
	return bld.keep(NewHull(s, moved))
}

func (bld *Builder) Translate(s Shape, x, y, z float64) Shape {
	if bld.err != nil {
		return nil
	}
	return bld.keep(NewTranslate(s, r3.Vec{X: x, Y: y, Z: z}))
}

// Up moves s by z along the Z axis.
func (bld *Builder) Up(s Shape, z float64) Shape { return bld.Translate(s, 0, 0, z) }

// Right moves s by x along the X axis.
func (bld *Builder) Right(s Shape, x float64) Shape { return bld.Translate(s, x, 0, 0) }

// Rotate see [NewRotate]. Angles are in degrees.
func (bld *Builder) Rotate(s Shape, ax, ay, az float64) Shape {
	if bld.err != nil {
		return nil
	}
	return bld.keep(NewRotate(s, r3.Vec{X: ax, Y: ay, Z: az}))
}

func (bld *Builder) Scale(s Shape, k float64) Shape {
	if bld.err != nil {
		return nil
	}
	return bld.keep(NewScale(s, k))
}
