// Package solid builds constructive solid geometry trees of primitive shapes
// that can be written out as OpenSCAD source and evaluated as signed distance
// functions for meshing.
package solid

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrNonPositive = errors.New("dimension must be positive")
	ErrBadSegments = errors.New("segment count must be zero or at least 3")
	ErrNilShape    = errors.New("nil shape")
	ErrUnsupported = errors.New("unsupported operation")
)

// Shape is a node of a CSG tree.
type Shape interface {
	// Evaluate takes a point in 3D space as input and returns
	// the minimum distance of the Shape to the point. The distance
	// is negative if the point is contained within the Shape.
	Evaluate(p r3.Vec) float64
	// Bounds returns the bounding box that completely contains
	// the Shape.
	Bounds() r3.Box
	// AppendSCAD appends the OpenSCAD statement of the shape, indented depth
	// levels, to b and returns the result. Operations append their children.
	AppendSCAD(b []byte, depth int) []byte
	// ForEachChild calls fn on each of the immediate children of the shape.
	ForEachChild(fn func(child Shape) error) error
}

// Walk calls fn for s and all of its descendants in depth first order.
func Walk(s Shape, fn func(s Shape, depth int) error) error {
	return walk(s, 0, fn)
}

func walk(s Shape, depth int, fn func(Shape, int) error) error {
	if s == nil {
		return ErrNilShape
	}
	if err := fn(s, depth); err != nil {
		return err
	}
	return s.ForEachChild(func(child Shape) error {
		return walk(child, depth+1, fn)
	})
}

// CountNodes returns the number of nodes in the tree rooted at s.
func CountNodes(s Shape) (n int) {
	Walk(s, func(Shape, int) error {
		n++
		return nil
	})
	return n
}

func noChildren(func(Shape) error) error { return nil }

func checkShapes(op string, shapes ...Shape) error {
	if len(shapes) == 0 {
		return fmt.Errorf("%s: %w", op, ErrNilShape)
	}
	for i, s := range shapes {
		if s == nil {
			return fmt.Errorf("%s: argument %d: %w", op, i, ErrNilShape)
		}
	}
	return nil
}
