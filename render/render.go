// Package render meshes signed distance functions into triangles and
// writes them as binary STL.
package render

import (
	"io"

	"gonum.org/v1/gonum/spatial/r3"
)

// SDF3 is a 3D signed distance function with finite bounds.
type SDF3 interface {
	// Evaluate returns the signed distance from p to the surface.
	// The distance is negative inside the object.
	Evaluate(p r3.Vec) float64
	// Bounds returns a box containing the whole object.
	Bounds() r3.Box
}

// Renderer produces a stream of triangles.
type Renderer interface {
	// ReadTriangles writes rendered triangles into dst and returns how many were written.
	// It returns io.EOF once all triangles have been read.
	ReadTriangles(dst []Triangle3) (int, error)
}

// Triangle3 is a triangle in 3D space. Its vertices are ordered counter
// clockwise when seen from the side its normal points to.
type Triangle3 [3]r3.Vec

// Normal returns the unit normal of the triangle following the right hand rule.
func (t Triangle3) Normal() r3.Vec {
	return r3.Unit(t.cross())
}

func (t Triangle3) cross() r3.Vec {
	return r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
}

// Centroid returns the mean of the triangle's vertices.
func (t Triangle3) Centroid() r3.Vec {
	return r3.Scale(1./3, r3.Add(r3.Add(t[0], t[1]), t[2]))
}

// RenderAll reads all triangles from r.
func RenderAll(r Renderer) ([]Triangle3, error) {
	const bufSize = 1 << 10
	var (
		model []Triangle3
		buf   = make([]Triangle3, bufSize)
	)
	for {
		n, err := r.ReadTriangles(buf)
		model = append(model, buf[:n]...)
		if err == io.EOF {
			return model, nil
		}
		if err != nil {
			return model, err
		}
	}
}
