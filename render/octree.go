package render

import (
	"errors"
	"io"
	"math"

	"github.com/soypat/solid/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Octree renders an SDF3 with marching tetrahedra over the leaves of an
// octree. Octree cells that are provably empty are culled early using the
// distance bound of the SDF.
type Octree struct {
	dc   dc3
	todo []cube
	// Triangles generated but not yet read.
	pending []Triangle3
	off     int
}

type ivec struct {
	x, y, z int
}

func (a ivec) add(b ivec) ivec { return ivec{a.x + b.x, a.y + b.y, a.z + b.z} }

func (a ivec) addScalar(s int) ivec { return ivec{a.x + s, a.y + s, a.z + s} }

type cube struct {
	ivec      // origin of cube as integers
	n    uint // level of cube, size = 1 << n
}

// boundsGrowth is the fraction of the longest side added around the bounds
// so that no surface lies on the octree boundary.
const boundsGrowth = 0.01

// MinCells returns the smallest meshCells for which the sampling grid of
// NewOctreeRenderer steps at most half of thickness, so every wall at least
// that thick holds grid points. Coarser meshes may step over walls and drop
// them from the mesh.
func MinCells(s SDF3, thickness float64) int {
	longAxis := d3.Max(d3.Box(s.Bounds()).Size()) * (1 + 2*boundsGrowth)
	if !(thickness > 0) {
		return 2
	}
	// A leaf cube side is longAxis/meshCells.
	return max(2, int(math.Ceil(2*longAxis/thickness)))
}

// NewOctreeRenderer returns a renderer that splits the longest side of the
// bounding box of s into meshCells cells.
func NewOctreeRenderer(s SDF3, meshCells int) (*Octree, error) {
	if meshCells < 2 {
		return nil, errors.New("meshCells must be 2 or larger")
	}
	bb := d3.Box(s.Bounds())
	longAxis := d3.Max(bb.Size())
	if !(longAxis > 0) || math.IsInf(longAxis, 0) {
		return nil, errors.New("SDF3 bounds must have finite positive size")
	}
	// Grow the bounding box to make sure the boundaries aren't on the object surface.
	bb = bb.Grow(boundsGrowth * longAxis)
	longAxis = d3.Max(bb.Size())
	// The smallest cube (level 1) spans two resolution steps so that its
	// center lies on the integer grid.
	resolution := 0.5 * longAxis / float64(meshCells)
	levels := uint(math.Ceil(math.Log2(longAxis/resolution))) + 1

	logger().Debug("octree configured", "cells", meshCells, "resolution", resolution, "levels", levels, "bounds", bb)
	return &Octree{
		dc:   newDc3(s, bb.Min, resolution, levels),
		todo: []cube{{n: levels - 1}}, // process the octree, start at the top level
	}, nil
}

// ReadTriangles writes triangles rendered from the model into dst.
// It returns the number of triangles written and io.EOF once the model is fully rendered.
func (oc *Octree) ReadTriangles(dst []Triangle3) (n int, err error) {
	if len(dst) == 0 {
		return 0, io.ErrShortBuffer
	}
	for n < len(dst) {
		if oc.off < len(oc.pending) {
			k := copy(dst[n:], oc.pending[oc.off:])
			oc.off += k
			n += k
			continue
		}
		if len(oc.todo) == 0 {
			return n, io.EOF
		}
		last := len(oc.todo) - 1
		c := oc.todo[last]
		oc.todo = oc.todo[:last]
		oc.pending = oc.pending[:0]
		oc.off = 0
		oc.processCube(c)
	}
	return n, nil
}

// processCube generates triangles for a leaf cube or queues its non-empty sub cubes.
func (oc *Octree) processCube(c cube) {
	if c.n == 1 {
		// this cube is at the required resolution
		var corners [8]r3.Vec
		var values [8]float64
		for i, off := range cubeCorners {
			corners[i], values[i] = oc.dc.evaluate(c.add(off))
		}
		oc.pending = marchCube(oc.pending, &corners, &values)
		return
	}
	n := c.n - 1
	s := 1 << n
	for _, off := range cubeCorners {
		sub := cube{c.add(ivec{off.x / 2 * s, off.y / 2 * s, off.z / 2 * s}), n}
		if !oc.dc.isEmpty(sub) {
			oc.todo = append(oc.todo, sub)
		}
	}
}

// cubeCorners are the corner offsets of a level 1 cube.
var cubeCorners = [8]ivec{
	{0, 0, 0}, {2, 0, 0}, {2, 2, 0}, {0, 2, 0},
	{0, 0, 2}, {2, 0, 2}, {2, 2, 2}, {0, 2, 2},
}

// dc3 is a distance cache for SDF3 evaluations on the octree's integer grid.
// Neighbouring cubes share corners so most evaluations are served from the cache.
type dc3 struct {
	cache      map[ivec]float64
	origin     r3.Vec    // origin of the overall bounding cube
	resolution float64   // size of a grid step
	hdiag      []float64 // lookup table of cube half diagonals
	s          SDF3
}

func newDc3(s SDF3, origin r3.Vec, resolution float64, levels uint) dc3 {
	dc := dc3{
		origin:     origin,
		resolution: resolution,
		hdiag:      make([]float64, levels),
		s:          s,
		cache:      make(map[ivec]float64),
	}
	for i := range dc.hdiag {
		side := float64(int(1)<<uint(i)) * resolution
		dc.hdiag[i] = 0.5 * math.Sqrt(3*side*side)
	}
	return dc
}

func (dc *dc3) evaluate(vi ivec) (r3.Vec, float64) {
	v := r3.Add(dc.origin, r3.Scale(dc.resolution, r3.Vec{X: float64(vi.x), Y: float64(vi.y), Z: float64(vi.z)}))
	if dist, ok := dc.cache[vi]; ok {
		return v, dist
	}
	dist := dc.s.Evaluate(v)
	dc.cache[vi] = dist
	return v, dist
}

// isEmpty reports whether the cube is guaranteed to contain no surface.
func (dc *dc3) isEmpty(c cube) bool {
	_, d := dc.evaluate(c.addScalar(1 << (c.n - 1)))
	return math.Abs(d) >= dc.hdiag[c.n]
}
