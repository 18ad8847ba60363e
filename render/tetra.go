package render

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// cubeTetrahedra splits a cube into six tetrahedra sharing the diagonal from
// corner 0 to corner 6. Faces of adjacent cubes are split along the same
// diagonal so the resulting surface is watertight.
var cubeTetrahedra = [6][4]uint8{
	{0, 6, 1, 2},
	{0, 6, 2, 3},
	{0, 6, 3, 7},
	{0, 6, 7, 4},
	{0, 6, 4, 5},
	{0, 6, 5, 1},
}

func marchCube(dst []Triangle3, corners *[8]r3.Vec, values *[8]float64) []Triangle3 {
	var inside uint8
	for i, v := range values {
		if v < 0 {
			inside |= 1 << i
		}
	}
	if inside == 0 || inside == 0xff {
		return dst
	}
	for _, tet := range cubeTetrahedra {
		var p [4]r3.Vec
		var d [4]float64
		for i, c := range tet {
			p[i], d[i] = corners[c], values[c]
		}
		dst = marchTetrahedron(dst, &p, &d)
	}
	return dst
}

func marchTetrahedron(dst []Triangle3, p *[4]r3.Vec, d *[4]float64) []Triangle3 {
	var in, out [4]int
	var nin, nout int
	for i := range d {
		if d[i] < 0 {
			in[nin] = i
			nin++
		} else {
			out[nout] = i
			nout++
		}
	}
	edge := func(i, o int) r3.Vec {
		// i is inside and o outside, so d[i] < 0 <= d[o].
		t := d[i] / (d[i] - d[o])
		return r3.Add(p[i], r3.Scale(t, r3.Sub(p[o], p[i])))
	}
	switch nin {
	case 1:
		i := in[0]
		ref := r3.Sub(p[out[0]], p[i])
		dst = appendOriented(dst, Triangle3{edge(i, out[0]), edge(i, out[1]), edge(i, out[2])}, ref)
	case 3:
		o := out[0]
		ref := r3.Sub(p[o], p[in[0]])
		dst = appendOriented(dst, Triangle3{edge(in[0], o), edge(in[1], o), edge(in[2], o)}, ref)
	case 2:
		i, j := in[0], in[1]
		a, b := out[0], out[1]
		ref := r3.Sub(r3.Add(p[a], p[b]), r3.Add(p[i], p[j]))
		ia, ib, jb, ja := edge(i, a), edge(i, b), edge(j, b), edge(j, a)
		dst = appendOriented(dst, Triangle3{ia, ib, jb}, ref)
		dst = appendOriented(dst, Triangle3{ia, jb, ja}, ref)
	}
	return dst
}

// appendOriented appends t with its winding flipped if needed so its normal
// points along ref. Triangles that are degenerate in single precision are dropped.
func appendOriented(dst []Triangle3, t Triangle3, ref r3.Vec) []Triangle3 {
	n := t.cross()
	if r3.Norm2(n) < 1e-24 || degenerate32(t) {
		return dst
	}
	if r3.Dot(n, ref) < 0 {
		t[1], t[2] = t[2], t[1]
	}
	return append(dst, t)
}

func degenerate32(t Triangle3) bool {
	a := vec32(t[0].X, t[0].Y, t[0].Z)
	b := vec32(t[1].X, t[1].Y, t[1].Z)
	c := vec32(t[2].X, t[2].Y, t[2].Z)
	return a == b || b == c || a == c
}
