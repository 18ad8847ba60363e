package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

const (
	stlHeaderSize   = 84
	stlTriangleSize = 50
)

// ErrNormalMismatch is returned by ReadSTL when stored normals disagree with
// the normals calculated from the vertices. The triangles are still returned
// since high resolution models may trigger it on valid data.
var ErrNormalMismatch = errors.New("STL triangle normal does not match vertex winding")

// ErrEmptyMesh is returned when there are no triangles to write, usually
// because the mesh cells are coarser than the thinnest wall of the model.
var ErrEmptyMesh = errors.New("mesh has no triangles")

// CreateSTL renders triangles from r into a binary STL file at path and
// returns the number of triangles written.
func CreateSTL(path string, r Renderer) (int, error) {
	fp, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := writeSTLFile(fp, r)
	if errClose := fp.Close(); err == nil {
		err = errClose
	}
	if err != nil {
		return n, fmt.Errorf("writing %s: %w", path, err)
	}
	logger().Debug("wrote stl", "path", path, "triangles", n)
	return n, nil
}

func writeSTLFile(fp *os.File, r Renderer) (int, error) {
	// The triangle count is unknown until rendering ends, so the header is written last.
	if _, err := fp.Seek(stlHeaderSize, io.SeekStart); err != nil {
		return 0, err
	}
	bw := bufio.NewWriterSize(fp, 64*1024)
	n, err := writeTriangles(bw, r)
	if err != nil {
		return n, err
	}
	if err = bw.Flush(); err != nil {
		return n, err
	}
	if n == 0 {
		return 0, ErrEmptyMesh
	}
	if _, err = fp.Seek(0, io.SeekStart); err != nil {
		return n, err
	}
	var hdr [stlHeaderSize]byte
	stlHeader{Count: uint32(n)}.put(hdr[:])
	_, err = fp.Write(hdr[:])
	return n, err
}

// WriteSTL writes model to w in binary STL format.
func WriteSTL(w io.Writer, model []Triangle3) error {
	if len(model) == 0 {
		return ErrEmptyMesh
	}
	if int64(len(model)) > math.MaxUint32 {
		return errors.New("amount of triangles in model exceeds STL design limits")
	}
	var hdr [stlHeaderSize]byte
	stlHeader{Count: uint32(len(model))}.put(hdr[:])
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := writeTriangles(w, &sliceRenderer{model: model})
	return err
}

func writeTriangles(w io.Writer, r Renderer) (n int, err error) {
	const trianglesInBuffer = 1 << 10
	tris := make([]Triangle3, trianglesInBuffer)
	buf := make([]byte, stlTriangleSize*trianglesInBuffer)
	for {
		nt, rerr := r.ReadTriangles(tris)
		for i, t := range tris[:nt] {
			newSTLTriangle(t).put(buf[i*stlTriangleSize:])
		}
		if _, err = w.Write(buf[:nt*stlTriangleSize]); err != nil {
			return n, err
		}
		n += nt
		if n > math.MaxUint32 {
			return n, errors.New("amount of triangles in model exceeds STL design limits")
		}
		if rerr == io.EOF {
			return n, nil
		} else if rerr != nil {
			return n, rerr
		}
	}
}

type sliceRenderer struct {
	model []Triangle3
}

func (s *sliceRenderer) ReadTriangles(dst []Triangle3) (int, error) {
	n := copy(dst, s.model)
	s.model = s.model[n:]
	if len(s.model) == 0 {
		return n, io.EOF
	}
	return n, nil
}

// ReadSTL reads a binary STL model from r.
func ReadSTL(r io.Reader) (output []ms3.Triangle, readErr error) {
	var hdr [stlHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("reading STL header: %w", err)
	}
	var header stlHeader
	header.get(hdr[:])
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf            [stlTriangleSize]byte
		d              stlTriangle
		i              int
		normMismatches int
	)
	defer func() {
		if readErr != nil && !errors.Is(readErr, ErrNormalMismatch) {
			readErr = fmt.Errorf("%d/%d STL triangles read: %w", i+1, header.Count, readErr)
		}
	}()
	output = make([]ms3.Triangle, 0, min(int(header.Count), 1<<20))
	for i = 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		d.get(buf[:])
		if err := d.validate(); err != nil {
			if !errors.Is(err, ErrNormalMismatch) {
				return nil, err
			}
			normMismatches++
			readErr = fmt.Errorf("%d triangles: %w", normMismatches, ErrNormalMismatch)
		}
		output = append(output, d.Triangle())
	}
	return output, readErr
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

func (h stlHeader) put(b []byte) {
	_ = b[83] // early bounds check
	binary.LittleEndian.PutUint32(b[80:], h.Count)
}

func (h *stlHeader) get(b []byte) {
	_ = b[83] // early bounds check
	h.Count = binary.LittleEndian.Uint32(b[80:])
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

func newSTLTriangle(t Triangle3) stlTriangle {
	tri := ms3.Triangle{vec32(t[0].X, t[0].Y, t[0].Z), vec32(t[1].X, t[1].Y, t[1].Z), vec32(t[2].X, t[2].Y, t[2].Z)}
	// Normals are taken from the float64 triangle since small triangles lose
	// precision in float32.
	n := t.Normal()
	return stlTriangle{
		Normal:  [3]float32{float32(n.X), float32(n.Y), float32(n.Z)},
		Vertex1: [3]float32{tri[0].X, tri[0].Y, tri[0].Z},
		Vertex2: [3]float32{tri[1].X, tri[1].Y, tri[1].Z},
		Vertex3: [3]float32{tri[2].X, tri[2].Y, tri[2].Z},
	}
}

func vec32(x, y, z float64) ms3.Vec {
	return ms3.Vec{X: float32(x), Y: float32(y), Z: float32(z)}
}

func (t stlTriangle) put(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0) // Zero out attributes.
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
	// no attributes supported yet.
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

func (t stlTriangle) validate() error {
	const normTol = 5e-2
	if bad3F32(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	tri := t.Triangle()
	if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
		return errors.New("triangle is degenerate")
	}
	calcNormal := t.normalFromVertices()
	calcNormalNeg := [3]float32{-calcNormal[0], -calcNormal[1], -calcNormal[2]}
	if !equalWithin3F32(calcNormal, t.Normal, normTol) && !equalWithin3F32(calcNormalNeg, t.Normal, normTol) {
		return ErrNormalMismatch
	}
	return nil
}

func vecFromArray(f [3]float32) ms3.Vec {
	return ms3.Vec{X: f[0], Y: f[1], Z: f[2]}
}

func (t stlTriangle) normalFromVertices() [3]float32 {
	v1 := ms3.Scale(10, vecFromArray(t.Vertex1))
	v2 := ms3.Scale(10, vecFromArray(t.Vertex2))
	v3 := ms3.Scale(10, vecFromArray(t.Vertex3))
	n := ms3.Unit(ms3.Cross(ms3.Sub(v2, v1), ms3.Sub(v3, v1)))
	return [3]float32{n.X, n.Y, n.Z}
}

func equalWithin3F32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}

// Triangle returns the triangle's vertices.
func (t stlTriangle) Triangle() ms3.Triangle {
	return ms3.Triangle{vecFromArray(t.Vertex1), vecFromArray(t.Vertex2), vecFromArray(t.Vertex3)}
}
