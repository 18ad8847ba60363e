// Package preview renders STL files to PNG images for a quick look at a part.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the camera and output image of a preview.
// The model is fit into a bi-unit cube centered at the origin before rendering.
type View struct {
	// what position (point) to look at
	LookAt r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	Eye  r3.Vec
	Far  float64
	Near float64
	// Output size in pixels.
	Width, Height int
	// Supersampling factor used for antialiasing.
	Supersample int
	// Colors as hex strings.
	Color, Background string
}

// DefaultView is an isometric view of the model.
func DefaultView() View {
	return View{
		Up:          r3.Vec{Z: 1},
		Eye:         r3.Vec{X: 2.4, Y: 2.4, Z: 2.4},
		Near:        1,
		Far:         10,
		Width:       768,
		Height:      432,
		Supersample: 4,
		Color:       "#468966",
		Background:  "#FFF8E3",
	}
}

// STLToPNG renders the STL file at stlPath and saves it as a PNG at pngPath.
func STLToPNG(stlPath, pngPath string, v View) error {
	img, err := RenderSTL(stlPath, v)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(pngPath, img)
}

// WritePNG renders the STL file at stlPath and writes it PNG encoded to w.
func WritePNG(w io.Writer, stlPath string, v View) error {
	img, err := RenderSTL(stlPath, v)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// RenderSTL renders the STL file at stlPath as seen from v.
func RenderSTL(stlPath string, v View) (image.Image, error) {
	if v.Width <= 0 || v.Height <= 0 {
		return nil, errors.New("preview size must be positive")
	}
	if v.Supersample < 1 {
		v.Supersample = 1
	}
	if _, err := os.Stat(stlPath); err != nil {
		return nil, err
	}
	mesh, err := fauxgl.LoadSTL(stlPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", stlPath, err)
	}
	const fovy = 30 // vertical field of view in degrees
	var (
		eye    = fauxgl.V(v.Eye.X, v.Eye.Y, v.Eye.Z)
		center = fauxgl.V(v.LookAt.X, v.LookAt.Y, v.LookAt.Z)
		up     = fauxgl.V(v.Up.X, v.Up.Y, v.Up.Z)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
	)
	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	context := fauxgl.NewContext(v.Width*v.Supersample, v.Height*v.Supersample)
	context.ClearColorBufferWith(fauxgl.HexColor(v.Background))
	aspect := float64(v.Width) / float64(v.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, v.Near, v.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor(v.Color)
	context.Shader = shader
	context.DrawMesh(mesh)
	// downsample image for antialiasing
	img := context.Image()
	if v.Supersample > 1 {
		img = resize.Resize(uint(v.Width), uint(v.Height), img, resize.Bilinear)
	}
	return img, nil
}
