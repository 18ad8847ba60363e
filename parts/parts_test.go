package parts

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/soypat/solid"
	"github.com/soypat/solid/render"
	"gonum.org/v1/gonum/spatial/r3"
)

const apothem6 = 0.8660254037844387 // cos(30deg)

func TestCaseDimsDefault(t *testing.T) {
	got := DefaultCaseParams().Dims()
	want := CaseDims{
		ApothemRatio:           apothem6,
		SledInternalLength:     30.2,
		SledExternalLength:     32.2,
		SledFlatInternalRadius: 11.2,
		SledFlatExternalRadius: 13.2,
		SledInternalRadius:     12.932646029847616,
		SledExternalRadius:     15.242047106606119,
		TubeExternalLength:     34.4,
		TubeFlatInternalRadius: 13.4,
		TubeFlatExternalRadius: 15.4,
		TubeInternalRadius:     15.47298721428197,
		TubeExternalRadius:     17.782388291040473,
		DoorFlatRadius:         18.4,
		WindowLength:           22.4,
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("CaseDims mismatch (-want +got):\n%s", diff)
	}
}

func TestCaseFit(t *testing.T) {
	for _, sides := range []int{6, 10, 14} {
		for _, tol := range []float64{0, 0.1, 0.35} {
			p := DefaultCaseParams()
			p.Sides = sides
			p.TubeTolerance = tol
			if err := p.Validate(); err != nil {
				t.Fatalf("sides=%d tol=%g: %v", sides, tol, err)
			}
			d := p.Dims()
			gap := d.TubeFlatInternalRadius - d.SledFlatExternalRadius
			if math.Abs(gap-tol) > 1e-12 {
				t.Errorf("sides=%d: sled to tube gap %g, want %g", sides, gap, tol)
			}
			if math.Abs(d.DoorFlatRadius-d.TubeFlatExternalRadius-p.DoorLip) > 1e-12 {
				t.Errorf("sides=%d: door lip %g, want %g", sides, d.DoorFlatRadius-d.TubeFlatExternalRadius, p.DoorLip)
			}
			if !solid.EqualFloat64(d.SledExternalRadius*d.ApothemRatio, d.SledFlatExternalRadius, 1e-12) {
				t.Errorf("sides=%d: sled circumradius inconsistent with flat radius", sides)
			}
		}
	}
}

func TestCaseOverrideLength(t *testing.T) {
	p := DefaultCaseParams()
	p.SledInternalLength = 40
	if d := p.Dims(); d.SledInternalLength != 40 || d.SledExternalLength != 42 {
		t.Errorf("override ignored: %+v", d)
	}
	p.SledInternalLength = 20 // Shorter than 10 tokens of 3mm.
	if err := p.Validate(); !errors.Is(err, ErrFit) {
		t.Errorf("want ErrFit for short sled, got %v", err)
	}
}

func TestCaseValidate(t *testing.T) {
	for _, test := range []struct {
		name   string
		modify func(p *CaseParams)
		want   error
	}{
		{name: "octagon", modify: func(p *CaseParams) { p.Sides = 8 }, want: ErrInvalidParam},
		{name: "no tokens", modify: func(p *CaseParams) { p.TokenCount = 0 }, want: ErrInvalidParam},
		{name: "negative tolerance", modify: func(p *CaseParams) { p.TubeTolerance = -0.1 }, want: ErrInvalidParam},
		{name: "thin door", modify: func(p *CaseParams) { p.DoorThickness = 1 }, want: ErrInvalidParam},
		{name: "huge margin", modify: func(p *CaseParams) { p.WindowMargin = 20 }, want: ErrFit},
		{name: "wide window", modify: func(p *CaseParams) { p.WindowWidth = 16 }, want: ErrFit},
	} {
		p := DefaultCaseParams()
		test.modify(&p)
		err := p.Validate()
		if !errors.Is(err, test.want) {
			t.Errorf("%s: want %v, got %v", test.name, test.want, err)
		}
		if _, err := Sled(p); err == nil {
			t.Errorf("%s: sled built from invalid parameters", test.name)
		}
	}
}

func TestTrayDims(t *testing.T) {
	p := DefaultTrayParams()
	got := p.Dims()
	want := TrayDims{
		OuterWidth: 100, OuterHeight: 100, InnerWidth: 96, InnerHeight: 96,
		MagnetRadius: 4, MagnetX: 50, MagnetY: 50, MagnetZ: 10,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("outer dims mismatch (-want +got):\n%s", diff)
	}

	p.Dimensions = InnerDimensions
	p.Height = 60
	p.MagnetPlacement = MagnetFixed
	got = p.Dims()
	want = TrayDims{
		OuterWidth: 104, OuterHeight: 64, InnerWidth: 100, InnerHeight: 60,
		MagnetRadius: 4, MagnetX: 52, MagnetY: 32, MagnetZ: 8,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("inner dims mismatch (-want +got):\n%s", diff)
	}
}

func TestTrayValidate(t *testing.T) {
	for _, test := range []struct {
		name   string
		modify func(p *TrayParams)
		want   error
	}{
		{name: "mode", modify: func(p *TrayParams) { p.Dimensions = "middle" }, want: ErrInvalidParam},
		{name: "placement", modify: func(p *TrayParams) { p.MagnetPlacement = "top" }, want: ErrInvalidParam},
		{name: "zero walls", modify: func(p *TrayParams) { p.Walls = 0 }, want: ErrInvalidParam},
		{name: "tiny", modify: func(p *TrayParams) { p.Width = 7 }, want: ErrInvalidParam},
		{name: "deep magnet", modify: func(p *TrayParams) { p.MagnetDepth = 2 }, want: ErrFit},
		{name: "shallow tray", modify: func(p *TrayParams) { p.Depth = 6 }, want: ErrFit},
	} {
		p := DefaultTrayParams()
		test.modify(&p)
		if err := p.Validate(); !errors.Is(err, test.want) {
			t.Errorf("%s: want %v, got %v", test.name, test.want, err)
		}
	}
}

func TestTrayGeometry(t *testing.T) {
	tray, err := Tray(DefaultTrayParams())
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		desc  string
		p     r3.Vec
		solid bool
	}{
		{desc: "floor", p: r3.Vec{X: 50, Y: 50, Z: 1}, solid: true},
		{desc: "cavity", p: r3.Vec{X: 50, Y: 50, Z: 10}},
		{desc: "side wall", p: r3.Vec{X: 1, Y: 20, Z: 10}, solid: true},
		{desc: "near wide socket", p: r3.Vec{X: 50, Y: 0.5, Z: 10}},
		{desc: "behind wide socket", p: r3.Vec{X: 50, Y: 1.5, Z: 10}, solid: true},
		{desc: "far wide socket", p: r3.Vec{X: 50, Y: 99.5, Z: 10}},
		{desc: "near high socket", p: r3.Vec{X: 0.5, Y: 50, Z: 10}},
		{desc: "far high socket", p: r3.Vec{X: 99.5, Y: 50, Z: 13}},
		{desc: "wall beside socket", p: r3.Vec{X: 99.5, Y: 50, Z: 15}, solid: true},
		{desc: "above rim", p: r3.Vec{X: 1, Y: 50, Z: 20.5}},
		{desc: "rounded corner", p: r3.Vec{X: 0.1, Y: 0.1, Z: 0.1}},
	} {
		d := tray.Evaluate(test.p)
		if test.solid != (d < 0) {
			t.Errorf("%s at %v: distance %g, want solid=%v", test.desc, test.p, d, test.solid)
		}
	}
}

func TestSledGeometry(t *testing.T) {
	sled, err := Sled(DefaultCaseParams())
	if err != nil {
		t.Fatal(err)
	}
	const center = 13.2 // Sled axis height over the bed.
	for _, test := range []struct {
		desc  string
		p     r3.Vec
		solid bool
	}{
		{desc: "bottom wall", p: r3.Vec{X: 5, Z: 0.1}, solid: true},
		{desc: "under bed", p: r3.Vec{X: 5, Z: -0.1}},
		{desc: "back wall", p: r3.Vec{X: 1, Z: center}, solid: true},
		{desc: "cavity", p: r3.Vec{X: 10, Z: center}},
		{desc: "open top", p: r3.Vec{X: 10, Y: 5, Z: center + 12.5}},
		{desc: "door", p: r3.Vec{X: 33.2, Z: center}, solid: true},
		{desc: "door lip", p: r3.Vec{X: 33.2, Z: center + 16}, solid: true},
		{desc: "door flush bottom", p: r3.Vec{X: 33.2, Z: -0.5}},
		{desc: "past door", p: r3.Vec{X: 34.5, Z: center}},
	} {
		d := sled.Evaluate(test.p)
		if test.solid != (d < 0) {
			t.Errorf("%s at %v: distance %g, want solid=%v", test.desc, test.p, d, test.solid)
		}
	}
}

func TestTubeGeometry(t *testing.T) {
	tube, err := Tube(DefaultCaseParams())
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		desc  string
		p     r3.Vec
		solid bool
	}{
		{desc: "floor", p: r3.Vec{X: 0, Y: 0, Z: 1}, solid: true},
		{desc: "bore", p: r3.Vec{X: 0, Y: 0, Z: 10}},
		{desc: "window", p: r3.Vec{X: 14.4, Y: 0, Z: 17.2}},
		{desc: "beside window", p: r3.Vec{X: 14.4, Y: 5, Z: 17.2}, solid: true},
		{desc: "below window", p: r3.Vec{X: 14.4, Y: 0, Z: 3}, solid: true},
		{desc: "opposite wall", p: r3.Vec{X: -14.4, Y: 0, Z: 17.2}, solid: true},
		{desc: "mouth", p: r3.Vec{X: 0, Y: 0, Z: 34.3}},
	} {
		d := tube.Evaluate(test.p)
		if test.solid != (d < 0) {
			t.Errorf("%s at %v: distance %g, want solid=%v", test.desc, test.p, d, test.solid)
		}
	}
}

func TestSCAD(t *testing.T) {
	cfg := DefaultConfig()
	for _, test := range []struct {
		part string
		want []string
	}{
		{part: NameTray, want: []string{
			"cube(size = [96, 96, 18]);",
			"cube(size = [92, 92, 18]);",
			"cube(size = [100, 100, 2]);",
			"translate(v = [0, 0, 20])",
			"translate(v = [2, 2, 2])",
			"cylinder(h = 1, r = 4);",
			"translate(v = [50, 1, 10])",
			"translate(v = [100, 50, 10])",
			"rotate(a = [90, 0, -90])",
		}},
		{part: NameSled, want: []string{
			"cylinder($fn = 6, h = 34.2, r = 15.242047);",
			"cylinder($fn = 6, h = 30.2, r = 12.932646);",
			"cylinder($fn = 6, h = 1, r = 20.66914);",
			"sphere(r = 0.5);",
			"translate(v = [0, 0, 32.2])",
			"rotate(a = [90, 0, 90])",
			"translate(v = [0, 0, 13.2])",
		}},
		{part: NameTube, want: []string{
			"cylinder($fn = 6, h = 34.4, r = 17.782388);",
			"cylinder($fn = 6, h = 34.4, r = 15.472987);",
			"rotate(a = [0, 0, 30])",
			"hull()",
			"cylinder(h = 2.1, r = 2.5);",
			"translate(v = [22.4, 0, 0])",
			"rotate(a = [0, -90, 0])",
			"translate(v = [0.05, 0, 7])",
			"translate(v = [15.4, 0, 0])",
		}},
	} {
		b, err := AppendSCAD(nil, test.part, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(b, []byte("$fn=40;\n\n")) {
			t.Errorf("%s: missing header in %.20q", test.part, b)
		}
		got := string(b)
		for _, w := range test.want {
			if !strings.Contains(got, w) {
				t.Errorf("%s: output missing %q", test.part, w)
			}
		}
		if t.Failed() {
			t.Logf("%s output:\n%s", test.part, got)
		}
	}
}

func TestBuild(t *testing.T) {
	cfg := DefaultConfig()
	for _, name := range Names() {
		s, err := Build(name, cfg)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if solid.CountNodes(s) < 5 {
			t.Errorf("%s: suspiciously small tree", name)
		}
	}
	if _, err := Build("lid", cfg); !errors.Is(err, ErrUnknownPart) {
		t.Errorf("want ErrUnknownPart, got %v", err)
	}
	bad := cfg
	bad.Tray.MagnetDiameter = 0
	for _, material := range []string{"", "pla"} {
		bad.Material = material
		if _, err := Build(NameTray, bad); !errors.Is(err, ErrInvalidParam) {
			t.Errorf("material %q: want ErrInvalidParam for zero magnet diameter, got %v", material, err)
		}
		if _, err := AppendSCAD(nil, NameTray, bad); !errors.Is(err, ErrInvalidParam) {
			t.Errorf("material %q: AppendSCAD want ErrInvalidParam, got %v", material, err)
		}
	}

	cfg.Material = "pla"
	b, err := AppendSCAD(nil, NameTray, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("$fn=40;\n\nscale(v = [1.002004, 1.002004, 1.002004])")) {
		t.Errorf("material compensation not applied:\n%.80s", b)
	}
	// Magnet sockets are widened for a press fit: 8*1.002+0.45.
	if !bytes.Contains(b, []byte("r = 4.233")) {
		t.Error("magnet socket not widened")
	}
}

func TestMinCells(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tray.Width, cfg.Tray.Height, cfg.Tray.Depth = 40, 30, 12
	for _, name := range Names() {
		cells, err := MinCells(name, cfg)
		if err != nil {
			t.Fatal(err)
		}
		s, err := Build(name, cfg)
		if err != nil {
			t.Fatal(err)
		}
		bb := s.Bounds()
		longest := math.Max(bb.Max.X-bb.Min.X, math.Max(bb.Max.Y-bb.Min.Y, bb.Max.Z-bb.Min.Z))
		if step := longest / float64(cells); step > 1 { // Thinnest walls are 2mm.
			t.Errorf("%s: %d cells step %gmm, too coarse for 2mm walls", name, cells, step)
		}
		oc, err := render.NewOctreeRenderer(s, cells)
		if err != nil {
			t.Fatal(err)
		}
		tris, err := render.RenderAll(oc)
		if err != nil {
			t.Fatal(err)
		}
		if len(tris) == 0 {
			t.Errorf("%s: no triangles at %d cells", name, cells)
		}
	}
	cfg.Tray.MagnetDiameter = 0
	if _, err := MinCells(NameTray, cfg); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("want ErrInvalidParam, got %v", err)
	}
}

// TestSledClearsTube samples the lateral surface of the sled body inserted in
// the tube and checks every sample keeps the tube tolerance from the tube material.
func TestSledClearsTube(t *testing.T) {
	for _, sides := range []int{6, 10} {
		for _, tol := range []float64{0.05, 0.2, 0.5} {
			p := DefaultCaseParams()
			p.Sides = sides
			p.TubeTolerance = tol
			tube, err := Tube(p)
			if err != nil {
				t.Fatal(err)
			}
			d := p.Dims()
			// The tube is rotated by half a sector so a flat faces +X.
			// The inserted sled shares that orientation and rests on the tube floor.
			rot := math.Pi / float64(sides)
			sector := 2 * math.Pi / float64(sides)
			const samplesPerEdge = 8
			for i := 0; i < sides; i++ {
				a0, a1 := rot+float64(i)*sector, rot+float64(i+1)*sector
				v0 := r3.Vec{X: d.SledExternalRadius * math.Cos(a0), Y: d.SledExternalRadius * math.Sin(a0)}
				v1 := r3.Vec{X: d.SledExternalRadius * math.Cos(a1), Y: d.SledExternalRadius * math.Sin(a1)}
				for j := 0; j < samplesPerEdge; j++ {
					q := r3.Add(v0, r3.Scale(float64(j)/samplesPerEdge, r3.Sub(v1, v0)))
					for _, z := range []float64{0.25, 0.5, 0.75} {
						q.Z = p.TubeWall + tol + z*(d.SledExternalLength-tol)
						if dist := tube.Evaluate(q); dist < tol-1e-9 {
							t.Fatalf("sides=%d tol=%g: sled surface point %v is %g from tube, want at least %g", sides, tol, q, dist, tol)
						}
					}
				}
			}
			if gap := d.TubeExternalLength - p.TubeWall - d.SledExternalLength; gap < tol-1e-9 {
				t.Errorf("sides=%d tol=%g: sled length leaves %g to the tube mouth", sides, tol, gap)
			}
		}
	}
}
