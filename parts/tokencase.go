package parts

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/solid"
)

const (
	baseTolerance = 0.2
	// windowFudge lengthens the window cutter so it fully pierces the tube wall.
	windowFudge = 0.1
)

// CaseParams describes a token case made of a polygonal tube and a sled that
// slides into it. The sled holds a stack of round tokens and ends in a door
// whose lip covers the tube mouth. Lengths are in millimeters.
type CaseParams struct {
	// Sides of the tube and sled cross section.
	Sides int `yaml:"sides"`

	TokenDiameter  float64 `yaml:"token_diameter"`
	TokenThickness float64 `yaml:"token_thickness"`
	TokenCount     int     `yaml:"token_count"`
	// Play added around the token diameter and to the token stack length.
	TokenDiameterTolerance float64 `yaml:"token_diameter_tolerance"`
	TokenLengthTolerance   float64 `yaml:"token_length_tolerance"`
	// SledInternalLength overrides the sled cavity length computed from the
	// token stack when non zero.
	SledInternalLength float64 `yaml:"sled_internal_length"`

	SledWall float64 `yaml:"sled_wall"`
	TubeWall float64 `yaml:"tube_wall"`
	// TubeTolerance is the gap between the sled's and the tube's flat walls.
	TubeTolerance float64 `yaml:"tube_tolerance"`

	WindowWidth  float64 `yaml:"window_width"`
	WindowMargin float64 `yaml:"window_margin"`

	DoorLip       float64 `yaml:"door_lip"`
	DoorThickness float64 `yaml:"door_thickness"`
	DoorRoundness float64 `yaml:"door_roundness"`
}

// DefaultCaseParams returns a hexagonal case for ten 22x3mm tokens.
func DefaultCaseParams() CaseParams {
	return CaseParams{
		Sides:                  6,
		TokenDiameter:          22,
		TokenThickness:         3,
		TokenCount:             10,
		TokenDiameterTolerance: baseTolerance,
		TokenLengthTolerance:   baseTolerance,
		SledWall:               2,
		TubeWall:               2,
		TubeTolerance:          baseTolerance,
		WindowWidth:            5,
		WindowMargin:           5,
		DoorLip:                3,
		DoorThickness:          2,
		DoorRoundness:          0.5,
	}
}

// CaseDims are the dimensions derived from CaseParams. Flat radii measure
// from the prism axis to the middle of a wall, plain radii to a vertex.
type CaseDims struct {
	// ApothemRatio converts circumradii to flat radii.
	ApothemRatio float64 `yaml:"apothem_ratio"`

	SledInternalLength     float64 `yaml:"sled_internal_length"`
	SledExternalLength     float64 `yaml:"sled_external_length"`
	SledFlatInternalRadius float64 `yaml:"sled_flat_internal_radius"`
	SledFlatExternalRadius float64 `yaml:"sled_flat_external_radius"`
	SledInternalRadius     float64 `yaml:"sled_internal_radius"`
	SledExternalRadius     float64 `yaml:"sled_external_radius"`

	TubeExternalLength     float64 `yaml:"tube_external_length"`
	TubeFlatInternalRadius float64 `yaml:"tube_flat_internal_radius"`
	TubeFlatExternalRadius float64 `yaml:"tube_flat_external_radius"`
	TubeInternalRadius     float64 `yaml:"tube_internal_radius"`
	TubeExternalRadius     float64 `yaml:"tube_external_radius"`

	DoorFlatRadius float64 `yaml:"door_flat_radius"`
	WindowLength   float64 `yaml:"window_length"`
}

// Dims returns the derived case dimensions.
func (p CaseParams) Dims() CaseDims {
	var d CaseDims
	d.ApothemRatio = solid.ApothemRatio(p.Sides)
	d.SledInternalLength = p.SledInternalLength
	if d.SledInternalLength == 0 {
		d.SledInternalLength = p.TokenThickness*float64(p.TokenCount) + p.TokenLengthTolerance
	}
	d.SledExternalLength = d.SledInternalLength + p.SledWall
	d.SledFlatInternalRadius = p.TokenDiameter/2 + p.TokenDiameterTolerance
	d.SledFlatExternalRadius = d.SledFlatInternalRadius + p.SledWall
	d.SledInternalRadius = d.SledFlatInternalRadius / d.ApothemRatio
	d.SledExternalRadius = d.SledFlatExternalRadius / d.ApothemRatio

	d.TubeExternalLength = d.SledExternalLength + p.TubeWall + p.TubeTolerance
	d.TubeFlatInternalRadius = d.SledFlatExternalRadius + p.TubeTolerance
	d.TubeFlatExternalRadius = d.TubeFlatInternalRadius + p.TubeWall
	d.TubeInternalRadius = d.TubeFlatInternalRadius / d.ApothemRatio
	d.TubeExternalRadius = d.TubeFlatExternalRadius / d.ApothemRatio

	d.DoorFlatRadius = d.TubeFlatExternalRadius + p.DoorLip
	d.WindowLength = d.TubeExternalLength - p.TubeWall - 2*p.WindowMargin
	return d
}

// Validate returns every problem found in the parameters joined in one error.
// Besides sanity checks it verifies the sled fits in the tube with the
// configured tolerance and the door covers the tube's mouth.
func (p CaseParams) Validate() error {
	var errs []error
	if p.Sides < 3 || p.Sides%4 != 2 {
		// The sled rests on a flat wall, which requires one to face straight down.
		errs = append(errs, fmt.Errorf("case sides=%d must be 6, 10, 14...: %w", p.Sides, ErrInvalidParam))
	}
	if p.TokenCount <= 0 {
		errs = append(errs, fmt.Errorf("case token_count=%d: %w", p.TokenCount, ErrInvalidParam))
	}
	positive := []struct {
		name string
		v    float64
	}{
		{"token_diameter", p.TokenDiameter}, {"token_thickness", p.TokenThickness},
		{"sled_wall", p.SledWall}, {"tube_wall", p.TubeWall},
		{"window_width", p.WindowWidth}, {"window_margin", p.WindowMargin},
		{"door_lip", p.DoorLip}, {"door_thickness", p.DoorThickness}, {"door_roundness", p.DoorRoundness},
	}
	for _, f := range positive {
		if f.v <= 0 {
			errs = append(errs, fmt.Errorf("case %s=%g: %w", f.name, f.v, ErrInvalidParam))
		}
	}
	nonNegative := []struct {
		name string
		v    float64
	}{
		{"token_diameter_tolerance", p.TokenDiameterTolerance}, {"token_length_tolerance", p.TokenLengthTolerance},
		{"tube_tolerance", p.TubeTolerance}, {"sled_internal_length", p.SledInternalLength},
	}
	for _, f := range nonNegative {
		if f.v < 0 {
			errs = append(errs, fmt.Errorf("case %s=%g: %w", f.name, f.v, ErrInvalidParam))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	d := p.Dims()
	if p.DoorThickness <= 2*p.DoorRoundness {
		errs = append(errs, fmt.Errorf("door thickness %g must exceed twice its roundness %g: %w", p.DoorThickness, p.DoorRoundness, ErrInvalidParam))
	}
	if stack := p.TokenThickness * float64(p.TokenCount); d.SledInternalLength < stack {
		errs = append(errs, fmt.Errorf("sled cavity %g shorter than token stack %g: %w", d.SledInternalLength, stack, ErrFit))
	}
	if d.SledFlatExternalRadius+p.TubeTolerance > d.TubeFlatInternalRadius+tolerance {
		errs = append(errs, fmt.Errorf("sled flat radius %g plus tolerance %g exceeds tube flat radius %g: %w",
			d.SledFlatExternalRadius, p.TubeTolerance, d.TubeFlatInternalRadius, ErrFit))
	}
	if d.DoorFlatRadius <= d.TubeFlatExternalRadius {
		errs = append(errs, fmt.Errorf("door flat radius %g does not cover tube flat radius %g: %w", d.DoorFlatRadius, d.TubeFlatExternalRadius, ErrFit))
	}
	if d.WindowLength <= 0 {
		errs = append(errs, fmt.Errorf("tube length %g leaves no room for a window with margin %g: %w", d.TubeExternalLength, p.WindowMargin, ErrFit))
	}
	if wall := 2 * d.TubeFlatInternalRadius * math.Tan(math.Pi/float64(p.Sides)); p.WindowWidth >= wall {
		errs = append(errs, fmt.Errorf("window width %g exceeds the tube's %g wide flat wall: %w", p.WindowWidth, wall, ErrFit))
	}
	return errors.Join(errs...)
}

// Door returns the sled's door: a rounded polygonal plate in the XY plane,
// its bottom flat cut flush with the sled's bottom wall.
func Door(p CaseParams) (solid.Shape, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var bld solid.Builder
	door := door(&bld, p, p.Dims())
	if err := bld.Err(); err != nil {
		return nil, fmt.Errorf("building door: %w", err)
	}
	return door, nil
}

func door(bld *solid.Builder, p CaseParams, d CaseDims) solid.Shape {
	minkRadius := (d.DoorFlatRadius - p.DoorRoundness) / d.ApothemRatio
	plate := bld.Cylinder(p.DoorThickness-2*p.DoorRoundness, minkRadius, p.Sides)
	door := bld.Up(bld.Minkowski(plate, p.DoorRoundness), p.DoorRoundness)

	doorRadius := d.DoorFlatRadius / d.ApothemRatio
	lipFromSled := d.DoorFlatRadius - d.SledFlatExternalRadius
	flattener := bld.Translate(bld.Cube(2*doorRadius, lipFromSled, p.DoorThickness),
		-minkRadius, -d.SledFlatExternalRadius-lipFromSled, 0)
	return bld.Difference(door, flattener)
}

// Sled returns the open-topped token sled with its door, lying on a flat wall
// on the XY plane with its length along +X and the door at the far end.
func Sled(p CaseParams) (solid.Shape, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var bld solid.Builder
	d := p.Dims()
	outer := d.SledExternalRadius
	body := bld.Cylinder(d.SledExternalLength+p.DoorThickness, outer, p.Sides)
	// Removes the top half of the walls over the token cavity.
	flattener := bld.Translate(bld.Cube(2*outer, outer, d.SledInternalLength), -outer, 0, p.SledWall)
	cavity := bld.Up(bld.Cylinder(d.SledInternalLength, d.SledInternalRadius, p.Sides), p.SledWall)
	sled := bld.Union(
		bld.Difference(body, flattener, cavity),
		bld.Up(door(&bld, p, d), d.SledExternalLength),
	)
	sled = bld.Up(bld.Rotate(sled, 90, 0, 90), d.SledFlatExternalRadius)
	if err := bld.Err(); err != nil {
		return nil, fmt.Errorf("building sled: %w", err)
	}
	return sled, nil
}

// Tube returns the tube standing on its closed end with a viewing window
// cut into the flat wall facing +X.
func Tube(p CaseParams) (solid.Shape, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var bld solid.Builder
	d := p.Dims()
	tube := bld.Difference(
		bld.Cylinder(d.TubeExternalLength, d.TubeExternalRadius, p.Sides),
		bld.Up(bld.Cylinder(d.TubeExternalLength, d.TubeInternalRadius, p.Sides), p.TubeWall),
	)
	tube = bld.Rotate(tube, 0, 0, 180/float64(p.Sides))
	tube = bld.Difference(tube, bld.Right(window(&bld, p, d), d.TubeFlatExternalRadius))
	if err := bld.Err(); err != nil {
		return nil, fmt.Errorf("building tube: %w", err)
	}
	return tube, nil
}

// window returns the slot cutter. It spans the tube wall thickness along -X
// from the origin and runs vertically between the window margins.
func window(bld *solid.Builder, p CaseParams, d CaseDims) solid.Shape {
	end := bld.Cylinder(p.TubeWall+windowFudge, p.WindowWidth/2, 0)
	slot := bld.Rotate(bld.Hull(end, d.WindowLength, 0, 0), 0, -90, 0)
	return bld.Translate(slot, windowFudge/2, 0, p.WindowMargin+p.TubeWall)
}
