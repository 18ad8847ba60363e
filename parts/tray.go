package parts

import (
	"errors"
	"fmt"

	"github.com/soypat/solid"
)

// Tray dimension modes.
const (
	OuterDimensions = "outer"
	InnerDimensions = "inner"
)

// Magnet vertical placements.
const (
	MagnetCentered = "centered"
	MagnetFixed    = "fixed"
)

// TrayParams describes an open rounded tray with a magnet socket in each wall.
// Lengths are in millimeters.
type TrayParams struct {
	Depth     float64 `yaml:"depth"`
	Walls     float64 `yaml:"walls"`
	Roundness float64 `yaml:"roundness"`
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	// Dimensions selects whether Width and Height measure the outside of the
	// tray or its cavity.
	Dimensions string `yaml:"dimensions"`

	MagnetDiameter float64 `yaml:"magnet_diameter"`
	MagnetDepth    float64 `yaml:"magnet_depth"`
	// MagnetPlacement is MagnetCentered to place sockets at half the tray
	// depth or MagnetFixed to place them just above the floor's rounding.
	MagnetPlacement string `yaml:"magnet_placement"`
}

// DefaultTrayParams returns a 100x100x20 tray for 8x1mm magnets.
func DefaultTrayParams() TrayParams {
	return TrayParams{
		Depth:           20,
		Walls:           2,
		Roundness:       2,
		Width:           100,
		Height:          100,
		Dimensions:      OuterDimensions,
		MagnetDiameter:  8,
		MagnetDepth:     1,
		MagnetPlacement: MagnetCentered,
	}
}

// TrayDims are the dimensions derived from TrayParams.
type TrayDims struct {
	OuterWidth   float64 `yaml:"outer_width"`
	OuterHeight  float64 `yaml:"outer_height"`
	InnerWidth   float64 `yaml:"inner_width"`
	InnerHeight  float64 `yaml:"inner_height"`
	MagnetRadius float64 `yaml:"magnet_radius"`
	// Magnet socket centers along the wide and high walls and above the tray floor.
	MagnetX float64 `yaml:"magnet_x"`
	MagnetY float64 `yaml:"magnet_y"`
	MagnetZ float64 `yaml:"magnet_z"`
}

// Dims returns the derived tray dimensions.
func (p TrayParams) Dims() TrayDims {
	d := TrayDims{MagnetRadius: p.MagnetDiameter / 2}
	if p.Dimensions == InnerDimensions {
		d.InnerWidth, d.InnerHeight = p.Width, p.Height
		d.OuterWidth, d.OuterHeight = p.Width+2*p.Walls, p.Height+2*p.Walls
	} else {
		d.OuterWidth, d.OuterHeight = p.Width, p.Height
		d.InnerWidth, d.InnerHeight = p.Width-2*p.Walls, p.Height-2*p.Walls
	}
	d.MagnetX = d.OuterWidth / 2
	d.MagnetY = d.OuterHeight / 2
	if p.MagnetPlacement == MagnetFixed {
		d.MagnetZ = d.MagnetRadius + p.Roundness + p.Walls
	} else {
		d.MagnetZ = p.Depth / 2
	}
	return d
}

// Validate returns every problem found in the parameters joined in one error.
func (p TrayParams) Validate() error {
	var errs []error
	positive := []struct {
		name string
		v    float64
	}{
		{"depth", p.Depth}, {"walls", p.Walls}, {"roundness", p.Roundness},
		{"width", p.Width}, {"height", p.Height},
		{"magnet_diameter", p.MagnetDiameter}, {"magnet_depth", p.MagnetDepth},
	}
	for _, f := range positive {
		if f.v <= 0 {
			errs = append(errs, fmt.Errorf("tray %s=%g: %w", f.name, f.v, ErrInvalidParam))
		}
	}
	if p.Dimensions != OuterDimensions && p.Dimensions != InnerDimensions {
		errs = append(errs, fmt.Errorf("tray dimensions %q must be %q or %q: %w", p.Dimensions, OuterDimensions, InnerDimensions, ErrInvalidParam))
	}
	if p.MagnetPlacement != MagnetCentered && p.MagnetPlacement != MagnetFixed {
		errs = append(errs, fmt.Errorf("tray magnet_placement %q must be %q or %q: %w", p.MagnetPlacement, MagnetCentered, MagnetFixed, ErrInvalidParam))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	d := p.Dims()
	if d.InnerWidth <= 2*p.Roundness || d.InnerHeight <= 2*p.Roundness {
		errs = append(errs, fmt.Errorf("tray cavity %gx%g too small for roundness %g: %w", d.InnerWidth, d.InnerHeight, p.Roundness, ErrInvalidParam))
	}
	if p.Depth <= p.Roundness {
		errs = append(errs, fmt.Errorf("tray depth %g must exceed roundness %g: %w", p.Depth, p.Roundness, ErrInvalidParam))
	}
	if p.MagnetDepth >= p.Walls {
		errs = append(errs, fmt.Errorf("magnet depth %g would pierce %g walls: %w", p.MagnetDepth, p.Walls, ErrFit))
	}
	if d.MagnetZ-d.MagnetRadius < 0 || d.MagnetZ+d.MagnetRadius > p.Depth {
		errs = append(errs, fmt.Errorf("magnet socket at height %g does not fit in tray depth %g: %w", d.MagnetZ, p.Depth, ErrFit))
	}
	return errors.Join(errs...)
}

// Tray returns the hollow tray with the four magnet sockets cut into its walls.
// The tray's outer corner sits on the origin and the open side faces +Z.
func Tray(p TrayParams) (solid.Shape, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var bld solid.Builder
	d := p.Dims()
	traySolid := func(w, h float64) solid.Shape {
		r := p.Roundness
		body := bld.Translate(bld.Minkowski(bld.Cube(w-2*r, h-2*r, p.Depth-r), r), r, r, r)
		// The rounding sphere also rounds the top; cut it flat at the tray depth.
		flattener := bld.Up(bld.Cube(d.OuterWidth, d.OuterHeight, r), p.Depth)
		return bld.Difference(body, flattener)
	}
	outside := traySolid(d.OuterWidth, d.OuterHeight)
	inside := bld.Translate(traySolid(d.InnerWidth, d.InnerHeight), p.Walls, p.Walls, p.Walls)
	hollow := bld.Difference(outside, inside)

	magnet := bld.Cylinder(p.MagnetDepth, d.MagnetRadius, 0)
	wide := bld.Rotate(magnet, 90, 0, 0)
	high := bld.Rotate(magnet, 90, 0, -90)
	tray := bld.Difference(hollow,
		bld.Translate(wide, d.MagnetX, p.MagnetDepth, d.MagnetZ),
		bld.Translate(wide, d.MagnetX, d.OuterHeight, d.MagnetZ),
		bld.Translate(high, p.MagnetDepth, d.MagnetY, d.MagnetZ),
		bld.Translate(high, d.OuterWidth, d.MagnetY, d.MagnetZ),
	)
	if err := bld.Err(); err != nil {
		return nil, fmt.Errorf("building tray: %w", err)
	}
	return tray, nil
}
