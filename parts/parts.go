// Package parts contains the parametric printable parts: a magnet tray and a
// tube and sled token case.
package parts

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/solid"
	"github.com/soypat/solid/helpers/matter"
	"github.com/soypat/solid/render"
)

var (
	ErrUnknownPart  = errors.New("unknown part")
	ErrInvalidParam = errors.New("invalid parameter")
	// ErrFit is returned when parameters yield parts that do not fit together.
	ErrFit = errors.New("parts do not fit")
)

const tolerance = 1e-9

// Part names.
const (
	NameTray = "tray"
	NameSled = "sled"
	NameTube = "tube"
)

// Names returns the names of all parts that can be built.
func Names() []string {
	return []string{NameTray, NameSled, NameTube}
}

// Build returns the named part built from cfg. When cfg names a material the
// part is enlarged to compensate for shrinkage and press-fit holes are widened.
func Build(name string, cfg Config) (solid.Shape, error) {
	m, err := matter.Lookup(cfg.Material)
	if err != nil {
		return nil, err
	}
	var s solid.Shape
	switch name {
	case NameTray:
		p := cfg.Tray
		// InternalDimScale panics on non-positive dimensions.
		if err := p.Validate(); err != nil {
			return nil, err
		}
		p.MagnetDiameter = m.InternalDimScale(p.MagnetDiameter)
		s, err = Tray(p)
	case NameSled:
		s, err = Sled(cfg.Case)
	case NameTube:
		s, err = Tube(cfg.Case)
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownPart)
	}
	if err != nil {
		return nil, err
	}
	return m.Scale(s)
}

// AppendSCAD builds the named part and appends its OpenSCAD file contents to b.
func AppendSCAD(b []byte, name string, cfg Config) ([]byte, error) {
	s, err := Build(name, cfg)
	if err != nil {
		return b, err
	}
	return solid.AppendSCAD(b, s, solid.Header(cfg.Facets))
}

// MinCells returns the coarsest mesh resolution, as passed to
// render.NewOctreeRenderer, that resolves the thinnest wall of the named part.
func MinCells(name string, cfg Config) (int, error) {
	s, err := Build(name, cfg)
	if err != nil {
		return 0, err
	}
	var wall float64
	switch name {
	case NameTray:
		wall = cfg.Tray.Walls
	case NameSled:
		wall = math.Min(cfg.Case.SledWall, cfg.Case.DoorThickness)
	case NameTube:
		wall = cfg.Case.TubeWall
	}
	return render.MinCells(s, wall), nil
}
