// Package matter models printing materials so parts can compensate
// for the way they deform while cooling.
package matter

import (
	"fmt"
	"strings"

	"github.com/soypat/solid"
)

var (
	// PLA (polylactic acid) is the most widely used plastic filament material in 3D printing.
	PLA = ViscousMaterial{name: "pla", shrink: 0.2e-2, pullShrink: .45} // 0.2% shrinkage
)

// ViscousMaterial is a printing material that shrinks after cooling.
type ViscousMaterial struct {
	name string
	// shrink is the thermal contraction shrinkage of a material once the material
	// cools to room temperature after the heated bed is turned off.
	shrink float64
	// pullShrink takes into account viscoelastic shrinkage.
	pullShrink float64
}

// Lookup returns the material with the given name. The empty string and
// "none" return ok=true and the zero material which applies no compensation.
func Lookup(name string) (m ViscousMaterial, err error) {
	switch strings.ToLower(name) {
	case "", "none":
		return ViscousMaterial{}, nil
	case PLA.name:
		return PLA, nil
	}
	return m, fmt.Errorf("unknown material %q", name)
}

// Name returns the material's name, or "none" for the zero material.
func (m ViscousMaterial) Name() string {
	if m.name == "" {
		return "none"
	}
	return m.name
}

// ShrinkScale returns the factor a part is enlarged by so it measures its
// nominal size once cooled.
func (m ViscousMaterial) ShrinkScale() float64 {
	return 1 / (1 - m.shrink)
}

// Scale enlarges s to compensate for the material's thermal shrinkage.
// The zero material returns s unchanged.
func (m ViscousMaterial) Scale(s solid.Shape) (solid.Shape, error) {
	if m.shrink == 0 {
		return s, nil
	}
	return solid.NewScale(s, m.ShrinkScale())
}

// InternalDimScale returns the dimension to model a hole with so that it
// measures real once printed. The zero material returns real.
func (m ViscousMaterial) InternalDimScale(real float64) float64 {
	if real <= 0 {
		panic("InternalDimScale only works for non-zero dimensions")
	}
	return real*(m.shrink+1) + m.pullShrink
}
