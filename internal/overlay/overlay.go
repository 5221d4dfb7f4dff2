// Package overlay recolors scene entities according to an analytics mode.
package overlay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xelth-com/eckwms3d/internal/scene"
	"github.com/xelth-com/eckwms3d/internal/scoring"
)

// Mode is one of the interchangeable color encodings.
type Mode string

const (
	ModeNone     Mode = "NONE"
	ModeABC      Mode = "ABC"
	ModeHeat     Mode = "HEAT"
	ModePickface Mode = "PICKFACE"
)

// Emissive intensities of the emphasis modes.
const (
	IntensityABC      = 0.8
	IntensityHeat     = 0.9
	IntensityPickface = 0.9
)

var ErrInvalidMode = errors.New("invalid overlay mode")

// Modes lists every mode in menu order.
var Modes = []Mode{ModeNone, ModeABC, ModeHeat, ModePickface}

// ParseMode accepts a mode name in any case; empty means NONE.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToUpper(strings.TrimSpace(s)))
	if m == "" {
		return ModeNone, nil
	}
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Apply sets the material of every entity carrying a bin and a base color.
// The result depends only on mode, the bin and stats, so applying the same
// mode twice changes nothing.
func Apply(mode Mode, entities []*scene.Entity, stats scoring.HeatStats) {
	for _, e := range entities {
		if e == nil || e.Bin == nil {
			continue
		}
		base, ok := e.BaseColor()
		if !ok {
			continue
		}
		e.Material = Material(mode, e, base, stats)
	}
}

// Material computes the material an entity gets under mode.
func Material(mode Mode, e *scene.Entity, base scoring.Color, stats scoring.HeatStats) scene.Material {
	var (
		c         scoring.Color
		intensity float64
	)
	switch mode {
	case ModeABC:
		c, intensity = scoring.AbcDirectColor(e.Bin.ABC), IntensityABC
	case ModeHeat:
		c, intensity = scoring.HeatToColor(scoring.ComputeHeat(e.Bin, stats)), IntensityHeat
	case ModePickface:
		c, intensity = scoring.PickfaceToColor(scoring.ComputePickfaceScore(e.Bin, stats)), IntensityPickface
	default:
		return scene.Material{Color: base, Emissive: scoring.Black}
	}
	return scene.Material{Color: c, Emissive: c, EmissiveIntensity: intensity}
}
