// Package config handles sculpt tool configuration loading and management.
package config

import (
	"fmt"
	"strings"

	"github.com/Faultbox/sculptcore/internal/sculpt"
	"github.com/Faultbox/sculptcore/pkg/curve"
)

// Config holds all tool settings.
type Config struct {
	Sculpt  SculptConfig  `yaml:"sculpt"`
	Brush   BrushConfig   `yaml:"brush"`
	Logging LoggingConfig `yaml:"logging"`
}

// SculptConfig holds tool-level sculpt settings.
type SculptConfig struct {
	// Symmetry names the enabled mirror axes, e.g. "x" or "xz".
	Symmetry string `yaml:"symmetry"`

	Automask      []string `yaml:"automask"`
	BoundarySteps int      `yaml:"boundary_steps"`

	CavityFactor    float32      `yaml:"cavity_factor"`
	CavityBlurSteps int          `yaml:"cavity_blur_steps"`
	CavityCurve     []CurvePoint `yaml:"cavity_curve"`

	ViewNormalLimit   float32 `yaml:"view_normal_limit"`
	ViewNormalFalloff float32 `yaml:"view_normal_falloff"`

	StartNormalLimit   float32 `yaml:"start_normal_limit"`
	StartNormalFalloff float32 `yaml:"start_normal_falloff"`
}

// BrushConfig holds per-brush settings.
type BrushConfig struct {
	Type    string  `yaml:"type"`
	Radius  float32 `yaml:"radius"`
	Falloff string  `yaml:"falloff"`

	Automask      []string `yaml:"automask"`
	BoundarySteps int      `yaml:"boundary_steps"`

	CavityFactor    float32      `yaml:"cavity_factor"`
	CavityBlurSteps int          `yaml:"cavity_blur_steps"`
	CavityCurve     []CurvePoint `yaml:"cavity_curve"`

	ViewNormalLimit   float32 `yaml:"view_normal_limit"`
	ViewNormalFalloff float32 `yaml:"view_normal_falloff"`

	StartNormalLimit   float32 `yaml:"start_normal_limit"`
	StartNormalFalloff float32 `yaml:"start_normal_falloff"`
}

// CurvePoint is one control point of a remap curve.
type CurvePoint struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Sculpt: SculptConfig{
			BoundarySteps:      1,
			CavityFactor:       1,
			CavityBlurSteps:    2,
			ViewNormalLimit:    1.57,
			ViewNormalFalloff:  0.25,
			StartNormalLimit:   0.35,
			StartNormalFalloff: 0.25,
		},
		Brush: BrushConfig{
			Type:               "draw",
			Radius:             1,
			Falloff:            "sphere",
			BoundarySteps:      1,
			CavityFactor:       1,
			CavityBlurSteps:    2,
			ViewNormalLimit:    1.57,
			ViewNormalFalloff:  0.25,
			StartNormalLimit:   0.35,
			StartNormalFalloff: 0.25,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

var automaskNames = map[string]sculpt.AutomaskFlag{
	"topology":           sculpt.AutomaskTopology,
	"face-sets":          sculpt.AutomaskFaceSets,
	"boundary-edges":     sculpt.AutomaskBoundaryEdges,
	"boundary-face-sets": sculpt.AutomaskBoundaryFaceSets,
	"cavity":             sculpt.AutomaskCavity,
	"cavity-inverted":    sculpt.AutomaskCavityInverted,
	"cavity-curve":       sculpt.AutomaskCavityUseCurve,
	"brush-normal":       sculpt.AutomaskBrushNormal,
	"view-normal":        sculpt.AutomaskViewNormal,
	"view-occlusion":     sculpt.AutomaskViewOcclusion,
}

var brushTypeNames = map[string]sculpt.BrushType{
	"draw":           sculpt.BrushDraw,
	"grab":           sculpt.BrushGrab,
	"thumb":          sculpt.BrushThumb,
	"rotate":         sculpt.BrushRotate,
	"paint":          sculpt.BrushPaint,
	"smear":          sculpt.BrushSmear,
	"mask":           sculpt.BrushMask,
	"draw-face-sets": sculpt.BrushDrawFaceSets,
}

// ParseAutomask resolves a list of mode names into a flag set.
func ParseAutomask(names []string) (sculpt.AutomaskFlag, error) {
	var flags sculpt.AutomaskFlag
	for _, name := range names {
		f, ok := automaskNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("unknown automask mode %q", name)
		}
		flags |= f
	}
	return flags, nil
}

// ParseSymmetry resolves an axis-letter string ("x", "xy", ...) into
// mirror bits.
func ParseSymmetry(s string) (int, error) {
	bits := 0
	for _, r := range strings.ToLower(s) {
		switch r {
		case 'x':
			bits |= 1
		case 'y':
			bits |= 2
		case 'z':
			bits |= 4
		case ' ':
		default:
			return 0, fmt.Errorf("unknown symmetry axis %q", string(r))
		}
	}
	return bits, nil
}

func buildCurve(points []CurvePoint) *curve.Map {
	if len(points) == 0 {
		return nil
	}
	pts := make([]curve.Point, len(points))
	for i, p := range points {
		pts[i] = curve.Point{X: p.X, Y: p.Y}
	}
	return curve.New(pts...)
}

// ToSculpt converts the tool-level section into runtime settings.
func (c *Config) ToSculpt() (*sculpt.Sculpt, error) {
	flags, err := ParseAutomask(c.Sculpt.Automask)
	if err != nil {
		return nil, err
	}
	return &sculpt.Sculpt{
		AutomaskFlags:      flags,
		BoundarySteps:      c.Sculpt.BoundarySteps,
		CavityFactor:       c.Sculpt.CavityFactor,
		CavityBlurSteps:    c.Sculpt.CavityBlurSteps,
		CavityCurve:        buildCurve(c.Sculpt.CavityCurve),
		ViewNormalLimit:    c.Sculpt.ViewNormalLimit,
		ViewNormalFalloff:  c.Sculpt.ViewNormalFalloff,
		StartNormalLimit:   c.Sculpt.StartNormalLimit,
		StartNormalFalloff: c.Sculpt.StartNormalFalloff,
	}, nil
}

// ToBrush converts the brush section into runtime settings.
func (c *Config) ToBrush() (*sculpt.Brush, error) {
	typ, ok := brushTypeNames[strings.ToLower(c.Brush.Type)]
	if !ok {
		return nil, fmt.Errorf("unknown brush type %q", c.Brush.Type)
	}
	flags, err := ParseAutomask(c.Brush.Automask)
	if err != nil {
		return nil, err
	}

	falloff := sculpt.FalloffSphere
	switch strings.ToLower(c.Brush.Falloff) {
	case "", "sphere":
	case "tube":
		falloff = sculpt.FalloffTube
	default:
		return nil, fmt.Errorf("unknown falloff shape %q", c.Brush.Falloff)
	}

	return &sculpt.Brush{
		Type:               typ,
		Falloff:            falloff,
		AutomaskFlags:      flags,
		BoundarySteps:      c.Brush.BoundarySteps,
		CavityFactor:       c.Brush.CavityFactor,
		CavityBlurSteps:    c.Brush.CavityBlurSteps,
		CavityCurve:        buildCurve(c.Brush.CavityCurve),
		ViewNormalLimit:    c.Brush.ViewNormalLimit,
		ViewNormalFalloff:  c.Brush.ViewNormalFalloff,
		StartNormalLimit:   c.Brush.StartNormalLimit,
		StartNormalFalloff: c.Brush.StartNormalFalloff,
	}, nil
}
