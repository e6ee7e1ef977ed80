// Package sculpt holds the sculpt session state shared by brush tools:
// the active surface backend, the attribute store, stroke lifecycle and
// the face-set, boundary and island queries tools build on.
package sculpt

import "github.com/Faultbox/sculptcore/pkg/curve"

// BrushType identifies the active brush tool.
type BrushType int

const (
	BrushDraw BrushType = iota
	BrushGrab
	BrushThumb
	BrushRotate
	BrushPaint
	BrushSmear
	BrushMask
	BrushDrawFaceSets
)

// FalloffShape selects how brush influence decays.
type FalloffShape int

const (
	// FalloffSphere limits influence to a 3D radius.
	FalloffSphere FalloffShape = iota
	// FalloffTube projects influence along the view, unconstrained in depth.
	FalloffTube
)

// AutomaskFlag is a bitmask of enabled automasking modes.
type AutomaskFlag int

const (
	AutomaskTopology AutomaskFlag = 1 << iota
	AutomaskFaceSets
	AutomaskBoundaryEdges
	AutomaskBoundaryFaceSets
	AutomaskCavity
	AutomaskCavityInverted
	AutomaskCavityUseCurve
	AutomaskBrushNormal
	AutomaskViewNormal
	AutomaskViewOcclusion

	// AutomaskCavityAll covers both cavity polarities.
	AutomaskCavityAll = AutomaskCavity | AutomaskCavityInverted
)

// Brush is one brush definition with per-brush automasking overrides.
type Brush struct {
	Name    string
	Type    BrushType
	Falloff FalloffShape

	AutomaskFlags AutomaskFlag

	BoundarySteps int

	CavityFactor    float32
	CavityBlurSteps int
	CavityCurve     *curve.Map

	ViewNormalLimit   float32
	ViewNormalFalloff float32

	StartNormalLimit   float32
	StartNormalFalloff float32
}

// Sculpt is the tool-level configuration automasking falls back to when the
// brush does not override a flag group.
type Sculpt struct {
	AutomaskFlags AutomaskFlag

	BoundarySteps int

	CavityFactor    float32
	CavityBlurSteps int
	CavityCurve     *curve.Map

	ViewNormalLimit   float32
	ViewNormalFalloff float32

	StartNormalLimit   float32
	StartNormalFalloff float32
}
