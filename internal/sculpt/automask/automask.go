// Package automask computes per-element masking factors that gate how
// strongly a brush stroke affects each vertex or face. Factors compose
// multiplicatively: topology flood fill builds the mask up from zero, all
// other modes narrow it down from one.
package automask

import (
	"encoding/binary"
	"hash/fnv"
	gomath "math"

	"github.com/Faultbox/sculptcore/internal/logger"
	"github.com/Faultbox/sculptcore/internal/sculpt"
	"github.com/Faultbox/sculptcore/internal/sculpt/attr"
	"github.com/Faultbox/sculptcore/internal/sculpt/floodfill"
	"github.com/Faultbox/sculptcore/internal/sculpt/mesh"
	"github.com/Faultbox/sculptcore/pkg/curve"
)

// Attribute layer names owned by this package.
const (
	AttrNameFactor    = ".sculpt_automask_factor"
	AttrNameCavity    = ".sculpt_automask_cavity"
	AttrNameOcclusion = ".sculpt_automask_occlusion"
)

// unconstrainedRadius stands in for an unlimited brush radius.
const unconstrainedRadius = float32(gomath.MaxFloat32)

// Settings is the per-stroke snapshot of effective automasking
// configuration, resolved by merging brush and tool flags with the brush
// taking precedence per flag group.
type Settings struct {
	Flags sculpt.AutomaskFlag

	InitialFaceSet  int
	InitialIslandID int

	ViewNormalLimit   float32
	ViewNormalFalloff float32

	StartNormalLimit   float32
	StartNormalFalloff float32

	CavityCurve     *curve.Map
	CavityFactor    float32
	CavityBlurSteps int

	// TopologyUseBrushLimit marks topology masks already constrained to
	// the brush radius during precompute, so the live island test is
	// skipped.
	TopologyUseBrushLimit bool
}

// Cache is the per-stroke automasking state. A nil *Cache means automasking
// is disabled for the stroke.
type Cache struct {
	Settings Settings

	// CurrentStrokeID stamps per-vertex caches. It is adopted from the
	// previous stroke when the settings hash allows reuse.
	CurrentStrokeID uint8

	// CanReuse marks caches whose precomputed buffers were carried over
	// from the previous stroke.
	CanReuse bool
}

// ModeEnabled reports whether a mode is enabled at either the brush or the
// tool level.
func ModeEnabled(sd *sculpt.Sculpt, br *sculpt.Brush, mode sculpt.AutomaskFlag) bool {
	flags := sd.AutomaskFlags
	if br != nil {
		flags |= br.AutomaskFlags
	}
	return flags&mode != 0
}

// IsEnabled reports whether any automasking mode applies to the stroke.
// Dynamic-topology strokes never automask.
func IsEnabled(sd *sculpt.Sculpt, ss *sculpt.Session, br *sculpt.Brush) bool {
	if ss != nil && br != nil && ss.DynTopo {
		return false
	}
	for _, mode := range []sculpt.AutomaskFlag{
		sculpt.AutomaskTopology,
		sculpt.AutomaskFaceSets,
		sculpt.AutomaskBoundaryEdges,
		sculpt.AutomaskBoundaryFaceSets,
		sculpt.AutomaskBrushNormal,
		sculpt.AutomaskViewNormal,
		sculpt.AutomaskCavityAll,
	} {
		if ModeEnabled(sd, br, mode) {
			return true
		}
	}
	return false
}

// calcEffectiveBits merges brush and tool flags. The cavity flag group is
// taken wholesale from whichever level enables it, brush first, so cavity
// polarity and curve settings never mix between levels.
func calcEffectiveBits(sd *sculpt.Sculpt, brush *sculpt.Brush) sculpt.AutomaskFlag {
	if brush == nil {
		return sd.AutomaskFlags
	}
	flags := sd.AutomaskFlags | brush.AutomaskFlags

	const cavityGroup = sculpt.AutomaskCavityAll | sculpt.AutomaskCavityUseCurve
	if brush.AutomaskFlags&sculpt.AutomaskCavityAll != 0 {
		flags &^= cavityGroup
		flags |= brush.AutomaskFlags
	} else if sd.AutomaskFlags&sculpt.AutomaskCavityAll != 0 {
		flags &^= cavityGroup
		flags |= sd.AutomaskFlags
	}
	return flags
}

// NeedsNormal reports whether factor queries will consume original normals.
func NeedsNormal(sd *sculpt.Sculpt, brush *sculpt.Brush) bool {
	return calcEffectiveBits(sd, brush)&(sculpt.AutomaskBrushNormal|sculpt.AutomaskViewNormal) != 0
}

// isConstrainedByRadius reports whether the brush action only reaches a
// finite world-space radius. 2D (tube) falloff is never constrained.
func isConstrainedByRadius(br *sculpt.Brush) bool {
	if br == nil || br.Falloff == sculpt.FalloffTube {
		return false
	}
	switch br.Type {
	case sculpt.BrushGrab, sculpt.BrushThumb, sculpt.BrushRotate:
		return true
	}
	return false
}

// boundaryPropagationSteps prefers the brush-level step count over the
// tool-level one.
func boundaryPropagationSteps(sd *sculpt.Sculpt, brush *sculpt.Brush) int {
	if brush != nil && brush.AutomaskFlags&(sculpt.AutomaskBoundaryEdges|sculpt.AutomaskBoundaryFaceSets) != 0 {
		return brush.BoundarySteps
	}
	return sd.BoundarySteps
}

// needsFactorsCache determines whether the enabled modes require a
// precomputed full-mesh factor buffer, or can be evaluated per query.
func needsFactorsCache(sd *sculpt.Sculpt, brush *sculpt.Brush) bool {
	flags := calcEffectiveBits(sd, brush)

	if flags&sculpt.AutomaskTopology != 0 && brush != nil && isConstrainedByRadius(brush) {
		return true
	}
	if flags&sculpt.AutomaskViewNormal != 0 {
		return brush != nil && brush.BoundarySteps != 1
	}
	if flags&(sculpt.AutomaskBoundaryEdges|sculpt.AutomaskBoundaryFaceSets) != 0 {
		return boundaryPropagationSteps(sd, brush) != 1
	}
	return false
}

// BrushTypeCanReuse reports whether a brush type is allowed to adopt the
// previous stroke's automask buffers when settings are unchanged.
func BrushTypeCanReuse(t sculpt.BrushType) bool {
	switch t {
	case sculpt.BrushPaint, sculpt.BrushSmear, sculpt.BrushMask, sculpt.BrushDrawFaceSets:
		return true
	}
	return false
}

// settingsHash fingerprints the resolved settings for the reuse check.
// The hashed field set is deliberately minimal: boundary propagation steps
// and the occlusion flag ride along only through the flag bits, see
// DESIGN.md before widening it.
func settingsHash(ss *sculpt.Session, c *Cache) uint64 {
	h := fnv.New64a()
	var scratch [4]byte
	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(scratch[:], v)
		h.Write(scratch[:])
	}

	writeU32(uint32(c.Settings.Flags))
	writeU32(uint32(ss.Surf.VertCount()))

	if c.Settings.Flags&sculpt.AutomaskCavityAll != 0 {
		writeU32(uint32(c.Settings.CavityBlurSteps))
		writeU32(gomath.Float32bits(c.Settings.CavityFactor))
		if c.Settings.CavityCurve != nil {
			for _, p := range c.Settings.CavityCurve.Points() {
				writeU32(gomath.Float32bits(p.X))
				writeU32(gomath.Float32bits(p.Y))
			}
		}
	}
	if c.Settings.Flags&sculpt.AutomaskFaceSets != 0 {
		writeU32(uint32(c.Settings.InitialFaceSet))
	}
	if c.Settings.Flags&sculpt.AutomaskViewNormal != 0 {
		writeU32(gomath.Float32bits(c.Settings.ViewNormalFalloff))
		writeU32(gomath.Float32bits(c.Settings.ViewNormalLimit))
	}
	if c.Settings.Flags&sculpt.AutomaskBrushNormal != 0 {
		writeU32(gomath.Float32bits(c.Settings.StartNormalFalloff))
		writeU32(gomath.Float32bits(c.Settings.StartNormalLimit))
	}
	return h.Sum64()
}

// cacheSettingsUpdate resolves effective settings, preferring brush values
// over tool values per flag group.
func cacheSettingsUpdate(c *Cache, ss *sculpt.Session, sd *sculpt.Sculpt, brush *sculpt.Brush) {
	c.Settings.Flags = calcEffectiveBits(sd, brush)
	c.Settings.InitialFaceSet = ss.ActiveFaceSet()

	if brush != nil && brush.AutomaskFlags&sculpt.AutomaskViewNormal != 0 {
		c.Settings.ViewNormalLimit = brush.ViewNormalLimit
		c.Settings.ViewNormalFalloff = brush.ViewNormalFalloff
	} else {
		c.Settings.ViewNormalLimit = sd.ViewNormalLimit
		c.Settings.ViewNormalFalloff = sd.ViewNormalFalloff
	}

	if brush != nil && brush.AutomaskFlags&sculpt.AutomaskBrushNormal != 0 {
		c.Settings.StartNormalLimit = brush.StartNormalLimit
		c.Settings.StartNormalFalloff = brush.StartNormalFalloff
	} else {
		c.Settings.StartNormalLimit = sd.StartNormalLimit
		c.Settings.StartNormalFalloff = sd.StartNormalFalloff
	}

	if brush != nil && brush.AutomaskFlags&sculpt.AutomaskCavityAll != 0 {
		c.Settings.CavityCurve = brush.CavityCurve
		c.Settings.CavityFactor = brush.CavityFactor
		c.Settings.CavityBlurSteps = brush.CavityBlurSteps
	} else {
		c.Settings.CavityCurve = sd.CavityCurve
		c.Settings.CavityFactor = sd.CavityFactor
		c.Settings.CavityBlurSteps = sd.CavityBlurSteps
	}
}

// fillTopologyFactors floods from the active vertex, seeding visited
// vertices with factor 1. Traversal is gated by the brush radius only for
// radius-constrained brush types.
func fillTopologyFactors(ss *sculpt.Session, brush *sculpt.Brush) {
	active := ss.ActiveVert
	if active < 0 {
		return
	}
	factor := ss.Attrs.Lookup(ss.FactorAttr)
	if factor == nil {
		return
	}

	radius := unconstrainedRadius
	if ss.Cache != nil {
		radius = ss.Cache.Radius
	}
	useRadius := ss.Cache != nil && isConstrainedByRadius(brush)
	location := ss.Surf.Position(active)

	fill := floodfill.NewFill(ss.Surf.VertCount())
	fill.AddInitialWithSymmetry(ss.Surf, ss.SymmBits, active, radius)

	factor.Floats[active] = 1
	fill.Execute(ss.Surf, func(from, to int) bool {
		factor.Floats[to] = 1
		factor.Floats[from] = 1
		return !useRadius || ss.IsVertexInsideBrushRadiusSymm(ss.Surf.Position(to), location, radius)
	})
}

// initFaceSetsMasking zeroes every vertex outside the initial face set.
func initFaceSetsMasking(ss *sculpt.Session, c *Cache) {
	factor := ss.Attrs.Lookup(ss.FactorAttr)
	if factor == nil {
		return
	}
	for v := 0; v < ss.Surf.VertCount(); v++ {
		if !ss.VertHasFaceSet(v, c.Settings.InitialFaceSet) {
			factor.Floats[v] = 0
		}
	}
}

const edgeDistanceInf = -1

type boundaryMode int

const (
	boundaryModeEdges boundaryMode = iota
	boundaryModeFaceSets
)

// initBoundaryMasking scales factors down near boundary elements. The
// per-vertex graph distance to the nearest boundary is relaxed over the
// propagation step count; surviving factors fall off quadratically toward
// zero at the boundary. Vertices beyond the horizon keep their factor.
func initBoundaryMasking(ss *sculpt.Session, mode boundaryMode, propagationSteps int) {
	factor := ss.Attrs.Lookup(ss.FactorAttr)
	if factor == nil || propagationSteps < 1 {
		return
	}
	totvert := ss.Surf.VertCount()
	edgeDistance := make([]int, totvert)

	for v := 0; v < totvert; v++ {
		edgeDistance[v] = edgeDistanceInf
		switch mode {
		case boundaryModeEdges:
			if ss.VertIsBoundary(v) {
				edgeDistance[v] = 0
			}
		case boundaryModeFaceSets:
			if !ss.VertHasUniqueFaceSet(v) {
				edgeDistance[v] = 0
			}
		}
	}

	var neighbors []int
	for it := 0; it < propagationSteps; it++ {
		for v := 0; v < totvert; v++ {
			if edgeDistance[v] != edgeDistanceInf {
				continue
			}
			neighbors = ss.Surf.VertNeighbors(v, neighbors[:0])
			for _, n := range neighbors {
				if edgeDistance[n] == it {
					edgeDistance[v] = it + 1
				}
			}
		}
	}

	for v := 0; v < totvert; v++ {
		if edgeDistance[v] == edgeDistanceInf {
			continue
		}
		p := 1 - float32(edgeDistance[v])/float32(propagationSteps)
		factor.Floats[v] *= 1 - p*p
	}
}

// normalOcclusionFill precomputes the view-normal and occlusion factors
// into the factor buffer. Occluded vertices are zeroed outright.
func normalOcclusionFill(c *Cache, ss *sculpt.Session, bits sculpt.AutomaskFlag) {
	factor := ss.Attrs.Lookup(ss.FactorAttr)
	if factor == nil {
		return
	}
	stamp := ss.Attrs.Lookup(ss.StrokeIDAttr)

	for v := 0; v < ss.Surf.VertCount(); v++ {
		f := factor.Floats[v]

		if bits&sculpt.AutomaskViewNormal != 0 {
			if bits&sculpt.AutomaskViewOcclusion != 0 &&
				calcViewOcclusionFactor(c, ss, v, c.CurrentStrokeID-1) {
				f = 0
			}
			f *= calcViewNormalFactor(c, ss, v, nil)
		}

		if stamp != nil {
			stamp.Bytes[v] = ss.StrokeID
		}
		factor.Floats[v] = f
	}
}

// CacheInit resolves settings and runs the precompute calculators for a
// stroke. It returns nil when no automasking mode is enabled, which
// disables automasking for the stroke without being an error.
func CacheInit(sd *sculpt.Sculpt, brush *sculpt.Brush, ss *sculpt.Session) *Cache {
	if !IsEnabled(sd, ss, brush) {
		return nil
	}

	c := &Cache{}
	cacheSettingsUpdate(c, ss, sd, brush)
	c.CurrentStrokeID = ss.StrokeID

	mode := calcEffectiveBits(sd, brush)

	if mode&sculpt.AutomaskTopology != 0 && ss.ActiveVert != -1 {
		if err := ss.IslandsEnsure(); err != nil {
			logger.Sugar.Warnf("automask: island cache unavailable: %v", err)
		}
		c.Settings.InitialIslandID = ss.IslandID(ss.ActiveVert)
	}

	useStrokeID := false
	haveOcclusion := mode&sculpt.AutomaskViewOcclusion != 0 && mode&sculpt.AutomaskViewNormal != 0

	if haveOcclusion {
		useStrokeID = true
		if ss.Attrs.Lookup(ss.OcclusionAttr) == nil {
			h, err := ss.Attrs.Ensure(mesh.DomainPoint, mesh.ElemByte, AttrNameOcclusion, attr.Params{})
			if err != nil {
				logger.Sugar.Warnf("automask: %v", err)
			}
			ss.OcclusionAttr = h
		}
	}

	if mode&sculpt.AutomaskCavityAll != 0 {
		useStrokeID = true
		if ss.Attrs.Lookup(ss.CavityAttr) == nil {
			h, err := ss.Attrs.Ensure(mesh.DomainPoint, mesh.ElemFloat, AttrNameCavity, attr.Params{})
			if err != nil {
				logger.Sugar.Warnf("automask: %v", err)
			}
			ss.CavityAttr = h
		}
	}

	if useStrokeID {
		if err := ss.StrokeIDEnsure(); err != nil {
			logger.Sugar.Warnf("automask: %v", err)
		}
	}

	// Reuse across strokes: allow-listed brush types with unchanged
	// settings adopt the previous stroke id, so the stamped per-vertex
	// caches and the factor buffer stay valid. Occlusion results depend
	// on the current view and are never reused.
	if brush != nil && BrushTypeCanReuse(brush.Type) && !haveOcclusion {
		hash := settingsHash(ss, c)
		if ss.HaveLastHash && hash == ss.LastAutomaskHash {
			c.CurrentStrokeID = ss.LastAutomaskStrokeID
			c.CanReuse = true
			logger.Sugar.Debugf("automask: reusing stroke %d buffers", c.CurrentStrokeID)
		} else {
			ss.LastAutomaskHash = hash
			ss.HaveLastHash = true
		}
	}
	if !c.CanReuse {
		ss.LastAutomaskStrokeID = ss.StrokeID
	}

	// Simple configurations evaluate everything per query; drop any factor
	// buffer left over from an earlier stroke so it cannot shadow them.
	if !needsFactorsCache(sd, brush) {
		if ss.Attrs.Lookup(ss.FactorAttr) != nil {
			ss.Attrs.Destroy(ss.FactorAttr)
		}
		return c
	}

	if c.CanReuse && ss.Attrs.Lookup(ss.FactorAttr) != nil {
		return c
	}

	h, err := ss.Attrs.Ensure(mesh.DomainPoint, mesh.ElemFloat, AttrNameFactor, attr.Params{StrokeOnly: true})
	if err != nil {
		logger.Sugar.Warnf("automask: %v", err)
		return c
	}
	ss.FactorAttr = h
	ss.RecomputeCount++

	// Topology builds the mask up from zero; every other mode subtracts
	// from one.
	initial := float32(1)
	if mode&sculpt.AutomaskTopology != 0 {
		initial = 0
	}
	factor := ss.Attrs.Lookup(ss.FactorAttr)
	for i := range factor.Floats {
		factor.Floats[i] = initial
	}

	if ModeEnabled(sd, brush, sculpt.AutomaskTopology) {
		c.Settings.TopologyUseBrushLimit = isConstrainedByRadius(brush)
		fillTopologyFactors(ss, brush)
	}

	if ModeEnabled(sd, brush, sculpt.AutomaskFaceSets) {
		initFaceSetsMasking(ss, c)
	}

	steps := boundaryPropagationSteps(sd, brush)
	if ModeEnabled(sd, brush, sculpt.AutomaskBoundaryEdges) {
		initBoundaryMasking(ss, boundaryModeEdges, steps)
	}
	if ModeEnabled(sd, brush, sculpt.AutomaskBoundaryFaceSets) {
		initBoundaryMasking(ss, boundaryModeFaceSets, steps)
	}

	if normalBits := mode & (sculpt.AutomaskViewNormal | sculpt.AutomaskViewOcclusion); normalBits != 0 {
		normalOcclusionFill(c, ss, normalBits)
	}

	logger.Sugar.Debugf("automask: precomputed factors for stroke %d (flags %#x)", ss.StrokeID, mode)
	return c
}
