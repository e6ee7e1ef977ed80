package automask

import (
	gomath "math"

	"github.com/Faultbox/sculptcore/internal/sculpt"
	"github.com/Faultbox/sculptcore/internal/sculpt/mesh"
	"github.com/Faultbox/sculptcore/pkg/math"
)

// normalCalc maps the angle between a vertex normal and a reference
// direction onto [0, 1]: full strength below the lower limit, zero above
// the upper one, and a smoothstep ramp in between.
func normalCalc(ss *sculpt.Session, v int, normal math.Vec3, limitLower, limitUpper float32, origNormal *math.Vec3) float32 {
	var n math.Vec3
	if origNormal != nil {
		n = *origNormal
	} else {
		n = ss.Surf.Normal(v)
	}

	angle := math.SafeAcos(normal.Dot(n))
	if angle > limitLower && angle < limitUpper {
		t := 1 - (angle-limitLower)/(limitUpper-limitLower)
		return math.Smoothstep(t)
	}
	if angle > limitUpper {
		return 0
	}
	return 1
}

func calcBrushNormalFactor(c *Cache, ss *sculpt.Session, v int, origNormal *math.Vec3) float32 {
	falloff := c.Settings.StartNormalFalloff * gomath.Pi
	var initial math.Vec3
	switch {
	case ss.Cache != nil:
		initial = ss.Cache.InitialNormalSymm
	case ss.Filter != nil:
		initial = ss.Filter.InitialNormal
	default:
		return 1
	}
	limit := c.Settings.StartNormalLimit
	return normalCalc(ss, v, initial, limit-falloff*0.5, limit+falloff*0.5, origNormal)
}

func calcViewNormalFactor(c *Cache, ss *sculpt.Session, v int, origNormal *math.Vec3) float32 {
	falloff := c.Settings.ViewNormalFalloff * gomath.Pi
	var view math.Vec3
	switch {
	case ss.Cache != nil:
		view = ss.Cache.ViewNormalSymm
	case ss.Filter != nil:
		view = ss.Filter.ViewNormal
	default:
		return 1
	}
	limit := c.Settings.ViewNormalLimit
	return normalCalc(ss, v, view, limit, limit+falloff, origNormal)
}

// Occlusion cache encoding: 0 unknown, 1 visible, 2 occluded.
const (
	occlusionUnknown  = 0
	occlusionVisible  = 1
	occlusionOccluded = 2
)

// calcViewOcclusionFactor reports whether a vertex is occluded along the
// view direction, recomputing and restamping the cached byte when the
// stored stamp does not match the cache's stroke id.
func calcViewOcclusionFactor(c *Cache, ss *sculpt.Session, v int, stamp uint8) bool {
	a := ss.Attrs.Lookup(ss.OcclusionAttr)
	if a == nil {
		return false
	}

	if stamp != c.CurrentStrokeID {
		var view math.Vec3
		switch {
		case ss.Cache != nil:
			view = ss.Cache.ViewNormalSymm
		case ss.Filter != nil:
			view = ss.Filter.ViewNormal
		default:
			return false
		}
		if ss.Surf.RayOccluded(ss.Surf.Position(v), view) {
			a.Bytes[v] = occlusionOccluded
		} else {
			a.Bytes[v] = occlusionVisible
		}
	}
	return a.Bytes[v] == occlusionOccluded
}

// factorEnd stamps the vertex current before returning its factor, so
// stamped per-vertex caches are not recomputed within the stroke.
func factorEnd(ss *sculpt.Session, c *Cache, v int, value float32) float32 {
	if a := ss.Attrs.Lookup(ss.StrokeIDAttr); a != nil {
		a.Bytes[v] = c.CurrentStrokeID
	}
	return value
}

// Factor returns the automasking factor for a vertex. origNormal, when
// non-nil, substitutes for the live vertex normal in the normal-based
// modes, keeping factors stable while the stroke deforms the surface.
//
// Modes compose multiplicatively: brush-normal accumulates into a running
// mask that scales the precomputed buffer value when one exists, or the
// live view-normal and cavity factors otherwise. The hard exclusions
// (occlusion, island, face set, boundary) short-circuit to zero. The
// per-vertex stroke stamp is written only on paths where every stamped
// cache (cavity, occlusion) is current for the vertex.
func Factor(c *Cache, ss *sculpt.Session, v int, origNormal *math.Vec3) float32 {
	if c == nil {
		return 1
	}
	flags := c.Settings.Flags

	var stamp uint8
	stampAttr := ss.Attrs.Lookup(ss.StrokeIDAttr)
	if stampAttr != nil {
		stamp = stampAttr.Bytes[v]
	}

	mask := float32(1)
	if flags&sculpt.AutomaskBrushNormal != 0 {
		mask *= calcBrushNormalFactor(c, ss, v, origNormal)
	}

	if factor := ss.Attrs.Lookup(ss.FactorAttr); factor != nil {
		f := factor.Floats[v]
		if flags&sculpt.AutomaskCavityAll != 0 {
			f *= cavityFactor(c, ss, v, stamp)
		}
		return factorEnd(ss, c, v, f*mask)
	}

	// An occluded vertex stays occluded for the whole stroke, so stamping
	// here cannot strand a stale cavity entry: requeries take this path
	// again before any cavity read.
	if flags&sculpt.AutomaskViewOcclusion != 0 && calcViewOcclusionFactor(c, ss, v, stamp) {
		return factorEnd(ss, c, v, 0)
	}

	if flags&sculpt.AutomaskTopology != 0 && !c.Settings.TopologyUseBrushLimit {
		if ss.IslandID(v) != c.Settings.InitialIslandID {
			return 0
		}
	}

	if flags&sculpt.AutomaskFaceSets != 0 {
		if !ss.VertHasFaceSet(v, c.Settings.InitialFaceSet) {
			return 0
		}
	}

	if flags&sculpt.AutomaskBoundaryEdges != 0 {
		if ss.VertIsBoundary(v) {
			return 0
		}
	}

	if flags&sculpt.AutomaskBoundaryFaceSets != 0 && !faceSetBoundaryIgnored(ss) {
		if !ss.VertHasUniqueFaceSet(v) {
			return 0
		}
	}

	if flags&sculpt.AutomaskViewNormal != 0 {
		mask *= calcViewNormalFactor(c, ss, v, origNormal)
	}

	if flags&sculpt.AutomaskCavityAll != 0 {
		mask *= cavityFactor(c, ss, v, stamp)
	}

	return factorEnd(ss, c, v, mask)
}

// faceSetBoundaryIgnored suppresses face-set boundary masking while a
// face-set drawing brush is painting the same set everywhere, since the
// boundaries it is erasing would otherwise pin the stroke in place.
func faceSetBoundaryIgnored(ss *sculpt.Session) bool {
	return ss.Cache != nil &&
		ss.Cache.Brush != nil &&
		ss.Cache.Brush.Type == sculpt.BrushDrawFaceSets &&
		ss.Cache.PaintFaceSet != 0
}

// CalcVertFactors multiplies per-vertex automask factors into factors,
// which runs parallel to verts.
func CalcVertFactors(ss *sculpt.Session, c *Cache, verts []int, factors []float32) {
	useOrig := c != nil && c.Settings.Flags&(sculpt.AutomaskBrushNormal|sculpt.AutomaskViewNormal) != 0
	for i, v := range verts {
		var orig *math.Vec3
		if useOrig {
			n := ss.Surf.OrigNormal(v)
			orig = &n
		}
		factors[i] *= Factor(c, ss, v, orig)
	}
}

// CalcFaceFactors multiplies per-face factors, each the mean of the face's
// corner vertex factors, into factors.
func CalcFaceFactors(ss *sculpt.Session, c *Cache, faces []int, factors []float32) {
	var corners []int
	for i, f := range faces {
		corners = ss.Surf.FaceVerts(f, corners[:0])
		if len(corners) == 0 {
			continue
		}
		var sum float32
		for _, v := range corners {
			sum += Factor(c, ss, v, nil)
		}
		factors[i] *= sum / float32(len(corners))
	}
}

// CalcGridFactors multiplies per-vertex factors for whole grids into
// factors, which holds one entry per grid vertex in grid order.
func CalcGridFactors(ss *sculpt.Session, c *Cache, grids []int, factors []float32) {
	g, ok := ss.Surf.(*mesh.Grids)
	if !ok {
		return
	}
	area := g.GridArea()
	for i, grid := range grids {
		base := grid * area
		for j := 0; j < area; j++ {
			factors[i*area+j] *= Factor(c, ss, base+j, nil)
		}
	}
}
