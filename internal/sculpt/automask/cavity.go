package automask

import (
	"github.com/Faultbox/sculptcore/internal/sculpt"
	"github.com/Faultbox/sculptcore/pkg/math"
)

// calcCavityFactorValue maps a raw blurred-curvature value onto [0, 1]
// around a midpoint of 0.5, amplified so typical curvatures span the range.
func calcCavityFactorValue(c *Cache, factor float32) float32 {
	sign := float32(1)
	if factor < 0 {
		sign = -1
		factor = -factor
	}
	factor = factor * c.Settings.CavityFactor * 50
	factor = math.Clamp(factor*sign*0.5+0.5, 0, 1)

	if c.Settings.Flags&sculpt.AutomaskCavityInverted != 0 {
		return 1 - factor
	}
	return factor
}

type blurVert struct {
	v     int
	depth int
}

// calcBlurredCavity estimates signed curvature at a vertex by comparing
// the centroid of its full blur neighborhood against the centroid of the
// interior ring, projected on the blurred normal and normalized by the
// mean distance from the vertex. The result lands in the cavity attribute.
func calcBlurredCavity(c *Cache, ss *sculpt.Session, steps, vertex int) {
	cavity := ss.Attrs.Lookup(ss.CavityAttr)
	if cavity == nil {
		return
	}

	// The outermost ring contributes to the first centroid only, so the
	// two centroids always differ for non-trivial neighborhoods.
	steps++

	var (
		sco1, sco2 math.Vec3
		sno1, sno2 math.Vec3
		len1Sum    float32
		sco1Len    int
		sco2Len    int
	)
	co1 := ss.Surf.Position(vertex)

	queue := []blurVert{{v: vertex, depth: 0}}
	visit := map[int]struct{}{vertex: {}}

	var neighbors []int
	for head := 0; head < len(queue); head++ {
		bv := queue[head]

		co := ss.Surf.Position(bv.v)
		no := ss.Surf.Normal(bv.v)

		sco1 = sco1.Add(co)
		sno1 = sno1.Add(no)
		len1Sum += co.Distance(co1)
		sco1Len++

		if bv.depth < steps {
			sco2 = sco2.Add(co)
			sno2 = sno2.Add(no)
			sco2Len++
		}

		if bv.depth >= steps {
			continue
		}
		neighbors = ss.Surf.VertNeighbors(bv.v, neighbors[:0])
		for _, n := range neighbors {
			if _, seen := visit[n]; seen {
				continue
			}
			visit[n] = struct{}{}
			queue = append(queue, blurVert{v: n, depth: bv.depth + 1})
		}
	}

	if sco1Len > 0 {
		inv := 1 / float32(sco1Len)
		sco1 = sco1.Scale(inv)
		len1Sum *= inv
	} else {
		sco1 = co1
	}
	if sco2Len > 0 {
		sco2 = sco2.Scale(1 / float32(sco2Len))
	} else {
		sco2 = co1
	}

	sno1 = sno1.Normalize()
	if sno1.IsZero() {
		sno1 = ss.Surf.Normal(vertex)
	}
	sno2 = sno2.Normalize()
	if sno2.IsZero() {
		sno2 = ss.Surf.Normal(vertex)
	}

	var factor float32
	if len1Sum > 0 {
		vec := sco1.Sub(sco2)
		factor = vec.Dot(sno2) / len1Sum
	}

	cavity.Floats[vertex] = calcCavityFactorValue(c, factor)
}

// cavityFactor returns the (optionally curve-remapped) cavity factor for a
// vertex, recomputing the stamped cache entry when stale.
func cavityFactor(c *Cache, ss *sculpt.Session, v int, stamp uint8) float32 {
	if stamp != c.CurrentStrokeID {
		calcBlurredCavity(c, ss, c.Settings.CavityBlurSteps, v)
	}

	cavity := ss.Attrs.Lookup(ss.CavityAttr)
	if cavity == nil {
		return 1
	}
	factor := cavity.Floats[v]

	inverted := c.Settings.Flags&sculpt.AutomaskCavityInverted != 0
	if c.Settings.Flags&sculpt.AutomaskCavityAll != 0 &&
		c.Settings.Flags&sculpt.AutomaskCavityUseCurve != 0 &&
		c.Settings.CavityCurve != nil {
		// The curve is authored against the non-inverted factor.
		if inverted {
			factor = 1 - factor
		}
		factor = c.Settings.CavityCurve.Evaluate(factor)
		if inverted {
			factor = 1 - factor
		}
	}
	return factor
}
