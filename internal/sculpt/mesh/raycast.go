package mesh

import "github.com/Faultbox/sculptcore/pkg/math"

// occlusionEpsilon skips intersections at the ray origin so a vertex never
// occludes itself through its own incident faces.
const occlusionEpsilon = 1e-4

// Ray represents a ray in 3D space with origin and (normalized) direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// IntersectTriangle tests ray intersection with triangle (a, b, c) using
// the Moeller-Trumbore algorithm. Returns the distance to the intersection
// and whether an intersection occurred in front of the origin.
func (r Ray) IntersectTriangle(a, b, c math.Vec3) (t float32, hit bool) {
	edge1 := b.Sub(a)
	edge2 := c.Sub(a)

	p := r.Direction.Cross(edge2)
	det := edge1.Dot(p)
	if det > -1e-8 && det < 1e-8 {
		return 0, false // Ray parallel to triangle plane
	}
	invDet := 1 / det

	s := r.Origin.Sub(a)
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := r.Direction.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = edge2.Dot(q) * invDet
	if t <= occlusionEpsilon {
		return 0, false
	}
	return t, true
}

// faceFanOccludes tests the ray against a polygon triangulated as a fan
// around its first corner.
func faceFanOccludes(r Ray, corners []math.Vec3) bool {
	for i := 1; i+1 < len(corners); i++ {
		if _, hit := r.IntersectTriangle(corners[0], corners[i], corners[i+1]); hit {
			return true
		}
	}
	return false
}
